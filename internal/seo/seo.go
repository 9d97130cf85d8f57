// Package seo holds page meta tags and schema.org JSON-LD payloads.
package seo

import (
	"html/template"
	"strings"
	"unicode/utf8"
)

// OpenGraph is the og:* tag set.
type OpenGraph struct {
	Title       string
	Description string
	Type        string
	URL         string
	SiteName    string
	Locale      string
}

// Meta is rendered into the document head.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          OpenGraph
	// JSONLD scripts, already encoded.
	JSONLD []template.JS
}

const maxDescription = 160

// Describe trims a plain-text description for meta tags.
func Describe(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= maxDescription {
		return text
	}
	r := []rune(text)
	return string(r[:maxDescription-1]) + "…"
}

// OGLocale maps a UI language to an og:locale value.
func OGLocale(lang string) string {
	switch lang {
	case "en":
		return "en_US"
	default:
		return "ja_JP"
	}
}
