package exhibit

// Fallback strings shown when a record leaves a field out.
const (
	FallbackTypeLabel   = "その他"
	FallbackTypeKey     = "other"
	FallbackClub        = "クラブ情報なし"
	FallbackName        = "名称未設定"
	FallbackDescription = "説明がまだありません。"
	FallbackLocation    = "未定"
	FallbackRainStatus  = "未定"
	FallbackMenuName    = "メニュー"
	FallbackSlotTime    = "-"
	FallbackID          = "-"
)

var typeLabels = map[string]string{
	TypeStore:    "模擬店",
	TypeStage:    "ステージ",
	TypeEvent:    "イベント",
	TypeClubBook: "部誌・作品集",
	TypeBigEvent: "大型企画",
}

// Types lists the known exhibit types in display order.
func Types() []string {
	return []string{TypeStore, TypeStage, TypeEvent, TypeClubBook, TypeBigEvent}
}

// TypeLabelFor maps a type key to its label.
func TypeLabelFor(kind string) string {
	if label, ok := typeLabels[kind]; ok {
		return label
	}
	return FallbackTypeLabel
}

func or(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

// IDValue returns the identifier, or "" when absent.
func (r Record) IDValue() string { return or(r.ID, "") }

// TypeValue returns the raw type, or "" when absent.
func (r Record) TypeValue() string { return or(r.Type, "") }

// NameValue returns the raw name, or "" when absent.
func (r Record) NameValue() string { return or(r.Name, "") }

// DisplayID is the identifier shown on the detail page, "-" when absent.
func (r Record) DisplayID() string { return or(r.ID, FallbackID) }

// DisplayName returns the name or FallbackName.
func (r Record) DisplayName() string { return or(r.Name, FallbackName) }

// DisplayClub returns the organizing club or FallbackClub.
func (r Record) DisplayClub() string { return or(r.Club, FallbackClub) }

// DisplayDescription returns the description or FallbackDescription.
func (r Record) DisplayDescription() string { return or(r.Description, FallbackDescription) }

// DisplayLocation returns the venue or FallbackLocation.
func (r Record) DisplayLocation() string { return or(r.Location, FallbackLocation) }

// TypeLabel is the human label for the record type.
func (r Record) TypeLabel() string { return TypeLabelFor(r.TypeValue()) }

// TypeKey is used for CSS classes; absent types become "other".
func (r Record) TypeKey() string { return or(r.Type, FallbackTypeKey) }

// EffectiveViewCount treats a missing view count as -1 so it ranks below zero.
func (r Record) EffectiveViewCount() int64 {
	if r.ViewCount == nil {
		return -1
	}
	return *r.ViewCount
}

// IsHot reports whether the record meets the popularity threshold.
func (r Record) IsHot() bool {
	return r.ViewCount != nil && *r.ViewCount >= HotThreshold
}

// HasRaining reports whether a rain contingency note exists.
func (r Record) HasRaining() bool { return r.Raining != nil }

// Status returns the rain status text, falling back for falsy values.
func (r Raining) Status() string {
	if r.IsRaining.Text == "" {
		return FallbackRainStatus
	}
	return r.IsRaining.Text
}

// Place returns the rain location, or "" when absent or empty.
func (r Raining) Place() string { return or(r.Location, "") }

// DisplayStart returns the start time, "-" when absent.
func (s Slot) DisplayStart() string { return or(s.Start, FallbackSlotTime) }

// DisplayEnd returns the end time, "-" when absent.
func (s Slot) DisplayEnd() string { return or(s.End, FallbackSlotTime) }

// DisplayName returns the menu name or FallbackMenuName.
func (m Menu) DisplayName() string { return or(m.Name, FallbackMenuName) }

// NameValue returns the menu name, or "" when absent.
func (m Menu) NameValue() string { return or(m.Name, "") }
