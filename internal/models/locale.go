package models

import "strings"

// Locale identifies the presentation language for user-facing text.
// The engine treats it as an opaque presentation parameter: Hebrew gets
// Hebrew strings, everything else falls back to English.
type Locale string

const (
	LocaleHebrew  Locale = "he"
	LocaleEnglish Locale = "en"
	LocaleArabic  Locale = "ar"
	LocaleRussian Locale = "ru"
	LocaleFrench  Locale = "fr"
	LocaleUnknown Locale = "unknown"
)

// NormalizeLocale maps free-form locale strings ("he-IL", "English", ...)
// onto the closed Locale set. Unrecognized values become LocaleUnknown.
func NormalizeLocale(value string) Locale {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "he", "he-il", "hebrew":
		return LocaleHebrew
	case "en", "en-us", "en-gb", "english":
		return LocaleEnglish
	case "ar", "ar-sa", "arabic":
		return LocaleArabic
	case "ru", "ru-ru", "russian":
		return LocaleRussian
	case "fr", "fr-fr", "french":
		return LocaleFrench
	default:
		return LocaleUnknown
	}
}

// IsHebrew reports whether Hebrew presentation strings should be used.
func (l Locale) IsHebrew() bool {
	return l == LocaleHebrew
}
