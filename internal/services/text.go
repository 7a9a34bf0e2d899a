package services

import (
	"strings"
	"unicode"
)

// Bounds shared by the sanitizers.
const (
	maxMemoryTextLen = 2000
	maxTitleLen      = 160
	maxTagCount      = 16
	maxTagLen        = 32
)

// sanitizeLimitedText collapses whitespace and truncates to maxLen runes.
// Control characters are dropped.
func sanitizeLimitedText(value string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, value)

	cleaned = strings.Join(strings.Fields(cleaned), " ")
	runes := []rune(cleaned)
	if len(runes) > maxLen {
		cleaned = strings.TrimSpace(string(runes[:maxLen]))
	}
	return cleaned
}

// normalizeForFingerprint lowercases and strips everything except letters,
// digits and spaces, then collapses runs of spaces. Variants like
// "Dark-Mode!!!" and "dark mode" collapse to the same form.
func normalizeForFingerprint(value string) string {
	lowered := strings.ToLower(value)

	lowered = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return r
		case unicode.IsSpace(r), r == '-', r == '_':
			return ' '
		default:
			return -1
		}
	}, lowered)

	return strings.Join(strings.Fields(lowered), " ")
}

// normalizeTag lowercases and keeps only alphanumerics, '-' and '_'.
func normalizeTag(value string) string {
	tag := strings.ToLower(strings.TrimSpace(value))
	tag = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return -1
	}, tag)

	runes := []rune(tag)
	if len(runes) > maxTagLen {
		tag = string(runes[:maxTagLen])
	}
	return tag
}

// normalizeTags normalizes, deduplicates and bounds a tag list while
// preserving first-seen order.
func normalizeTags(values []string) []string {
	seen := make(map[string]bool, len(values))
	tags := make([]string, 0, len(values))
	for _, value := range values {
		tag := normalizeTag(value)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
		if len(tags) >= maxTagCount {
			break
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// tokenize splits text into lowercase alphanumeric runs of length >= 2.
func tokenize(value string) []string {
	lowered := strings.ToLower(value)

	var tokens []string
	var current []rune
	flush := func() {
		if len(current) >= 2 {
			tokens = append(tokens, string(current))
		}
		current = current[:0]
	}

	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current = append(current, r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}

// truncateRunes cuts a string to at most n runes.
func truncateRunes(value string, n int) string {
	runes := []rune(value)
	if len(runes) <= n {
		return value
	}
	return string(runes[:n])
}
