package application

import (
	"strings"
	"unicode"
)

// terms returns the lowercased keyword and content word set of an item.
func terms(keywords []string, content string) map[string]struct{} {
	set := make(map[string]struct{}, len(keywords)+8)
	for _, keyword := range keywords {
		normalized := strings.ToLower(strings.TrimSpace(keyword))
		if normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	for _, word := range words(content) {
		set[word] = struct{}{}
	}
	return set
}

func words(content string) []string {
	return strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_'
	})
}

func sentences(content string) []string {
	parts := strings.FieldsFunc(content, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})

	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			result = append(result, part)
		}
	}
	return result
}

func countMatches(set map[string]struct{}, vocabulary []string) int {
	count := 0
	for _, word := range vocabulary {
		if _, ok := set[strings.ToLower(word)]; ok {
			count++
		}
	}
	return count
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	shared := 0
	for term := range a {
		if _, ok := b[term]; ok {
			shared++
		}
	}

	union := len(a) + len(b) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

func normalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}
