// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation and search-key
// normalization for catalog names. Vietnamese diacritics are folded to
// plain Latin letters through an explicit character table rather than
// Unicode decomposition, because đ/Đ does not decompose to d.
package slug

import (
	"regexp"
	"strings"
)

var (
	// nonAlphanumeric matches anything that isn't a lowercase letter,
	// digit, whitespace, or hyphen after diacritic folding.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// separators matches whitespace and underscore runs.
	separators = regexp.MustCompile(`[\s_]+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// vietnamese maps every accented Vietnamese letter to its unaccented
// Latin base: the a/e/i/o/u/y vowel families plus đ.
var vietnamese = map[rune]rune{
	'à': 'a', 'á': 'a', 'ạ': 'a', 'ả': 'a', 'ã': 'a',
	'â': 'a', 'ầ': 'a', 'ấ': 'a', 'ậ': 'a', 'ẩ': 'a', 'ẫ': 'a',
	'ă': 'a', 'ằ': 'a', 'ắ': 'a', 'ặ': 'a', 'ẳ': 'a', 'ẵ': 'a',
	'è': 'e', 'é': 'e', 'ẹ': 'e', 'ẻ': 'e', 'ẽ': 'e',
	'ê': 'e', 'ề': 'e', 'ế': 'e', 'ệ': 'e', 'ể': 'e', 'ễ': 'e',
	'ì': 'i', 'í': 'i', 'ị': 'i', 'ỉ': 'i', 'ĩ': 'i',
	'ò': 'o', 'ó': 'o', 'ọ': 'o', 'ỏ': 'o', 'õ': 'o',
	'ô': 'o', 'ồ': 'o', 'ố': 'o', 'ộ': 'o', 'ổ': 'o', 'ỗ': 'o',
	'ơ': 'o', 'ờ': 'o', 'ớ': 'o', 'ợ': 'o', 'ở': 'o', 'ỡ': 'o',
	'ù': 'u', 'ú': 'u', 'ụ': 'u', 'ủ': 'u', 'ũ': 'u',
	'ư': 'u', 'ừ': 'u', 'ứ': 'u', 'ự': 'u', 'ử': 'u', 'ữ': 'u',
	'ỳ': 'y', 'ý': 'y', 'ỵ': 'y', 'ỷ': 'y', 'ỹ': 'y',
	'đ': 'd',
}

// foldDiacritics lowercases, trims, and replaces Vietnamese letters with
// their unaccented equivalents.
func foldDiacritics(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		if base, ok := vietnamese[r]; ok {
			return base
		}
		return r
	}, s)
}

// Generate creates a URL-friendly slug from the given string.
// Example: "Đạm Cà Mau 50kg" → "dam-ca-mau-50kg".
// An empty input yields an empty slug; callers must treat that as a
// validation failure rather than a usable identifier.
func Generate(s string) string {
	result := foldDiacritics(s)
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// SearchName returns the lowercase, diacritic-free form of a product name
// with word boundaries preserved. It is stored redundantly alongside the
// name so keyword search works without full-text infrastructure.
// Example: "Oshin 20WP" → "oshin 20wp".
func SearchName(s string) string {
	result := foldDiacritics(s)
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// Keywords derives the search keys for a display name: the lowercase
// form, the accent-stripped lowercase form, every whitespace-delimited
// token of both, and the original string. Single-character tokens are
// excluded. The result is deduplicated, keeping first-seen order.
func Keywords(name string) []string {
	lower := strings.ToLower(strings.TrimSpace(name))
	stripped := foldDiacritics(name)

	var keys []string
	seen := make(map[string]bool)
	add := func(k string) {
		if k == "" || seen[k] {
			return
		}
		seen[k] = true
		keys = append(keys, k)
	}

	add(lower)
	add(stripped)
	for _, tok := range strings.Fields(lower) {
		if len([]rune(tok)) > 1 {
			add(tok)
		}
	}
	for _, tok := range strings.Fields(stripped) {
		if len([]rune(tok)) > 1 {
			add(tok)
		}
	}
	add(name)

	return keys
}
