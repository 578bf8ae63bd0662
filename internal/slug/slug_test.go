package slug

import (
	"strings"
	"testing"
)

// TestGenerate exercises the slug generator with typical product and
// category names, Vietnamese diacritics, special characters, and edge cases.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Plain names ---
		{
			name:  "simple two words",
			input: "Hello World",
			want:  "hello-world",
		},
		{
			name:  "already lowercase",
			input: "thuoc tru sau",
			want:  "thuoc-tru-sau",
		},
		{
			name:  "name with quantity",
			input: "NPK 16-16-8 25kg",
			want:  "npk-16-16-8-25kg",
		},

		// --- Vietnamese diacritics ---
		{
			name:  "fertilizer brand with full diacritics",
			input: "Đạm Cà Mau 50kg",
			want:  "dam-ca-mau-50kg",
		},
		{
			name:  "dong maps to d",
			input: "Đất sạch",
			want:  "dat-sach",
		},
		{
			name:  "category with accents",
			input: "Thuốc Bảo Vệ Thực Vật",
			want:  "thuoc-bao-ve-thuc-vat",
		},
		{
			name:  "u horn family",
			input: "Phân hữu cơ",
			want:  "phan-huu-co",
		},
		{
			name:  "y family",
			input: "Lúa Mỹ Ý",
			want:  "lua-my-y",
		},

		// --- Special characters ---
		{
			name:  "punctuation stripped",
			input: "Oshin 20WP (gói 100g)!",
			want:  "oshin-20wp-goi-100g",
		},
		{
			name:  "underscores become hyphens",
			input: "san_pham_moi",
			want:  "san-pham-moi",
		},
		{
			name:  "percent and slash stripped",
			input: "Giảm 50% / combo",
			want:  "giam-50-combo",
		},

		// --- Whitespace and hyphen handling ---
		{
			name:  "surrounding whitespace trimmed",
			input: "  hạt giống  ",
			want:  "hat-giong",
		},
		{
			name:  "multiple spaces collapsed",
			input: "hat    giong",
			want:  "hat-giong",
		},
		{
			name:  "hyphen runs collapsed",
			input: "bca---xyz",
			want:  "bca-xyz",
		},
		{
			name:  "leading and trailing hyphens trimmed",
			input: "---giống lúa---",
			want:  "giong-lua",
		},

		// --- Edge cases ---
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "only special characters",
			input: "!@#$%",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestGenerateIdempotent verifies that slugging a slug is a no-op and that
// outputs never contain uppercase, whitespace, or boundary hyphens.
func TestGenerateIdempotent(t *testing.T) {
	inputs := []string{
		"Đạm Cà Mau 50kg",
		"Thuốc trừ sâu Oshin 20WP",
		"  Phân bón   NPK  ",
		"hello-world",
		"---x---",
	}

	for _, in := range inputs {
		once := Generate(in)
		twice := Generate(once)
		if once != twice {
			t.Errorf("Generate not idempotent for %q: %q != %q", in, once, twice)
		}
		if once != strings.ToLower(once) {
			t.Errorf("Generate(%q) contains uppercase: %q", in, once)
		}
		if strings.ContainsAny(once, " \t\n") {
			t.Errorf("Generate(%q) contains whitespace: %q", in, once)
		}
		if strings.HasPrefix(once, "-") || strings.HasSuffix(once, "-") {
			t.Errorf("Generate(%q) has boundary hyphen: %q", in, once)
		}
	}
}

func TestSearchName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Oshin 20WP", "oshin 20wp"},
		{"Đạm Cà Mau 50kg", "dam ca mau 50kg"},
		{"  NPK   16-16-8 ", "npk 16-16-8"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SearchName(tt.input); got != tt.want {
			t.Errorf("SearchName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestKeywords(t *testing.T) {
	keys := Keywords("Đạm Cà Mau")

	want := []string{"đạm cà mau", "dam ca mau", "đạm", "cà", "mau", "dam", "ca", "Đạm Cà Mau"}
	for _, w := range want {
		found := false
		for _, k := range keys {
			if k == w {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Keywords missing %q in %v", w, keys)
		}
	}

	// Deduplicated.
	seen := make(map[string]bool)
	for _, k := range keys {
		if seen[k] {
			t.Errorf("Keywords contains duplicate %q", k)
		}
		seen[k] = true
	}
}

// TestKeywordsShortTokens verifies single-character tokens are excluded
// while the full forms are kept.
func TestKeywordsShortTokens(t *testing.T) {
	keys := Keywords("Ý a")
	for _, k := range keys {
		if len([]rune(k)) == 1 && !strings.Contains(k, " ") {
			t.Errorf("Keywords includes single-character token %q", k)
		}
	}
}
