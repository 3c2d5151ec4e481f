package ws

import "testing"

func TestParseAuthorization(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"plain", "Player abc-123", "abc-123"},
		{"lowercase scheme", "player abc-123", "abc-123"},
		{"mixed case scheme", "PlAyEr abc-123", "abc-123"},
		{"extra spaces", "  Player   abc-123  ", "abc-123"},
		{"empty", "", ""},
		{"scheme only", "Player", ""},
		{"scheme only with space", "Player ", ""},
		{"wrong scheme", "Bearer abc-123", ""},
		{"two tokens", "Player abc 123", ""},
		{"id only", "abc-123", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseAuthorization(tc.header); got != tc.want {
				t.Errorf("parseAuthorization(%q) = %q, want %q", tc.header, got, tc.want)
			}
		})
	}
}
