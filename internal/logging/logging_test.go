package logging

import "testing"

func TestMask(t *testing.T) {
	cases := []struct {
		name string
		in   string
		out  string
	}{
		{
			"player id hidden",
			`{"message": "PLAYER_REGISTERED", "context": {"player_id": "f13b405e-36c5-45a3-bd0e-ff019f18cf50", "handle": "leela"}}`,
			`{"message": "PLAYER_REGISTERED", "context": {"player_id": "<masked>", "handle": "leela"}}`,
		},
		{
			"loose spacing normalized",
			`{"player_id" :  "abc"}`,
			`{"player_id": "<masked>"}`,
		},
		{
			"other fields untouched",
			`{"message": "GAME_JOINED", "context": {"game_id": "g-1"}}`,
			`{"message": "GAME_JOINED", "context": {"game_id": "g-1"}}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Mask(tc.in); got != tc.out {
				t.Errorf("Mask(%q) = %q, want %q", tc.in, got, tc.out)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("", true)
	if err != nil {
		t.Fatalf("building logger failed: %v", err)
	}
	logger.Debugf("logger works")
}
