package handlers

import (
	"encoding/json"
	"testing"
)

func TestLooseBoolSpellings(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`1`, true},
		{`0`, false},
		{`"1"`, true},
		{`"0"`, false},
		{`"true"`, true},
		{`"false"`, false},
	}

	for _, tc := range cases {
		var b looseBool
		if err := json.Unmarshal([]byte(tc.raw), &b); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.raw, err)
		}
		if bool(b) != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.raw, tc.want, b)
		}
	}
}

func TestLooseBoolRejectsGarbage(t *testing.T) {
	for _, raw := range []string{`"yes"`, `2`, `{}`} {
		var b looseBool
		if err := json.Unmarshal([]byte(raw), &b); err == nil {
			t.Fatalf("expected %s to be rejected", raw)
		}
	}
}
