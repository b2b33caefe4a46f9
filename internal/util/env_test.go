package util

import "testing"

func TestParseBoolEnv(t *testing.T) {
	cases := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"", false, false},
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"OFF", true, false},
		{"garbage", true, true},
		{"garbage", false, false},
	}
	for _, tc := range cases {
		t.Setenv("TEST_PARSE_BOOL", tc.value)
		if got := ParseBoolEnv("TEST_PARSE_BOOL", tc.def); got != tc.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tc.value, tc.def, got, tc.want)
		}
	}
}

func TestGetenvDefault(t *testing.T) {
	t.Setenv("TEST_GETENV_DEFAULT", "")
	if got := GetenvDefault("TEST_GETENV_DEFAULT", "fallback"); got != "fallback" {
		t.Errorf("unset variable: got %q, want %q", got, "fallback")
	}

	t.Setenv("TEST_GETENV_DEFAULT", "explicit")
	if got := GetenvDefault("TEST_GETENV_DEFAULT", "fallback"); got != "explicit" {
		t.Errorf("set variable: got %q, want %q", got, "explicit")
	}
}
