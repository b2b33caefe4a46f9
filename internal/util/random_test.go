package util

import (
	"strings"
	"testing"
)

func TestGenerateRandomID(t *testing.T) {
	tests := []struct {
		name       string
		prefix     string
		hexLength  int
		wantPrefix string
		wantLength int // expected total length: prefix + hexLength
	}{
		{
			name:       "valuation suffix format",
			prefix:     "val_",
			hexLength:  6,
			wantPrefix: "val_",
			wantLength: 10, // 4 + 6
		},
		{
			name:       "custom prefix",
			prefix:     "test_",
			hexLength:  16,
			wantPrefix: "test_",
			wantLength: 21, // 5 + 16
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateRandomID(tt.prefix, tt.hexLength)

			if !strings.HasPrefix(got, tt.wantPrefix) {
				t.Errorf("GenerateRandomID() = %v, want prefix %v", got, tt.wantPrefix)
			}

			if len(got) != tt.wantLength {
				t.Errorf("GenerateRandomID() length = %v, want %v", len(got), tt.wantLength)
			}

			hexPart := got[len(tt.wantPrefix):]
			if !isValidHex(hexPart) {
				t.Errorf("GenerateRandomID() hex part = %v is not valid hex", hexPart)
			}
		})
	}
}

func TestGenerateRandomHex(t *testing.T) {
	if got := GenerateRandomHex(0); got != "" {
		t.Errorf("GenerateRandomHex(0) = %q, want empty", got)
	}
	got := GenerateRandomHex(32)
	if len(got) != 32 {
		t.Errorf("GenerateRandomHex(32) length = %d, want 32", len(got))
	}
	if !isValidHex(got) {
		t.Errorf("GenerateRandomHex(32) = %v is not valid hex", got)
	}
}

func TestGenerateValuationID(t *testing.T) {
	id := GenerateValuationID()
	if !strings.HasPrefix(id, "val_") {
		t.Errorf("GenerateValuationID() = %v, want val_ prefix", id)
	}
	// Two identifiers generated back to back must differ.
	if id == GenerateValuationID() {
		t.Error("GenerateValuationID() produced duplicate identifiers")
	}
}

func isValidHex(s string) bool {
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return false
		}
	}
	return true
}
