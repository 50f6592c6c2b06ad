package utils

import (
	"strings"
	"testing"
)

func TestGeneratePasswordLength(t *testing.T) {
	if got := len(GeneratePassword(12)); got != 12 {
		t.Fatalf("length = %d, want 12", got)
	}

	// requests below the floor are bumped up
	if got := len(GeneratePassword(3)); got != 8 {
		t.Fatalf("length = %d, want minimum 8", got)
	}
}

func TestGeneratePasswordCharset(t *testing.T) {
	for i := 0; i < 50; i++ {
		password := GeneratePassword(16)
		for _, ch := range password {
			if !strings.ContainsRune(passwordCharset, ch) {
				t.Fatalf("password %q contains %q outside the charset", password, ch)
			}
		}
	}
}
