package utils

import (
	"strings"
	"testing"
)

func TestNewTicketNumberFormat(t *testing.T) {
	n, err := NewTicketNumber()
	if err != nil {
		t.Fatalf("NewTicketNumber: %v", err)
	}
	parts := strings.Split(n, "-")
	if len(parts) != 3 || parts[0] != "TKT" {
		t.Fatalf("ticket number %q, want TKT-<ms>-<suffix>", n)
	}
	if len(parts[2]) != suffixLen {
		t.Errorf("suffix length = %d, want %d", len(parts[2]), suffixLen)
	}
	for _, r := range parts[2] {
		if !strings.ContainsRune(base36, r) {
			t.Errorf("suffix contains non-base36 rune %q", r)
		}
	}
}

func TestNewTicketNumberUniqueness(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		n, err := NewTicketNumber()
		if err != nil {
			t.Fatalf("NewTicketNumber: %v", err)
		}
		if seen[n] {
			t.Fatalf("duplicate ticket number %q after %d draws", n, i)
		}
		seen[n] = true
	}
}
