package domain_test

import (
	"math/rand"
	"strings"
	"testing"

	"globent-quiz-service/internal/domain"
)

func TestPINGeneratorShape(t *testing.T) {
	gen := domain.NewPINGeneratorWithSource(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		pin := gen.NextPIN()
		if !domain.ValidPIN(pin) {
			t.Fatalf("generated pin %q does not match [A-Z0-9]{6}", pin)
		}
		digits := 0
		for _, c := range pin {
			if c >= '0' && c <= '9' {
				digits++
			}
		}
		if digits != 2 {
			t.Fatalf("expected 2 digits in %q, got %d", pin, digits)
		}
	}
}

func TestPINGeneratorShufflesDigitPositions(t *testing.T) {
	gen := domain.NewPINGeneratorWithSource(rand.NewSource(7))
	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		pin := gen.NextPIN()
		seen[strings.IndexAny(pin, "0123456789")] = true
	}
	if len(seen) < 4 {
		t.Fatalf("expected digits to appear in varied positions, saw first-digit positions %v", seen)
	}
}

func TestParsePIN(t *testing.T) {
	cases := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "ab12cd", want: "AB12CD"},
		{raw: "  AB12CD ", want: "AB12CD"},
		{raw: "AB12C", wantErr: true},
		{raw: "AB12CDE", wantErr: true},
		{raw: "AB-2CD", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := domain.ParsePIN(tc.raw)
		if tc.wantErr {
			if err != domain.ErrInvalidPIN {
				t.Fatalf("ParsePIN(%q): expected ErrInvalidPIN, got %q, %v", tc.raw, got, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParsePIN(%q) = %q, %v; want %q", tc.raw, got, err, tc.want)
		}
	}
}
