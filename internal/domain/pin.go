package domain

import (
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"
)

const (
	// PINLength is the fixed length of every quiz PIN.
	PINLength = 6
	// MaxPINAttempts bounds how many PINs are tried before creation fails.
	MaxPINAttempts = 10

	pinDigits  = "0123456789"
	pinLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var pinPattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// NormalizePIN trims and upper-cases raw user input.
func NormalizePIN(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidPIN reports whether pin is already in canonical form.
func ValidPIN(pin string) bool {
	return pinPattern.MatchString(pin)
}

// ParsePIN normalizes raw input and rejects anything that is not a PIN.
func ParsePIN(raw string) (string, error) {
	pin := NormalizePIN(raw)
	if !ValidPIN(pin) {
		return "", ErrInvalidPIN
	}
	return pin, nil
}

// PINGenerator produces PINs made of 2 digits and 4 letters in shuffled order.
// It is safe for concurrent use.
type PINGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewPINGenerator() *PINGenerator {
	return NewPINGeneratorWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewPINGeneratorWithSource allows deterministic PINs in tests.
func NewPINGeneratorWithSource(src rand.Source) *PINGenerator {
	return &PINGenerator{rnd: rand.New(src)}
}

// NextPIN returns a new candidate PIN. Uniqueness is enforced by the store.
func (g *PINGenerator) NextPIN() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	pin := make([]byte, 0, PINLength)
	for i := 0; i < 2; i++ {
		pin = append(pin, pinDigits[g.rnd.Intn(len(pinDigits))])
	}
	for i := 0; i < 4; i++ {
		pin = append(pin, pinLetters[g.rnd.Intn(len(pinLetters))])
	}
	// Fisher-Yates so digits are not always leading.
	for i := len(pin) - 1; i > 0; i-- {
		j := g.rnd.Intn(i + 1)
		pin[i], pin[j] = pin[j], pin[i]
	}
	return string(pin)
}
