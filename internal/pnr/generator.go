// Package pnr generates airline-prefixed record locators.
package pnr

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/Domenick1991/goaero/internal/domain"
)

const (
	SuffixLength       = 6
	Alphabet           = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	DefaultMaxAttempts = 16
)

// ErrNamespaceExhausted is returned when no unused locator was found within
// the attempt cap.
var ErrNamespaceExhausted = fmt.Errorf("%w: record locator namespace exhausted", domain.ErrConflict)

// Checker reports whether a locator is already taken.
type Checker interface {
	ExistsPNR(ctx context.Context, pnr string) (bool, error)
}

type Generator struct {
	checker     Checker
	maxAttempts int
	random      io.Reader
	onAttempt   func()
}

type Option func(*Generator)

func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithRandom replaces the entropy source. Tests use it to force collisions.
func WithRandom(r io.Reader) Option {
	return func(g *Generator) {
		g.random = r
	}
}

// WithAttemptHook registers a callback run once per candidate.
func WithAttemptHook(fn func()) Option {
	return func(g *Generator) {
		g.onAttempt = fn
	}
}

func NewGenerator(checker Checker, opts ...Option) *Generator {
	g := &Generator{
		checker:     checker,
		maxAttempts: DefaultMaxAttempts,
		random:      rand.Reader,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns airlineCode followed by six random characters from
// [A-Z0-9], retrying until the checker reports the value unused.
func (g *Generator) Generate(ctx context.Context, airlineCode string) (string, error) {
	prefix, err := NormalizeAirlineCode(airlineCode)
	if err != nil {
		return "", err
	}

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if g.onAttempt != nil {
			g.onAttempt()
		}
		suffix, err := g.suffix()
		if err != nil {
			return "", err
		}
		candidate := prefix + suffix

		exists, err := g.checker.ExistsPNR(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("%w: check pnr: %v", domain.ErrStorage, err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", ErrNamespaceExhausted
}

func (g *Generator) MaxAttempts() int {
	return g.maxAttempts
}

func (g *Generator) suffix() (string, error) {
	var sb strings.Builder
	sb.Grow(SuffixLength)
	bound := big.NewInt(int64(len(Alphabet)))
	for i := 0; i < SuffixLength; i++ {
		n, err := rand.Int(g.random, bound)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		sb.WriteByte(Alphabet[n.Int64()])
	}
	return sb.String(), nil
}

func NormalizeAirlineCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", fmt.Errorf("%w: airline code is required", domain.ErrInvalidArgument)
	}
	for _, r := range code {
		if !strings.ContainsRune(Alphabet, r) {
			return "", fmt.Errorf("%w: airline code %q must be alphanumeric", domain.ErrInvalidArgument, code)
		}
	}
	return code, nil
}

// Valid reports whether pnr has the expected shape for the airline.
func Valid(pnr, airlineCode string) bool {
	prefix, err := NormalizeAirlineCode(airlineCode)
	if err != nil || !strings.HasPrefix(pnr, prefix) {
		return false
	}
	suffix := pnr[len(prefix):]
	if len(suffix) != SuffixLength {
		return false
	}
	for _, r := range suffix {
		if !strings.ContainsRune(Alphabet, r) {
			return false
		}
	}
	return true
}
