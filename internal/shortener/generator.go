package shortener

import (
	"fmt"
	"strings"

	"github.com/jaevor/go-nanoid"
)

// Alphabet is the set of symbols a code may contain.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	// DefaultCodeLength gives a code space of 62^8.
	DefaultCodeLength = 8
	// MinCodeLength is the shortest length nanoid generates.
	MinCodeLength = 2
	// MaxCodeLength is bounded by the short_code column width.
	MaxCodeLength = 8
)

// reservedCodes shadow fixed routes served beside /{code} and /api/v1/{code}.
var reservedCodes = map[string]struct{}{
	"docs":    {},
	"health":  {},
	"metrics": {},
	"openapi": {},
	"schemas": {},
	"shorten": {},
}

// Reserved reports whether code collides with a fixed route and must never be issued.
func Reserved(code string) bool {
	_, ok := reservedCodes[code]

	return ok
}

// CodeGenerator generates candidate short codes.
type CodeGenerator func() string

// NewCodeGenerator returns a random base62 generator of the given length.
func NewCodeGenerator(length int) (CodeGenerator, error) {
	if length < MinCodeLength || length > MaxCodeLength {
		return nil, fmt.Errorf("code length must be between %d and %d, got %d", MinCodeLength, MaxCodeLength, length)
	}

	gen, err := nanoid.CustomASCII(Alphabet, length)
	if err != nil {
		return nil, fmt.Errorf("create nanoid generator: %w", err)
	}

	return CodeGenerator(gen), nil
}

// ValidCode reports whether s could have been produced by a generator.
func ValidCode(s string) bool {
	if len(s) == 0 || len(s) > MaxCodeLength {
		return false
	}

	for i := 0; i < len(s); i++ {
		if strings.IndexByte(Alphabet, s[i]) < 0 {
			return false
		}
	}

	return true
}
