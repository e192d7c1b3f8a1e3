package shortener_test

import (
	"strings"
	"testing"

	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodeGenerator(t *testing.T) {
	t.Run("generates codes of the requested length from the alphabet", func(t *testing.T) {
		for _, length := range []int{shortener.MinCodeLength, 4, shortener.DefaultCodeLength} {
			gen, err := shortener.NewCodeGenerator(length)
			require.NoError(t, err)

			for j := 0; j < 100; j++ {
				code := gen()

				assert.Len(t, code, length)
				assert.True(t, shortener.ValidCode(code), code)
			}
		}
	})

	t.Run("successive codes differ", func(t *testing.T) {
		gen, err := shortener.NewCodeGenerator(shortener.DefaultCodeLength)
		require.NoError(t, err)

		seen := make(map[string]struct{}, 1000)
		for j := 0; j < 1000; j++ {
			seen[gen()] = struct{}{}
		}

		assert.Len(t, seen, 1000)
	})

	t.Run("rejects lengths outside the column width", func(t *testing.T) {
		for _, length := range []int{0, -1, 1, shortener.MaxCodeLength + 1} {
			gen, err := shortener.NewCodeGenerator(length)

			assert.Nil(t, gen)
			assert.Error(t, err)
		}
	})
}

func TestValidCode(t *testing.T) {
	valid := []string{"a", "abc123", "ABCdef12", "00000000"}
	invalid := []string{"", "abc-123", "abc_123", "abc 12", "abcdefghi", "ünï", strings.Repeat("a", 64)}

	for _, code := range valid {
		assert.True(t, shortener.ValidCode(code), code)
	}

	for _, code := range invalid {
		assert.False(t, shortener.ValidCode(code), code)
	}
}

func TestReserved(t *testing.T) {
	for _, code := range []string{"health", "metrics", "docs", "shorten"} {
		assert.True(t, shortener.Reserved(code), code)
	}

	for _, code := range []string{"Health", "abc123", "healthz"} {
		assert.False(t, shortener.Reserved(code), code)
	}
}
