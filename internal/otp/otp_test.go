package otp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate_FixedWidthDigits(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		code := Generate(DefaultLength)
		assert.Len(t, code, DefaultLength)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "unexpected rune %q in %q", r, code)
		}
	}
}

func TestGenerate_CustomAndInvalidLength(t *testing.T) {
	t.Parallel()

	assert.Len(t, Generate(8), 8)
	assert.Len(t, Generate(0), DefaultLength)
	assert.Len(t, Generate(-3), DefaultLength)
}

func TestGenerate_NotConstant(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		seen[Generate(DefaultLength)] = true
	}
	assert.Greater(t, len(seen), 1)
}
