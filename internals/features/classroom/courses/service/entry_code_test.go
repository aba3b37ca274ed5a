package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateEntryCode_ShapeAndAlphabet(t *testing.T) {
	for i := 0; i < 200; i++ {
		code := GenerateEntryCode()
		assert.Len(t, code, EntryCodeLength)
		for _, r := range code {
			assert.Contains(t, EntryCodeAlphabet, string(r))
		}
	}
}

func TestGenerateEntryCode_AvoidsAmbiguousCharacters(t *testing.T) {
	// 0/O and 1/I are excluded so codes survive being read aloud
	for _, banned := range []string{"0", "O", "1", "I"} {
		assert.NotContains(t, EntryCodeAlphabet, banned)
	}
}

func TestNormalizeEntryCode(t *testing.T) {
	assert.Equal(t, "AB23CD", NormalizeEntryCode("  ab23cd "))
	assert.Equal(t, "XYZQRS", NormalizeEntryCode("xyzqrs"))
	assert.Equal(t, "", NormalizeEntryCode("   "))
}

func TestGenerateEntryCode_SpreadsOverTheSpace(t *testing.T) {
	seen := make(map[string]struct{}, 500)
	for i := 0; i < 500; i++ {
		seen[GenerateEntryCode()] = struct{}{}
	}
	// 32^6 possible codes; mass collisions in 500 draws would mean a broken
	// generator
	assert.Greater(t, len(seen), 490)

	var sb strings.Builder
	for code := range seen {
		sb.WriteString(code)
	}
	distinct := map[rune]struct{}{}
	for _, r := range sb.String() {
		distinct[r] = struct{}{}
	}
	assert.Greater(t, len(distinct), 20, "most alphabet characters should appear across 500 codes")
}
