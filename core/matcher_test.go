package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPhraseMatcher_Empty(t *testing.T) {
	m, err := NewPhraseMatcher("")
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Nil(t, m)
}

func TestPhraseMatcher_Match(t *testing.T) {
	tests := []struct {
		name   string
		phrase string
		text   string
		want   bool
	}{
		{"whole word", "cat", "The cat sat.", true},
		{"embedded in longer word", "cat", "Every category counts.", false},
		{"suffix of word", "cat", "A bobcat ran.", false},
		{"start of text", "cat", "cat", true},
		{"end with punctuation", "fox", "A fox.", true},
		{"underscore is a word char", "fox", "fox_hole", false},
		{"digits are word chars", "fox", "fox2", false},
		{"query upper, text lower", "Cat", "the cat", true},
		{"query upper, text title", "Cat", "The Cat", true},
		{"query upper, text upper", "Cat", "THE CAT", true},
		{"multi word phrase", "the fox", "Then the fox ran", true},
		{"multi word phrase split", "the fox", "the big fox", false},
		{"dot is literal", "a.c", "abc", false},
		{"dot matches itself", "a.c", "see a.c here", true},
		{"pattern chars are literal", "(cat)", "a (cat) b", false},
		{"star is literal", "ca*t", "caat", false},
		{"star matches itself", "ca*t", "x ca*t y", true},
		{"long s does not fold to s", "asks", "aſks", false},
		{"kelvin sign does not fold to k", "key", "\u212Aey", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewPhraseMatcher(tt.phrase)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Match(tt.text))
		})
	}
}

func TestPhraseMatcher_NonASCIIFold(t *testing.T) {
	m, err := NewPhraseMatcher("naïve")
	require.NoError(t, err)
	assert.True(t, m.Match("so NAÏVE."))
	assert.True(t, m.Match("so Naïve."))
	assert.False(t, m.Match("so naive."))
}

func TestPhraseMatcher_Tokens(t *testing.T) {
	m, err := NewPhraseMatcher("The Fox-hole")
	require.NoError(t, err)
	assert.Equal(t, []string{"the", "fox", "hole"}, m.Tokens())
	assert.Equal(t, "The Fox-hole", m.Phrase())

	m, err = NewPhraseMatcher("--")
	require.NoError(t, err)
	assert.Empty(t, m.Tokens())
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"simple", "The fox ran.", []string{"the", "fox", "ran"}},
		{"duplicates collapse", "Fox fox FOX", []string{"fox"}},
		{"underscore and digits", "fox_2 hen", []string{"fox_2", "hen"}},
		{"non-ascii splits", "caféteria", []string{"caf", "teria"}},
		{"only punctuation", "!?--", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.text))
		})
	}
}

func TestTokenize_CoversMatches(t *testing.T) {
	// Every phrase token must be a text token whenever the phrase matches.
	texts := []string{
		"The cat sat.",
		"CAT-like (cat) behaviour",
		"a.c and a.c",
		"Then the fox ran",
	}
	phrases := []string{"cat", "Cat", "a.c", "the fox", "(cat)"}

	for _, phrase := range phrases {
		m, err := NewPhraseMatcher(phrase)
		require.NoError(t, err)
		for _, text := range texts {
			if !m.Match(text) {
				continue
			}
			textTokens := Tokenize(text)
			for _, tok := range m.Tokens() {
				assert.Contains(t, textTokens, tok, "phrase %q text %q", phrase, text)
			}
		}
	}
}
