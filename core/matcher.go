package core

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PhraseMatcher matches a literal phrase as a case-insensitive whole word.
//
// The phrase is bounded by \b on both sides and every character in it is
// matched literally. Case folding follows JavaScript's /i flag: ASCII letters
// fold only to their ASCII counterpart and non-ASCII letters fold only to
// other non-ASCII letters. Together with the ASCII-only \b this guarantees
// that every word token of the phrase appears as a whole token (see Tokenize)
// in any text the matcher accepts.
type PhraseMatcher struct {
	phrase string
	re     *regexp.Regexp
	tokens []string
}

// NewPhraseMatcher compiles a matcher for phrase.
func NewPhraseMatcher(phrase string) (*PhraseMatcher, error) {
	if phrase == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrEmptyQuery)
	}

	var b strings.Builder
	b.WriteString(`\b`)
	for _, r := range phrase {
		b.WriteString(foldClass(r))
	}
	b.WriteString(`\b`)

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("%w: query %q: %w", ErrInvalidInput, phrase, err)
	}

	return &PhraseMatcher{
		phrase: phrase,
		re:     re,
		tokens: Tokenize(phrase),
	}, nil
}

// Phrase returns the literal phrase.
func (m *PhraseMatcher) Phrase() string {
	return m.phrase
}

// Tokens returns the normalized word tokens of the phrase.
// A phrase made only of non-word characters has no tokens.
func (m *PhraseMatcher) Tokens() []string {
	return m.tokens
}

// Match reports whether text contains the phrase as a whole word.
func (m *PhraseMatcher) Match(text string) bool {
	return m.re.MatchString(text)
}

// String returns the compiled pattern.
func (m *PhraseMatcher) String() string {
	return m.re.String()
}

// foldClass returns the pattern fragment matching r and its case variants.
func foldClass(r rune) string {
	if r < utf8.RuneSelf {
		switch {
		case 'a' <= r && r <= 'z':
			return "[" + string(r) + string(r-'a'+'A') + "]"
		case 'A' <= r && r <= 'Z':
			return "[" + string(r-'A'+'a') + string(r) + "]"
		}
		return regexp.QuoteMeta(string(r))
	}

	variants := []rune{r}
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if f >= utf8.RuneSelf {
			variants = append(variants, f)
		}
	}
	if len(variants) == 1 {
		return regexp.QuoteMeta(string(r))
	}
	return "[" + string(variants) + "]"
}

// Tokenize splits text into the word tokens used by the page token index.
//
// A token is a maximal run of ASCII word characters ([0-9A-Za-z_], the same
// class \b is defined on), lowercased. Tokens are returned once each, in
// order of first occurrence.
func Tokenize(text string) []string {
	var tokens []string
	seen := make(map[string]struct{})
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		tok := strings.ToLower(text[start:end])
		if _, ok := seen[tok]; !ok {
			seen[tok] = struct{}{}
			tokens = append(tokens, tok)
		}
		start = -1
	}
	for i := 0; i < len(text); i++ {
		if isWordByte(text[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(text))
	return tokens
}

func isWordByte(c byte) bool {
	return c == '_' ||
		('0' <= c && c <= '9') ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z')
}
