// Package token turns raw text into structured payloads suitable for
// ingestion into the audit trail.
package token

import (
	"regexp"

	"github.com/clognichain/clogni/internal/payload"
)

var (
	// Kanji, hiragana, katakana (including the prolonged sound mark).
	reJA = regexp.MustCompile(`[一-龠ぁ-んァ-ヴー]+`)
	reEN = regexp.MustCompile(`[A-Za-z]+`)
)

// Parser extracts token runs from text for a single language.
type Parser struct {
	lang string
	re   *regexp.Regexp
}

// NewParser creates a parser for the given language label.
// "ja" selects the Japanese script runs; anything else tokenizes
// latin-alphabet words.
func NewParser(lang string) *Parser {
	re := reEN
	if lang == "ja" {
		re = reJA
	}
	return &Parser{lang: lang, re: re}
}

// Lang returns the parser's language label.
func (p *Parser) Lang() string {
	return p.lang
}

// Parse tokenizes text into a {lang, tokens, len} payload.
func (p *Parser) Parse(text string) payload.Object {
	matches := p.re.FindAllString(text, -1)

	tokens := make(payload.Array, len(matches))
	for i, tok := range matches {
		tokens[i] = payload.String(tok)
	}

	return payload.Object{
		"lang":   payload.String(p.lang),
		"tokens": tokens,
		"len":    payload.Int(int64(len(matches))),
	}
}
