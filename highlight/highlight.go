// Package highlight renders source text as syntax highlighted HTML.
package highlight

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters/html"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
)

// DefaultStyle is used when Options.Style is empty or unknown.
const DefaultStyle = "monokai"

type Options struct {
	// Style is a chroma style name.
	Style       string `json:"style"`
	LineNumbers bool   `json:"lineNumbers"`
	// Mark highlights lines Mark[0] to Mark[1], 1-based and inclusive.
	// Zero disables marking.
	Mark [2]int `json:"mark"`
}

// style returns the chroma style named by opts, or DefaultStyle.
func (opts Options) style() *chroma.Style {
	if s, ok := styles.Registry[opts.Style]; ok {
		return s
	}
	return styles.Get(DefaultStyle)
}

// KnownStyle reports whether name is a registered chroma style.
func KnownStyle(name string) bool {
	_, ok := styles.Registry[name]
	return ok
}

// Tokens splits source into tokens of language lang. Unknown languages
// are tokenised as plain text.
func Tokens(lang, source string) ([]chroma.Token, error) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iter, err := chroma.Coalesce(lexer).Tokenise(nil, source)
	if err != nil {
		return nil, fmt.Errorf("tokenise %s: %w", lang, err)
	}
	return iter.Tokens(), nil
}

// Format renders tokens as an HTML fragment.
func Format(tokens []chroma.Token, opts Options) (template.HTML, error) {
	htmlOpts := []html.Option{
		html.WithLineNumbers(opts.LineNumbers),
		html.LineNumbersInTable(opts.LineNumbers),
		html.Standalone(false),
		html.TabWidth(2),
	}
	if opts.Mark[0] > 0 {
		end := opts.Mark[1]
		if end < opts.Mark[0] {
			end = opts.Mark[0]
		}
		htmlOpts = append(htmlOpts, html.HighlightLines([][2]int{{opts.Mark[0], end}}))
	}
	var buf bytes.Buffer
	if err := html.New(htmlOpts...).Format(&buf, opts.style(), chroma.Literator(tokens...)); err != nil {
		return "", fmt.Errorf("format: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// String tokenises and formats source in one step.
func String(lang, source string, opts Options) (template.HTML, error) {
	tokens, err := Tokens(lang, source)
	if err != nil {
		return "", err
	}
	return Format(tokens, opts)
}
