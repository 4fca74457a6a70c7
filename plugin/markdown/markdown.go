// Package markdown extracts display fields from markdown post content.
package markdown

import (
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// TitleMaxLength is the maximum rune length of an extracted title, ellipsis included.
const TitleMaxLength = 50

var parser = goldmark.New().Parser()

// Title returns a one-line title for content: the first heading if there is
// one, otherwise the first line of the first paragraph.
func Title(content string) string {
	source := []byte(content)
	doc := parser.Parse(text.NewReader(source))

	var heading, paragraph ast.Node
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindHeading:
			heading = n
			return ast.WalkStop, nil
		case ast.KindParagraph:
			if paragraph == nil {
				paragraph = n
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	title := ""
	switch {
	case heading != nil:
		title = plainText(heading, source)
	case paragraph != nil:
		title, _, _ = strings.Cut(plainText(paragraph, source), "\n")
	}
	return truncate(strings.TrimSpace(title), TitleMaxLength)
}

// plainText concatenates the text segments below n, dropping inline markup.
func plainText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(source))
			if v.HardLineBreak() || v.SoftLineBreak() {
				sb.WriteByte('\n')
			}
		case *ast.String:
			sb.Write(v.Value)
		case *ast.CodeSpan:
			for child := v.FirstChild(); child != nil; child = child.NextSibling() {
				if t, ok := child.(*ast.Text); ok {
					sb.Write(t.Segment.Value(source))
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}
