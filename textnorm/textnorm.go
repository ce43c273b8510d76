// Package textnorm provides the string cleaning operations shared by the
// parser and the generator.
//
// Operations are composed with [Clean], which applies each [Op] in order:
//
//	name := textnorm.Clean(raw, textnorm.Trim, textnorm.Lower, textnorm.Quotes)
package textnorm

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Op is a single cleaning operation.
type Op int

const (
	// Entities decodes HTML character references (&amp;, &lt;, &#39;, ...).
	Entities Op = iota
	// Comments removes HTML comments.
	Comments
	// Tags converts <br> tags to newlines and strips all other HTML tags.
	Tags
	// Markup removes wiki bold/italic quote runs ('' and ''').
	Markup
	// Trim removes leading and trailing whitespace.
	Trim
	// Lower lower-cases the string.
	Lower
	// Quotes removes single, double and back quotes.
	Quotes
	// Ident legalizes the string as a parameter identifier. A leading rest
	// marker ("...") is kept.
	Ident
	// TypeName legalizes the string as a type token, keeping dots and array
	// brackets.
	TypeName
	// Norm applies Unicode NFC and collapses whitespace runs to one space.
	Norm
	// Cap upper-cases the first rune.
	Cap
)

var (
	commentRe    = regexp.MustCompile(`(?s)<!--.*?-->`)
	breakRe      = regexp.MustCompile(`(?i)<br\s*/?>`)
	tagRe        = regexp.MustCompile(`</?[a-zA-Z][^<>]*>`)
	markupRe     = regexp.MustCompile(`'{2,}`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Clean applies ops to s in order.
func Clean(s string, ops ...Op) string {
	for _, op := range ops {
		s = apply(s, op)
	}

	return s
}

func apply(s string, op Op) string {
	switch op {
	case Entities:
		return html.UnescapeString(s)
	case Comments:
		return commentRe.ReplaceAllString(s, "")
	case Tags:
		return tagRe.ReplaceAllString(breakRe.ReplaceAllString(s, "\n"), "")
	case Markup:
		return markupRe.ReplaceAllString(s, "")
	case Trim:
		return strings.TrimSpace(s)
	case Lower:
		return strings.ToLower(s)
	case Quotes:
		return strings.Map(func(r rune) rune {
			if r == '"' || r == '\'' || r == '`' {
				return -1
			}

			return r
		}, s)
	case Ident:
		return Identifier(s)
	case TypeName:
		return typeName(s)
	case Norm:
		return strings.TrimSpace(whitespaceRe.ReplaceAllString(norm.NFC.String(s), " "))
	case Cap:
		return Capitalize(s)
	}

	return s
}

// Identifier legalizes s as an identifier: characters other than letters,
// digits, '_' and '$' are dropped, and a leading digit is prefixed with '_'.
// A leading "..." rest marker survives.
func Identifier(s string) string {
	rest, s := cutRest(s)

	out := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' {
			return r
		}

		return -1
	}, s)

	if out != "" && unicode.IsDigit([]rune(out)[0]) {
		out = "_" + out
	}

	return rest + out
}

func cutRest(s string) (string, string) {
	s = strings.TrimSpace(s)
	if after, ok := strings.CutPrefix(s, "..."); ok {
		return "...", after
	}

	return "", s
}

func typeName(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("_.[]", r) {
			return r
		}

		return -1
	}, s)
}

// Capitalize upper-cases the first rune of s and leaves the rest untouched.
func Capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])

	return string(runes)
}
