// Package scan extracts balanced, possibly nested, delimited blocks from text.
//
// A single left-to-right pass tracks nesting depth for one delimiter pair.
// Whenever the depth returns to zero, the text between the outermost opening
// and closing delimiters is handed to a [Resolver], and the resolver's result
// replaces the whole span including the delimiters. Text outside any span is
// copied verbatim.
//
// Resolvers may call [Scan] on their own input to resolve inner blocks first,
// which yields inside-out resolution: by the time an enclosing block is
// resolved, every block nested in it has already been replaced with plain
// text.
//
// Unbalanced input is tolerated by default. A closing delimiter at depth zero
// is copied verbatim, and an unterminated block is dropped without reaching
// the resolver (or kept verbatim with [WithKeepDangling]). [WithStrict] turns
// an unterminated block into [ErrMalformedBlock].
package scan

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrMalformedBlock is returned in strict mode for unterminated blocks.
var ErrMalformedBlock = errors.New("malformed block")

// Delims is an opening and closing delimiter pair.
type Delims struct {
	Open  string
	Close string
}

// Delimiter pairs used by the wiki markup.
var (
	Directive    = Delims{Open: "{{", Close: "}}"}
	WikiLink     = Delims{Open: "[[", Close: "]]"}
	ExternalLink = Delims{Open: "[", Close: "]"}
)

// Resolver converts the inner text of one block into its substitution.
type Resolver func(inner string) (string, error)

// Option configures a scan.
type Option func(*options)

type options struct {
	onDangling   func(span string)
	strict       bool
	keepDangling bool
}

// WithStrict makes unterminated blocks fail with [ErrMalformedBlock].
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithKeepDangling copies an unterminated block to the output verbatim
// instead of dropping it. It has no effect in strict mode.
func WithKeepDangling(keep bool) Option {
	return func(o *options) {
		o.keepDangling = keep
	}
}

// WithDanglingHook registers fn to receive the unterminated span, starting
// at its opening delimiter, whenever a lenient scan drops or keeps one.
func WithDanglingHook(fn func(span string)) Option {
	return func(o *options) {
		o.onDangling = fn
	}
}

// Scan replaces every top-level block in text delimited by d with the result
// of resolve. The first resolver error aborts the scan.
func Scan(text string, d Delims, resolve Resolver, opts ...Option) (string, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	var (
		b     strings.Builder
		depth int
		start int
		last  int
	)

	b.Grow(len(text))

	for i := 0; i < len(text); {
		switch {
		case strings.HasPrefix(text[i:], d.Open):
			if depth == 0 {
				start = i
			}

			depth++
			i += len(d.Open)

		case depth > 0 && strings.HasPrefix(text[i:], d.Close):
			depth--
			if depth == 0 {
				sub, err := resolve(text[start+len(d.Open) : i])
				if err != nil {
					return "", err
				}

				b.WriteString(text[last:start])
				b.WriteString(sub)

				last = i + len(d.Close)
			}

			i += len(d.Close)

		default:
			i++
		}
	}

	if depth == 0 {
		b.WriteString(text[last:])

		return b.String(), nil
	}

	if o.strict {
		return "", errors.Wrapf(ErrMalformedBlock, "unterminated %q at offset %d", d.Open, start)
	}

	if o.onDangling != nil {
		o.onDangling(text[start:])
	}

	if o.keepDangling {
		b.WriteString(text[last:])
	} else {
		b.WriteString(text[last:start])
	}

	return b.String(), nil
}

// Replace is [Scan] for resolvers that cannot fail. Unterminated blocks are
// kept verbatim.
func Replace(text string, d Delims, resolve func(inner string) string) string {
	out, err := Scan(text, d, func(inner string) (string, error) {
		return resolve(inner), nil
	}, WithKeepDangling(true))
	if err != nil {
		// Unreachable: the resolver never fails and strict mode is off.
		return text
	}

	return out
}
