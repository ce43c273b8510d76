package scan_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/wikitypes/scan"
)

func TestScanIdentity(t *testing.T) {
	t.Parallel()

	inputs := map[string]string{
		"no blocks":       "plain text",
		"single block":    "a {{b}} c",
		"nested blocks":   "{{a|{{b|{{c}}}}}} tail",
		"adjacent blocks": "{{a}}{{b}}",
		"empty block":     "x{{}}y",
		"multi-line":      "{{Func\n|Name=Foo\n}}\n{{Arg|type=string}}",
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := scan.Scan(input, scan.Directive, func(inner string) (string, error) {
				return scan.Directive.Open + inner + scan.Directive.Close, nil
			})
			require.NoError(t, err)
			assert.Equal(t, input, got)
		})
	}
}

func TestScanInsideOut(t *testing.T) {
	t.Parallel()

	var order []string

	var resolve scan.Resolver
	resolve = func(inner string) (string, error) {
		resolved, err := scan.Scan(inner, scan.Directive, resolve)
		if err != nil {
			return "", err
		}

		order = append(order, resolved)

		return strings.ToUpper(resolved), nil
	}

	got, err := scan.Scan("x {{outer|{{middle|{{inner}}}}}} y", scan.Directive, resolve)
	require.NoError(t, err)

	assert.Equal(t, []string{"inner", "middle|INNER", "outer|MIDDLE|INNER"}, order)
	assert.Equal(t, "x OUTER|MIDDLE|INNER y", got)
}

func TestScanUnbalanced(t *testing.T) {
	t.Parallel()

	echo := func(inner string) (string, error) {
		return "<" + inner + ">", nil
	}

	tcs := map[string]struct {
		input string
		opts  []scan.Option
		want  string
		err   bool
	}{
		"dangling block dropped": {
			input: "keep {{a}} drop {{unterminated",
			want:  "keep <a> drop ",
		},
		"dangling block kept": {
			input: "keep {{a}} and {{unterminated",
			opts:  []scan.Option{scan.WithKeepDangling(true)},
			want:  "keep <a> and {{unterminated",
		},
		"stray closer copied": {
			input: "a }} b {{c}}",
			want:  "a }} b <c>",
		},
		"strict fails": {
			input: "{{a}} {{b",
			opts:  []scan.Option{scan.WithStrict(true)},
			err:   true,
		},
		"strict balanced ok": {
			input: "{{a}}",
			opts:  []scan.Option{scan.WithStrict(true)},
			want:  "<a>",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := scan.Scan(tc.input, scan.Directive, echo, tc.opts...)
			if tc.err {
				require.ErrorIs(t, err, scan.ErrMalformedBlock)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestScanDanglingHook(t *testing.T) {
	t.Parallel()

	var spans []string

	got, err := scan.Scan("a {{b}} {{c|{{d}}", scan.Directive,
		func(inner string) (string, error) {
			return inner, nil
		},
		scan.WithDanglingHook(func(span string) {
			spans = append(spans, span)
		}),
	)
	require.NoError(t, err)

	assert.Equal(t, "a b ", got)
	assert.Equal(t, []string{"{{c|{{d}}"}, spans)
}

func TestScanTripleBraces(t *testing.T) {
	t.Parallel()

	var inners []string

	got, err := scan.Scan("{{a|{{b}}}}", scan.Directive, func(inner string) (string, error) {
		inners = append(inners, inner)

		return "", nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a|{{b}}"}, inners)
	assert.Empty(t, got)
}

func TestScanResolverError(t *testing.T) {
	t.Parallel()

	_, err := scan.Scan("{{bad}}", scan.Directive, func(string) (string, error) {
		return "", assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
}

func TestReplace(t *testing.T) {
	t.Parallel()

	got := scan.Replace("see [[Page|Title]] and [[Other", scan.WikiLink, func(inner string) string {
		return "[[" + strings.ReplaceAll(inner, "|", "@") + "]]"
	})

	assert.Equal(t, "see [[Page@Title]] and [[Other", got)
}
