package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.jacobcolvin.com/wikitypes/textnorm"
)

func TestClean(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		ops   []textnorm.Op
		want  string
	}{
		"entities": {
			input: "a &amp; b &lt;c&gt;",
			ops:   []textnorm.Op{textnorm.Entities},
			want:  "a & b <c>",
		},
		"comments": {
			input: "keep<!-- drop\nthis -->me",
			ops:   []textnorm.Op{textnorm.Comments},
			want:  "keepme",
		},
		"break tags become newlines": {
			input: "one<br/>two<BR>three <code>x</code>",
			ops:   []textnorm.Op{textnorm.Tags},
			want:  "one\ntwo\nthree x",
		},
		"wiki markup": {
			input: "'''bold''' and ''italic''",
			ops:   []textnorm.Op{textnorm.Markup},
			want:  "bold and italic",
		},
		"trim lower quotes": {
			input: "  \"Self\" ",
			ops:   []textnorm.Op{textnorm.Trim, textnorm.Lower, textnorm.Quotes},
			want:  "self",
		},
		"norm collapses whitespace": {
			input: "  a\n\n  b\tc  ",
			ops:   []textnorm.Op{textnorm.Norm},
			want:  "a b c",
		},
		"cap": {
			input: "callback",
			ops:   []textnorm.Op{textnorm.Cap},
			want:  "Callback",
		},
		"type name keeps brackets and dots": {
			input: " table[] ",
			ops:   []textnorm.Op{textnorm.Trim, textnorm.TypeName},
			want:  "table[]",
		},
		"type name drops punctuation": {
			input: "Vector (optional)",
			ops:   []textnorm.Op{textnorm.TypeName},
			want:  "Vectoroptional",
		},
		"no ops": {
			input: " as is ",
			want:  " as is ",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, textnorm.Clean(tc.input, tc.ops...))
		})
	}
}

func TestIdentifier(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		want  string
	}{
		"plain":          {input: "value", want: "value"},
		"spaces removed": {input: "Old Value", want: "OldValue"},
		"rest marker":    {input: "...args", want: "...args"},
		"leading digit":  {input: "2d", want: "_2d"},
		"punctuation":    {input: "r_or-color!", want: "r_orcolor"},
		"dollar kept":    {input: "$x", want: "$x"},
		"empty":          {input: "", want: ""},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, textnorm.Identifier(tc.input))
		})
	}
}

func TestCapitalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", textnorm.Capitalize(""))
	assert.Equal(t, "ÉCole", textnorm.Capitalize("éCole"))
	assert.Equal(t, "X", textnorm.Capitalize("x"))
}
