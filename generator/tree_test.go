package generator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/wikitypes/document"
	"go.jacobcolvin.com/wikitypes/generator"
	"go.jacobcolvin.com/wikitypes/parser"
	"go.jacobcolvin.com/wikitypes/stringtest"
)

func nsFunc(name, sig string) *generator.Symbol {
	return &generator.Symbol{
		Title:     "Bar/" + name,
		Kind:      generator.KindFunction,
		Context:   "Bar",
		Name:      name,
		Signature: sig,
	}
}

func TestFoldNamespaceMembers(t *testing.T) {
	t.Parallel()

	tree := generator.NewTree(nil)
	require.NoError(t, tree.Add(nsFunc("Foo", "(this: void): number")))
	require.NoError(t, tree.Add(nsFunc("Baz", "(this: void): void")))
	require.NoError(t, tree.Add(nsFunc("Foo", "(this: void): string")))

	assert.Equal(t, stringtest.JoinLF(
		"declare namespace Bar {",
		"  export function Foo(this: void): string",
		"  export function Baz(this: void): void",
		"}",
		"",
	), tree.Render())
}

func TestFoldBuckets(t *testing.T) {
	t.Parallel()

	tree := generator.NewTree([]string{"type thread = any"})

	for _, sym := range []*generator.Symbol{
		{
			Kind:      generator.KindFunction,
			Context:   document.GlobalNamespace,
			Name:      "Msg",
			Comments:  []string{"@name Msg"},
			Signature: "(text: string): void",
			Overloads: []string{"(...args: any[]): void"},
			Decls: []generator.Decl{
				{Kind: generator.DeclType, Name: "MsgCallback", Typing: "(this: void) => unknown"},
			},
		},
		{
			Kind:      generator.KindClass,
			Context:   "Player",
			Name:      "Nick",
			Extends:   []string{"Entity"},
			Signature: "(this: Player): string",
		},
		{
			Kind:      generator.KindClass,
			Context:   "Player",
			Name:      "Kill",
			Extends:   []string{"Entity", "Base"},
			Signature: "(this: Player): void",
		},
		{
			Kind: generator.KindEnum,
			Name: "KEY",
			Decls: []generator.Decl{
				{Kind: generator.DeclEnumMember, Owner: "KEY", Name: "KEY_A", Typing: "1"},
			},
		},
		{
			Kind: generator.KindEnum,
			Name: "KEY",
			Decls: []generator.Decl{
				{Kind: generator.DeclEnumMember, Owner: "KEY", Name: "KEY_B", Typing: "2"},
				{Kind: generator.DeclEnumMember, Owner: "KEY", Name: "KEY_A", Typing: "3"},
			},
		},
		{
			Kind:     generator.KindStruct,
			Name:     "IEmpty",
			Comments: []string{"@interface IEmpty"},
		},
		{
			Kind:    generator.KindFunction,
			Context: "net.Stream",
			Name:    "Read",
			Decls: []generator.Decl{
				{Kind: generator.DeclType, Name: "net_StreamReadCallback", Typing: "(this: void) => unknown"},
				{Kind: generator.DeclField, Owner: "Inet_StreamRead", Name: "n", Typing: "number", Optional: true},
			},
			Signature: "(this: void, cb: net_StreamReadCallback): Inet_StreamRead",
		},
	} {
		require.NoError(t, tree.Add(sym))
	}

	assert.Equal(t, stringtest.JoinLF(
		"type thread = any",
		"",
		"type MsgCallback = (this: void) => unknown",
		"",
		"/**",
		"* @name Msg",
		"**/",
		"declare function Msg(text: string): void",
		"declare function Msg(...args: any[]): void",
		"",
		"declare enum KEY {",
		"  KEY_A = 3,",
		"  KEY_B = 2,",
		"}",
		"",
		"/**",
		"* @interface IEmpty",
		"**/",
		"declare interface IEmpty {}",
		"",
		"declare interface Player extends Entity, Base {",
		"  Nick(this: Player): string",
		"  Kill(this: Player): void",
		"}",
		"",
		"declare namespace net.Stream {",
		"  type net_StreamReadCallback = (this: void) => unknown",
		"  export function Read(this: void, cb: net_StreamReadCallback): Inet_StreamRead",
		"  interface Inet_StreamRead {",
		"    n?: number",
		"  }",
		"}",
		"",
	), tree.Render())
}

func TestFoldInvalidSymbols(t *testing.T) {
	t.Parallel()

	tcs := map[string]*generator.Symbol{
		"nil":               nil,
		"missing name":      {Kind: generator.KindStruct},
		"missing context":   {Kind: generator.KindClass, Name: "F", Signature: "(): void"},
		"missing signature": {Kind: generator.KindFunction, Context: "util", Name: "F"},
		"unknown kind":      {Kind: "widget", Name: "W"},
		"unnamed decl": {
			Kind:  generator.KindStruct,
			Name:  "S",
			Decls: []generator.Decl{{Kind: generator.DeclField, Owner: "S"}},
		},
		"ownerless member": {
			Kind:  generator.KindEnum,
			Name:  "E",
			Decls: []generator.Decl{{Kind: generator.DeclEnumMember, Name: "A", Typing: "1"}},
		},
	}

	for name, sym := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			g := generator.New(generator.WithOverrides(testTable(t)))
			valid := nsFunc("Foo", "(this: void): void")

			tree, err := g.Fold([]*generator.Symbol{sym, valid})
			require.ErrorIs(t, err, generator.ErrInvalidSymbol)
			require.NotNil(t, tree)
			assert.Contains(t, tree.Render(), "export function Foo(this: void): void")
		})
	}
}

func TestFoldDeterministic(t *testing.T) {
	t.Parallel()

	g := generator.New(generator.WithOverrides(testTable(t)))
	p := parser.New(parser.WithOverrides(testTable(t)))

	var symbols []*generator.Symbol

	for _, page := range loadPages(t, "testdata/pages.yaml") {
		doc, err := p.Parse(page)
		require.NoError(t, err)

		symbols = append(symbols, g.Generate(doc)...)
	}

	first, err := g.Fold(symbols)
	require.NoError(t, err)

	second, err := g.Fold(symbols)
	require.NoError(t, err)

	assert.Equal(t, first.Render(), first.Render())
	assert.Equal(t, first.Render(), second.Render())
}

func TestEndToEnd(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		page document.Page
		want string
		deny string
	}{
		"free function": {
			page: document.Page{Title: "Global.PrintMessage", ID: 1, Raw: stringtest.Input(`
				{{Func|name=PrintMessage}}
				{{Arg|type=string|name=text}}
				{{Ret|type=string}}
			`)},
			want: "declare function PrintMessage(text: string): string\n",
			deny: "declare namespace Global",
		},
		"class method": {
			page: document.Page{Title: "Player/GetName", ID: 2, Raw: stringtest.Input(`
				{{Func|name=GetName}}
				{{Arg|type=number|name=limit}}
			`)},
			want: "  GetName(this: Player, limit: number): void\n",
			deny: "declare namespace Player",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			doc, err := parser.New().Parse(tc.page)
			require.NoError(t, err)

			g := generator.New()
			tree, err := g.Fold(g.Generate(doc))
			require.NoError(t, err)

			out := tree.Render()
			assert.Contains(t, out, tc.want)
			assert.NotContains(t, out, tc.deny)
		})
	}
}
