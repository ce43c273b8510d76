// Package infer turns the free-text type hints of wiki field directives into
// normalized type expressions and legal identifiers.
//
// Type inference reads backreferences from a field's description. Directive
// resolution leaves markers such as "@Color structure", "@IVector type" or
// "@RENDERGROUP enum" in the text, and [Engine.Type] uses them to refine
// generic raw types:
//
//   - number: enum backreferences (enum aliases applied).
//   - table: a color-like name hint forces Color; otherwise "table of
//     tables", "table of X"/"list of X", or structure backreferences.
//   - boolean, string: never refined.
//   - anything else: type backreferences.
//
// When nothing refines the raw type, the raw type is returned unchanged.
package infer

import (
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"go.jacobcolvin.com/wikitypes/document"
	"go.jacobcolvin.com/wikitypes/overrides"
	"go.jacobcolvin.com/wikitypes/textnorm"
)

// Type tokens with special meaning.
const (
	// Nil marks an absent value. It never survives into a [document.Field]:
	// its presence makes the field optional.
	Nil = "undefined"
	// Vararg is the type of a variadic parameter.
	Vararg = "any[]"
	// Any replaces a type list that only held [Nil].
	Any = "any"
	// Color is the canonical color type.
	Color = "Color"

	stencilSentinel = "STENCIL"
)

var (
	structRefRe = backref("structure")
	typeRefRe   = backref("type")
	enumRefRe   = backref("enum")

	colorNameRe     = regexp.MustCompile(`(?i)color`)
	tableOfTablesRe = regexp.MustCompile(`(?i)table\sof\stables`)
	collectionRe    = regexp.MustCompile(`(?i)(table|list)\sof`)
)

func backref(kind string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)@([a-zA-Z_.:]+)\s` + kind)
}

// Reserved parameter names and their replacements.
var reserved = map[string]string{
	"number":   "num",
	"string":   "str",
	"colour":   "color",
	"class":    "cls",
	"default":  "def",
	"var":      "obj",
	"old":      "prev",
	"new":      "next",
	"function": "func",
	"self":     "this",
}

// Engine performs type and name inference against an override table.
type Engine struct {
	table *overrides.Table
	log   *slog.Logger
}

// New creates an Engine. A nil table disables alias lookups and a nil logger
// discards ambiguity reports.
func New(table *overrides.Table, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Engine{table: table, log: log}
}

// TypeName normalizes one raw type token. "nil" becomes [Nil], "vararg" and
// "varargs" become [Vararg], and anything else is stripped to a legal type
// name.
func TypeName(raw string) string {
	switch textnorm.Clean(raw, textnorm.Trim, textnorm.Lower) {
	case "nil":
		return Nil
	case "vararg", "varargs":
		return Vararg
	}

	return textnorm.Clean(raw, textnorm.Markup, textnorm.Trim, textnorm.TypeName)
}

// Name legalizes a parameter name. typ is the normalized type of the
// parameter (see [TypeName]); a [Vararg] type turns the name into a rest
// parameter.
func Name(raw, typ string) string {
	if raw == "" {
		return ""
	}

	if safe, ok := reserved[textnorm.Clean(raw, textnorm.Trim, textnorm.Lower, textnorm.Quotes)]; ok {
		return safe
	}

	if strings.Contains(raw, "...") || typ == Vararg {
		raw = "..." + strings.ReplaceAll(raw, ".", "")
	}

	if strings.TrimSpace(raw) == "..." {
		raw = "...args"
	}

	return textnorm.Clean(raw, textnorm.Trim, textnorm.Quotes, textnorm.Ident)
}

// Type infers the type union for a field. raw is a normalized type token
// (see [TypeName]), desc the field's description and name its legalized
// name. The result is never empty.
func (e *Engine) Type(raw, desc, name string) []string {
	var types []string

	isColor := name != "" && colorNameRe.MatchString(name)

	switch {
	case raw == "table" && isColor:
		types = append(types, Color)

	case desc != "":
		structs := refs(structRefRe, desc)
		typs := refs(typeRefRe, desc)

		if isColor && !slices.Contains(structs, Color) {
			structs = append(structs, Color)
		}

		switch raw {
		case "number":
			for _, s := range refs(enumRefRe, desc) {
				if s == stencilSentinel {
					continue
				}

				types = append(types, e.table.EnumAlias(s))
			}

		case "table":
			switch {
			case tableOfTablesRe.MatchString(desc):
				types = append(types, "table[]")
			case collectionRe.MatchString(desc):
				candidates := slices.Concat(structs, typs)
				if len(candidates) > 1 {
					e.log.Debug("ambiguous collection element type",
						slog.String("description", desc),
						slog.Any("candidates", candidates),
					)
				}

				if len(candidates) > 0 {
					types = append(types, candidates[0]+"[]")
				}
			default:
				types = append(types, structs...)
			}

		case "boolean", "string":
			// Never refined.

		default:
			if i, j := slices.Index(typs, "table"), slices.Index(structs, Color); i >= 0 && j >= 0 {
				typs = slices.Delete(typs, i, i+1)
				types = append(types, Color)
			}

			types = append(types, typs...)
		}
	}

	types = dedupe(types)
	if len(types) == 0 {
		return []string{raw}
	}

	return types
}

// Spec is the raw content of one field-like directive. Description must
// already have its links resolved.
type Spec struct {
	Type        string
	Name        string
	Description string
	Default     string
	Args        []document.Field
}

// Field builds a [document.Field] from s. A [Nil] type token is removed from
// the union and makes the field optional, as does a description mentioning
// "optional". A union that only held [Nil] becomes [Any].
func (e *Engine) Field(s Spec) document.Field {
	var typ string
	if s.Type != "" {
		typ = TypeName(s.Type)
	}

	f := document.Field{
		Name:        Name(s.Name, typ),
		Description: s.Description,
		Default:     textnorm.Clean(s.Default, textnorm.Markup, textnorm.Trim),
		Args:        s.Args,
	}

	if s.Type != "" {
		f.Type = e.Type(typ, s.Description, f.Name)
	}

	if i := slices.Index(f.Type, Nil); i >= 0 {
		f.Type = slices.Delete(f.Type, i, i+1)
		f.Optional = true

		if len(f.Type) == 0 {
			f.Type = []string{Any}
		}
	} else if strings.Contains(s.Description, "optional") {
		f.Optional = true
	}

	return f
}

func refs(re *regexp.Regexp, desc string) []string {
	var out []string

	for _, m := range re.FindAllStringSubmatch(desc, -1) {
		if m[1] != "" {
			out = append(out, TypeName(m[1]))
		}
	}

	return out
}

func dedupe(types []string) []string {
	out := make([]string, 0, len(types))

	for _, t := range types {
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}

	return out
}
