package generator

import (
	"fmt"
	"strconv"
	"strings"

	"go.jacobcolvin.com/wikitypes/document"
	"go.jacobcolvin.com/wikitypes/overrides"
	"go.jacobcolvin.com/wikitypes/textnorm"
)

const (
	anyType     = "any"
	voidType    = "void"
	tableType   = "table"
	funcType    = "function"
	unknownFunc = "UnknownFunc"
)

// param is an argument, return value or sub-field after overrides have been
// applied.
type param struct {
	Name     string
	Type     string
	Typing   string
	Desc     string
	Default  string
	Optional bool
}

func (p param) describe() string {
	return describe(p.Desc)
}

func describe(desc string) string {
	if desc == "" {
		return "no description"
	}

	return desc
}

// String renders p as a signature parameter.
func (p param) String() string {
	if p.Optional && !strings.HasPrefix(p.Name, "...") {
		return p.Name + "?: " + p.Typing
	}

	return p.Name + ": " + p.Typing
}

// applyOverride merges ov over the inferred values of f.
func applyOverride(f document.Field, ov overrides.Override) param {
	p := param{
		Name:     or(ov.Name, f.Name),
		Type:     or(ov.Type, f.TypeString()),
		Typing:   ov.Typing,
		Desc:     or(ov.Desc, f.Description),
		Default:  or(ov.Default, f.Default),
		Optional: ov.Optional || f.Optional,
	}

	if p.Type == "" {
		p.Type = anyType
	}

	return p
}

// builder accumulates the auxiliary declarations synthesized for one
// member.
type builder struct {
	table  *overrides.Table
	ctx    string
	member string
	decls  []Decl
}

// base is the stem of every type name synthesized for the member.
func (b *builder) base() string {
	return strings.ReplaceAll(b.ctx, ".", "_") + b.member
}

func (b *builder) arg(f document.Field) param {
	key := overrides.ParamKey(b.ctx, b.member, f.Name)
	ov, _ := b.table.Lookup(key)
	p := applyOverride(f, ov)

	switch {
	case len(f.Args) == 0:
	case p.Type == tableType:
		name := b.base() + capitalize(p.Name) + ov.Prefix
		p.Type = b.iface(name, f.Args, &key)
		p.Typing = p.Type

		return p

	case p.Type == funcType:
		name := b.base() + callbackSuffix(p.Name) + ov.Prefix
		p.Typing = b.callback(name, f.Args, &key)

		return p
	}

	p.Typing = leafTyping(p)

	return p
}

func (b *builder) ret(f document.Field, index int) param {
	key := overrides.ReturnKey(b.ctx, b.member, index)
	ov, _ := b.table.Lookup(key)
	p := applyOverride(f, ov)

	suffix := "Return"
	if index > 0 {
		suffix += strconv.Itoa(index + 1)
	}

	switch {
	case len(f.Args) == 0:
	case p.Type == tableType:
		p.Type = b.iface(b.base()+suffix+ov.Prefix, f.Args, &key)
		p.Typing = p.Type

		return p

	case p.Type == funcType:
		p.Typing = b.callback(b.base()+suffix+ov.Prefix, f.Args, &key)

		return p
	}

	p.Typing = leafTyping(p)

	return p
}

// iface synthesizes an interface "I<base>" whose members are fields and
// returns its name. Overrides are looked up under key when it is non-nil.
func (b *builder) iface(base string, fields []document.Field, key *overrides.Key) string {
	name := "I" + base

	for _, sub := range b.subs(base, fields, key) {
		b.decls = append(b.decls, Decl{
			Kind:     DeclField,
			Owner:    name,
			Name:     sub.Name,
			Typing:   sub.Typing,
			Optional: sub.Optional,
			Comments: []string{fmt.Sprintf("%s - {%s}: %s", sub.Name, sub.Type, sub.describe())},
		})
	}

	return name
}

// callback synthesizes a function type alias named base and returns the
// name. A leading "this: void" parameter is inserted unless the first
// parameter is already this.
func (b *builder) callback(base string, fields []document.Field, key *overrides.Key) string {
	subs := b.subs(base, fields, key)
	if len(subs) == 0 || subs[0].Name != "this" {
		subs = append([]param{{Name: "this", Type: voidType, Typing: voidType}}, subs...)
	}

	comments := []string{"@type " + base}
	rendered := make([]string, 0, len(subs))

	for _, sub := range subs {
		comments = append(comments, fmt.Sprintf("@param {%s} %s - %s", sub.Type, sub.Name, sub.describe()))
		rendered = append(rendered, sub.String())
	}

	b.decls = append(b.decls, Decl{
		Kind:     DeclType,
		Name:     base,
		Typing:   "(" + strings.Join(rendered, ", ") + ") => unknown",
		Comments: comments,
	})

	return base
}

// subs resolves the sub-fields of a composite. Sub-field overrides exist
// one level below a parameter or return only, so nested composites recurse
// with a nil key. Nested composite names extend the enclosing base.
func (b *builder) subs(base string, fields []document.Field, key *overrides.Key) []param {
	out := make([]param, 0, len(fields))

	for _, f := range fields {
		var ov overrides.Override
		if key != nil {
			ov, _ = b.table.Lookup(key.Field(f.Name))
		}

		p := applyOverride(f, ov)
		p.Name += ov.Prefix

		if p.Name == "this" {
			p.Optional = false
		}

		switch {
		case len(f.Args) > 0 && p.Type == tableType:
			p.Type = b.iface(base+capitalize(p.Name), f.Args, nil)
			p.Typing = p.Type
		case len(f.Args) > 0 && p.Type == funcType:
			p.Typing = b.callback(base+capitalize(p.Name), f.Args, nil)
		default:
			p.Typing = leafTyping(p)
		}

		out = append(out, p)
	}

	return out
}

// leafTyping is the typing of a field without synthesized sub-types.
func leafTyping(p param) string {
	switch {
	case p.Typing != "":
		return p.Typing
	case p.Type == funcType:
		return unknownFunc
	}

	return p.Type
}

// callbackSuffix names a function-typed parameter's alias: "Callback" and
// "Func" for parameters named like one, else the capitalized name.
func callbackSuffix(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))

	switch {
	case strings.Contains(lower, "callback"):
		return "Callback"
	case strings.Contains(lower, "func"):
		return "Func"
	}

	return capitalize(name)
}

func capitalize(name string) string {
	return textnorm.Capitalize(strings.TrimPrefix(name, "..."))
}

// signature renders "(params): returns". Multiple returns render as a
// tuple.
func signature(params, rets []param) string {
	args := make([]string, 0, len(params))
	for _, p := range params {
		args = append(args, p.String())
	}

	var ret string

	switch len(rets) {
	case 0:
		ret = voidType
	case 1:
		ret = rets[0].Typing
	default:
		typings := make([]string, 0, len(rets))
		for _, r := range rets {
			typings = append(typings, r.Typing)
		}

		ret = "[" + strings.Join(typings, ", ") + "]"
	}

	return "(" + strings.Join(args, ", ") + "): " + ret
}

func or(a, b string) string {
	if a != "" {
		return a
	}

	return b
}
