package generator

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.jacobcolvin.com/wikitypes/document"
	"go.jacobcolvin.com/wikitypes/overrides"
)

// Generator builds and folds symbols. It is safe for concurrent use.
type Generator struct {
	table *overrides.Table
	log   *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithOverrides sets the override table. The default is [overrides.Default].
func WithOverrides(t *overrides.Table) Option {
	return func(g *Generator) {
		g.table = t
	}
}

// WithLogger sets the logger. The default is [slog.Default].
func WithLogger(log *slog.Logger) Option {
	return func(g *Generator) {
		g.log = log
	}
}

// New creates a Generator with the given options.
func New(opts ...Option) *Generator {
	g := &Generator{}

	for _, opt := range opts {
		opt(g)
	}

	if g.table == nil {
		g.table = overrides.Default()
	}

	if g.log == nil {
		g.log = slog.Default()
	}

	return g
}

// Generate builds the symbols of doc, one per populated slot. Documents on
// the override table's generator skip list, and documents without any
// declaration, yield no symbols.
func (g *Generator) Generate(doc *document.Document) []*Symbol {
	if g.table.SkipGenerate(doc.Title) {
		g.log.Debug("skipping document", slog.String("title", doc.Title))

		return nil
	}

	var symbols []*Symbol

	for _, slot := range doc.FuncSlots() {
		symbols = append(symbols, g.function(doc, slot))
	}

	if doc.Structure != nil {
		symbols = append(symbols, g.structure(doc, doc.Structure))
	}

	if doc.Shader != nil {
		symbols = append(symbols, g.shader(doc, doc.Shader))
	}

	if doc.Enumeration != nil {
		symbols = append(symbols, g.enumeration(doc, doc.Enumeration))
	}

	return symbols
}

// isClass reports whether a function-like declaration is a class method.
// An explicit isclass attribute wins. Hooks and panel functions are always
// methods; otherwise a capitalized namespace other than Global is a class.
func isClass(slot document.FuncSlot) bool {
	if slot.Func.IsClass != nil {
		return *slot.Func.IsClass
	}

	if slot.Kind != document.KindFunc {
		return true
	}

	parent := slot.Func.Parent
	if parent == "" || parent == document.GlobalNamespace {
		return false
	}

	r, _ := utf8.DecodeRuneInString(parent)

	return unicode.IsUpper(r)
}

func (g *Generator) function(doc *document.Document, slot document.FuncSlot) *Symbol {
	f := slot.Func

	ctx := f.Parent
	if ctx == "" {
		ctx = document.GlobalNamespace
	}

	class := isClass(slot)

	sym := &Symbol{
		Title:   doc.Title,
		ID:      doc.ID,
		Kind:    KindFunction,
		Context: ctx,
		Name:    f.Name,
	}

	var self *document.Field

	switch {
	case class:
		sym.Kind = KindClass
		self = &document.Field{Name: "this", Type: []string{g.table.SelfType(ctx)}}
	case ctx != document.GlobalNamespace:
		self = &document.Field{Name: "this", Type: []string{"void"}}
	}

	if f.Description != "" {
		sym.Comments = append(sym.Comments, f.Description, "")
	}

	sep := "."
	if class {
		sep = ":"
	}

	if ctx == document.GlobalNamespace {
		sym.Comments = append(sym.Comments, "@name "+f.Name)
	} else {
		sym.Comments = append(sym.Comments, "@name "+ctx+sep+f.Name)
	}

	if f.Predicted != nil {
		sym.Comments = append(sym.Comments, "@predicted "+strconv.FormatBool(*f.Predicted))
	}

	if len(f.Realm) > 0 {
		sym.Comments = append(sym.Comments, "@realm "+strings.Join(f.Realm, ", "))
	}

	sym.Comments = append(sym.Comments, g.annotations(doc)...)

	args := doc.Args
	if self != nil {
		if len(args) > 0 && args[0].Name == "this" {
			args = args[1:]
		}

		args = append([]document.Field{*self}, args...)
	}

	b := &builder{table: g.table, ctx: ctx, member: f.Name}

	params := make([]param, 0, len(args))
	for _, a := range args {
		p := b.arg(a)
		if p.Name == "this" {
			p.Optional = false
		}

		sym.Comments = append(sym.Comments, fmt.Sprintf("@param {%s} %s - %s", p.Type, p.Name, p.describe()))
		params = append(params, p)
	}

	rets := make([]param, 0, len(doc.Returns))
	for i, r := range doc.Returns {
		p := b.ret(r, i)
		sym.Comments = append(sym.Comments, fmt.Sprintf("@returns {%s} - %s", p.Type, p.describe()))
		rets = append(rets, p)
	}

	switch {
	case len(rets) == 0:
		sym.Comments = append(sym.Comments, "@returns {void}")
	case len(rets) > 1:
		sym.Comments = append(sym.Comments, "@tupleReturn")
	}

	fo, _ := g.table.Func(ctx, f.Name)

	sym.Signature = fo.Prefix + signature(params, rets)
	sym.Overloads = fo.Overload
	sym.Extends = g.extends(ctx)
	sym.Decls = b.decls

	return sym
}

func (g *Generator) structure(doc *document.Document, s *document.Structure) *Symbol {
	sym := &Symbol{
		Title:    doc.Title,
		ID:       doc.ID,
		Kind:     KindStruct,
		Name:     s.Name,
		Comments: g.annotations(doc),
		Extends:  g.extends(s.Parent),
	}

	sym.Comments = append(sym.Comments, "@interface "+s.Name)
	if s.Description != "" {
		sym.Comments = append(sym.Comments, "@description "+s.Description)
	}

	b := &builder{table: g.table, ctx: s.Parent, member: s.Name}

	var members []Decl

	for _, field := range s.Fields {
		p := b.arg(field)
		members = append(members, Decl{
			Kind:     DeclField,
			Owner:    s.Name,
			Name:     p.Name,
			Typing:   p.Typing,
			Optional: p.Optional,
			Comments: []string{fmt.Sprintf("%s - {%s}: %s", p.Name, p.Type, p.describe())},
		})
	}

	sym.Decls = append(b.decls, members...)

	return sym
}

func (g *Generator) shader(doc *document.Document, s *document.Shader) *Symbol {
	sym := &Symbol{
		Title:    doc.Title,
		ID:       doc.ID,
		Kind:     KindShader,
		Name:     s.Name,
		Comments: g.annotations(doc),
		Extends:  g.extends(s.Parent),
	}

	sym.Comments = append(sym.Comments, "@interface "+s.Name)
	if s.Description != "" {
		sym.Comments = append(sym.Comments, "@description "+s.Description)
	}

	for _, field := range s.Parameters {
		typ := field.TypeString()
		if typ == "" {
			typ = anyType
		}

		sym.Decls = append(sym.Decls, Decl{
			Kind:     DeclField,
			Owner:    s.Name,
			Name:     field.Name,
			Typing:   typ,
			Optional: field.Optional,
			Comments: []string{fmt.Sprintf("@param {%s} %s - %s", typ, field.Name, describe(field.Description))},
		})
	}

	return sym
}

func (g *Generator) enumeration(doc *document.Document, e *document.Enumeration) *Symbol {
	sym := &Symbol{
		Title:    doc.Title,
		ID:       doc.ID,
		Kind:     KindEnum,
		Name:     e.Name,
		Comments: g.annotations(doc),
	}

	sym.Comments = append(sym.Comments, "@enum "+e.Name)
	if e.Description != "" {
		sym.Comments = append(sym.Comments, "@description "+e.Description)
	}

	membersOnly := true

	for _, field := range e.Fields {
		key := field.Key
		if i := strings.LastIndex(key, "."); i >= 0 {
			membersOnly = false
			key = key[i+1:]
		}

		sym.Decls = append(sym.Decls, Decl{
			Kind:     DeclEnumMember,
			Owner:    e.Name,
			Name:     key,
			Typing:   strconv.FormatInt(field.Value, 10),
			Comments: []string{fmt.Sprintf("@param %s - %s", key, describe(field.Description))},
		})
	}

	if membersOnly {
		sym.Comments = append(sym.Comments, "@compileMembersOnly")
	}

	return sym
}

// annotations renders the document-level comment lines shared by every
// symbol kind.
func (g *Generator) annotations(doc *document.Document) []string {
	var lines []string

	if doc.Title != "" {
		lines = append(lines, "@wiki "+g.table.WikiURL()+strings.ReplaceAll(doc.Title, " ", "_"))
	}

	lines = appendRemark(lines, "@internal", doc.Internal)

	if doc.Validate {
		lines = append(lines, "@validate")
	}

	if doc.Deleted != "" {
		lines = append(lines, "@deleted "+doc.Deleted)
	}

	lines = appendRemark(lines, "@deprecated", doc.Deprecated)

	if doc.Stub {
		lines = append(lines, "@stub")
	}

	lines = appendRemark(lines, "@update", doc.Update)

	if r := doc.Rendering; r != nil {
		lines = append(lines, "@rendering "+r.Context+":"+r.Type)
	}

	for _, n := range doc.Notes {
		lines = append(lines, "@note "+n)
	}

	for _, w := range doc.Warnings {
		lines = append(lines, "@warning "+w)
	}

	for _, bug := range doc.Bugs {
		if bug.Issue != "" {
			lines = append(lines, "@bug #"+bug.Issue+" "+bug.Text)
		} else {
			lines = append(lines, "@bug "+bug.Text)
		}
	}

	return lines
}

func appendRemark(lines []string, tag string, r *document.Remark) []string {
	switch {
	case r == nil:
		return lines
	case r.Text == "":
		return append(lines, tag)
	}

	return append(lines, tag+" "+r.Text)
}

func (g *Generator) extends(ctx string) []string {
	var out []string

	for _, base := range g.table.Extends(ctx) {
		if !slices.Contains(out, base) {
			out = append(out, base)
		}
	}

	return out
}
