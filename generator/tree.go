package generator

import (
	"iter"
	"log/slog"
	"slices"

	"github.com/cockroachdb/errors"

	"go.jacobcolvin.com/wikitypes/document"
)

// ErrInvalidSymbol is returned for symbols that lack the fields their kind
// requires. Invalid symbols are left out of the [Tree].
var ErrInvalidSymbol = errors.New("invalid symbol")

// Tree is the merged declaration tree. Every bucket keeps its keys in first
// insertion order, so a tree folded from the same ordered symbols always
// renders identically.
type Tree struct {
	preamble   []string
	types      ordered[entry]
	funcs      ordered[entry]
	enums      ordered[*block]
	interfaces ordered[*block]
	classes    ordered[*block]
	namespaces ordered[*namespace]
}

// entry is one declaration with its comment.
type entry struct {
	comments []string
	lines    []string
}

// block is an enum or interface declaration with its members.
type block struct {
	comments []string
	extends  []string
	members  ordered[entry]
}

// namespace is a "declare namespace" block.
type namespace struct {
	types      ordered[entry]
	funcs      ordered[entry]
	interfaces ordered[*block]
}

// NewTree creates an empty Tree. The preamble lines are rendered verbatim
// ahead of every declaration.
func NewTree(preamble []string) *Tree {
	return &Tree{preamble: slices.Clone(preamble)}
}

// Preamble returns the verbatim declaration lines that a rendered tree
// starts with.
func (g *Generator) Preamble() []string {
	return g.table.Typings()
}

// Fold merges symbols into a new Tree in order. Invalid symbols are logged,
// skipped, and reported together in the returned error; the Tree is always
// usable.
func (g *Generator) Fold(symbols []*Symbol) (*Tree, error) {
	t := NewTree(g.Preamble())

	var errs []error

	for _, sym := range symbols {
		err := t.Add(sym)
		if err != nil {
			g.log.Warn("skipping symbol", slog.Any("error", err))

			errs = append(errs, err)
		}
	}

	return t, errors.Join(errs...)
}

// Add folds one symbol into t. A declaration whose name is already present
// in its bucket replaces the earlier one in place; new names are appended.
func (t *Tree) Add(sym *Symbol) error {
	err := validate(sym)
	if err != nil {
		return err
	}

	switch sym.Kind {
	case KindFunction:
		if sym.Context == document.GlobalNamespace {
			t.funcs.set(sym.Name, entry{
				comments: sym.Comments,
				lines:    declLines("declare function "+sym.Name, sym),
			})
			t.addDecls(sym.Decls)

			return nil
		}

		ns := getOrCreate(&t.namespaces, sym.Context)
		ns.funcs.set(sym.Name, entry{
			comments: sym.Comments,
			lines:    declLines("export function "+sym.Name, sym),
		})

		for _, d := range sym.Decls {
			switch d.Kind {
			case DeclType:
				ns.types.set(d.Name, typeEntry(d))
			case DeclField:
				getOrCreate(&ns.interfaces, d.Owner).members.set(d.Name, fieldEntry(d))
			case DeclEnumMember:
				getOrCreate(&t.enums, d.Owner).members.set(d.Name, enumEntry(d))
			}
		}

	case KindClass:
		c := getOrCreate(&t.classes, sym.Context)
		c.extend(sym.Extends)
		c.members.set(sym.Name, entry{
			comments: sym.Comments,
			lines:    declLines(sym.Name, sym),
		})
		t.addDecls(sym.Decls)

	case KindStruct, KindShader:
		i := getOrCreate(&t.interfaces, sym.Name)
		i.comments = sym.Comments
		i.extend(sym.Extends)
		t.addDecls(sym.Decls)

	case KindEnum:
		getOrCreate(&t.enums, sym.Name).comments = sym.Comments
		t.addDecls(sym.Decls)
	}

	return nil
}

func (t *Tree) addDecls(decls []Decl) {
	for _, d := range decls {
		switch d.Kind {
		case DeclType:
			t.types.set(d.Name, typeEntry(d))
		case DeclField:
			getOrCreate(&t.interfaces, d.Owner).members.set(d.Name, fieldEntry(d))
		case DeclEnumMember:
			getOrCreate(&t.enums, d.Owner).members.set(d.Name, enumEntry(d))
		}
	}
}

func validate(sym *Symbol) error {
	if sym == nil {
		return errors.Wrap(ErrInvalidSymbol, "nil symbol")
	}

	if sym.Name == "" {
		return errors.Wrapf(ErrInvalidSymbol, "%s: missing name", sym.Title)
	}

	switch sym.Kind {
	case KindFunction, KindClass:
		if sym.Context == "" {
			return errors.Wrapf(ErrInvalidSymbol, "%s: %s %q: missing context", sym.Title, sym.Kind, sym.Name)
		}

		if sym.Signature == "" {
			return errors.Wrapf(ErrInvalidSymbol, "%s: %s %q: missing signature", sym.Title, sym.Kind, sym.Name)
		}

	case KindStruct, KindShader, KindEnum:
	default:
		return errors.Wrapf(ErrInvalidSymbol, "%s: unknown kind %q", sym.Title, sym.Kind)
	}

	for _, d := range sym.Decls {
		switch {
		case d.Name == "":
			return errors.Wrapf(ErrInvalidSymbol, "%s: %s declaration without a name", sym.Title, d.Kind)
		case d.Kind != DeclType && d.Owner == "":
			return errors.Wrapf(ErrInvalidSymbol, "%s: %s %q: missing owner", sym.Title, d.Kind, d.Name)
		}
	}

	return nil
}

func declLines(head string, sym *Symbol) []string {
	lines := []string{head + sym.Signature}

	for _, o := range sym.Overloads {
		lines = append(lines, head+o)
	}

	return lines
}

func typeEntry(d Decl) entry {
	return entry{comments: d.Comments, lines: []string{"type " + d.Name + " = " + d.Typing}}
}

func fieldEntry(d Decl) entry {
	name := d.Name
	if d.Optional {
		name += "?"
	}

	return entry{comments: d.Comments, lines: []string{name + ": " + d.Typing}}
}

func enumEntry(d Decl) entry {
	return entry{comments: d.Comments, lines: []string{d.Name + " = " + d.Typing + ","}}
}

func (b *block) extend(bases []string) {
	for _, base := range bases {
		if !slices.Contains(b.extends, base) {
			b.extends = append(b.extends, base)
		}
	}
}

// ordered is a map that remembers first insertion order.
type ordered[V any] struct {
	vals map[string]V
	keys []string
}

func (o *ordered[V]) get(key string) (V, bool) {
	v, ok := o.vals[key]

	return v, ok
}

// set stores v under key. A new key is appended; an existing key keeps its
// position.
func (o *ordered[V]) set(key string, v V) {
	if o.vals == nil {
		o.vals = map[string]V{}
	}

	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}

	o.vals[key] = v
}

func (o *ordered[V]) len() int {
	return len(o.keys)
}

func (o *ordered[V]) all() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, k := range o.keys {
			if !yield(k, o.vals[k]) {
				return
			}
		}
	}
}

func getOrCreate[V any](o *ordered[*V], key string) *V {
	if v, ok := o.get(key); ok {
		return v
	}

	v := new(V)
	o.set(key, v)

	return v
}
