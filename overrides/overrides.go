// Package overrides holds the read-only configuration tables consumed by the
// parser and the generator: namespace and type alias tables, self types,
// inheritance edges, the declaration preamble, and per-member overrides that
// take precedence over inferred names and types.
//
// Tables are YAML documents. [Default] returns the embedded table; [Load] and
// [Parse] read replacements.
//
// Per-member overrides are addressed with a [Key] and resolved with
// [Table.Lookup], which returns the override defined at exactly the level the
// key names (member, parameter or return, nested sub-field).
package overrides

import (
	_ "embed"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-yaml"
)

// ErrInvalidOverrides is returned when an override table cannot be read or
// fails validation.
var ErrInvalidOverrides = errors.New("invalid overrides")

// DefaultWikiURL is the page base URL used when a table does not set one.
const DefaultWikiURL = "https://wiki.garrysmod.com/page/"

//go:embed default.yaml
var defaultYAML []byte

var defaultTable = sync.OnceValue(func() *Table {
	t, err := Parse(defaultYAML)
	if err != nil {
		panic(err)
	}

	return t
})

// Default returns the embedded override table. The returned table is shared
// and must not be modified.
func Default() *Table {
	return defaultTable()
}

// Table is a complete override table.
type Table struct {
	Funcs  map[string]FuncOverride `yaml:"funcs,omitempty"`
	Global Global                  `yaml:"global"`
}

// Global holds the namespace-wide tables.
type Global struct {
	// Context maps raw namespace tokens to canonical interface names.
	Context map[string]string `yaml:"context,omitempty"`
	// Structure maps page names to canonical structure names.
	Structure map[string]string `yaml:"structure,omitempty"`
	// Enum maps page names to canonical enum names.
	Enum map[string]string `yaml:"enum,omitempty"`
	// Self maps namespaces to the value type bound to the implicit this
	// parameter of their members.
	Self map[string]string `yaml:"self,omitempty"`
	// Extend lists base interfaces per namespace.
	Extend map[string][]string `yaml:"extend,omitempty"`

	// Typings is the verbatim declaration preamble.
	Typings []string `yaml:"typings,omitempty"`

	WikiURL       string   `yaml:"wikiURL,omitempty"`
	ParserSkip    []string `yaml:"parserSkip,omitempty"`
	GeneratorSkip []string `yaml:"generatorSkip,omitempty"`
}

// FuncOverride holds the overrides for one member, keyed in [Table.Funcs] by
// "Namespace/Member".
type FuncOverride struct {
	Params map[string]Override `yaml:"params,omitempty"`
	// Prefix is prepended to the rendered signature.
	Prefix string `yaml:"prefix,omitempty"`
	// Overload holds extra literal signatures declared alongside the member.
	Overload []string `yaml:"overload,omitempty"`
	// Returns is positional. Use an empty mapping to skip a position.
	Returns []Override `yaml:"returns,omitempty"`
}

// Override replaces inferred values for one parameter, return value or
// nested sub-field. Zero values mean "keep the inferred value".
type Override struct {
	Args     map[string]Override `yaml:"args,omitempty"`
	Prefix   string              `yaml:"prefix,omitempty"`
	Type     string              `yaml:"type,omitempty"`
	Name     string              `yaml:"name,omitempty"`
	Typing   string              `yaml:"typing,omitempty"`
	Desc     string              `yaml:"desc,omitempty"`
	Default  string              `yaml:"default,omitempty"`
	Optional bool                `yaml:"optional,omitempty"`
}

// Key addresses an override. Namespace and Member are always set. At most
// one of Param and Return is set; Sub further selects a nested sub-field of
// that parameter or return.
type Key struct {
	Namespace string
	Member    string
	Param     string
	Sub       string
	// Return is the 1-based position of a return value, or 0.
	Return int
}

// MemberKey addresses the member itself.
func MemberKey(namespace, member string) Key {
	return Key{Namespace: namespace, Member: member}
}

// ParamKey addresses a named parameter of a member.
func ParamKey(namespace, member, param string) Key {
	return Key{Namespace: namespace, Member: member, Param: param}
}

// ReturnKey addresses the return value at the 0-based index.
func ReturnKey(namespace, member string, index int) Key {
	return Key{Namespace: namespace, Member: member, Return: index + 1}
}

// Field returns a copy of k addressing the named sub-field.
func (k Key) Field(name string) Key {
	k.Sub = name

	return k
}

// Path returns the "Namespace/Member" form used in [Table.Funcs].
func (k Key) Path() string {
	return k.Namespace + "/" + k.Member
}

// Lookup resolves k to the override defined at exactly that level. The
// boolean is false (and the Override zero) when no override exists. A member
// level lookup returns an Override carrying only the member's Prefix.
func (t *Table) Lookup(k Key) (Override, bool) {
	if t == nil {
		return Override{}, false
	}

	fo, ok := t.Funcs[k.Path()]
	if !ok {
		return Override{}, false
	}

	var base Override

	switch {
	case k.Return > 0:
		if k.Return > len(fo.Returns) {
			return Override{}, false
		}

		base = fo.Returns[k.Return-1]

	case k.Param != "":
		base, ok = fo.Params[k.Param]
		if !ok {
			return Override{}, false
		}

	default:
		return Override{Prefix: fo.Prefix}, true
	}

	if k.Sub == "" {
		return base, true
	}

	sub, ok := base.Args[k.Sub]

	return sub, ok
}

// Func returns the member-level overrides for namespace/member.
func (t *Table) Func(namespace, member string) (FuncOverride, bool) {
	if t == nil {
		return FuncOverride{}, false
	}

	fo, ok := t.Funcs[MemberKey(namespace, member).Path()]

	return fo, ok
}

// ContextAlias returns the canonical interface name for a namespace token,
// or the token itself.
func (t *Table) ContextAlias(namespace string) string {
	return alias(t.global().Context, namespace)
}

// StructureAlias returns the canonical structure name for name.
func (t *Table) StructureAlias(name string) string {
	return alias(t.global().Structure, name)
}

// EnumAlias returns the canonical enum name for name.
func (t *Table) EnumAlias(name string) string {
	return alias(t.global().Enum, name)
}

// SelfType returns the value type bound to this for members of namespace,
// defaulting to the namespace itself.
func (t *Table) SelfType(namespace string) string {
	return alias(t.global().Self, namespace)
}

// Extends returns the base interfaces of namespace.
func (t *Table) Extends(namespace string) []string {
	return t.global().Extend[namespace]
}

// Typings returns the declaration preamble.
func (t *Table) Typings() []string {
	return t.global().Typings
}

// WikiURL returns the base URL that page titles are appended to.
func (t *Table) WikiURL() string {
	if u := t.global().WikiURL; u != "" {
		return u
	}

	return DefaultWikiURL
}

// SkipParse reports whether the parser must leave the titled page untouched.
func (t *Table) SkipParse(title string) bool {
	return slices.Contains(t.global().ParserSkip, title)
}

// SkipGenerate reports whether the generator must not emit the titled page.
func (t *Table) SkipGenerate(title string) bool {
	return slices.Contains(t.global().GeneratorSkip, title)
}

func (t *Table) global() *Global {
	if t == nil {
		return &Global{}
	}

	return &t.Global
}

func alias(m map[string]string, key string) string {
	if v, ok := m[key]; ok && v != "" {
		return v
	}

	return key
}

// Parse decodes and validates a YAML override table. Unknown keys and
// duplicate keys are rejected.
func Parse(data []byte) (*Table, error) {
	t := &Table{}

	err := yaml.UnmarshalWithOptions(data, t, yaml.Strict())
	if err != nil {
		return nil, errors.WithHintf(
			errors.Wrapf(ErrInvalidOverrides, "decode: %v", err),
			"override tables use the layout of the embedded default.yaml",
		)
	}

	err = t.Validate()
	if err != nil {
		return nil, err
	}

	return t, nil
}

// Load reads and parses the override table at path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidOverrides, "read %s: %v", path, err)
	}

	t, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}

	return t, nil
}

// Validate checks structural constraints that YAML decoding cannot express.
func (t *Table) Validate() error {
	var errs []error

	for key, fo := range t.Funcs {
		ns, member, ok := strings.Cut(key, "/")
		if !ok || ns == "" || member == "" || strings.Contains(member, "/") {
			errs = append(errs, errors.Newf("funcs key %q: want \"Namespace/Member\"", key))
		}

		for name := range fo.Params {
			if strings.TrimSpace(name) == "" {
				errs = append(errs, errors.Newf("funcs %q: empty parameter name", key))
			}
		}
	}

	for ns, bases := range t.Global.Extend {
		if slices.Contains(bases, ns) {
			errs = append(errs, errors.Newf("extend %q: namespace extends itself", ns))
		}
	}

	if len(errs) > 0 {
		return errors.Wrapf(ErrInvalidOverrides, "validate: %v", errors.Join(errs...))
	}

	return nil
}
