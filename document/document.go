// Package document defines the intermediate records produced by the parser:
// the raw [Page] input and the [Document] accumulated from its directives.
//
// A Document is self-describing JSON. [Schema] returns its JSON Schema and
// [Decode] validates serialized documents against it before use.
package document

import "strings"

// GlobalNamespace is the namespace of free functions.
const GlobalNamespace = "Global"

// Page is one raw wiki page. Title encodes "Parent/Name", "Parent.Name" or a
// bare "Name".
type Page struct {
	Title string `json:"title"`
	ID    int    `json:"id"`
	Raw   string `json:"raw"`
}

// Path splits the page title into its parent namespace and name. Spaces
// become underscores. A title without '/' is split at its last '.', so
// "Global.PrintMessage" and "Global/PrintMessage" are equivalent.
func (p Page) Path() (string, string) {
	title := strings.ReplaceAll(strings.TrimSpace(p.Title), " ", "_")

	if parent, name, ok := strings.Cut(title, "/"); ok {
		return parent, name
	}

	if i := strings.LastIndex(title, "."); i > 0 && i < len(title)-1 {
		return title[:i], title[i+1:]
	}

	return "", title
}

// Document is the structured result of parsing one [Page]. At most one of
// the function-like, structure, enumeration or shader slots is expected to
// be populated, but this is not enforced.
type Document struct {
	Page

	PanelHook   *Func        `json:"panelhook,omitempty"`
	Hook        *Func        `json:"hook,omitempty"`
	PanelFunc   *Func        `json:"panelfunc,omitempty"`
	Func        *Func        `json:"func,omitempty"`
	Structure   *Structure   `json:"structure,omitempty"`
	Enumeration *Enumeration `json:"enumeration,omitempty"`
	Shader      *Shader      `json:"shader,omitempty"`

	Args     []Field   `json:"args,omitempty"`
	Returns  []Field   `json:"returns,omitempty"`
	Examples []Example `json:"examples,omitempty"`
	Bugs     []Bug     `json:"bugs,omitempty"`
	Notes    []string  `json:"notes,omitempty"`
	Warnings []string  `json:"warnings,omitempty"`

	Rendering  *Rendering `json:"rendering,omitempty"`
	Deprecated *Remark    `json:"deprecated,omitempty"`
	Internal   *Remark    `json:"internal,omitempty"`
	Update     *Remark    `json:"update,omitempty"`
	Deleted    string     `json:"deleted,omitempty"`

	Validate       bool `json:"validate,omitempty"`
	Stub           bool `json:"stub,omitempty"`
	SandboxDerived bool `json:"sandboxderived,omitempty"`
}

// FuncKind identifies which function-like slot of a [Document] is set.
type FuncKind string

// Function-like slots, in the order the generator considers them.
const (
	KindFunc      FuncKind = "func"
	KindPanelFunc FuncKind = "panelfunc"
	KindHook      FuncKind = "hook"
	KindPanelHook FuncKind = "panelhook"
)

// FuncSlots returns the populated function-like slots in generator order.
func (d *Document) FuncSlots() []FuncSlot {
	var slots []FuncSlot

	for _, s := range []FuncSlot{
		{Kind: KindFunc, Func: d.Func},
		{Kind: KindPanelFunc, Func: d.PanelFunc},
		{Kind: KindHook, Func: d.Hook},
		{Kind: KindPanelHook, Func: d.PanelHook},
	} {
		if s.Func != nil {
			slots = append(slots, s)
		}
	}

	return slots
}

// SetFunc stores f in the slot named by kind.
func (d *Document) SetFunc(kind FuncKind, f *Func) {
	switch kind {
	case KindFunc:
		d.Func = f
	case KindPanelFunc:
		d.PanelFunc = f
	case KindHook:
		d.Hook = f
	case KindPanelHook:
		d.PanelHook = f
	}
}

// FuncSlot pairs a function-like declaration with its slot.
type FuncSlot struct {
	Func *Func
	Kind FuncKind
}

// Func is a function-like declaration (func, hook, panel func, panel hook).
type Func struct {
	Name        string   `json:"name"`
	Parent      string   `json:"parent"`
	Description string   `json:"description,omitempty"`
	File        string   `json:"file,omitempty"`
	Line        string   `json:"line,omitempty"`
	Realm       []string `json:"realm,omitempty"`
	Predicted   *bool    `json:"predicted,omitempty"`
	IsClass     *bool    `json:"isclass,omitempty"`
}

// Field is an argument, return value, structure field or shader parameter.
// Args holds sub-fields when the type is a table shape or a function
// signature; sub-fields may nest to any depth.
type Field struct {
	Name        string   `json:"name,omitempty"`
	Type        []string `json:"type"`
	Description string   `json:"desc,omitempty"`
	Default     string   `json:"default,omitempty"`
	Optional    bool     `json:"optional,omitempty"`
	Args        []Field  `json:"args,omitempty"`
}

// TypeString joins the type union with " | ".
func (f Field) TypeString() string {
	return strings.Join(f.Type, " | ")
}

// Structure is a named record type.
type Structure struct {
	Name        string  `json:"name"`
	Parent      string  `json:"parent"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
}

// Shader is a named shader with its parameters.
type Shader struct {
	Name        string  `json:"name"`
	Parent      string  `json:"parent"`
	Description string  `json:"description,omitempty"`
	Parameters  []Field `json:"parameters,omitempty"`
}

// Enumeration is a named enum with ordered members.
type Enumeration struct {
	Name        string      `json:"name"`
	Parent      string      `json:"parent"`
	Description string      `json:"description,omitempty"`
	Fields      []EnumField `json:"fields,omitempty"`
}

// EnumField is one enumeration member.
type EnumField struct {
	Key         string `json:"key"`
	Value       int64  `json:"value"`
	Description string `json:"desc,omitempty"`
}

// Bug is a known-issue annotation.
type Bug struct {
	Issue string `json:"issue,omitempty"`
	Text  string `json:"text"`
}

// Example is a usage example.
type Example struct {
	Description string `json:"description,omitempty"`
	Code        string `json:"code,omitempty"`
	Output      string `json:"output,omitempty"`
}

// Rendering is the rendering-context annotation.
type Rendering struct {
	Context string `json:"context,omitempty"`
	Type    string `json:"type,omitempty"`
}

// Remark is an annotation that may carry text. A non-nil Remark with empty
// Text is a bare flag.
type Remark struct {
	Text string `json:"text,omitempty"`
}
