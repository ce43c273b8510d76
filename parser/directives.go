package parser

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"go.jacobcolvin.com/wikitypes/document"
	"go.jacobcolvin.com/wikitypes/infer"
	"go.jacobcolvin.com/wikitypes/textnorm"
)

// handler resolves one directive given its arguments (the parts after the
// directive name).
type handler func(pp *pageParser, args []string) (string, error)

var directives = map[string]handler{
	// Inline.
	"listitem":        literal(""),
	"fieldsonly":      literal(""),
	"realmicon":       literal(""),
	"!":               literal("*"),
	"eq":              literal("="),
	"subpagename":     (*pageParser).subpageName,
	"hookfunction":    memberRef(":"),
	"classfunction":   memberRef(":"),
	"libraryfunc":     memberRef("."),
	"libraryfunction": memberRef("."),
	"type":            backref("type", nil),
	"globalfunction":  backref("function", nil),
	"globalvar":       backref("global", nil),
	"key":             backref("key", nil),
	"lib":             backref("library", nil),
	"shaderlink":      backref("shader", nil),
	"enum":            backref("enum", (*pageParser).enumAlias),
	"struct":          backref("structure", (*pageParser).structureAlias),
	"truefalse":       trueFalse,

	// Annotations.
	"deprecated":       remark(func(d *document.Document) **document.Remark { return &d.Deprecated }),
	"internal":         remark(func(d *document.Document) **document.Remark { return &d.Internal }),
	"nextupdate":       remark(func(d *document.Document) **document.Remark { return &d.Update }),
	"delete":           (*pageParser).deleted,
	"sandboxderived":   flag(func(d *document.Document) *bool { return &d.SandboxDerived }),
	"validate":         flag(func(d *document.Document) *bool { return &d.Validate }),
	"stub":             flag(func(d *document.Document) *bool { return &d.Stub }),
	"note":             (*pageParser).note,
	"warning":          (*pageParser).warning,
	"renderingcontext": (*pageParser).renderingContext,

	// Field accumulators.
	"enumfield":       (*pageParser).enumField,
	"funcarg":         (*pageParser).funcArg,
	"structurefield":  (*pageParser).structureField,
	"shaderparameter": (*pageParser).shaderParameter,

	// Claiming directives.
	"structure":   claim(kindStructure),
	"enumeration": claim(kindEnumeration),
	"shader":      claim(kindShader),
	"func":        claim(kindFunc),
	"panelfunc":   claim(kindPanelFunc),
	"hook":        claim(kindHook),
	"panelhook":   claim(kindPanelHook),
	"arg":         claim(kindArg),
	"ret":         claim(kindRet),
	"bug":         claim(kindBug),
	"example":     claim(kindExample),
}

var leadingIntRe = regexp.MustCompile(`^[-+]?\d+`)

// splitParts splits a resolved block on '|'.
func splitParts(block string) []string {
	return strings.Split(block, "|")
}

// dispatch resolves one block given its parts. The first part names the
// directive.
func (pp *pageParser) dispatch(parts []string) (string, error) {
	head, args := parts[0], parts[1:]

	if strings.Contains(head, "#titleparts") {
		return head[strings.LastIndex(head, ":")+1:], nil
	}

	name := textnorm.Clean(head, textnorm.Markup, textnorm.Trim, textnorm.Lower)

	switch {
	case strings.HasPrefix(name, ":"):
		// Transclusion.
		return "@" + name[1:], nil
	case strings.HasPrefix(name, "#time"):
		return name, nil
	}

	if h, ok := directives[name]; ok {
		return h(pp, args)
	}

	switch {
	case strings.Contains(name, "}"):
		return "[{" + name + "}]", nil

	case strings.Contains(name, ":"):
		sub, rest, _ := strings.Cut(name, ":")
		switch sub {
		case "user", "displaytitle":
			value, _, _ := strings.Cut(rest, ":")

			return value, nil
		}

		return "", pp.fail(name, fmt.Errorf("%w: %q", ErrUnknownSubDirective, sub))
	}

	return "", pp.fail(name, ErrUnknownDirective)
}

func arg(args []string, i int) string {
	if i < len(args) {
		return strings.TrimSpace(args[i])
	}

	return ""
}

func literal(s string) handler {
	return func(*pageParser, []string) (string, error) {
		return s, nil
	}
}

// memberRef renders "@Namespace<sep>Member" with the namespace aliased.
func memberRef(sep string) handler {
	return func(pp *pageParser, args []string) (string, error) {
		return "@" + pp.table.ContextAlias(arg(args, 0)) + sep + arg(args, 1), nil
	}
}

// backref renders "@Name kind" for the inference engine, optionally
// aliasing the name first.
func backref(kind string, alias func(*pageParser, string) string) handler {
	return func(pp *pageParser, args []string) (string, error) {
		name := arg(args, 0)
		if alias != nil {
			name = alias(pp, name)
		}

		return "@" + name + " " + kind, nil
	}
}

func (pp *pageParser) enumAlias(name string) string {
	return pp.table.EnumAlias(name)
}

func (pp *pageParser) structureAlias(name string) string {
	return pp.table.StructureAlias(name)
}

func trueFalse(_ *pageParser, args []string) (string, error) {
	return fmt.Sprintf("if true, %s and if false, %s", arg(args, 0), arg(args, 1)), nil
}

func (pp *pageParser) subpageName([]string) (string, error) {
	title := pp.doc.Title

	return title[strings.LastIndex(title, "/")+1:], nil
}

// remark sets an optional-text annotation. An empty text still sets it.
func remark(slot func(*document.Document) **document.Remark) handler {
	return func(pp *pageParser, args []string) (string, error) {
		*slot(pp.doc) = &document.Remark{Text: pp.text(arg(args, 0))}

		return "", nil
	}
}

func flag(slot func(*document.Document) *bool) handler {
	return func(pp *pageParser, _ []string) (string, error) {
		*slot(pp.doc) = true

		return "", nil
	}
}

func (pp *pageParser) deleted(args []string) (string, error) {
	pp.doc.Deleted = textnorm.Clean(arg(args, 0), textnorm.Norm)

	return "", nil
}

func (pp *pageParser) note(args []string) (string, error) {
	pp.doc.Notes = append(pp.doc.Notes, pp.text(arg(args, 0)))

	return "", nil
}

func (pp *pageParser) warning(args []string) (string, error) {
	pp.doc.Warnings = append(pp.doc.Warnings, pp.text(arg(args, 0)))

	return "", nil
}

func (pp *pageParser) renderingContext(args []string) (string, error) {
	pp.doc.Rendering = &document.Rendering{
		Context: textnorm.Clean(arg(args, 0), textnorm.Norm, textnorm.Lower),
		Type:    textnorm.Clean(arg(args, 1), textnorm.Norm, textnorm.Lower),
	}

	return "", nil
}

func (pp *pageParser) enumField(args []string) (string, error) {
	key := textnorm.Clean(arg(args, 0), textnorm.Markup, textnorm.Trim)

	pp.pending.addEnum(document.EnumField{
		Key:         key,
		Value:       pp.enumValue(key, arg(args, 1)),
		Description: pp.text(arg(args, 2)),
	})

	return "", nil
}

// enumValue parses an enum member value: a "0x" hex literal or a leading
// decimal integer, ignoring trailing text. Anything else is logged and
// treated as 0.
func (pp *pageParser) enumValue(key, raw string) int64 {
	raw = textnorm.Clean(raw, textnorm.Markup, textnorm.Trim)

	if hex, ok := strings.CutPrefix(strings.ToLower(raw), "0x"); ok {
		v, err := strconv.ParseInt(hex, 16, 64)
		if err == nil {
			return v
		}
	}

	if m := leadingIntRe.FindString(raw); m != "" {
		v, err := strconv.ParseInt(m, 10, 64)
		if err == nil {
			return v
		}
	}

	pp.log.Warn("invalid enum value",
		slog.String("title", pp.doc.Title),
		slog.String("key", key),
		slog.String("value", raw),
	)

	return 0
}

// fieldSpec reads the positional type|name|description|default arguments
// of a field accumulator.
func (pp *pageParser) fieldSpec(args []string) infer.Spec {
	return infer.Spec{
		Type:        arg(args, 0),
		Name:        arg(args, 1),
		Description: pp.text(arg(args, 2)),
		Default:     arg(args, 3),
	}
}

func (pp *pageParser) funcArg(args []string) (string, error) {
	pp.pending.args = append(pp.pending.args, pp.engine.Field(pp.fieldSpec(args)))

	return "", nil
}

// structureField claims the pending arguments as its sub-fields.
func (pp *pageParser) structureField(args []string) (string, error) {
	spec := pp.fieldSpec(args)
	spec.Args = pp.pending.drainArgs()

	pp.pending.fields = append(pp.pending.fields, pp.engine.Field(spec))

	return "", nil
}

func (pp *pageParser) shaderParameter(args []string) (string, error) {
	pp.pending.fields = append(pp.pending.fields, pp.engine.Field(pp.fieldSpec(args)))

	return "", nil
}
