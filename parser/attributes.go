package parser

import (
	"regexp"
	"strings"

	"go.jacobcolvin.com/wikitypes/document"
	"go.jacobcolvin.com/wikitypes/infer"
	"go.jacobcolvin.com/wikitypes/textnorm"
)

// claimKind identifies a claiming directive.
type claimKind string

const (
	kindStructure   claimKind = "structure"
	kindEnumeration claimKind = "enumeration"
	kindShader      claimKind = "shader"
	kindFunc        claimKind = claimKind(document.KindFunc)
	kindPanelFunc   claimKind = claimKind(document.KindPanelFunc)
	kindHook        claimKind = claimKind(document.KindHook)
	kindPanelHook   claimKind = claimKind(document.KindPanelHook)
	kindArg         claimKind = "arg"
	kindRet         claimKind = "ret"
	kindBug         claimKind = "bug"
	kindExample     claimKind = "example"
)

var realmSepRe = regexp.MustCompile(`(?i)\s+and\s+`)

// attributes are the key=value arguments of a claiming directive.
type attributes struct {
	values    map[string]string
	predicted *bool
	isClass   *bool
	realm     []string
}

func (a *attributes) get(key string) string {
	return a.values[key]
}

// desc returns the "desc" attribute, falling back to the positional text.
func (a *attributes) desc() string {
	if d := a.values["desc"]; d != "" {
		return d
	}

	return a.values["text"]
}

// parseAttributes reads key=value arguments. Unkeyed arguments are stored
// under "text"; for bugs only a leading "issue=" is treated as a key.
func parseAttributes(kind claimKind, args []string) *attributes {
	a := &attributes{values: map[string]string{}}

	for _, part := range args {
		key, value := "text", part

		k, v, hasValue := strings.Cut(part, "=")
		k = textnorm.Clean(k, textnorm.Entities, textnorm.Trim, textnorm.Lower)

		switch {
		case kind == kindBug && k != "issue":
			// Positional description.
		case hasValue:
			key, value = k, v
		}

		if key == "code" {
			value = strings.TrimSpace(value)
		} else {
			value = textnorm.Clean(value, textnorm.Norm)
		}

		switch key {
		case "outputfixedwidth", "appendedenums", "fieldsonly", "category":
		case "parameters", "fields":
			// Claimed from the pending accumulator.
		case "isclass":
			a.isClass = ptr(parseBool(value))
		case "predicted":
			a.predicted = ptr(parseBool(value))
		case "realm":
			a.realm = parseRealm(value)
		default:
			a.values[key] = value
		}
	}

	return a
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true
	case "false", "no", "0", "":
		return false
	}

	return true
}

// parseRealm splits "Client and Server" style realm lists. "shared" expands
// to client and server.
func parseRealm(s string) []string {
	var realms []string

	for _, r := range realmSepRe.Split(s, -1) {
		r = textnorm.Clean(r, textnorm.Markup, textnorm.Lower, textnorm.Trim)

		switch r {
		case "":
		case "shared":
			realms = append(realms, "client", "server")
		default:
			realms = append(realms, r)
		}
	}

	return realms
}

func ptr[T any](v T) *T {
	return &v
}

func claim(kind claimKind) handler {
	return func(pp *pageParser, args []string) (string, error) {
		pp.claim(kind, parseAttributes(kind, args))

		return "", nil
	}
}

// claim writes the record of a claiming directive onto the document,
// draining the pending records it owns.
func (pp *pageParser) claim(kind claimKind, a *attributes) {
	doc := pp.doc

	switch kind {
	case kindBug:
		doc.Bugs = append(doc.Bugs, document.Bug{
			Issue: a.get("issue"),
			Text:  pp.text(a.get("text")),
		})

	case kindExample:
		doc.Examples = append(doc.Examples, document.Example{
			Description: pp.text(a.get("description")),
			Code:        a.get("code"),
			Output:      pp.text(a.get("output")),
		})

	case kindArg, kindRet:
		f := pp.engine.Field(infer.Spec{
			Type:        a.get("type"),
			Name:        a.get("name"),
			Description: pp.text(a.desc()),
			Default:     a.get("default"),
			Args:        pp.pending.drainArgs(),
		})

		if kind == kindArg {
			doc.Args = append(doc.Args, f)
		} else {
			doc.Returns = append(doc.Returns, f)
		}

	case kindStructure:
		fields, _ := pp.pending.drain()
		doc.Structure = &document.Structure{
			Name:        pp.table.StructureAlias(pp.name),
			Parent:      pp.parent,
			Description: pp.text(a.get("description")),
			Fields:      fields,
		}

	case kindShader:
		fields, _ := pp.pending.drain()
		doc.Shader = &document.Shader{
			Name:        pp.name,
			Parent:      pp.parent,
			Description: pp.text(a.get("description")),
			Parameters:  fields,
		}

	case kindEnumeration:
		_, enums := pp.pending.drain()
		doc.Enumeration = &document.Enumeration{
			Name:        pp.table.EnumAlias(pp.name),
			Parent:      pp.parent,
			Description: pp.text(a.get("description")),
			Fields:      enums,
		}

	case kindFunc, kindPanelFunc, kindHook, kindPanelHook:
		doc.SetFunc(document.FuncKind(kind), pp.funcRecord(a))
	}
}

// funcRecord builds a function-like declaration. A dotted name moves its
// leading segments onto the namespace; under the Global namespace (or no
// namespace) they replace it.
func (pp *pageParser) funcRecord(a *attributes) *document.Func {
	name := a.get("name")
	if name == "" {
		name = pp.name
	}

	parent := pp.table.ContextAlias(pp.parent)

	if i := strings.LastIndex(name, "."); i > 0 && i < len(name)-1 {
		ns := name[:i]
		name = name[i+1:]

		if parent == "" || parent == document.GlobalNamespace {
			parent = ns
		} else {
			parent += "." + ns
		}
	}

	if parent == "" {
		parent = document.GlobalNamespace
	}

	return &document.Func{
		Name:        name,
		Parent:      parent,
		Description: pp.text(a.get("description")),
		File:        a.get("file"),
		Line:        a.get("line"),
		Realm:       a.realm,
		Predicted:   a.predicted,
		IsClass:     a.isClass,
	}
}
