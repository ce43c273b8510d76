package document

import (
	"encoding/json"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/jsonschema-go/jsonschema"
)

// ErrInvalidDocument is returned by [Decode] when the input does not match
// the document schema.
var ErrInvalidDocument = errors.New("invalid document")

const (
	typeObject  = "object"
	typeArray   = "array"
	typeString  = "string"
	typeInteger = "integer"
	typeBoolean = "boolean"
)

// Schema returns the JSON Schema describing a serialized [Document].
func Schema() *jsonschema.Schema {
	str := func(desc string) *jsonschema.Schema {
		return &jsonschema.Schema{Type: typeString, Description: desc}
	}

	// Resolve requires the schema to be a tree, so every property gets its
	// own node.
	strs := func() *jsonschema.Schema {
		return &jsonschema.Schema{Type: typeArray, Items: str("")}
	}
	flag := func() *jsonschema.Schema {
		return &jsonschema.Schema{Type: typeBoolean}
	}
	ref := func(name string) *jsonschema.Schema {
		return &jsonschema.Schema{Ref: "#/$defs/" + name}
	}
	list := func(name string) *jsonschema.Schema {
		return &jsonschema.Schema{Type: typeArray, Items: ref(name)}
	}

	named := func(desc string, extra map[string]*jsonschema.Schema) *jsonschema.Schema {
		props := map[string]*jsonschema.Schema{
			"name":        str("declared name"),
			"parent":      str("parent namespace"),
			"description": str(""),
		}
		for k, v := range extra {
			props[k] = v
		}

		return &jsonschema.Schema{
			Type:        typeObject,
			Description: desc,
			Properties:  props,
			Required:    []string{"name", "parent"},
		}
	}

	return &jsonschema.Schema{
		Schema:      "https://json-schema.org/draft/2020-12/schema",
		Title:       "Parsed wiki document",
		Description: "Structured result of parsing one wiki page.",
		Type:        typeObject,
		Required:    []string{"title", "id"},
		Properties: map[string]*jsonschema.Schema{
			"title":          str("page title"),
			"id":             {Type: typeInteger, Description: "page id"},
			"raw":            str("raw markup"),
			"panelhook":      ref("func"),
			"hook":           ref("func"),
			"panelfunc":      ref("func"),
			"func":           ref("func"),
			"structure":      named("record type", map[string]*jsonschema.Schema{"fields": list("field")}),
			"shader":         named("shader", map[string]*jsonschema.Schema{"parameters": list("field")}),
			"enumeration":    named("enum", map[string]*jsonschema.Schema{"fields": list("enumField")}),
			"args":           list("field"),
			"returns":        list("field"),
			"examples":       list("example"),
			"bugs":           list("bug"),
			"notes":          strs(),
			"warnings":       strs(),
			"rendering":      {Type: typeObject, Properties: map[string]*jsonschema.Schema{"context": str(""), "type": str("")}},
			"deprecated":     ref("remark"),
			"internal":       ref("remark"),
			"update":         ref("remark"),
			"deleted":        str("deletion reason"),
			"validate":       flag(),
			"stub":           flag(),
			"sandboxderived": flag(),
		},
		Defs: map[string]*jsonschema.Schema{
			"func": named("function-like declaration", map[string]*jsonschema.Schema{
				"file":      str(""),
				"line":      str(""),
				"realm":     strs(),
				"predicted": flag(),
				"isclass":   flag(),
			}),
			"field": {
				Type:     typeObject,
				Required: []string{"type"},
				Properties: map[string]*jsonschema.Schema{
					"name":     str(""),
					"type":     {Types: []string{typeArray, "null"}, Items: str("")},
					"desc":     str(""),
					"default":  str(""),
					"optional": flag(),
					"args":     list("field"),
				},
			},
			"enumField": {
				Type:     typeObject,
				Required: []string{"key", "value"},
				Properties: map[string]*jsonschema.Schema{
					"key":   str(""),
					"value": {Type: typeInteger},
					"desc":  str(""),
				},
			},
			"bug": {
				Type:       typeObject,
				Required:   []string{"text"},
				Properties: map[string]*jsonschema.Schema{"issue": str(""), "text": str("")},
			},
			"example": {
				Type: typeObject,
				Properties: map[string]*jsonschema.Schema{
					"description": str(""),
					"code":        str(""),
					"output":      str(""),
				},
			},
			"remark": {
				Type:       typeObject,
				Properties: map[string]*jsonschema.Schema{"text": str("")},
			},
		},
	}
}

var resolved = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	return Schema().Resolve(nil)
})

// Decode validates data against [Schema] and unmarshals it into a Document.
func Decode(data []byte) (*Document, error) {
	var instance any

	err := json.Unmarshal(data, &instance)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidDocument, "%v", err)
	}

	rs, err := resolved()
	if err != nil {
		return nil, errors.Wrap(err, "resolve document schema")
	}

	err = rs.Validate(instance)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidDocument, "%v", err)
	}

	var doc Document

	err = json.Unmarshal(data, &doc)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidDocument, "%v", err)
	}

	return &doc, nil
}
