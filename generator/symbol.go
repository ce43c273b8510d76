package generator

// Kind is the kind of a [Symbol].
type Kind string

// Symbol kinds.
const (
	// KindFunction is a free function (in the Global namespace) or a member
	// of a library namespace.
	KindFunction Kind = "function"
	// KindClass is a method of a class-like interface.
	KindClass  Kind = "class"
	KindStruct Kind = "struct"
	KindShader Kind = "shader"
	KindEnum   Kind = "enum"
)

// Symbol is one renderable declaration unit built from a document.
type Symbol struct {
	// Title is the title of the source page.
	Title string `json:"title"`
	// ID is the id of the source page.
	ID   int  `json:"id"`
	Kind Kind `json:"kind"`
	// Context is the owning namespace or class. It is empty for structures,
	// shaders and enumerations, which are keyed by Name.
	Context  string   `json:"context,omitempty"`
	Name     string   `json:"name"`
	Comments []string `json:"comments,omitempty"`
	Extends  []string `json:"extends,omitempty"`
	// Signature is the rendered "(params): returns" of a function or class
	// member, including any override prefix.
	Signature string   `json:"signature,omitempty"`
	Overloads []string `json:"overloads,omitempty"`
	Decls     []Decl   `json:"decls,omitempty"`
}

// DeclKind is the kind of a [Decl].
type DeclKind string

// Declaration kinds.
const (
	// DeclType is a type alias.
	DeclType DeclKind = "type"
	// DeclField is an interface member.
	DeclField DeclKind = "field"
	// DeclEnumMember is an enum member.
	DeclEnumMember DeclKind = "enum"
)

// Decl is an auxiliary declaration carried by a [Symbol]: a synthesized
// callback type, a member of a synthesized or structure interface, or an
// enum member.
type Decl struct {
	Kind DeclKind `json:"kind"`
	// Owner names the interface or enum that a field or enum member belongs
	// to.
	Owner    string   `json:"owner,omitempty"`
	Name     string   `json:"name"`
	Typing   string   `json:"typing"`
	Optional bool     `json:"optional,omitempty"`
	Comments []string `json:"comments,omitempty"`
}
