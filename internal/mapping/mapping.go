// Package mapping interprets the declarative extraction language used by
// retriever configurations: mappings pull raw values out of a normalized
// response tree and transforms rewrite them before type coercion.
package mapping

// Mapping is one of Path, Join or Map.
type Mapping interface {
	isMapping()
}

// Path is a slash-delimited walk into the tree.
type Path struct {
	Expr string
}

// Join resolves every path as a string and concatenates them.
type Join struct {
	Paths     []string
	Delimiter string
}

// Map builds an object, or an array of objects when From resolves to an
// array, by applying child mappings relative to the resolved node.
type Map struct {
	From   string // empty means the current node
	Fields map[string]FieldMapping
}

func (Path) isMapping() {}
func (Join) isMapping() {}
func (Map) isMapping()  {}

// FieldMapping pairs a mapping with the transforms applied to its result.
type FieldMapping struct {
	Mapping    Mapping
	Transforms []Transform
}
