package types

import "reflect"

// PathKind distinguishes a named object property from an array index
// within a DocumentPath.
type PathKind int

const (
	// PathProperty is a named object field.
	PathProperty PathKind = iota
	// PathIndex is an array element. Matcher treats indexed elements
	// specially: it passes through unchanged and resumes matching at
	// the next path element.
	PathIndex
)

// PathElement is one segment of a DocumentPath.
type PathElement struct {
	Kind PathKind
	// Key is the property name; only meaningful when Kind == PathProperty.
	Key string
	// Index is the array position; only meaningful when Kind == PathIndex.
	Index int
	// BeanClass is the opaque host type the property was read off of,
	// used only by context-filter resolution. May be nil when the host
	// has no notion of a bean class.
	BeanClass reflect.Type
}

// DocumentPath is an ordered sequence of PathElement describing the
// location of a node within the document tree, root-relative.
type DocumentPath []PathElement

// Property appends a named-property segment and returns the extended path.
// The receiver is never mutated in place.
func (p DocumentPath) Property(key string, beanClass reflect.Type) DocumentPath {
	out := make(DocumentPath, len(p), len(p)+1)
	copy(out, p)
	return append(out, PathElement{Kind: PathProperty, Key: key, BeanClass: beanClass})
}

// Index appends an array-index segment and returns the extended path.
func (p DocumentPath) Index(i int) DocumentPath {
	out := make(DocumentPath, len(p), len(p)+1)
	copy(out, p)
	return append(out, PathElement{Kind: PathIndex, Index: i})
}

// Last returns the final segment and true, or the zero PathElement and
// false if the path is empty.
func (p DocumentPath) Last() (PathElement, bool) {
	if len(p) == 0 {
		return PathElement{}, false
	}
	return p[len(p)-1], true
}

// JsonNode is the abstract capability set the walker needs from a host's
// JSON node representation. The core never inspects host types
// directly: it only calls these three methods.
type JsonNode[T any] interface {
	// Value returns the underlying host value.
	Value() T
	// Transform performs a host-driven depth-first rewrite, invoking f
	// once per visited node in the host's child-enumeration order. A nil
	// return from f prunes that node (and, for objects/arrays, all of
	// its descendants) from the output.
	Transform(f TransformFunc[T]) JsonNode[T]
	// Create wraps a new value as a node of the same underlying kind.
	Create(value any) JsonNode[T]
}

// NodeContext is passed to the walker's transform callback for every
// visited node. The walker owns it; callers may mutate Key to rename a
// property in the output.
type NodeContext[T any] struct {
	// Path is the DocumentPath of the node currently being visited,
	// root-relative and not including the node's own key.
	Path DocumentPath
	// Key is the current node's key: a string for object properties, an
	// int for array elements.
	Key any
	// Parent is the enclosing node, or nil at the document root.
	Parent JsonNode[T]
}

// TransformFunc is the callback signature a host's JsonNode.Transform
// invokes once per visited node.
type TransformFunc[T any] func(ctx *NodeContext[T], node JsonNode[T]) JsonNode[T]
