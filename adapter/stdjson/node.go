// Package stdjson implements types.JsonNode over the values
// encoding/json produces by default: map[string]interface{},
// []interface{} and the JSON scalar types. It is the reference host
// adapter used by the engine's own tests and by the cmd binaries.
package stdjson

import (
	"fmt"

	"github.com/squigglygo/squiggly/types"
)

// Node wraps a decoded JSON value (as produced by json.Unmarshal into
// an interface{}) so the engine can walk and rewrite it generically.
type Node struct {
	value any
}

// New wraps value as a root Node.
func New(value any) *Node {
	return &Node{value: value}
}

// Value returns the wrapped value.
func (n *Node) Value() any { return n.value }

// Create wraps a new value as a sibling Node.
func (n *Node) Create(value any) types.JsonNode[any] {
	return &Node{value: value}
}

// Transform performs a pre-order depth-first rewrite of the tree rooted
// at n, calling f once per visited node. A nil return from f drops that
// node (and its descendants, since they are never visited) from the
// rebuilt parent container. Map iteration order is unspecified, as with
// any Go map.
func (n *Node) Transform(f types.TransformFunc[any]) types.JsonNode[any] {
	_, out := n.transform(f, nil, nil, nil)
	return out
}

// transform visits n and, if it survives, recurses into its children.
// It returns the (possibly renamed, via a mutation of ctx.Key inside f)
// key to reinsert n under, and the replacement node, or (key, nil) if f
// pruned it.
func (n *Node) transform(f types.TransformFunc[any], path types.DocumentPath, key any, parent types.JsonNode[any]) (any, types.JsonNode[any]) {
	ctx := &types.NodeContext[any]{Path: path, Key: key, Parent: parent}
	result := f(ctx, n)
	outKey := ctx.Key
	if result == nil {
		return outKey, nil
	}

	// Path continuation for descendants always uses the original key:
	// rename only affects how this node is reinserted into its parent,
	// never how deeper matches are computed.
	childPath := appendPath(path, key)

	switch v := result.Value().(type) {
	case map[string]any:
		rebuilt := make(map[string]any, len(v))
		for k, cv := range v {
			child := &Node{value: cv}
			ck, cn := child.transform(f, childPath, k, result)
			if cn == nil {
				continue
			}
			rebuilt[stringKey(ck)] = cn.Value()
		}
		return outKey, &Node{value: rebuilt}

	case []any:
		rebuilt := make([]any, 0, len(v))
		for i, cv := range v {
			child := &Node{value: cv}
			_, cn := child.transform(f, childPath, i, result)
			if cn == nil {
				continue
			}
			rebuilt = append(rebuilt, cn.Value())
		}
		return outKey, &Node{value: rebuilt}

	default:
		return outKey, result
	}
}

func appendPath(path types.DocumentPath, key any) types.DocumentPath {
	switch k := key.(type) {
	case string:
		return path.Property(k, nil)
	case int:
		return path.Index(k)
	default:
		return path
	}
}

func stringKey(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
