// Package cst defines the external concrete-syntax-tree surface the checker
// depends on, and a YAML decoder for it. A real lexer/parser (or a human,
// for test fixtures) produces the YAML document; lexing and parsing
// themselves are out of scope here, per spec.md — this package is the
// thinnest possible stand-in for "an already-parsed program tree" so the
// CLI has something to read from stdin.
package cst

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Pos is a source position, copied wholesale into diag.Pos by the checker.
type Pos struct {
	Line   int `yaml:"line"`
	Column int `yaml:"column"`
}

// Node is one CST node: a disambiguating Kind string plus a generic field
// bag. The checker and translator read fields out of it through the typed
// accessors below; reaching for a field that doesn't exist, or exists with
// the wrong shape, is an unrecognized-CST-shape bug and panics rather than
// producing a diagnostic — a malformed tree here means the external
// collaborator (the parser) is broken, not the user's program.
type Node struct {
	Kind   string                 `yaml:"kind"`
	Pos    Pos                    `yaml:"pos"`
	Fields map[string]interface{} `yaml:",inline"`
}

// Program is the root of a decoded document: an ordered list of top-level
// declarations.
type Program struct {
	Decls []*Node `yaml:"decls"`
}

// Decode parses a YAML-serialized program tree.
func Decode(data []byte) (*Program, error) {
	var p Program
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("cst: decode: %w", err)
	}
	return &p, nil
}

func badShape(n *Node, field string) {
	panic(fmt.Sprintf("cst: node %q missing or malformed field %q", n.Kind, field))
}

// Str fetches a string-valued field.
func (n *Node) Str(field string) string {
	v, ok := n.Fields[field]
	if !ok {
		badShape(n, field)
	}
	s, ok := v.(string)
	if !ok {
		badShape(n, field)
	}
	return s
}

// OptStr fetches a string-valued field, returning "" if absent.
func (n *Node) OptStr(field string) (string, bool) {
	v, ok := n.Fields[field]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int fetches an integer-valued field.
func (n *Node) Int(field string) int {
	v, ok := n.Fields[field]
	if !ok {
		badShape(n, field)
	}
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	}
	badShape(n, field)
	return 0
}

// Child fetches a single nested-node-valued field.
func (n *Node) Child(field string) *Node {
	v, ok := n.Fields[field]
	if !ok {
		badShape(n, field)
	}
	child, ok := coerceNode(v)
	if !ok {
		badShape(n, field)
	}
	return child
}

// OptChild fetches a single nested-node-valued field, returning nil if absent.
func (n *Node) OptChild(field string) *Node {
	v, ok := n.Fields[field]
	if !ok {
		return nil
	}
	child, ok := coerceNode(v)
	if !ok {
		return nil
	}
	return child
}

// Children fetches a list-of-nodes-valued field.
func (n *Node) Children(field string) []*Node {
	v, ok := n.Fields[field]
	if !ok {
		badShape(n, field)
	}
	raw, ok := v.([]interface{})
	if !ok {
		badShape(n, field)
	}
	out := make([]*Node, len(raw))
	for i, item := range raw {
		child, ok := coerceNode(item)
		if !ok {
			badShape(n, field)
		}
		out[i] = child
	}
	return out
}

// coerceNode re-decodes a generically-unmarshaled map[string]interface{}
// (what yaml.v3 hands back for an inline-field sub-document) into a *Node.
// yaml.v3's generic decode target for an arbitrary value is
// map[string]interface{}, never our named struct, so every nested node
// needs this second pass.
func coerceNode(v interface{}) (*Node, bool) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}
	n := &Node{Fields: make(map[string]interface{}, len(m))}
	for k, val := range m {
		switch k {
		case "kind":
			s, _ := val.(string)
			n.Kind = s
		case "pos":
			if pm, ok := val.(map[string]interface{}); ok {
				if line, ok := pm["line"].(int); ok {
					n.Pos.Line = line
				}
				if col, ok := pm["column"].(int); ok {
					n.Pos.Column = col
				}
			}
		default:
			n.Fields[k] = val
		}
	}
	if n.Kind == "" {
		return nil, false
	}
	return n, true
}

// Normalize walks every node in prog and rewrites its string-valued fields
// to NFC form in place, so identifier/label lookups in internal/tenv and
// the record/variant label sets in internal/types compare correctly
// regardless of the external parser's encoding. Mirrors the teacher's
// internal/lexer/normalize.go boundary-normalization step.
func Normalize(prog *Program) {
	for _, d := range prog.Decls {
		normalizeNode(d)
	}
}

func normalizeNode(n *Node) {
	if n == nil {
		return
	}
	for k, v := range n.Fields {
		n.Fields[k] = normalizeValue(v)
	}
}

func normalizeValue(v interface{}) interface{} {
	switch x := v.(type) {
	case string:
		return norm.NFC.String(x)
	case map[string]interface{}:
		child, ok := coerceNode(x)
		if !ok {
			out := make(map[string]interface{}, len(x))
			for k, val := range x {
				out[k] = normalizeValue(val)
			}
			return out
		}
		normalizeNode(child)
		return nodeToMap(child)
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, item := range x {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}

// nodeToMap reverses coerceNode so a normalized child can be written back
// into its parent's generic Fields bag in the same shape it was decoded
// from — Child()/Children() re-run coerceNode on read, so round-tripping
// through map[string]interface{} here is required to keep that lazy
// decoding path working after normalization.
func nodeToMap(n *Node) map[string]interface{} {
	m := make(map[string]interface{}, len(n.Fields)+2)
	m["kind"] = n.Kind
	m["pos"] = map[string]interface{}{"line": n.Pos.Line, "column": n.Pos.Column}
	for k, v := range n.Fields {
		m[k] = v
	}
	return m
}

// SourceText returns the best-effort original-source rendering of a node
// for diagnostic Arg payloads, grounded on error.py's use of
// `parser.getTokenStream().getText(ctx)` to render a ParserRuleContext
// argument. Since this package stands in for a parser rather than
// wrapping a real token stream, it falls back to an explicit "text" field
// the serialized fixture is expected to carry, or the node's Kind.
func (n *Node) SourceText() string {
	if s, ok := n.OptStr("text"); ok {
		return s
	}
	return n.Kind
}
