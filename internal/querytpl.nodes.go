package internal

import "fmt"

// Position represents a location in the template source
type Position struct {
	Offset int // Byte offset from start
	Line   int // 1-indexed line number
	Column int // 1-indexed column number
}

// String returns a human-readable position string
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// NodeType identifies scanned node types
type NodeType int

// Node type constants
const (
	NodeTypeText NodeType = iota
	NodeTypeMarker
	NodeTypeBlock
)

// Node type string names for debugging
const (
	NodeTypeNameText   = "TEXT"
	NodeTypeNameMarker = "MARKER"
	NodeTypeNameBlock  = "BLOCK"
)

// String returns the string representation of the node type
func (n NodeType) String() string {
	switch n {
	case NodeTypeMarker:
		return NodeTypeNameMarker
	case NodeTypeBlock:
		return NodeTypeNameBlock
	default:
		return NodeTypeNameText
	}
}

// Node is an element of a scanned template
type Node interface {
	Type() NodeType
	Pos() Position
}

// TextNode is literal template text, copied verbatim
type TextNode struct {
	Text     string
	Position Position
}

// Type implements Node
func (n *TextNode) Type() NodeType { return NodeTypeText }

// Pos implements Node
func (n *TextNode) Pos() Position { return n.Position }

// MarkerNode is a placeholder that consumes one parameter
type MarkerNode struct {
	Marker   MarkerKind
	Source   string // marker text as written, e.g. "?d"
	Position Position
}

// Type implements Node
func (n *MarkerNode) Type() NodeType { return NodeTypeMarker }

// Pos implements Node
func (n *MarkerNode) Pos() Position { return n.Position }

// BlockNode is an optional { ... } section. Children never contain blocks.
type BlockNode struct {
	Children []Node
	Position Position
}

// Type implements Node
func (n *BlockNode) Type() NodeType { return NodeTypeBlock }

// Pos implements Node
func (n *BlockNode) Pos() Position { return n.Position }

// CountMarkers returns the number of markers in nodes, including those in blocks
func CountMarkers(nodes []Node) int {
	count := 0
	for _, node := range nodes {
		switch n := node.(type) {
		case *MarkerNode:
			count++
		case *BlockNode:
			count += CountMarkers(n.Children)
		}
	}
	return count
}

// CountBlocks returns the number of top-level blocks in nodes
func CountBlocks(nodes []Node) int {
	count := 0
	for _, node := range nodes {
		if node.Type() == NodeTypeBlock {
			count++
		}
	}
	return count
}
