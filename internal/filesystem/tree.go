// Package filesystem reconstructs a directory tree from transcript events and answers size queries over it.
//
// Nodes live in an arena owned by Tree and refer to each other by NodeID, so a parent link
// is a plain index rather than a reference.
package filesystem

import (
	"fmt"
	"path"
	"slices"
)

// NodeID identifies a node within one Tree. Identifiers are never reused.
type NodeID uint64

// RootID is the identifier reserved for the root directory.
const RootID NodeID = 0

const (
	rootPath      = "/"
	pathSeparator = "/"
)

// NodeKind distinguishes files from directories.
type NodeKind int

const (
	KindFile NodeKind = iota
	KindDirectory
)

func (kind NodeKind) String() string {
	if kind == KindDirectory {
		return "directory"
	}
	return "file"
}

// Node is a file or a directory.
// For files Size is the declared byte size; for directories it is the total of every
// file beneath them.
type Node struct {
	ID        NodeID
	Kind      NodeKind
	Name      string
	Path      string
	Size      int64
	Parent    NodeID
	HasParent bool
	Children  []NodeID
}

// IsDirectory reports whether the node is a directory.
func (node Node) IsDirectory() bool {
	return node.Kind == KindDirectory
}

// IsRoot reports whether the node is the root directory.
func (node Node) IsRoot() bool {
	return node.ID == RootID
}

// Tree is the arena of nodes plus an index from absolute path to identifier.
// After Build returns, a Tree is read-only and safe to share.
type Tree struct {
	nodes []Node
	paths map[string]NodeID
}

func newTree() *Tree {
	root := Node{
		ID:   RootID,
		Kind: KindDirectory,
		Name: rootPath,
		Path: rootPath,
	}
	return &Tree{
		nodes: []Node{root},
		paths: map[string]NodeID{rootPath: RootID},
	}
}

// Root returns the root directory.
func (tree *Tree) Root() Node {
	return tree.snapshot(RootID)
}

// snapshot copies a node out of the arena. Children is cloned so callers cannot
// rewire the tree through a returned Node.
func (tree *Tree) snapshot(id NodeID) Node {
	node := tree.nodes[id]
	node.Children = slices.Clone(node.Children)
	return node
}

// Len returns the number of nodes, root included.
func (tree *Tree) Len() int {
	return len(tree.nodes)
}

// Node returns the node with the given identifier.
func (tree *Tree) Node(id NodeID) (Node, bool) {
	if uint64(id) >= uint64(len(tree.nodes)) {
		return Node{}, false
	}
	return tree.snapshot(id), true
}

// Lookup resolves an absolute path. Trailing slashes and "." segments are ignored.
func (tree *Tree) Lookup(absolutePath string) (Node, bool) {
	id, found := tree.paths[canonicalPath(absolutePath)]
	if !found {
		return Node{}, false
	}
	return tree.snapshot(id), true
}

// Children returns the immediate children of a directory in declaration order.
func (tree *Tree) Children(id NodeID) []Node {
	if uint64(id) >= uint64(len(tree.nodes)) {
		return nil
	}
	childIDs := tree.nodes[id].Children
	children := make([]Node, 0, len(childIDs))
	for _, childID := range childIDs {
		children = append(children, tree.snapshot(childID))
	}
	return children
}

// Directories returns every directory, root first, in identifier order.
func (tree *Tree) Directories() []Node {
	var directories []Node
	for _, node := range tree.nodes {
		if node.IsDirectory() {
			directories = append(directories, tree.snapshot(node.ID))
		}
	}
	return directories
}

// Walk visits every node depth-first in declaration order, starting at the root.
// depth is 0 for the root. Returning false from visit skips the node's children.
func (tree *Tree) Walk(visit func(node Node, depth int) bool) {
	tree.walk(RootID, 0, visit)
}

func (tree *Tree) walk(id NodeID, depth int, visit func(node Node, depth int) bool) {
	if !visit(tree.snapshot(id), depth) {
		return
	}
	for _, childID := range tree.nodes[id].Children {
		tree.walk(childID, depth+1, visit)
	}
}

// Verify recomputes every directory total from the files beneath it and compares
// the result with the totals accumulated while building.
func (tree *Tree) Verify() error {
	recounted := make([]int64, len(tree.nodes))
	// Children always have larger identifiers than their parents, so a reverse
	// sweep finishes every subtree before its parent reads it.
	for index := len(tree.nodes) - 1; index >= 0; index-- {
		node := tree.nodes[index]
		if !node.IsDirectory() {
			recounted[index] = node.Size
		}
		if node.HasParent {
			recounted[node.Parent] += recounted[index]
		}
	}
	for _, node := range tree.nodes {
		if node.IsDirectory() && recounted[node.ID] != node.Size {
			return fmt.Errorf("%w: %s records %d, files total %d", ErrSizeMismatch, node.Path, node.Size, recounted[node.ID])
		}
	}
	return nil
}

func childPath(parentPath string, name string) string {
	if parentPath == rootPath {
		return rootPath + name
	}
	return parentPath + pathSeparator + name
}

func canonicalPath(absolutePath string) string {
	return path.Clean(absolutePath)
}
