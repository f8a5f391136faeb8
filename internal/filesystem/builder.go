package filesystem

import (
	"fmt"
	"math"
	"strings"

	"github.com/temirov/lsreplay/internal/transcript"
)

const (
	parentTarget          = ".."
	currentTarget         = "."
	errorTargetFormat     = "%w: %s"
	errorUnknownEventKind = "unknown event kind %d"
)

// Builder applies transcript events to a Tree while tracking the current directory.
type Builder struct {
	tree   *Tree
	cursor NodeID
}

// NewBuilder returns a builder holding a root-only tree with the cursor at the root.
func NewBuilder() *Builder {
	return &Builder{tree: newTree(), cursor: RootID}
}

// Cursor returns the current directory.
func (builder *Builder) Cursor() Node {
	return builder.tree.snapshot(builder.cursor)
}

// Tree returns the tree built so far.
func (builder *Builder) Tree() *Tree {
	return builder.tree
}

// Build applies every event in order and returns the finished tree.
// The first failure aborts the build and no tree is returned.
func Build(events []transcript.Event) (*Tree, error) {
	builder := NewBuilder()
	for _, event := range events {
		if applyError := builder.Apply(event); applyError != nil {
			return nil, &EventError{Event: event, Err: applyError}
		}
	}
	return builder.tree, nil
}

// Apply processes a single event.
func (builder *Builder) Apply(event transcript.Event) error {
	switch event.Kind {
	case transcript.EventList:
		return nil
	case transcript.EventChangeDirectory:
		return builder.ChangeDirectory(event.Target)
	case transcript.EventNewDirectory:
		return builder.AddDirectory(event.Name)
	case transcript.EventNewFile:
		return builder.AddFile(event.Name, event.Size)
	default:
		return fmt.Errorf(errorUnknownEventKind, event.Kind)
	}
}

// ChangeDirectory moves the cursor to "..", an absolute path, or an immediate child.
func (builder *Builder) ChangeDirectory(target string) error {
	current := builder.tree.nodes[builder.cursor]
	switch {
	case target == parentTarget:
		if !current.HasParent {
			return ErrAtRoot
		}
		builder.cursor = current.Parent
		return nil
	case strings.HasPrefix(target, rootPath):
		id, found := builder.tree.paths[canonicalPath(target)]
		if !found {
			return fmt.Errorf(errorTargetFormat, ErrPathNotFound, target)
		}
		return builder.enter(id, target)
	case strings.Contains(target, pathSeparator):
		return fmt.Errorf(errorTargetFormat, ErrNameContainsSlash, target)
	case target == currentTarget:
		return nil
	}

	id, found := builder.tree.paths[childPath(current.Path, target)]
	if !found {
		return fmt.Errorf(errorTargetFormat, ErrPathNotFound, target)
	}
	return builder.enter(id, target)
}

func (builder *Builder) enter(id NodeID, target string) error {
	if !builder.tree.nodes[id].IsDirectory() {
		return fmt.Errorf(errorTargetFormat, ErrNotADirectory, target)
	}
	builder.cursor = id
	return nil
}

// AddDirectory declares an empty directory under the cursor.
func (builder *Builder) AddDirectory(name string) error {
	_, addError := builder.addNode(KindDirectory, name, 0)
	return addError
}

// AddFile declares a file under the cursor and adds its size to every enclosing directory.
func (builder *Builder) AddFile(name string, size int64) error {
	if size < 0 {
		return fmt.Errorf("%w: negative size %d", transcript.ErrMalformedLine, size)
	}
	// The root total bounds every other total, so checking it covers all ancestors.
	if builder.tree.nodes[RootID].Size > math.MaxInt64-size {
		return fmt.Errorf(errorTargetFormat, ErrSizeOverflow, name)
	}
	if _, addError := builder.addNode(KindFile, name, size); addError != nil {
		return addError
	}
	ancestor := builder.cursor
	for {
		builder.tree.nodes[ancestor].Size += size
		if !builder.tree.nodes[ancestor].HasParent {
			return nil
		}
		ancestor = builder.tree.nodes[ancestor].Parent
	}
}

func (builder *Builder) addNode(kind NodeKind, name string, size int64) (NodeID, error) {
	if strings.Contains(name, pathSeparator) {
		return 0, fmt.Errorf(errorTargetFormat, ErrNameContainsSlash, name)
	}
	if name == currentTarget || name == parentTarget {
		return 0, fmt.Errorf(errorTargetFormat, ErrReservedName, name)
	}
	parent := &builder.tree.nodes[builder.cursor]
	nodePath := childPath(parent.Path, name)
	if _, exists := builder.tree.paths[nodePath]; exists {
		return 0, fmt.Errorf(errorTargetFormat, ErrDuplicateEntry, nodePath)
	}

	id := NodeID(len(builder.tree.nodes))
	parent.Children = append(parent.Children, id)
	builder.tree.nodes = append(builder.tree.nodes, Node{
		ID:        id,
		Kind:      kind,
		Name:      name,
		Path:      nodePath,
		Size:      size,
		Parent:    builder.cursor,
		HasParent: true,
	})
	builder.tree.paths[nodePath] = id
	return id, nil
}
