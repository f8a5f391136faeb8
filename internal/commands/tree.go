// Package commands contains the core logic for data collection for each command.
package commands

import (
	"github.com/temirov/lsreplay/internal/filesystem"
	"github.com/temirov/lsreplay/internal/types"
	"github.com/temirov/lsreplay/internal/utils"
)

// TreeBuilder converts reconstructed trees into output nodes using configured options.
type TreeBuilder struct {
	IncludeSummary bool
}

// GetTreeData converts a reconstructed tree into a single root output node.
func (treeBuilder *TreeBuilder) GetTreeData(tree *filesystem.Tree) *types.TreeOutputNode {
	return treeBuilder.buildTreeNode(tree, tree.Root())
}

// buildTreeNode recursively converts a node and its children.
func (treeBuilder *TreeBuilder) buildTreeNode(tree *filesystem.Tree, node filesystem.Node) *types.TreeOutputNode {
	outputNode := &types.TreeOutputNode{
		Path:      node.Path,
		Name:      node.Name,
		Size:      utils.FormatFileSize(node.Size),
		SizeBytes: node.Size,
	}
	if !node.IsDirectory() {
		outputNode.Type = types.NodeTypeFile
		return outputNode
	}

	outputNode.Type = types.NodeTypeDirectory
	for _, child := range tree.Children(node.ID) {
		outputNode.Children = append(outputNode.Children, treeBuilder.buildTreeNode(tree, child))
	}
	if treeBuilder.IncludeSummary {
		files, directories := collectSummary(outputNode.Children)
		outputNode.TotalFiles = files
		outputNode.TotalDirectories = directories
	}
	return outputNode
}

// collectSummary returns the number of files and directories beneath the provided children.
func collectSummary(children []*types.TreeOutputNode) (int, int) {
	var totalFiles int
	var totalDirectories int
	for _, child := range children {
		if child == nil {
			continue
		}
		if child.Type == types.NodeTypeFile {
			totalFiles++
			continue
		}
		totalDirectories += 1 + child.TotalDirectories
		totalFiles += child.TotalFiles
	}
	return totalFiles, totalDirectories
}
