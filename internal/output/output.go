// Package output renders collected tree and report results as raw text, JSON, or XML.
package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"

	"github.com/disiqueira/gotree/v3"

	"github.com/temirov/lsreplay/internal/types"
	"github.com/temirov/lsreplay/internal/utils"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	xmlHeader          = xml.Header
	xmlResultsElement  = "results"
	treeHeaderFormat   = "--- Directory Tree: %s ---\n"
	reportHeaderFormat = "--- Report: %s ---\n"

	fileLabelFormat      = "%s (%s)"
	directoryLabelFormat = "%s/ (%s)"
	summaryLabelFormat   = "%s/ (%s, %d files, %d directories)"

	reportUsedFormat      = "Used space:       %s bytes\n"
	reportBoundedFormat   = "Directories <= %s bytes total: %s\n"
	reportFreeFormat      = "Free space:       %s of %s bytes\n"
	reportNeededFormat    = "Needed:           %s bytes (require %s free)\n"
	reportCandidateFormat = "Delete candidate: %s (%s bytes, %s)\n"
	reportNoCandidateLine = "Delete candidate: none, no directory is large enough\n"
	reportVerifiedLine    = "Directory totals verified against a full recount.\n"
	summaryLineFormat     = "Summary: %d files, %d directories, total size %s"

	// reportPrefix is the key prefix used when deduplicating reports.
	reportPrefix = "report:"
	// nodePrefix is the key prefix used when deduplicating tree nodes.
	nodePrefix = "node:"
)

// RenderRaw deduplicates collected items and renders them as plain text.
// Trees are drawn with box connectors; reports print one labelled value per line.
func RenderRaw(commandName string, collected []interface{}, includeSummary bool) string {
	dedupedItems := removeDuplicateCollectedItems(collected)
	var buffer bytes.Buffer

	if includeSummary && commandName == types.CommandTree {
		buffer.WriteString(FormatSummaryLine(computeSummary(dedupedItems)))
		buffer.WriteString("\n")
	}

	for index, item := range dedupedItems {
		if index > 0 || buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		switch outputItem := item.(type) {
		case *types.TreeOutputNode:
			if commandName == types.CommandTree {
				fmt.Fprintf(&buffer, treeHeaderFormat, outputItem.Transcript)
				buffer.WriteString(RenderTreeRaw(outputItem, includeSummary))
			}
		case *types.ReportOutput:
			if commandName == types.CommandReport {
				buffer.WriteString(RenderReportRaw(outputItem))
			}
		}
	}
	return buffer.String()
}

// RenderTreeRaw draws a single tree.
func RenderTreeRaw(root *types.TreeOutputNode, includeSummary bool) string {
	visualTree := gotree.New(nodeLabel(root, includeSummary))
	addChildren(visualTree, root, includeSummary)
	return visualTree.Print()
}

func addChildren(parent gotree.Tree, node *types.TreeOutputNode, includeSummary bool) {
	for _, child := range node.Children {
		branch := parent.Add(nodeLabel(child, includeSummary))
		addChildren(branch, child, includeSummary)
	}
}

func nodeLabel(node *types.TreeOutputNode, includeSummary bool) string {
	if node.Type == types.NodeTypeFile {
		return fmt.Sprintf(fileLabelFormat, node.Name, node.Size)
	}
	name := node.Name
	if name == "/" {
		name = ""
	}
	if includeSummary {
		return fmt.Sprintf(summaryLabelFormat, name, node.Size, node.TotalFiles, node.TotalDirectories)
	}
	return fmt.Sprintf(directoryLabelFormat, name, node.Size)
}

// RenderReportRaw renders one report as labelled lines.
func RenderReportRaw(report *types.ReportOutput) string {
	var buffer bytes.Buffer
	fmt.Fprintf(&buffer, reportHeaderFormat, report.Transcript)
	fmt.Fprintf(&buffer, reportUsedFormat, utils.FormatByteCount(report.UsedBytes))
	fmt.Fprintf(&buffer, reportBoundedFormat, utils.FormatByteCount(report.Threshold), utils.FormatByteCount(report.BoundedSum))
	fmt.Fprintf(&buffer, reportFreeFormat, utils.FormatByteCount(report.FreeBytes), utils.FormatByteCount(report.TotalCapacity))
	fmt.Fprintf(&buffer, reportNeededFormat, utils.FormatByteCount(report.NeededBytes), utils.FormatByteCount(report.RequiredFree))
	if report.Candidate != nil {
		fmt.Fprintf(&buffer, reportCandidateFormat, report.Candidate.Path, utils.FormatByteCount(report.Candidate.SizeBytes), report.Candidate.Size)
	} else {
		buffer.WriteString(reportNoCandidateLine)
	}
	if report.Verified {
		buffer.WriteString(reportVerifiedLine)
	}
	return buffer.String()
}

// RenderJSON deduplicates and marshals results to JSON.
// A single item is emitted as an object; several are emitted as an array.
func RenderJSON(collected []interface{}) (string, error) {
	dedupedItems := removeDuplicateCollectedItems(collected)
	if len(dedupedItems) == 0 {
		return "[]", nil
	}
	if len(dedupedItems) == 1 {
		encoded, jsonEncodeError := json.MarshalIndent(dedupedItems[0], indentPrefix, indentSpacer)
		return string(encoded), jsonEncodeError
	}
	encoded, jsonEncodeError := json.MarshalIndent(dedupedItems, indentPrefix, indentSpacer)
	return string(encoded), jsonEncodeError
}

// RenderXML deduplicates and marshals results to XML.
func RenderXML(collected []interface{}) (string, error) {
	dedupedItems := removeDuplicateCollectedItems(collected)
	if len(dedupedItems) == 1 {
		encoded, xmlMarshalError := xml.MarshalIndent(dedupedItems[0], indentPrefix, indentSpacer)
		if xmlMarshalError != nil {
			return "", xmlMarshalError
		}
		return xmlHeader + string(encoded), nil
	}
	wrapper := struct {
		XMLName xml.Name      `xml:""`
		Items   []interface{} `xml:""`
	}{
		XMLName: xml.Name{Local: xmlResultsElement},
		Items:   dedupedItems,
	}
	encoded, xmlMarshalError := xml.MarshalIndent(wrapper, indentPrefix, indentSpacer)
	if xmlMarshalError != nil {
		return "", xmlMarshalError
	}
	return xmlHeader + string(encoded), nil
}

// removeDuplicateCollectedItems returns a slice with duplicate collected items removed.
func removeDuplicateCollectedItems(items []interface{}) []interface{} {
	seen := make(map[string]struct{}, len(items))
	var out []interface{}
	for _, item := range items {
		var key string
		switch outputItem := item.(type) {
		case *types.TreeOutputNode:
			key = nodePrefix + outputItem.Transcript + "\x00" + outputItem.Path
		case *types.ReportOutput:
			key = reportPrefix + outputItem.Transcript
		default:
			continue
		}
		if _, exists := seen[key]; !exists {
			seen[key] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}

// computeSummary aggregates file and directory counts and sizes across collected trees.
func computeSummary(items []interface{}) *types.OutputSummary {
	var totalFiles int
	var totalDirectories int
	var totalBytes int64
	for _, item := range items {
		node, ok := item.(*types.TreeOutputNode)
		if !ok {
			continue
		}
		files, directories := countTree(node)
		totalFiles += files
		totalDirectories += directories
		totalBytes += node.SizeBytes
	}
	return &types.OutputSummary{
		TotalFiles:       totalFiles,
		TotalDirectories: totalDirectories,
		TotalSize:        utils.FormatFileSize(totalBytes),
	}
}

// countTree counts files and directories below node, node itself excluded.
func countTree(node *types.TreeOutputNode) (int, int) {
	var files int
	var directories int
	for _, child := range node.Children {
		if child.Type == types.NodeTypeFile {
			files++
			continue
		}
		childFiles, childDirectories := countTree(child)
		files += childFiles
		directories += 1 + childDirectories
	}
	return files, directories
}

// FormatSummaryLine renders the aggregate summary as a single line.
func FormatSummaryLine(summary *types.OutputSummary) string {
	return fmt.Sprintf(summaryLineFormat, summary.TotalFiles, summary.TotalDirectories, summary.TotalSize)
}
