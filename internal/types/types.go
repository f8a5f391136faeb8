// Package types defines every cross‑package data structure used by the lsreplay CLI.
package types

import "encoding/xml"

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"

	CommandTree   = "tree"
	CommandReport = "report"

	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatXML  = "xml"

	// StandardInputName is the argument that selects standard input as a transcript source.
	StandardInputName = "-"
)

// TranscriptSource is one transcript argument after resolution.
type TranscriptSource struct {
	Name         string
	AbsolutePath string
	IsStdin      bool
}

// TreeOutputNode represents a node of a reconstructed directory tree returned by the tree command.
type TreeOutputNode struct {
	XMLName          xml.Name          `json:"-" xml:"node"`
	Transcript       string            `json:"transcript,omitempty" xml:"transcript,omitempty"`
	Path             string            `json:"path" xml:"path"`
	Name             string            `json:"name" xml:"name"`
	Type             string            `json:"type" xml:"type"`
	Size             string            `json:"size,omitempty" xml:"size,omitempty"`
	SizeBytes        int64             `json:"sizeBytes" xml:"sizeBytes"`
	Children         []*TreeOutputNode `json:"children,omitempty" xml:"children>node,omitempty"`
	TotalFiles       int               `json:"totalFiles,omitempty" xml:"totalFiles,omitempty"`
	TotalDirectories int               `json:"totalDirectories,omitempty" xml:"totalDirectories,omitempty"`
}

// CandidateOutput describes the directory chosen for deletion.
type CandidateOutput struct {
	Path      string `json:"path" xml:"path"`
	Size      string `json:"size" xml:"size"`
	SizeBytes int64  `json:"sizeBytes" xml:"sizeBytes"`
}

// ReportOutput is the result of the report command for one transcript.
type ReportOutput struct {
	XMLName       xml.Name         `json:"-" xml:"report"`
	Transcript    string           `json:"transcript" xml:"transcript"`
	UsedBytes     int64            `json:"usedBytes" xml:"usedBytes"`
	Threshold     int64            `json:"threshold" xml:"threshold"`
	BoundedSum    int64            `json:"boundedSum" xml:"boundedSum"`
	TotalCapacity int64            `json:"totalCapacity" xml:"totalCapacity"`
	RequiredFree  int64            `json:"requiredFree" xml:"requiredFree"`
	FreeBytes     int64            `json:"freeBytes" xml:"freeBytes"`
	NeededBytes   int64            `json:"neededBytes" xml:"neededBytes"`
	Candidate     *CandidateOutput `json:"candidate,omitempty" xml:"candidate,omitempty"`
	Verified      bool             `json:"verified,omitempty" xml:"verified,omitempty"`
}

// OutputSummary captures aggregate information about rendered trees.
type OutputSummary struct {
	TotalFiles       int    `json:"totalFiles" xml:"totalFiles"`
	TotalDirectories int    `json:"totalDirectories" xml:"totalDirectories"`
	TotalSize        string `json:"totalSize" xml:"totalSize"`
}
