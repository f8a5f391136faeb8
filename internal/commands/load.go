package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/temirov/lsreplay/internal/filesystem"
	"github.com/temirov/lsreplay/internal/transcript"
	"github.com/temirov/lsreplay/internal/types"
)

const (
	errorOpenTranscriptFormat  = "opening transcript %s: %w"
	errorParseTranscriptFormat = "parsing transcript %s: %w"
	errorBuildTreeFormat       = "building tree for %s: %w"
	warningCloseFormat         = "Warning: failed to close %s: %v\n"
)

// LoadTree reads a transcript source and reconstructs its directory tree.
// stdin is used when the source names standard input.
//
// #nosec G304
func LoadTree(source types.TranscriptSource, stdin io.Reader) (*filesystem.Tree, error) {
	if source.IsStdin {
		return ReadTree(source.Name, stdin)
	}
	fileHandle, openError := os.Open(source.AbsolutePath)
	if openError != nil {
		return nil, fmt.Errorf(errorOpenTranscriptFormat, source.Name, openError)
	}
	defer func() {
		if closeError := fileHandle.Close(); closeError != nil {
			fmt.Fprintf(os.Stderr, warningCloseFormat, source.AbsolutePath, closeError)
		}
	}()
	return ReadTree(source.Name, fileHandle)
}

// ReadTree parses a transcript from reader and builds its tree.
func ReadTree(name string, reader io.Reader) (*filesystem.Tree, error) {
	events, parseError := transcript.ParseTranscript(reader)
	if parseError != nil {
		return nil, fmt.Errorf(errorParseTranscriptFormat, name, parseError)
	}
	tree, buildError := filesystem.Build(events)
	if buildError != nil {
		return nil, fmt.Errorf(errorBuildTreeFormat, name, buildError)
	}
	return tree, nil
}
