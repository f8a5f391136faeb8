// Package transcript classifies the lines of a terminal session transcript into events.
package transcript

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	commandPrompt           = "$"
	listVerb                = "ls"
	changeDirectoryVerb     = "cd"
	directoryMarker         = "dir"
	sizeBitWidth            = 63
	errorMissingTokenFormat = "%w: %q is missing its %s"
	errorUnknownVerbFormat  = "%w: unknown command %q"
	errorUnknownLineFormat  = "%w: %q is neither a command, a directory, nor a sized file"
	errorLineFormat         = "line %d: %v"
)

// ErrMalformedLine reports a transcript line that cannot be classified.
var ErrMalformedLine = errors.New("malformed line")

// EventKind identifies the shape of a parsed transcript line.
type EventKind int

const (
	// EventList marks a "$ ls" line. It carries no data.
	EventList EventKind = iota
	// EventChangeDirectory marks a "$ cd <target>" line.
	EventChangeDirectory
	// EventNewDirectory marks a "dir <name>" listing line.
	EventNewDirectory
	// EventNewFile marks a "<size> <name>" listing line.
	EventNewFile
)

// String returns the transcript spelling of the event kind.
func (kind EventKind) String() string {
	switch kind {
	case EventList:
		return "ls"
	case EventChangeDirectory:
		return "cd"
	case EventNewDirectory:
		return "dir"
	case EventNewFile:
		return "file"
	default:
		return "unknown"
	}
}

// Event is one classified transcript line.
// Target is set for EventChangeDirectory, Name for EventNewDirectory and EventNewFile,
// and Size for EventNewFile only.
type Event struct {
	Kind   EventKind
	Target string
	Name   string
	Size   int64
	Line   int
}

// String renders the event the way it appeared in the transcript.
func (event Event) String() string {
	switch event.Kind {
	case EventList:
		return commandPrompt + " " + listVerb
	case EventChangeDirectory:
		return commandPrompt + " " + changeDirectoryVerb + " " + event.Target
	case EventNewDirectory:
		return directoryMarker + " " + event.Name
	case EventNewFile:
		return strconv.FormatInt(event.Size, 10) + " " + event.Name
	default:
		return event.Kind.String()
	}
}

// LineError attaches a 1-based line number and the raw text to a parsing failure.
type LineError struct {
	Number int
	Line   string
	Err    error
}

func (lineError *LineError) Error() string {
	return fmt.Sprintf(errorLineFormat, lineError.Number, lineError.Err)
}

func (lineError *LineError) Unwrap() error {
	return lineError.Err
}

// ParseLine classifies a single line. It keeps no state between calls.
func ParseLine(line string) (Event, error) {
	words := strings.Fields(line)
	if len(words) == 0 {
		return Event{}, fmt.Errorf(errorUnknownLineFormat, ErrMalformedLine, line)
	}

	switch words[0] {
	case commandPrompt:
		return parseCommand(line, words[1:])
	case directoryMarker:
		if len(words) < 2 {
			return Event{}, fmt.Errorf(errorMissingTokenFormat, ErrMalformedLine, line, "directory name")
		}
		return Event{Kind: EventNewDirectory, Name: words[1]}, nil
	}

	// Only an unsigned run of digits marks a sized file.
	if !isDigits(words[0]) {
		return Event{}, fmt.Errorf(errorUnknownLineFormat, ErrMalformedLine, line)
	}
	size, parseError := strconv.ParseUint(words[0], 10, sizeBitWidth)
	if parseError != nil {
		return Event{}, fmt.Errorf("%w: size %q: %v", ErrMalformedLine, words[0], parseError)
	}
	if len(words) < 2 {
		return Event{}, fmt.Errorf(errorMissingTokenFormat, ErrMalformedLine, line, "file name")
	}
	return Event{Kind: EventNewFile, Size: int64(size), Name: words[1]}, nil
}

func parseCommand(line string, arguments []string) (Event, error) {
	if len(arguments) == 0 {
		return Event{}, fmt.Errorf(errorMissingTokenFormat, ErrMalformedLine, line, "command")
	}
	switch arguments[0] {
	case listVerb:
		return Event{Kind: EventList}, nil
	case changeDirectoryVerb:
		if len(arguments) < 2 {
			return Event{}, fmt.Errorf(errorMissingTokenFormat, ErrMalformedLine, line, "target")
		}
		return Event{Kind: EventChangeDirectory, Target: arguments[1]}, nil
	default:
		return Event{}, fmt.Errorf(errorUnknownVerbFormat, ErrMalformedLine, arguments[0])
	}
}

func isDigits(token string) bool {
	if token == "" {
		return false
	}
	for _, character := range token {
		if character < '0' || character > '9' {
			return false
		}
	}
	return true
}
