package transcript

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// maximumLineBytes bounds a single transcript line.
	maximumLineBytes     = 1024 * 1024
	errorReadFormat      = "reading transcript: %w"
	errorBlankLineFormat = "%w: blank line inside transcript"
	errorLongLineFormat  = "%w: line exceeds %d bytes"
)

// ParseTranscript reads every line from reader and classifies it.
// The first malformed line aborts parsing and is reported as a *LineError.
// Blank lines at the very end of the input are ignored.
func ParseTranscript(reader io.Reader) ([]Event, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maximumLineBytes)

	var events []Event
	var pendingBlankLines []int
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			pendingBlankLines = append(pendingBlankLines, lineNumber)
			continue
		}
		if len(pendingBlankLines) > 0 {
			return nil, &LineError{Number: pendingBlankLines[0], Err: fmt.Errorf(errorBlankLineFormat, ErrMalformedLine)}
		}
		event, parseError := ParseLine(text)
		if parseError != nil {
			return nil, &LineError{Number: lineNumber, Line: text, Err: parseError}
		}
		event.Line = lineNumber
		events = append(events, event)
	}
	if scanError := scanner.Err(); scanError != nil {
		if errors.Is(scanError, bufio.ErrTooLong) {
			return nil, &LineError{Number: lineNumber + 1, Err: fmt.Errorf(errorLongLineFormat, ErrMalformedLine, maximumLineBytes)}
		}
		return nil, fmt.Errorf(errorReadFormat, scanError)
	}
	return events, nil
}

// ParseString is ParseTranscript over an in-memory transcript.
func ParseString(text string) ([]Event, error) {
	return ParseTranscript(strings.NewReader(text))
}
