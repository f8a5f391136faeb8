package transcript

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLine(t *testing.T) {
	testCases := []struct {
		name          string
		line          string
		expectedEvent Event
	}{
		{name: "list", line: "$ ls", expectedEvent: Event{Kind: EventList}},
		{name: "change_to_parent", line: "$ cd ..", expectedEvent: Event{Kind: EventChangeDirectory, Target: ".."}},
		{name: "change_to_absolute", line: "$ cd /a/e", expectedEvent: Event{Kind: EventChangeDirectory, Target: "/a/e"}},
		{name: "change_to_child", line: "$ cd a", expectedEvent: Event{Kind: EventChangeDirectory, Target: "a"}},
		{name: "directory", line: "dir d", expectedEvent: Event{Kind: EventNewDirectory, Name: "d"}},
		{name: "file", line: "14848514 b.txt", expectedEvent: Event{Kind: EventNewFile, Size: 14848514, Name: "b.txt"}},
		{name: "zero_size_file", line: "0 empty", expectedEvent: Event{Kind: EventNewFile, Size: 0, Name: "empty"}},
		{name: "extra_whitespace", line: "  584   i  ", expectedEvent: Event{Kind: EventNewFile, Size: 584, Name: "i"}},
		{name: "trailing_tokens_ignored", line: "dir x y", expectedEvent: Event{Kind: EventNewDirectory, Name: "x"}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			event, err := ParseLine(testCase.line)
			if err != nil {
				t.Fatalf("ParseLine(%q) error: %v", testCase.line, err)
			}
			if diff := cmp.Diff(testCase.expectedEvent, event); diff != "" {
				t.Fatalf("ParseLine(%q) mismatch (-want +got):\n%s", testCase.line, diff)
			}
		})
	}
}

func TestParseLineRejectsMalformedLines(t *testing.T) {
	malformedLines := map[string]string{
		"empty":             "",
		"unknown_prefix":    "file b.txt",
		"unknown_verb":      "$ rm -rf /",
		"bare_prompt":       "$",
		"cd_without_target": "$ cd",
		"dir_without_name":  "dir",
		"file_without_name": "123",
		"negative_size":     "-5 x",
		"signed_size":       "+5 x",
		"size_overflow":     "99999999999999999999 x",
		"hex_size":          "0x10 x",
	}

	for name, line := range malformedLines {
		t.Run(name, func(t *testing.T) {
			_, err := ParseLine(line)
			if !errors.Is(err, ErrMalformedLine) {
				t.Fatalf("ParseLine(%q) error = %v, want ErrMalformedLine", line, err)
			}
		})
	}
}

func TestEventStringRoundTrips(t *testing.T) {
	lines := []string{"$ ls", "$ cd ..", "$ cd /", "dir a", "62596 h.lst"}
	for _, line := range lines {
		event, err := ParseLine(line)
		if err != nil {
			t.Fatalf("ParseLine(%q) error: %v", line, err)
		}
		if event.String() != line {
			t.Fatalf("Event.String() = %q, want %q", event.String(), line)
		}
	}
}

func TestParseTranscript(t *testing.T) {
	input := "$ cd /\r\n$ ls\r\ndir a\r\n14848514 b.txt\r\n\r\n"

	events, err := ParseTranscript(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTranscript error: %v", err)
	}
	expectedEvents := []Event{
		{Kind: EventChangeDirectory, Target: "/", Line: 1},
		{Kind: EventList, Line: 2},
		{Kind: EventNewDirectory, Name: "a", Line: 3},
		{Kind: EventNewFile, Size: 14848514, Name: "b.txt", Line: 4},
	}
	if diff := cmp.Diff(expectedEvents, events); diff != "" {
		t.Fatalf("ParseTranscript mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTranscriptReportsLineNumber(t *testing.T) {
	testCases := []struct {
		name         string
		input        string
		expectedLine int
	}{
		{name: "bad_command", input: "$ cd /\n$ ls\n$ mkdir x\n", expectedLine: 3},
		{name: "inner_blank_line", input: "$ cd /\n\n$ ls\n", expectedLine: 2},
		{name: "oversized_line", input: "$ cd /\n$ ls\n1 " + strings.Repeat("x", maximumLineBytes) + "\n", expectedLine: 3},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			events, err := ParseString(testCase.input)
			if events != nil {
				t.Fatalf("expected no events on failure, got %d", len(events))
			}
			var lineError *LineError
			if !errors.As(err, &lineError) {
				t.Fatalf("expected *LineError, got %v", err)
			}
			if lineError.Number != testCase.expectedLine {
				t.Fatalf("line number = %d, want %d", lineError.Number, testCase.expectedLine)
			}
			if !errors.Is(err, ErrMalformedLine) {
				t.Fatalf("expected ErrMalformedLine, got %v", err)
			}
		})
	}
}

func TestParseTranscriptEmptyInput(t *testing.T) {
	events, err := ParseString("")
	if err != nil {
		t.Fatalf("ParseString error: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}
