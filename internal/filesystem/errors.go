package filesystem

import (
	"errors"
	"fmt"

	"github.com/temirov/lsreplay/internal/transcript"
)

var (
	// ErrAtRoot reports "cd .." issued while the cursor is at the root.
	ErrAtRoot = errors.New("already at root directory")
	// ErrPathNotFound reports a change-directory target that does not exist.
	ErrPathNotFound = errors.New("path not found")
	// ErrNotADirectory reports a change-directory target that names a file.
	ErrNotADirectory = errors.New("not a directory")
	// ErrNameContainsSlash reports an entry or relative target containing "/".
	ErrNameContainsSlash = errors.New("name contains slash")
	// ErrDuplicateEntry reports a name declared twice under the same directory.
	ErrDuplicateEntry = fmt.Errorf("%w: duplicate entry", transcript.ErrMalformedLine)
	// ErrReservedName reports an entry named "." or "..".
	ErrReservedName = fmt.Errorf("%w: reserved entry name", transcript.ErrMalformedLine)
	// ErrSizeOverflow reports a file whose size would overflow the root total.
	ErrSizeOverflow = errors.New("size total overflows")
	// ErrSizeMismatch reports an incremental directory total that disagrees with a full recount.
	ErrSizeMismatch = errors.New("directory size mismatch")
	// ErrCapacityExceeded reports a tree larger than the total capacity.
	ErrCapacityExceeded = errors.New("used space exceeds total capacity")
	// ErrNoCandidate reports that no non-root directory frees enough space.
	ErrNoCandidate = errors.New("no directory is large enough")
)

// EventError attaches the offending transcript event to a build failure.
type EventError struct {
	Event transcript.Event
	Err   error
}

func (eventError *EventError) Error() string {
	if eventError.Event.Line > 0 {
		return fmt.Sprintf("line %d (%s): %v", eventError.Event.Line, eventError.Event, eventError.Err)
	}
	return fmt.Sprintf("%s: %v", eventError.Event, eventError.Err)
}

func (eventError *EventError) Unwrap() error {
	return eventError.Err
}
