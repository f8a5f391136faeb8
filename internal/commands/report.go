package commands

import (
	"errors"
	"fmt"

	"github.com/temirov/lsreplay/internal/filesystem"
	"github.com/temirov/lsreplay/internal/types"
	"github.com/temirov/lsreplay/internal/utils"
)

const (
	errorVerifyFormat    = "verifying %s: %w"
	errorCandidateFormat = "choosing deletion candidate for %s: %w"
)

// ReportOptions holds the thresholds for the report command.
type ReportOptions struct {
	Threshold     int64
	TotalCapacity int64
	RequiredFree  int64
	Verify        bool
}

// DefaultReportOptions returns the thresholds of the reference device.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		Threshold:     filesystem.DefaultSizeThreshold,
		TotalCapacity: filesystem.DefaultTotalCapacity,
		RequiredFree:  filesystem.DefaultRequiredFree,
	}
}

// GetReportData runs both size queries against a reconstructed tree.
// A tree where no directory frees enough space yields a report with a nil Candidate.
func GetReportData(transcriptName string, tree *filesystem.Tree, options ReportOptions) (*types.ReportOutput, error) {
	if options.Verify {
		if verifyError := tree.Verify(); verifyError != nil {
			return nil, fmt.Errorf(errorVerifyFormat, transcriptName, verifyError)
		}
	}

	candidate, candidateError := filesystem.SmallestSufficient(tree, options.TotalCapacity, options.RequiredFree)
	if candidateError != nil && !errors.Is(candidateError, filesystem.ErrNoCandidate) {
		return nil, fmt.Errorf(errorCandidateFormat, transcriptName, candidateError)
	}

	report := &types.ReportOutput{
		Transcript:    transcriptName,
		UsedBytes:     candidate.Used,
		Threshold:     options.Threshold,
		BoundedSum:    filesystem.BoundedSizeSum(tree, options.Threshold),
		TotalCapacity: options.TotalCapacity,
		RequiredFree:  options.RequiredFree,
		FreeBytes:     candidate.Free,
		NeededBytes:   candidate.Needed,
		Verified:      options.Verify,
	}
	// Without a qualifying directory the report keeps its accounting and has no candidate.
	if candidateError == nil {
		report.Candidate = &types.CandidateOutput{
			Path:      candidate.Directory.Path,
			Size:      utils.FormatFileSize(candidate.Directory.Size),
			SizeBytes: candidate.Directory.Size,
		}
	}
	return report, nil
}
