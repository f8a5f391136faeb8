package filesystem

import "fmt"

const (
	// DefaultSizeThreshold is the inclusive directory size bound used by BoundedSizeSum.
	DefaultSizeThreshold int64 = 100000
	// DefaultTotalCapacity is the size of the device the transcript was recorded on.
	DefaultTotalCapacity int64 = 70000000
	// DefaultRequiredFree is the free space an update needs.
	DefaultRequiredFree int64 = 30000000
)

// BoundedSizeSum totals the sizes of every directory, root included, whose size is at most threshold.
// A file nested several levels deep is counted once for every qualifying ancestor.
func BoundedSizeSum(tree *Tree, threshold int64) int64 {
	var total int64
	for _, node := range tree.nodes {
		if node.IsDirectory() && node.Size <= threshold {
			total += node.Size
		}
	}
	return total
}

// Candidate is the directory chosen for deletion together with the space accounting behind the choice.
type Candidate struct {
	Directory Node
	Used      int64
	Free      int64
	Needed    int64
}

// SmallestSufficient finds the smallest non-root directory whose removal would leave at least
// requiredFree bytes available on a device of totalCapacity bytes.
// Ties go to the directory declared first. When no directory qualifies the error wraps
// ErrNoCandidate and the returned Candidate still carries Used, Free and Needed.
func SmallestSufficient(tree *Tree, totalCapacity int64, requiredFree int64) (Candidate, error) {
	used := tree.nodes[RootID].Size
	free := totalCapacity - used
	if free < 0 {
		return Candidate{}, fmt.Errorf("%w: used %d, capacity %d", ErrCapacityExceeded, used, totalCapacity)
	}
	needed := requiredFree - free
	if needed < 0 {
		needed = 0
	}

	candidate := Candidate{Used: used, Free: free, Needed: needed}
	best := RootID
	for _, node := range tree.nodes[1:] {
		if !node.IsDirectory() || node.Size < needed {
			continue
		}
		if best == RootID || node.Size < tree.nodes[best].Size {
			best = node.ID
		}
	}
	if best == RootID {
		// The accounting is still returned so callers can report it.
		return candidate, fmt.Errorf("%w: need %d bytes", ErrNoCandidate, needed)
	}
	candidate.Directory = tree.snapshot(best)
	return candidate, nil
}
