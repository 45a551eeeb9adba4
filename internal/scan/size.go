package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
)

// Sizer sums the apparent size of regular files below a directory.
// Symbolic links are never followed or counted.
type Sizer struct {
	// Exclude, when set, prunes matching subdirectories from the sum.
	Exclude func(path string) bool

	// OnSkip, when set, is called for entries that could not be read.
	// The sum continues without them.
	OnSkip func(path string, err error)
}

// SumBounded is Sum with a zero Sizer.
func SumBounded(ctx context.Context, path string, ceiling uint64) (uint64, bool) {
	var s Sizer
	return s.Sum(ctx, path, ceiling)
}

// Sum walks root and adds up file sizes. Once the running total is strictly
// greater than ceiling it returns (total, true) without visiting the rest of
// the tree. A ceiling of zero means no limit. If ctx is done before the walk
// finishes, Sum returns (0, false) and the caller must discard the result.
func (s *Sizer) Sum(ctx context.Context, root string, ceiling uint64) (uint64, bool) {
	var total uint64
	stack := []string{root}

	for len(stack) > 0 {
		if ctx.Err() != nil {
			return 0, false
		}
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			s.skip(dir, err)
		}

		var subdirs []string
		for _, de := range entries {
			if ctx.Err() != nil {
				return 0, false
			}
			p := filepath.Join(dir, de.Name())
			typ := de.Type()
			switch {
			case typ&fs.ModeSymlink != 0:
				continue
			case typ.IsDir():
				if s.Exclude != nil && s.Exclude(p) {
					continue
				}
				subdirs = append(subdirs, p)
				continue
			case !typ.IsRegular():
				continue
			}

			info, err := de.Info()
			if err != nil {
				s.skip(p, err)
				continue
			}
			total += uint64(info.Size())
			if ceiling > 0 && total > ceiling {
				return total, true
			}
		}

		// Reversed so the lexically first subdirectory is summed first.
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}
	return total, false
}

func (s *Sizer) skip(path string, err error) {
	if s.OnSkip != nil {
		s.OnSkip(path, err)
	}
}
