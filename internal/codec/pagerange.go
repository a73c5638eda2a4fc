package codec

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ParsePageRange parses a one-based page range expression into sorted,
// deduplicated zero-based page indices for a document of pageCount pages.
//
// Accepted forms: "3", "1-5", "1,3,5", "-3" (from the first page) and
// "5-" (through the last page), combined with commas.
func ParsePageRange(expr string, pageCount int) ([]int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidPageRange)
	}

	var indices []int
	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		first, last, err := pageBounds(part, pageCount)
		if err != nil {
			return nil, err
		}
		for page := first; page <= last; page++ {
			indices = append(indices, page-1)
		}
	}

	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: no pages in %q", ErrInvalidPageRange, expr)
	}

	slices.Sort(indices)
	return slices.Compact(indices), nil
}

func pageBounds(part string, pageCount int) (int, int, error) {
	lo, hi, isRange := strings.Cut(part, "-")
	if !isRange {
		page, err := parsePage(lo)
		if err != nil {
			return 0, 0, err
		}
		if page > pageCount {
			return 0, 0, fmt.Errorf("%w: page %d of %d", ErrIndexOutOfRange, page, pageCount)
		}
		return page, page, nil
	}

	first, last := 1, pageCount
	var err error

	if lo = strings.TrimSpace(lo); lo != "" {
		if first, err = parsePage(lo); err != nil {
			return 0, 0, err
		}
	}
	if hi = strings.TrimSpace(hi); hi != "" {
		if last, err = parsePage(hi); err != nil {
			return 0, 0, err
		}
	}

	if first > last {
		return 0, 0, fmt.Errorf("%w: descending range %q", ErrInvalidPageRange, part)
	}
	if last > pageCount {
		return 0, 0, fmt.Errorf("%w: page %d of %d", ErrIndexOutOfRange, last, pageCount)
	}
	return first, last, nil
}

func parsePage(s string) (int, error) {
	page, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || page < 1 {
		return 0, fmt.Errorf("%w: invalid page %q", ErrInvalidPageRange, s)
	}
	return page, nil
}
