package allocator

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/hashicorp/go-set/v2"

	"github.com/jbweber/homelab/hil/internal/domain"
)

var (
	numberRe = regexp.MustCompile(`^\d+$`)
	spanRe   = regexp.MustCompile(`^(\d+)-(\d+)$`)
)

// ParseRanges parses a range list such as "100-109,300,702" into the sorted
// distinct integers it names. Spans are inclusive and may be given in either
// order.
func ParseRanges(list string) ([]int, error) {
	result := set.New[int](0)

	for _, piece := range strings.Split(list, ",") {
		piece = strings.TrimSpace(piece)
		switch {
		case piece == "":
			continue
		case numberRe.MatchString(piece):
			n, err := strconv.Atoi(piece)
			if err != nil {
				return nil, fmt.Errorf("invalid range %q: %w", piece, domain.ErrBadArgument)
			}
			result.Insert(n)
		case spanRe.MatchString(piece):
			values := spanRe.FindStringSubmatch(piece)
			low, err1 := strconv.Atoi(values[1])
			high, err2 := strconv.Atoi(values[2])
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("invalid range %q: %w", piece, domain.ErrBadArgument)
			}
			if low > high {
				low, high = high, low
			}
			for i := low; i <= high; i++ {
				result.Insert(i)
			}
		default:
			return nil, fmt.Errorf("invalid range %q: %w", piece, domain.ErrBadArgument)
		}
	}

	if result.Empty() {
		return nil, fmt.Errorf("range list %q is empty: %w", list, domain.ErrBadArgument)
	}

	items := result.Slice()
	slices.Sort(items)
	return items, nil
}
