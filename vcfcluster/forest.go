package vcfcluster

import (
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/vcfcluster/encoding/vcf"
)

// NonNestingError reports two records of a cluster whose spans overlap
// without either containing the other.  Such clusters cannot be arranged
// into a containment forest.
type NonNestingError struct {
	Chrom string
	// A and B are the offending spans, 0-based closed, A starting first.
	A, B vcf.Interval
}

// Error implements error.  Positions are printed 1-based.
func (e *NonNestingError) Error() string {
	return fmt.Sprintf("non-nesting overlap on %s: %d-%d and %d-%d",
		e.Chrom, e.A.Start+1, e.A.End+1, e.B.Start+1, e.B.End+1)
}

// IsNonNesting returns whether err is, or wraps, a *NonNestingError.
func IsNonNesting(err error) bool {
	for err != nil {
		switch e := err.(type) {
		case *NonNestingError:
			return true
		case *errors.Error:
			err = e.Err
		default:
			return false
		}
	}
	return false
}

// Forest is the containment forest of a cluster's records.  Nodes are
// identified by their index in the record slice passed to NewForest.
type Forest struct {
	// Parent[i] is the index of the smallest record containing record i, or
	// -1 if i is a root.
	Parent []int
	// Children[i] lists the records whose parent is i, sorted by position.
	Children [][]int
	// Roots lists the records without a parent, sorted by position.
	Roots []int
}

// NewForest arranges records by span containment.  When several records
// contain record i, the one with the shortest span is its parent.  Records
// with identical spans form a chain in input order: the earlier record is
// the parent of the later one.  A crossing overlap yields a
// *NonNestingError.
func NewForest(records []*vcf.Record) (*Forest, error) {
	n := len(records)
	f := &Forest{
		Parent:   make([]int, n),
		Children: make([][]int, n),
	}
	spans := make([]vcf.Interval, n)
	for i, r := range records {
		spans[i] = r.Interval()
	}
	for i := range records {
		parent := -1
		for j := range records {
			if i == j || !spans[j].Overlaps(spans[i]) {
				continue
			}
			if !spans[j].Contains(spans[i]) {
				if spans[i].Contains(spans[j]) {
					continue
				}
				a, b := spans[i], spans[j]
				if b.Start < a.Start || (b.Start == a.Start && j < i) {
					a, b = b, a
				}
				return nil, &NonNestingError{Chrom: records[i].Chrom, A: a, B: b}
			}
			if spans[j] == spans[i] && j > i {
				continue
			}
			if parent < 0 {
				parent = j
				continue
			}
			// Candidates all contain i and, absent a crossing overlap, each
			// other; the shorter span, or the later of two identical spans,
			// is nearer.
			if l, pl := spans[j].Len(), spans[parent].Len(); l < pl || (l == pl && j > parent) {
				parent = j
			}
		}
		f.Parent[i] = parent
		if parent < 0 {
			f.Roots = append(f.Roots, i)
		} else {
			f.Children[parent] = append(f.Children[parent], i)
		}
	}
	byPos := func(nodes []int) {
		sort.SliceStable(nodes, func(a, b int) bool {
			return spans[nodes[a]].Start < spans[nodes[b]].Start
		})
	}
	byPos(f.Roots)
	for _, c := range f.Children {
		byPos(c)
	}
	return f, nil
}

// PostOrder returns every node such that children come before their parent.
// Siblings are visited in position order.
func (f *Forest) PostOrder() []int {
	type frame struct{ node, next int }
	order := make([]int, 0, len(f.Parent))
	var stack []frame
	for _, root := range f.Roots {
		stack = append(stack[:0], frame{node: root})
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(f.Children[top.node]) {
				child := f.Children[top.node][top.next]
				top.next++
				stack = append(stack, frame{node: child})
				continue
			}
			order = append(order, top.node)
			stack = stack[:len(stack)-1]
		}
	}
	return order
}
