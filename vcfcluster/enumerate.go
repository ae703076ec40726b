package vcfcluster

import (
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/vcfcluster/encoding/vcf"
)

// span is a stretch of reference sequence: ref holds the bases of the
// 0-based positions [start, start+len(ref)).
type span struct {
	start int
	ref   string
}

// slice returns the reference bases at the 0-based closed interval [s, e].
// An empty string is returned when e < s.
func (sp span) slice(s, e int) string {
	return sp.ref[s-sp.start : e+1-sp.start]
}

func (sp span) check(records []*vcf.Record) error {
	end := sp.start + len(sp.ref) - 1
	for _, r := range records {
		if r.Pos < sp.start || r.End() > end {
			return errors.E(errors.Precondition,
				fmt.Sprintf("record %s:%d-%d lies outside the reference span %d-%d",
					r.Chrom, r.Pos+1, r.End()+1, sp.start+1, end+1))
		}
	}
	return nil
}

// Enumerate returns every sequence the cluster region [start,
// start+len(ref)) can take under the records and their containment forest,
// except the unchanged reference.  The result is sorted and free of
// duplicates.
//
// Each node offers its ALT alleles plus its own reference span with every
// combination of its children's choices substituted in.  The region itself
// is the combination over the roots.  Nodes are processed in post-order, so
// the forest depth does not grow the goroutine stack.
func Enumerate(records []*vcf.Record, forest *Forest, start int, ref string) ([]string, error) {
	sp := span{start: start, ref: ref}
	if err := sp.check(records); err != nil {
		return nil, err
	}
	choices := make([][]string, len(records))
	for _, i := range forest.PostOrder() {
		r := records[i]
		seqs := sp.assemble(r.Pos, r.End(), forest.Children[i], records, choices)
		choices[i] = dedup(append(seqs, r.Alt...))
	}
	if len(forest.Roots) == 0 {
		return nil, nil
	}
	alleles := sp.assemble(start, start+len(ref)-1, forest.Roots, records, choices)
	return sortAlleles(alleles, ref), nil
}

// assemble returns the sequences of the closed interval [s, e] obtained by
// replacing the spans of nodes, which must be disjoint and sorted, with each
// combination of their choices.  Bases not covered by any node come from the
// reference.
func (sp span) assemble(s, e int, nodes []int, records []*vcf.Record, choices [][]string) []string {
	partial := []string{""}
	cursor := s
	for _, n := range nodes {
		r := records[n]
		gap := sp.slice(cursor, r.Pos-1)
		next := make([]string, 0, len(partial)*len(choices[n]))
		for _, p := range partial {
			for _, c := range choices[n] {
				next = append(next, p+gap+c)
			}
		}
		partial = dedup(next)
		cursor = r.End() + 1
	}
	tail := sp.slice(cursor, e)
	for i := range partial {
		partial[i] += tail
	}
	return partial
}

// atomicAlleles substitutes each ALT allele of each record into the
// reference span on its own, ignoring every other record.  It is the
// fallback for clusters that have no containment forest.
func atomicAlleles(records []*vcf.Record, start int, ref string) ([]string, error) {
	sp := span{start: start, ref: ref}
	if err := sp.check(records); err != nil {
		return nil, err
	}
	end := start + len(ref) - 1
	var alleles []string
	for _, r := range records {
		prefix, suffix := sp.slice(start, r.Pos-1), sp.slice(r.End()+1, end)
		for _, alt := range r.Alt {
			alleles = append(alleles, prefix+alt+suffix)
		}
	}
	return sortAlleles(alleles, ref), nil
}

// dedup removes repeated strings from seqs, keeping first occurrences.
func dedup(seqs []string) []string {
	seen := make(map[string]struct{}, len(seqs))
	out := seqs[:0]
	for _, s := range seqs {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// sortAlleles drops ref and duplicates from alleles and sorts the rest.
func sortAlleles(alleles []string, ref string) []string {
	alleles = dedup(alleles)
	out := alleles[:0]
	for _, a := range alleles {
		if a != ref {
			out = append(out, a)
		}
	}
	sort.Strings(out)
	return out
}
