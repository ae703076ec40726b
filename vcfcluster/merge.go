package vcfcluster

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/vcfcluster/encoding/vcf"
	"v.io/x/lib/vlog"
)

// PassFilter is the FILTER value given to merged records by default.
const PassFilter = "PASS"

// SVTypeInfoKey and SVTypeComplex form the INFO field of merged records.
const (
	SVTypeInfoKey = "SVTYPE"
	SVTypeComplex = "COMPLEX"
)

// SVTypeHeaderLine declares SVTypeInfoKey in output headers.
const SVTypeHeaderLine = `##INFO=<ID=SVTYPE,Number=1,Type=String,Description="Type of structural variant">`

// NonNestingPolicy says what to do with a cluster whose records overlap
// without nesting.
type NonNestingPolicy int

const (
	// FailOnNonNesting makes the merge fail with a *NonNestingError.
	FailOnNonNesting NonNestingPolicy = iota
	// AtomicOnNonNesting merges the cluster by substituting every ALT allele
	// into the cluster's reference span independently, without combining
	// records.
	AtomicOnNonNesting
)

var nonNestingPolicyNames = map[NonNestingPolicy]string{
	FailOnNonNesting:   "fail",
	AtomicOnNonNesting: "atomic",
}

// String returns the flag spelling of p.
func (p NonNestingPolicy) String() string {
	if s, ok := nonNestingPolicyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("NonNestingPolicy(%d)", int(p))
}

// ParseNonNestingPolicy parses "fail" or "atomic".
func ParseNonNestingPolicy(s string) (NonNestingPolicy, error) {
	for p, name := range nonNestingPolicyNames {
		if s == name {
			return p, nil
		}
	}
	return 0, errors.E(errors.Invalid, "vcfcluster: unknown non-nesting policy", s)
}

// Opts controls merging.
type Opts struct {
	// MaxDistance is the largest number of bases between a record's first
	// position and the end of the current cluster for the record to join it.
	MaxDistance int
	// Filter is the FILTER value of every output record.  Empty means
	// PassFilter.
	Filter string
	// NonNesting chooses how non-nesting clusters are handled.
	NonNesting NonNestingPolicy
	// WarnAlleles is the allele count above which a merged cluster is
	// logged.  Values <= 0 disable the warning.
	WarnAlleles int
	// Parallelism bounds the number of chromosomes merged at once.  Values
	// <= 0 mean runtime.NumCPU().
	Parallelism int
}

// DefaultOpts are the default merge options.
var DefaultOpts = Opts{
	MaxDistance: 1,
	Filter:      PassFilter,
	NonNesting:  FailOnNonNesting,
	WarnAlleles: 1000,
}

func (o Opts) filter() string {
	if o.Filter == "" {
		return PassFilter
	}
	return o.Filter
}

// Reference supplies reference bases.  Get returns the bases of seqName at
// the 0-based half-open interval [start, end).  fasta.Fasta implements it.
type Reference interface {
	Get(seqName string, start, end uint64) (string, error)
}

// MergeCluster collapses the records of c into a single record.
//
// A cluster holding one record with one ALT allele is returned as a copy of
// that record with its FILTER replaced.  Any other cluster yields a record
// at the cluster start whose REF is the reference over the cluster span,
// whose ALT alleles are every combination the records allow (see
// Enumerate), and whose INFO is SVTYPE=COMPLEX.  ID and QUAL are missing.
//
// If the records overlap without nesting, MergeCluster fails with a
// *NonNestingError unless opts.NonNesting is AtomicOnNonNesting.
//
// It panics if c is empty.
func MergeCluster(c *Cluster, ref Reference, opts Opts) (*vcf.Record, error) {
	start, end, ok := c.StartAndEnd()
	if !ok {
		log.Panicf("vcfcluster.MergeCluster: empty cluster")
	}
	if c.Len() == 1 && len(c.Records[0].Alt) == 1 {
		r := c.Records[0].Clone()
		r.Filter = opts.filter()
		return r, nil
	}
	chrom := c.Chrom()
	refSeq, err := ref.Get(chrom, uint64(start), uint64(end+1))
	if err != nil {
		return nil, errors.E(err, fmt.Sprintf("vcfcluster.MergeCluster: reference %s:%d-%d", chrom, start+1, end+1))
	}
	var alleles []string
	forest, err := NewForest(c.Records)
	switch {
	case err == nil:
		alleles, err = Enumerate(c.Records, forest, start, refSeq)
	case IsNonNesting(err) && opts.NonNesting == AtomicOnNonNesting:
		log.Printf("vcfcluster.MergeCluster: %v; merging %d records atomically", err, c.Len())
		alleles, err = atomicAlleles(c.Records, start, refSeq)
	default:
		return nil, errors.E(errors.Precondition, err, "vcfcluster.MergeCluster")
	}
	if err != nil {
		return nil, errors.E(err, "vcfcluster.MergeCluster")
	}
	if len(alleles) == 0 {
		return nil, errors.E(errors.Invalid,
			fmt.Sprintf("vcfcluster.MergeCluster: cluster at %s:%d-%d has no non-reference allele", chrom, start+1, end+1))
	}
	if opts.WarnAlleles > 0 && len(alleles) > opts.WarnAlleles {
		log.Printf("vcfcluster.MergeCluster: cluster at %s:%d-%d with %d records produced %d alleles",
			chrom, start+1, end+1, c.Len(), len(alleles))
	}
	vlog.VI(1).Infof("merged %d records at %s:%d-%d into %d alleles", c.Len(), chrom, start+1, end+1, len(alleles))
	return &vcf.Record{
		Chrom:  chrom,
		Pos:    start,
		ID:     vcf.Missing,
		Ref:    refSeq,
		Alt:    alleles,
		Qual:   vcf.Missing,
		Filter: opts.filter(),
		Info:   []vcf.InfoField{{Key: SVTypeInfoKey, Value: SVTypeComplex}},
	}, nil
}

// MergeChrom clusters records, which must be sorted by position and lie on
// one chromosome, and merges each cluster.  The output is in cluster order.
func MergeChrom(records []*vcf.Record, ref Reference, opts Opts) ([]*vcf.Record, error) {
	clusters := BuildClusters(records, opts.MaxDistance)
	merged := make([]*vcf.Record, len(clusters))
	for i, c := range clusters {
		var err error
		if merged[i], err = MergeCluster(c, ref, opts); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// MergeAll runs MergeChrom on records[chrom] for each of chroms, up to
// opts.Parallelism at a time.  The result is aligned with chroms.  An error
// stops the worker that hit it; the first error is returned.
func MergeAll(ctx context.Context, records map[string][]*vcf.Record, chroms []string, ref Reference, opts Opts) ([][]*vcf.Record, error) {
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if parallelism > len(chroms) {
		parallelism = len(chroms)
	}
	out := make([][]*vcf.Record, len(chroms))
	// Workers pull chromosomes off a shared counter.
	var next int64 = -1
	err := traverse.Each(parallelism, func(int) error {
		for {
			i := int(atomic.AddInt64(&next, 1))
			if i >= len(chroms) {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			merged, err := MergeChrom(records[chroms[i]], ref, opts)
			if err != nil {
				return err
			}
			log.Debug.Printf("vcfcluster.MergeAll: %s: %d records -> %d", chroms[i], len(records[chroms[i]]), len(merged))
			out[i] = merged
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
