package vcfcluster

import (
	"context"
	"fmt"
	"strings"

	"github.com/biogo/store/llrb"
	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/vcfcluster/encoding/fasta"
	"github.com/grailbio/vcfcluster/encoding/vcf"
	"github.com/grailbio/vcfcluster/interval"
)

// DefaultSample is the output sample name used when no input names one.
const DefaultSample = "sample"

// LoadOpts configures LoadFiles.
type LoadOpts struct {
	// Ref, if set, is used to check every record's REF allele.  Records on
	// sequences Ref lacks, records running past the end of their sequence,
	// and records whose REF differs from the reference are dropped.
	// Comparison ignores case.
	Ref fasta.Fasta
	// Region, if set, restricts loading to records whose span intersects
	// it.
	Region *interval.Entry
}

// DropCounts tallies the records LoadFiles skipped, by reason.
type DropCounts struct {
	Duplicate   int
	Symbolic    int
	NoVariation int
	OutOfRegion int
	NotInRef    int
	RefMismatch int
}

// Total returns the number of dropped records.
func (d DropCounts) Total() int {
	return d.Duplicate + d.Symbolic + d.NoVariation + d.OutOfRegion + d.NotInRef + d.RefMismatch
}

func (d DropCounts) String() string {
	return fmt.Sprintf("duplicate:%d symbolic:%d no-variation:%d out-of-region:%d not-in-ref:%d ref-mismatch:%d",
		d.Duplicate, d.Symbolic, d.NoVariation, d.OutOfRegion, d.NotInRef, d.RefMismatch)
}

// Input is the combined content of a set of VCF files.
type Input struct {
	// Sample is the name of the first sample column of the last file that
	// has one, or DefaultSample.
	Sample string
	// Headers maps each input path to its header lines.
	Headers map[string][]string
	// Chroms lists the chromosomes in order of first appearance.
	Chroms []string
	// Records holds, per chromosome, the distinct records sorted by
	// position.
	Records map[string][]*vcf.Record
	// Dropped counts the records that were not kept.
	Dropped DropCounts
}

// NumRecords returns the number of records in in.
func (in *Input) NumRecords() int {
	n := 0
	for _, recs := range in.Records {
		n += len(recs)
	}
	return n
}

// recordKey orders records on one chromosome by position, then REF, then
// ALT.  Two records with equal keys are duplicates.
type recordKey struct {
	r *vcf.Record
}

// Compare implements llrb.Comparable.
func (k recordKey) Compare(c llrb.Comparable) int {
	o := c.(recordKey).r
	if diff := k.r.Pos - o.Pos; diff != 0 {
		return diff
	}
	if diff := strings.Compare(k.r.Ref, o.Ref); diff != 0 {
		return diff
	}
	return strings.Compare(strings.Join(k.r.Alt, ","), strings.Join(o.Alt, ","))
}

type loader struct {
	opts   LoadOpts
	in     *Input
	trees  map[string]*llrb.Tree
	chrLen map[string]uint64
}

// LoadFiles reads the VCF files at paths, which may be compressed, and
// returns their distinct records grouped by chromosome.  A record that
// repeats the position, REF and ALT of an earlier record is dropped, as are
// records with symbolic ALT alleles or whose ALT alleles all equal REF.
func LoadFiles(ctx context.Context, paths []string, opts LoadOpts) (*Input, error) {
	l := &loader{
		opts: opts,
		in: &Input{
			Sample:  DefaultSample,
			Headers: make(map[string][]string, len(paths)),
			Records: make(map[string][]*vcf.Record),
		},
		trees:  make(map[string]*llrb.Tree),
		chrLen: make(map[string]uint64),
	}
	for _, path := range paths {
		if err := l.loadFile(ctx, path); err != nil {
			return nil, err
		}
	}
	for _, chrom := range l.in.Chroms {
		tree := l.trees[chrom]
		recs := make([]*vcf.Record, 0, tree.Len())
		tree.Do(func(c llrb.Comparable) (done bool) {
			recs = append(recs, c.(recordKey).r)
			return false
		})
		l.in.Records[chrom] = recs
	}
	if d := l.in.Dropped; d.Total() > 0 {
		log.Printf("vcfcluster.LoadFiles: dropped %d record(s): %v", d.Total(), d)
	}
	log.Debug.Printf("vcfcluster.LoadFiles: %d record(s) on %d chromosome(s) from %d file(s)",
		l.in.NumRecords(), len(l.in.Chroms), len(paths))
	return l.in, nil
}

func (l *loader) loadFile(ctx context.Context, path string) (err error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return errors.E(err, "vcfcluster.LoadFiles")
	}
	defer file.CloseAndReport(ctx, f, &err)
	rc, _ := compress.NewReader(f.Reader(ctx))
	defer func() {
		if e := rc.Close(); e != nil && err == nil {
			err = e
		}
	}()
	r, err := vcf.NewReader(rc)
	if err != nil {
		return errors.E(err, "vcfcluster.LoadFiles", path)
	}
	l.in.Headers[path] = r.Header.Lines
	if len(r.Header.Samples) > 0 {
		l.in.Sample = r.Header.Samples[0]
	}
	n := 0
	for r.Scan() {
		if l.add(r.Record()) {
			n++
		}
	}
	if err := r.Err(); err != nil {
		return errors.E(err, "vcfcluster.LoadFiles", path)
	}
	log.Debug.Printf("vcfcluster.LoadFiles: %s: kept %d record(s)", path, n)
	return nil
}

// add files rec under its chromosome and returns true, or counts it as
// dropped and returns false.
func (l *loader) add(rec *vcf.Record) bool {
	drops := &l.in.Dropped
	if rec.IsSymbolic() {
		drops.Symbolic++
		return false
	}
	if !hasVariation(rec) {
		drops.NoVariation++
		return false
	}
	if reg := l.opts.Region; reg != nil &&
		!reg.Intersects(rec.Chrom, interval.PosType(rec.Pos), interval.PosType(rec.End())) {
		drops.OutOfRegion++
		return false
	}
	if l.opts.Ref != nil {
		if ok, known := l.matchesRef(rec); !known {
			drops.NotInRef++
			return false
		} else if !ok {
			drops.RefMismatch++
			return false
		}
	}
	tree, ok := l.trees[rec.Chrom]
	if !ok {
		tree = &llrb.Tree{}
		l.trees[rec.Chrom] = tree
		l.in.Chroms = append(l.in.Chroms, rec.Chrom)
	}
	key := recordKey{rec}
	if tree.Get(key) != nil {
		drops.Duplicate++
		return false
	}
	tree.Insert(key)
	return true
}

// matchesRef reports whether rec's REF agrees with the reference, and
// whether the reference has rec's chromosome at all.
func (l *loader) matchesRef(rec *vcf.Record) (ok, known bool) {
	length, found := l.chrLen[rec.Chrom]
	if !found {
		n, err := l.opts.Ref.Len(rec.Chrom)
		if err != nil {
			log.Printf("vcfcluster.LoadFiles: %s not in reference: %v", rec.Chrom, err)
			l.chrLen[rec.Chrom] = 0
			return false, false
		}
		l.chrLen[rec.Chrom], length = n, n
	}
	if length == 0 {
		return false, false
	}
	if uint64(rec.End()) >= length {
		return false, true
	}
	seq, err := l.opts.Ref.Get(rec.Chrom, uint64(rec.Pos), uint64(rec.End()+1))
	if err != nil {
		return false, true
	}
	return strings.EqualFold(seq, rec.Ref), true
}

func hasVariation(rec *vcf.Record) bool {
	for _, alt := range rec.Alt {
		if !strings.EqualFold(alt, rec.Ref) {
			return true
		}
	}
	return false
}
