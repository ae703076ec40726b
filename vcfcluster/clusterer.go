package vcfcluster

import (
	"context"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/vcfcluster/encoding/fasta"
	"github.com/grailbio/vcfcluster/encoding/vcf"
	"github.com/grailbio/vcfcluster/interval"
)

// DefaultSource is written as the ##source header line by default.
const DefaultSource = "bio-vcf-cluster"

// RunOpts configures Run.
type RunOpts struct {
	Opts
	// RefPath is the reference FASTA.  A samtools-style index at
	// RefPath+".fai" is used if present.
	RefPath string
	// InputPaths are the VCFs to merge.
	InputPaths []string
	// OutputPath is the merged VCF.  A ".gz" suffix selects BGZF output.
	OutputPath string
	// Region, if nonempty, restricts the run to "chr", "chr:pos" or
	// "chr:start-end" (1-based, inclusive).
	Region string
	// Source is the ##source header value.  Empty means DefaultSource.
	Source string
}

// Stats summarizes a Run.
type Stats struct {
	Chroms  int
	Input   int
	Output  int
	Dropped DropCounts
}

// Run loads the input VCFs, merges each chromosome's clusters, and writes
// the result.  Chromosomes are written in reference order, followed by any
// the reference lacks in order of first appearance.  The header declares
// every reference sequence as a contig.
func Run(ctx context.Context, opts RunOpts) (stats Stats, err error) {
	if opts.RefPath == "" || opts.OutputPath == "" || len(opts.InputPaths) == 0 {
		return stats, errors.E(errors.Invalid, "vcfcluster.Run: reference, output and at least one input are required")
	}
	var region *interval.Entry
	if opts.Region != "" {
		e, err := interval.ParseRegionString(opts.Region)
		if err != nil {
			return stats, errors.E(errors.Invalid, err, "vcfcluster.Run")
		}
		region = &e
	}
	ref, err := fasta.Open(ctx, opts.RefPath, fasta.OptUppercase)
	if err != nil {
		return stats, err
	}
	defer func() {
		if e := ref.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()

	input, err := LoadFiles(ctx, opts.InputPaths, LoadOpts{Ref: ref, Region: region})
	if err != nil {
		return stats, err
	}
	chroms := outputOrder(ref.SeqNames(), input.Chroms)
	merged, err := MergeAll(ctx, input.Records, chroms, ref, opts.Opts)
	if err != nil {
		return stats, err
	}

	contigs := make([]vcf.Contig, 0, len(ref.SeqNames()))
	for _, name := range ref.SeqNames() {
		n, err := ref.Len(name)
		if err != nil {
			return stats, errors.E(err, "vcfcluster.Run")
		}
		contigs = append(contigs, vcf.Contig{Name: name, Length: int(n)})
	}
	source := opts.Source
	if source == "" {
		source = DefaultSource
	}
	out, err := file.Create(ctx, opts.OutputPath)
	if err != nil {
		return stats, errors.E(err, "vcfcluster.Run")
	}
	defer file.CloseAndReport(ctx, out, &err)
	w := vcf.NewWriter(out.Writer(ctx), vcf.WriterOpts{
		BGZF:        strings.HasSuffix(opts.OutputPath, ".gz"),
		Parallelism: opts.Parallelism,
	})
	if err = w.WriteHeader(vcf.HeaderOpts{
		Source:  source,
		Contigs: contigs,
		Meta:    []string{SVTypeHeaderLine},
		Samples: []string{input.Sample},
	}); err != nil {
		return stats, errors.E(err, "vcfcluster.Run", opts.OutputPath)
	}
	for _, recs := range merged {
		for _, r := range recs {
			if err = w.Write(r); err != nil {
				return stats, errors.E(err, "vcfcluster.Run", opts.OutputPath)
			}
		}
		stats.Output += len(recs)
	}
	if err = w.Close(); err != nil {
		return stats, errors.E(err, "vcfcluster.Run", opts.OutputPath)
	}
	stats.Chroms = len(chroms)
	stats.Input = input.NumRecords()
	stats.Dropped = input.Dropped
	log.Printf("vcfcluster.Run: merged %d record(s) on %d chromosome(s) into %d, wrote %s",
		stats.Input, stats.Chroms, stats.Output, opts.OutputPath)
	return stats, nil
}

// outputOrder returns the chromosomes of loaded that appear in refOrder, in
// that order, followed by the rest of loaded.
func outputOrder(refOrder, loaded []string) []string {
	have := make(map[string]bool, len(loaded))
	for _, c := range loaded {
		have[c] = true
	}
	order := make([]string, 0, len(loaded))
	for _, c := range refOrder {
		if have[c] {
			order = append(order, c)
			delete(have, c)
		}
	}
	for _, c := range loaded {
		if have[c] {
			order = append(order, c)
		}
	}
	return order
}
