package cmd

import (
	"fmt"
	"log"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/vcfcluster/vcfcluster"
	"v.io/x/lib/cmdline"
)

func newCmdMerge() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "merge",
		Short:    "Merge nearby VCF records into multi-allelic records",
		ArgsName: "ref.fa out.vcf in.vcf...",
		Long: `
Merge loads the input VCFs, clusters records on each chromosome and writes one
record per cluster.  A record joins a cluster when it starts at most
-max-distance bases after the cluster's last reference base.  The merged
record spans the cluster and lists, as ALT alleles, every sequence obtained by
applying a consistent combination of the clustered variants.`,
	}
	var (
		flags      mergeFlags
		nonNesting string
	)
	cmd.Flags.IntVar(&flags.MaxDistance, "max-distance", vcfcluster.DefaultOpts.MaxDistance,
		"Largest gap, in bases, between a record and the end of the current cluster for the record to join it")
	cmd.Flags.StringVar(&flags.Filter, "filter", vcfcluster.DefaultOpts.Filter, "FILTER value of output records")
	cmd.Flags.IntVar(&flags.WarnAlleles, "warn-alleles", vcfcluster.DefaultOpts.WarnAlleles,
		"Log clusters producing more than this many alleles. 0 disables the warning")
	cmd.Flags.IntVar(&flags.Parallelism, "parallelism", 0,
		"Number of chromosomes merged concurrently. 0 means the number of CPUs")
	cmd.Flags.StringVar(&flags.Source, "source", vcfcluster.DefaultSource, "Value of the ##source header line")
	cmd.Flags.StringVar(&flags.Region, "region", "", `Restrict merging to a region, in the form "chr", "chr:pos" or "chr:start-end" (1-based, closed)`)
	cmd.Flags.StringVar(&nonNesting, "non-nesting", vcfcluster.FailOnNonNesting.String(), `What to do with clusters whose records overlap without one containing the other.
"fail" stops with an error.  "atomic" substitutes each ALT allele into the
cluster span on its own, without combining records.`)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) < 3 {
			return fmt.Errorf("merge takes ref.fa out.vcf in.vcf..., but got %v", argv)
		}
		var err error
		if flags.NonNesting, err = vcfcluster.ParseNonNestingPolicy(nonNesting); err != nil {
			return err
		}
		return merge(vcontext.Background(), flags, argv[0], argv[1], argv[2:])
	})
	return cmd
}

func newCmdFaidx() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "faidx",
		Short:    "Write the .fai index of a FASTA file",
		ArgsName: "ref.fa",
	}
	out := cmd.Flags.String("out", "", "Index path. By default set to the FASTA path + .fai")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("faidx takes one pathname argument, but got %v", argv)
		}
		return faidx(vcontext.Background(), argv[0], *out)
	})
	return cmd
}

// Run is the entry point of bio-vcf-cluster.
func Run() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-vcf-cluster",
			Short:    "Merge nearby VCF records for graph-genome construction",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdMerge(),
				newCmdFaidx(),
			},
		})
}
