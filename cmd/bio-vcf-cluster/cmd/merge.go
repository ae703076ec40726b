package cmd

import (
	"context"

	"github.com/grailbio/base/log"
	"github.com/grailbio/vcfcluster/vcfcluster"
)

type mergeFlags struct {
	vcfcluster.Opts
	Source string
	Region string
}

func merge(ctx context.Context, flags mergeFlags, refPath, outPath string, inPaths []string) error {
	stats, err := vcfcluster.Run(ctx, vcfcluster.RunOpts{
		Opts:       flags.Opts,
		RefPath:    refPath,
		InputPaths: inPaths,
		OutputPath: outPath,
		Region:     flags.Region,
		Source:     flags.Source,
	})
	if err != nil {
		return err
	}
	if stats.Dropped.Total() > 0 {
		log.Printf("merge: skipped input records: %v", stats.Dropped)
	}
	return nil
}
