package cmd

import (
	"context"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/vcfcluster/encoding/fasta"
)

// faidx writes the .fai index of the FASTA file at path to out, or to
// path+".fai" if out is empty.
func faidx(ctx context.Context, path, out string) (err error) {
	if out == "" {
		out = path + ".fai"
	}
	in, err := file.Open(ctx, path)
	if err != nil {
		return errors.E(err, "faidx")
	}
	defer file.CloseAndReport(ctx, in, &err)
	dst, err := file.Create(ctx, out)
	if err != nil {
		return errors.E(err, "faidx")
	}
	defer file.CloseAndReport(ctx, dst, &err)
	if err = fasta.GenerateIndex(dst.Writer(ctx), in.Reader(ctx)); err != nil {
		return errors.E(err, "faidx", path)
	}
	log.Debug.Printf("faidx: wrote %s", out)
	return nil
}
