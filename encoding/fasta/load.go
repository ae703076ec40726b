package fasta

import (
	"context"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
)

// File is a Fasta opened from a path.  Close must be called when done.
type File struct {
	Fasta
	in file.File // non-nil iff reads go through the index
}

// Open opens the FASTA file at path.  When path is uncompressed and a
// path+".fai" index exists, sequences are read on demand through the index;
// otherwise the whole file is decompressed (gzip, bzip2, ...) into memory.
func Open(ctx context.Context, path string, options ...Opt) (fa *File, err error) {
	idxPath := path + ".fai"
	if !strings.HasSuffix(path, ".gz") {
		if _, e := file.Stat(ctx, idxPath); e == nil {
			return openIndexed(ctx, path, idxPath, options)
		}
	}
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return nil, errors.E(err, "fasta.Open", path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	r, _ := compress.NewReader(in.Reader(ctx))
	defer func() {
		if e := r.Close(); e != nil && err == nil {
			err = e
		}
	}()
	var f Fasta
	if f, err = New(r, options...); err != nil {
		return nil, errors.E(err, "fasta.Open", path)
	}
	log.Debug.Printf("fasta.Open: loaded %d sequence(s) from %s", len(f.SeqNames()), path)
	return &File{Fasta: f}, nil
}

func openIndexed(ctx context.Context, path, idxPath string, options []Opt) (fa *File, err error) {
	var idx file.File
	if idx, err = file.Open(ctx, idxPath); err != nil {
		return nil, errors.E(err, "fasta.Open", idxPath)
	}
	defer file.CloseAndReport(ctx, idx, &err)
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return nil, errors.E(err, "fasta.Open", path)
	}
	f, err := NewIndexed(in.Reader(ctx), idx.Reader(ctx), options...)
	if err != nil {
		_ = in.Close(ctx)
		return nil, errors.E(err, "fasta.Open", idxPath)
	}
	log.Debug.Printf("fasta.Open: using index %s for %s", idxPath, path)
	return &File{Fasta: f, in: in}, nil
}

// Close releases the underlying file, if any is still open.
func (f *File) Close(ctx context.Context) error {
	if f.in == nil {
		return nil
	}
	err := f.in.Close(ctx)
	f.in = nil
	return err
}
