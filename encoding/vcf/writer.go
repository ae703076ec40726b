package vcf

import (
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/base/tsv"
	"github.com/grailbio/hts/bgzf"
)

// FileFormat is the version string written on the first header line.
const FileFormat = "VCFv4.2"

// fixedColumns are the mandatory #CHROM-line columns.
var fixedColumns = []string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO"}

// Contig describes one ##contig header line.
type Contig struct {
	Name   string
	Length int
}

// HeaderOpts lists what WriteHeader emits.
type HeaderOpts struct {
	// Source, if nonempty, is written as ##source=.
	Source string
	// Contigs are written as ##contig lines, in order.
	Contigs []Contig
	// Meta lines are written verbatim after the contigs; the leading "##" is
	// added if missing.
	Meta []string
	// Samples are appended to the #CHROM line after a FORMAT column.  With no
	// samples the line ends at INFO.
	Samples []string
}

// WriterOpts configures a Writer.
type WriterOpts struct {
	// BGZF causes output to be block-gzipped, as expected for .vcf.gz.
	BGZF bool
	// Parallelism is the number of bgzf compression goroutines.  Values <= 0
	// mean 1.
	Parallelism int
}

// Writer writes VCF text.  Close must be called to flush buffered output; it
// does not close the underlying io.Writer.
type Writer struct {
	tsvw *tsv.Writer
	bgzw *bgzf.Writer
}

// NewWriter returns a Writer that emits to w.
func NewWriter(w io.Writer, opts WriterOpts) *Writer {
	vw := &Writer{}
	if opts.BGZF {
		parallelism := opts.Parallelism
		if parallelism <= 0 {
			parallelism = 1
		}
		vw.bgzw = bgzf.NewWriter(w, parallelism)
		w = vw.bgzw
	}
	vw.tsvw = tsv.NewWriter(w)
	return vw
}

// WriteHeader writes the meta-information lines and the #CHROM line.
func (w *Writer) WriteHeader(h HeaderOpts) error {
	w.tsvw.WriteString("##fileformat=" + FileFormat)
	if err := w.tsvw.EndLine(); err != nil {
		return err
	}
	if h.Source != "" {
		w.tsvw.WriteString("##source=" + h.Source)
		if err := w.tsvw.EndLine(); err != nil {
			return err
		}
	}
	for _, c := range h.Contigs {
		w.tsvw.WriteString(fmt.Sprintf("##contig=<ID=%s,length=%d>", c.Name, c.Length))
		if err := w.tsvw.EndLine(); err != nil {
			return err
		}
	}
	for _, m := range h.Meta {
		if !strings.HasPrefix(m, "##") {
			m = "##" + m
		}
		w.tsvw.WriteString(m)
		if err := w.tsvw.EndLine(); err != nil {
			return err
		}
	}
	for _, col := range fixedColumns {
		w.tsvw.WriteString(col)
	}
	if len(h.Samples) > 0 {
		w.tsvw.WriteString("FORMAT")
		for _, s := range h.Samples {
			w.tsvw.WriteString(s)
		}
	}
	return w.tsvw.EndLine()
}

// Write writes one record.  POS is converted to 1-based.
func (w *Writer) Write(r *Record) error {
	w.tsvw.WriteString(r.Chrom)
	w.tsvw.WriteInt64(int64(r.Pos + 1))
	for _, col := range r.columns() {
		w.tsvw.WriteString(col)
	}
	return w.tsvw.EndLine()
}

// Close flushes buffered data, and finishes the bgzf stream if one was
// requested.
func (w *Writer) Close() error {
	err := w.tsvw.Flush()
	if w.bgzw != nil {
		if e := w.bgzw.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
