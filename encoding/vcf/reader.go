package vcf

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
)

// maxLineLen bounds a single VCF line.  Heavily multi-sample lines can be
// long, so this is much larger than bufio's default.
const maxLineLen = 64 << 20

// Header holds the meta-information lines of a VCF.
type Header struct {
	// Lines are the header lines in file order, including the #CHROM line if
	// present, without trailing newlines.
	Lines []string
	// Samples are the sample names from the #CHROM line.
	Samples []string
}

// Reader reads VCF records from an io.Reader.  The header is consumed
// eagerly by NewReader.  Readers are not threadsafe.
//
// Typical use:
//   r, err := vcf.NewReader(in)
//   ...
//   for r.Scan() {
//     rec := r.Record()
//   }
//   if err := r.Err(); err != nil { ... }
type Reader struct {
	Header Header

	b       *bufio.Scanner
	lineNum int
	pending string // first data line, read while scanning the header
	rec     *Record
	err     error
}

// NewReader reads the header of the VCF stream in and returns a Reader
// positioned at the first data line.
func NewReader(in io.Reader) (*Reader, error) {
	r := &Reader{b: bufio.NewScanner(in)}
	r.b.Buffer(nil, maxLineLen)
	for r.b.Scan() {
		r.lineNum++
		line := strings.TrimRight(r.b.Text(), "\r")
		if !strings.HasPrefix(line, "#") {
			r.pending = line
			return r, nil
		}
		r.Header.Lines = append(r.Header.Lines, line)
		if strings.HasPrefix(line, "#CHROM") {
			if cols := strings.Split(line, "\t"); len(cols) > 9 {
				r.Header.Samples = cols[9:]
			}
		}
	}
	if err := r.b.Err(); err != nil {
		return nil, errors.E(err, "vcf.NewReader: reading header")
	}
	return r, nil
}

// Scan advances to the next record.  It returns false at the end of the
// stream or on error; Err distinguishes the two.  Blank lines are skipped.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	for {
		var line string
		if r.pending != "" {
			line, r.pending = r.pending, ""
		} else {
			if !r.b.Scan() {
				r.err = r.b.Err()
				r.rec = nil
				return false
			}
			r.lineNum++
			line = strings.TrimRight(r.b.Text(), "\r")
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := ParseRecord(line)
		if err != nil {
			r.err = errors.E(err, fmt.Sprintf("line %d", r.lineNum))
			r.rec = nil
			return false
		}
		r.rec = rec
		return true
	}
}

// Record returns the record read by the last successful Scan.  The record is
// newly allocated on every call to Scan, so callers may retain it.
func (r *Reader) Record() *Record {
	return r.rec
}

// Err returns the first error encountered, or nil if the stream ended
// cleanly.
func (r *Reader) Err() error {
	return r.err
}
