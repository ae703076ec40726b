// Package fasta reads reference sequences from FASTA files, either fully into
// memory or by random access through a samtools-style .fai index.  See
// http://www.htslib.org/doc/faidx.html.
//
// A FASTA file is a series of named sequences, each split over any number of
// lines:
//
// >chr7
// ACGTAC
// GAGGAC
// GCG
// >chr8
// ACGT
//
// The sequence name is the text after '>' up to the first space; the rest of
// the line is ignored.
package fasta

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// maxLineLen bounds a single FASTA line; unwrapped chromosomes can be long.
const maxLineLen = 1024 * 1024 * 300 // 300 MB

// Fasta is a set of named sequences.  Implementations are threadsafe.
type Fasta interface {
	// Get returns the bases of seqName in the 0-based half-open interval
	// [start, end).
	Get(seqName string, start, end uint64) (string, error)

	// Len returns the length of seqName.
	Len(seqName string) (uint64, error)

	// SeqNames returns the sequence names in file order.
	SeqNames() []string
}

type opts struct {
	upper bool
}

// Opt customizes how sequences are returned.
type Opt func(*opts)

// OptUppercase makes Get return upper-case bases, so that soft-masked
// (lower-case) regions compare equal to VCF alleles.
func OptUppercase(o *opts) { o.upper = true }

func parseOpts(options []Opt) opts {
	var o opts
	for _, opt := range options {
		opt(&o)
	}
	return o
}

// toUpperInplace upper-cases ASCII letters in b.
func toUpperInplace(b []byte) {
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
}

type memFasta struct {
	seqs     map[string]string
	seqNames []string
}

// New reads all of r into memory.
func New(r io.Reader, options ...Opt) (Fasta, error) {
	o := parseOpts(options)
	f := &memFasta{seqs: make(map[string]string)}
	var (
		name string
		seq  []byte
		seen bool
	)
	flush := func() error {
		if !seen {
			if len(seq) != 0 {
				return errors.Errorf("fasta.New: sequence data before the first '>' line")
			}
			return nil
		}
		if _, ok := f.seqs[name]; ok {
			return errors.Errorf("fasta.New: duplicate sequence name %s", name)
		}
		if o.upper {
			toUpperInplace(seq)
		}
		f.seqs[name] = string(seq)
		f.seqNames = append(f.seqNames, name)
		seq = seq[:0]
		return nil
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, maxLineLen)
	for scanner.Scan() {
		line := bytes.TrimRight(scanner.Bytes(), "\r")
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if err := flush(); err != nil {
				return nil, err
			}
			name = seqName(line)
			seen = true
			continue
		}
		seq = append(seq, line...)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "fasta.New: couldn't read FASTA data")
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return f, nil
}

// seqName extracts the sequence name from a '>' line.
func seqName(line []byte) string {
	line = line[1:]
	if sp := bytes.IndexByte(line, ' '); sp >= 0 {
		line = line[:sp]
	}
	return string(line)
}

func checkRange(seqName string, start, end, length uint64) error {
	if end <= start {
		return errors.Errorf("start must be less than end: %d, %d", start, end)
	}
	if end > length {
		return errors.Errorf("end is past end of sequence %s: %d > %d", seqName, end, length)
	}
	return nil
}

// Get implements Fasta.Get.
func (f *memFasta) Get(seqName string, start, end uint64) (string, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found: %s", seqName)
	}
	if err := checkRange(seqName, start, end, uint64(len(s))); err != nil {
		return "", err
	}
	return s[start:end], nil
}

// Len implements Fasta.Len.
func (f *memFasta) Len(seqName string) (uint64, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return 0, errors.Errorf("sequence not found: %s", seqName)
	}
	return uint64(len(s)), nil
}

// SeqNames implements Fasta.SeqNames.
func (f *memFasta) SeqNames() []string {
	return f.seqNames
}
