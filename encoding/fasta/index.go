package fasta

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
)

// IndexEntry is one line of a .fai index.
type IndexEntry struct {
	Name string
	// Length is the number of bases in the sequence.
	Length uint64
	// Offset is the byte offset of the first base.
	Offset uint64
	// LineBases is the number of bases on each full line.
	LineBases uint64
	// LineWidth is the number of bytes on each full line, terminator included.
	LineWidth uint64
}

// ReadIndex parses .fai data: one "name\tlength\toffset\tlinebases\tlinewidth"
// line per sequence.  Entries are returned in file-offset order.
func ReadIndex(index io.Reader) ([]IndexEntry, error) {
	var entries []IndexEntry
	scanner := bufio.NewScanner(index)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 5 {
			return nil, errors.E(errors.Invalid, "fasta: invalid index line:", line)
		}
		e := IndexEntry{Name: cols[0]}
		for i, dst := range []*uint64{&e.Length, &e.Offset, &e.LineBases, &e.LineWidth} {
			v, err := strconv.ParseUint(cols[i+1], 10, 64)
			if err != nil {
				return nil, errors.E(errors.Invalid, err, "fasta: invalid index line:", line)
			}
			*dst = v
		}
		if e.LineBases == 0 || e.LineWidth < e.LineBases {
			return nil, errors.E(errors.Invalid, "fasta: invalid line geometry in index line:", line)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(err, "fasta: reading index")
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Offset < entries[i-1].Offset {
			return nil, errors.E(errors.Invalid, "fasta: index entries out of file order at", entries[i].Name)
		}
	}
	return entries, nil
}

// GenerateIndex writes the .fai index of the FASTA data in `in` to out, in
// the format produced by "samtools faidx".
func GenerateIndex(out io.Writer, in io.Reader) error {
	var (
		w       = tsv.NewWriter(out)
		r       = bufio.NewReader(in)
		cur     IndexEntry
		inSeq   bool
		nBytes  uint64
		lastErr error
	)
	emit := func() {
		w.WriteString(cur.Name)
		w.WriteInt64(int64(cur.Length))
		w.WriteInt64(int64(cur.Offset))
		w.WriteInt64(int64(cur.LineBases))
		w.WriteInt64(int64(cur.LineWidth))
		if err := w.EndLine(); err != nil && lastErr == nil {
			lastErr = err
		}
	}
	for {
		raw, err := r.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return errors.E(err, "fasta.GenerateIndex")
		}
		nBytes += uint64(len(raw))
		line := bytes.TrimRight(raw, "\r\n")
		switch {
		case len(line) == 0:
		case line[0] == '>':
			if inSeq {
				emit()
			}
			cur = IndexEntry{Name: seqName(line), Offset: nBytes}
			inSeq = true
		case !inSeq:
			return errors.E(errors.Invalid, "fasta.GenerateIndex: malformed FASTA file")
		default:
			if cur.LineWidth == 0 {
				cur.LineWidth = uint64(len(raw))
				cur.LineBases = uint64(len(line))
			}
			cur.Length += uint64(len(line))
		}
		if err == io.EOF {
			break
		}
	}
	if nBytes == 0 {
		return errors.E(errors.Invalid, "fasta.GenerateIndex: empty FASTA file")
	}
	if inSeq {
		emit()
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return lastErr
}
