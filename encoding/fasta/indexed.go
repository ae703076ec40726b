package fasta

import (
	"io"
	"sync"

	"github.com/pkg/errors"
)

type indexedFasta struct {
	opts    opts
	entries map[string]IndexEntry
	names   []string
	r       io.ReadSeeker

	mu  sync.Mutex
	raw []byte // bytes read from r, newlines included
	out []byte // bases of the last Get
}

// NewIndexed returns a Fasta that reads sequences from r on demand, using
// the .fai data in index to locate them.  Nothing but the index is held in
// memory.
func NewIndexed(r io.ReadSeeker, index io.Reader, options ...Opt) (Fasta, error) {
	entries, err := ReadIndex(index)
	if err != nil {
		return nil, err
	}
	f := &indexedFasta{
		opts:    parseOpts(options),
		entries: make(map[string]IndexEntry, len(entries)),
		r:       r,
	}
	for _, e := range entries {
		f.entries[e.Name] = e
		f.names = append(f.names, e.Name)
	}
	return f, nil
}

// Len implements Fasta.Len.
func (f *indexedFasta) Len(seqName string) (uint64, error) {
	e, ok := f.entries[seqName]
	if !ok {
		return 0, errors.Errorf("sequence not found in index: %s", seqName)
	}
	return e.Length, nil
}

// SeqNames implements Fasta.SeqNames.
func (f *indexedFasta) SeqNames() []string {
	return f.names
}

// Get implements Fasta.Get.
func (f *indexedFasta) Get(seqName string, start, end uint64) (string, error) {
	e, ok := f.entries[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found in index: %s", seqName)
	}
	if err := checkRange(seqName, start, end, e.Length); err != nil {
		return "", err
	}
	// File offset of base i is Offset + (i / LineBases) * LineWidth + i % LineBases.
	fileOff := func(i uint64) uint64 {
		return e.Offset + (i/e.LineBases)*e.LineWidth + i%e.LineBases
	}
	first, last := fileOff(start), fileOff(end-1)

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.r.Seek(int64(first), io.SeekStart); err != nil {
		return "", errors.Wrapf(err, "fasta: seek to %d", first)
	}
	n := int(last - first + 1)
	if cap(f.raw) < n {
		f.raw = make([]byte, n)
	}
	f.raw = f.raw[:n]
	if _, err := io.ReadFull(f.r, f.raw); err != nil {
		return "", errors.Wrapf(err, "fasta: reading %s:%d-%d (bad index?)", seqName, start, end)
	}
	f.out = f.out[:0]
	col := start % e.LineBases
	for i := 0; i < n; {
		take := int(e.LineBases - col)
		if take > n-i {
			take = n - i
		}
		f.out = append(f.out, f.raw[i:i+take]...)
		i += take + int(e.LineWidth-e.LineBases)
		col = 0
	}
	if f.opts.upper {
		toUpperInplace(f.out)
	}
	return string(f.out), nil
}
