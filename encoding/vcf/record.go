package vcf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
)

// Missing is the VCF placeholder for an absent value.
const Missing = "."

// Interval is a 0-based closed interval [Start, End] on a chromosome.
type Interval struct {
	Start, End int
}

// Overlaps returns whether the two intervals share at least one position.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start <= o.End && o.Start <= i.End
}

// Contains returns whether o lies entirely within i.  An interval contains
// itself.
func (i Interval) Contains(o Interval) bool {
	return i.Start <= o.Start && o.End <= i.End
}

// Len returns the number of positions covered by the interval.
func (i Interval) Len() int {
	return i.End - i.Start + 1
}

// InfoField is a single KEY=VALUE entry of the INFO column.  Flags have an
// empty Value.
type InfoField struct {
	Key, Value string
}

// Record is one VCF data line.
type Record struct {
	Chrom string
	// Pos is the 0-based position of the first base of Ref.
	Pos     int
	ID      string
	Ref     string
	Alt     []string
	Qual    string
	Filter  string
	Info    []InfoField
	Format  string
	Samples []string
}

// End returns the 0-based position of the last reference base replaced by the
// record.
func (r *Record) End() int {
	return r.Pos + len(r.Ref) - 1
}

// Interval returns the reference span of the record.
func (r *Record) Interval() Interval {
	return Interval{r.Pos, r.End()}
}

// Overlaps returns whether the reference spans of r and o intersect.  The
// chromosome is not compared.
func (r *Record) Overlaps(o *Record) bool {
	return r.Interval().Overlaps(o.Interval())
}

// Contains returns whether the reference span of o lies within the span of r.
// The chromosome is not compared.
func (r *Record) Contains(o *Record) bool {
	return r.Interval().Contains(o.Interval())
}

// InfoValue returns the value stored under key in the INFO column.
func (r *Record) InfoValue(key string) (string, bool) {
	for _, f := range r.Info {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// IsSymbolic returns whether any ALT allele is something other than a plain
// base sequence (<DEL>, breakends, the '*' overlap marker, ...).
func (r *Record) IsSymbolic() bool {
	for _, a := range r.Alt {
		if !isBases(a) {
			return true
		}
	}
	return false
}

func isBases(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'A', 'C', 'G', 'T', 'N', 'a', 'c', 'g', 't', 'n':
		default:
			return false
		}
	}
	return true
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	c := *r
	c.Alt = append([]string(nil), r.Alt...)
	if r.Info != nil {
		c.Info = append([]InfoField(nil), r.Info...)
	}
	if r.Samples != nil {
		c.Samples = append([]string(nil), r.Samples...)
	}
	return &c
}

// Equal returns whether every column of r and o match.
func (r *Record) Equal(o *Record) bool {
	if r.Chrom != o.Chrom || r.Pos != o.Pos || r.ID != o.ID || r.Ref != o.Ref ||
		r.Qual != o.Qual || r.Filter != o.Filter || r.Format != o.Format {
		return false
	}
	if !stringsEqual(r.Alt, o.Alt) || !stringsEqual(r.Samples, o.Samples) {
		return false
	}
	if len(r.Info) != len(o.Info) {
		return false
	}
	for i := range r.Info {
		if r.Info[i] != o.Info[i] {
			return false
		}
	}
	return true
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String renders r as a VCF data line without the trailing newline.  POS is
// written 1-based.
func (r *Record) String() string {
	var sb strings.Builder
	sb.WriteString(r.Chrom)
	sb.WriteByte('\t')
	sb.WriteString(strconv.Itoa(r.Pos + 1))
	for _, col := range r.columns() {
		sb.WriteByte('\t')
		sb.WriteString(col)
	}
	return sb.String()
}

// columns returns the text of every column after POS.
func (r *Record) columns() []string {
	cols := []string{
		orMissing(r.ID),
		r.Ref,
		orMissing(strings.Join(r.Alt, ",")),
		orMissing(r.Qual),
		orMissing(r.Filter),
		orMissing(formatInfo(r.Info)),
	}
	if r.Format != "" {
		cols = append(cols, r.Format)
		cols = append(cols, r.Samples...)
	}
	return cols
}

func orMissing(s string) string {
	if s == "" {
		return Missing
	}
	return s
}

func formatInfo(info []InfoField) string {
	parts := make([]string, len(info))
	for i, f := range info {
		if f.Value == "" {
			parts[i] = f.Key
		} else {
			parts[i] = f.Key + "=" + f.Value
		}
	}
	return strings.Join(parts, ";")
}

func parseInfo(s string) []InfoField {
	if s == Missing || s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	info := make([]InfoField, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if eq := strings.IndexByte(p, '='); eq >= 0 {
			info = append(info, InfoField{Key: p[:eq], Value: p[eq+1:]})
		} else {
			info = append(info, InfoField{Key: p})
		}
	}
	return info
}

// ParseRecord parses one tab-separated VCF data line.  At least the eight
// fixed columns must be present.  The returned record has a 0-based Pos.
func ParseRecord(line string) (*Record, error) {
	cols := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(cols) < 8 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("vcf.ParseRecord: expected at least 8 columns, got %d: %q", len(cols), line))
	}
	pos1, err := strconv.Atoi(cols[1])
	if err != nil {
		return nil, errors.E(errors.Invalid, err, "vcf.ParseRecord: bad POS", cols[1])
	}
	if pos1 <= 0 {
		return nil, errors.E(errors.Invalid, "vcf.ParseRecord: POS must be positive:", cols[1])
	}
	if cols[3] == "" || cols[3] == Missing {
		return nil, errors.E(errors.Invalid, "vcf.ParseRecord: empty REF at", cols[0], cols[1])
	}
	if cols[4] == "" || cols[4] == Missing {
		return nil, errors.E(errors.Invalid, "vcf.ParseRecord: empty ALT at", cols[0], cols[1])
	}
	r := &Record{
		Chrom:  cols[0],
		Pos:    pos1 - 1,
		ID:     cols[2],
		Ref:    cols[3],
		Alt:    strings.Split(cols[4], ","),
		Qual:   cols[5],
		Filter: cols[6],
		Info:   parseInfo(cols[7]),
	}
	for _, a := range r.Alt {
		if a == "" {
			return nil, errors.E(errors.Invalid, "vcf.ParseRecord: empty ALT allele at", cols[0], cols[1])
		}
	}
	if len(cols) > 8 {
		r.Format = cols[8]
		r.Samples = cols[9:]
	}
	return r, nil
}

// MustParseRecord is ParseRecord for literals in tests and fixtures.  It panics
// on error.
func MustParseRecord(line string) *Record {
	r, err := ParseRecord(line)
	if err != nil {
		panic(err)
	}
	return r
}
