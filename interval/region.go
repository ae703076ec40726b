package interval

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PosType is the type used to represent interval coordinates.
type PosType int32

// PosTypeMax is the maximum value that can be represented by a PosType.
const PosTypeMax = math.MaxInt32

// Entry represents a single interval on one chromosome, with 0-based
// half-open coordinates [Start0, End).
type Entry struct {
	RefName string
	Start0  PosType
	End     PosType
}

// ParseRegionString parses a region string of one of the forms
//   [contig ID]:[1-based first pos]-[last pos]
//   [contig ID]:[1-based pos]
//   [contig ID]
// returning a contig ID and 0-based interval boundaries.  The interval
// [0, PosTypeMax - 1) is returned if there is no positional restriction.
// Thousands separators (1,000,000) are accepted in positions.
func ParseRegionString(region string) (result Entry, err error) {
	if len(region) == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty region string")
		return
	}
	colonPos := strings.LastIndexByte(region, ':')
	if colonPos == -1 {
		result.RefName = region
		result.End = PosTypeMax - 1
		return
	}
	if colonPos == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty contig ID")
		return
	}
	result.RefName = region[:colonPos]
	rangeStr := strings.Replace(region[colonPos+1:], ",", "", -1)
	dashPos := strings.IndexByte(rangeStr, '-')
	if dashPos == -1 {
		var pos1 int
		if pos1, err = parsePos(rangeStr); err != nil {
			return
		}
		result.Start0 = PosType(pos1 - 1)
		result.End = PosType(pos1)
		return
	}
	var start1, end int
	if start1, err = parsePos(rangeStr[:dashPos]); err != nil {
		return
	}
	if end, err = parsePos(rangeStr[dashPos+1:]); err != nil {
		return
	}
	// end == PosTypeMax is rejected so that End+1 never overflows.
	if end < start1 || end >= PosTypeMax {
		err = fmt.Errorf("interval.ParseRegionString: invalid range string %v", rangeStr)
		return
	}
	result.Start0 = PosType(start1 - 1)
	result.End = PosType(end)
	return
}

func parsePos(s string) (int, error) {
	pos, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("interval.ParseRegionString: %v", err)
	}
	if pos <= 0 || pos >= PosTypeMax {
		return 0, fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", s)
	}
	return pos, nil
}

// Contains returns whether the 0-based position pos on refName is inside e.
func (e Entry) Contains(refName string, pos PosType) bool {
	return refName == e.RefName && e.Start0 <= pos && pos < e.End
}

// Intersects returns whether the 0-based closed interval [start, end] on
// refName shares a position with e.
func (e Entry) Intersects(refName string, start, end PosType) bool {
	return refName == e.RefName && start < e.End && e.Start0 <= end
}

// String renders e in the 1-based form accepted by ParseRegionString.
func (e Entry) String() string {
	if e.Start0 == 0 && e.End == PosTypeMax-1 {
		return e.RefName
	}
	return fmt.Sprintf("%s:%d-%d", e.RefName, e.Start0+1, e.End)
}
