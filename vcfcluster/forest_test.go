package vcfcluster_test

import (
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/grailbio/vcfcluster/encoding/vcf"
	"github.com/grailbio/vcfcluster/vcfcluster"
)

func parseAll(lines ...string) []*vcf.Record {
	records := make([]*vcf.Record, len(lines))
	for i, l := range lines {
		records[i] = vcf.MustParseRecord(l)
	}
	return records
}

func TestNewForest(t *testing.T) {
	records := parseAll(
		"ref\t8\t.\tTGCGTAT\tT\t.\tPASS\t.",
		"ref\t10\t.\tC\tG\t.\tPASS\t.",
		"ref\t12\t.\tT\tC,A\t.\tPASS\t.",
		"ref\t9\t.\tGCGT\tGAAAAC\t.\tPASS\t.",
		"ref\t17\t.\tG\tC\t.\tPASS\t.",
	)
	f, err := vcfcluster.NewForest(records)
	assert.NoError(t, err)
	expect.EQ(t, f.Parent, []int{-1, 3, 3, 0, -1})
	expect.EQ(t, f.Roots, []int{0, 4})
	expect.EQ(t, f.Children, [][]int{{3}, nil, nil, {1, 2}, nil})
	expect.EQ(t, f.PostOrder(), []int{1, 2, 3, 0, 4})
}

func TestNewForestIdenticalSpans(t *testing.T) {
	records := parseAll(
		"ref\t8\t.\tTGC\tT\t.\tPASS\t.",
		"ref\t8\t.\tTGC\tA\t.\tPASS\t.",
		"ref\t8\t.\tTGC\tTTT\t.\tPASS\t.",
		"ref\t9\t.\tG\tC\t.\tPASS\t.",
	)
	f, err := vcfcluster.NewForest(records)
	assert.NoError(t, err)
	// Identical spans chain in input order, and the innermost one is the
	// nearest container of the SNP.
	expect.EQ(t, f.Parent, []int{-1, 0, 1, 2})
	expect.EQ(t, f.Roots, []int{0})
	expect.EQ(t, f.PostOrder(), []int{3, 2, 1, 0})
}

func TestNewForestNonNesting(t *testing.T) {
	records := parseAll(
		"chr1\t6\t.\tGTA\tG\t.\tPASS\t.",
		"chr1\t5\t.\tACG\tA\t.\tPASS\t.",
	)
	_, err := vcfcluster.NewForest(records)
	assert.NotNil(t, err)
	nn, ok := err.(*vcfcluster.NonNestingError)
	assert.True(t, ok)
	expect.EQ(t, nn.Chrom, "chr1")
	expect.EQ(t, nn.A, vcf.Interval{Start: 4, End: 6})
	expect.EQ(t, nn.B, vcf.Interval{Start: 5, End: 7})
	expect.EQ(t, nn.Error(), "non-nesting overlap on chr1: 5-7 and 6-8")

	expect.True(t, vcfcluster.IsNonNesting(err))
	expect.True(t, vcfcluster.IsNonNesting(errors.E(errors.Precondition, err, "merge")))
	expect.False(t, vcfcluster.IsNonNesting(errors.E(errors.Invalid, "something else")))
	expect.False(t, vcfcluster.IsNonNesting(nil))
}

func TestEnumerate(t *testing.T) {
	//           12345678901234567890
	const ref = "AGCTATCTGCGTATTCGATC"
	records := parseAll(
		"ref\t10\t.\tC\tG\t.\tPASS\t.",
		"ref\t12\t.\tT\tC,A\t.\tPASS\t.",
	)
	f, err := vcfcluster.NewForest(records)
	assert.NoError(t, err)
	got, err := vcfcluster.Enumerate(records, f, 9, ref[9:12])
	assert.NoError(t, err)
	expect.EQ(t, got, []string{"CGA", "CGC", "GGA", "GGC", "GGT"})

	// A wider span adds reference flanks to every allele.
	got, err = vcfcluster.Enumerate(records, f, 8, ref[8:13])
	assert.NoError(t, err)
	expect.EQ(t, got, []string{"GCGAA", "GCGCA", "GGGAA", "GGGCA", "GGGTA"})

	// Records must lie within the span.
	_, err = vcfcluster.Enumerate(records, f, 10, ref[10:12])
	assert.NotNil(t, err)
	expect.True(t, errors.Is(errors.Precondition, err))
}

func TestEnumerateDuplicateAlleles(t *testing.T) {
	const ref = "AGCTATCTGCGTATTCGATC"
	// Deleting the SNP site and substituting it produce overlapping sets.
	records := parseAll(
		"ref\t9\t.\tGC\tG,GG\t.\tPASS\t.",
		"ref\t10\t.\tC\tG\t.\tPASS\t.",
	)
	f, err := vcfcluster.NewForest(records)
	assert.NoError(t, err)
	got, err := vcfcluster.Enumerate(records, f, 8, ref[8:10])
	assert.NoError(t, err)
	expect.EQ(t, got, []string{"G", "GG"})
}
