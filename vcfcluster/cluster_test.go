package vcfcluster_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/grailbio/vcfcluster/encoding/vcf"
	"github.com/grailbio/vcfcluster/vcfcluster"
)

const sampleCols = "\tKMER=31;SVLEN=0;SVTYPE=SNP\tGT:COV:GT_CONF\t1/1:0,52:39.80"

var (
	rec1 = vcf.MustParseRecord("ref_42\t11\tid_1\tA\tG\t42.42\tPASS" + sampleCols)
	rec2 = vcf.MustParseRecord("ref_42\t12\tid_2\tC\tG\t42.42\tPASS" + sampleCols)
	rec3 = vcf.MustParseRecord("ref_42\t15\tid_2\tC\tG\t42.42\tPASS" + sampleCols)
	rec4 = vcf.MustParseRecord("ref_42\t19\tid_2\tCCCCC\tG\t42.42\tPASS" + sampleCols)
	rec5 = vcf.MustParseRecord("ref_42\t23\tid_2\tC\tG\t42.42\tPASS" + sampleCols)
)

func TestAddAndLen(t *testing.T) {
	c := vcfcluster.NewCluster(3)
	expect.EQ(t, c.Len(), 0)
	expect.EQ(t, c.Chrom(), "")
	expect.True(t, c.Add(rec1))
	expect.True(t, c.Add(rec2))
	expect.True(t, c.Add(rec3))
	expect.EQ(t, c.Len(), 3)
	expect.False(t, c.Add(rec4))
	expect.EQ(t, c.Len(), 3)
	c.MaxDistance = 5
	expect.True(t, c.Add(rec4))
	expect.True(t, c.Add(rec5))
	expect.EQ(t, c.Len(), 5)
	expect.EQ(t, c.Chrom(), "ref_42")

	other := vcf.MustParseRecord("ref_43\t11\tid_1\tA\tG\t42.42\tPASS" + sampleCols)
	expect.False(t, c.Add(other))
	expect.EQ(t, c.Len(), 5)
}

func TestAddOutOfOrder(t *testing.T) {
	c := vcfcluster.NewCluster(2)
	assert.True(t, c.Add(vcf.MustParseRecord("ref\t12\t.\tT\tC,A\t42.42\tPASS\tSVTYPE=SNP\tGT\t1/1")))
	// Two bases before the cluster start.
	expect.True(t, c.Add(vcf.MustParseRecord("ref\t10\t.\tC\tG\t42.42\t.\tSVTYPE=SNP\tGT\t1/1")))
	expect.False(t, c.Add(vcf.MustParseRecord("ref\t6\t.\tC\tG\t42.42\t.\tSVTYPE=SNP\tGT\t1/1")))
	start, end, ok := c.StartAndEnd()
	assert.True(t, ok)
	expect.EQ(t, start, 9)
	expect.EQ(t, end, 11)
}

func TestStartAndEnd(t *testing.T) {
	c := vcfcluster.NewCluster(3)
	_, _, ok := c.StartAndEnd()
	expect.False(t, ok)
	assert.True(t, c.Add(rec1))
	start, end, ok := c.StartAndEnd()
	expect.True(t, ok)
	expect.EQ(t, []int{start, end}, []int{10, 10})
	assert.True(t, c.Add(rec2))
	start, end, _ = c.StartAndEnd()
	expect.EQ(t, []int{start, end}, []int{10, 11})

	// A record ending before the current end leaves it alone.
	c = vcfcluster.NewCluster(0)
	assert.True(t, c.Add(vcf.MustParseRecord("chr1\t5\t.\tACGTACGT\tA\t.\tPASS\t.")))
	assert.True(t, c.Add(vcf.MustParseRecord("chr1\t7\t.\tG\tT\t.\tPASS\t.")))
	start, end, _ = c.StartAndEnd()
	expect.EQ(t, []int{start, end}, []int{4, 11})
}

func TestZeroDistance(t *testing.T) {
	c := vcfcluster.NewCluster(0)
	assert.True(t, c.Add(vcf.MustParseRecord("chr1\t5\t.\tAC\tT\t.\tPASS\t.")))
	// Overlapping the last base.
	expect.True(t, c.Add(vcf.MustParseRecord("chr1\t6\t.\tC\tT\t.\tPASS\t.")))
	// Adjacent is one base away.
	expect.False(t, c.Add(vcf.MustParseRecord("chr1\t7\t.\tA\tT\t.\tPASS\t.")))
	c.MaxDistance = 1
	expect.True(t, c.Add(vcf.MustParseRecord("chr1\t7\t.\tA\tT\t.\tPASS\t.")))
}

func TestBuildClusters(t *testing.T) {
	records := []*vcf.Record{rec1, rec2, rec3, rec4, rec5}
	got := vcfcluster.BuildClusters(records, 3)
	assert.EQ(t, len(got), 2)
	expect.EQ(t, got[0].Records, []*vcf.Record{rec1, rec2, rec3})
	expect.EQ(t, got[1].Records, []*vcf.Record{rec4, rec5})

	want := vcfcluster.NewCluster(5)
	for _, r := range records {
		assert.True(t, want.Add(r))
	}
	got = vcfcluster.BuildClusters(records, 5)
	assert.EQ(t, len(got), 1)
	expect.True(t, got[0].Equal(want))
	expect.False(t, got[0].Equal(vcfcluster.BuildClusters(records, 3)[0]))

	expect.EQ(t, len(vcfcluster.BuildClusters(nil, 3)), 0)
}

// randomRecords returns n position-sorted records on a 1kb chromosome.
func randomRecords(r *rand.Rand, n int) []*vcf.Record {
	const bases = "ACGT"
	records := make([]*vcf.Record, n)
	pos := 0
	for i := range records {
		pos += r.Intn(6)
		refLen := 1 + r.Intn(4)
		ref := make([]byte, refLen)
		for j := range ref {
			ref[j] = bases[r.Intn(4)]
		}
		records[i] = &vcf.Record{Chrom: "chr1", Pos: pos, Ref: string(ref), Alt: []string{strings.Repeat("A", 1+r.Intn(3))}}
	}
	return records
}

func TestBuildClustersProperties(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	for iter := 0; iter < 200; iter++ {
		records := randomRecords(r, 1+r.Intn(40))
		maxDistance := r.Intn(5)
		clusters := vcfcluster.BuildClusters(records, maxDistance)

		// The clusters partition the input in order.
		var flat []*vcf.Record
		for _, c := range clusters {
			assert.True(t, c.Len() > 0)
			flat = append(flat, c.Records...)
		}
		assert.EQ(t, flat, records)

		for i, c := range clusters {
			start, end, ok := c.StartAndEnd()
			assert.True(t, ok)
			minPos, maxEnd := c.Records[0].Pos, c.Records[0].End()
			for _, rec := range c.Records {
				if rec.Pos < minPos {
					minPos = rec.Pos
				}
				if rec.End() > maxEnd {
					maxEnd = rec.End()
				}
			}
			expect.EQ(t, start, minPos)
			expect.EQ(t, end, maxEnd)
			// Consecutive clusters are too far apart to have been joined.
			if i > 0 {
				_, prevEnd, _ := clusters[i-1].StartAndEnd()
				expect.True(t, start-prevEnd > maxDistance, "iter %d cluster %d", iter, i)
			}
		}
	}
}

func TestEndIsMonotonic(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	records := randomRecords(r, 100)
	c := vcfcluster.NewCluster(1000)
	prevEnd := -1
	for _, rec := range records {
		assert.True(t, c.Add(rec))
		_, end, _ := c.StartAndEnd()
		expect.True(t, end >= prevEnd)
		prevEnd = end
	}
}

// TestBuildClustersCoarsening checks that a larger distance only merges
// clusters: each cluster built with t1 lies inside one cluster built with
// t2 > t1.
func TestBuildClustersCoarsening(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for iter := 0; iter < 200; iter++ {
		records := randomRecords(r, 1+r.Intn(40))
		t1 := r.Intn(4)
		t2 := t1 + 1 + r.Intn(4)
		owner := make(map[*vcf.Record]int)
		for i, c := range vcfcluster.BuildClusters(records, t2) {
			for _, rec := range c.Records {
				owner[rec] = i
			}
		}
		fine := vcfcluster.BuildClusters(records, t1)
		coarse := vcfcluster.BuildClusters(records, t2)
		expect.LE(t, len(coarse), len(fine))
		for _, c := range fine {
			for _, rec := range c.Records {
				expect.EQ(t, owner[rec], owner[c.Records[0]], "iter %d", iter)
			}
		}
	}
}
