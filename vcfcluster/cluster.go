package vcfcluster

import (
	"github.com/grailbio/vcfcluster/encoding/vcf"
)

// Cluster is a group of records on one chromosome that are close enough to
// be merged.  Records may only be added, never removed.
type Cluster struct {
	// Records are the members in the order they were added.
	Records []*vcf.Record
	// MaxDistance is the largest gap, in bases, between a new record and the
	// cluster span for the record to be accepted.  It may be changed between
	// calls to Add.
	MaxDistance int

	start, end int
}

// NewCluster returns an empty cluster.
func NewCluster(maxDistance int) *Cluster {
	return &Cluster{MaxDistance: maxDistance}
}

// Len returns the number of records in the cluster.
func (c *Cluster) Len() int {
	return len(c.Records)
}

// Chrom returns the chromosome of the cluster, or "" if it is empty.
func (c *Cluster) Chrom() string {
	if len(c.Records) == 0 {
		return ""
	}
	return c.Records[0].Chrom
}

// StartAndEnd returns the 0-based closed span [start, end] covered by the
// cluster's records.  ok is false for an empty cluster.
func (c *Cluster) StartAndEnd() (start, end int, ok bool) {
	if len(c.Records) == 0 {
		return 0, 0, false
	}
	return c.start, c.end, true
}

// distance returns how many bases separate r from the cluster span.  It is
// zero or negative when they overlap.
func (c *Cluster) distance(r *vcf.Record) int {
	if r.End() < c.start {
		return c.start - r.End()
	}
	return r.Pos - c.end
}

// Add appends r to the cluster and returns true if r is on the cluster's
// chromosome and within MaxDistance of its span.  An empty cluster accepts
// any record.
func (c *Cluster) Add(r *vcf.Record) bool {
	if len(c.Records) == 0 {
		c.Records = append(c.Records, r)
		c.start, c.end = r.Pos, r.End()
		return true
	}
	if r.Chrom != c.Records[0].Chrom || c.distance(r) > c.MaxDistance {
		return false
	}
	c.Records = append(c.Records, r)
	if r.Pos < c.start {
		c.start = r.Pos
	}
	if e := r.End(); e > c.end {
		c.end = e
	}
	return true
}

// Equal returns whether c and o hold equal records in the same order.
// MaxDistance is not compared.
func (c *Cluster) Equal(o *Cluster) bool {
	if len(c.Records) != len(o.Records) {
		return false
	}
	for i, r := range c.Records {
		if !r.Equal(o.Records[i]) {
			return false
		}
	}
	return true
}

// BuildClusters partitions records, which must be sorted by position and lie
// on a single chromosome, into clusters.  Each record is added to the
// current cluster if it fits, and otherwise starts a new one, so clusters
// come out in input order and concatenating their records reproduces the
// input.
func BuildClusters(records []*vcf.Record, maxDistance int) []*Cluster {
	var clusters []*Cluster
	cur := NewCluster(maxDistance)
	for _, r := range records {
		if cur.Add(r) {
			continue
		}
		clusters = append(clusters, cur)
		cur = NewCluster(maxDistance)
		cur.Add(r)
	}
	if cur.Len() > 0 {
		clusters = append(clusters, cur)
	}
	return clusters
}
