package vcfcluster_test

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/grailbio/vcfcluster/encoding/vcf"
	"github.com/grailbio/vcfcluster/interval"
	"github.com/grailbio/vcfcluster/vcfcluster"
	"github.com/klauspost/compress/gzip"
)

const (
	loadVCF1 = "##fileformat=VCFv4.2\n" +
		"##source=caller_a\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tsample_a\n" +
		"ref\t10\tid1\tC\tG\t.\tPASS\tSVTYPE=SNP\tGT\t1/1\n" +
		"ref2\t3\tid2\tT\tC\t.\tPASS\t.\tGT\t1/1\n" +
		"ref\t2\tid3\tG\tA\t.\tPASS\t.\tGT\t1/1\n"

	loadVCF2 = "##fileformat=VCFv4.2\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tsample_b\n" +
		"ref\t10\tid9\tC\tG\t.\tPASS\t.\tGT\t0/1\n" +
		"ref\t8\tid4\tT\tA\t.\tPASS\t.\tGT\t1/1\n" +
		"ref\t12\tid6\tT\t<DEL>\t.\tPASS\t.\tGT\t1/1\n" +
		"ref\t13\tid7\tA\ta\t.\tPASS\t.\tGT\t1/1\n" +
		"ref\t15\tid8\tG\tC\t.\tPASS\t.\tGT\t1/1\n" +
		"ref\t19\tid10\tTCG\tT\t.\tPASS\t.\tGT\t1/1\n" +
		"chrZ\t1\tid11\tA\tC\t.\tPASS\t.\tGT\t1/1\n"
)

func writeGzip(t *testing.T, path, data string) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(data))
	assert.NoError(t, err)
	assert.NoError(t, gz.Close())
	assert.NoError(t, ioutil.WriteFile(path, buf.Bytes(), 0644))
}

func writeLoadInputs(t *testing.T, dir string) []string {
	path1 := filepath.Join(dir, "in1.vcf")
	assert.NoError(t, ioutil.WriteFile(path1, []byte(loadVCF1), 0644))
	path2 := filepath.Join(dir, "in2.vcf.gz")
	writeGzip(t, path2, loadVCF2)
	return []string{path1, path2}
}

func recordIDs(records []*vcf.Record) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}

func TestLoadFiles(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	paths := writeLoadInputs(t, tmpdir)

	ref := newTestRef(t, "ref2", "TTTTTTTTTT")
	in, err := vcfcluster.LoadFiles(ctx, paths, vcfcluster.LoadOpts{Ref: ref})
	assert.NoError(t, err)
	expect.EQ(t, in.Sample, "sample_b")
	expect.EQ(t, in.Chroms, []string{"ref", "ref2"})
	expect.EQ(t, recordIDs(in.Records["ref"]), []string{"id3", "id4", "id1"})
	expect.EQ(t, recordIDs(in.Records["ref2"]), []string{"id2"})
	expect.EQ(t, in.NumRecords(), 4)
	expect.EQ(t, in.Dropped, vcfcluster.DropCounts{
		Duplicate:   1,
		Symbolic:    1,
		NoVariation: 1,
		NotInRef:    1,
		RefMismatch: 2,
	})
	expect.EQ(t, in.Dropped.Total(), 6)
	expect.EQ(t, in.Headers[paths[0]], []string{
		"##fileformat=VCFv4.2",
		"##source=caller_a",
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tsample_a",
	})
	expect.EQ(t, len(in.Headers[paths[1]]), 2)

	// Without a reference nothing is checked against it.
	in, err = vcfcluster.LoadFiles(ctx, paths, vcfcluster.LoadOpts{})
	assert.NoError(t, err)
	expect.EQ(t, in.Chroms, []string{"ref", "ref2", "chrZ"})
	expect.EQ(t, recordIDs(in.Records["ref"]), []string{"id3", "id4", "id1", "id8", "id10"})
	expect.EQ(t, in.Dropped.Total(), 3)

	// Input order decides which duplicate survives.
	in, err = vcfcluster.LoadFiles(ctx, []string{paths[1], paths[0]}, vcfcluster.LoadOpts{Ref: ref})
	assert.NoError(t, err)
	expect.EQ(t, recordIDs(in.Records["ref"]), []string{"id3", "id4", "id9"})
	expect.EQ(t, in.Sample, "sample_a")
}

func TestLoadFilesRegion(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	paths := writeLoadInputs(t, tmpdir)

	region, err := interval.ParseRegionString("ref:5-10")
	assert.NoError(t, err)
	in, err := vcfcluster.LoadFiles(ctx, paths, vcfcluster.LoadOpts{Ref: newTestRef(t, "ref2", "TTTTTTTTTT"), Region: &region})
	assert.NoError(t, err)
	expect.EQ(t, in.Chroms, []string{"ref"})
	expect.EQ(t, recordIDs(in.Records["ref"]), []string{"id4", "id1"})
	// id2, id3, id8, id10 and id11 lie outside; id6 and id7 are dropped
	// before the region check.
	expect.EQ(t, in.Dropped.OutOfRegion, 5)
}

func TestLoadFilesNoSample(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	path := filepath.Join(tmpdir, "in.vcf")
	assert.NoError(t, ioutil.WriteFile(path, []byte("##fileformat=VCFv4.2\nref\t10\t.\tC\tG\t.\tPASS\t.\n"), 0644))
	in, err := vcfcluster.LoadFiles(ctx, []string{path}, vcfcluster.LoadOpts{})
	assert.NoError(t, err)
	expect.EQ(t, in.Sample, vcfcluster.DefaultSample)
	expect.EQ(t, in.NumRecords(), 1)
}

func TestLoadFilesErrors(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	_, err := vcfcluster.LoadFiles(ctx, []string{filepath.Join(tmpdir, "missing.vcf")}, vcfcluster.LoadOpts{})
	expect.NotNil(t, err)

	path := filepath.Join(tmpdir, "bad.vcf")
	assert.NoError(t, ioutil.WriteFile(path, []byte("##fileformat=VCFv4.2\nref\tten\t.\tC\tG\t.\tPASS\t.\n"), 0644))
	_, err = vcfcluster.LoadFiles(ctx, []string{path}, vcfcluster.LoadOpts{})
	assert.NotNil(t, err)
	assert.HasSubstr(t, err.Error(), path)
}
