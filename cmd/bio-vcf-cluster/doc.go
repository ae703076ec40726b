/*
bio-vcf-cluster merges nearby variants from one or more VCF files into
multi-allelic records that graph-genome tools such as gramtools can build
from.

Usage:

  bio-vcf-cluster merge [flags] ref.fa out.vcf[.gz] in.vcf[.gz]...
  bio-vcf-cluster faidx ref.fa

"merge" loads every input, drops duplicates, symbolic alleles and records
whose REF disagrees with the reference, then groups records that lie within
-max-distance bases of each other.  Each group becomes one record whose ALT
alleles are every combination of the grouped variants.  Output ending in
.gz is block-gzipped.  If ref.fa.fai exists the reference is read through
it; otherwise the whole reference is loaded into memory.

"faidx" writes ref.fa.fai for an uncompressed FASTA file.
*/
package main
