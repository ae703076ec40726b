// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

/*
Package vcfcluster collapses nearby VCF records into single multi-allelic
records whose ALT alleles enumerate every consistent combination of the
original variants.  The output is suitable for graph-genome builders such as
gramtools, which require non-overlapping sites.

The pipeline for one chromosome is:

  1. BuildClusters groups position-sorted records.  A record joins the
     current cluster if it starts at most MaxDistance bases after the
     furthest reference base the cluster covers; overlapping records always
     join.

  2. NewForest arranges the records of a cluster by span containment.  Each
     record's parent is the smallest other record whose span encloses it.
     Two records that overlap without either enclosing the other make the
     cluster "non-nesting", reported as a *NonNestingError.

  3. Enumerate walks the forest bottom-up.  A node's choices are its own
     ALT alleles (which replace its whole span, hiding everything nested in
     it) plus its reference span with every combination of its children's
     choices spliced in.  The cluster's alleles are the combinations over
     the roots, minus the unchanged reference, sorted and de-duplicated.

For example, with reference AGCTATCTGCGTATTCGATC, the SNPs 10 C>G and
12 T>C,A (1-based) merge into REF=CGT ALT=CGA,CGC,GGA,GGC,GGT.  Adding the
deletion 8 TGCGTAT>T, which encloses both SNPs, gives REF=TGCGTAT
ALT=T,TGCGAAT,TGCGCAT,TGGGAAT,TGGGCAT,TGGGTAT.

The number of alleles is the product of the choice counts of the roots, so a
dense run of multi-allelic sites grows quickly.  Nothing is capped; clusters
producing more than Opts.WarnAlleles alleles are logged.

Chromosomes are independent and MergeAll processes them in parallel.
*/
package vcfcluster
