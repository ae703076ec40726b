/*Package interval parses samtools-style region strings and answers
  containment queries against them.  Regions are converted to 0-based
  half-open coordinates on parse.
  It assumes every position fits in a PosType, which is int32 since that's
  what BAM/VCF indexes are limited to.
*/
package interval
