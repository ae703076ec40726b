// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package vcf implements a minimal VCF record type together with a streaming
// reader and a writer.  Only the eight fixed columns are interpreted;
// FORMAT and per-sample columns are carried through verbatim.
//
// Positions are 0-based inside this package (Record.Pos) and converted to and
// from the 1-based POS column at the text boundary, following the usual
// "0-based in memory, 1-based in text" convention.
package vcf
