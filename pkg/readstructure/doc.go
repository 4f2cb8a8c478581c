// Package readstructure parses read structures, compact strings such as
// "8B12M+T" that describe how the bases of a sequencing read are divided
// into template, sample barcode, molecular barcode, cellular barcode and
// skip segments, and slices reads into those segments.
//
// A read structure is a sequence of segments, each a length followed by a
// kind code. The length is one or more digits or '+', meaning "the rest of
// the read", which is only allowed for the last segment:
//
//	rs, err := readstructure.Parse("76T8B8B+T")
//	if err != nil {
//		return err
//	}
//	for _, seg := range rs.Templates() {
//		bases, err := seg.ExtractBases(read)
//		...
//	}
//
// Parse errors carry the normalized input split around the offending span
// so callers can show exactly where parsing failed.
package readstructure
