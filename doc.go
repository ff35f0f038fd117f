// Package vcardtool converts vCard 2.1 address books to vCard 3.0 (or 4.0)
// and merges duplicate contacts.
//
// Phone exports are often vCard 2.1 files full of quoted-printable values,
// bare type tokens and vendor extensions. vcardtool rewrites them line by
// line into the target version and repairs contacts that lack a formatted
// name.
//
// # Quick Start
//
// Converting a file:
//
//	stats, err := vcardtool.ConvertFile("contacts.vcf", "")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("%d of %d cards written\n", stats.Written, stats.Cards)
//
// The result lands in contacts.vcf.converted.
//
// Merging contacts that share the same FN line:
//
//	stats, err := vcardtool.MergeFile("contacts.vcf.converted", "")
//	fmt.Printf("%d in, %d merged, %d out\n", stats.Input, stats.Merged, stats.Output)
//
// # Conversion
//
// Every physical line goes through the same stages:
//
//	decode → rewrite → line filter → card filter → record
//
// Quoted-printable values are decoded, including values folded over
// several lines with soft line breaks. Line breaks inside a decoded value
// become the two characters \n. The rewrite rules then run in a fixed
// order: version, photo encoding, X-INTERNET removal, Android nicknames,
// X-JABBER and X-ICQ, type parameters, PREF, jabber addresses and the
// x-mobil typo. Type parameters must be rewritten before PREF.
//
// At END:VCARD a record without FN is repaired. Under RequireFNOnly a
// NICKNAME becomes the FN; under RequireNAndFN the N and FN properties are
// derived from each other. Records that cannot be repaired are dropped with
// a Warning.
//
// # Merging
//
// Merging loads the whole file, sorts records by their FN line and merges
// neighbours with identical FN lines. Properties of each merged record are
// sorted (FN, N, single-line properties, folded properties) and adjacent
// duplicates are removed.
//
// # Error Handling
//
// vcardtool distinguishes between fatal errors and warnings:
//
//   - DecodeError: a quoted-printable value could not be decoded
//   - StructuralError: unbalanced BEGIN/END, content outside a record or,
//     when merging, a record without FN
//   - Warnings: records dropped by a filter, the repair or pruning
//
// Fatal errors carry the offending line number. File output is written to
// a temporary file first, so a failed run never replaces the destination.
//
//	var decErr *vcardtool.DecodeError
//	if errors.As(err, &decErr) {
//		log.Printf("line %d: %q", decErr.Line, decErr.Raw)
//	}
package vcardtool
