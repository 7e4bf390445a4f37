// Package mmdbwriter builds binary IP-lookup databases in the MaxMind
// MMDB v2 format from in-memory inputs.
//
// A caller supplies IP network prefixes paired with arbitrary structured
// data records via a Writer; Write then produces a single binary artifact
// that any conforming MMDB reader can memory-map and query by IP address.
//
// The Writer owns three tightly coupled subsystems:
//
//   - a binary radix trie over IP address bits (internal/trie) that maps
//     prefixes to data-section offsets, resolving overlap between
//     prefixes of differing specificity;
//   - a typed data encoder (internal/value, internal/encoding) that
//     serializes a tagged value tree into MMDB's variable-length
//     type/length framing;
//   - an assembler that lays out the final artifact: packed node
//     records, a zero separator, the data section, and the metadata map.
//
// The Writer is safe for a single goroutine at a time. It must not be
// copied after its first use.
package mmdbwriter
