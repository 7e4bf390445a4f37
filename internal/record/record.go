// Package record packs a pair of child pointers into a byte-aligned MMDB
// node record at a configured record size (spec.md §4.5). This mirrors
// the role internal/bitset plays for gaissmai/bart's fixed-width node
// records, adapted from a 256-wide popcount bitmap to the fixed 2-pointer
// records this trie's nodes need.
package record

import (
	"github.com/pkg/errors"

	"github.com/bartdb/mmdbwriter/internal/errs"
)

// Packer encodes (left, right) child-pointer pairs at a fixed record
// size. Valid sizes are 24, 28, and 32 bits, i.e. divisible by 4 and by
// either 8 (byte-aligned) or 4 (nibble-split at 28).
type Packer struct {
	recordSize int
}

// NewPacker validates recordSize and returns a ready Packer.
func NewPacker(recordSize int) (*Packer, error) {
	if recordSize%4 != 0 || (recordSize != 24 && recordSize != 28 && recordSize != 32) {
		return nil, errors.Wrapf(errs.ErrConfiguration, "record size %d is not one of 24, 28, 32", recordSize)
	}
	return &Packer{recordSize: recordSize}, nil
}

// RecordSize returns the configured bit width of one child pointer (24,
// 28, or 32).
func (p *Packer) RecordSize() int {
	return p.recordSize
}

// Size returns the total byte length of one packed record
// (record_size * 2 / 8).
func (p *Packer) Size() int {
	return p.recordSize * 2 / 8
}

// Pack encodes left and right into a record of p.Size() bytes.
func (p *Packer) Pack(left, right uint32) []byte {
	switch p.recordSize {
	case 24:
		return pack32(left, right, 3)
	case 32:
		return pack32(left, right, 4)
	case 28:
		return packNibbleSplit(left, right)
	default:
		// unreachable: validated in NewPacker
		panic("logic error: invalid record size escaped validation")
	}
}

// pack32 writes left then right as n big-endian bytes each, for the
// byte-aligned 24- and 32-bit record sizes.
func pack32(left, right uint32, n int) []byte {
	out := make([]byte, 2*n)
	putBigEndian(out[:n], left)
	putBigEndian(out[n:], right)
	return out
}

// packNibbleSplit implements the 7-byte, nibble-interleaved 28-bit record
// layout of spec.md §4.5: the low 3 bytes of left, a middle byte carrying
// the top nibble (bits 24-27) of each pointer, then the low 3 bytes of
// right.
func packNibbleSplit(left, right uint32) []byte {
	out := make([]byte, 7)
	putBigEndian(out[0:3], left)
	out[3] = byte((left>>24)&0x0F)<<4 | byte((right>>24)&0x0F)
	putBigEndian(out[4:7], right)
	return out
}

// putBigEndian writes the low len(dst) bytes of v into dst, most
// significant first.
func putBigEndian(dst []byte, v uint32) {
	for i := len(dst) - 1; i >= 0; i-- {
		dst[i] = byte(v)
		v >>= 8
	}
}
