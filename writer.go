package mmdbwriter

import (
	"net/netip"

	"github.com/pkg/errors"

	"github.com/bartdb/mmdbwriter/internal/errs"
	"github.com/bartdb/mmdbwriter/internal/record"
	"github.com/bartdb/mmdbwriter/internal/trie"
	"github.com/bartdb/mmdbwriter/internal/value"
)

// Options configures a Writer. The zero value is not valid; pass Options
// to New.
type Options struct {
	// IPVersion selects the address family of the built database: 4 or
	// 6. An IPv6 database also accepts IPv4 prefixes, embedding them per
	// Compat (spec.md §4.7).
	IPVersion int

	// RecordSize is the bit width of one child pointer in a node record.
	// Must be divisible by 4; the format additionally only supports 24,
	// 28, or 32 (spec.md §4.5).
	RecordSize int

	// DatabaseType is a free-form string describing the structure of
	// each data record, written into the metadata map.
	DatabaseType string

	// Description maps locale code to a human-readable description of
	// the database, written into the metadata map.
	Description map[string]string

	// Languages lists the locale codes that data records may be
	// localized to, written into the metadata map.
	Languages []string

	// Compat selects the IPv4-in-IPv6 embedding used when inserting a v4
	// prefix into a v6 database (spec.md §4.7): true embeds at
	// ::0.0.0.0/128 + addr, false at ::ffff:0:0/96 + addr. Ignored for
	// v4 databases. DefaultOptions sets it to true; the zero value is
	// false.
	Compat bool

	// BuildEpoch is the Unix timestamp written as build_epoch. Zero
	// means "use the wall-clock time when Write is called".
	BuildEpoch int64
}

// noCopy makes `go vet -copylocks` flag accidental copies of Writer,
// matching the convention gaissmai/bart's Table[V] uses for the same
// purpose.
//
//nolint:unused
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Writer builds a single MMDB artifact. The zero value is not usable;
// construct one with New. A Writer must not be copied after first use.
type Writer struct {
	_ noCopy

	ipVersion    int
	compat       bool
	databaseType string
	description  map[string]string
	languages    []string
	buildEpoch   int64

	packer *record.Packer
	trie   *trie.Trie
	data   *value.DataWriter
}

// DefaultOptions returns the Options the upstream reference this package
// is grounded on uses when a field is left unset: IPVersion 6, RecordSize
// 28, and Compat true (spec.md §6). Options is a plain struct rather than
// a functional-options API, so a literal Options{} has Compat false;
// callers who want the documented default start from DefaultOptions() and
// override only the fields they care about.
func DefaultOptions() Options {
	return Options{
		IPVersion:  6,
		RecordSize: 28,
		Compat:     true,
	}
}

// New validates opts and returns a ready Writer.
func New(opts Options) (*Writer, error) {
	if opts.IPVersion != 4 && opts.IPVersion != 6 {
		return nil, errors.Wrapf(errs.ErrConfiguration, "unsupported ip_version: %d", opts.IPVersion)
	}

	packer, err := record.NewPacker(opts.RecordSize)
	if err != nil {
		return nil, err
	}

	return &Writer{
		ipVersion:    opts.IPVersion,
		compat:       opts.Compat,
		databaseType: opts.DatabaseType,
		description:  opts.Description,
		languages:    opts.Languages,
		buildEpoch:   opts.BuildEpoch,
		packer:       packer,
		trie:         trie.New(),
		data:         value.NewDataWriter(),
	}, nil
}

// InsertRawData appends an already-tagged value to the data section and
// returns its offset.
func (w *Writer) InsertRawData(v value.DataType) (int, error) {
	return w.data.Write(v)
}

// InsertData auto-types v (spec.md §4.3) and appends it to the data
// section, returning its offset.
func (w *Writer) InsertData(v any) (int, error) {
	tagged, err := value.AutoType(v)
	if err != nil {
		return 0, err
	}
	return w.InsertRawData(tagged)
}

// InsertNetwork parses prefix as CIDR notation, adapts it if needed for
// this Writer's ip_version, and inserts it into the trie with the given
// data offset. strict selects the overlap policy of spec.md §4.4.
func (w *Writer) InsertNetwork(prefix string, offset int, strict bool) error {
	pfx, err := netip.ParsePrefix(prefix)
	if err != nil {
		return errors.Wrapf(errs.ErrMalformedValue, "invalid CIDR %q: %v", prefix, err)
	}
	pfx = pfx.Masked()

	addr := pfx.Addr()
	bits := pfx.Bits()

	switch {
	case addr.Is4():
		if w.ipVersion == 4 {
			raw := addr.As4()
			return w.trie.Insert(raw[:], bits, offset, strict)
		}
		raw := addr.As4()
		v6addr, v6bits := trie.AdaptV4ToV6(raw[:], bits, w.compat)
		return w.trie.Insert(v6addr, v6bits, offset, strict)

	default:
		if w.ipVersion == 4 {
			return errors.Wrapf(errs.ErrConfiguration, "cannot insert IPv6 prefix %q into an IPv4 database", prefix)
		}
		raw := addr.As16()
		return w.trie.Insert(raw[:], bits, offset, strict)
	}
}
