package trie

// AdaptV4ToV6 embeds a 4-byte IPv4 address into a 16-byte IPv6 address for
// insertion into a v6 database, per spec.md §4.7. If compat is true, the
// address is placed at ::0.0.0.0/128 + addr (the low 32 bits of an
// all-zero /96 prefix); if false, at ::ffff:0:0/96 + addr. The returned
// prefix length is always extended by 96.
func AdaptV4ToV6(addr []byte, prefixLen int, compat bool) (v6addr []byte, v6prefixLen int) {
	out := make([]byte, 16)

	if !compat {
		out[10] = 0xff
		out[11] = 0xff
	}

	copy(out[12:], addr)

	return out, prefixLen + 96
}
