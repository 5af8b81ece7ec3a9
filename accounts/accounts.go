// Package accounts provides zero-copy views over the fixed-layout SPL Token
// account types (token account, mint, multisig), plus a cursor for walking
// the Token-2022 TLV extension region that trails a mint or account once it
// grows past its base size. The reader is a plain little-endian cursor over
// a byte slice with (value, ok) results rather than an error return.
package accounts

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Base account sizes, in bytes, before any Token-2022 extension is appended.
const (
	TokenAccountLen = 165
	MintLen         = 82
	MultisigLen     = 355

	MaxMultisigSigners = 11
)

// AccountState is the one-byte state field of a token account.
type AccountState byte

const (
	StateUninitialized AccountState = 0
	StateInitialized   AccountState = 1
	StateFrozen        AccountState = 2
)

// AccountType distinguishes a Mint from a (token) Account once either has
// grown past its base size to carry TLV extensions; it sits at the byte
// immediately following the base struct.
type AccountType byte

const (
	AccountTypeUninitialized AccountType = 0
	AccountTypeMint          AccountType = 1
	AccountTypeAccount       AccountType = 2
)

// reader is a minimal little-endian cursor. Each accessor reports ok=false
// instead of panicking when the read would run past the end of the buffer.
type reader struct {
	b []byte
	i int
}

func (r *reader) u8() (byte, bool) {
	if r.i+1 > len(r.b) {
		return 0, false
	}
	v := r.b[r.i]
	r.i++
	return v, true
}

func (r *reader) le16() (uint16, bool) {
	if r.i+2 > len(r.b) {
		return 0, false
	}
	v := binary.LittleEndian.Uint16(r.b[r.i : r.i+2])
	r.i += 2
	return v, true
}

func (r *reader) le32() (uint32, bool) {
	if r.i+4 > len(r.b) {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(r.b[r.i : r.i+4])
	r.i += 4
	return v, true
}

func (r *reader) le64() (uint64, bool) {
	if r.i+8 > len(r.b) {
		return 0, false
	}
	v := binary.LittleEndian.Uint64(r.b[r.i : r.i+8])
	r.i += 8
	return v, true
}

func (r *reader) bytes(n int) ([]byte, bool) {
	if n < 0 || r.i+n > len(r.b) {
		return nil, false
	}
	v := r.b[r.i : r.i+n]
	r.i += n
	return v, true
}

func (r *reader) pubkey() (solana.PublicKey, bool) {
	b, ok := r.bytes(32)
	if !ok {
		return solana.PublicKey{}, false
	}
	return solana.PublicKeyFromBytes(b), true
}

func (r *reader) remaining() int {
	return len(r.b) - r.i
}
