package accounts

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

const (
	offMintAuthorityOption = 0
	offSupply              = 36
	offDecimals            = 44
	offMintIsInitialized   = 45
	offFreezeAuthOption    = 46
)

// MintView is a read-only zero-copy view over a parsed mint account.
type MintView struct {
	data []byte
}

// ParseMint validates that data is at least MintLen bytes and returns a view
// over it.
func ParseMint(data []byte) (MintView, error) {
	if len(data) < MintLen {
		return MintView{}, fmt.Errorf("accounts: mint data is %d bytes, want at least %d", len(data), MintLen)
	}
	return MintView{data: data}, nil
}

func (v MintView) Supply() uint64 {
	r := reader{b: v.data, i: offSupply}
	n, _ := r.le64()
	return n
}

func (v MintView) Decimals() uint8 {
	return v.data[offDecimals]
}

func (v MintView) IsInitialized() bool {
	return v.data[offMintIsInitialized] != 0
}

func (v MintView) MintAuthority() (solana.PublicKey, bool) {
	r := reader{b: v.data, i: offMintAuthorityOption}
	tag, ok := r.le32()
	if !ok || tag == 0 {
		return solana.PublicKey{}, false
	}
	pk, ok := r.pubkey()
	if !ok {
		return solana.PublicKey{}, false
	}
	return pk, true
}

func (v MintView) FreezeAuthority() (solana.PublicKey, bool) {
	r := reader{b: v.data, i: offFreezeAuthOption}
	tag, ok := r.le32()
	if !ok || tag == 0 {
		return solana.PublicKey{}, false
	}
	pk, ok := r.pubkey()
	if !ok {
		return solana.PublicKey{}, false
	}
	return pk, true
}

// HasExtensions reports whether this mint's data extends past the base
// 82-byte layout, i.e. it carries Token-2022 extensions.
func (v MintView) HasExtensions() bool {
	return len(v.data) > MintLen
}

// Raw returns the full underlying buffer, extensions included. Used by the
// sizing package to walk the TLV region.
func (v MintView) Raw() []byte {
	return v.data
}

// ExtensionData returns the AccountType byte and TLV region following the
// base layout, honoring the Token-2022 convention that a mint grown to
// exactly TokenAccountLen bytes pads with zeroes between the base struct and
// the AccountType marker so that Account and Mint share one size class.
func (v MintView) ExtensionData() (accountType AccountType, tlv []byte, ok bool) {
	if !v.HasExtensions() {
		return 0, nil, false
	}
	const padding = TokenAccountLen - MintLen
	rest := v.data[MintLen:]
	if len(rest) > padding && rest[padding] == byte(AccountTypeMint) {
		return AccountTypeMint, rest[padding+1:], true
	}
	if len(rest) >= 1 {
		return AccountType(rest[0]), rest[1:], true
	}
	return 0, nil, false
}
