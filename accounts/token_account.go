package accounts

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// TokenAccount offsets within the 165-byte base layout.
const (
	offMint               = 0
	offOwner              = 32
	offAmount             = 64
	offDelegateOption     = 72
	offState              = 108
	offIsNativeOption     = 109
	offDelegatedAmount    = 121
	offCloseAuthOption    = 129
)

// TokenAccountView is a read-only zero-copy view over a parsed token account.
// It does not copy data; callers must not mutate the underlying slice through
// another reference while holding a view.
type TokenAccountView struct {
	data []byte
}

// ParseTokenAccount validates that data is at least TokenAccountLen bytes and
// returns a view over it. Bytes past TokenAccountLen (Token-2022 extensions)
// are retained on the view but not interpreted here; use sizing/TLV helpers
// for those.
func ParseTokenAccount(data []byte) (TokenAccountView, error) {
	if len(data) < TokenAccountLen {
		return TokenAccountView{}, fmt.Errorf("accounts: token account data is %d bytes, want at least %d", len(data), TokenAccountLen)
	}
	return TokenAccountView{data: data}, nil
}

func (v TokenAccountView) Mint() solana.PublicKey {
	return solana.PublicKeyFromBytes(v.data[offMint : offMint+32])
}

func (v TokenAccountView) Owner() solana.PublicKey {
	return solana.PublicKeyFromBytes(v.data[offOwner : offOwner+32])
}

func (v TokenAccountView) Amount() uint64 {
	r := reader{b: v.data, i: offAmount}
	n, _ := r.le64()
	return n
}

func (v TokenAccountView) State() AccountState {
	return AccountState(v.data[offState])
}

func (v TokenAccountView) IsInitialized() bool {
	return v.State() != StateUninitialized
}

func (v TokenAccountView) IsFrozen() bool {
	return v.State() == StateFrozen
}

// DelegatedAmount is only meaningful when Delegate() has a value.
func (v TokenAccountView) DelegatedAmount() uint64 {
	r := reader{b: v.data, i: offDelegatedAmount}
	n, _ := r.le64()
	return n
}

// Delegate returns the delegate pubkey and whether the COption was Some.
func (v TokenAccountView) Delegate() (solana.PublicKey, bool) {
	return v.readCOptionPubkey(offDelegateOption)
}

// CloseAuthority returns the close-authority pubkey and whether the COption
// was Some.
func (v TokenAccountView) CloseAuthority() (solana.PublicKey, bool) {
	return v.readCOptionPubkey(offCloseAuthOption)
}

func (v TokenAccountView) readCOptionPubkey(offset int) (solana.PublicKey, bool) {
	r := reader{b: v.data, i: offset}
	tag, ok := r.le32OptionTag()
	if !ok || tag == 0 {
		return solana.PublicKey{}, false
	}
	pk, ok := r.pubkey()
	if !ok {
		return solana.PublicKey{}, false
	}
	return pk, true
}

// le32OptionTag reads the 4-byte discriminant of a Rust COption<T> (0 = None,
// 1 = Some) without consuming the payload.
func (r *reader) le32OptionTag() (uint32, bool) {
	return r.le32()
}

// HasExtensions reports whether this account's data extends past the base
//165-byte layout, i.e. it was created under Token-2022 with extensions.
func (v TokenAccountView) HasExtensions() bool {
	return len(v.data) > TokenAccountLen
}

// ExtensionData returns the AccountType byte and TLV region following the
// base layout, or ok=false if there is none.
func (v TokenAccountView) ExtensionData() (accountType AccountType, tlv []byte, ok bool) {
	if !v.HasExtensions() {
		return 0, nil, false
	}
	return AccountType(v.data[TokenAccountLen]), v.data[TokenAccountLen+1:], true
}
