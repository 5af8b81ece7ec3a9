package accounts

import (
	"fmt"

	"ata-go/ataerr"

	"github.com/gagliardetto/solana-go"
)

const (
	offMultisigM  = 0
	offMultisigN  = 1
	offMultisigIs = 2
	offSigners    = 3
)

// MultisigView is a read-only zero-copy view over a parsed multisig account.
type MultisigView struct {
	data []byte
}

// ParseMultisig validates length, the is_initialized flag, and the m <= n <=
// MaxMultisigSigners invariant, returning a view over data.
func ParseMultisig(data []byte) (MultisigView, error) {
	if len(data) < MultisigLen {
		return MultisigView{}, fmt.Errorf("accounts: multisig data is %d bytes, want at least %d", len(data), MultisigLen)
	}
	v := MultisigView{data: data}
	if !v.IsInitialized() {
		return MultisigView{}, ataerr.New(ataerr.UninitializedAccount, "multisig account is not initialized")
	}
	if v.N() > MaxMultisigSigners || v.M() == 0 || v.M() > v.N() {
		return MultisigView{}, ataerr.New(ataerr.InvalidAccountData, "multisig m/n out of range")
	}
	return v, nil
}

func (v MultisigView) M() uint8 {
	return v.data[offMultisigM]
}

func (v MultisigView) N() uint8 {
	return v.data[offMultisigN]
}

func (v MultisigView) IsInitialized() bool {
	return v.data[offMultisigIs] != 0
}

// Signer returns the i'th signer, 0 <= i < N().
func (v MultisigView) Signer(i int) solana.PublicKey {
	off := offSigners + i*32
	return solana.PublicKeyFromBytes(v.data[off : off+32])
}

// Signers returns all N() configured signer keys.
func (v MultisigView) Signers() []solana.PublicKey {
	n := int(v.N())
	out := make([]solana.PublicKey, n)
	for i := 0; i < n; i++ {
		out[i] = v.Signer(i)
	}
	return out
}

// CountValidSigners returns how many distinct keys in presentedSigners
// appear in this multisig's signer list. It does not look at is_signer
// flags; checkRecoverSigner passes only the accounts marked as signers. This
// is the quantity compared against M() to decide whether a
// multisig-authorized instruction is satisfied.
func (v MultisigView) CountValidSigners(presentedSigners []solana.PublicKey) int {
	known := make(map[solana.PublicKey]struct{}, v.N())
	for _, s := range v.Signers() {
		known[s] = struct{}{}
	}
	seen := make(map[solana.PublicKey]struct{}, len(presentedSigners))
	count := 0
	for _, p := range presentedSigners {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		if _, ok := known[p]; ok {
			count++
		}
	}
	return count
}
