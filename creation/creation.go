// Package creation implements the shared "make this PDA into a real account"
// primitive used by the Create and CreateIdempotent processor. It knows
// three situations: a fresh, zero-lamport PDA (plain CreateAccount); a PDA
// that already holds lamports (perhaps paid ahead of time by a relayer) on a
// runtime that exposes the single-CPI prefunded fast path; and the same
// prefunded case on a runtime without that fast path, which falls back to a
// transfer/allocate/assign sequence, skipping whichever of allocate/assign
// is already a no-op.
package creation

import (
	"ata-go/runtime"
	"ata-go/sysprog"

	"github.com/gagliardetto/solana-go"
)

// CreatePDAAccount brings pda up to space bytes, owned by owner, funded by
// payer, signing for pda via seeds (without the trailing bump byte).
func CreatePDAAccount(inv runtime.Invoker, payer *runtime.AccountInfo, rent runtime.Rent, space int, owner solana.PublicKey, pda *runtime.AccountInfo, seeds [][]byte, bump byte) error {
	required := rent.MinimumBalance(space)
	if required == 0 {
		required = 1
	}
	current := *pda.Lamports
	signerSeeds := [][][]byte{runtime.SeedsForBump(seeds, bump)}

	if current == 0 {
		ix := sysprog.NewCreateAccountInstruction(payer.Key, pda.Key, required, uint64(space), owner)
		_, err := inv.InvokeSigned(ix, []*runtime.AccountInfo{payer, pda}, signerSeeds)
		return err
	}

	if inv.SupportsPrefundedCreate() {
		topUp := saturatingSub(required, current)
		ix := sysprog.NewCreatePrefundedAccountInstruction(payer.Key, pda.Key, topUp, uint64(space), owner)
		_, err := inv.InvokeSigned(ix, []*runtime.AccountInfo{payer, pda}, signerSeeds)
		return err
	}

	if required > current {
		ix := sysprog.NewTransferInstruction(payer.Key, pda.Key, required-current)
		if _, err := inv.Invoke(ix, []*runtime.AccountInfo{payer, pda}); err != nil {
			return err
		}
	}
	if len(pda.Data) != space {
		ix := sysprog.NewAllocateInstruction(pda.Key, uint64(space))
		if _, err := inv.InvokeSigned(ix, []*runtime.AccountInfo{pda}, signerSeeds); err != nil {
			return err
		}
	}
	if pda.Owner != owner {
		ix := sysprog.NewAssignInstruction(pda.Key, owner)
		if _, err := inv.InvokeSigned(ix, []*runtime.AccountInfo{pda}, signerSeeds); err != nil {
			return err
		}
	}
	return nil
}

func saturatingSub(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}
