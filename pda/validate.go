package pda

import (
	"ata-go/ataerr"

	"github.com/gagliardetto/solana-go"
)

// ValidateCanonical rederives the address for seeds with claimedBump and
// confirms two things: the derived address is actually off-curve, and no
// higher bump would also have landed off-curve. A caller that supplies a
// non-canonical (but still valid) bump is rejected - accepting it would let
// two different instructions address two different accounts for what should
// be one logical PDA.
func ValidateCanonical(seeds [][]byte, programID solana.PublicKey, claimedBump byte) (solana.PublicKey, error) {
	for b := 255; b > int(claimedBump); b-- {
		addr, err := Derive(seeds, byte(b), programID)
		if err != nil {
			return solana.PublicKey{}, err
		}
		if IsOffCurve(addr) {
			return solana.PublicKey{}, ataerr.New(ataerr.InvalidInstructionData, "bump is not canonical: a higher bump also derives off-curve")
		}
	}

	addr, err := Derive(seeds, claimedBump, programID)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if !IsOffCurve(addr) {
		return solana.PublicKey{}, ataerr.New(ataerr.InvalidSeeds, "claimed bump derives an address on the ed25519 curve")
	}
	return addr, nil
}
