// Package pda implements program-derived-address arithmetic: deriving a
// candidate address from seeds, searching for the canonical (highest) bump
// that lands off the Ed25519 curve, and validating a caller-supplied address
// and bump against that search.
//
// The off-curve check is grounded on the real decompression + small-order
// test rather than a byte-pattern heuristic - see IsOffCurve.
package pda

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/gagliardetto/solana-go"
)

// marker is appended to every derivation input, exactly as a real runtime's
// program-address hash does, so a PDA can never collide with a normal
// ed25519 public key an off-chain keypair could produce.
const marker = "ProgramDerivedAddress"

const (
	// MaxSeedLength is the longest a single seed element may be.
	MaxSeedLength = 32
	// MaxSeeds is the most seed elements (including the bump) a derivation may use.
	MaxSeeds = 16
)

var errTooManySeeds = errors.New("pda: too many seed elements")

// Derive computes SHA256(seeds.. || bump || programID || "ProgramDerivedAddress").
// It performs no curve check; most callers want FindCanonical or ValidateCanonical.
func Derive(seeds [][]byte, bump byte, programID solana.PublicKey) (solana.PublicKey, error) {
	if len(seeds)+1 > MaxSeeds {
		return solana.PublicKey{}, errTooManySeeds
	}
	h := sha256.New()
	for _, s := range seeds {
		if len(s) > MaxSeedLength {
			return solana.PublicKey{}, fmt.Errorf("pda: seed length %d exceeds max %d", len(s), MaxSeedLength)
		}
		h.Write(s)
	}
	h.Write([]byte{bump})
	h.Write(programID[:])
	h.Write([]byte(marker))

	var out solana.PublicKey
	copy(out[:], h.Sum(nil))
	return out, nil
}

// IsOffCurve reports whether addr is safe to use as a PDA: either it fails to
// decompress as a valid Edwards point at all, or it decompresses to a point
// of small order (one of the eight low-order torsion points, which a private
// key could never address either). Anything else - a point in the main
// subgroup - is a real public key and must be rejected as a PDA.
func IsOffCurve(addr solana.PublicKey) bool {
	p, err := new(edwards25519.Point).SetBytes(addr[:])
	if err != nil {
		return true
	}
	return isSmallOrder(p)
}

func isSmallOrder(p *edwards25519.Point) bool {
	eightP := new(edwards25519.Point).MultByCofactor(p)
	return eightP.Equal(edwards25519.NewIdentityPoint()) == 1
}

// FindCanonical scans bumps from 255 down to 0 and returns the first address
// that lands off-curve, which is by definition the canonical bump for these
// seeds under programID.
func FindCanonical(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, byte, error) {
	for bump := 255; bump >= 0; bump-- {
		addr, err := Derive(seeds, byte(bump), programID)
		if err != nil {
			return solana.PublicKey{}, 0, err
		}
		if IsOffCurve(addr) {
			return addr, byte(bump), nil
		}
	}
	return solana.PublicKey{}, 0, errors.New("pda: unable to find a viable program address")
}

// FindAssociatedTokenAddress derives the canonical ATA for (wallet, mint)
// under the given token program and ATA program IDs.
func FindAssociatedTokenAddress(wallet, tokenProgram, mint, ataProgramID solana.PublicKey) (solana.PublicKey, byte, error) {
	return FindCanonical([][]byte{wallet[:], tokenProgram[:], mint[:]}, ataProgramID)
}
