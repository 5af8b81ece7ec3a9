// Package runtime models the narrow slice of the execution environment the
// processor needs: account state, cross-program invocation, and the rent
// sysvar. It exists because this module cannot execute real BPF/SBF bytecode;
// simledger supplies the only concrete Invoker in this repository, but the
// processor package is written against this interface so a future in-cluster
// adapter (talking to a validator over RPC) can be dropped in without
// touching processor logic.
package runtime

import "github.com/gagliardetto/solana-go"

// AccountInfo is the Go analogue of a borrowed account view during instruction
// processing. Lamports and Data are shared by pointer/slice so that a CPI
// invoked through Invoker is observed by the caller without an explicit
// re-fetch, matching how account data is mutated in place on a real runtime.
type AccountInfo struct {
	Key        solana.PublicKey
	Owner      solana.PublicKey
	Lamports   *uint64
	Data       []byte
	IsSigner   bool
	IsWritable bool
	Executable bool
}

// SeedsForBump returns seeds with the bump byte appended as the final seed
// element, the form InvokeSigned expects for each PDA signer.
func SeedsForBump(seeds [][]byte, bump byte) [][]byte {
	out := make([][]byte, len(seeds)+1)
	copy(out, seeds)
	out[len(seeds)] = []byte{bump}
	return out
}

// Invoker performs cross-program invocations on behalf of the calling program.
// InvokeSigned additionally asserts PDA authority over signerSeeds; each entry
// of signerSeeds is one PDA's seed list including the trailing bump byte,
// which callers append via SeedsForBump.
//
// Both methods return any data the callee wrote via sol_set_return_data, or
// nil if the callee did not set any.
type Invoker interface {
	Invoke(ix solana.Instruction, accounts []*AccountInfo) ([]byte, error)
	InvokeSigned(ix solana.Instruction, accounts []*AccountInfo, signerSeeds [][][]byte) ([]byte, error)

	// SupportsPrefundedCreate reports whether the host runtime exposes the
	// single-instruction "top up and create" system program fast path. When
	// false, creation.CreatePDAAccount falls back to the three-step
	// transfer/allocate/assign sequence.
	SupportsPrefundedCreate() bool
}

// Rent models the rent sysvar's only method this program needs.
type Rent struct {
	LamportsPerByteYear float64
	ExemptionThreshold  float64
	AccountOverheadSize int
}

// DefaultRent mirrors the rent parameters a mainnet-beta cluster has used
// since rent collection was disabled: ~3,480 lamports per byte-year at a
// 2-year exemption threshold, plus a 128-byte fixed account overhead.
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: 3480,
		ExemptionThreshold:  2.0,
		AccountOverheadSize: 128,
	}
}

// MinimumBalance returns the lamport balance an account of the given size
// must hold to be exempt from rent.
func (r Rent) MinimumBalance(space int) uint64 {
	bytes := float64(space + r.AccountOverheadSize)
	return uint64(bytes * r.LamportsPerByteYear * r.ExemptionThreshold)
}
