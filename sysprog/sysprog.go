// Package sysprog hand-encodes the System Program instructions
// creation.CreatePDAAccount needs: CreateAccount, Allocate, Assign, Transfer,
// plus one runtime-specific instruction, CreatePrefundedAccount, that folds
// "top up, allocate, and assign" into a single CPI on runtimes that support
// it. CreatePrefundedAccount is not part of any real System Program; it is
// dispatched and understood only by this module's own simledger.
package sysprog

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// SystemInstruction discriminants are encoded as a 4-byte little-endian u32,
// matching the real System Program's enum encoding.
const (
	discCreateAccount         uint32 = 0
	discAssign                uint32 = 1
	discTransfer              uint32 = 2
	discAllocate              uint32 = 8
	discCreatePrefundedAccount uint32 = 1_000_000 // out of range of any real System Program variant
)

func putDisc(buf []byte, disc uint32) {
	binary.LittleEndian.PutUint32(buf[0:4], disc)
}

// NewCreateAccountInstruction allocates a new account owned by owner, funded
// from from, with from and to both required to sign (to's signature is
// satisfied via PDA seeds when invoked through InvokeSigned).
func NewCreateAccountInstruction(from, to solana.PublicKey, lamports, space uint64, owner solana.PublicKey) solana.Instruction {
	data := make([]byte, 4+8+8+32)
	putDisc(data, discCreateAccount)
	binary.LittleEndian.PutUint64(data[4:12], lamports)
	binary.LittleEndian.PutUint64(data[12:20], space)
	copy(data[20:52], owner[:])

	metas := solana.AccountMetaSlice{
		solana.Meta(from).WRITE().SIGNER(),
		solana.Meta(to).WRITE().SIGNER(),
	}
	return solana.NewInstruction(solana.SystemProgramID, metas, data)
}

// NewTransferInstruction moves lamports lamports from from to to.
func NewTransferInstruction(from, to solana.PublicKey, lamports uint64) solana.Instruction {
	data := make([]byte, 4+8)
	putDisc(data, discTransfer)
	binary.LittleEndian.PutUint64(data[4:12], lamports)

	metas := solana.AccountMetaSlice{
		solana.Meta(from).WRITE().SIGNER(),
		solana.Meta(to).WRITE(),
	}
	return solana.NewInstruction(solana.SystemProgramID, metas, data)
}

// NewAllocateInstruction resizes account's data region to space bytes.
// account must sign, directly or via PDA seeds.
func NewAllocateInstruction(account solana.PublicKey, space uint64) solana.Instruction {
	data := make([]byte, 4+8)
	putDisc(data, discAllocate)
	binary.LittleEndian.PutUint64(data[4:12], space)

	metas := solana.AccountMetaSlice{solana.Meta(account).WRITE().SIGNER()}
	return solana.NewInstruction(solana.SystemProgramID, metas, data)
}

// NewAssignInstruction changes account's owner program. account must sign,
// directly or via PDA seeds.
func NewAssignInstruction(account solana.PublicKey, owner solana.PublicKey) solana.Instruction {
	data := make([]byte, 4+32)
	putDisc(data, discAssign)
	copy(data[4:36], owner[:])

	metas := solana.AccountMetaSlice{solana.Meta(account).WRITE().SIGNER()}
	return solana.NewInstruction(solana.SystemProgramID, metas, data)
}

// NewCreatePrefundedAccountInstruction is the single-CPI fast path: transfer
// topUpLamports more into an already-funded account, allocate space, and
// assign owner, all atomically. Only simledger (and any future runtime adapter that
// advertises runtime.Invoker.SupportsPrefundedCreate) understands this
// instruction; it is never sent to a real System Program.
func NewCreatePrefundedAccountInstruction(from, to solana.PublicKey, topUpLamports, space uint64, owner solana.PublicKey) solana.Instruction {
	data := make([]byte, 4+8+8+32)
	putDisc(data, discCreatePrefundedAccount)
	binary.LittleEndian.PutUint64(data[4:12], topUpLamports)
	binary.LittleEndian.PutUint64(data[12:20], space)
	copy(data[20:52], owner[:])

	metas := solana.AccountMetaSlice{
		solana.Meta(from).WRITE().SIGNER(),
		solana.Meta(to).WRITE().SIGNER(),
	}
	return solana.NewInstruction(solana.SystemProgramID, metas, data)
}
