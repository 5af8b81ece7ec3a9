// Package tokenprog hand-encodes the handful of SPL Token / Token-2022
// instructions the ATA program issues via CPI: InitializeAccount3,
// InitializeImmutableOwner, TransferChecked, CloseAccount, and
// GetAccountDataSize. These are built from fixed-size arrays rather than a
// growable buffer, and deliberately not routed through solana-go's own
// client-facing token instruction builders - those assume a wallet signing a
// top-level transaction, whereas here the calling program is itself the
// "signer" via PDA seeds passed to InvokeSigned.
package tokenprog

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Instruction discriminators, matching the SPL Token / Token-2022 program's
// TokenInstruction enum.
const (
	discCloseAccount              byte = 9
	discTransferChecked           byte = 12
	discInitializeAccount3        byte = 18
	discGetAccountDataSize        byte = 21
	discInitializeImmutableOwner  byte = 22
)

// NewInitializeAccount3Instruction builds the instruction that turns an
// allocated, program-owned account into an initialized token account bound
// to mint and owned by owner. Unlike InitializeAccount/2, it takes no rent
// sysvar account.
func NewInitializeAccount3Instruction(tokenProgram, account, mint, owner solana.PublicKey) solana.Instruction {
	var data [33]byte
	data[0] = discInitializeAccount3
	copy(data[1:], owner[:])

	metas := solana.AccountMetaSlice{
		solana.Meta(account).WRITE(),
		solana.Meta(mint),
	}
	return solana.NewInstruction(tokenProgram, metas, data[:])
}

// NewInitializeImmutableOwnerInstruction marks account's owner as
// unreassignable. Token-2022 only; must be issued before InitializeAccount3.
func NewInitializeImmutableOwnerInstruction(tokenProgram, account solana.PublicKey) solana.Instruction {
	data := []byte{discInitializeImmutableOwner}
	metas := solana.AccountMetaSlice{solana.Meta(account).WRITE()}
	return solana.NewInstruction(tokenProgram, metas, data)
}

// NewTransferCheckedInstruction moves amount (with decimals asserted against
// the mint) from source to destination, authorized by authority.
func NewTransferCheckedInstruction(tokenProgram, source, mint, destination, authority solana.PublicKey, amount uint64, decimals uint8) solana.Instruction {
	var data [10]byte
	data[0] = discTransferChecked
	binary.LittleEndian.PutUint64(data[1:9], amount)
	data[9] = decimals

	metas := solana.AccountMetaSlice{
		solana.Meta(source).WRITE(),
		solana.Meta(mint),
		solana.Meta(destination).WRITE(),
		solana.Meta(authority).SIGNER(),
	}
	return solana.NewInstruction(tokenProgram, metas, data[:])
}

// NewCloseAccountInstruction closes account, sending its lamports to
// destination, authorized by authority.
func NewCloseAccountInstruction(tokenProgram, account, destination, authority solana.PublicKey) solana.Instruction {
	data := []byte{discCloseAccount}
	metas := solana.AccountMetaSlice{
		solana.Meta(account).WRITE(),
		solana.Meta(destination).WRITE(),
		solana.Meta(authority).SIGNER(),
	}
	return solana.NewInstruction(tokenProgram, metas, data)
}

// NewGetAccountDataSizeInstruction asks the token program how large an
// account must be to hold mint, optionally requesting one extra extension
// type be sized in (0 means "just the extensions already on the mint").
func NewGetAccountDataSizeInstruction(tokenProgram, mint solana.PublicKey, extraExtensionType uint16) solana.Instruction {
	var data [3]byte
	data[0] = discGetAccountDataSize
	binary.LittleEndian.PutUint16(data[1:3], extraExtensionType)

	metas := solana.AccountMetaSlice{solana.Meta(mint)}
	return solana.NewInstruction(tokenProgram, metas, data[:])
}
