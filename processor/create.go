package processor

import (
	"encoding/binary"

	"ata-go/accounts"
	"ata-go/ataerr"
	"ata-go/creation"
	"ata-go/pda"
	"ata-go/runtime"
	"ata-go/sizing"
	"ata-go/tokenprog"

	"github.com/gagliardetto/solana-go"
)

const minCreateAccounts = 6

// ProcessCreate implements both Create and CreateIdempotent: derive/validate
// the ATA address, idempotently short-circuit if it already exists, size and
// create the account, then initialize it (with ImmutableOwner first, on
// Token-2022).
func ProcessCreate(programID solana.PublicKey, inv runtime.Invoker, rent runtime.Rent, accts []*runtime.AccountInfo, trailer []byte, idempotent bool) error {
	if len(accts) < minCreateAccounts {
		return ataerr.New(ataerr.NotEnoughAccountKeys, "create requires at least 6 accounts")
	}
	payer, ata, wallet, mint, systemProgram, tokenProgram := accts[0], accts[1], accts[2], accts[3], accts[4], accts[5]

	if !payer.IsSigner {
		return ataerr.New(ataerr.MissingRequiredSignature, "payer must sign")
	}

	bump, hasBump, accountLenHint, hasLenHint, err := parseCreateTrailer(trailer, idempotent)
	if err != nil {
		return err
	}

	seeds := [][]byte{wallet.Key[:], tokenProgram.Key[:], mint.Key[:]}
	var ataAddr solana.PublicKey
	if hasBump {
		ataAddr, err = pda.ValidateCanonical(seeds, programID, bump)
	} else {
		ataAddr, bump, err = pda.FindCanonical(seeds, programID)
	}
	if err != nil {
		return err
	}
	if ataAddr != ata.Key {
		return ataerr.New(ataerr.InvalidSeeds, "derived ATA address does not match the supplied account")
	}

	if idempotent && ata.Owner == tokenProgram.Key && *ata.Lamports > 0 {
		return processIdempotentExisting(ata, wallet.Key, mint.Key)
	}

	if ata.Owner != systemProgram.Key && *ata.Lamports > 0 {
		return ataerr.New(ataerr.IllegalOwner, "ATA slot is funded but not system-owned, and not a valid existing token account")
	}

	space, err := resolveAccountSpace(inv, mint, tokenProgram.Key, accountLenHint, hasLenHint)
	if err != nil {
		return err
	}

	if err := creation.CreatePDAAccount(inv, payer, rent, space, tokenProgram.Key, ata, seeds, bump); err != nil {
		return err
	}

	if tokenProgram.Key != solana.TokenProgramID {
		ix := tokenprog.NewInitializeImmutableOwnerInstruction(tokenProgram.Key, ata.Key)
		if _, err := inv.Invoke(ix, []*runtime.AccountInfo{ata}); err != nil {
			return err
		}
	}

	ix := tokenprog.NewInitializeAccount3Instruction(tokenProgram.Key, ata.Key, mint.Key, wallet.Key)
	if _, err := inv.Invoke(ix, []*runtime.AccountInfo{ata, mint}); err != nil {
		return err
	}
	return nil
}

// processIdempotentExisting handles the CreateIdempotent short-circuit: the
// ATA slot already looks like a live token account, so we only need to
// confirm it belongs to the right wallet and mint, not recreate it.
func processIdempotentExisting(ata *runtime.AccountInfo, wallet, mint solana.PublicKey) error {
	if !pda.IsOffCurve(ata.Key) {
		return ataerr.New(ataerr.InvalidSeeds, "existing ATA address is on-curve")
	}
	tok, err := accounts.ParseTokenAccount(ata.Data)
	if err != nil {
		return ataerr.Wrap(ataerr.InvalidAccountData, "existing ATA failed to parse as a token account", err)
	}
	if tok.Owner() != wallet {
		return ataerr.New(ataerr.IllegalOwner, "existing account is not owned by the expected wallet")
	}
	if tok.Mint() != mint {
		return ataerr.New(ataerr.InvalidAccountData, "existing account's mint does not match")
	}
	return nil
}

func resolveAccountSpace(inv runtime.Invoker, mint *runtime.AccountInfo, tokenProgram solana.PublicKey, hint int, hasHint bool) (int, error) {
	if hasHint {
		if hint < accounts.TokenAccountLen || hint > MaxSaneAccountLength {
			return 0, ataerr.New(ataerr.InvalidArgument, "account-length hint out of range")
		}
		return hint, nil
	}
	return sizing.TokenAccountSize(inv, mint, tokenProgram)
}

// parseCreateTrailer reads the optional bump and (Create-only) account-length
// hint that may follow the instruction discriminator.
func parseCreateTrailer(trailer []byte, idempotent bool) (bump byte, hasBump bool, accountLen int, hasLen bool, err error) {
	if len(trailer) == 0 {
		return 0, false, 0, false, nil
	}
	bump = trailer[0]
	hasBump = true
	trailer = trailer[1:]

	if idempotent {
		return bump, hasBump, 0, false, nil
	}
	if len(trailer) == 0 {
		return bump, hasBump, 0, false, nil
	}
	if len(trailer) < 2 {
		return 0, false, 0, false, ataerr.New(ataerr.InvalidInstructionData, "truncated account-length hint")
	}
	accountLen = int(binary.LittleEndian.Uint16(trailer[:2]))
	return bump, hasBump, accountLen, true, nil
}
