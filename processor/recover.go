package processor

import (
	"ata-go/accounts"
	"ata-go/ataerr"
	"ata-go/pda"
	"ata-go/runtime"
	"ata-go/tokenprog"

	"github.com/gagliardetto/solana-go"
)

const minRecoverAccounts = 7

// ProcessRecoverNested moves a nested ATA's balance to the wallet's
// top-level ATA for the same mint, then closes the nested account. The
// nested account can only have been reached because the wallet also
// mistakenly received an ATA whose "owner" is itself an ATA - this unwinds
// exactly that mistake.
func ProcessRecoverNested(programID solana.PublicKey, inv runtime.Invoker, accts []*runtime.AccountInfo, trailer []byte) error {
	if len(accts) < minRecoverAccounts {
		return ataerr.New(ataerr.NotEnoughAccountKeys, "recover requires at least 7 accounts")
	}
	nestedATA, nestedMint, destATA, ownerATA, ownerMint, wallet, tokenProgram := accts[0], accts[1], accts[2], accts[3], accts[4], accts[5], accts[6]
	multisigSigners := accts[7:]

	ownerBump, nestedBump, destBump, hasBumps, err := parseRecoverTrailer(trailer)
	if err != nil {
		return err
	}

	ownerSeeds := [][]byte{wallet.Key[:], tokenProgram.Key[:], ownerMint.Key[:]}
	var ownerAddr solana.PublicKey
	if hasBumps {
		ownerAddr, err = pda.ValidateCanonical(ownerSeeds, programID, ownerBump)
	} else {
		ownerAddr, ownerBump, err = pda.FindCanonical(ownerSeeds, programID)
	}
	if err != nil {
		return err
	}
	if ownerAddr != ownerATA.Key {
		return ataerr.New(ataerr.InvalidSeeds, "derived owner ATA does not match the supplied account")
	}

	nestedSeeds := [][]byte{ownerATA.Key[:], tokenProgram.Key[:], nestedMint.Key[:]}
	var nestedAddr solana.PublicKey
	if hasBumps {
		nestedAddr, err = pda.ValidateCanonical(nestedSeeds, programID, nestedBump)
	} else {
		nestedAddr, _, err = pda.FindCanonical(nestedSeeds, programID)
	}
	if err != nil {
		return err
	}
	if nestedAddr != nestedATA.Key {
		return ataerr.New(ataerr.InvalidSeeds, "derived nested ATA does not match the supplied account")
	}

	destSeeds := [][]byte{wallet.Key[:], tokenProgram.Key[:], nestedMint.Key[:]}
	var destAddr solana.PublicKey
	if hasBumps {
		destAddr, err = pda.ValidateCanonical(destSeeds, programID, destBump)
	} else {
		destAddr, _, err = pda.FindCanonical(destSeeds, programID)
	}
	if err != nil {
		return err
	}
	if destAddr != destATA.Key {
		return ataerr.New(ataerr.InvalidSeeds, "derived destination ATA does not match the supplied account")
	}
	if !pda.IsOffCurve(destATA.Key) {
		return ataerr.New(ataerr.InvalidSeeds, "destination ATA is on-curve")
	}

	if ownerATA.Owner != tokenProgram.Key {
		return ataerr.New(ataerr.IllegalOwner, "owner ATA is not owned by the token program")
	}
	nestedTok, err := accounts.ParseTokenAccount(nestedATA.Data)
	if err != nil {
		return ataerr.Wrap(ataerr.InvalidAccountData, "nested ATA failed to parse", err)
	}
	if nestedATA.Owner != tokenProgram.Key {
		return ataerr.New(ataerr.IllegalOwner, "nested ATA is not owned by the token program")
	}
	if nestedTok.Owner() != ownerATA.Key {
		return ataerr.New(ataerr.IllegalOwner, "nested ATA's owner field does not match the owner ATA")
	}

	amount := nestedTok.Amount()
	nestedMintView, err := accounts.ParseMint(nestedMint.Data)
	if err != nil {
		return ataerr.Wrap(ataerr.InvalidAccountData, "nested mint failed to parse", err)
	}
	decimals := nestedMintView.Decimals()

	if err := checkRecoverSigner(wallet, tokenProgram.Key, multisigSigners); err != nil {
		return err
	}

	signerSeeds := [][][]byte{runtime.SeedsForBump(ownerSeeds, ownerBump)}

	transferIx := tokenprog.NewTransferCheckedInstruction(tokenProgram.Key, nestedATA.Key, nestedMint.Key, destATA.Key, ownerATA.Key, amount, decimals)
	if _, err := inv.InvokeSigned(transferIx, []*runtime.AccountInfo{nestedATA, nestedMint, destATA, ownerATA}, signerSeeds); err != nil {
		return err
	}

	closeIx := tokenprog.NewCloseAccountInstruction(tokenProgram.Key, nestedATA.Key, wallet.Key, ownerATA.Key)
	if _, err := inv.InvokeSigned(closeIx, []*runtime.AccountInfo{nestedATA, wallet, ownerATA}, signerSeeds); err != nil {
		return err
	}
	return nil
}

// checkRecoverSigner accepts a directly-signing wallet, or a multisig wallet
// whose configured threshold is met by the is_signer accounts trailing the
// fixed account list.
func checkRecoverSigner(wallet *runtime.AccountInfo, tokenProgram solana.PublicKey, multisigSigners []*runtime.AccountInfo) error {
	if wallet.IsSigner {
		return nil
	}
	if wallet.Owner != tokenProgram {
		return ataerr.New(ataerr.MissingRequiredSignature, "wallet did not sign and is not a multisig")
	}
	ms, err := accounts.ParseMultisig(wallet.Data)
	if err != nil {
		return err
	}
	presented := make([]solana.PublicKey, 0, len(multisigSigners))
	for _, s := range multisigSigners {
		if s.IsSigner {
			presented = append(presented, s.Key)
		}
	}
	if ms.CountValidSigners(presented) < int(ms.M()) {
		return ataerr.New(ataerr.MissingRequiredSignature, "multisig signature threshold not met")
	}
	return nil
}

// parseRecoverTrailer reads the optional (owner_bump, nested_bump, dest_bump)
// triple, which must be all-or-none.
func parseRecoverTrailer(trailer []byte) (ownerBump, nestedBump, destBump byte, ok bool, err error) {
	if len(trailer) == 0 {
		return 0, 0, 0, false, nil
	}
	if len(trailer) != 3 {
		return 0, 0, 0, false, ataerr.New(ataerr.InvalidInstructionData, "bump hints must supply all three bumps or none")
	}
	return trailer[0], trailer[1], trailer[2], true, nil
}
