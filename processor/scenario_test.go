package processor_test

import (
	"testing"

	"ata-go/accounts"
	"ata-go/ataerr"
	"ata-go/pda"
	"ata-go/processor"
	"ata-go/runtime"
	"ata-go/simledger"

	"github.com/gagliardetto/solana-go"
)

// newMultisig builds an initialized, 355-byte multisig account requiring m of
// the given signers.
func newMultisig(t *testing.T, m uint8, signers []solana.PublicKey) []byte {
	t.Helper()
	if len(signers) > accounts.MaxMultisigSigners {
		t.Fatalf("newMultisig: %d signers exceeds MaxMultisigSigners", len(signers))
	}
	buf := make([]byte, accounts.MultisigLen)
	buf[0] = m
	buf[1] = byte(len(signers))
	buf[2] = 1 // is_initialized
	for i, s := range signers {
		off := 3 + i*32
		copy(buf[off:off+32], s[:])
	}
	return buf
}

var testProgramID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")

func newMint(decimals uint8) []byte {
	buf := make([]byte, accounts.MintLen)
	buf[44] = decimals
	buf[45] = 1 // is_initialized
	return buf
}

func fundedLedger(t *testing.T, payer solana.PublicKey, lamports uint64) *simledger.Ledger {
	t.Helper()
	l := simledger.New(true)
	l.Put(payer, simledger.Account{Lamports: lamports})
	return l
}

func TestProcessCreateNewLegacyATA(t *testing.T) {
	wallet := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	payer := solana.NewWallet().PublicKey()
	tokenProgram := solana.TokenProgramID

	l := fundedLedger(t, payer, 10_000_000_000)
	l.Put(mint, simledger.Account{Owner: tokenProgram, Data: newMint(6)})

	ataAddr, _, err := pda.FindAssociatedTokenAddress(wallet, tokenProgram, mint, testProgramID)
	if err != nil {
		t.Fatalf("FindAssociatedTokenAddress: %v", err)
	}

	accts := []*runtime.AccountInfo{
		l.AccountInfo(payer, true, true),
		l.AccountInfo(ataAddr, false, true),
		l.AccountInfo(wallet, false, false),
		l.AccountInfo(mint, false, false),
		l.AccountInfo(solana.SystemProgramID, false, false),
		l.AccountInfo(tokenProgram, false, false),
	}

	if err := processor.Entry(testProgramID, l, runtime.DefaultRent(), accts, nil); err != nil {
		t.Fatalf("Entry(Create): %v", err)
	}

	created, ok := l.Get(ataAddr)
	if !ok {
		t.Fatal("expected the ATA to exist after Create")
	}
	if created.Owner != tokenProgram {
		t.Fatalf("created ATA owner = %s, want %s", created.Owner, tokenProgram)
	}
	view, err := accounts.ParseTokenAccount(created.Data)
	if err != nil {
		t.Fatalf("ParseTokenAccount: %v", err)
	}
	if view.Owner() != wallet {
		t.Errorf("token account owner = %s, want %s", view.Owner(), wallet)
	}
	if view.Mint() != mint {
		t.Errorf("token account mint = %s, want %s", view.Mint(), mint)
	}
	if !view.IsInitialized() {
		t.Errorf("expected the created account to be initialized")
	}
}

func TestProcessCreateIdempotentOnExistingMatchingAccount(t *testing.T) {
	wallet := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	payer := solana.NewWallet().PublicKey()
	tokenProgram := solana.TokenProgramID

	l := fundedLedger(t, payer, 10_000_000_000)
	l.Put(mint, simledger.Account{Owner: tokenProgram, Data: newMint(6)})

	ataAddr, _, err := pda.FindAssociatedTokenAddress(wallet, tokenProgram, mint, testProgramID)
	if err != nil {
		t.Fatalf("FindAssociatedTokenAddress: %v", err)
	}

	accts := []*runtime.AccountInfo{
		l.AccountInfo(payer, true, true),
		l.AccountInfo(ataAddr, false, true),
		l.AccountInfo(wallet, false, false),
		l.AccountInfo(mint, false, false),
		l.AccountInfo(solana.SystemProgramID, false, false),
		l.AccountInfo(tokenProgram, false, false),
	}
	if err := processor.Entry(testProgramID, l, runtime.DefaultRent(), accts, []byte{processor.InstrCreateIdempotent}); err != nil {
		t.Fatalf("first CreateIdempotent: %v", err)
	}

	// Second call against the now-existing account must succeed without mutating it.
	accts2 := []*runtime.AccountInfo{
		l.AccountInfo(payer, true, true),
		l.AccountInfo(ataAddr, false, true),
		l.AccountInfo(wallet, false, false),
		l.AccountInfo(mint, false, false),
		l.AccountInfo(solana.SystemProgramID, false, false),
		l.AccountInfo(tokenProgram, false, false),
	}
	if err := processor.Entry(testProgramID, l, runtime.DefaultRent(), accts2, []byte{processor.InstrCreateIdempotent}); err != nil {
		t.Fatalf("idempotent replay: %v", err)
	}
}

func TestProcessCreateIdempotentRejectsWrongOwner(t *testing.T) {
	wallet := solana.NewWallet().PublicKey()
	impostor := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	payer := solana.NewWallet().PublicKey()
	tokenProgram := solana.TokenProgramID

	l := fundedLedger(t, payer, 10_000_000_000)
	l.Put(mint, simledger.Account{Owner: tokenProgram, Data: newMint(6)})

	ataAddr, _, err := pda.FindAssociatedTokenAddress(wallet, tokenProgram, mint, testProgramID)
	if err != nil {
		t.Fatalf("FindAssociatedTokenAddress: %v", err)
	}

	accts := []*runtime.AccountInfo{
		l.AccountInfo(payer, true, true),
		l.AccountInfo(ataAddr, false, true),
		l.AccountInfo(wallet, false, false),
		l.AccountInfo(mint, false, false),
		l.AccountInfo(solana.SystemProgramID, false, false),
		l.AccountInfo(tokenProgram, false, false),
	}
	if err := processor.Entry(testProgramID, l, runtime.DefaultRent(), accts, []byte{processor.InstrCreateIdempotent}); err != nil {
		t.Fatalf("first CreateIdempotent: %v", err)
	}

	// Rewrite the now-existing ATA's owner field to the impostor, then replay
	// idempotent create for the original wallet - must fail.
	existing, _ := l.Get(ataAddr)
	view, _ := accounts.ParseTokenAccount(existing.Data)
	_ = view
	badData := make([]byte, len(existing.Data))
	copy(badData, existing.Data)
	copy(badData[32:64], impostor[:])
	l.Put(ataAddr, simledger.Account{Owner: tokenProgram, Data: badData, Lamports: existing.Lamports})

	accts2 := []*runtime.AccountInfo{
		l.AccountInfo(payer, true, true),
		l.AccountInfo(ataAddr, false, true),
		l.AccountInfo(wallet, false, false),
		l.AccountInfo(mint, false, false),
		l.AccountInfo(solana.SystemProgramID, false, false),
		l.AccountInfo(tokenProgram, false, false),
	}
	err = processor.Entry(testProgramID, l, runtime.DefaultRent(), accts2, []byte{processor.InstrCreateIdempotent})
	if err == nil {
		t.Fatal("expected an error when the existing ATA belongs to a different wallet")
	}
	if code, ok := ataerr.As(err); !ok || code != ataerr.IllegalOwner {
		t.Fatalf("expected ataerr.IllegalOwner, got %v (code=%v ok=%v)", err, code, ok)
	}
}

func TestProcessCreateRejectsNonCanonicalBump(t *testing.T) {
	wallet := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	payer := solana.NewWallet().PublicKey()
	tokenProgram := solana.TokenProgramID

	l := fundedLedger(t, payer, 10_000_000_000)
	l.Put(mint, simledger.Account{Owner: tokenProgram, Data: newMint(6)})

	seeds := [][]byte{wallet[:], tokenProgram[:], mint[:]}
	ataAddr, canonicalBump, err := pda.FindCanonical(seeds, testProgramID)
	if err != nil {
		t.Fatalf("FindCanonical: %v", err)
	}
	if canonicalBump == 0 {
		t.Skip("canonical bump is 0, no lower bump to probe")
	}
	claimedBump := canonicalBump - 1

	accts := []*runtime.AccountInfo{
		l.AccountInfo(payer, true, true),
		l.AccountInfo(ataAddr, false, true),
		l.AccountInfo(wallet, false, false),
		l.AccountInfo(mint, false, false),
		l.AccountInfo(solana.SystemProgramID, false, false),
		l.AccountInfo(tokenProgram, false, false),
	}
	err = processor.Entry(testProgramID, l, runtime.DefaultRent(), accts, []byte{processor.InstrCreate, claimedBump})
	if err == nil {
		t.Fatal("expected an error for a claimed bump below the canonical one")
	}
	if code, ok := ataerr.As(err); !ok || code != ataerr.InvalidInstructionData {
		t.Fatalf("expected ataerr.InvalidInstructionData, got %v (code=%v ok=%v)", err, code, ok)
	}
}

func TestProcessCreateRejectsOnCurveClaimedAddress(t *testing.T) {
	wallet := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	payer := solana.NewWallet().PublicKey()
	tokenProgram := solana.TokenProgramID

	l := fundedLedger(t, payer, 10_000_000_000)
	l.Put(mint, simledger.Account{Owner: tokenProgram, Data: newMint(6)})

	seeds := [][]byte{wallet[:], tokenProgram[:], mint[:]}
	_, canonicalBump, err := pda.FindCanonical(seeds, testProgramID)
	if err != nil {
		t.Fatalf("FindCanonical: %v", err)
	}
	if canonicalBump == 255 {
		t.Skip("canonical bump is 255, no higher bump to claim")
	}
	// Every bump above the canonical one is on-curve by definition, and
	// canonicalBump+1 is the lowest such bump, so it's both on-curve and has
	// no higher off-curve alternative to trip the non-canonical-bump check
	// first.
	claimedBump := canonicalBump + 1
	onCurveAddr, err := pda.Derive(seeds, claimedBump, testProgramID)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}

	accts := []*runtime.AccountInfo{
		l.AccountInfo(payer, true, true),
		l.AccountInfo(onCurveAddr, false, true),
		l.AccountInfo(wallet, false, false),
		l.AccountInfo(mint, false, false),
		l.AccountInfo(solana.SystemProgramID, false, false),
		l.AccountInfo(tokenProgram, false, false),
	}
	err = processor.Entry(testProgramID, l, runtime.DefaultRent(), accts, []byte{processor.InstrCreate, claimedBump})
	if err == nil {
		t.Fatal("expected an error for an on-curve claimed address")
	}
	if code, ok := ataerr.As(err); !ok || code != ataerr.InvalidSeeds {
		t.Fatalf("expected ataerr.InvalidSeeds, got %v (code=%v ok=%v)", err, code, ok)
	}
}

func TestProcessRecoverNestedMultisig(t *testing.T) {
	tokenProgram := solana.TokenProgramID
	payer := solana.NewWallet().PublicKey()
	ownerMint := solana.NewWallet().PublicKey()
	nestedMint := solana.NewWallet().PublicKey()
	walletMultisig := solana.NewWallet().PublicKey()
	s1 := solana.NewWallet().PublicKey()
	s2 := solana.NewWallet().PublicKey()
	s3 := solana.NewWallet().PublicKey()

	buildLedger := func(t *testing.T) (*simledger.Ledger, solana.PublicKey, solana.PublicKey, solana.PublicKey) {
		t.Helper()
		l := fundedLedger(t, payer, 10_000_000_000)
		l.Put(ownerMint, simledger.Account{Owner: tokenProgram, Data: newMint(6)})
		l.Put(nestedMint, simledger.Account{Owner: tokenProgram, Data: newMint(9)})
		l.Put(walletMultisig, simledger.Account{Owner: tokenProgram, Data: newMultisig(t, 2, []solana.PublicKey{s1, s2, s3})})

		ownerATA, _, err := pda.FindAssociatedTokenAddress(walletMultisig, tokenProgram, ownerMint, testProgramID)
		if err != nil {
			t.Fatalf("owner ATA: %v", err)
		}
		nestedATA, _, err := pda.FindAssociatedTokenAddress(ownerATA, tokenProgram, nestedMint, testProgramID)
		if err != nil {
			t.Fatalf("nested ATA: %v", err)
		}
		destATA, _, err := pda.FindAssociatedTokenAddress(walletMultisig, tokenProgram, nestedMint, testProgramID)
		if err != nil {
			t.Fatalf("destination ATA: %v", err)
		}

		for _, step := range []struct{ mint, ata solana.PublicKey }{
			{ownerMint, ownerATA},
			{nestedMint, destATA},
		} {
			accts := []*runtime.AccountInfo{
				l.AccountInfo(payer, true, true),
				l.AccountInfo(step.ata, false, true),
				l.AccountInfo(walletMultisig, false, false),
				l.AccountInfo(step.mint, false, false),
				l.AccountInfo(solana.SystemProgramID, false, false),
				l.AccountInfo(tokenProgram, false, false),
			}
			if err := processor.Entry(testProgramID, l, runtime.DefaultRent(), accts, nil); err != nil {
				t.Fatalf("setup Create for %s: %v", step.mint, err)
			}
		}
		nestedAccts := []*runtime.AccountInfo{
			l.AccountInfo(payer, true, true),
			l.AccountInfo(nestedATA, false, true),
			l.AccountInfo(ownerATA, false, false),
			l.AccountInfo(nestedMint, false, false),
			l.AccountInfo(solana.SystemProgramID, false, false),
			l.AccountInfo(tokenProgram, false, false),
		}
		if err := processor.Entry(testProgramID, l, runtime.DefaultRent(), nestedAccts, nil); err != nil {
			t.Fatalf("setup Create for nested ATA: %v", err)
		}

		nestedState, _ := l.Get(nestedATA)
		funded := make([]byte, len(nestedState.Data))
		copy(funded, nestedState.Data)
		funded[64] = 100
		l.Put(nestedATA, simledger.Account{Owner: nestedState.Owner, Data: funded, Lamports: nestedState.Lamports})

		return l, ownerATA, nestedATA, destATA
	}

	recoverWith := func(t *testing.T, signers ...solana.PublicKey) error {
		l, ownerATA, nestedATA, destATA := buildLedger(t)
		accts := []*runtime.AccountInfo{
			l.AccountInfo(nestedATA, false, true),
			l.AccountInfo(nestedMint, false, false),
			l.AccountInfo(destATA, false, true),
			l.AccountInfo(ownerATA, false, false),
			l.AccountInfo(ownerMint, false, false),
			l.AccountInfo(walletMultisig, false, false),
			l.AccountInfo(tokenProgram, false, false),
		}
		for _, s := range signers {
			accts = append(accts, l.AccountInfo(s, true, false))
		}
		return processor.Entry(testProgramID, l, runtime.DefaultRent(), accts, []byte{processor.InstrRecoverNested})
	}

	if err := recoverWith(t, s1, s2); err != nil {
		t.Fatalf("2-of-3 (S1, S2) should satisfy the multisig threshold: %v", err)
	}

	err := recoverWith(t, s1)
	if err == nil {
		t.Fatal("expected an error when only 1 of 3 required signers is supplied")
	}
	if code, ok := ataerr.As(err); !ok || code != ataerr.MissingRequiredSignature {
		t.Fatalf("expected ataerr.MissingRequiredSignature, got %v (code=%v ok=%v)", err, code, ok)
	}
}

func TestProcessRecoverNested(t *testing.T) {
	wallet := solana.NewWallet().PublicKey()
	payer := solana.NewWallet().PublicKey()
	tokenProgram := solana.TokenProgramID
	ownerMint := solana.NewWallet().PublicKey()
	nestedMint := solana.NewWallet().PublicKey()

	l := fundedLedger(t, payer, 10_000_000_000)
	l.Put(ownerMint, simledger.Account{Owner: tokenProgram, Data: newMint(6)})
	l.Put(nestedMint, simledger.Account{Owner: tokenProgram, Data: newMint(9)})

	ownerATA, ownerBump, err := pda.FindAssociatedTokenAddress(wallet, tokenProgram, ownerMint, testProgramID)
	if err != nil {
		t.Fatalf("owner ATA: %v", err)
	}
	nestedATA, _, err := pda.FindAssociatedTokenAddress(ownerATA, tokenProgram, nestedMint, testProgramID)
	if err != nil {
		t.Fatalf("nested ATA: %v", err)
	}
	destATA, _, err := pda.FindAssociatedTokenAddress(wallet, tokenProgram, nestedMint, testProgramID)
	if err != nil {
		t.Fatalf("destination ATA: %v", err)
	}
	_ = ownerBump

	// Create the owner ATA and the destination ATA via normal Create first.
	for _, step := range []struct{ mint, ata solana.PublicKey }{
		{ownerMint, ownerATA},
		{nestedMint, destATA},
	} {
		accts := []*runtime.AccountInfo{
			l.AccountInfo(payer, true, true),
			l.AccountInfo(step.ata, false, true),
			l.AccountInfo(wallet, false, false),
			l.AccountInfo(step.mint, false, false),
			l.AccountInfo(solana.SystemProgramID, false, false),
			l.AccountInfo(tokenProgram, false, false),
		}
		if err := processor.Entry(testProgramID, l, runtime.DefaultRent(), accts, nil); err != nil {
			t.Fatalf("setup Create for %s: %v", step.mint, err)
		}
	}

	// Create the nested ATA owned by the owner ATA (not the wallet directly).
	nestedAccts := []*runtime.AccountInfo{
		l.AccountInfo(payer, true, true),
		l.AccountInfo(nestedATA, false, true),
		l.AccountInfo(ownerATA, false, false),
		l.AccountInfo(nestedMint, false, false),
		l.AccountInfo(solana.SystemProgramID, false, false),
		l.AccountInfo(tokenProgram, false, false),
	}
	if err := processor.Entry(testProgramID, l, runtime.DefaultRent(), nestedAccts, nil); err != nil {
		t.Fatalf("setup Create for nested ATA: %v", err)
	}

	// Fund the nested ATA with a balance to recover.
	nestedState, _ := l.Get(nestedATA)
	dataWithBalance := make([]byte, len(nestedState.Data))
	copy(dataWithBalance, nestedState.Data)
	dataWithBalance[64] = 42 // amount LE, low byte
	l.Put(nestedATA, simledger.Account{Owner: nestedState.Owner, Data: dataWithBalance, Lamports: nestedState.Lamports})

	recoverAccts := []*runtime.AccountInfo{
		l.AccountInfo(nestedATA, false, true),
		l.AccountInfo(nestedMint, false, false),
		l.AccountInfo(destATA, false, true),
		l.AccountInfo(ownerATA, false, false),
		l.AccountInfo(ownerMint, false, false),
		l.AccountInfo(wallet, true, false),
		l.AccountInfo(tokenProgram, false, false),
	}
	if err := processor.Entry(testProgramID, l, runtime.DefaultRent(), recoverAccts, []byte{processor.InstrRecoverNested}); err != nil {
		t.Fatalf("Entry(RecoverNested): %v", err)
	}

	destState, _ := l.Get(destATA)
	destView, err := accounts.ParseTokenAccount(destState.Data)
	if err != nil {
		t.Fatalf("ParseTokenAccount(dest): %v", err)
	}
	if destView.Amount() != 42 {
		t.Errorf("destination amount = %d, want 42", destView.Amount())
	}

	nestedAfter, ok := l.Get(nestedATA)
	if !ok {
		t.Fatal("nested ATA entry vanished from the ledger")
	}
	if nestedAfter.Lamports != 0 {
		t.Errorf("nested ATA lamports = %d, want 0 after close", nestedAfter.Lamports)
	}
}
