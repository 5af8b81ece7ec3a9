package main

import (
	"fmt"

	"ata-go/accounts"
	"ata-go/ataerr"
	"ata-go/pda"
	"ata-go/processor"
	"ata-go/runtime"
	"ata-go/simledger"
	"ata-go/sizing"

	"github.com/gagliardetto/solana-go"
)

// AccountRow is one line of a scenario's before/after table: a labeled
// account key plus a human-readable snapshot of its state at each point.
type AccountRow struct {
	Label  string
	Key    solana.PublicKey
	Before string
	After  string
}

// ScenarioResult is what a scenario reports back to the CLI/TUI layer for
// rendering, independent of whether the scenario's outcome was success or a
// specific expected error.
type ScenarioResult struct {
	Name    string
	Summary string
	Rows    []AccountRow
	Err     error
}

// Scenario describes one of spec.md §8's seven named scenarios.
type Scenario struct {
	Number      int
	Title       string
	Description string
	Run         func() ScenarioResult
}

// Scenarios lists all seven in order; ScenariosByNumber looks one up.
var Scenarios = []Scenario{
	{1, "Create on empty", "fresh ATA slot, legacy SPL token program", scenarioCreateOnEmpty},
	{2, "Create idempotent on existing", "CreateIdempotent replayed against an account Create already produced", scenarioCreateIdempotentExisting},
	{3, "Create non-canonical bump", "a bump below the canonical one is rejected because a higher bump derives off-curve", scenarioNonCanonicalBump},
	{4, "Create on-curve claimed address", "a bump that derives an on-curve address is always rejected", scenarioOnCurveClaimedAddress},
	{5, "Recover nested, single signer", "wallet signs directly to recover a nested ATA's balance", scenarioRecoverSingleSigner},
	{6, "Recover nested, multisig (2-of-3)", "wallet is a multisig; 2 signers succeed, 1 signer fails", scenarioRecoverMultisig},
	{7, "Extended mint sizing", "TransferFeeConfig + NonTransferable inline size is 170 + 12 + 4 = 186", scenarioExtendedMintSizing},
}

func ScenariosByNumber(n int) (Scenario, bool) {
	for _, s := range Scenarios {
		if s.Number == n {
			return s, true
		}
	}
	return Scenario{}, false
}

func describeAccount(key solana.PublicKey, acc simledger.Account) string {
	if len(acc.Data) == 0 {
		return fmt.Sprintf("owner=%s lamports=%d (empty)", Addr(acc.Owner).String(), acc.Lamports)
	}
	if view, err := accounts.ParseTokenAccount(acc.Data); err == nil {
		return fmt.Sprintf("token owner=%s mint=%s amount=%d state=%d lamports=%d len=%d",
			Addr(view.Owner()).String(), Addr(view.Mint()).String(), view.Amount(), view.State(), acc.Lamports, len(acc.Data))
	}
	return fmt.Sprintf("owner=%s lamports=%d len=%d", Addr(acc.Owner).String(), acc.Lamports, len(acc.Data))
}

func snapshotRow(l *simledger.Ledger, label string, key solana.PublicKey, before string) AccountRow {
	acc, _ := l.Get(key)
	return AccountRow{Label: label, Key: key, Before: before, After: describeAccount(key, acc)}
}

func emptySnapshot(l *simledger.Ledger, key solana.PublicKey) string {
	acc, ok := l.Get(key)
	if !ok {
		return "absent"
	}
	return describeAccount(key, acc)
}

const demoProgramID = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"

func programID() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(demoProgramID)
}

func createAccounts(l *simledger.Ledger, payer, ata, wallet, mint, systemProgram, tokenProgram solana.PublicKey) []*runtime.AccountInfo {
	return []*runtime.AccountInfo{
		l.AccountInfo(payer, true, true),
		l.AccountInfo(ata, false, true),
		l.AccountInfo(wallet, false, false),
		l.AccountInfo(mint, false, false),
		l.AccountInfo(systemProgram, false, false),
		l.AccountInfo(tokenProgram, false, false),
	}
}

func scenarioCreateOnEmpty() ScenarioResult {
	pid := programID()
	wallet := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	payer := solana.NewWallet().PublicKey()
	tokenProgram := solana.TokenProgramID

	l := simledger.New(true)
	l.Put(payer, simledger.Account{Lamports: 3_000_000_000})
	l.Put(mint, simledger.Account{Owner: tokenProgram, Data: newMintData(6)})

	ata, _, err := pda.FindAssociatedTokenAddress(wallet, tokenProgram, mint, pid)
	if err != nil {
		return ScenarioResult{Name: "Create on empty", Err: err}
	}
	before := emptySnapshot(l, ata)
	accts := createAccounts(l, payer, ata, wallet, mint, solana.SystemProgramID, tokenProgram)
	runErr := processor.Entry(pid, l, runtime.DefaultRent(), accts, nil)

	summary := "ATA created: owned by token program, 165 bytes, state=Initialized"
	if runErr != nil {
		summary = fmt.Sprintf("unexpected failure: %v", runErr)
	}
	return ScenarioResult{
		Name:    "Create on empty",
		Summary: summary,
		Rows:    []AccountRow{snapshotRow(l, "ata", ata, before)},
		Err:     runErr,
	}
}

func scenarioCreateIdempotentExisting() ScenarioResult {
	pid := programID()
	wallet := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	payer := solana.NewWallet().PublicKey()
	tokenProgram := solana.TokenProgramID

	l := simledger.New(true)
	l.Put(payer, simledger.Account{Lamports: 3_000_000_000})
	l.Put(mint, simledger.Account{Owner: tokenProgram, Data: newMintData(6)})

	ata, _, err := pda.FindAssociatedTokenAddress(wallet, tokenProgram, mint, pid)
	if err != nil {
		return ScenarioResult{Name: "Create idempotent on existing", Err: err}
	}

	first := createAccounts(l, payer, ata, wallet, mint, solana.SystemProgramID, tokenProgram)
	if err := processor.Entry(pid, l, runtime.DefaultRent(), first, []byte{processor.InstrCreateIdempotent}); err != nil {
		return ScenarioResult{Name: "Create idempotent on existing", Err: err}
	}
	before := emptySnapshot(l, ata)

	second := createAccounts(l, payer, ata, wallet, mint, solana.SystemProgramID, tokenProgram)
	runErr := processor.Entry(pid, l, runtime.DefaultRent(), second, []byte{processor.InstrCreateIdempotent})

	summary := "replay succeeded, account unchanged"
	if runErr != nil {
		summary = fmt.Sprintf("unexpected failure: %v", runErr)
	}
	return ScenarioResult{
		Name:    "Create idempotent on existing",
		Summary: summary,
		Rows:    []AccountRow{snapshotRow(l, "ata", ata, before)},
		Err:     runErr,
	}
}

func scenarioNonCanonicalBump() ScenarioResult {
	pid := programID()
	wallet := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	payer := solana.NewWallet().PublicKey()
	tokenProgram := solana.TokenProgramID

	l := simledger.New(true)
	l.Put(payer, simledger.Account{Lamports: 3_000_000_000})
	l.Put(mint, simledger.Account{Owner: tokenProgram, Data: newMintData(6)})

	seeds := [][]byte{wallet[:], tokenProgram[:], mint[:]}
	ata, canonicalBump, err := pda.FindCanonical(seeds, pid)
	if err != nil {
		return ScenarioResult{Name: "Create non-canonical bump", Err: err}
	}
	claimedBump := canonicalBump - 1 // a lower bump: the canonical one is always a higher, off-curve alternative

	before := emptySnapshot(l, ata)
	accts := createAccounts(l, payer, ata, wallet, mint, solana.SystemProgramID, tokenProgram)
	runErr := processor.Entry(pid, l, runtime.DefaultRent(), accts, []byte{processor.InstrCreate, claimedBump})

	code, _ := ataerr.As(runErr)
	summary := fmt.Sprintf("rejected as expected: %s", code)
	if runErr == nil {
		summary = "unexpected success: non-canonical bump was accepted"
	} else if code != ataerr.InvalidInstructionData {
		summary = fmt.Sprintf("rejected, but with unexpected code %s", code)
	}
	return ScenarioResult{
		Name:    "Create non-canonical bump",
		Summary: summary,
		Rows:    []AccountRow{snapshotRow(l, "ata", ata, before)},
		Err:     runErr,
	}
}

func scenarioOnCurveClaimedAddress() ScenarioResult {
	pid := programID()
	wallet := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	payer := solana.NewWallet().PublicKey()
	tokenProgram := solana.TokenProgramID

	l := simledger.New(true)
	l.Put(payer, simledger.Account{Lamports: 3_000_000_000})
	l.Put(mint, simledger.Account{Owner: tokenProgram, Data: newMintData(6)})

	seeds := [][]byte{wallet[:], tokenProgram[:], mint[:]}
	_, canonicalBump, err := pda.FindCanonical(seeds, pid)
	if err != nil {
		return ScenarioResult{Name: "Create on-curve claimed address", Err: err}
	}
	if canonicalBump == 255 {
		return ScenarioResult{Name: "Create on-curve claimed address", Err: fmt.Errorf("canonical bump is 255, no higher bump to claim")}
	}
	// Every bump above the canonical one is on-curve by definition (the
	// canonical bump is the highest off-curve bump), so canonicalBump+1 is
	// guaranteed both on-curve and free of any higher off-curve alternative -
	// the latter matters because a higher off-curve bump would instead trip
	// the non-canonical-bump rejection before this address is even examined.
	onCurveBump := canonicalBump + 1
	onCurveAddr, err := pda.Derive(seeds, onCurveBump, pid)
	if err != nil {
		return ScenarioResult{Name: "Create on-curve claimed address", Err: err}
	}

	before := emptySnapshot(l, onCurveAddr)
	accts := createAccounts(l, payer, onCurveAddr, wallet, mint, solana.SystemProgramID, tokenProgram)
	runErr := processor.Entry(pid, l, runtime.DefaultRent(), accts, []byte{processor.InstrCreate, onCurveBump})

	code, _ := ataerr.As(runErr)
	summary := fmt.Sprintf("rejected as expected: %s", code)
	if runErr == nil {
		summary = "unexpected success: on-curve address was accepted"
	} else if code != ataerr.InvalidSeeds {
		summary = fmt.Sprintf("rejected, but with unexpected code %s", code)
	}
	return ScenarioResult{
		Name:    "Create on-curve claimed address",
		Summary: summary,
		Rows:    []AccountRow{snapshotRow(l, "claimed address", onCurveAddr, before)},
		Err:     runErr,
	}
}

func scenarioRecoverSingleSigner() ScenarioResult {
	pid := programID()
	wallet := solana.NewWallet().PublicKey()
	payer := solana.NewWallet().PublicKey()
	tokenProgram := solana.TokenProgramID
	ownerMint := solana.NewWallet().PublicKey()
	nestedMint := solana.NewWallet().PublicKey()

	l := simledger.New(true)
	l.Put(payer, simledger.Account{Lamports: 3_000_000_000})
	l.Put(ownerMint, simledger.Account{Owner: tokenProgram, Data: newMintData(6)})
	l.Put(nestedMint, simledger.Account{Owner: tokenProgram, Data: newMintData(9)})

	ownerATA, _, err := pda.FindAssociatedTokenAddress(wallet, tokenProgram, ownerMint, pid)
	if err != nil {
		return ScenarioResult{Name: "Recover nested, single signer", Err: err}
	}
	nestedATA, _, err := pda.FindAssociatedTokenAddress(ownerATA, tokenProgram, nestedMint, pid)
	if err != nil {
		return ScenarioResult{Name: "Recover nested, single signer", Err: err}
	}
	destATA, _, err := pda.FindAssociatedTokenAddress(wallet, tokenProgram, nestedMint, pid)
	if err != nil {
		return ScenarioResult{Name: "Recover nested, single signer", Err: err}
	}

	for _, step := range []struct{ mint, ata, ownerKey solana.PublicKey }{
		{ownerMint, ownerATA, wallet},
		{nestedMint, destATA, wallet},
	} {
		accts := createAccounts(l, payer, step.ata, step.ownerKey, step.mint, solana.SystemProgramID, tokenProgram)
		if err := processor.Entry(pid, l, runtime.DefaultRent(), accts, nil); err != nil {
			return ScenarioResult{Name: "Recover nested, single signer", Err: fmt.Errorf("setup: %w", err)}
		}
	}
	nestedAccts := createAccounts(l, payer, nestedATA, ownerATA, nestedMint, solana.SystemProgramID, tokenProgram)
	if err := processor.Entry(pid, l, runtime.DefaultRent(), nestedAccts, nil); err != nil {
		return ScenarioResult{Name: "Recover nested, single signer", Err: fmt.Errorf("setup nested: %w", err)}
	}

	nestedState, _ := l.Get(nestedATA)
	funded := make([]byte, len(nestedState.Data))
	copy(funded, nestedState.Data)
	funded[64] = 100
	l.Put(nestedATA, simledger.Account{Owner: nestedState.Owner, Data: funded, Lamports: nestedState.Lamports})

	beforeNested := emptySnapshot(l, nestedATA)
	beforeDest := emptySnapshot(l, destATA)

	recoverAccts := []*runtime.AccountInfo{
		l.AccountInfo(nestedATA, false, true),
		l.AccountInfo(nestedMint, false, false),
		l.AccountInfo(destATA, false, true),
		l.AccountInfo(ownerATA, false, false),
		l.AccountInfo(ownerMint, false, false),
		l.AccountInfo(wallet, true, false),
		l.AccountInfo(tokenProgram, false, false),
	}
	runErr := processor.Entry(pid, l, runtime.DefaultRent(), recoverAccts, []byte{processor.InstrRecoverNested})

	summary := "destination received 100, nested ATA closed, wallet reimbursed its lamports"
	if runErr != nil {
		summary = fmt.Sprintf("unexpected failure: %v", runErr)
	}
	return ScenarioResult{
		Name:    "Recover nested, single signer",
		Summary: summary,
		Rows: []AccountRow{
			snapshotRow(l, "nested ata", nestedATA, beforeNested),
			snapshotRow(l, "destination ata", destATA, beforeDest),
		},
		Err: runErr,
	}
}

func scenarioRecoverMultisig() ScenarioResult {
	pid := programID()
	payer := solana.NewWallet().PublicKey()
	tokenProgram := solana.TokenProgramID
	ownerMint := solana.NewWallet().PublicKey()
	nestedMint := solana.NewWallet().PublicKey()

	s1 := solana.NewWallet().PublicKey()
	s2 := solana.NewWallet().PublicKey()
	s3 := solana.NewWallet().PublicKey()
	walletMultisig := solana.NewWallet().PublicKey()

	buildLedger := func() (*simledger.Ledger, solana.PublicKey, solana.PublicKey, solana.PublicKey) {
		l := simledger.New(true)
		l.Put(payer, simledger.Account{Lamports: 3_000_000_000})
		l.Put(ownerMint, simledger.Account{Owner: tokenProgram, Data: newMintData(6)})
		l.Put(nestedMint, simledger.Account{Owner: tokenProgram, Data: newMintData(9)})
		l.Put(walletMultisig, simledger.Account{Owner: tokenProgram, Data: newMultisigData(2, []solana.PublicKey{s1, s2, s3})})

		ownerATA, _, _ := pda.FindAssociatedTokenAddress(walletMultisig, tokenProgram, ownerMint, pid)
		nestedATA, _, _ := pda.FindAssociatedTokenAddress(ownerATA, tokenProgram, nestedMint, pid)
		destATA, _, _ := pda.FindAssociatedTokenAddress(walletMultisig, tokenProgram, nestedMint, pid)

		for _, step := range []struct{ mint, ata solana.PublicKey }{
			{ownerMint, ownerATA},
			{nestedMint, destATA},
		} {
			accts := createAccounts(l, payer, step.ata, walletMultisig, step.mint, solana.SystemProgramID, tokenProgram)
			processor.Entry(pid, l, runtime.DefaultRent(), accts, nil)
		}
		nestedAccts := createAccounts(l, payer, nestedATA, ownerATA, nestedMint, solana.SystemProgramID, tokenProgram)
		processor.Entry(pid, l, runtime.DefaultRent(), nestedAccts, nil)

		nestedState, _ := l.Get(nestedATA)
		funded := make([]byte, len(nestedState.Data))
		copy(funded, nestedState.Data)
		funded[64] = 100
		l.Put(nestedATA, simledger.Account{Owner: nestedState.Owner, Data: funded, Lamports: nestedState.Lamports})

		return l, ownerATA, nestedATA, destATA
	}

	recoverWith := func(signers ...solana.PublicKey) error {
		l, ownerATA, nestedATA, destATA := buildLedger()
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
		return processor.Entry(pid, l, runtime.DefaultRent(), accts, []byte{processor.InstrRecoverNested})
	}

	errTwoSigners := recoverWith(s1, s2)
	errOneSigner := recoverWith(s1)

	code, _ := ataerr.As(errOneSigner)
	summary := fmt.Sprintf("2-of-3 (S1,S2) succeeded: %v; 1-of-3 (S1) rejected as %s", errTwoSigners == nil, code)
	var reportedErr error
	if errTwoSigners != nil {
		reportedErr = fmt.Errorf("2-of-3 unexpectedly failed: %w", errTwoSigners)
	} else if errOneSigner == nil || code != ataerr.MissingRequiredSignature {
		reportedErr = fmt.Errorf("1-of-3 unexpectedly did not fail with MissingRequiredSignature (got %v)", errOneSigner)
	}
	return ScenarioResult{
		Name:    "Recover nested, multisig (2-of-3)",
		Summary: summary,
		Err:     reportedErr,
	}
}

func scenarioExtendedMintSizing() ScenarioResult {
	tlv := append(
		tlvEntry(sizing.ExtensionTransferFeeConfig, make([]byte, 8)),
		tlvEntry(sizing.ExtensionNonTransferable, nil)...,
	)
	mint := newMintWithTLV(6, tlv)
	size, ok := sizing.InlineAccountSize(mint)

	const want = 170 + 12 + 4
	summary := fmt.Sprintf("inline size = %d (want %d)", size, want)
	var err error
	if !ok {
		err = fmt.Errorf("InlineAccountSize could not resolve this extension set")
	} else if size != want {
		err = fmt.Errorf("inline size = %d, want %d", size, want)
	}
	return ScenarioResult{
		Name:    "Extended mint sizing",
		Summary: summary,
		Err:     err,
	}
}
