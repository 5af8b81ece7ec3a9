// Package simledger is a minimal in-memory stand-in for a cluster: an
// account map plus a runtime.Invoker that recognizes exactly the CPI targets
// this program issues (the system program's CreateAccount / Allocate /
// Assign / Transfer / CreatePrefundedAccount, and the token program's
// InitializeAccount3 / InitializeImmutableOwner / TransferChecked /
// CloseAccount / GetAccountDataSize). It is deliberately not a general VM:
// anything outside that CPI surface returns an error rather than being
// silently accepted.
package simledger

import (
	"encoding/binary"
	"fmt"

	"ata-go/accounts"
	"ata-go/ataerr"
	"ata-go/runtime"
	"ata-go/sysprog"
	"ata-go/tokenprog"

	"github.com/gagliardetto/solana-go"
)

// Account is the ledger's owned copy of one account's state.
type Account struct {
	Owner      solana.PublicKey
	Lamports   uint64
	Data       []byte
	Executable bool
}

// Ledger is a single-threaded account store. It is not safe for concurrent
// invocations, matching the single-worker execution model the processor
// itself assumes.
type Ledger struct {
	accounts             map[solana.PublicKey]*Account
	supportsPrefunded    bool
	tokenProgramID       solana.PublicKey
	token2022ProgramID   solana.PublicKey
}

// New creates an empty ledger. supportsPrefundedCreate controls whether
// creation.CreatePDAAccount takes the single-CPI fast path or the
// transfer/allocate/assign fallback when topping up a prefunded PDA -
// exercising both code paths from the same processor call is the point of
// making this configurable.
func New(supportsPrefundedCreate bool) *Ledger {
	return &Ledger{
		accounts:           make(map[solana.PublicKey]*Account),
		supportsPrefunded:  supportsPrefundedCreate,
		tokenProgramID:     solana.TokenProgramID,
		token2022ProgramID: solana.Token2022ProgramID,
	}
}

// Put seeds the ledger with an account, overwriting any existing entry.
func (l *Ledger) Put(key solana.PublicKey, acc Account) {
	cp := make([]byte, len(acc.Data))
	copy(cp, acc.Data)
	acc.Data = cp
	l.accounts[key] = &acc
}

// Get returns a defensive copy of the stored account, or (zero, false) if
// unset.
func (l *Ledger) Get(key solana.PublicKey) (Account, bool) {
	a, ok := l.accounts[key]
	if !ok {
		return Account{}, false
	}
	cp := make([]byte, len(a.Data))
	copy(cp, a.Data)
	return Account{Owner: a.Owner, Lamports: a.Lamports, Data: cp, Executable: a.Executable}, true
}

// AccountInfo returns a live *runtime.AccountInfo view whose Lamports/Data
// fields alias the ledger's own storage for key, creating the entry if
// absent. Mutations the processor makes through this view (via CPI) are
// immediately visible to subsequent ledger reads, matching how account data
// is mutated in place during real instruction processing.
func (l *Ledger) AccountInfo(key solana.PublicKey, isSigner, isWritable bool) *runtime.AccountInfo {
	a, ok := l.accounts[key]
	if !ok {
		a = &Account{}
		l.accounts[key] = a
	}
	return &runtime.AccountInfo{
		Key:        key,
		Owner:      a.Owner,
		Lamports:   &a.Lamports,
		Data:       a.Data,
		IsSigner:   isSigner,
		IsWritable: isWritable,
	}
}

// sync writes an AccountInfo's current Owner/Data back into the ledger's
// record for its Key. Lamports are already aliased and need no sync.
func (l *Ledger) sync(info *runtime.AccountInfo) {
	a, ok := l.accounts[info.Key]
	if !ok {
		a = &Account{}
		l.accounts[info.Key] = a
	}
	a.Owner = info.Owner
	a.Data = info.Data
}

func (l *Ledger) SupportsPrefundedCreate() bool {
	return l.supportsPrefunded
}

// Invoke performs a one-off CPI with no PDA authority.
func (l *Ledger) Invoke(ix solana.Instruction, infos []*runtime.AccountInfo) ([]byte, error) {
	return l.dispatch(ix, infos, nil)
}

// InvokeSigned performs a CPI on behalf of a PDA signer. signerSeeds is
// accepted but not checked against infos' keys; the call behaves exactly
// like Invoke.
func (l *Ledger) InvokeSigned(ix solana.Instruction, infos []*runtime.AccountInfo, signerSeeds [][][]byte) ([]byte, error) {
	return l.dispatch(ix, infos, signerSeeds)
}

func (l *Ledger) dispatch(ix solana.Instruction, infos []*runtime.AccountInfo, signerSeeds [][][]byte) ([]byte, error) {
	data, err := ix.Data()
	if err != nil {
		return nil, fmt.Errorf("simledger: reading instruction data: %w", err)
	}
	if len(data) == 0 {
		return nil, ataerr.New(ataerr.InvalidInstructionData, "empty CPI instruction data")
	}

	switch ix.ProgramID() {
	case solana.SystemProgramID:
		return l.dispatchSystem(data, infos, signerSeeds)
	case l.tokenProgramID, l.token2022ProgramID:
		return l.dispatchToken(ix.ProgramID(), data, infos)
	default:
		return nil, fmt.Errorf("simledger: no handler registered for program %s", ix.ProgramID())
	}
}

func (l *Ledger) dispatchSystem(data []byte, infos []*runtime.AccountInfo, signerSeeds [][][]byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, ataerr.New(ataerr.InvalidInstructionData, "system CPI data too short")
	}
	disc := binary.LittleEndian.Uint32(data[:4])
	switch disc {
	case 0: // CreateAccount
		lamports := binary.LittleEndian.Uint64(data[4:12])
		space := binary.LittleEndian.Uint64(data[12:20])
		owner := solana.PublicKeyFromBytes(data[20:52])
		from, to := infos[0], infos[1]
		*from.Lamports -= lamports
		*to.Lamports += lamports
		to.Data = make([]byte, space)
		to.Owner = owner
		l.sync(to)
		l.sync(from)
		return nil, nil
	case 1: // Assign
		owner := solana.PublicKeyFromBytes(data[4:36])
		infos[0].Owner = owner
		l.sync(infos[0])
		return nil, nil
	case 2: // Transfer
		lamports := binary.LittleEndian.Uint64(data[4:12])
		from, to := infos[0], infos[1]
		*from.Lamports -= lamports
		*to.Lamports += lamports
		return nil, nil
	case 8: // Allocate
		space := binary.LittleEndian.Uint64(data[4:12])
		infos[0].Data = make([]byte, space)
		l.sync(infos[0])
		return nil, nil
	case 1_000_000: // CreatePrefundedAccount
		if !l.supportsPrefunded {
			return nil, fmt.Errorf("simledger: CreatePrefundedAccount issued against a ledger without prefunded support")
		}
		topUp := binary.LittleEndian.Uint64(data[4:12])
		space := binary.LittleEndian.Uint64(data[12:20])
		owner := solana.PublicKeyFromBytes(data[20:52])
		from, to := infos[0], infos[1]
		*from.Lamports -= topUp
		*to.Lamports += topUp
		to.Data = make([]byte, space)
		to.Owner = owner
		l.sync(to)
		l.sync(from)
		return nil, nil
	default:
		return nil, fmt.Errorf("simledger: unknown system instruction discriminator %d", disc)
	}
}

func (l *Ledger) dispatchToken(programID solana.PublicKey, data []byte, infos []*runtime.AccountInfo) ([]byte, error) {
	switch data[0] {
	case 18: // InitializeAccount3
		owner := solana.PublicKeyFromBytes(data[1:33])
		mint := infos[1].Key
		account := infos[0]
		writeTokenAccount(account.Data, mint, owner)
		account.Owner = programID
		l.sync(account)
		return nil, nil
	case 22: // InitializeImmutableOwner
		account := infos[0]
		if len(account.Data) < accounts.TokenAccountLen+5 {
			grown := make([]byte, accounts.TokenAccountLen+5)
			copy(grown, account.Data)
			account.Data = grown
		}
		account.Data[accounts.TokenAccountLen] = byte(accounts.AccountTypeAccount)
		// type=7 (ImmutableOwner), length=0: header only, no payload.
		binary.LittleEndian.PutUint16(account.Data[accounts.TokenAccountLen+1:], 7)
		l.sync(account)
		return nil, nil
	case 12: // TransferChecked
		amount := binary.LittleEndian.Uint64(data[1:9])
		source, dest := infos[0], infos[2]
		srcTok, err := accounts.ParseTokenAccount(source.Data)
		if err != nil {
			return nil, err
		}
		if srcTok.Amount() < amount {
			return nil, ataerr.New(ataerr.InvalidArgument, "insufficient token balance")
		}
		writeAmount(source.Data, srcTok.Amount()-amount)
		dstTok, err := accounts.ParseTokenAccount(dest.Data)
		if err != nil {
			return nil, err
		}
		writeAmount(dest.Data, dstTok.Amount()+amount)
		l.sync(source)
		l.sync(dest)
		return nil, nil
	case 9: // CloseAccount
		account, destination := infos[0], infos[1]
		*destination.Lamports += *account.Lamports
		*account.Lamports = 0
		account.Data = nil
		account.Owner = solana.PublicKey{}
		l.sync(account)
		return nil, nil
	case 21: // GetAccountDataSize
		mint := infos[0]
		size, ok := inlineOrDefaultSize(mint.Data)
		if !ok {
			return nil, ataerr.New(ataerr.InvalidAccountData, "simledger could not size this mint")
		}
		ret := make([]byte, 8)
		binary.LittleEndian.PutUint64(ret, uint64(size))
		return ret, nil
	default:
		return nil, fmt.Errorf("simledger: unknown token instruction discriminator %d", data[0])
	}
}

func writeTokenAccount(buf []byte, mint, owner solana.PublicKey) {
	copy(buf[0:32], mint[:])
	copy(buf[32:64], owner[:])
	buf[108] = 1 // Initialized
}

func writeAmount(buf []byte, amount uint64) {
	binary.LittleEndian.PutUint64(buf[64:72], amount)
}

// inlineOrDefaultSize is simledger's own (simplified) fallback sizing used
// only to answer a GetAccountDataSize CPI; production sizing lives in the
// sizing package and is exercised directly by processor tests, not through
// this path.
func inlineOrDefaultSize(mintData []byte) (int, bool) {
	_ = mintData
	return accounts.TokenAccountLen + 5, true
}

var _ runtime.Invoker = (*Ledger)(nil)
