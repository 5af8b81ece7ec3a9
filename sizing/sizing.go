// Package sizing computes the byte size a token account must be allocated
// with for a given mint. Every Token-2022 account this program creates gets
// the ImmutableOwner extension, which alone costs 5 bytes (a 1-byte
// account-type marker plus a 4-byte, zero-length TLV header) over the
// 165-byte base layout; mint extensions that require a matching per-account
// record (TransferFeeConfig, NonTransferable, TransferHook, Pausable) add
// further bytes on top of that.
//
// Extension-to-account-space mapping is inlined for the handful of
// extensions this program understands; anything newer falls back to asking
// the token program itself via a GetAccountDataSize CPI, so the program never
// has to ship a new release just because Token-2022 grew another extension
// type.
package sizing

import (
	"encoding/binary"

	"ata-go/accounts"
	"ata-go/ataerr"
	"ata-go/runtime"
	"ata-go/tokenprog"

	"github.com/gagliardetto/solana-go"
)

// Mint extension type tags understood inline, and the extra bytes each adds
// to the corresponding token *account* (not the mint itself). Ordinals match
// spl-token-2022's ExtensionType enum.
const (
	ExtensionTransferFeeConfig accounts.ExtensionType = 1  // ExtensionType::TransferFeeConfig
	ExtensionNonTransferable   accounts.ExtensionType = 9  // ExtensionType::NonTransferable
	ExtensionTransferHook      accounts.ExtensionType = 14 // ExtensionType::TransferHook
	ExtensionPausable          accounts.ExtensionType = 26 // ExtensionType::Pausable

	// lastKnownExtension is one past ExtensionType::PausableAccount (27), the
	// last extension type deployed as of this writing. Types up to and
	// including this one that aren't listed in extraAccountBytes are known to
	// require zero extra account-side bytes; anything past it is unknown and
	// forces the CPI fallback.
	lastKnownExtension = ExtensionPausable + 2
)

// extraAccountBytes maps an extension tag to the bytes it adds to the
// account-side TLV region, on top of baseExtendedAccountSize.
var extraAccountBytes = map[accounts.ExtensionType]int{
	ExtensionTransferFeeConfig: 12,
	ExtensionNonTransferable:   4,
	ExtensionTransferHook:      5,
	ExtensionPausable:          4,
}

// baseExtendedAccountSize is what every Token-2022 account costs before any
// mint-driven extension is added: the 165-byte base layout, a 1-byte
// account-type marker, and the always-present, zero-length ImmutableOwner
// TLV header (4 bytes).
const baseExtendedAccountSize = accounts.TokenAccountLen + 5

// mintTLVCursor is where the extension TLV region starts in a mint buffer:
// right after the 82-byte base struct and its 1-byte account-type marker.
const mintTLVCursor = accounts.MintLen + 1

var errUnknownExtension = ataerr.New(ataerr.InvalidAccountData, "unrecognized mint extension type")

// InlineAccountSize walks a mint's extension TLV region and returns the
// token-account size required to hold a balance of that mint under
// Token-2022, without any CPI. ok is false if an extension type this build
// doesn't recognize is present, signaling the caller should fall back to
// TokenAccountSize's CPI path.
func InlineAccountSize(mintData []byte) (size int, ok bool) {
	if len(mintData) <= accounts.MintLen {
		return baseExtendedAccountSize, true
	}
	if len(mintData) <= mintTLVCursor {
		return baseExtendedAccountSize, true
	}

	total := baseExtendedAccountSize
	walkErr := accounts.WalkTLV(mintData[mintTLVCursor:], func(e accounts.Entry) error {
		if extra, known := extraAccountBytes[e.Type]; known {
			total += extra
			return nil
		}
		if e.Type <= lastKnownExtension {
			// Known to the protocol, but mint-only: no account-side mirror needed.
			return nil
		}
		return errUnknownExtension
	})
	if walkErr != nil {
		return 0, false
	}
	return total, true
}

// TokenAccountSize returns the byte size an account holding mint must be
// allocated with. For the legacy SPL Token program it is always
// accounts.TokenAccountLen. For Token-2022 it tries InlineAccountSize first
// and falls back to a GetAccountDataSize CPI against the mint when an
// extension type is unrecognized.
func TokenAccountSize(inv runtime.Invoker, mint *runtime.AccountInfo, tokenProgram solana.PublicKey) (int, error) {
	if tokenProgram == solana.TokenProgramID {
		return accounts.TokenAccountLen, nil
	}
	if size, ok := InlineAccountSize(mint.Data); ok {
		return size, nil
	}
	return cpiAccountDataSize(inv, mint, tokenProgram)
}

// cpiAccountDataSize asks the token program directly, passing the
// ImmutableOwner extension type (7) as the one the caller additionally wants
// sized in - mirroring the account this program is about to create.
func cpiAccountDataSize(inv runtime.Invoker, mint *runtime.AccountInfo, tokenProgram solana.PublicKey) (int, error) {
	const immutableOwnerExtensionType = 7
	ix := tokenprog.NewGetAccountDataSizeInstruction(tokenProgram, mint.Key, immutableOwnerExtensionType)
	ret, err := inv.Invoke(ix, []*runtime.AccountInfo{mint})
	if err != nil {
		return 0, ataerr.Wrap(ataerr.InvalidAccountData, "GetAccountDataSize CPI failed", err)
	}
	if len(ret) < 8 {
		return 0, ataerr.New(ataerr.InvalidAccountData, "GetAccountDataSize returned fewer than 8 bytes")
	}
	return int(binary.LittleEndian.Uint64(ret[:8])), nil
}
