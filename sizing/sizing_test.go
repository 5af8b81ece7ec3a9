package sizing

import (
	"encoding/binary"
	"testing"

	"ata-go/accounts"
)

// TestExtensionConstantsMatchToken2022 pins each inline-handled extension tag
// against its upstream spl-token-2022 ExtensionType ordinal, so a future edit
// can't silently drift the tag away from the protocol's own numbering.
func TestExtensionConstantsMatchToken2022(t *testing.T) {
	cases := []struct {
		name string
		got  accounts.ExtensionType
		want accounts.ExtensionType
	}{
		{"TransferFeeConfig", ExtensionTransferFeeConfig, 1},
		{"NonTransferable", ExtensionNonTransferable, 9},
		{"TransferHook", ExtensionTransferHook, 14},
		{"Pausable", ExtensionPausable, 26},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d (per spl-token-2022's ExtensionType enum)", c.name, c.got, c.want)
		}
	}
}

// TestPlannedExtensionIsNextAfterLastDeployed pins lastKnownExtension to one
// past ExtensionType::PausableAccount (27), the last extension type deployed
// as of this writing - the "next free slot" any newly-added extension would
// occupy.
func TestPlannedExtensionIsNextAfterLastDeployed(t *testing.T) {
	const lastDeployedExtension accounts.ExtensionType = 27 // ExtensionType::PausableAccount
	if lastKnownExtension != lastDeployedExtension+1 {
		t.Errorf("lastKnownExtension = %d, want %d (one past PausableAccount)", lastKnownExtension, lastDeployedExtension+1)
	}
}

func tlvEntry(typ, length uint16, value []byte) []byte {
	buf := make([]byte, 4+len(value))
	binary.LittleEndian.PutUint16(buf[0:2], typ)
	binary.LittleEndian.PutUint16(buf[2:4], length)
	copy(buf[4:], value)
	return buf
}

func TestInlineAccountSizePlainMint(t *testing.T) {
	size, ok := InlineAccountSize(make([]byte, accounts.MintLen))
	if !ok {
		t.Fatal("expected ok=true for a plain mint")
	}
	if size != baseExtendedAccountSize {
		t.Errorf("size = %d, want %d", size, baseExtendedAccountSize)
	}
}

func TestInlineAccountSizeWithTransferFeeConfig(t *testing.T) {
	mint := make([]byte, mintTLVCursor)
	mint = append(mint, tlvEntry(uint16(ExtensionTransferFeeConfig), 8, make([]byte, 8))...)
	mint = append(mint, tlvEntry(0, 0, nil)...) // terminator

	size, ok := InlineAccountSize(mint)
	if !ok {
		t.Fatal("expected ok=true")
	}
	want := baseExtendedAccountSize + 12
	if size != want {
		t.Errorf("size = %d, want %d", size, want)
	}
}

func TestInlineAccountSizeMultipleExtensions(t *testing.T) {
	mint := make([]byte, mintTLVCursor)
	mint = append(mint, tlvEntry(uint16(ExtensionNonTransferable), 0, nil)...)
	mint = append(mint, tlvEntry(uint16(ExtensionTransferHook), 1, []byte{0})...)
	mint = append(mint, tlvEntry(0, 0, nil)...)

	size, ok := InlineAccountSize(mint)
	if !ok {
		t.Fatal("expected ok=true")
	}
	want := baseExtendedAccountSize + 4 + 5
	if size != want {
		t.Errorf("size = %d, want %d", size, want)
	}
}

func TestInlineAccountSizeUnknownExtensionFallsBack(t *testing.T) {
	mint := make([]byte, mintTLVCursor)
	mint = append(mint, tlvEntry(9999, 3, []byte{1, 2, 3})...)
	mint = append(mint, tlvEntry(0, 0, nil)...)

	_, ok := InlineAccountSize(mint)
	if ok {
		t.Fatal("expected ok=false for an unrecognized extension type")
	}
}
