package main

import (
	"encoding/binary"

	"ata-go/accounts"

	"github.com/gagliardetto/solana-go"
)

// newMintData builds a minimal, valid base-layout mint: no mint authority, no
// freeze authority, the given decimals, and initialized=true.
func newMintData(decimals uint8) []byte {
	buf := make([]byte, accounts.MintLen)
	buf[44] = decimals
	buf[45] = 1 // is_initialized
	return buf
}

// newMintWithTLV appends a Token-2022 account-type byte plus a raw TLV region
// (type/length/value entries, caller-assembled) after the base mint layout.
func newMintWithTLV(decimals uint8, tlv []byte) []byte {
	base := newMintData(decimals)
	out := make([]byte, len(base)+1+len(tlv))
	copy(out, base)
	out[len(base)] = byte(accounts.AccountTypeMint)
	copy(out[len(base)+1:], tlv)
	return out
}

// tlvEntry assembles one type/length/value record for a synthetic extension
// TLV region.
func tlvEntry(typ accounts.ExtensionType, value []byte) []byte {
	buf := make([]byte, 4+len(value))
	binary.LittleEndian.PutUint16(buf[0:2], uint16(typ))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(len(value)))
	copy(buf[4:], value)
	return buf
}

// newTokenAccountData builds a base-layout (165-byte) initialized token
// account with the given mint, owner, and amount; every optional (COption)
// field is left as None.
func newTokenAccountData(mint, owner solana.PublicKey, amount uint64) []byte {
	buf := make([]byte, accounts.TokenAccountLen)
	copy(buf[0:32], mint[:])
	copy(buf[32:64], owner[:])
	binary.LittleEndian.PutUint64(buf[64:72], amount)
	buf[108] = byte(accounts.StateInitialized)
	return buf
}

// newMultisigData builds an initialized multisig account requiring m of the
// given signers.
func newMultisigData(m uint8, signers []solana.PublicKey) []byte {
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
