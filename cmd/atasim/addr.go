package main

import "github.com/gagliardetto/solana-go"

// Addr renders a pubkey truncated with an ellipsis in the middle, so tables
// of account keys stay readable.
type Addr solana.PublicKey

func (a Addr) String() string {
	const (
		ellipsis = "…"
		head     = 6
		tail     = 6
	)
	s := solana.PublicKey(a).String()
	rs := []rune(s)
	if len(rs) <= head+tail {
		return s
	}
	return string(rs[:head]) + ellipsis + string(rs[len(rs)-tail:])
}
