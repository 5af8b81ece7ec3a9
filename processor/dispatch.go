// Package processor implements the three instructions this program answers
// to: Create, CreateIdempotent, and RecoverNested. Entry is the analogue of
// a real runtime's entrypoint! target: it dispatches on the first
// instruction-data byte, runs the matching handler against the supplied
// runtime.Invoker, and on error logs a single cold-path line before
// returning the error to the caller (a library caller decides what to do
// with it; this package never panics or calls os.Exit).
package processor

import (
	"log"

	"ata-go/ataerr"
	"ata-go/runtime"

	"github.com/gagliardetto/solana-go"
)

// Instruction discriminators, the first byte of instruction data (0 is also
// the default for empty data).
const (
	InstrCreate           byte = 0
	InstrCreateIdempotent byte = 1
	InstrRecoverNested    byte = 2
)

// MaxSaneAccountLength is the safety ceiling on a client-supplied
// account-length hint: large enough for any real Token-2022 extension set,
// small enough that a malicious hint can't be used to grief rent payers.
const MaxSaneAccountLength = 10 * 1024

// Entry dispatches data's first byte to the Create, CreateIdempotent, or
// RecoverNested handler.
func Entry(programID solana.PublicKey, inv runtime.Invoker, rent runtime.Rent, accounts []*runtime.AccountInfo, data []byte) error {
	instr := InstrCreate
	rest := data
	if len(data) > 0 {
		instr = data[0]
		rest = data[1:]
	}

	var err error
	switch instr {
	case InstrCreate:
		err = ProcessCreate(programID, inv, rent, accounts, rest, false)
	case InstrCreateIdempotent:
		err = ProcessCreate(programID, inv, rent, accounts, rest, true)
	case InstrRecoverNested:
		err = ProcessRecoverNested(programID, inv, accounts, rest)
	default:
		err = ataerr.New(ataerr.InvalidInstructionData, "unknown instruction discriminator")
	}

	if err != nil {
		code, _ := ataerr.As(err)
		log.Printf("ata: %s (code %d)", err, code)
	}
	return err
}
