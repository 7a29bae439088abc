// Package script builds the CTV covenant scripts and the witness programs that wrap them.
package script

import (
	"strings"

	"github.com/btcsuite/btcd/txscript"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/model"
)

// OpCheckTemplateVerify is OP_CHECKTEMPLATEVERIFY, redefined from OP_NOP4.
const OpCheckTemplateVerify byte = txscript.OP_NOP4

const opCheckTemplateVerifyName = "OP_CHECKTEMPLATEVERIFY"

// LockingScript returns <commitment> OP_CHECKTEMPLATEVERIFY.
func LockingScript(commitment model.Commitment) ([]byte, error) {
	s, err := txscript.NewScriptBuilder(txscript.WithScriptAllocSize(model.CommitmentSize + 2)).
		AddData(commitment[:]).
		AddOp(OpCheckTemplateVerify).
		Script()
	if err != nil {
		return nil, model.NewError(model.KindScriptBuild, "ctv locking script", err)
	}
	return s, nil
}

// UnvaultScript returns the vault's branch script:
//
//	OP_IF
//	    <delay> OP_CHECKSEQUENCEVERIFY OP_DROP <hot> OP_CHECKTEMPLATEVERIFY
//	OP_ELSE
//	    <cold> OP_CHECKTEMPLATEVERIFY
//	OP_ENDIF
func UnvaultScript(delay uint32, hot, cold model.Commitment) ([]byte, error) {
	s, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_IF).
		AddInt64(int64(delay)).
		AddOp(txscript.OP_CHECKSEQUENCEVERIFY).
		AddOp(txscript.OP_DROP).
		AddData(hot[:]).
		AddOp(OpCheckTemplateVerify).
		AddOp(txscript.OP_ELSE).
		AddData(cold[:]).
		AddOp(OpCheckTemplateVerify).
		AddOp(txscript.OP_ENDIF).
		Script()
	if err != nil {
		return nil, model.NewError(model.KindScriptBuild, "unvault script", err)
	}
	return s, nil
}

// DataScript returns OP_RETURN <payload>.
func DataScript(payload []byte) ([]byte, error) {
	s, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_RETURN).
		AddData(payload).
		Script()
	if err != nil {
		return nil, model.NewError(model.KindScriptBuild, "data script", err)
	}
	return s, nil
}

// Disasm renders a script as a one-line opcode/push listing with OP_NOP4 shown
// under its CTV name.
func Disasm(s []byte) (string, error) {
	asm, err := txscript.DisasmString(s)
	if err != nil {
		return "", model.NewError(model.KindScriptBuild, "disasm", err)
	}
	tokens := strings.Fields(asm)
	for i, token := range tokens {
		if token == "OP_NOP4" {
			tokens[i] = opCheckTemplateVerifyName
		}
	}
	return strings.Join(tokens, " "), nil
}
