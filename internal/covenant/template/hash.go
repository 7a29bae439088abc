// Package template computes BIP-119 template hashes.
package template

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/model"
	"github.com/goodnatureofminers/covenant7000/pkg/safe"
)

// Hash returns the template hash of tx for the input at inputIndex:
//
//	version ‖ locktime ‖ [sha256(scriptSigs)] ‖ len(inputs) ‖ sha256(sequences) ‖
//	len(outputs) ‖ sha256(outputs) ‖ inputIndex
//
// hashed twice with SHA-256. The scriptSig commitment is present only when at
// least one input has a non-empty scriptSig.
func Hash(tx *wire.MsgTx, inputIndex uint32) (model.Commitment, error) {
	inputCount, err := safe.Uint32(len(tx.TxIn))
	if err != nil {
		return model.Commitment{}, fmt.Errorf("input count: %w", err)
	}
	outputCount, err := safe.Uint32(len(tx.TxOut))
	if err != nil {
		return model.Commitment{}, fmt.Errorf("output count: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(4 + 4 + 32 + 4 + 32 + 4 + 32 + 4)
	writeUint32(&buf, uint32(tx.Version))
	writeUint32(&buf, tx.LockTime)
	if hasScriptSigs(tx) {
		buf.Write(scriptSigsHash(tx))
	}
	writeUint32(&buf, inputCount)
	buf.Write(sequencesHash(tx))
	writeUint32(&buf, outputCount)
	outputs, err := outputsHash(tx)
	if err != nil {
		return model.Commitment{}, err
	}
	buf.Write(outputs)
	writeUint32(&buf, inputIndex)

	return model.Commitment(chainhash.DoubleHashH(buf.Bytes())), nil
}

// Verify reports whether tx satisfies commitment at inputIndex.
func Verify(tx *wire.MsgTx, inputIndex uint32, commitment model.Commitment) (bool, error) {
	got, err := Hash(tx, inputIndex)
	if err != nil {
		return false, err
	}
	return got == commitment, nil
}

func hasScriptSigs(tx *wire.MsgTx) bool {
	for _, in := range tx.TxIn {
		if len(in.SignatureScript) > 0 {
			return true
		}
	}
	return false
}

func scriptSigsHash(tx *wire.MsgTx) []byte {
	var buf bytes.Buffer
	for _, in := range tx.TxIn {
		buf.Write(in.SignatureScript)
	}
	return chainhash.HashB(buf.Bytes())
}

func sequencesHash(tx *wire.MsgTx) []byte {
	buf := make([]byte, 0, 4*len(tx.TxIn))
	for _, in := range tx.TxIn {
		buf = binary.LittleEndian.AppendUint32(buf, in.Sequence)
	}
	return chainhash.HashB(buf)
}

func outputsHash(tx *wire.MsgTx) ([]byte, error) {
	var buf bytes.Buffer
	for i, out := range tx.TxOut {
		if err := wire.WriteTxOut(&buf, 0, 0, out); err != nil {
			return nil, model.NewError(model.KindScriptBuild, "serialize outputs", fmt.Errorf("output %d: %w", i, err))
		}
	}
	return chainhash.HashB(buf.Bytes()), nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}
