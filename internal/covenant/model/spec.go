package model

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"
)

// ScriptKind selects the witness program that wraps a covenant locking script.
type ScriptKind uint8

const (
	// Segwit wraps the locking script in a version 0 pay-to-witness-script-hash output.
	Segwit ScriptKind = iota
	// Taproot commits the locking script as the single leaf of a version 1 tapscript tree.
	Taproot
)

func (k ScriptKind) String() string {
	switch k {
	case Segwit:
		return "segwit"
	case Taproot:
		return "taproot"
	default:
		return "unknown"
	}
}

// ScriptVariant describes how a node's locking script is turned into an output.
// InternalKey is only consulted for Taproot; nil selects the NUMS key.
type ScriptVariant struct {
	Kind        ScriptKind
	InternalKey *btcec.PublicKey
}

// SegwitVariant returns the P2WSH variant.
func SegwitVariant() ScriptVariant {
	return ScriptVariant{Kind: Segwit}
}

// TaprootVariant returns the P2TR variant for the given internal key.
func TaprootVariant(internalKey *btcec.PublicKey) ScriptVariant {
	return ScriptVariant{Kind: Taproot, InternalKey: internalKey}
}

// Output is one entry of Fields.Outputs. The set of implementations is closed:
// AddressOutput, DataOutput and TreeOutput.
type Output interface {
	isOutput()
}

// AddressOutput pays Value satoshis to an encoded address.
type AddressOutput struct {
	Address string
	Value   uint64
}

// DataOutput is a zero-value unspendable output carrying Payload.
type DataOutput struct {
	Payload []byte
}

// TreeOutput pays Value satoshis into the covenant described by Tree.
type TreeOutput struct {
	Tree  *TransactionSpec
	Value uint64
}

func (AddressOutput) isOutput() {}
func (DataOutput) isOutput()    {}
func (TreeOutput) isOutput()    {}

// NewTreeOutput attaches an already constructed child spec. Specs can only be
// nested this way, so a spec never refers back to one of its ancestors.
func NewTreeOutput(child TransactionSpec, value uint64) TreeOutput {
	return TreeOutput{Tree: &child, Value: value}
}

// Fields are the transaction fields a CTV commitment covers.
type Fields struct {
	Version    int32
	LockTime   uint32
	Sequences  []uint32
	Outputs    []Output
	InputIndex uint32
}

// DefaultFields returns version 2, locktime 0 fields with a single final input.
func DefaultFields(outputs ...Output) Fields {
	return Fields{
		Version:   2,
		Sequences: []uint32{wire.MaxTxInSequenceNum},
		Outputs:   outputs,
	}
}

// TransactionSpec is one node of a covenant tree.
type TransactionSpec struct {
	Network Network
	Variant ScriptVariant
	Fields  Fields
}
