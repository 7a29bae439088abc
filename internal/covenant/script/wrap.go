package script

import (
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/model"
)

var numsSeed = []byte("Activate CTV now!")

// NUMSKey returns the default taproot internal key: the first SHA-256 iterate of
// numsSeed that is a valid x coordinate. Its discrete log is unknown, which
// disables the key path.
var NUMSKey = sync.OnceValue(func() *btcec.PublicKey {
	candidate := chainhash.HashB(numsSeed)
	for {
		if key, err := schnorr.ParsePubKey(candidate); err == nil {
			return key
		}
		candidate = chainhash.HashB(candidate)
	}
})

// Wrapped is a script committed to by an output, together with everything a
// script-path spend has to reveal.
type Wrapped struct {
	Kind         model.ScriptKind
	Script       []byte
	PkScript     []byte
	Address      btcutil.Address
	ControlBlock []byte
}

// Wrap dispatches on the variant kind.
func Wrap(s []byte, variant model.ScriptVariant, params *chaincfg.Params) (*Wrapped, error) {
	switch variant.Kind {
	case model.Segwit:
		return WrapSegwit(s, params)
	case model.Taproot:
		return WrapTaproot(s, variant.InternalKey, params)
	default:
		return nil, model.Errorf(model.KindInvalidSpec, "wrap script", "unknown script kind %d", variant.Kind)
	}
}

// WrapSegwit commits to s with a version 0 witness script hash: OP_0 <SHA256(s)>.
func WrapSegwit(s []byte, params *chaincfg.Params) (*Wrapped, error) {
	addr, err := btcutil.NewAddressWitnessScriptHash(chainhash.HashB(s), params)
	if err != nil {
		return nil, model.NewError(model.KindScriptBuild, "p2wsh address", err)
	}
	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, model.NewError(model.KindScriptBuild, "p2wsh script", err)
	}
	return &Wrapped{
		Kind:     model.Segwit,
		Script:   s,
		PkScript: pkScript,
		Address:  addr,
	}, nil
}

// WrapTaproot commits to s as the only leaf of a tapscript tree under
// internalKey (NUMSKey when nil): OP_1 <output key>.
func WrapTaproot(s []byte, internalKey *btcec.PublicKey, params *chaincfg.Params) (*Wrapped, error) {
	if internalKey == nil {
		internalKey = NUMSKey()
	}
	// Control blocks and the tweak both use the x-only (even y) form.
	internalKey, err := schnorr.ParsePubKey(schnorr.SerializePubKey(internalKey))
	if err != nil {
		return nil, model.NewError(model.KindScriptBuild, "taproot internal key", err)
	}

	tree := txscript.AssembleTaprootScriptTree(txscript.NewBaseTapLeaf(s))
	rootHash := tree.RootNode.TapHash()
	outputKey := txscript.ComputeTaprootOutputKey(internalKey, rootHash[:])

	addr, err := btcutil.NewAddressTaproot(schnorr.SerializePubKey(outputKey), params)
	if err != nil {
		return nil, model.NewError(model.KindScriptBuild, "p2tr address", err)
	}
	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, model.NewError(model.KindScriptBuild, "p2tr script", err)
	}

	proof := tree.LeafMerkleProofs[0]
	controlBlock := txscript.ControlBlock{
		InternalKey:     internalKey,
		OutputKeyYIsOdd: outputKey.SerializeCompressed()[0] == secp256k1.PubKeyFormatCompressedOdd,
		LeafVersion:     proof.TapLeaf.LeafVersion,
		InclusionProof:  proof.InclusionProof,
	}
	controlBlockBytes, err := controlBlock.ToBytes()
	if err != nil {
		return nil, model.NewError(model.KindScriptBuild, "control block", fmt.Errorf("serialize: %w", err))
	}

	return &Wrapped{
		Kind:         model.Taproot,
		Script:       s,
		PkScript:     pkScript,
		Address:      addr,
		ControlBlock: controlBlockBytes,
	}, nil
}

// Witness returns the script-path witness: args followed by the script and, for
// taproot, the control block.
func (w *Wrapped) Witness(args ...[]byte) wire.TxWitness {
	witness := make(wire.TxWitness, 0, len(args)+2)
	witness = append(witness, args...)
	witness = append(witness, w.Script)
	if w.Kind == model.Taproot {
		witness = append(witness, w.ControlBlock)
	}
	return witness
}

// EncodeAddress returns the address string.
func (w *Wrapped) EncodeAddress() string {
	return w.Address.EncodeAddress()
}
