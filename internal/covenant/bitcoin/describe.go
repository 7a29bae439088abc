package bitcoin

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/script"
	"github.com/goodnatureofminers/covenant7000/pkg/safe"
)

// EncodeTransaction serializes tx, witnesses included, to hex.
func EncodeTransaction(tx *wire.MsgTx) (string, error) {
	var buf bytes.Buffer
	buf.Grow(tx.SerializeSize())
	if err := tx.Serialize(&buf); err != nil {
		return "", fmt.Errorf("serialize tx %s: %w", tx.TxHash(), err)
	}
	return hex.EncodeToString(buf.Bytes()), nil
}

// DecodeTransaction parses a hex serialized transaction.
func DecodeTransaction(raw string) (*wire.MsgTx, error) {
	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode tx hex: %w", err)
	}
	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("deserialize tx: %w", err)
	}
	return tx, nil
}

// DescribeTransaction renders tx the way bitcoind's decoderawtransaction does.
func DescribeTransaction(tx *wire.MsgTx, params *chaincfg.Params) (*btcjson.TxRawResult, error) {
	raw, err := EncodeTransaction(tx)
	if err != nil {
		return nil, err
	}
	weight := blockchain.GetTransactionWeight(btcutil.NewTx(tx))

	vin := make([]btcjson.Vin, 0, len(tx.TxIn))
	for _, in := range tx.TxIn {
		asm, err := script.Disasm(in.SignatureScript)
		if err != nil {
			return nil, err
		}
		witness := make([]string, 0, len(in.Witness))
		for _, item := range in.Witness {
			witness = append(witness, hex.EncodeToString(item))
		}
		vin = append(vin, btcjson.Vin{
			Txid: in.PreviousOutPoint.Hash.String(),
			Vout: in.PreviousOutPoint.Index,
			ScriptSig: &btcjson.ScriptSig{
				Asm: asm,
				Hex: hex.EncodeToString(in.SignatureScript),
			},
			Sequence: in.Sequence,
			Witness:  witness,
		})
	}

	vout := make([]btcjson.Vout, 0, len(tx.TxOut))
	for i, out := range tx.TxOut {
		n, err := safe.Uint32(i)
		if err != nil {
			return nil, fmt.Errorf("tx %s output index overflow: %w", tx.TxHash(), err)
		}
		asm, err := script.Disasm(out.PkScript)
		if err != nil {
			return nil, err
		}
		class, addrs, _, err := txscript.ExtractPkScriptAddrs(out.PkScript, params)
		if err != nil {
			return nil, fmt.Errorf("tx %s output %d addresses: %w", tx.TxHash(), i, err)
		}
		result := btcjson.ScriptPubKeyResult{
			Asm:  asm,
			Hex:  hex.EncodeToString(out.PkScript),
			Type: class.String(),
		}
		if len(addrs) == 1 {
			result.Address = addrs[0].EncodeAddress()
		}
		vout = append(vout, btcjson.Vout{
			Value:        btcutil.Amount(out.Value).ToBTC(),
			N:            n,
			ScriptPubKey: result,
		})
	}

	size, err := safe.Uint32(tx.SerializeSize())
	if err != nil {
		return nil, err
	}
	return &btcjson.TxRawResult{
		Hex:      raw,
		Txid:     tx.TxHash().String(),
		Hash:     tx.WitnessHash().String(),
		Size:     int32(size),
		Vsize:    int32((weight + blockchain.WitnessScaleFactor - 1) / blockchain.WitnessScaleFactor),
		Weight:   int32(weight),
		Version:  uint32(tx.Version),
		LockTime: tx.LockTime,
		Vin:      vin,
		Vout:     vout,
	}, nil
}
