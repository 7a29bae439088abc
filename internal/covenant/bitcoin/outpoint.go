package bitcoin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// ParseOutPoint parses the "txid:vout" notation.
func ParseOutPoint(value string) (wire.OutPoint, error) {
	txid, vout, ok := strings.Cut(value, ":")
	if !ok {
		return wire.OutPoint{}, fmt.Errorf("outpoint %q: expected txid:vout", value)
	}
	hash, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return wire.OutPoint{}, fmt.Errorf("outpoint %q txid: %w", value, err)
	}
	index, err := strconv.ParseUint(vout, 10, 32)
	if err != nil {
		return wire.OutPoint{}, fmt.Errorf("outpoint %q vout: %w", value, err)
	}
	return wire.OutPoint{Hash: *hash, Index: uint32(index)}, nil
}
