package bitcoin

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/model"
)

// DecodeAddress parses addr and rejects addresses that belong to another network.
func DecodeAddress(addr string, params *chaincfg.Params) (btcutil.Address, error) {
	decoded, err := btcutil.DecodeAddress(addr, params)
	if err != nil {
		return nil, model.NewError(model.KindAddressParse, "decode address", fmt.Errorf("%q: %w", addr, err))
	}
	if !decoded.IsForNet(params) {
		return nil, model.Errorf(model.KindAddressParse, "decode address", "%q is not a %s address", addr, params.Name)
	}
	return decoded, nil
}

// PayToAddress returns the output script paying to addr.
func PayToAddress(addr string, params *chaincfg.Params) ([]byte, error) {
	decoded, err := DecodeAddress(addr, params)
	if err != nil {
		return nil, err
	}
	pkScript, err := txscript.PayToAddrScript(decoded)
	if err != nil {
		return nil, model.NewError(model.KindAddressParse, "pay to address", fmt.Errorf("%q: %w", addr, err))
	}
	return pkScript, nil
}
