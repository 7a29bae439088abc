// Package bitcoin binds covenant values to btcd network parameters, addresses and transactions.
package bitcoin

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/model"
)

// ChainParams resolves a network name, accepting the usual aliases.
func ChainParams(network model.Network) (*chaincfg.Params, error) {
	switch strings.ToLower(string(network)) {
	case "main", "mainnet", "bitcoin":
		return &chaincfg.MainNetParams, nil
	case "test", "testnet", "testnet3":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	case "simnet":
		return &chaincfg.SimNetParams, nil
	default:
		return nil, model.NewError(model.KindInvalidSpec, "chain params", fmt.Errorf("unsupported network %q", network))
	}
}
