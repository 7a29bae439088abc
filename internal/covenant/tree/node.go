// Package tree resolves covenant specs into committed scripts, addresses and
// chained spending transactions.
package tree

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/bitcoin"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/model"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/script"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/template"
	"github.com/goodnatureofminers/covenant7000/pkg/safe"
)

// Node is a resolved TransactionSpec. Children is aligned with Spec.Fields.Outputs
// and holds a node for every TreeOutput, nil elsewhere.
type Node struct {
	Spec          *model.TransactionSpec
	Params        *chaincfg.Params
	Template      *wire.MsgTx
	Commitment    model.Commitment
	LockingScript []byte
	Wrapped       *script.Wrapped
	Children      []*Node
}

// Resolve computes the commitment, locking script and address of spec. Tree
// outputs are resolved first, so every parent commits to finished children.
func Resolve(spec *model.TransactionSpec) (*Node, error) {
	if spec == nil {
		return nil, model.Errorf(model.KindInvalidSpec, "resolve", "nil spec")
	}
	params, err := bitcoin.ChainParams(spec.Network)
	if err != nil {
		return nil, err
	}
	if len(spec.Fields.Sequences) == 0 {
		return nil, model.Errorf(model.KindInvalidSpec, "resolve", "fields carry no input sequences")
	}
	if int(spec.Fields.InputIndex) >= len(spec.Fields.Sequences) {
		return nil, model.Errorf(model.KindInvalidSpec, "resolve",
			"input index %d outside %d input sequences", spec.Fields.InputIndex, len(spec.Fields.Sequences))
	}

	base := wire.NewMsgTx(spec.Fields.Version)
	base.LockTime = spec.Fields.LockTime
	for _, sequence := range spec.Fields.Sequences {
		base.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{}, Sequence: sequence})
	}

	children := make([]*Node, len(spec.Fields.Outputs))
	for i, output := range spec.Fields.Outputs {
		out, child, err := resolveOutput(output, params)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		base.AddTxOut(out)
		children[i] = child
	}

	commitment, err := template.Hash(base, spec.Fields.InputIndex)
	if err != nil {
		return nil, model.NewError(model.KindUnknown, "template hash", err)
	}
	lockingScript, err := script.LockingScript(commitment)
	if err != nil {
		return nil, err
	}
	wrapped, err := script.Wrap(lockingScript, spec.Variant, params)
	if err != nil {
		return nil, err
	}

	return &Node{
		Spec:          spec,
		Params:        params,
		Template:      base,
		Commitment:    commitment,
		LockingScript: lockingScript,
		Wrapped:       wrapped,
		Children:      children,
	}, nil
}

// ResolveAddress is Resolve reduced to the encoded address.
func ResolveAddress(spec *model.TransactionSpec) (string, error) {
	node, err := Resolve(spec)
	if err != nil {
		return "", err
	}
	return node.Address(), nil
}

func resolveOutput(output model.Output, params *chaincfg.Params) (*wire.TxOut, *Node, error) {
	switch o := output.(type) {
	case model.AddressOutput:
		pkScript, err := bitcoin.PayToAddress(o.Address, params)
		if err != nil {
			return nil, nil, err
		}
		value, err := outputValue(o.Value)
		if err != nil {
			return nil, nil, err
		}
		return wire.NewTxOut(value, pkScript), nil, nil
	case model.DataOutput:
		pkScript, err := script.DataScript(o.Payload)
		if err != nil {
			return nil, nil, err
		}
		return wire.NewTxOut(0, pkScript), nil, nil
	case model.TreeOutput:
		if o.Tree == nil {
			return nil, nil, model.Errorf(model.KindInvalidSpec, "resolve tree output", "nil subtree")
		}
		child, err := Resolve(o.Tree)
		if err != nil {
			return nil, nil, model.NewError(model.KindRecursion, "resolve subtree", err)
		}
		if child.Params.Net != params.Net {
			return nil, nil, model.Errorf(model.KindInvalidSpec, "resolve tree output",
				"subtree network %s differs from parent network %s", child.Params.Name, params.Name)
		}
		value, err := outputValue(o.Value)
		if err != nil {
			return nil, nil, err
		}
		return wire.NewTxOut(value, child.Wrapped.PkScript), child, nil
	default:
		return nil, nil, model.Errorf(model.KindUnknown, "resolve output", "unsupported output type %T", output)
	}
}

func outputValue(v uint64) (int64, error) {
	value, err := safe.Int64(v)
	if err != nil {
		return 0, model.NewError(model.KindInvalidSpec, "output value", err)
	}
	return value, nil
}

// Address returns the encoded address that locks funds to this node.
func (n *Node) Address() string {
	return n.Wrapped.EncodeAddress()
}

// PkScript returns the output script that locks funds to this node.
func (n *Node) PkScript() []byte {
	return n.Wrapped.PkScript
}

// Walk visits n and its descendants depth-first, parents before children.
func (n *Node) Walk(visit func(depth int, node *Node)) {
	n.walk(0, visit)
}

func (n *Node) walk(depth int, visit func(int, *Node)) {
	visit(depth, n)
	for _, child := range n.Children {
		if child != nil {
			child.walk(depth+1, visit)
		}
	}
}
