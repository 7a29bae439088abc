package tree

import (
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/model"
)

// BuildSpendingTransactions resolves spec and builds the transaction spending
// funding, followed by the chain of the first output when that output is a
// tree. Tree outputs at other positions are not expanded; use
// BuildSpendingTree for that.
func BuildSpendingTransactions(spec *model.TransactionSpec, funding wire.OutPoint) ([]*wire.MsgTx, error) {
	node, err := Resolve(spec)
	if err != nil {
		return nil, err
	}
	return node.SpendingChain(funding), nil
}

// BuildSpendingTree resolves spec and builds one spending transaction per
// node, each child funded by its own output of the parent.
func BuildSpendingTree(spec *model.TransactionSpec, funding wire.OutPoint) ([]*wire.MsgTx, error) {
	node, err := Resolve(spec)
	if err != nil {
		return nil, err
	}
	return node.SpendingTree(funding), nil
}

// SpendingTransaction builds the transaction that spends an output locked to n.
// The single input carries the committed sequence and the script-path witness.
func (n *Node) SpendingTransaction(funding wire.OutPoint) *wire.MsgTx {
	tx := wire.NewMsgTx(n.Template.Version)
	tx.LockTime = n.Template.LockTime

	in := wire.NewTxIn(&funding, nil, n.Wrapped.Witness())
	in.Sequence = n.spendSequence()
	tx.AddTxIn(in)

	for _, out := range n.Template.TxOut {
		tx.AddTxOut(wire.NewTxOut(out.Value, append([]byte(nil), out.PkScript...)))
	}
	return tx
}

// SpendingChain returns the spending transaction of n and, if its first output
// is a tree, the chain continuing from output 0.
func (n *Node) SpendingChain(funding wire.OutPoint) []*wire.MsgTx {
	tx := n.SpendingTransaction(funding)
	txs := []*wire.MsgTx{tx}
	if len(n.Children) > 0 && n.Children[0] != nil {
		next := wire.OutPoint{Hash: tx.TxHash(), Index: 0}
		txs = append(txs, n.Children[0].SpendingChain(next)...)
	}
	return txs
}

// SpendingTree returns the spending transactions of n and all descendants,
// depth-first with parents ahead of their children.
func (n *Node) SpendingTree(funding wire.OutPoint) []*wire.MsgTx {
	tx := n.SpendingTransaction(funding)
	txs := []*wire.MsgTx{tx}
	txid := tx.TxHash()
	for i, child := range n.Children {
		if child == nil {
			continue
		}
		txs = append(txs, child.SpendingTree(wire.OutPoint{Hash: txid, Index: uint32(i)})...)
	}
	return txs
}

// spendSequence is the sequence committed for the spent input. Resolve keeps
// InputIndex inside Sequences.
func (n *Node) spendSequence() uint32 {
	return n.Spec.Fields.Sequences[n.Spec.Fields.InputIndex]
}
