package vault

import (
	"github.com/btcsuite/btcd/wire"
)

var (
	hotBranch  = []byte{0x01}
	coldBranch = []byte{}
)

// VaultingTransaction moves the deposit at funding into the vault. Its input is
// left unsigned; it spends a wallet output and signing happens elsewhere.
func (v *Vault) VaultingTransaction(funding wire.OutPoint) *wire.MsgTx {
	tx := wire.NewMsgTx(templateVersion)
	tx.AddTxIn(wire.NewTxIn(&funding, nil, nil))
	tx.AddTxOut(wire.NewTxOut(int64(v.Spec.Amount), v.Locked.PkScript))
	return tx
}

// UnvaultingTransaction spends the vault output into the unvault branch script.
func (v *Vault) UnvaultingTransaction(vaultOutPoint wire.OutPoint) *wire.MsgTx {
	tx := wire.NewMsgTx(templateVersion)
	tx.AddTxIn(wire.NewTxIn(&vaultOutPoint, nil, v.Locked.Witness()))
	tx.AddTxOut(wire.NewTxOut(v.UnvaultValue(), v.Unvault.PkScript))
	return tx
}

// ColdSpendTransaction sweeps the unvault output to the cold address through
// the ELSE branch. It is valid as soon as the unvault output confirms.
func (v *Vault) ColdSpendTransaction(unvaultOutPoint wire.OutPoint) *wire.MsgTx {
	return v.branchSpend(unvaultOutPoint, v.coldTemplate(), coldBranch)
}

// HotSpendTransaction pays the unvault output to the hot address through the
// IF branch. Its input sequence equals the delay, so it is valid only after
// the unvault output has Delay confirmations.
func (v *Vault) HotSpendTransaction(unvaultOutPoint wire.OutPoint) *wire.MsgTx {
	return v.branchSpend(unvaultOutPoint, v.hotTemplate(), hotBranch)
}

// SpendingTransactions returns the cold and the hot spend of the same unvault output.
func (v *Vault) SpendingTransactions(unvaultOutPoint wire.OutPoint) (cold, hot *wire.MsgTx) {
	return v.ColdSpendTransaction(unvaultOutPoint), v.HotSpendTransaction(unvaultOutPoint)
}

func (v *Vault) branchSpend(prev wire.OutPoint, tmpl *wire.MsgTx, selector []byte) *wire.MsgTx {
	tx := wire.NewMsgTx(tmpl.Version)
	tx.LockTime = tmpl.LockTime
	in := wire.NewTxIn(&prev, nil, v.Unvault.Witness(selector))
	in.Sequence = tmpl.TxIn[0].Sequence
	tx.AddTxIn(in)
	for _, out := range tmpl.TxOut {
		tx.AddTxOut(wire.NewTxOut(out.Value, append([]byte(nil), out.PkScript...)))
	}
	return tx
}

// Stage names a transaction of a vault plan.
type Stage string

const (
	StageVault   Stage = "vault"
	StageUnvault Stage = "unvault"
	StageCold    Stage = "cold"
	StageHot     Stage = "hot"
)

// StagedTransaction is one transaction of a plan.
type StagedTransaction struct {
	Stage Stage
	Tx    *wire.MsgTx
}

// Plan is the full transaction chain of a vault for one funding outpoint.
// Cold and Hot both spend output 0 of Unvault and conflict with each other.
type Plan struct {
	Vault   *wire.MsgTx
	Unvault *wire.MsgTx
	Cold    *wire.MsgTx
	Hot     *wire.MsgTx
}

// Plan builds every transaction of the vault, each spending output 0 of its
// predecessor.
func (v *Vault) Plan(funding wire.OutPoint) *Plan {
	vaulting := v.VaultingTransaction(funding)
	unvaulting := v.UnvaultingTransaction(wire.OutPoint{Hash: vaulting.TxHash(), Index: 0})
	cold, hot := v.SpendingTransactions(wire.OutPoint{Hash: unvaulting.TxHash(), Index: 0})
	return &Plan{Vault: vaulting, Unvault: unvaulting, Cold: cold, Hot: hot}
}

// Transactions lists the plan in broadcast order, cold before hot.
func (p *Plan) Transactions() []StagedTransaction {
	return []StagedTransaction{
		{Stage: StageVault, Tx: p.Vault},
		{Stage: StageUnvault, Tx: p.Unvault},
		{Stage: StageCold, Tx: p.Cold},
		{Stage: StageHot, Tx: p.Hot},
	}
}
