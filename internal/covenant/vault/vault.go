// Package vault builds the two-phase CTV vault: a deposit locked to an unvault
// commitment, and an unvault output that is either swept to cold storage at
// once or paid to the hot address after a relative delay.
package vault

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

// Fee policy in satoshis. These are flat amounts taken from the deposit, not
// estimates derived from transaction size.
const (
	DefaultUnvaultFee uint64 = 600
	DefaultSpendFee   uint64 = 1200
)

// MaxDelay is the largest block-based relative lock time BIP-68 can express.
const MaxDelay = 0xffff

const templateVersion = 2

// Fees are cumulative: Spend is deducted from the deposit, so it must
// cover Unvault.
type Fees struct {
	Unvault uint64
	Spend   uint64
}

// DefaultFees returns the 600/1200 policy.
func DefaultFees() Fees {
	return Fees{Unvault: DefaultUnvaultFee, Spend: DefaultSpendFee}
}

type Option func(*Vault)

// WithFees overrides the fee policy.
func WithFees(fees Fees) Option {
	return func(v *Vault) {
		v.Fees = fees
	}
}

// Vault holds every commitment and script of a vault, computed once in New.
type Vault struct {
	Spec    model.VaultSpec
	Params  *chaincfg.Params
	Fees    Fees
	Variant model.ScriptVariant

	hotPkScript  []byte
	coldPkScript []byte

	HotCommitment  model.Commitment
	ColdCommitment model.Commitment

	// UnvaultScript is the IF/ELSE branch script guarding the unvault output.
	UnvaultScript []byte
	Unvault       *script.Wrapped

	VaultCommitment    model.Commitment
	VaultLockingScript []byte
	Locked             *script.Wrapped
}

// New validates spec and resolves the vault bottom-up: hot and cold
// commitments, the unvault script built from both, and finally the vault
// commitment to the unvault output.
func New(spec model.VaultSpec, opts ...Option) (*Vault, error) {
	v := &Vault{Spec: spec, Fees: DefaultFees(), Variant: model.SegwitVariant()}
	for _, opt := range opts {
		opt(v)
	}
	if spec.Taproot {
		v.Variant = model.TaprootVariant(nil)
	}

	params, err := bitcoin.ChainParams(spec.Network)
	if err != nil {
		return nil, err
	}
	v.Params = params

	if err := v.validate(); err != nil {
		return nil, err
	}

	if v.hotPkScript, err = bitcoin.PayToAddress(spec.HotAddress, params); err != nil {
		return nil, fmt.Errorf("hot address: %w", err)
	}
	if v.coldPkScript, err = bitcoin.PayToAddress(spec.ColdAddress, params); err != nil {
		return nil, fmt.Errorf("cold address: %w", err)
	}

	if v.HotCommitment, err = commit(v.hotTemplate()); err != nil {
		return nil, err
	}
	if v.ColdCommitment, err = commit(v.coldTemplate()); err != nil {
		return nil, err
	}

	if v.UnvaultScript, err = script.UnvaultScript(spec.Delay, v.HotCommitment, v.ColdCommitment); err != nil {
		return nil, err
	}
	if v.Unvault, err = script.Wrap(v.UnvaultScript, v.Variant, params); err != nil {
		return nil, err
	}

	if v.VaultCommitment, err = commit(v.unvaultTemplate()); err != nil {
		return nil, err
	}
	if v.VaultLockingScript, err = script.LockingScript(v.VaultCommitment); err != nil {
		return nil, err
	}
	if v.Locked, err = script.Wrap(v.VaultLockingScript, v.Variant, params); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Vault) validate() error {
	const op = "validate vault"
	switch {
	case v.Spec.Delay == 0 || v.Spec.Delay > MaxDelay:
		return model.Errorf(model.KindInvalidSpec, op, "delay %d outside 1..%d blocks", v.Spec.Delay, MaxDelay)
	case v.Spec.HotAddress == v.Spec.ColdAddress:
		return model.Errorf(model.KindInvalidSpec, op, "hot and cold address are the same")
	case v.Fees.Spend < v.Fees.Unvault:
		return model.Errorf(model.KindInvalidSpec, op, "spend fee %d below unvault fee %d", v.Fees.Spend, v.Fees.Unvault)
	case v.Spec.Amount <= v.Fees.Spend:
		return model.Errorf(model.KindInvalidSpec, op, "amount %d does not cover spend fee %d", v.Spec.Amount, v.Fees.Spend)
	}
	if _, err := safe.Int64(v.Spec.Amount); err != nil {
		return model.NewError(model.KindInvalidSpec, op, err)
	}
	return nil
}

// Address is where the deposit is sent.
func (v *Vault) Address() string {
	return v.Locked.EncodeAddress()
}

// UnvaultAddress is the output created by the unvaulting transaction.
func (v *Vault) UnvaultAddress() string {
	return v.Unvault.EncodeAddress()
}

// UnvaultValue is the deposit less the unvault fee.
func (v *Vault) UnvaultValue() int64 {
	return int64(v.Spec.Amount - v.Fees.Unvault)
}

// SpendValue is the deposit less the spend fee, paid by both final branches.
func (v *Vault) SpendValue() int64 {
	return int64(v.Spec.Amount - v.Fees.Spend)
}

func (v *Vault) hotTemplate() *wire.MsgTx {
	return singleInputTemplate(v.Spec.Delay, wire.NewTxOut(v.SpendValue(), v.hotPkScript))
}

func (v *Vault) coldTemplate() *wire.MsgTx {
	return singleInputTemplate(wire.MaxTxInSequenceNum, wire.NewTxOut(v.SpendValue(), v.coldPkScript))
}

func (v *Vault) unvaultTemplate() *wire.MsgTx {
	return singleInputTemplate(wire.MaxTxInSequenceNum, wire.NewTxOut(v.UnvaultValue(), v.Unvault.PkScript))
}

func singleInputTemplate(sequence uint32, out *wire.TxOut) *wire.MsgTx {
	tx := wire.NewMsgTx(templateVersion)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{}, Sequence: sequence})
	tx.AddTxOut(out)
	return tx
}

func commit(tx *wire.MsgTx) (model.Commitment, error) {
	c, err := template.Hash(tx, 0)
	if err != nil {
		return model.Commitment{}, model.NewError(model.KindUnknown, "template hash", err)
	}
	return c, nil
}
