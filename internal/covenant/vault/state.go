package vault

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/wire"
)

// State is the position of the vaulted funds in the vault chain.
type State uint8

const (
	Vaulted State = iota
	Unvaulting
	ColdSpent
	HotSpent
)

func (s State) String() string {
	switch s {
	case Vaulted:
		return "vaulted"
	case Unvaulting:
		return "unvaulting"
	case ColdSpent:
		return "cold_spent"
	case HotSpent:
		return "hot_spent"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == ColdSpent || s == HotSpent
}

// Action is a transition request.
type Action uint8

const (
	// Unvault starts the withdrawal delay.
	Unvault Action = iota
	// Recover sweeps an unvaulting output to cold storage.
	Recover
	// Spend pays an unvaulting output to the hot address once the delay has passed.
	Spend
)

func (a Action) String() string {
	switch a {
	case Unvault:
		return "unvault"
	case Recover:
		return "recover"
	case Spend:
		return "spend"
	default:
		return fmt.Sprintf("action(%d)", uint8(a))
	}
}

var ErrInvalidTransition = errors.New("invalid vault transition")

// Next returns the state reached by applying a in s. Transitions only move
// forward; nothing leads back to Vaulted.
func Next(s State, a Action) (State, error) {
	switch {
	case s == Vaulted && a == Unvault:
		return Unvaulting, nil
	case s == Unvaulting && a == Recover:
		return ColdSpent, nil
	case s == Unvaulting && a == Spend:
		return HotSpent, nil
	default:
		return s, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, a, s)
	}
}

// TransactionFor returns the transaction that moves funds into s by spending prev.
func (v *Vault) TransactionFor(s State, prev wire.OutPoint) (*wire.MsgTx, error) {
	switch s {
	case Vaulted:
		return v.VaultingTransaction(prev), nil
	case Unvaulting:
		return v.UnvaultingTransaction(prev), nil
	case ColdSpent:
		return v.ColdSpendTransaction(prev), nil
	case HotSpent:
		return v.HotSpendTransaction(prev), nil
	default:
		return nil, fmt.Errorf("%w: unknown state %s", ErrInvalidTransition, s)
	}
}

// Tracker follows one vault deposit through its states.
type Tracker struct {
	vault   *Vault
	state   State
	current wire.OutPoint
}

// Track starts at Vaulted with the vault output at outpoint.
func (v *Vault) Track(outpoint wire.OutPoint) *Tracker {
	return &Tracker{vault: v, state: Vaulted, current: outpoint}
}

func (t *Tracker) State() State {
	return t.state
}

// OutPoint is the output currently holding the funds.
func (t *Tracker) OutPoint() wire.OutPoint {
	return t.current
}

// Apply performs a and returns the transaction that realizes it. The tracker
// is left unchanged on error.
func (t *Tracker) Apply(a Action) (*wire.MsgTx, error) {
	next, err := Next(t.state, a)
	if err != nil {
		return nil, err
	}
	tx, err := t.vault.TransactionFor(next, t.current)
	if err != nil {
		return nil, err
	}
	t.state = next
	t.current = wire.OutPoint{Hash: tx.TxHash(), Index: 0}
	return tx, nil
}
