package model

// VaultSpec describes a two-phase vault: funds are first locked to an unvault
// commitment, and the unvault output can either be swept to ColdAddress at any
// time or paid to HotAddress after Delay blocks.
type VaultSpec struct {
	HotAddress  string
	ColdAddress string
	Amount      uint64
	Network     Network
	Delay       uint32
	Taproot     bool
}
