package model

import "time"

// ArchivedTransaction is a built covenant transaction kept for later retrieval.
// PlanID is the address of the covenant or vault the transaction belongs to.
type ArchivedTransaction struct {
	Network     Network
	PlanID      string
	Stage       string
	Position    uint32
	TxID        string
	RawHex      string
	Size        uint32
	InputCount  uint32
	OutputCount uint32
	CreatedAt   time.Time
}
