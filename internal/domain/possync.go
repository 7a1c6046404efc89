package domain

import "time"

// PosReport is a raw, untrusted stock-change report from one POS channel.
type PosReport struct {
	PosID          string    `json:"pos_id"`
	TransactionID  string    `json:"transaction_id"`
	ItemID         string    `json:"item_id"`
	Timestamp      time.Time `json:"timestamp"`
	QuantityChange float64   `json:"quantity_change"` // signed delta
	Kind           EntryKind `json:"kind"`
	Priority       int       `json:"priority"` // 1-10, higher = more critical
	SequenceNumber int64     `json:"sequence_number"`
	Checksum       string    `json:"checksum"`
}

// ConflictResolution is the outcome of reconciling one conflict group.
// It names exactly one winner and zero or more rejected reports.
type ConflictResolution struct {
	ID              string         `json:"id"`
	ResolutionType  ResolutionType `json:"resolution_type"`
	Winner          PosReport      `json:"winner"`
	Rejected        []PosReport    `json:"rejected"`
	Reasoning       string         `json:"reasoning"`
	Confidence      float64        `json:"confidence"`
	Timestamp       time.Time      `json:"timestamp"`
	AppliedToLedger bool           `json:"applied_to_ledger"`
}
