package entities

import "time"

// CallerKind tells how a reset request was authorized.
type CallerKind string

const (
	CallerAutomated CallerKind = "automated" // shared secret header
	CallerManual    CallerKind = "manual"    // bearer token of a signed-in user
	CallerScheduled CallerKind = "scheduled" // in-process cron job
)

// ResetState is the lifecycle state of the monthly reset.
type ResetState string

const (
	ResetIdle      ResetState = "idle"
	ResetResetting ResetState = "resetting"
)

// ResetResult describes a completed monthly reset.
type ResetResult struct {
	Success        bool      `json:"success"`
	DeletedRecords int64     `json:"deleted_records"`
	ResetTimestamp time.Time `json:"reset_timestamp"`
	Message        string    `json:"message"`
}

// ResetPreview summarizes what a reset is about to delete.
type ResetPreview struct {
	Records int64 `json:"records"`
	Users   int64 `json:"users"`
	Points  int64 `json:"points"`
}
