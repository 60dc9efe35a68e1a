package models

import "time"

// AuditType is the event category recorded in the audit log.
type AuditType string

const (
	AuditStart    AuditType = "START"
	AuditNode     AuditType = "NODE"
	AuditComplete AuditType = "COMPLETE"
	AuditInfo     AuditType = "INFO"
)

// AuditEvent is one append-only diagnostic record. The audit log is never
// read by pollers.
type AuditEvent struct {
	Timestamp time.Time
	Type      AuditType
	Node      string
	Status    string
	Message   string
}
