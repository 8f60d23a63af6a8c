package domain

import "time"

type AuditActor string

const (
	AuditActorAdmin   AuditActor = "admin"
	AuditActorWebhook AuditActor = "webhook"
	AuditActorAPI     AuditActor = "api"
	AuditActorSystem  AuditActor = "system"
)

type AuditAction string

const (
	AuditActionUpdate      AuditAction = "update"
	AuditActionIncrement   AuditAction = "increment"
	AuditActionDecrement   AuditAction = "decrement"
	AuditActionReset       AuditAction = "reset"
	AuditActionRecalculate AuditAction = "recalculate"
	AuditActionError       AuditAction = "error"
	AuditActionSecurity    AuditAction = "security"
	AuditActionValidation  AuditAction = "validation"
)

// AuditEntry é um registro imutável de uma mutação ou rejeição relevante para segurança.
// OldValue e NewValue podem ser números ou textos.
type AuditEntry struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Actor     AuditActor  `json:"user"`
	Action    AuditAction `json:"action"`
	Field     string      `json:"field"`
	OldValue  any         `json:"oldValue"`
	NewValue  any         `json:"newValue"`
	Details   string      `json:"details,omitempty"`
}
