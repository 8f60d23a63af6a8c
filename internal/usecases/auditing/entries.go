package auditing

import "github.com/inkchamber/dashboard-api/internal/domain"

// Change registra a alteração de um campo
func Change(actor domain.AuditActor, action domain.AuditAction, field string, oldValue, newValue any) domain.AuditEntry {
	return domain.AuditEntry{
		Actor:    actor,
		Action:   action,
		Field:    field,
		OldValue: oldValue,
		NewValue: newValue,
	}
}

// Security registra uma rejeição relevante para segurança (assinatura, IP, limite, login)
func Security(actor domain.AuditActor, field, details string) domain.AuditEntry {
	return domain.AuditEntry{
		Actor:    actor,
		Action:   domain.AuditActionSecurity,
		Field:    field,
		OldValue: nil,
		NewValue: nil,
		Details:  details,
	}
}

// Validation registra uma entrada rejeitada pela validação
func Validation(actor domain.AuditActor, field string, value any, details string) domain.AuditEntry {
	return domain.AuditEntry{
		Actor:    actor,
		Action:   domain.AuditActionValidation,
		Field:    field,
		NewValue: value,
		Details:  details,
	}
}

// Failure registra um erro ao processar uma mutação
func Failure(actor domain.AuditActor, field string, err error) domain.AuditEntry {
	return domain.AuditEntry{
		Actor:   actor,
		Action:  domain.AuditActionError,
		Field:   field,
		Details: err.Error(),
	}
}
