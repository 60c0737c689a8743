package enums

import "fmt"

// GMVAuditAction maps to the gmv_audit_action enum in Postgres.
type GMVAuditAction string

const (
	GMVAuditActionCompleted GMVAuditAction = "completed"
	GMVAuditActionModified  GMVAuditAction = "modified"
)

var validGMVAuditActions = []GMVAuditAction{
	GMVAuditActionCompleted,
	GMVAuditActionModified,
}

// IsValid reports whether the value matches the canonical enum.
func (a GMVAuditAction) IsValid() bool {
	for _, candidate := range validGMVAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseGMVAuditAction converts raw input into GMVAuditAction.
func ParseGMVAuditAction(value string) (GMVAuditAction, error) {
	for _, candidate := range validGMVAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gmv audit action %q", value)
}
