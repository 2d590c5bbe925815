package service

import (
	"context"
	"encoding/json"
	"log"

	"marketplace/internal/model"
	"marketplace/internal/repository"

	"github.com/google/uuid"
)

// parseUserID converts a JWT subject into a nullable uuid for audit columns.
// Automated callers without a user context map to nil.
func parseUserID(userID string) *uuid.UUID {
	if parsed, err := uuid.Parse(userID); err == nil {
		return &parsed
	}
	return nil
}

// writeAuditLog records an action outside a transaction; a failed audit write
// is logged but never fails the business operation it describes.
func writeAuditLog(ctx context.Context, auditRepo repository.AuditRepository, userID, action, entityID, entityName string, details interface{}) {
	if auditRepo == nil {
		return
	}
	payload, _ := json.Marshal(details)
	entry := &model.AuditLog{
		UserID:     parseUserID(userID),
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
	}
	if err := auditRepo.Log(ctx, entry); err != nil {
		log.Printf("failed to write audit log for %s: %v", action, err)
	}
}
