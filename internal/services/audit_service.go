package services

import (
	"encoding/json"

	"gorm.io/gorm"

	"budgettracker/internal/logger"
	"budgettracker/internal/models"
)

// Audit actions recorded by the handlers.
const (
	AuditLogin             = "LOGIN"
	AuditRegister          = "REGISTER"
	AuditCreateCategory    = "CREATE_CATEGORY"
	AuditUpdateCategory    = "UPDATE_CATEGORY"
	AuditDeleteCategory    = "DELETE_CATEGORY"
	AuditCreateTransaction = "CREATE_TRANSACTION"
	AuditUpdateTransaction = "UPDATE_TRANSACTION"
	AuditDeleteTransaction = "DELETE_TRANSACTION"
	AuditCreateBudget      = "CREATE_BUDGET"
	AuditUpdateBudget      = "UPDATE_BUDGET"
	AuditDeleteBudget      = "DELETE_BUDGET"
)

// auditService handles audit log recording.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Failures are logged and swallowed.
func (s *auditService) Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]any) {
	var changesJSON string
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = "{}"
		} else {
			changesJSON = string(data)
		}
	}

	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}
