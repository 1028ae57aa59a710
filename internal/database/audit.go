package database

import (
	"context"

	"gorm.io/gorm"

	"techsupport/internal/models"
)

// CreateAuditLog appends one row to the audit trail.
func CreateAuditLog(ctx context.Context, db *gorm.DB, loginID uint, entity string, entityID uint, action, details string) error {
	record := models.AuditLog{
		LoginID:  loginID,
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	}
	return db.WithContext(ctx).Create(&record).Error
}

func RecentAuditLogs(ctx context.Context, db *gorm.DB, limit int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := db.WithContext(ctx).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
