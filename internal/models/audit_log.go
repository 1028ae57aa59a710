package models

import "time"

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// LoginID is the TechnicianLogin that acted; 0 for the bootstrap flow.
	LoginID uint `gorm:"index" json:"login_id"`

	Entity   string `gorm:"size:50;not null" json:"entity"` // "user", "computer", "ticket", ...
	EntityID uint   `json:"entity_id"`
	Action   string `gorm:"size:50;not null" json:"action"` // "create", "update", "delete", ...
	Details  string `gorm:"type:text" json:"details,omitempty"`
}

// All lists every persisted model in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&Company{},
		&ComputerModel{},
		&CPU{},
		&OperatingSystem{},
		&User{},
		&Technician{},
		&TechnicianLogin{},
		&Computer{},
		&Ticket{},
		&AuditLog{},
	}
}
