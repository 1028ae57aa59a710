package models

type TechRole string

const (
	TechRoleTechnician TechRole = "Technician"
	TechRoleAdmin      TechRole = "Admin"
)

func (r TechRole) Valid() bool {
	return r == TechRoleTechnician || r == TechRoleAdmin
}

// Technician is a support-staff identity. It may exist without a login.
type Technician struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	FullName string   `gorm:"size:100;not null" json:"full_name"`
	Pronouns string   `gorm:"size:20" json:"pronouns,omitempty"`
	Email    string   `gorm:"size:120;uniqueIndex;not null" json:"email"`
	Role     TechRole `gorm:"type:varchar(20);not null" json:"role"`
}

// TechnicianLogin holds credentials for a Technician, matched by email.
// Role is copied from the Technician so authorization needs no join; it is
// re-synced whenever the Technician's role changes.
type TechnicianLogin struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Email        string   `gorm:"size:120;uniqueIndex;not null" json:"email"`
	Username     string   `gorm:"size:50;uniqueIndex;not null" json:"username"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Role         TechRole `gorm:"type:varchar(20);not null" json:"role"`
}
