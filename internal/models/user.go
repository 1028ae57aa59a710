package models

import "time"

type UserRole string

const (
	UserRoleFaculty UserRole = "Faculty"
	UserRoleStaff   UserRole = "Staff"
	UserRoleOther   UserRole = "Other"
)

// User is a supported person (faculty or staff), not a technician.
type User struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	FullName              string     `gorm:"size:100;not null" json:"full_name"`
	Pronouns              string     `gorm:"size:20" json:"pronouns,omitempty"`
	Role                  UserRole   `gorm:"type:varchar(10);not null" json:"role"`
	Department            string     `gorm:"size:100" json:"department,omitempty"`
	OfficeNumber          string     `gorm:"size:20" json:"office_number,omitempty"`
	CellphoneNumber       string     `gorm:"size:20" json:"cellphone_number,omitempty"`
	UniID                 string     `gorm:"column:uni_id;size:20;uniqueIndex;not null" json:"uniID"`
	Email                 string     `gorm:"size:120;uniqueIndex;not null" json:"email"`
	OfficeLocation        string     `gorm:"size:100" json:"office_location,omitempty"`
	LastReplacedDate      *time.Time `json:"last_replaced_date,omitempty"`
	ReplacementCycleYears *int       `json:"replacement_cycle_years,omitempty"`

	Computers []Computer `gorm:"foreignKey:AssignedUserID" json:"computers,omitempty"`
	Tickets   []Ticket   `gorm:"foreignKey:UserID" json:"tickets,omitempty"`
}
