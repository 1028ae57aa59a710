package models

import "time"

// StatusClosed is the only status with special meaning; any other text is a
// free-form label.
const (
	StatusOpen   = "Open"
	StatusClosed = "Closed"
)

type TicketLocation string

const (
	TicketInHouse  TicketLocation = "In House"
	TicketAtOffice TicketLocation = "At Office"
	TicketRemote   TicketLocation = "Remote"
)

type Ticket struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	IssueSummary      string         `gorm:"size:200;not null" json:"issue_summary"`
	Status            string         `gorm:"size:20;not null;default:Open" json:"status"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	AppointmentTime   *time.Time     `gorm:"index" json:"appointment_time,omitempty"`
	AppointmentLength int            `json:"appointment_length"`
	Location          TicketLocation `gorm:"size:20" json:"location"`

	UserID           *uint `gorm:"index" json:"user_id,omitempty"`
	ComputerID       *uint `gorm:"index" json:"computer_id,omitempty"`
	AssignedPersonID *uint `gorm:"index" json:"assigned_person_id,omitempty"`

	User           *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Computer       *Computer   `gorm:"foreignKey:ComputerID;references:ID" json:"computer,omitempty"`
	AssignedPerson *Technician `gorm:"foreignKey:AssignedPersonID" json:"assigned_person,omitempty"`
}

func (t *Ticket) IsOpen() bool {
	return t.Status != StatusClosed
}
