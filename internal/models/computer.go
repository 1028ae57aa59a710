package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ComputerLocation string

const (
	LocationOffice    ComputerLocation = "office"
	LocationHome      ComputerLocation = "home"
	LocationHCS       ComputerLocation = "HCS"
	LocationRecycling ComputerLocation = "Recycling Center"
)

// Computer is an inventory asset owned by exactly one User.
type Computer struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	// Tag is the asset tag. It is not named ComputerID so that gorm does not
	// mistake it for the foreign key of Ticket.Computer.
	Tag string `gorm:"column:computer_id;size:50;uniqueIndex;not null" json:"computer_id"`

	ModelID   uint `gorm:"not null" json:"model_id"`
	CompanyID uint `gorm:"not null" json:"company_id"`
	CPUID     uint `gorm:"column:cpu_id;not null" json:"cpu_id"`
	OSID      uint `gorm:"column:os_id;not null" json:"os_id"`

	AssignedUserID uint `gorm:"not null;index" json:"assigned_user_id"`

	Location        ComputerLocation    `gorm:"size:30" json:"location,omitempty"`
	Room            string              `gorm:"size:50" json:"room,omitempty"`
	RAM             *int                `gorm:"column:ram" json:"ram,omitempty"`
	Storage         *int                `json:"storage,omitempty"`
	DateInventoried *time.Time          `json:"date_inventoried,omitempty"`
	Price           decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"price"`

	Model        ComputerModel   `gorm:"foreignKey:ModelID" json:"model"`
	Company      Company         `gorm:"foreignKey:CompanyID" json:"company"`
	CPU          CPU             `gorm:"foreignKey:CPUID" json:"cpu"`
	OS           OperatingSystem `gorm:"foreignKey:OSID" json:"os"`
	AssignedUser *User           `gorm:"foreignKey:AssignedUserID" json:"assigned_user,omitempty"`
	Tickets      []Ticket        `gorm:"foreignKey:ComputerID;references:ID" json:"tickets,omitempty"`
}
