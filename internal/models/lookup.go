package models

// LookupEntry is the shape shared by every lookup table: an id and a unique
// name matched literally (no case or whitespace folding).
type LookupEntry struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

type Company struct{ LookupEntry }

type ComputerModel struct{ LookupEntry }

func (ComputerModel) TableName() string { return "models" }

type CPU struct{ LookupEntry }

func (CPU) TableName() string { return "cpus" }

type OperatingSystem struct{ LookupEntry }

func (OperatingSystem) TableName() string { return "operating_systems" }

type LookupKind string

const (
	LookupCompany LookupKind = "company"
	LookupModel   LookupKind = "model"
	LookupCPU     LookupKind = "cpu"
	LookupOS      LookupKind = "os"
)

var LookupKinds = []LookupKind{LookupCompany, LookupModel, LookupCPU, LookupOS}

func (k LookupKind) Valid() bool {
	switch k {
	case LookupCompany, LookupModel, LookupCPU, LookupOS:
		return true
	}
	return false
}

// Table is the lookup table backing k.
func (k LookupKind) Table() string {
	switch k {
	case LookupCompany:
		return "companies"
	case LookupModel:
		return "models"
	case LookupCPU:
		return "cpus"
	case LookupOS:
		return "operating_systems"
	}
	return ""
}

// ComputerColumn is the foreign key column on computers referencing k.
func (k LookupKind) ComputerColumn() string {
	switch k {
	case LookupCompany:
		return "company_id"
	case LookupModel:
		return "model_id"
	case LookupCPU:
		return "cpu_id"
	case LookupOS:
		return "os_id"
	}
	return ""
}
