package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"techsupport/internal/errs"
	"techsupport/internal/models"
)

// ComputerFields is the add/edit computer form. Company, model, CPU and OS
// are free text resolved through the lookup tables.
type ComputerFields struct {
	ComputerID      string `form:"computer_id" validate:"required,max=50"`
	Company         string `form:"company" validate:"required,max=100"`
	Model           string `form:"model" validate:"required,max=100"`
	CPU             string `form:"cpu" validate:"required,max=100"`
	OS              string `form:"os" validate:"required,max=100"`
	UserID          string `form:"user_id" validate:"required"`
	Location        string `form:"location" validate:"omitempty,oneof=office home HCS 'Recycling Center'"`
	Room            string `form:"room" validate:"max=50"`
	RAM             string `form:"ram"`
	Storage         string `form:"storage"`
	DateInventoried string `form:"date_inventoried"`
	Price           string `form:"price"`
}

type AssetService struct {
	db      *gorm.DB
	lookups *LookupService
}

func NewAssetService(db *gorm.DB, lookups *LookupService) *AssetService {
	return &AssetService{db: db, lookups: lookups}
}

// apply parses the scalar fields into c. Lookups and the owner are bound
// later inside the write transaction.
func (f *ComputerFields) apply(c *models.Computer) (userID uint, err error) {
	trimAll(&f.ComputerID, &f.Company, &f.Model, &f.CPU, &f.OS, &f.UserID, &f.Location, &f.Room)
	if err := validateFields(f); err != nil {
		return 0, err
	}

	owner, err := optionalID("user_id", f.UserID)
	if err != nil {
		return 0, err
	}
	ram, err := optionalInt("ram", f.RAM)
	if err != nil {
		return 0, err
	}
	storage, err := optionalInt("storage", f.Storage)
	if err != nil {
		return 0, err
	}
	inventoried, err := optionalDate("date_inventoried", f.DateInventoried)
	if err != nil {
		return 0, err
	}
	price, err := optionalDecimal("price", f.Price)
	if err != nil {
		return 0, err
	}

	c.Tag = f.ComputerID
	c.Location = models.ComputerLocation(f.Location)
	c.Room = f.Room
	c.RAM = ram
	c.Storage = storage
	c.DateInventoried = inventoried
	c.Price = price
	return *owner, nil
}

// bind resolves the lookup names and checks the owner on tx.
func (s *AssetService) bind(tx *gorm.DB, c *models.Computer, f *ComputerFields, userID uint) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NotFound("user %d not found", userID)
	}
	c.AssignedUserID = userID

	var err error
	if c.CompanyID, err = s.lookups.ResolveOrCreate(tx, models.LookupCompany, f.Company); err != nil {
		return err
	}
	if c.ModelID, err = s.lookups.ResolveOrCreate(tx, models.LookupModel, f.Model); err != nil {
		return err
	}
	if c.CPUID, err = s.lookups.ResolveOrCreate(tx, models.LookupCPU, f.CPU); err != nil {
		return err
	}
	if c.OSID, err = s.lookups.ResolveOrCreate(tx, models.LookupOS, f.OS); err != nil {
		return err
	}
	return nil
}

func (s *AssetService) CreateComputer(ctx context.Context, f ComputerFields) (*models.Computer, error) {
	var c models.Computer
	userID, err := f.apply(&c)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.bind(tx, &c, &f, userID); err != nil {
			return err
		}
		return tx.Omit("Model", "Company", "CPU", "OS", "AssignedUser", "Tickets").Create(&c).Error
	})
	if err != nil {
		return nil, errs.FromDB(err, "a computer with this computer ID already exists")
	}
	return &c, nil
}

func (s *AssetService) UpdateComputer(ctx context.Context, id uint, f ComputerFields) (*models.Computer, error) {
	var c models.Computer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("computer %d not found", id)
			}
			return err
		}
		userID, err := f.apply(&c)
		if err != nil {
			return err
		}
		if err := s.bind(tx, &c, &f, userID); err != nil {
			return err
		}
		return tx.Omit("Model", "Company", "CPU", "OS", "AssignedUser", "Tickets").Save(&c).Error
	})
	if err != nil {
		return nil, errs.FromDB(err, "a computer with this computer ID already exists")
	}
	return &c, nil
}

func (s *AssetService) GetComputer(ctx context.Context, id uint) (*models.Computer, error) {
	var c models.Computer
	err := s.db.WithContext(ctx).
		Preload("Model").Preload("Company").Preload("CPU").Preload("OS").
		Preload("AssignedUser").
		Preload("Tickets", func(db *gorm.DB) *gorm.DB { return db.Order("created_at desc") }).
		First(&c, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("computer %d not found", id)
		}
		return nil, err
	}
	return &c, nil
}

func (s *AssetService) ListComputers(ctx context.Context) ([]models.Computer, error) {
	var computers []models.Computer
	err := s.db.WithContext(ctx).
		Preload("Model").Preload("Company").Preload("CPU").Preload("OS").
		Preload("AssignedUser").
		Order("computer_id asc").
		Find(&computers).Error
	return computers, err
}

// DeleteComputer removes a computer and every ticket referencing it.
func (s *AssetService) DeleteComputer(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Computer
		if err := tx.First(&c, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("computer %d not found", id)
			}
			return err
		}
		return deleteComputers(tx, []uint{c.ID})
	})
}

// DeleteComputerByTag is the admin screen variant keyed by computer_id.
func (s *AssetService) DeleteComputerByTag(ctx context.Context, tag string) (*models.Computer, error) {
	var c models.Computer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("computer_id = ?", tag).Take(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("computer %q not found", tag)
			}
			return err
		}
		return deleteComputers(tx, []uint{c.ID})
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// deleteComputers removes the tickets of ids and then the computers. It
// must run inside a transaction.
func deleteComputers(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := deleteTicketsForComputers(tx, ids); err != nil {
		return err
	}
	if err := tx.Where("id IN ?", ids).Delete(&models.Computer{}).Error; err != nil {
		return fmt.Errorf("delete computers: %w", err)
	}
	return nil
}
