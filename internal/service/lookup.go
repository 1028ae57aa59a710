package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"techsupport/internal/errs"
	"techsupport/internal/models"
)

// LookupService manages the Company, Model, CPU and OS reference tables.
type LookupService struct {
	db *gorm.DB
}

func NewLookupService(db *gorm.DB) *LookupService {
	return &LookupService{db: db}
}

func checkKind(kind models.LookupKind) error {
	if !kind.Valid() {
		return errs.Validation("kind", fmt.Sprintf("unknown lookup kind %q", kind))
	}
	return nil
}

// ResolveOrCreate returns the id of the row named name, inserting it first
// if needed. It runs on the caller's transaction.
func (s *LookupService) ResolveOrCreate(tx *gorm.DB, kind models.LookupKind, name string) (uint, error) {
	if err := checkKind(kind); err != nil {
		return 0, err
	}
	if name == "" {
		return 0, errs.Validation(string(kind), string(kind)+" is required")
	}

	var entry models.LookupEntry
	err := tx.Table(kind.Table()).Where("name = ?", name).Take(&entry).Error
	if err == nil {
		return entry.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("find %s %q: %w", kind, name, err)
	}

	entry = models.LookupEntry{Name: name}
	if err := tx.Table(kind.Table()).Create(&entry).Error; err != nil {
		return 0, errs.FromDB(fmt.Errorf("create %s %q: %w", kind, name, err), string(kind)+" already exists")
	}
	return entry.ID, nil
}

func (s *LookupService) List(ctx context.Context, kind models.LookupKind) ([]models.LookupEntry, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	var entries []models.LookupEntry
	err := s.db.WithContext(ctx).Table(kind.Table()).Order("name asc").Find(&entries).Error
	return entries, err
}

// ListAll returns every lookup table keyed by kind, for dropdown menus.
func (s *LookupService) ListAll(ctx context.Context) (map[models.LookupKind][]models.LookupEntry, error) {
	out := make(map[models.LookupKind][]models.LookupEntry, len(models.LookupKinds))
	for _, kind := range models.LookupKinds {
		entries, err := s.List(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", kind, err)
		}
		out[kind] = entries
	}
	return out, nil
}

// Add inserts a new entry; unlike ResolveOrCreate an existing name is a conflict.
func (s *LookupService) Add(ctx context.Context, kind models.LookupKind, name string) (*models.LookupEntry, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.Validation("name", "name is required")
	}

	entry := models.LookupEntry{Name: name}
	if err := s.db.WithContext(ctx).Table(kind.Table()).Create(&entry).Error; err != nil {
		return nil, errs.FromDB(err, fmt.Sprintf("%s %q already exists", kind, name))
	}
	return &entry, nil
}

// Delete removes the named entry. Entries still referenced by a computer
// cannot be removed because the computer columns are NOT NULL.
func (s *LookupService) Delete(ctx context.Context, kind models.LookupKind, name string) error {
	if err := checkKind(kind); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.LookupEntry
		if err := tx.Table(kind.Table()).Where("name = ?", name).Take(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("%s %q not found", kind, name)
			}
			return err
		}

		var refs int64
		if err := tx.Model(&models.Computer{}).
			Where(kind.ComputerColumn()+" = ?", entry.ID).
			Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return errs.Conflict(fmt.Sprintf("%s %q is still used by %d computer(s)", kind, name, refs), nil)
		}

		return tx.Table(kind.Table()).Where("id = ?", entry.ID).Delete(&models.LookupEntry{}).Error
	})
}
