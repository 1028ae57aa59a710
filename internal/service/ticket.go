package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"techsupport/internal/errs"
	"techsupport/internal/models"
)

// TicketFields is the add/edit ticket form. The appointment arrives as
// separate date and time inputs.
type TicketFields struct {
	IssueSummary      string `form:"issue_summary" validate:"required,max=200"`
	Status            string `form:"status" validate:"max=20"`
	AppointmentDate   string `form:"appointment_date"`
	AppointmentTime   string `form:"appointment_time"`
	AppointmentLength string `form:"appointment_length"`
	Location          string `form:"location" validate:"required,oneof='In House' 'At Office' Remote"`
	UserID            string `form:"user_id"`
	ComputerID        string `form:"computer_id"`
	AssignedPersonID  string `form:"assigned_person_id"`
}

type TicketService struct {
	db *gorm.DB
}

func NewTicketService(db *gorm.DB) *TicketService {
	return &TicketService{db: db}
}

func (f *TicketFields) apply(t *models.Ticket) error {
	trimAll(&f.IssueSummary, &f.Status, &f.Location)
	if err := validateFields(f); err != nil {
		return err
	}

	at, err := appointmentAt(f.AppointmentDate, f.AppointmentTime)
	if err != nil {
		return err
	}
	length, err := requiredInt("appointment_length", f.AppointmentLength)
	if err != nil {
		return err
	}
	if length < 0 {
		return errs.Validation("appointment_length", "appointment_length must not be negative")
	}
	userID, err := optionalID("user_id", f.UserID)
	if err != nil {
		return err
	}
	computerID, err := optionalID("computer_id", f.ComputerID)
	if err != nil {
		return err
	}
	assignee, err := optionalID("assigned_person_id", f.AssignedPersonID)
	if err != nil {
		return err
	}

	status := f.Status
	if status == "" {
		status = models.StatusOpen
	}

	t.IssueSummary = f.IssueSummary
	t.Status = status
	t.AppointmentTime = &at
	t.AppointmentLength = length
	t.Location = models.TicketLocation(f.Location)
	t.UserID = userID
	t.ComputerID = computerID
	t.AssignedPersonID = assignee
	return nil
}

// checkRefs verifies that every set reference resolves on tx.
func checkRefs(tx *gorm.DB, t *models.Ticket) error {
	refs := []struct {
		id    *uint
		model any
		name  string
	}{
		{t.UserID, &models.User{}, "user"},
		{t.ComputerID, &models.Computer{}, "computer"},
		{t.AssignedPersonID, &models.Technician{}, "technician"},
	}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		var count int64
		if err := tx.Model(ref.model).Where("id = ?", *ref.id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NotFound("%s %d not found", ref.name, *ref.id)
		}
	}
	return nil
}

func (s *TicketService) CreateTicket(ctx context.Context, f TicketFields) (*models.Ticket, error) {
	var t models.Ticket
	if err := f.apply(&t); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkRefs(tx, &t); err != nil {
			return err
		}
		return tx.Omit("User", "Computer", "AssignedPerson").Create(&t).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTicket rewrites every mutable field. CreatedAt is never touched.
func (s *TicketService) UpdateTicket(ctx context.Context, id uint, f TicketFields) (*models.Ticket, error) {
	var t models.Ticket
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("ticket %d not found", id)
			}
			return err
		}
		if err := f.apply(&t); err != nil {
			return err
		}
		if err := checkRefs(tx, &t); err != nil {
			return err
		}
		return tx.Omit("CreatedAt", "User", "Computer", "AssignedPerson").Save(&t).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TicketService) GetTicket(ctx context.Context, id uint) (*models.Ticket, error) {
	var t models.Ticket
	err := s.db.WithContext(ctx).
		Preload("User").Preload("Computer").Preload("AssignedPerson").
		First(&t, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("ticket %d not found", id)
		}
		return nil, err
	}
	return &t, nil
}

// ListOpen returns every ticket not marked Closed, earliest appointment
// first. Tickets without an appointment sort last.
func (s *TicketService) ListOpen(ctx context.Context) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.WithContext(ctx).
		Preload("User").Preload("Computer").Preload("AssignedPerson").
		Where("status <> ?", models.StatusClosed).
		Order("appointment_time IS NULL, appointment_time asc, id asc").
		Find(&tickets).Error
	return tickets, err
}

// ListAll returns every ticket, newest first.
func (s *TicketService) ListAll(ctx context.Context) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.WithContext(ctx).
		Preload("User").Preload("Computer").Preload("AssignedPerson").
		Order("created_at desc, id desc").
		Find(&tickets).Error
	return tickets, err
}

func (s *TicketService) DeleteTicket(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Ticket{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("ticket %d not found", id)
	}
	return nil
}

// DeleteForUser removes every ticket raised for userID.
func (s *TicketService) DeleteForUser(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteTicketsForUser(tx, userID)
	})
}

// DeleteForComputer removes every ticket raised against computerID.
func (s *TicketService) DeleteForComputer(ctx context.Context, computerID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteTicketsForComputers(tx, []uint{computerID})
	})
}

func deleteTicketsForUser(tx *gorm.DB, userID uint) error {
	if err := tx.Where("user_id = ?", userID).Delete(&models.Ticket{}).Error; err != nil {
		return fmt.Errorf("delete tickets of user %d: %w", userID, err)
	}
	return nil
}

func deleteTicketsForComputers(tx *gorm.DB, computerIDs []uint) error {
	if err := tx.Where("computer_id IN ?", computerIDs).Delete(&models.Ticket{}).Error; err != nil {
		return fmt.Errorf("delete tickets of computers: %w", err)
	}
	return nil
}
