package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"techsupport/internal/errs"
	"techsupport/internal/models"
)

// DeleteUser removes a user together with its computers, the tickets of
// those computers and the tickets raised for the user, as one unit.
func (s *IdentityService) DeleteUser(ctx context.Context, id uint) (*models.User, error) {
	return s.deleteUserWhere(ctx, "id = ?", id)
}

// DeleteUserByEmail is the admin screen variant keyed by email.
func (s *IdentityService) DeleteUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.deleteUserWhere(ctx, "email = ?", email)
}

func (s *IdentityService) deleteUserWhere(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(query, arg).Take(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("user %v not found", arg)
			}
			return err
		}

		var computerIDs []uint
		if err := tx.Model(&models.Computer{}).
			Where("assigned_user_id = ?", u.ID).
			Pluck("id", &computerIDs).Error; err != nil {
			return fmt.Errorf("find computers of user %d: %w", u.ID, err)
		}
		if err := deleteComputers(tx, computerIDs); err != nil {
			return err
		}
		if err := deleteTicketsForUser(tx, u.ID); err != nil {
			return err
		}
		return tx.Delete(&u).Error
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}
