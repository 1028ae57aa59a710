package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"techsupport/internal/errs"
	"techsupport/internal/models"
)

// UserFields is the admission/edit form for a supported person.
type UserFields struct {
	FullName              string `form:"full_name" validate:"required,max=100"`
	Pronouns              string `form:"pronouns" validate:"max=20"`
	Role                  string `form:"role" validate:"required,oneof=Faculty Staff Other"`
	Department            string `form:"department" validate:"max=100"`
	OfficeNumber          string `form:"office_number" validate:"max=20"`
	CellphoneNumber       string `form:"cellphone_number" validate:"max=20"`
	UniID                 string `form:"uniID" validate:"required,max=20"`
	Email                 string `form:"email" validate:"required,email,max=120"`
	OfficeLocation        string `form:"office_location" validate:"max=100"`
	LastReplacedDate      string `form:"last_replaced_date"`
	ReplacementCycleYears string `form:"replacement_cycle_years"`
}

type TechnicianFields struct {
	FullName string `form:"full_name" validate:"required,max=100"`
	Pronouns string `form:"pronouns" validate:"max=20"`
	Email    string `form:"email" validate:"required,email,max=120"`
	Role     string `form:"role" validate:"required,oneof=Technician Admin"`
}

type LoginFields struct {
	Email    string `form:"email" validate:"required,email,max=120"`
	Username string `form:"username" validate:"required,max=50"`
	Password string `form:"password" validate:"required"`
}

// BootstrapFields creates the first Admin technician together with its login.
type BootstrapFields struct {
	FullName string `form:"full_name" validate:"required,max=100"`
	Pronouns string `form:"pronouns" validate:"max=20"`
	Email    string `form:"email" validate:"required,email,max=120"`
	Username string `form:"username" validate:"required,max=50"`
	Password string `form:"password" validate:"required"`
}

// IdentityService owns Users, Technicians and TechnicianLogins.
type IdentityService struct {
	db         *gorm.DB
	bcryptCost int
	// dummyHash is compared against when the username is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash []byte
}

func NewIdentityService(db *gorm.DB, bcryptCost int) *IdentityService {
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
	if err != nil {
		// only possible with an out-of-range cost, which config validation rejects
		panic(fmt.Sprintf("bcrypt: %v", err))
	}
	return &IdentityService{db: db, bcryptCost: bcryptCost, dummyHash: dummy}
}

//
// USERS
//

func (f *UserFields) build(u *models.User) error {
	trimAll(&f.FullName, &f.Pronouns, &f.Role, &f.Department, &f.OfficeNumber,
		&f.CellphoneNumber, &f.UniID, &f.Email, &f.OfficeLocation)
	if err := validateFields(f); err != nil {
		return err
	}

	replaced, err := optionalDate("last_replaced_date", f.LastReplacedDate)
	if err != nil {
		return err
	}
	cycle, err := optionalInt("replacement_cycle_years", f.ReplacementCycleYears)
	if err != nil {
		return err
	}

	u.FullName = f.FullName
	u.Pronouns = f.Pronouns
	u.Role = models.UserRole(f.Role)
	u.Department = f.Department
	u.OfficeNumber = f.OfficeNumber
	u.CellphoneNumber = f.CellphoneNumber
	u.UniID = f.UniID
	u.Email = f.Email
	u.OfficeLocation = f.OfficeLocation
	u.LastReplacedDate = replaced
	u.ReplacementCycleYears = cycle
	return nil
}

func checkUserUnique(tx *gorm.DB, u *models.User) error {
	var count int64
	if err := tx.Model(&models.User{}).
		Where("uni_id = ? AND id <> ?", u.UniID, u.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errs.Conflict("a user with this university ID already exists", fmt.Errorf("uniID %q", u.UniID))
	}

	if err := tx.Model(&models.User{}).
		Where("email = ? AND id <> ?", u.Email, u.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errs.Conflict("a user with this email already exists", fmt.Errorf("email %q", u.Email))
	}
	return nil
}

func (s *IdentityService) CreateUser(ctx context.Context, f UserFields) (*models.User, error) {
	var u models.User
	if err := f.build(&u); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUserUnique(tx, &u); err != nil {
			return err
		}
		return tx.Create(&u).Error
	})
	if err != nil {
		return nil, errs.FromDB(err, "user already exists")
	}
	return &u, nil
}

func (s *IdentityService) UpdateUser(ctx context.Context, id uint, f UserFields) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("user %d not found", id)
			}
			return err
		}
		if err := f.build(&u); err != nil {
			return err
		}
		if err := checkUserUnique(tx, &u); err != nil {
			return err
		}
		return tx.Save(&u).Error
	})
	if err != nil {
		return nil, errs.FromDB(err, "user already exists")
	}
	return &u, nil
}

// GetUser loads a user with the computers and tickets it owns.
func (s *IdentityService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Preload("Computers", func(db *gorm.DB) *gorm.DB { return db.Order("computer_id asc") }).
		Preload("Tickets", func(db *gorm.DB) *gorm.DB { return db.Order("created_at desc") }).
		First(&u, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("user %d not found", id)
		}
		return nil, err
	}
	return &u, nil
}

func (s *IdentityService) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("full_name asc, id asc").Find(&users).Error
	return users, err
}

//
// TECHNICIANS
//

func (f *TechnicianFields) build() (*models.Technician, error) {
	trimAll(&f.FullName, &f.Pronouns, &f.Email, &f.Role)
	if err := validateFields(f); err != nil {
		return nil, err
	}
	return &models.Technician{
		FullName: f.FullName,
		Pronouns: f.Pronouns,
		Email:    f.Email,
		Role:     models.TechRole(f.Role),
	}, nil
}

// CreateTechnician is idempotent by email: an existing technician with the
// same email is returned unchanged and created is false.
func (s *IdentityService) CreateTechnician(ctx context.Context, f TechnicianFields) (tech *models.Technician, created bool, err error) {
	tech, err = f.build()
	if err != nil {
		return nil, false, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Technician
		err := tx.Where("email = ?", tech.Email).Take(&existing).Error
		if err == nil {
			tech = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		created = true
		return tx.Create(tech).Error
	})
	if err != nil {
		return nil, false, errs.FromDB(err, "technician already exists")
	}
	return tech, created, nil
}

func (s *IdentityService) ListTechnicians(ctx context.Context) ([]models.Technician, error) {
	var techs []models.Technician
	err := s.db.WithContext(ctx).Order("full_name asc, id asc").Find(&techs).Error
	return techs, err
}

// SetTechnicianRole changes a technician's role and re-syncs the role
// copied onto its login in the same transaction.
func (s *IdentityService) SetTechnicianRole(ctx context.Context, id uint, role models.TechRole) error {
	if !role.Valid() {
		return errs.Validation("role", "role must be one of: Technician Admin")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.Technician
		if err := tx.First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("technician %d not found", id)
			}
			return err
		}
		if err := tx.Model(&t).Update("role", role).Error; err != nil {
			return err
		}
		return tx.Model(&models.TechnicianLogin{}).
			Where("email = ?", t.Email).
			Update("role", role).Error
	})
}

// DeleteTechnician removes the technician, its login and its ticket
// assignments as one unit.
func (s *IdentityService) DeleteTechnician(ctx context.Context, id uint) (*models.Technician, error) {
	var t models.Technician
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("technician %d not found", id)
			}
			return err
		}
		if err := tx.Model(&models.Ticket{}).
			Where("assigned_person_id = ?", t.ID).
			Update("assigned_person_id", nil).Error; err != nil {
			return fmt.Errorf("unassign tickets: %w", err)
		}
		if err := tx.Where("email = ?", t.Email).Delete(&models.TechnicianLogin{}).Error; err != nil {
			return fmt.Errorf("delete login: %w", err)
		}
		return tx.Delete(&t).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

//
// LOGINS
//

func (s *IdentityService) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", errs.Validation("password", "password is too long")
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// RegisterLogin creates credentials for an existing technician, matched by
// email. The technician's current role is copied onto the login.
func (s *IdentityService) RegisterLogin(ctx context.Context, f LoginFields) (*models.TechnicianLogin, error) {
	trimAll(&f.Email, &f.Username)
	if err := validateFields(&f); err != nil {
		return nil, err
	}
	hash, err := s.hash(f.Password)
	if err != nil {
		return nil, err
	}

	login := models.TechnicianLogin{
		Email:        f.Email,
		Username:     f.Username,
		PasswordHash: hash,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tech models.Technician
		if err := tx.Where("email = ?", f.Email).Take(&tech).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("no technician is registered with email %s", f.Email)
			}
			return err
		}
		login.Role = tech.Role
		return tx.Create(&login).Error
	})
	if err != nil {
		return nil, errs.FromDB(err, "a login with this username or email already exists")
	}
	return &login, nil
}

// Authenticate verifies a username/password pair. Unknown usernames and
// wrong passwords fail with the same error.
func (s *IdentityService) Authenticate(ctx context.Context, username, password string) (*models.TechnicianLogin, error) {
	var login models.TechnicianLogin
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).Take(&login).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, errs.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(login.PasswordHash), []byte(password)); err != nil {
		return nil, errs.ErrInvalidCredentials
	}
	return &login, nil
}

func (s *IdentityService) GetLogin(ctx context.Context, id uint) (*models.TechnicianLogin, error) {
	var login models.TechnicianLogin
	if err := s.db.WithContext(ctx).First(&login, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("login %d not found", id)
		}
		return nil, err
	}
	return &login, nil
}

func (s *IdentityService) HasAnyLogin(ctx context.Context) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.TechnicianLogin{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ErrAlreadyBootstrapped is returned once any login exists.
var ErrAlreadyBootstrapped = errs.Conflict("the first administrator has already been created", nil)

// BootstrapAdmin creates an Admin technician and its login together. It
// only succeeds while no login exists at all.
func (s *IdentityService) BootstrapAdmin(ctx context.Context, f BootstrapFields) (*models.TechnicianLogin, error) {
	trimAll(&f.FullName, &f.Pronouns, &f.Email, &f.Username)
	if err := validateFields(&f); err != nil {
		return nil, err
	}
	hash, err := s.hash(f.Password)
	if err != nil {
		return nil, err
	}

	var login models.TechnicianLogin
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.TechnicianLogin{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyBootstrapped
		}

		var tech models.Technician
		err := tx.Where("email = ?", f.Email).Take(&tech).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			tech = models.Technician{FullName: f.FullName, Pronouns: f.Pronouns, Email: f.Email, Role: models.TechRoleAdmin}
			if err := tx.Create(&tech).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := tx.Model(&tech).Update("role", models.TechRoleAdmin).Error; err != nil {
				return err
			}
		}

		login = models.TechnicianLogin{
			Email:        f.Email,
			Username:     f.Username,
			PasswordHash: hash,
			Role:         models.TechRoleAdmin,
		}
		return tx.Create(&login).Error
	})
	if err != nil {
		return nil, errs.FromDB(err, "could not create the first administrator")
	}
	return &login, nil
}
