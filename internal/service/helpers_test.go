package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"techsupport/internal/models"
	"techsupport/internal/testutil"
)

type fixture struct {
	db       *gorm.DB
	lookups  *LookupService
	identity *IdentityService
	assets   *AssetService
	tickets  *TicketService
	search   *SearchService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	lookups := NewLookupService(db)
	return &fixture{
		db:       db,
		lookups:  lookups,
		identity: NewIdentityService(db, bcrypt.MinCost),
		assets:   NewAssetService(db, lookups),
		tickets:  NewTicketService(db),
		search:   NewSearchService(db),
	}
}

func userFields(n int) UserFields {
	return UserFields{
		FullName: fmt.Sprintf("User %d", n),
		Role:     "Staff",
		UniID:    fmt.Sprintf("U%04d", n),
		Email:    fmt.Sprintf("user%d@uni.edu", n),
	}
}

func computerFields(tag string, userID uint) ComputerFields {
	return ComputerFields{
		ComputerID: tag,
		Company:    "Dell",
		Model:      "Latitude 7440",
		CPU:        "i7-1365U",
		OS:         "Windows 11",
		UserID:     fmt.Sprint(userID),
	}
}

func ticketFields(summary string) TicketFields {
	return TicketFields{
		IssueSummary:      summary,
		AppointmentDate:   "2024-03-01",
		AppointmentTime:   "10:30",
		AppointmentLength: "30",
		Location:          "Remote",
	}
}

func (f *fixture) mustUser(t *testing.T, n int) *models.User {
	t.Helper()
	u, err := f.identity.CreateUser(context.Background(), userFields(n))
	require.NoError(t, err)
	return u
}

func (f *fixture) mustComputer(t *testing.T, tag string, userID uint) *models.Computer {
	t.Helper()
	c, err := f.assets.CreateComputer(context.Background(), computerFields(tag, userID))
	require.NoError(t, err)
	return c
}

func (f *fixture) mustTicket(t *testing.T, summary string, userID, computerID uint) *models.Ticket {
	t.Helper()
	tf := ticketFields(summary)
	if userID != 0 {
		tf.UserID = fmt.Sprint(userID)
	}
	if computerID != 0 {
		tf.ComputerID = fmt.Sprint(computerID)
	}
	tk, err := f.tickets.CreateTicket(context.Background(), tf)
	require.NoError(t, err)
	return tk
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
