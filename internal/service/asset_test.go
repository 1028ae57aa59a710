package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"techsupport/internal/errs"
	"techsupport/internal/models"
)

func TestCreateComputer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.mustUser(t, 1)

	in := computerFields("TAG-100", u.ID)
	in.Location = "Recycling Center"
	in.RAM = "16"
	in.Storage = "512"
	in.DateInventoried = "2024-01-09"
	in.Price = "1299.99"
	c, err := f.assets.CreateComputer(ctx, in)
	require.NoError(t, err)

	got, err := f.assets.GetComputer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "TAG-100", got.Tag)
	assert.Equal(t, "Dell", got.Company.Name)
	assert.Equal(t, "Latitude 7440", got.Model.Name)
	assert.Equal(t, "i7-1365U", got.CPU.Name)
	assert.Equal(t, "Windows 11", got.OS.Name)
	require.NotNil(t, got.AssignedUser)
	assert.Equal(t, u.ID, got.AssignedUser.ID)
	assert.Equal(t, models.LocationRecycling, got.Location)
	require.NotNil(t, got.RAM)
	assert.Equal(t, 16, *got.RAM)
	require.True(t, got.Price.Valid)
	assert.Equal(t, "1299.99", got.Price.Decimal.StringFixed(2))
}

func TestCreateComputerEmptyOptionalFieldsAreNull(t *testing.T) {
	f := newFixture(t)
	u := f.mustUser(t, 1)
	c := f.mustComputer(t, "TAG-1", u.ID)

	got, err := f.assets.GetComputer(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RAM)
	assert.Nil(t, got.Storage)
	assert.Nil(t, got.DateInventoried)
	assert.False(t, got.Price.Valid)
}

func TestCreateComputerSharesLookupRows(t *testing.T) {
	f := newFixture(t)
	u := f.mustUser(t, 1)
	f.mustComputer(t, "TAG-1", u.ID)
	f.mustComputer(t, "TAG-2", u.ID)

	assert.EqualValues(t, 1, count(t, f.db, &models.Company{}))
	assert.EqualValues(t, 1, count(t, f.db, &models.ComputerModel{}))
	assert.EqualValues(t, 1, count(t, f.db, &models.CPU{}))
	assert.EqualValues(t, 1, count(t, f.db, &models.OperatingSystem{}))
}

func TestCreateComputerUnknownUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := computerFields("TAG-1", 404)
	in.Company = "Framework"
	_, err := f.assets.CreateComputer(ctx, in)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
	assert.EqualValues(t, 0, count(t, f.db, &models.Computer{}))

	// later reads still work and resolve the name normally
	u := f.mustUser(t, 1)
	in = computerFields("TAG-1", u.ID)
	in.Company = "Framework"
	c, err := f.assets.CreateComputer(ctx, in)
	require.NoError(t, err)
	got, err := f.assets.GetComputer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Framework", got.Company.Name)
}

func TestCreateComputerValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.mustUser(t, 1)

	tests := []struct {
		name  string
		edit  func(*ComputerFields)
		field string
	}{
		{"missing tag", func(c *ComputerFields) { c.ComputerID = "" }, "computer_id"},
		{"missing company", func(c *ComputerFields) { c.Company = " " }, "company"},
		{"missing owner", func(c *ComputerFields) { c.UserID = "" }, "user_id"},
		{"bad owner", func(c *ComputerFields) { c.UserID = "abc" }, "user_id"},
		{"bad location", func(c *ComputerFields) { c.Location = "garage" }, "location"},
		{"bad ram", func(c *ComputerFields) { c.RAM = "16GB" }, "ram"},
		{"bad price", func(c *ComputerFields) { c.Price = "$12" }, "price"},
		{"bad date", func(c *ComputerFields) { c.DateInventoried = "yesterday" }, "date_inventoried"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := computerFields("TAG-V", u.ID)
			tt.edit(&in)
			_, err := f.assets.CreateComputer(ctx, in)
			require.Error(t, err)
			assert.True(t, errs.IsValidation(err))
			assert.Equal(t, tt.field, errs.As(err).Field)
		})
	}
}

func TestCreateComputerDuplicateTag(t *testing.T) {
	f := newFixture(t)
	u := f.mustUser(t, 1)
	f.mustComputer(t, "TAG-1", u.ID)

	_, err := f.assets.CreateComputer(context.Background(), computerFields("TAG-1", u.ID))
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))
	assert.EqualValues(t, 1, count(t, f.db, &models.Computer{}))
}

func TestUpdateComputerRebindsReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.mustUser(t, 1)
	bob := f.mustUser(t, 2)
	c := f.mustComputer(t, "TAG-1", alice.ID)

	in := computerFields("TAG-1", bob.ID)
	in.Company = "Lenovo"
	in.RAM = "32"
	_, err := f.assets.UpdateComputer(ctx, c.ID, in)
	require.NoError(t, err)

	got, err := f.assets.GetComputer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, got.AssignedUserID)
	assert.Equal(t, "Lenovo", got.Company.Name)
	require.NotNil(t, got.RAM)
	assert.Equal(t, 32, *got.RAM)
}

func TestUpdateComputerNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.mustUser(t, 1)
	c := f.mustComputer(t, "TAG-1", u.ID)

	_, err := f.assets.UpdateComputer(ctx, 999, computerFields("TAG-1", u.ID))
	assert.True(t, errs.IsNotFound(err))

	_, err = f.assets.UpdateComputer(ctx, c.ID, computerFields("TAG-1", 999))
	assert.True(t, errs.IsNotFound(err))

	got, err := f.assets.GetComputer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.AssignedUserID)
}

func TestDeleteComputerCascadesOwnTicketsOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.mustUser(t, 1)
	c1 := f.mustComputer(t, "TAG-1", u.ID)
	c2 := f.mustComputer(t, "TAG-2", u.ID)
	f.mustTicket(t, "fan noise", u.ID, c1.ID)
	f.mustTicket(t, "no boot", 0, c1.ID)
	other := f.mustTicket(t, "slow", u.ID, c2.ID)

	require.NoError(t, f.assets.DeleteComputer(ctx, c1.ID))

	_, err := f.assets.GetComputer(ctx, c1.ID)
	assert.True(t, errs.IsNotFound(err))
	all, err := f.tickets.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, other.ID, all[0].ID)

	assert.True(t, errs.IsNotFound(f.assets.DeleteComputer(ctx, c1.ID)))
}

func TestDeleteComputerByTag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.mustUser(t, 1)
	c := f.mustComputer(t, "TAG-1", u.ID)
	f.mustTicket(t, "fan noise", u.ID, c.ID)

	deleted, err := f.assets.DeleteComputerByTag(ctx, "TAG-1")
	require.NoError(t, err)
	assert.Equal(t, c.ID, deleted.ID)
	assert.EqualValues(t, 0, count(t, f.db, &models.Computer{}))
	assert.EqualValues(t, 0, count(t, f.db, &models.Ticket{}))

	_, err = f.assets.DeleteComputerByTag(ctx, "TAG-1")
	assert.True(t, errs.IsNotFound(err))
}

// failDeletesOn makes every DELETE against table fail.
func failDeletesOn(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	err := db.Callback().Delete().Before("gorm:delete").Register("test:fail_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(errors.New("injected failure"))
		}
	})
	require.NoError(t, err)
}

func TestDeleteComputerIsAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.mustUser(t, 1)
	c := f.mustComputer(t, "TAG-1", u.ID)
	f.mustTicket(t, "fan noise", u.ID, c.ID)

	failDeletesOn(t, f.db, "computers")

	require.Error(t, f.assets.DeleteComputer(ctx, c.ID))
	assert.EqualValues(t, 1, count(t, f.db, &models.Computer{}))
	assert.EqualValues(t, 1, count(t, f.db, &models.Ticket{}))
}
