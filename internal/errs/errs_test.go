package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("email", "email is required"), http.StatusBadRequest},
		{"not found", NotFound("user %d not found", 4), http.StatusNotFound},
		{"conflict", Conflict("duplicate", nil), http.StatusConflict},
		{"credentials", ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", Forbidden("admins only"), http.StatusForbidden},
		{"wrapped", fmt.Errorf("create user: %w", NotFound("x")), http.StatusNotFound},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "internal error", Message(errors.New("secret sql")))
	assert.Equal(t, "user 4 not found", Message(NotFound("user %d not found", 4)))
	assert.Equal(t, "already exists: UNIQUE constraint failed: users.email",
		Message(Conflict("already exists", errors.New("UNIQUE constraint failed: users.email"))))
}

func TestFromDB(t *testing.T) {
	assert.NoError(t, FromDB(nil, "x"))

	err := FromDB(errors.New("UNIQUE constraint failed: users.uni_id"), "user already exists")
	assert.True(t, IsConflict(err))
	assert.Contains(t, Message(err), "users.uni_id")

	err = FromDB(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), "dup")
	assert.True(t, IsConflict(err))

	plain := errors.New("connection refused")
	assert.Same(t, plain, FromDB(plain, "dup"))

	nf := NotFound("gone")
	assert.Same(t, nf, FromDB(nf, "dup"))
}

func TestPredicates(t *testing.T) {
	v := Validation("role", "invalid role")
	assert.True(t, IsValidation(v))
	assert.False(t, IsNotFound(v))
	assert.Equal(t, "role", As(v).Field)
	assert.True(t, IsAuthentication(fmt.Errorf("login: %w", ErrInvalidCredentials)))
	assert.True(t, IsForbidden(Forbidden("no")))
	assert.Nil(t, As(errors.New("x")))
}
