package users

import (
	"context"
	"testing"

	"lumen-backend/internal/capability"
	"lumen-backend/internal/constants"
	"lumen-backend/internal/domain"
	"lumen-backend/internal/pkg/apperrors"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupUsersTest(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.CapabilityGrant{}))
	return &Service{DB: db, Caps: capability.NewChecker()}
}

func validCreate() CreateUserInput {
	return CreateUserInput{
		Email:    "Ada@Example.com",
		Password: "s3cret!pass",
		Fullname: "Ada Trader",
	}
}

func TestCreateUser_Success(t *testing.T) {
	svc := setupUsersTest(t)

	u, err := svc.CreateUser(context.Background(), validCreate())
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, constants.Viewer, u.Role)
	assert.NotEqual(t, uuid.Nil, u.UserID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret!pass")))
}

func TestCreateUser_Validation(t *testing.T) {
	svc := setupUsersTest(t)

	in := validCreate()
	in.Email = "not-an-email"
	_, err := svc.CreateUser(context.Background(), in)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	in = validCreate()
	in.Password = "short"
	_, err = svc.CreateUser(context.Background(), in)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	in = validCreate()
	in.Fullname = "123"
	_, err = svc.CreateUser(context.Background(), in)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	svc := setupUsersTest(t)
	_, err := svc.CreateUser(context.Background(), validCreate())
	require.NoError(t, err)

	_, err = svc.CreateUser(context.Background(), validCreate())
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUpdateRole(t *testing.T) {
	svc := setupUsersTest(t)
	u, err := svc.CreateUser(context.Background(), validCreate())
	require.NoError(t, err)

	updated, err := svc.UpdateRole(context.Background(), u.UserID, constants.Provider)
	require.NoError(t, err)
	assert.Equal(t, constants.Provider, updated.Role)

	_, err = svc.UpdateRole(context.Background(), u.UserID, "owner")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.UpdateRole(context.Background(), uuid.New(), constants.Admin)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateRole_AdminCapabilityFollowsRole(t *testing.T) {
	svc := setupUsersTest(t)
	u, err := svc.CreateUser(context.Background(), validCreate())
	require.NoError(t, err)

	// Promotion grants the market-admin capability in the same transaction.
	_, err = svc.UpdateRole(context.Background(), u.UserID, constants.Admin)
	require.NoError(t, err)
	has, err := svc.Caps.Has(svc.DB, u.UserID, domain.CapMarketAdmin)
	require.NoError(t, err)
	assert.True(t, has)

	// Demotion revokes it, so an ex-admin cannot force-close sales.
	_, err = svc.UpdateRole(context.Background(), u.UserID, constants.Provider)
	require.NoError(t, err)
	has, err = svc.Caps.Has(svc.DB, u.UserID, domain.CapMarketAdmin)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestViewUser(t *testing.T) {
	svc := setupUsersTest(t)
	u, err := svc.CreateUser(context.Background(), validCreate())
	require.NoError(t, err)

	got, err := svc.ViewUser(context.Background(), u.UserID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = svc.ViewUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
