// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package users_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/standup/internal/platform/apperr"
	"github.com/taibuivan/standup/internal/platform/sec"
	"github.com/taibuivan/standup/internal/users"
)

// # Test doubles

// memoryRepository is an in-memory users.Repository with the same error
// contract as the Postgres implementation.
type memoryRepository struct {
	rows   map[int64]*users.User
	nextID int64
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{rows: make(map[int64]*users.User), nextID: 1}
}

func clone(user *users.User) *users.User {
	copied := *user
	copied.PasswordHash = append([]byte(nil), user.PasswordHash...)
	return &copied
}

func (repository *memoryRepository) FindByID(_ context.Context, id int64) (*users.User, error) {
	user, ok := repository.rows[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return clone(user), nil
}

func (repository *memoryRepository) FindByEmail(_ context.Context, email string) (*users.User, error) {
	for _, user := range repository.rows {
		if user.Email == email {
			return clone(user), nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repository *memoryRepository) List(context.Context) ([]*users.User, error) {
	list := make([]*users.User, 0, len(repository.rows))
	for id := int64(1); id < repository.nextID; id++ {
		if user, ok := repository.rows[id]; ok {
			list = append(list, clone(user))
		}
	}
	return list, nil
}

func (repository *memoryRepository) HasAdmin(context.Context) (bool, error) {
	for _, user := range repository.rows {
		if user.Role == sec.RoleAdmin {
			return true, nil
		}
	}
	return false, nil
}

func (repository *memoryRepository) emailTaken(email string, exceptID int64) bool {
	for id, user := range repository.rows {
		if id != exceptID && user.Email == email {
			return true
		}
	}
	return false
}

func (repository *memoryRepository) Create(_ context.Context, user *users.User) error {
	if repository.emailTaken(user.Email, 0) {
		return apperr.Conflict(users.MsgEmailTaken)
	}
	user.ID = repository.nextID
	user.CreatedAt = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repository.nextID++
	repository.rows[user.ID] = clone(user)
	return nil
}

func (repository *memoryRepository) Update(_ context.Context, user *users.User) error {
	if _, ok := repository.rows[user.ID]; !ok {
		return apperr.NotFound("User")
	}
	if repository.emailTaken(user.Email, user.ID) {
		return apperr.Conflict(users.MsgEmailTaken)
	}
	repository.rows[user.ID] = clone(user)
	return nil
}

func (repository *memoryRepository) Delete(_ context.Context, id int64) error {
	if _, ok := repository.rows[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(repository.rows, id)
	return nil
}

// recordingCache remembers which identities were evicted.
type recordingCache struct {
	evicted []int64
}

func (cache *recordingCache) Evict(_ context.Context, id int64) error {
	cache.evicted = append(cache.evicted, id)
	return nil
}

type fixture struct {
	service    *users.Service
	repository *memoryRepository
	cache      *recordingCache
	hasher     *sec.PasswordHasher
}

func newFixture() *fixture {
	repository := newMemoryRepository()
	cache := &recordingCache{}
	hasher := sec.NewPasswordHasher(bcrypt.MinCost)
	return &fixture{
		service:    users.NewService(repository, hasher, cache),
		repository: repository,
		cache:      cache,
		hasher:     hasher,
	}
}

func (f *fixture) register(t *testing.T, email, password string, role sec.Role) *users.User {
	t.Helper()
	user, err := f.service.Register(context.Background(), users.RegisterInput{Email: email, Password: password, Role: role})
	require.NoError(t, err)
	return user
}

func ptr(value string) *string { return &value }

// # Register

/*
TestService_Register normalizes the email, defaults the role and hashes the password.
*/
func TestService_Register(t *testing.T) {
	f := newFixture()

	user := f.register(t, "  Jane@Example.COM ", "correct-horse", "")

	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, sec.RoleUser, user.Role)
	assert.NotEqual(t, []byte("correct-horse"), user.PasswordHash)
	assert.True(t, f.hasher.Verify("correct-horse", user.PasswordHash))
}

/*
TestService_Register_Invalid rejects bad input before touching storage.
*/
func TestService_Register_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input users.RegisterInput
		field string
	}{
		{"bad_email", users.RegisterInput{Email: "not-an-email", Password: "correct-horse"}, users.FieldEmail},
		{"short_password", users.RegisterInput{Email: "a@example.com", Password: "short"}, users.FieldPassword},
		{"long_password", users.RegisterInput{Email: "a@example.com", Password: strings.Repeat("x", 73)}, users.FieldPassword},
		{"unknown_role", users.RegisterInput{Email: "a@example.com", Password: "correct-horse", Role: "Root"}, users.FieldRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			_, err := f.service.Register(context.Background(), tt.input)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)
			require.NotEmpty(t, ae.Details)
			assert.Equal(t, tt.field, ae.Details[0].Field)
			assert.Empty(t, f.repository.rows)
		})
	}
}

/*
TestService_Register_Duplicate treats emails case-insensitively.
*/
func TestService_Register_Duplicate(t *testing.T) {
	f := newFixture()
	f.register(t, "jane@example.com", "correct-horse", sec.RoleUser)

	_, err := f.service.Register(context.Background(), users.RegisterInput{Email: "JANE@example.com", Password: "another-pass"})

	assert.True(t, apperr.HasCode(err, "CONFLICT"))
}

// # Update

/*
TestService_Update walks every rejection path before the successful change.
*/
func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown_target", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.Update(ctx, 1, 99, users.UpdateInput{Email: ptr("x@example.com")})
		assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
	})

	t.Run("not_self", func(t *testing.T) {
		f := newFixture()
		jane := f.register(t, "jane@example.com", "correct-horse", sec.RoleUser)
		bob := f.register(t, "bob@example.com", "correct-horse", sec.RoleAdmin)

		_, err := f.service.Update(ctx, bob.ID, jane.ID, users.UpdateInput{Email: ptr("x@example.com"), CurrentPassword: "correct-horse"})

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "FORBIDDEN", ae.Code)
		assert.Equal(t, users.MsgNotSelf, ae.Message)
	})

	t.Run("missing_current_password", func(t *testing.T) {
		for name, input := range map[string]users.UpdateInput{
			"password_change": {Password: ptr("brand-new-pass")},
			"email_change":    {Email: ptr("jane.doe@example.com")},
		} {
			t.Run(name, func(t *testing.T) {
				f := newFixture()
				jane := f.register(t, "jane@example.com", "correct-horse", sec.RoleUser)

				_, err := f.service.Update(ctx, jane.ID, jane.ID, input)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, users.FieldCurrentPassword, ae.Details[0].Field)
			})
		}
	})

	t.Run("wrong_current_password", func(t *testing.T) {
		f := newFixture()
		jane := f.register(t, "jane@example.com", "correct-horse", sec.RoleUser)

		_, err := f.service.Update(ctx, jane.ID, jane.ID, users.UpdateInput{Password: ptr("brand-new-pass"), CurrentPassword: "wrong-horse"})

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, 400, ae.HTTPStatus)
		assert.Equal(t, users.MsgIncorrectPassword, ae.Message)
	})

	t.Run("duplicate_email", func(t *testing.T) {
		f := newFixture()
		f.register(t, "bob@example.com", "correct-horse", sec.RoleUser)
		jane := f.register(t, "jane@example.com", "correct-horse", sec.RoleUser)

		_, err := f.service.Update(ctx, jane.ID, jane.ID, users.UpdateInput{Email: ptr("Bob@Example.com"), CurrentPassword: "correct-horse"})

		assert.True(t, apperr.HasCode(err, "CONFLICT"))
	})

	t.Run("no_changes", func(t *testing.T) {
		f := newFixture()
		jane := f.register(t, "jane@example.com", "correct-horse", sec.RoleUser)

		user, err := f.service.Update(ctx, jane.ID, jane.ID, users.UpdateInput{})

		require.NoError(t, err)
		assert.Equal(t, "jane@example.com", user.Email)
		assert.Empty(t, f.cache.evicted)
	})

	t.Run("success", func(t *testing.T) {
		f := newFixture()
		jane := f.register(t, "jane@example.com", "correct-horse", sec.RoleUser)

		user, err := f.service.Update(ctx, jane.ID, jane.ID, users.UpdateInput{
			Email:           ptr(" Jane.Doe@Example.com"),
			Password:        ptr("brand-new-pass"),
			CurrentPassword: "correct-horse",
		})
		require.NoError(t, err)

		assert.Equal(t, "jane.doe@example.com", user.Email)
		stored, err := f.repository.FindByID(ctx, jane.ID)
		require.NoError(t, err)
		assert.True(t, f.hasher.Verify("brand-new-pass", stored.PasswordHash))
		assert.False(t, f.hasher.Verify("correct-horse", stored.PasswordHash))
		assert.Equal(t, []int64{jane.ID}, f.cache.evicted)
	})
}

// # Delete

/*
TestService_Delete removes the account and evicts its cached identity.
*/
func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	jane := f.register(t, "jane@example.com", "correct-horse", sec.RoleUser)

	require.NoError(t, f.service.Delete(ctx, jane.ID))
	assert.Equal(t, []int64{jane.ID}, f.cache.evicted)

	_, err := f.service.Get(ctx, jane.ID)
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))

	err = f.service.Delete(ctx, jane.ID)
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
}

/*
TestService_WithoutCache works when no identity cache is configured.
*/
func TestService_WithoutCache(t *testing.T) {
	service := users.NewService(newMemoryRepository(), sec.NewPasswordHasher(bcrypt.MinCost), nil)

	user, err := service.Register(context.Background(), users.RegisterInput{Email: "jane@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NoError(t, service.Delete(context.Background(), user.ID))
}

// # EnsureAdmin

/*
TestService_EnsureAdmin seeds exactly one administrator.
*/
func TestService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.service.EnsureAdmin(ctx, "Admin@Example.com", "admin-password")
	require.NoError(t, err)
	assert.True(t, created)

	admin, err := f.repository.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAdmin, admin.Role)
	assert.True(t, f.hasher.Verify("admin-password", admin.PasswordHash))

	created, err = f.service.EnsureAdmin(ctx, "other@example.com", "admin-password")
	require.NoError(t, err)
	assert.False(t, created)

	list, err := f.service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

/*
TestService_EnsureAdmin_InvalidCredentials fails startup on unusable settings.
*/
func TestService_EnsureAdmin_InvalidCredentials(t *testing.T) {
	f := newFixture()

	created, err := f.service.EnsureAdmin(context.Background(), "admin@example.com", "short")

	assert.False(t, created)
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
}

/*
TestNormalizeEmail trims and folds case.
*/
func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", users.NormalizeEmail("  JANE@Example.Com\t"))
	assert.Equal(t, "strasse@example.com", users.NormalizeEmail("STRASSE@example.com"))
}
