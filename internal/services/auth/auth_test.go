package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"reviewhub/proj/internal/domain/models"
	"reviewhub/proj/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsersStorage struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeUsersStorage() *fakeUsersStorage {
	return &fakeUsersStorage{users: make(map[int64]*models.User), nextID: 1}
}

func (s *fakeUsersStorage) Insert(_ context.Context, user *models.User) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, storage.ErrConflict
		}
	}
	stored := *user
	stored.ID = s.nextID
	s.nextID++
	s.users[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (s *fakeUsersStorage) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *fakeUsersStorage) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *fakeUsersStorage) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (s *fakeUsersStorage) SetConfirmationCode(_ context.Context, userID int64, codeHash []byte, issuedAt time.Time) error {
	u, ok := s.users[userID]
	if !ok {
		return storage.ErrNotFound
	}
	u.CodeHash = codeHash
	u.CodeIssuedAt = &issuedAt
	return nil
}

func (s *fakeUsersStorage) Activate(_ context.Context, userID int64) error {
	u, ok := s.users[userID]
	if !ok {
		return storage.ErrNotFound
	}
	u.IsActive = true
	u.CodeHash = nil
	u.CodeIssuedAt = nil
	return nil
}

type fakeMailer struct {
	sent []map[string]any
}

func (m *fakeMailer) Send(_ string, _ string, tmplData any) error {
	m.sent = append(m.sent, tmplData.(map[string]any))
	return nil
}

// syncExecutor runs tasks inline so tests see the sent email immediately.
type syncExecutor struct{}

func (syncExecutor) Add(task func()) { task() }

func newTestService(t *testing.T, codeTTL time.Duration) (*AuthService, *fakeUsersStorage, *fakeMailer) {
	t.Helper()
	store := newFakeUsersStorage()
	mailer := &fakeMailer{}
	svc := New(
		slog.Default(), store, mailer, syncExecutor{},
		"test-secret", time.Hour, codeTTL, "http://localhost/api/v1/auth/token",
	)
	return svc, store, mailer
}

func lastCode(t *testing.T, mailer *fakeMailer) string {
	t.Helper()
	require.NotEmpty(t, mailer.sent)
	code, ok := mailer.sent[len(mailer.sent)-1]["confirmationCode"].(string)
	require.True(t, ok)
	return code
}

func TestSignupAndTokenExchange(t *testing.T) {
	svc, store, mailer := newTestService(t, time.Hour)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "bob", "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.False(t, user.IsActive)

	token, err := svc.Token(ctx, "bob", lastCode(t, mailer))
	require.NoError(t, err)
	require.NotEmpty(t, token)

	stored, err := store.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, stored.IsActive)

	resolved, err := svc.UserFromToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestSignupReissuesCodeForSamePair(t *testing.T) {
	svc, store, mailer := newTestService(t, time.Hour)
	ctx := context.Background()

	first, err := svc.Signup(ctx, "bob", "b@x.com")
	require.NoError(t, err)
	firstCode := lastCode(t, mailer)

	second, err := svc.Signup(ctx, "bob", "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.users, 1)

	// the reissued code supersedes the first one
	_, err = svc.Token(ctx, "bob", firstCode)
	assert.ErrorIs(t, err, ErrInvalidCode)
	_, err = svc.Token(ctx, "bob", lastCode(t, mailer))
	assert.NoError(t, err)
}

func TestSignupIdentityConflict(t *testing.T) {
	svc, _, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "bob", "b@x.com")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "bob", "other@x.com")
	assert.ErrorIs(t, err, ErrIdentityConflict)

	_, err = svc.Signup(ctx, "robert", "b@x.com")
	assert.ErrorIs(t, err, ErrIdentityConflict)
}

func TestTokenErrors(t *testing.T) {
	svc, _, mailer := newTestService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Token(ctx, "ghost", "whatever")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Signup(ctx, "bob", "b@x.com")
	require.NoError(t, err)

	_, err = svc.Token(ctx, "bob", "wrong-code")
	assert.ErrorIs(t, err, ErrInvalidCode)

	code := lastCode(t, mailer)
	_, err = svc.Token(ctx, "bob", code)
	require.NoError(t, err)

	// single use: a successful exchange clears the stored hash
	_, err = svc.Token(ctx, "bob", code)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestTokenExpiredCode(t *testing.T) {
	svc, store, mailer := newTestService(t, time.Nanosecond)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "bob", "b@x.com")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	_, err = svc.Token(ctx, "bob", lastCode(t, mailer))
	assert.ErrorIs(t, err, ErrInvalidCode)

	stored, err := store.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestUserFromTokenRejectsGarbage(t *testing.T) {
	svc, _, _ := newTestService(t, time.Hour)
	_, err := svc.UserFromToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
