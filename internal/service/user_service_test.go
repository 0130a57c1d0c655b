package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkashmi09/entryManagementbackend/internal/core/auth"
	"github.com/parkashmi09/entryManagementbackend/internal/domain"
	"github.com/parkashmi09/entryManagementbackend/pkg/apperr"
)

type fakeUserRepo struct {
	byID map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*domain.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	for _, ex := range f.byID {
		if ex.Email == u.Email {
			return domain.ErrDuplicateKey
		}
	}
	cp := *u
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) List(_ context.Context, _ string, _, _ int) ([]domain.User, int64, error) {
	var out []domain.User
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	if _, ok := f.byID[u.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) SetActive(_ context.Context, id string, active bool) error {
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsActive = active
	return nil
}

var _ domain.UserRepository = (*fakeUserRepo)(nil)

func newTestUserService(f *fakeUserRepo) (UserService, *auth.JWTer) {
	j := &auth.JWTer{
		AccessSecret:  []byte("acc"),
		RefreshSecret: []byte("ref"),
		Issuer:        "iss",
		Audience:      "aud",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	}
	return NewUserService(f, j, nil), j
}

func TestRegister_TokensCarryIdentity(t *testing.T) {
	s, j := newTestUserService(newFakeUserRepo())

	out, err := s.Register(context.Background(), RegisterRequest{
		Name: "A", Email: "A@X.com", Password: "secret1",
	})
	require.NoError(t, err)

	// email 归一化为小写，响应不含密码散列（DTO 本身无该字段）
	assert.Equal(t, "a@x.com", out.User.Email)
	assert.Equal(t, "user", out.User.Role)
	assert.True(t, out.User.IsActive)

	ac, err := j.VerifyAccess(out.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, ac.UID)
	assert.Equal(t, "a@x.com", ac.Email)
	assert.Equal(t, "user", ac.Role)

	rc, err := j.VerifyRefresh(out.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, ac.UID, rc.UID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s, _ := newTestUserService(newFakeUserRepo())
	ctx := context.Background()

	_, err := s.Register(ctx, RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = s.Register(ctx, RegisterRequest{Name: "B", Email: "a@x.com", Password: "secret2"})
	require.Error(t, err)
	ae := apperr.From(err)
	assert.Equal(t, 409, ae.Status)
	assert.Equal(t, "Email already registered", ae.Error())
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	s, _ := newTestUserService(repo)
	ctx := context.Background()

	reg, err := s.Register(ctx, RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := s.Login(ctx, LoginRequest{Email: "a@x.com", Password: "nope"})
		require.Error(t, err)
		ae := apperr.From(err)
		assert.Equal(t, 401, ae.Status)
		assert.Equal(t, "Invalid email or password", ae.Error())
	})

	t.Run("unknown email same message", func(t *testing.T) {
		_, err := s.Login(ctx, LoginRequest{Email: "ghost@x.com", Password: "secret1"})
		require.Error(t, err)
		assert.Equal(t, "Invalid email or password", apperr.From(err).Error())
	})

	t.Run("ok", func(t *testing.T) {
		out, err := s.Login(ctx, LoginRequest{Email: "a@x.com", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, reg.User.ID, out.User.ID)
		assert.NotEmpty(t, out.Tokens.AccessToken)
	})

	t.Run("deactivated account", func(t *testing.T) {
		require.NoError(t, s.SetActive(ctx, reg.User.ID, false))
		_, err := s.Login(ctx, LoginRequest{Email: "a@x.com", Password: "secret1"})
		require.Error(t, err)
		assert.Equal(t, 401, apperr.From(err).Status)
	})
}

func TestRefresh(t *testing.T) {
	repo := newFakeUserRepo()
	s, _ := newTestUserService(repo)
	ctx := context.Background()

	reg, err := s.Register(ctx, RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	t.Run("ok issues fresh pair", func(t *testing.T) {
		out, err := s.Refresh(ctx, reg.Tokens.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, reg.User.ID, out.User.ID)
		assert.NotEmpty(t, out.Tokens.AccessToken)
		assert.NotEmpty(t, out.Tokens.RefreshToken)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := s.Refresh(ctx, reg.Tokens.AccessToken)
		require.Error(t, err)
		ae := apperr.From(err)
		assert.Equal(t, 401, ae.Status)
		assert.Equal(t, "Invalid refresh token", ae.Error())
	})

	t.Run("deactivated user cannot refresh", func(t *testing.T) {
		require.NoError(t, s.SetActive(ctx, reg.User.ID, false))
		_, err := s.Refresh(ctx, reg.Tokens.RefreshToken)
		require.Error(t, err)
		assert.Equal(t, "User not found or inactive", apperr.From(err).Error())
	})
}

func TestProfile(t *testing.T) {
	repo := newFakeUserRepo()
	s, _ := newTestUserService(repo)
	ctx := context.Background()

	reg, err := s.Register(ctx, RegisterRequest{
		Name: "A", Email: "a@x.com", Password: "secret1", Mobile: "9876543210",
	})
	require.NoError(t, err)

	got, err := s.Profile(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", got.Mobile)

	t.Run("update merges supplied fields", func(t *testing.T) {
		out, err := s.UpdateProfile(ctx, reg.User.ID, UpdateProfileRequest{Name: "New Name"})
		require.NoError(t, err)
		assert.Equal(t, "New Name", out.Name)
		assert.Equal(t, "9876543210", out.Mobile)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := s.Profile(ctx, "ghost")
		require.Error(t, err)
		assert.Equal(t, 404, apperr.From(err).Status)
	})
}

func TestLogout_IsStatelessNoop(t *testing.T) {
	s, _ := newTestUserService(newFakeUserRepo())
	assert.NoError(t, s.Logout(context.Background(), "whoever"))
}
