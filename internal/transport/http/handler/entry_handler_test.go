package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkashmi09/entryManagementbackend/internal/core/auth"
	"github.com/parkashmi09/entryManagementbackend/internal/domain"
	"github.com/parkashmi09/entryManagementbackend/internal/service"
	mdw "github.com/parkashmi09/entryManagementbackend/internal/transport/http/middleware"
	"github.com/parkashmi09/entryManagementbackend/internal/transport/http/response"
)

// 组一个贴近真实布线的引擎：真 JWT 门卫 + 真 service + 内存 repo
func newEntryRig(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	j := &auth.JWTer{
		AccessSecret:  []byte("acc"),
		RefreshSecret: []byte("ref"),
		Issuer:        "iss",
		Audience:      "aud",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	}
	users := &memUserFinder{u: &domain.User{ID: "u1", Email: "a@x.com", Role: "user", IsActive: true}}
	entries := newMemEntryRepo()

	r := gin.New()
	api := r.Group("/api/v1")
	h := NewEntryHandler(service.NewEntryService(entries), mdw.RequireAuth(j, users))
	h.MountAPI(api)

	pair, err := j.IssuePair("u1", "a@x.com", "user")
	require.NoError(t, err)
	return r, pair.AccessToken
}

func TestEntryCreate_EndToEnd(t *testing.T) {
	r, token := newEntryRig(t)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/entries", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("no token is 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/entries", strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("validation failure is 400 with field errors", func(t *testing.T) {
		w := post(`{"vehicleNo":"mh01ab1234"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var body response.Body
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		fields, ok := body.Errors.(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, fields, "srNo")
		assert.Contains(t, fields, "nameDetails")
	})

	t.Run("create normalizes vehicle number", func(t *testing.T) {
		w := post(`{"srNo":"1","vehicleNo":"mh01ab1234","nameDetails":"T"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
		var body response.Body
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		data := body.Data.(map[string]interface{})
		assert.Equal(t, "MH01AB1234", data["vehicleNo"])
	})

	t.Run("duplicate srNo is 409", func(t *testing.T) {
		w := post(`{"srNo":"1","vehicleNo":"ka05cd5678","nameDetails":"U"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

// --- 测试桩 ---

type memUserFinder struct{ u *domain.User }

func (m *memUserFinder) FindByID(_ context.Context, id string) (*domain.User, error) {
	if m.u != nil && m.u.ID == id {
		return m.u, nil
	}
	return nil, domain.ErrNotFound
}

type memEntryRepo struct{ items []domain.Entry }

func newMemEntryRepo() *memEntryRepo { return &memEntryRepo{} }

func (m *memEntryRepo) Create(_ context.Context, e *domain.Entry) error {
	for i := range m.items {
		if m.items[i].OwnerID == e.OwnerID && m.items[i].SrNo == e.SrNo {
			return domain.ErrDuplicateKey
		}
	}
	m.items = append(m.items, *e)
	return nil
}

func (m *memEntryRepo) FindByID(_ context.Context, id, ownerID string) (*domain.Entry, error) {
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].OwnerID == ownerID {
			e := m.items[i]
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memEntryRepo) ExistsSrNo(_ context.Context, ownerID, srNo, excludeID string) (bool, error) {
	for i := range m.items {
		if m.items[i].OwnerID == ownerID && m.items[i].SrNo == srNo && m.items[i].ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memEntryRepo) List(_ context.Context, f domain.EntryFilter) ([]domain.Entry, int64, error) {
	var out []domain.Entry
	for i := range m.items {
		if m.items[i].OwnerID == f.OwnerID {
			out = append(out, m.items[i])
		}
	}
	return out, int64(len(out)), nil
}

func (m *memEntryRepo) Update(_ context.Context, e *domain.Entry) error { return nil }

func (m *memEntryRepo) Delete(_ context.Context, id, ownerID string) error {
	return domain.ErrNotFound
}

func (m *memEntryRepo) AllForExport(_ context.Context, ownerID string, _, _ *time.Time) ([]domain.Entry, error) {
	return nil, nil
}
