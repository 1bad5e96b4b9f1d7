package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/falconilham/gym-nexus-sub000/internal/auth"
	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/internal/repository"
	"github.com/falconilham/gym-nexus-sub000/internal/service"
)

type stubMembers struct {
	MemberService
	lastFilter repository.MemberFilter
	deleted    []uint
}

func (s *stubMembers) List(_ context.Context, gymID uint, f repository.MemberFilter) (service.PageResult[models.Member], error) {
	s.lastFilter = f
	m := &models.Member{GymID: gymID, Status: models.MemberStatusActive}
	m.ID = 3
	return service.PageResult[models.Member]{Items: []*models.Member{m}, Total: 41, Page: f.Normalize().Page, Limit: f.Normalize().Limit, TotalPages: 3}, nil
}

func (s *stubMembers) Delete(_ context.Context, _ uint, id uint) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubMembers) Suspend(_ context.Context, _ uint, id uint, dto service.SuspendMemberDTO) (*models.Member, error) {
	if dto.Days > service.MaxSuspensionDays {
		return nil, fmt.Errorf("%w: days out of range", service.ErrInvalidInput)
	}
	return nil, fmt.Errorf("%w: member not found", service.ErrNotFound)
}

type stubCheckIns struct {
	CheckInService
	results map[string]*service.CheckInResult
}

func (s *stubCheckIns) Scan(_ context.Context, _ uint, qr string) (*service.CheckInResult, error) {
	if res, ok := s.results[qr]; ok {
		return res, nil
	}
	return nil, fmt.Errorf("%w: member not found", service.ErrNotFound)
}

type stubGyms struct {
	GymService
	updated bool
}

func (s *stubGyms) Update(_ context.Context, id uint, _ service.UpdateGymDTO) (*models.Gym, error) {
	s.updated = true
	g := &models.Gym{Name: "Downtown"}
	g.ID = id
	return g, nil
}

func (s *stubGyms) List(_ context.Context, f repository.GymFilter) (service.PageResult[models.Gym], error) {
	var items []*models.Gym
	for _, id := range f.IDs {
		g := &models.Gym{}
		g.ID = id
		items = append(items, g)
	}
	return service.PageResult[models.Gym]{Items: items, Total: int64(len(items)), Page: 1, Limit: 20, TotalPages: 1}, nil
}

type apiFixture struct {
	router   *gin.Engine
	tokens   *auth.Tokens
	members  *stubMembers
	checkIns *stubCheckIns
	gyms     *stubGyms
	health   error
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &apiFixture{
		tokens:   auth.NewTokens(auth.Config{Secret: "test-secret", Issuer: "gym-nexus", TTL: time.Hour}),
		members:  &stubMembers{},
		checkIns: &stubCheckIns{results: map[string]*service.CheckInResult{}},
		gyms:     &stubGyms{},
	}
	f.router = NewRouter(RouterConfig{CORSOrigins: []string{"http://localhost:3000"}}, Services{
		Tokens:   f.tokens,
		Members:  f.members,
		CheckIns: f.checkIns,
		Gyms:     f.gyms,
		Health:   func(context.Context) error { return f.health },
	})
	return f
}

func (f *apiFixture) token(t *testing.T, c auth.Claims) string {
	t.Helper()
	tok, _, err := f.tokens.Issue(c)
	require.NoError(t, err)
	return tok
}

func (f *apiFixture) adminToken(t *testing.T, role string, gymID uint) string {
	c := auth.Claims{Subject: 10, Kind: auth.KindAdmin, Role: role}
	if gymID != 0 {
		c.GymID = &gymID
	}
	return f.token(t, c)
}

func (f *apiFixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	f.health = errors.New("connection refused")
	w = f.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	f := newAPIFixture(t)
	memberToken := f.token(t, auth.Claims{Subject: 5, Kind: auth.KindMember})

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{name: "missing token", token: "", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", token: "not-a-jwt", wantStatus: http.StatusUnauthorized},
		{name: "member token on admin route", token: memberToken, wantStatus: http.StatusForbidden},
		{name: "admin of another gym", token: f.adminToken(t, models.RoleAdmin, 2), wantStatus: http.StatusForbidden},
		{name: "admin of the gym", token: f.adminToken(t, models.RoleAdmin, 1), wantStatus: http.StatusOK},
		{name: "staff of the gym", token: f.adminToken(t, models.RoleStaff, 1), wantStatus: http.StatusOK},
		{name: "super admin", token: f.adminToken(t, models.RoleSuperAdmin, 0), wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodGet, "/api/v1/gyms/1/members", tt.token, "")
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestListMembersPagination(t *testing.T) {
	f := newAPIFixture(t)
	tok := f.adminToken(t, models.RoleAdmin, 1)

	w := f.do(http.MethodGet, "/api/v1/gyms/1/members?page=2&limit=500&search=%20ann%20&status=active", tok, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data       []map[string]any `json:"data"`
		Pagination pagination       `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 1)
	assert.Equal(t, pagination{Page: 2, Limit: repository.MaxLimit, Total: 41, TotalPages: 3}, body.Pagination)

	assert.Equal(t, "ann", f.members.lastFilter.Search)
	assert.Equal(t, "active", f.members.lastFilter.Status)

	w = f.do(http.MethodGet, "/api/v1/gyms/1/members?page=abc", tok, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStaffRestrictions(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodDelete, "/api/v1/gyms/1/members/3", f.adminToken(t, models.RoleStaff, 1), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, f.members.deleted)

	w = f.do(http.MethodDelete, "/api/v1/gyms/1/members/3", f.adminToken(t, models.RoleAdmin, 1), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []uint{3}, f.members.deleted)
}

func TestUpdateGymActivationRequiresSuperAdmin(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodPatch, "/api/v1/gyms/1", f.adminToken(t, models.RoleAdmin, 1), `{"isActive": false}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, f.gyms.updated)

	w = f.do(http.MethodPatch, "/api/v1/gyms/1", f.adminToken(t, models.RoleSuperAdmin, 0), `{"isActive": false}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.gyms.updated)
}

func TestListGymsScopedToOwnGym(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodGet, "/api/v1/gyms", f.adminToken(t, models.RoleAdmin, 7), "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, uint(7), body.Data[0].ID)
}

func TestScanStatuses(t *testing.T) {
	f := newAPIFixture(t)
	tok := f.adminToken(t, models.RoleStaff, 1)
	f.checkIns.results["in"] = &service.CheckInResult{Action: service.ActionCheckIn, CheckIn: &models.CheckIn{Status: models.CheckInGranted}}
	f.checkIns.results["out"] = &service.CheckInResult{Action: service.ActionCheckOut, CheckIn: &models.CheckIn{Status: models.CheckInGranted}}
	f.checkIns.results["denied"] = &service.CheckInResult{Action: service.ActionDenied, CheckIn: &models.CheckIn{Status: models.CheckInDenied, DenyReason: service.DenyMembershipSuspended}}

	tests := []struct {
		qr         string
		wantStatus int
		wantAction string
	}{
		{qr: "in", wantStatus: http.StatusCreated, wantAction: service.ActionCheckIn},
		{qr: "out", wantStatus: http.StatusOK, wantAction: service.ActionCheckOut},
		{qr: "denied", wantStatus: http.StatusForbidden, wantAction: service.ActionDenied},
		{qr: "unknown", wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.qr, func(t *testing.T) {
			w := f.do(http.MethodPost, "/api/v1/gyms/1/checkins/scan", tok, fmt.Sprintf(`{"qrCode": %q}`, tt.qr))
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantAction == "" {
				return
			}
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantAction, body["action"])
		})
	}

	w := f.do(http.MethodPost, "/api/v1/gyms/1/checkins/scan", tok, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	f := newAPIFixture(t)
	tok := f.adminToken(t, models.RoleAdmin, 1)

	w := f.do(http.MethodPost, "/api/v1/gyms/1/members/3/suspend", tok, `{"days": 400}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/v1/gyms/1/members/3/suspend", tok, `{"days": 10}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "member not found")

	w = f.do(http.MethodPost, "/api/v1/gyms/1/members/zero/suspend", tok, `{"days": 10}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("%w: x", service.ErrInvalidInput), want: http.StatusBadRequest},
		{err: service.ErrUnauthorized, want: http.StatusUnauthorized},
		{err: fmt.Errorf("%w: x", service.ErrForbidden), want: http.StatusForbidden},
		{err: fmt.Errorf("%w: x", service.ErrNotFound), want: http.StatusNotFound},
		{err: fmt.Errorf("%w: x", service.ErrConflict), want: http.StatusConflict},
		{err: service.ErrClassFull, want: http.StatusConflict},
		{err: errors.New("pq: connection reset"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		respondError(c, tt.err)
		assert.Equal(t, tt.want, w.Code, tt.err.Error())
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/gyms", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/gyms", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcardDoesNotAllowCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware([]string{"*"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSDisabledWithoutOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(nil))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
