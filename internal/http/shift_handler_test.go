package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"
	"github.com/pweat/Opieka-Plus-sub000/internal/repository"
	"github.com/pweat/Opieka-Plus-sub000/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type apiFixture struct {
	router      *Router
	jwt         *service.JWTManager
	shiftsRepo  *repository.MemoryShiftsRepository
	users       *repository.MemoryUsersRepository
	ownerID     string
	caregiverID string
	patientID   string
}

// newAPIFixture 搭一个完整的路由 + 内存 repo 的最小闭环
func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	logger := zap.NewNop()

	users := repository.NewMemoryUsersRepository()
	patients := repository.NewMemoryPatientsRepository()
	shifts := repository.NewMemoryShiftsRepository()

	ctx := context.Background()
	ownerID, err := users.CreateUser(ctx, &domain.User{
		UserAccount:     "owner@example.com",
		UserAccountHash: service.HashAccount("owner@example.com"),
		PasswordHash:    service.HashAccountPassword("owner@example.com", "secret"),
		Role:            domain.RoleOwner,
	})
	require.NoError(t, err)
	caregiverID, err := users.CreateUser(ctx, &domain.User{
		UserAccount:     "helper@example.com",
		UserAccountHash: service.HashAccount("helper@example.com"),
		PasswordHash:    service.HashAccountPassword("helper@example.com", "secret"),
		Role:            domain.RoleCaregiver,
	})
	require.NoError(t, err)
	patientID, err := patients.CreatePatient(ctx, &domain.Patient{
		OwnerID: ownerID,
		Name:    "Grandma Ania",
	})
	require.NoError(t, err)

	jwtManager := service.NewJWTManager(service.JWTConfig{
		SecretKey:            "test-secret",
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: time.Hour,
		Issuer:               "opieka-test",
	})
	shiftService := service.NewShiftService(shifts, patients, users, nil, logger)

	router := NewRouter(logger)
	router.RegisterCareRoutes(
		NewAuthMiddleware(jwtManager, logger),
		NewShiftHandler(shiftService, logger),
		NewPatientHandler(service.NewPatientService(patients, users, logger), logger),
		NewReportHandler(nil, logger),
		NewInviteHandler(nil, logger),
		NewStatsHandler(nil, logger),
		NewPushHandler(nil, logger),
	)

	return &apiFixture{
		router:      router,
		jwt:         jwtManager,
		shiftsRepo:  shifts,
		users:       users,
		ownerID:     ownerID,
		caregiverID: caregiverID,
		patientID:   patientID,
	}
}

func (f *apiFixture) do(t *testing.T, method, path, userID, role string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		token, err := f.jwt.GenerateAccessToken(userID, role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) Result[map[string]any] {
	t.Helper()
	var res Result[map[string]any]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestShiftHandler_RequiresToken(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/care/api/v1/shifts/hero", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestShiftHandler_CreateAndGet(t *testing.T) {
	f := newAPIFixture(t)
	start := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

	rec := f.do(t, http.MethodPost, "/care/api/v1/shifts", f.ownerID, domain.RoleOwner, map[string]any{
		"caregiverId": f.caregiverID,
		"patientId":   f.patientID,
		"startTime":   start,
		"endTime":     start.Add(2 * time.Hour),
		"tasks":       []map[string]any{{"description": "Medication"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	created := decodeResult(t, rec)
	require.Equal(t, ResultSuccess, created.Code)
	shiftID, _ := created.Result["shiftId"].(string)
	require.NotEmpty(t, shiftID)
	assert.Equal(t, "Grandma Ania", created.Result["patientName"])

	rec = f.do(t, http.MethodGet, "/care/api/v1/shifts/"+shiftID, f.caregiverID, domain.RoleCaregiver, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeResult(t, rec)
	assert.Equal(t, ResultSuccess, got.Code)
	assert.Equal(t, shiftID, got.Result["shiftId"])
}

func TestShiftHandler_GetShift_StrangerDenied(t *testing.T) {
	f := newAPIFixture(t)
	start := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

	rec := f.do(t, http.MethodPost, "/care/api/v1/shifts", f.ownerID, domain.RoleOwner, map[string]any{
		"caregiverId": f.caregiverID,
		"patientId":   f.patientID,
		"startTime":   start,
		"endTime":     start.Add(2 * time.Hour),
	})
	created := decodeResult(t, rec)
	require.Equal(t, ResultSuccess, created.Code)
	shiftID, _ := created.Result["shiftId"].(string)

	// 未绑定该 owner 的用户拿着 UUID 也读不到
	strangerID, err := f.users.CreateUser(context.Background(), &domain.User{
		UserAccount:     "stranger@example.com",
		UserAccountHash: service.HashAccount("stranger@example.com"),
		PasswordHash:    service.HashAccountPassword("stranger@example.com", "secret"),
		Role:            domain.RoleCaregiver,
	})
	require.NoError(t, err)

	rec = f.do(t, http.MethodGet, "/care/api/v1/shifts/"+shiftID, strangerID, domain.RoleCaregiver, nil)
	res := decodeResult(t, rec)
	assert.Equal(t, ResultError, res.Code)
	assert.Contains(t, res.Message, "access denied")
}

func TestShiftHandler_CreateInvalidWindow(t *testing.T) {
	f := newAPIFixture(t)
	start := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

	rec := f.do(t, http.MethodPost, "/care/api/v1/shifts", f.ownerID, domain.RoleOwner, map[string]any{
		"caregiverId": f.caregiverID,
		"patientId":   f.patientID,
		"startTime":   start,
		"endTime":     start.Add(-time.Hour),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	res := decodeResult(t, rec)
	assert.Equal(t, ResultError, res.Code)
	assert.Equal(t, "error", res.Type)
}

func TestShiftHandler_HeroAndDay(t *testing.T) {
	f := newAPIFixture(t)
	now := time.Now().UTC()

	// 正在进行的值班
	rec := f.do(t, http.MethodPost, "/care/api/v1/shifts", f.ownerID, domain.RoleOwner, map[string]any{
		"caregiverId": f.caregiverID,
		"patientId":   f.patientID,
		"startTime":   now.Add(-time.Hour),
		"endTime":     now.Add(time.Hour),
	})
	require.Equal(t, ResultSuccess, decodeResult(t, rec).Code)

	rec = f.do(t, http.MethodGet, "/care/api/v1/shifts/hero", f.caregiverID, domain.RoleCaregiver, nil)
	hero := decodeResult(t, rec)
	require.Equal(t, ResultSuccess, hero.Code)
	assert.Equal(t, "active", hero.Result["state"])
	assert.Equal(t, "NOW", hero.Result["label"])

	day := now.Format("2006-01-02")
	rec = f.do(t, http.MethodGet, fmt.Sprintf("/care/api/v1/shifts/day?date=%s", day), f.ownerID, domain.RoleOwner, nil)
	dayRes := decodeResult(t, rec)
	require.Equal(t, ResultSuccess, dayRes.Code)
	shifts, _ := dayRes.Result["shifts"].([]any)
	assert.Len(t, shifts, 1)
}

func TestShiftHandler_DayViewBadDate(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/care/api/v1/shifts/day?date=15-06-2025", f.ownerID, domain.RoleOwner, nil)
	res := decodeResult(t, rec)
	assert.Equal(t, ResultError, res.Code)
}

func TestPatientHandler_CRUD(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/care/api/v1/patients", f.ownerID, domain.RoleOwner, map[string]any{
		"name":      "Grandpa Jan",
		"birthDate": "1940-03-12",
		"notes":     "Diabetic",
	})
	created := decodeResult(t, rec)
	require.Equal(t, ResultSuccess, created.Code)
	patientID, _ := created.Result["patientId"].(string)
	require.NotEmpty(t, patientID)
	assert.Equal(t, "1940-03-12", created.Result["birthDate"])

	rec = f.do(t, http.MethodGet, "/care/api/v1/patients", f.ownerID, domain.RoleOwner, nil)
	list := decodeResult(t, rec)
	require.Equal(t, ResultSuccess, list.Code)
	assert.EqualValues(t, 2, list.Result["total"]) // fixture 里已有一位患者

	rec = f.do(t, http.MethodDelete, "/care/api/v1/patients/"+patientID, f.ownerID, domain.RoleOwner, nil)
	assert.Equal(t, ResultSuccess, decodeResult(t, rec).Code)
}

func TestPatientHandler_CaregiverCannotCreate(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/care/api/v1/patients", f.caregiverID, domain.RoleCaregiver, map[string]any{
		"name": "Someone",
	})
	res := decodeResult(t, rec)
	assert.Equal(t, ResultError, res.Code)
}

func TestAuthHandler_RegisterLoginRefresh(t *testing.T) {
	logger := zap.NewNop()
	users := repository.NewMemoryUsersRepository()
	jwtManager := service.NewJWTManager(service.JWTConfig{
		SecretKey:            "test-secret",
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: time.Hour,
		Issuer:               "opieka-test",
	})
	router := NewRouter(logger)
	router.RegisterAuthRoutes(NewAuthHandler(service.NewAuthService(users, jwtManager, logger), logger))

	post := func(path string, body map[string]any) Result[map[string]any] {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return decodeResult(t, rec)
	}

	reg := post("/auth/api/v1/register", map[string]any{
		"account":  "anna@example.com",
		"password": "s3cret",
		"nickname": "Anna",
	})
	require.Equal(t, ResultSuccess, reg.Code)
	require.NotEmpty(t, reg.Result["refreshToken"])

	login := post("/auth/api/v1/login", map[string]any{
		"accountHash":  fmt.Sprintf("%x", service.HashAccount("anna@example.com")),
		"passwordHash": fmt.Sprintf("%x", service.HashAccountPassword("anna@example.com", "s3cret")),
	})
	require.Equal(t, ResultSuccess, login.Code)
	assert.Equal(t, reg.Result["userId"], login.Result["userId"])

	refresh := post("/auth/api/v1/refresh", map[string]any{
		"refreshToken": reg.Result["refreshToken"],
	})
	assert.Equal(t, ResultSuccess, refresh.Code)
	assert.NotEmpty(t, refresh.Result["accessToken"])
}
