package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/salon-booking/internal/config"
	"github.com/iliyamo/salon-booking/internal/repository"
	"github.com/iliyamo/salon-booking/internal/service"
	"github.com/iliyamo/salon-booking/internal/utils"
)

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestWriteErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &service.ValidationError{Field: "time", Msg: "time is required"}, http.StatusBadRequest},
		{"identity", &service.IdentityConflictError{ExistingName: "Nora"}, http.StatusConflict},
		{"duplicate", fmt.Errorf("create: %w", service.ErrDuplicateBooking), http.StatusConflict},
		{"not found", service.ErrNotFound, http.StatusNotFound},
		{"cancelled", service.ErrInvalidState, http.StatusBadRequest},
		{"last item", service.ErrLastItemProtected, http.StatusBadRequest},
		{"conflict", fmt.Errorf("commit: %w", repository.ErrConflict), http.StatusConflict},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newContext(http.MethodGet, "/", "")
			require.NoError(t, writeError(c, zap.NewNop(), tc.err, "booking not found"))
			assert.Equal(t, tc.status, rec.Code)
			out := decode(t, rec)
			assert.Equal(t, false, out["success"])
			assert.NotEmpty(t, out["error"])
		})
	}
}

func TestWriteErrorHidesAndLogsUnexpected(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	c, rec := newContext(http.MethodGet, "/api/bookings", "")
	require.NoError(t, writeError(c, zap.New(core), errors.New("dial tcp: refused"), ""))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "refused")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "request failed", logs.All()[0].Message)
}

func TestWriteErrorValidationNamesField(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/bookings", "")
	require.NoError(t, writeError(c, zap.NewNop(), &service.ValidationError{Field: "items", Msg: "at least one service is required"}, ""))
	out := decode(t, rec)
	assert.Equal(t, "items", out["field"])
	assert.Equal(t, "at least one service is required", out["error"])
}

func TestParseID(t *testing.T) {
	for raw, want := range map[string]bool{"12": true, "0": false, "-3": false, "abc": false, "": false} {
		c, _ := newContext(http.MethodGet, "/", "")
		c.SetParamNames("id")
		c.SetParamValues(raw)
		_, ok := parseID(c, "id")
		assert.Equal(t, want, ok, raw)
	}
}

func TestOptionalID(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/?professionalId=", "")
	id, ok := optionalID(c, "professionalId")
	assert.True(t, ok)
	assert.Nil(t, id)

	c, _ = newContext(http.MethodGet, "/?professionalId=5", "")
	id, ok = optionalID(c, "professionalId")
	require.True(t, ok)
	assert.Equal(t, uint64(5), *id)

	c, _ = newContext(http.MethodGet, "/?professionalId=five", "")
	_, ok = optionalID(c, "professionalId")
	assert.False(t, ok)
}

func TestLoginDisabledWithoutHash(t *testing.T) {
	h := NewAuthHandler(config.Config{JWTSecret: "s", StaffUsername: "staff"}, zap.NewNop())
	c, rec := newContext(http.MethodPost, "/api/auth/login", `{"username":"staff","password":"x"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogin(t *testing.T) {
	hash, err := utils.HashPassword("pw", bcrypt.MinCost)
	require.NoError(t, err)
	h := NewAuthHandler(config.Config{JWTSecret: "s", StaffUsername: "staff", StaffPasswordHash: hash, AccessTTLMin: 5}, zap.NewNop())

	c, rec := newContext(http.MethodPost, "/api/auth/login", `{"username":"staff","password":"pw"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)
	access := decode(t, rec)["access"].(map[string]any)
	claims, err := utils.ParseAccessToken("s", access["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, utils.RoleStaff, claims.Role)
	assert.Equal(t, "staff", claims.Subject)

	for _, body := range []string{
		`{"username":"staff","password":"wrong"}`,
		`{"username":"admin","password":"pw"}`,
	} {
		c, rec = newContext(http.MethodPost, "/api/auth/login", body)
		require.NoError(t, h.Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, body)
	}

	c, rec = newContext(http.MethodPost, "/api/auth/login", `{"username":"","password":""}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthReportsDatabaseDown(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillReturnError(sql.ErrConnDone)
	h := &HealthHandler{DB: db, Env: "test"}
	c, rec := newContext(http.MethodGet, "/healthz", "")
	require.NoError(t, h.Health(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, false, decode(t, rec)["ok"])

	mock.ExpectPing()
	c, rec = newContext(http.MethodGet, "/healthz", "")
	require.NoError(t, h.Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
