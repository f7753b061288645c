package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/config"
	"github.com/iliyamo/salon-booking/internal/utils"
)

// AuthHandler issues staff access tokens.  There is a single staff
// account configured through STAFF_USERNAME and STAFF_PASSWORD_HASH.
type AuthHandler struct {
	Cfg config.Config
	Log *zap.Logger
}

func NewAuthHandler(cfg config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Log: log}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	if h.Cfg.StaffPasswordHash == "" {
		return fail(c, http.StatusForbidden, "staff login is disabled")
	}
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "username/password required")
	}
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.Cfg.StaffUsername)) == 1
	passOK := utils.VerifyPassword(h.Cfg.StaffPasswordHash, req.Password)
	if !userOK || !passOK {
		h.Log.Warn("staff login rejected", zap.String("username", req.Username), zap.String("ip", c.RealIP()))
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, req.Username, utils.RoleStaff, h.Cfg.AccessTTLMin)
	if err != nil {
		return writeError(c, h.Log, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"access":  tokenPart{Token: access.Token, Expires: access.Exp},
	})
}
