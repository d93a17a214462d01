package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vedicroots/vedicroots/backend/cms-services/internal/audit"
	"github.com/vedicroots/vedicroots/backend/cms-services/internal/config"
	"github.com/vedicroots/vedicroots/backend/cms-services/internal/learners"
	"github.com/vedicroots/vedicroots/backend/cms-services/internal/sessions"
	"github.com/vedicroots/vedicroots/backend/cms-services/internal/tokens"
	"github.com/vedicroots/vedicroots/backend/cms-services/internal/users"
	"github.com/vedicroots/vedicroots/backend/cms-services/pkg/logger"
	"github.com/vedicroots/vedicroots/backend/cms-services/pkg/middleware"
)

// Cookie names. The refresh cookie is httpOnly and scoped to the refresh
// endpoints; the session mirror only tells the frontend a session exists and
// never carries a secret.
const (
	RefreshCookie       = "cms_refresh_token"
	SessionMirrorCookie = "cms_session"
)

// LoginRequest carries password-mode credentials for CMS editors.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg         *config.Config
	usersSvc    *users.Service
	sessionsSvc *sessions.Service
	auditLog    *audit.Logger
	learners    *learners.Client
}

func NewAuthHandler(cfg *config.Config, u *users.Service, s *sessions.Service, a *audit.Logger, l *learners.Client) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u, sessionsSvc: s, auditLog: a, learners: l}
}

// Register mounts the auth routes. The guard chain (auth first) protects the
// endpoints that need an established identity.
func (h *AuthHandler) Register(r *gin.Engine, guards ...gin.HandlerFunc) {
	cms := r.Group("/api/cms/auth")
	cms.POST("/login", h.Login)
	cms.POST("/refresh", h.Refresh)
	cms.POST("/logout", h.Logout)

	a := r.Group("/api/auth", guards...)
	a.POST("/change-password", h.ChangePassword)
	a.GET("/me", h.Me)
}

// Login verifies editor credentials and issues an access/refresh token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.clearAuthCookies(c)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "email and password required"})
		return
	}

	u, err := h.usersSvc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.auditLog.Record(audit.ActionLoginFailed, req.Email, c.ClientIP())
		h.clearAuthCookies(c)
		switch err {
		case users.ErrInvalidCredentials:
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid email or password"})
		case users.ErrAccountInactive:
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "account is deactivated"})
		default:
			logger.Errorf("login failed for %s: %v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "authentication failed"})
		}
		return
	}

	refresh, err := h.sessionsSvc.CreateSession(c.Request.Context(), u.ID, h.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		logger.Errorf("failed to create session: %v", err)
		h.clearAuthCookies(c)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to create session"})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, u, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		logger.Errorf("failed to create access token: %v", err)
		h.clearAuthCookies(c)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to create access token"})
		return
	}

	h.setAuthCookies(c, refresh)
	h.auditLog.Record(audit.ActionLogin, u.ID, c.ClientIP())
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"accessToken": access,
		"user":        u,
		"expiresIn":   int(h.cfg.JWT.AccessTokenTTL.Seconds()),
	})
}

// Refresh rotates the refresh token and mints a new access token. The token
// may arrive via cookie (browsers) or request body (API clients).
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh := h.refreshTokenFromRequest(c)
	if refresh == "" {
		h.clearAuthCookies(c)
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "missing refresh token"})
		return
	}

	next, sess, err := h.sessionsSvc.Rotate(c.Request.Context(), refresh, h.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		logger.Errorf("refresh rotation failed: %v", err)
		h.clearAuthCookies(c)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "refresh failed"})
		return
	}
	if sess == nil {
		h.clearAuthCookies(c)
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid refresh token"})
		return
	}

	u, err := h.usersSvc.GetByID(c.Request.Context(), sess.Sub)
	if err != nil || u == nil {
		h.clearAuthCookies(c)
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid refresh token"})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, u, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		logger.Errorf("failed to create access token: %v", err)
		h.clearAuthCookies(c)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to create access token"})
		return
	}

	h.setAuthCookies(c, next)
	h.auditLog.Record(audit.ActionRefresh, u.ID, c.ClientIP())
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"accessToken":  access,
		"refreshToken": next,
		"expiresIn":    int(h.cfg.JWT.AccessTokenTTL.Seconds()),
	})
}

// Logout is best-effort: it removes the refresh session when one is supplied,
// blacklists the presented access token for its remaining lifetime and always
// clears cookies and reports success.
func (h *AuthHandler) Logout(c *gin.Context) {
	if refresh := h.refreshTokenFromRequest(c); refresh != "" {
		if err := h.sessionsSvc.DeleteRefresh(c.Request.Context(), refresh); err != nil {
			logger.Warnf("failed to remove session on logout: %v", err)
		}
	}
	subject := ""
	if token := bearerToken(c); token != "" {
		subject = parseSubFromJWT(token)
		if exp, err := parseExpFromJWT(token); err == nil {
			if ttl := time.Until(exp); ttl > 0 {
				if err := sessions.BlacklistAccessToken(c.Request.Context(), token, ttl); err != nil {
					logger.Warnf("failed to blacklist access token: %v", err)
				}
			}
		}
	}
	h.auditLog.Record(audit.ActionLogout, subject, c.ClientIP())
	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ChangePassword verifies the current password before accepting the new one.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	id, _ := middleware.GetIdentity(c)

	var req struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "currentPassword and newPassword required"})
		return
	}

	ok, err := h.usersSvc.UpdatePassword(c.Request.Context(), id.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		logger.Errorf("password update failed for %s: %v", id.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "password update failed"})
		return
	}
	if !ok {
		// generic message, no hint about which check failed
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "password update rejected"})
		return
	}
	h.auditLog.Record(audit.ActionPasswordChange, id.UserID, c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "password updated"})
}

// Me returns the authenticated editor, enriched with course enrollments when
// the learners provider is configured. Enrollment lookup failures are
// non-fatal.
func (h *AuthHandler) Me(c *gin.Context) {
	id, _ := middleware.GetIdentity(c)

	u, err := h.usersSvc.GetByID(c.Request.Context(), id.UserID)
	if err != nil {
		logger.Errorf("user lookup failed for %s: %v", id.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "user lookup failed"})
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "user not found"})
		return
	}

	resp := gin.H{"success": true, "user": u}
	if h.learners != nil {
		if enr, err := h.learners.EnrollmentsByEmail(c.Request.Context(), u.Email); err == nil && enr != nil {
			resp["enrollments"] = enr
		} else if err != nil {
			logger.Debugf("enrollment lookup failed for %s: %v", u.Email, err)
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) refreshTokenFromRequest(c *gin.Context) string {
	if v, err := c.Cookie(RefreshCookie); err == nil && v != "" {
		return v
	}
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.ShouldBindJSON(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}

func (h *AuthHandler) setAuthCookies(c *gin.Context, refresh string) {
	maxAge := int(h.cfg.JWT.RefreshTokenTTL.Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshCookie, refresh, maxAge, "/api/cms/auth", "", h.cfg.IsProduction(), true)
	c.SetCookie(SessionMirrorCookie, "1", maxAge, "/", "", h.cfg.IsProduction(), false)
}

// clearAuthCookies is called on every auth failure path, even when the
// failure is unrelated to the cookies, so clients do not keep a stuck
// invalid session around.
func (h *AuthHandler) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshCookie, "", -1, "/api/cms/auth", "", h.cfg.IsProduction(), true)
	c.SetCookie(SessionMirrorCookie, "", -1, "/", "", h.cfg.IsProduction(), false)
}
