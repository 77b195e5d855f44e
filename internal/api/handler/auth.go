package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"

	"github.com/aimd54/cricket-predictor/internal/config"
	"github.com/aimd54/cricket-predictor/internal/domain"
	"github.com/aimd54/cricket-predictor/internal/models"
)

// Context keys set by the auth middleware.
const (
	ctxUserID = "uid"
	ctxRole   = "role"
	ctxEmail  = "email"
)

// Claims is the bearer token payload. Session tokens carry UserID and Role;
// identity tokens from the sign-in provider carry only Email.
type Claims struct {
	UserID uint   `json:"uid,omitempty"`
	Role   string `json:"role,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies HS256 bearer tokens.
type Authenticator struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  clockwork.Clock
}

// NewAuthenticator creates an authenticator from the auth configuration.
func NewAuthenticator(cfg config.AuthConfig, clock clockwork.Clock) *Authenticator {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Authenticator{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		clock:  clock,
	}
}

// Issue signs a session token for user.
func (a *Authenticator) Issue(user *models.User) (string, error) {
	now := a.clock.Now()
	return a.sign(Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	})
}

// IssueIdentity signs an identity token for email, the way the sign-in provider does.
func (a *Authenticator) IssueIdentity(email string) (string, error) {
	now := a.clock.Now()
	return a.sign(Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	})
}

func (a *Authenticator) sign(claims Claims) (string, error) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Parse verifies a raw token and returns its claims.
func (a *Authenticator) Parse(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.clock.Now),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// RequireUser accepts session tokens and stores the caller's ID and role.
func (a *Authenticator) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := a.authenticate(c)
		if !ok {
			return
		}
		if claims.UserID == 0 {
			abort(c, http.StatusUnauthorized, "session token required")
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// RequireIdentity accepts identity tokens and stores the verified email.
func (a *Authenticator) RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := a.authenticate(c)
		if !ok {
			return
		}
		if claims.Email == "" {
			abort(c, http.StatusUnauthorized, "identity token required")
			return
		}
		c.Set(ctxEmail, claims.Email)
		c.Next()
	}
}

func (a *Authenticator) authenticate(c *gin.Context) (*Claims, bool) {
	header := c.GetHeader("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(raw) == "" {
		abort(c, http.StatusUnauthorized, "not authorized")
		return nil, false
	}
	claims, err := a.Parse(strings.TrimSpace(raw))
	if err != nil {
		abort(c, http.StatusUnauthorized, "bad token")
		return nil, false
	}
	return claims, true
}

// RequireRole lets the request through when allowed accepts the caller's
// current role. The role is read from storage rather than the token, so a
// demotion or deletion takes effect immediately.
func (h *Handler) RequireRole(allowed func(role string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := h.svc.Users.Get(c.Request.Context(), currentUserID(c))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				abort(c, http.StatusUnauthorized, "account no longer exists")
				return
			}
			h.log.Error().Err(err).Uint("user_id", currentUserID(c)).Msg("Failed to load caller role")
			abort(c, http.StatusInternalServerError, "failed to verify role")
			return
		}
		if !allowed(user.Role) {
			abort(c, http.StatusForbidden, "insufficient role")
			return
		}
		c.Set(ctxRole, user.Role)
		c.Next()
	}
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}

func currentUserID(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}
