package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/padraicbc/multibuilder/builder"
	"github.com/padraicbc/multibuilder/session"
)

const (
	// CookieName is the session cookie carrying the signed session token.
	CookieName = "multi_session"

	controllerKey = "controller"
	sessionIDKey  = "session_id"
)

// Claims is the session token payload. Subject holds the session id.
type Claims struct {
	jwt.RegisteredClaims
}

// SessionConfig configures the Session middleware.
type SessionConfig struct {
	Store  *session.Store
	Key    []byte
	TTL    time.Duration
	Secure bool
	Logger *zap.Logger
}

// SignSession returns an HS256 token for session id valid for ttl from now.
func SignSession(id string, key []byte, ttl time.Duration, now time.Time) (string, error) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// ParseSession validates token and returns its session id.
func ParseSession(token string, key []byte) (string, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !tkn.Valid || claims.Subject == "" {
		return "", errors.New("invalid session token")
	}
	return claims.Subject, nil
}

// Session returns an Echo middleware that resolves the visitor's controller
// from the session cookie, starting a new session when the cookie is
// missing, invalid or names an evicted session.
func Session(cfg SessionConfig) echo.MiddlewareFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.L()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var (
				id   string
				ctrl *builder.Controller
			)
			if ck, err := c.Cookie(CookieName); err == nil {
				sid, err := ParseSession(ck.Value, cfg.Key)
				if err != nil {
					log.Debug("rejecting session cookie", zap.Error(err))
				} else if found, ok := cfg.Store.Get(sid); ok {
					id, ctrl = sid, found
				}
			}

			if ctrl == nil {
				id, ctrl = cfg.Store.Create()
			}
			// Re-issue on every request so the cookie slides with the store's idle TTL.
			token, err := SignSession(id, cfg.Key, cfg.TTL, time.Now())
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
			c.SetCookie(&http.Cookie{
				Name:     CookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(cfg.TTL.Seconds()),
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			c.Set(controllerKey, ctrl)
			c.Set(sessionIDKey, id)
			return next(c)
		}
	}
}

// Controller returns the session controller set by Session.
func Controller(c echo.Context) (*builder.Controller, bool) {
	ctrl, ok := c.Get(controllerKey).(*builder.Controller)
	return ctrl, ok && ctrl != nil
}

// SessionID returns the session id set by Session.
func SessionID(c echo.Context) string {
	id, _ := c.Get(sessionIDKey).(string)
	return id
}
