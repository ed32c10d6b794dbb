package core

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const sessionContextKey = "session"

// SessionGuard derives session state from requests.
type SessionGuard struct {
	codec  *SessionCodec
	logger *zap.Logger
}

func NewSessionGuard(codec *SessionCodec, logger *zap.Logger) *SessionGuard {
	return &SessionGuard{codec: codec, logger: logger}
}

// Authenticate returns the session carried by r, or false for anonymous callers.
// A missing, tampered or malformed cookie is never an error.
func (g *SessionGuard) Authenticate(r *http.Request) (Session, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return Session{}, false
	}
	s, err := g.codec.Decode(cookie.Value)
	if err != nil {
		g.logger.Debug("discarding session cookie", zap.Error(err), zap.String("path", r.URL.Path))
		return Session{}, false
	}
	return s, true
}

// RequireSession fails with ErrUnauthenticated for anonymous callers.
func (g *SessionGuard) RequireSession(r *http.Request) (Session, error) {
	s, ok := g.Authenticate(r)
	if !ok {
		return Session{}, ErrUnauthenticated
	}
	return s, nil
}

// SessionMiddleware exposes the caller's session (if any) to handlers.
func SessionMiddleware(guard *SessionGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s, ok := guard.Authenticate(c.Request); ok {
			c.Set(sessionContextKey, s)
		}
		c.Next()
	}
}

// RequireSession redirects anonymous callers to the login page.
// It relies on SessionMiddleware having decoded the cookie already.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentSession(c); !ok {
			c.Redirect(http.StatusTemporaryRedirect, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// currentSession returns the session stored by SessionMiddleware.
func currentSession(c *gin.Context) (Session, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return Session{}, false
	}
	s, ok := v.(Session)
	return s, ok
}

// OriginRefererMiddleware rejects cross-origin form posts.
// Same-origin requests and requests without Origin/Referer pass.
func OriginRefererMiddleware(cfg Config) gin.HandlerFunc {
	allowed := map[string]struct{}{}
	for _, o := range cfg.AllowedOrigins {
		allowed[strings.ToLower(o)] = struct{}{}
	}

	return func(c *gin.Context) {
		if isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}
		origin := c.GetHeader("Origin")
		if origin == "" {
			if referer := c.GetHeader("Referer"); referer != "" {
				if u, err := url.Parse(referer); err == nil {
					origin = u.Scheme + "://" + u.Host
				}
			}
		}
		if origin == "" || origin == "null" {
			c.Next()
			return
		}
		if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, c.Request.Host) {
			c.Next()
			return
		}
		if _, ok := allowed[strings.ToLower(origin)]; ok {
			c.Next()
			return
		}
		renderError(c, http.StatusForbidden, "Origem não permitida.")
		c.Abort()
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

// AccessLog logs one line per request.
func AccessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
	}
}

func sessionOptions(cfg Config) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   0, // browser-session cookie
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: sameSiteFromString(cfg.CookieSameSite),
	}
}

func setSessionCookie(c *gin.Context, cfg Config, token string) {
	http.SetCookie(c.Writer, sessions.NewCookie(SessionCookieName, token, sessionOptions(cfg)))
}

func clearSessionCookie(c *gin.Context, cfg Config) {
	opts := sessionOptions(cfg)
	opts.MaxAge = -1
	http.SetCookie(c.Writer, sessions.NewCookie(SessionCookieName, "", opts))
}

func sameSiteFromString(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}
