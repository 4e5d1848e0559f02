package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/goaero/internal/domain"
)

const sessionKey = "session"

type TokenParser interface {
	ParseToken(token string) (domain.Session, error)
}

// Authenticate requires a valid bearer token and stores its session in the
// request context.
func Authenticate(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "missing bearer token", Code: "unauthorized"})
			return
		}
		session, err := parser.ParseToken(strings.TrimSpace(token))
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

// RequireRole lets only the listed roles through.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessionFrom(c)
		for _, r := range roles {
			if session.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{Error: "forbidden", Code: "forbidden"})
	}
}

func sessionFrom(c *gin.Context) domain.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(domain.Session); ok {
			return s
		}
	}
	return domain.Session{}
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
