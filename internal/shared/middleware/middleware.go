package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"carebaby/internal/shared/utils/response"
	"carebaby/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// Context keys set by JWTAuth
const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
)

const (
	RoleCaregiver = "caregiver"
	RoleAdmin     = "admin"
)

var errInvalidToken = errors.New("invalid or expired token")

// IssueToken signs an access token for a caregiver (or admin)
func IssueToken(secret, userID, role string, ttl time.Duration) (string, error) {
	if role == "" {
		role = RoleCaregiver
	}
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"type":    "access",
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates an access token and returns its claims
func ParseToken(secret, tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidToken
	}
	if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
		return nil, errors.New("invalid token type")
	}
	if userID, ok := claims["user_id"].(string); !ok || userID == "" {
		return nil, errors.New("token has no user_id")
	}
	return claims, nil
}

// JWTAuth creates a JWT authentication middleware. Rejections are logged as auth failures.
func JWTAuth(secret string, log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.GetDefault()
	}
	reject := func(c *gin.Context, reason string) {
		log.LogAuthFailure(c.Request.Context(), reason, c.ClientIP())
		response.RespondError(c, http.StatusUnauthorized, reason, nil)
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			reject(c, "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			reject(c, "authorization header format must be Bearer {token}")
			return
		}

		claims, err := ParseToken(secret, parts[1])
		if err != nil {
			reject(c, err.Error())
			return
		}

		c.Set(ContextUserID, claims["user_id"])
		c.Set(ContextUserRole, claims["role"])
		c.Next()
	}
}

// RequireRole middleware checks if user has required role
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get(ContextUserRole)
		if !exists {
			response.RespondError(c, http.StatusUnauthorized, "user role not found in context", nil)
			return
		}

		if role, _ := userRole.(string); role != requiredRole {
			response.RespondError(c, http.StatusForbidden, "Insufficient permissions", nil)
			return
		}
		c.Next()
	}
}

// RequireAdmin middleware that requires admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(RoleAdmin)
}

// UserID returns the authenticated user id, or "" when absent
func UserID(c *gin.Context) string {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return ""
	}
	id, _ := v.(string)
	return id
}

// timingWriter stamps the elapsed time header right before the status line is written
type timingWriter struct {
	gin.ResponseWriter
	start   time.Time
	stamped bool
}

func (w *timingWriter) stamp() {
	if w.stamped {
		return
	}
	w.stamped = true
	elapsed := float64(time.Since(w.start).Microseconds()) / 1000
	w.ResponseWriter.Header().Set("X-Process-Time-Ms", strconv.FormatFloat(elapsed, 'f', 2, 64))
}

func (w *timingWriter) WriteHeader(code int) {
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *timingWriter) WriteHeaderNow() {
	w.stamp()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *timingWriter) Write(data []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(data)
}

func (w *timingWriter) WriteString(s string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(s)
}

// ProcessTime sets X-Process-Time-Ms (milliseconds, two decimals) on every response
func ProcessTime() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer = &timingWriter{ResponseWriter: c.Writer, start: time.Now()}
		c.Next()
	}
}
