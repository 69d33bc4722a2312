package handlers

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/taskdesk/backend/models"
	"github.com/taskdesk/backend/services"
)

var jwtSecret = []byte(os.Getenv("JWT_SECRET"))

func init() {
	if len(jwtSecret) == 0 {
		jwtSecret = []byte("default-dev-secret-change-me")
	}
}

// sessionCookie carries the signed session token. HttpOnly; the
// Authorization: Bearer form is accepted as a fallback for API clients.
const sessionCookie = "taskdesk_session"

const ctxUserKey = "currentUser"

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	Users *services.UserService
	Tasks *services.TaskService
}

func New(users *services.UserService, tasks *services.TaskService) *Handler {
	return &Handler{Users: users, Tasks: tasks}
}

type CredentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup handles employee self-registration
// POST /signup
func (h *Handler) Signup(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	user, err := h.Users.Create(c.Request.Context(), req.Username, req.Password, models.RoleEmployee)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Signup success! Please login.",
		"employeeId": user.EmployeeID,
	})
}

// Login verifies credentials and issues the session cookie
// POST /login
func (h *Handler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	user, err := h.Users.Verify(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify credentials"})
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID,
		"exp": time.Now().Add(sessionDuration()).Unix(),
	})

	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, tokenString, int(sessionDuration().Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"role": user.Role})
}

// sessionDuration returns standard duration (24h)
func sessionDuration() time.Duration {
	return 24 * time.Hour
}

// Logout clears the session cookie
// GET/POST /logout
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the caller's identity summary
// GET /me
func (h *Handler) Me(c *gin.Context) {
	user := CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"role":       user.Role,
		"employeeId": user.EmployeeID,
	})
}

// CurrentUser returns the identity resolved by AuthRequired, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// AuthRequired resolves the session token to a user and stores the
// request-scoped identity in the gin context. Missing or invalid sessions
// are rejected with 403.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := sessionToken(c)
		if tokenString == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not logged in"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid session"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid session"})
			c.Abort()
			return
		}
		sub, ok := claims["sub"].(float64)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid session"})
			c.Abort()
			return
		}

		user, err := h.Users.GetByID(c.Request.Context(), uint(sub))
		if err != nil || user == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid session"})
			c.Abort()
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// sessionToken pulls the JWT from the session cookie or, failing that, an
// Authorization: Bearer header.
func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(sessionCookie); err == nil && cookie != "" {
		return cookie
	}

	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// RequireRole gates a route group to one role. Runs after AuthRequired.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || user.Role != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			c.Abort()
			return
		}
		c.Next()
	}
}
