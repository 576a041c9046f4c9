package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"tharo/api/models"
	"tharo/api/store"
	"tharo/api/utils"
)

type AuthHandlers struct {
	AdminStore    *store.AdminStore
	TokenLifetime time.Duration
}

func NewAuthHandlers(adminStore *store.AdminStore, tokenLifetime time.Duration) *AuthHandlers {
	return &AuthHandlers{AdminStore: adminStore, TokenLifetime: tokenLifetime}
}

func (h *AuthHandlers) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	_, err := h.AdminStore.GetAdminByEmail(c.Request.Context(), req.Email)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Admin with this email already exists"})
		return
	}
	if err.Error() != fmt.Sprintf("admin with email '%s' not found", req.Email) {
		log.Printf("ERROR: Database error during signup email check: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check admin existence"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: Failed to hash password for %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	admin, err := h.AdminStore.CreateAdmin(c.Request.Context(), req.Email, hashedPassword)
	if err != nil {
		log.Printf("ERROR: Failed to create admin in DB for email %s: %v", req.Email, err)
		if err.Error() == fmt.Sprintf("admin with email '%s' already exists", req.Email) {
			c.JSON(http.StatusConflict, gin.H{"error": "Admin with this email already exists"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register admin"})
		}
		return
	}

	log.Printf("Admin registered: ID=%d, Email=%s", admin.ID, admin.Email)
	c.JSON(http.StatusCreated, gin.H{"message": "Admin registered successfully", "admin_email": admin.Email})
}

// Login authenticates an admin and sets the JWT cookie.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	admin, err := h.AdminStore.GetAdminByEmail(c.Request.Context(), req.Email)
	if err != nil {
		log.Printf("Login failed for email %s: %v", req.Email, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword(admin.HashedPassword, []byte(req.Password)); err != nil {
		log.Printf("Login failed for email %s: password mismatch", req.Email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, err := utils.GenerateJWT(admin, h.TokenLifetime)
	if err != nil {
		log.Printf("ERROR: Failed to generate JWT for admin %d: %v", admin.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.SetCookie(
		"jwt_token",
		tokenString,
		int(h.TokenLifetime/time.Second),
		"/",
		"",
		false,
		true,
	)

	log.Printf("Admin logged in: ID=%d, Email=%s. JWT issued.", admin.ID, admin.Email)
	c.JSON(http.StatusOK, gin.H{
		"message":     "Login successful",
		"admin_email": admin.Email,
	})
}

func (h *AuthHandlers) Logout(c *gin.Context) {
	c.SetCookie(
		"jwt_token",
		"",
		-1,
		"/",
		"",
		false,
		true,
	)

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
