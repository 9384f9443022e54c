package handlers

import (
	"ClinicQueue/cache"
	"ClinicQueue/models"
	"ClinicQueue/services"
	"ClinicQueue/utils"
	"fmt"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	StaffService services.StaffService
	Cache        *cache.Cache
}

func NewAuthHandler(staffService services.StaffService, cache *cache.Cache) *AuthHandler {
	return &AuthHandler{
		StaffService: staffService,
		Cache:        cache,
	}
}

// Register handles new staff registration
func (h *AuthHandler) Register(c *gin.Context) {
	var staff models.Staff
	if err := c.ShouldBindJSON(&staff); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request body"})
		return
	}

	ctx := c.Request.Context()
	if err := h.StaffService.ValidateAndCreateStaff(ctx, &staff); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("Validation failed: %v", err)})
		return
	}

	c.Status(201)
}

// Login authenticates a staff member and returns the token pair
func (h *AuthHandler) Login(c *gin.Context) {
	var credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&credentials); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request body"})
		return
	}

	ctx := c.Request.Context()
	staff, err := h.StaffService.AuthenticateStaff(ctx, credentials.Username, credentials.Password)
	if err != nil {
		c.JSON(401, gin.H{"error": "Invalid username or password"})
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(strconv.FormatInt(staff.ID, 10), staff.Role.Name)
	if err != nil {
		c.JSON(500, gin.H{"error": fmt.Sprintf("Failed to generate tokens: %v", err)})
		return
	}

	utils.SetAuthCookies(c, accessToken, refreshToken)
	c.JSON(200, gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// RefreshToken exchanges a valid refresh token for a new access token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, err := c.Cookie("refreshToken")
	if err != nil || token == "" {
		c.JSON(400, gin.H{"error": "Missing refresh token"})
		return
	}

	claims, err := utils.ValidateToken(token, "Admin", "Doctor", "Receptionist")
	if err != nil {
		c.JSON(401, gin.H{"error": "Invalid refresh token"})
		return
	}

	accessToken, err := utils.GenerateAccessToken(claims.StaffID, claims.Role)
	if err != nil {
		c.JSON(500, gin.H{"error": fmt.Sprintf("Failed to generate access token: %v", err)})
		return
	}

	c.JSON(200, gin.H{
		"accessToken": accessToken,
	})
}

// Logoff logs the staff member out by clearing cookies
func (h *AuthHandler) Logoff(c *gin.Context) {
	utils.ClearAuthCookies(c)
	c.Status(200)
}

// GetProfile returns the authenticated staff member's profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	token, err := c.Cookie("accessToken")
	if err != nil || token == "" {
		c.JSON(401, gin.H{"error": "Missing access token"})
		return
	}

	claims, err := utils.ValidateToken(token, "Admin", "Doctor", "Receptionist")
	if err != nil {
		c.JSON(401, gin.H{"error": "Invalid access token"})
		return
	}

	staffID, err := strconv.ParseInt(claims.StaffID, 10, 64)
	if err != nil {
		c.JSON(500, gin.H{"error": "Invalid staff ID"})
		return
	}

	staff, err := h.StaffService.GetStaffByID(c.Request.Context(), staffID)
	if err != nil || staff == nil {
		c.JSON(404, gin.H{"error": "Staff not found"})
		return
	}

	c.JSON(200, gin.H{"staff": staff})
}

// SendResetCode emails a password reset code to a staff member
func (h *AuthHandler) SendResetCode(c *gin.Context) {
	var data struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request body"})
		return
	}

	ctx := c.Request.Context()
	staff, err := h.StaffService.GetStaffByEmail(ctx, data.Email)
	if err != nil || staff == nil {
		c.JSON(404, gin.H{"error": "Staff not found"})
		return
	}

	code := utils.GenerateResetCode()
	if err := utils.SetResetCode(ctx, h.Cache, staff.Email, code); err != nil {
		c.JSON(500, gin.H{"error": fmt.Sprintf("Failed to set reset code: %v", err)})
		return
	}

	if err := utils.SendResetCodeEmail(staff.Email, code); err != nil {
		c.JSON(500, gin.H{"error": fmt.Sprintf("Failed to send reset code email: %v", err)})
		return
	}

	c.Status(200)
}

// ChangePassword resets a staff member's password using an emailed code
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var data struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request body"})
		return
	}

	if err := utils.ValidatePasswordReset(data.Code, data.NewPassword); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	storedCode, err := utils.GetResetCode(ctx, h.Cache, data.Email)
	if err != nil || storedCode == nil || *storedCode != data.Code {
		c.JSON(401, gin.H{"error": "Invalid reset code"})
		return
	}

	staff, err := h.StaffService.GetStaffByEmail(ctx, data.Email)
	if err != nil || staff == nil {
		c.JSON(404, gin.H{"error": "Staff not found"})
		return
	}

	if err := h.StaffService.UpdateStaffPassword(ctx, staff.ID, data.NewPassword); err != nil {
		c.JSON(500, gin.H{"error": fmt.Sprintf("Failed to update password: %v", err)})
		return
	}

	if err := utils.DeleteResetCode(ctx, h.Cache, data.Email); err != nil {
		log.Printf("Failed to delete reset code for %s: %v", data.Email, err)
	}
	c.Status(200)
}
