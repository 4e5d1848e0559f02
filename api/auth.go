package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/goaero/internal/domain"
	"github.com/Domenick1991/goaero/internal/service/auth"
)

type AuthHandler struct {
	service auth.AuthUseCase
}

type registerRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
	Password  string `json:"password" binding:"required"`
}

type registerOwnerRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	CompanyCode string `json:"company_code" binding:"required,alphanum"`
	ContactInfo string `json:"contact_info"`
	Password    string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type resetPasswordRequest struct {
	Role domain.Role `json:"role" binding:"required,oneof=user owner"`
	ID   int64       `json:"id" binding:"required,gt=0"`
}

type ownerResponse struct {
	ID          int64  `json:"id"`
	CompanyName string `json:"company_name"`
	CompanyCode string `json:"company_code"`
	ContactInfo string `json:"contact_info,omitempty"`
}

type loginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

func NewAuthHandler(service auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(public, private *gin.RouterGroup) {
	group := public.Group("/auth")
	group.POST("/register", h.register)
	group.POST("/register/owner", h.registerOwner)
	group.POST("/login/user", h.loginUser)
	group.POST("/login/admin", h.loginAdmin)
	group.POST("/login/owner", h.loginOwner)

	account := private.Group("/auth")
	account.PUT("/password", RequireRole(domain.RoleUser, domain.RoleOwner), h.changePassword)
	account.POST("/password/reset", RequireRole(domain.RoleAdmin), h.resetPassword)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := h.service.RegisterUser(c.Request.Context(), auth.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
	})
}

func (h *AuthHandler) registerOwner(c *gin.Context) {
	var req registerOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	owner, err := h.service.RegisterOwner(c.Request.Context(), auth.RegisterOwnerInput{
		CompanyName: req.CompanyName,
		CompanyCode: req.CompanyCode,
		ContactInfo: req.ContactInfo,
		Password:    req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ownerResponse{
		ID:          owner.ID,
		CompanyName: owner.CompanyName,
		CompanyCode: owner.CompanyCode,
		ContactInfo: owner.ContactInfo,
	})
}

func (h *AuthHandler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.service.ChangePassword(c.Request.Context(), sessionFrom(c), req.CurrentPassword, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	password, err := h.service.ResetPassword(c.Request.Context(), sessionFrom(c), req.Role, req.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": req.Role, "id": req.ID, "password": password})
}

func (h *AuthHandler) loginUser(c *gin.Context)  { h.login(c, h.service.LoginUser) }
func (h *AuthHandler) loginAdmin(c *gin.Context) { h.login(c, h.service.LoginAdmin) }
func (h *AuthHandler) loginOwner(c *gin.Context) { h.login(c, h.service.LoginOwner) }

type loginFunc func(ctx context.Context, login, password string) (*auth.Token, error)

func (h *AuthHandler) login(c *gin.Context, fn loginFunc) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	token, err := fn(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token.AccessToken,
		"token_type":   "Bearer",
		"expires_at":   token.ExpiresAt,
		"role":         token.Session.Role,
	})
}
