package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sameepv21/guide-ai/internal/pkg/response"
	"github.com/sameepv21/guide-ai/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type changePasswordRequest struct {
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		badRequest(c, "email and password required")
		return
	}
	user, token, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"user": user, "token": token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		badRequest(c, "email and password required")
		return
	}
	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"user": user, "token": token})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.auth.Profile(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, user)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	user, err := h.auth.UpdateProfile(c.Request.Context(), getUserID(c), req.FirstName, req.LastName)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, user)
}

func (h *AuthHandler) RequestPasswordCode(c *gin.Context) {
	if err := h.auth.RequestPasswordCode(c.Request.Context(), getUserID(c)); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"sent": true})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	if err := h.auth.ChangePassword(c.Request.Context(), getUserID(c), req.Code, req.NewPassword); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"changed": true})
}
