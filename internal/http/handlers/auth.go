package handlers

import (
	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"github.com/yungbote/placeshare-backend/internal/http/response"
	"github.com/yungbote/placeshare-backend/internal/services"
)

type AuthHandler struct {
	userService services.UserService
}

func NewAuthHandler(userService services.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// POST /api/users/signup
// multipart: name, email, password, image (optional)
func (ah *AuthHandler) Signup(c *gin.Context) {
	limitBody(c)
	raw, name, err := readUpload(c, "image")
	if err != nil {
		response.Error(c, err)
		return
	}
	res, err := ah.userService.Signup(c.Request.Context(), services.SignupInput{
		Name:      c.PostForm("name"),
		Email:     c.PostForm("email"),
		Password:  c.PostForm("password"),
		Image:     raw,
		ImageName: name,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondCreated(c, authPayload(res))
}

// POST /api/users/login
// body: { "email": "...", "password": "..." }
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainagg.NewError(domainagg.CodeValidation, "AuthHandler.Login", "Invalid inputs passed, please check your data.", err))
		return
	}
	res, err := ah.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, authPayload(res))
}

func authPayload(res *services.AuthResult) gin.H {
	return gin.H{
		"userId": res.User.ID,
		"email":  res.User.Email,
		"token":  res.Token,
	}
}
