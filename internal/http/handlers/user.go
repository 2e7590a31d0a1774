package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/placeshare-backend/internal/http/response"
	"github.com/yungbote/placeshare-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/users
func (uh *UserHandler) ListUsers(c *gin.Context) {
	users, err := uh.userService.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": users})
}
