package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"padhaihub-backend/internal/shared/server/middleware"
	"padhaihub-backend/internal/shared/server/respond"
)

// registerMeRoutes attaches the /me endpoint so the UI can confirm who the
// backend attributes checks to.
func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", meHandler)
}

func meHandler(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}

	response := gin.H{
		"userId":  userID,
		"isGuest": middleware.IsGuest(c),
	}
	if email := middleware.UserEmailFromContext(c); email != "" {
		response["email"] = email
	}
	if name := middleware.UserNameFromContext(c); name != "" {
		response["name"] = name
	}
	if role := middleware.UserRoleFromContext(c); role != "" {
		response["role"] = role
	}
	respond.OK(c, response)
}
