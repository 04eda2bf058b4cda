package session

import (
	"errors"
	"net/http"

	"marketplace/bizerror"
	"marketplace/domain"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathAdminSessions = "/admin/sessions"
	PathSessions      = "/sessions"

	IssueFunc = Issue
)

type SessionIssuing struct {
	Identity Identity    `json:"identity"`
	Role     domain.Role `json:"role" binding:"required,oneof=PROJECT_OWNER ADMIN"`
}

// RegisterSessionsRestAPI mounts the admin token issuing endpoint and the logout endpoint.
func RegisterSessionsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	admin := r.Group(PathAdminSessions, append(middleWares, SimpleAuthFilter(), RequireRole(domain.RoleAdmin))...)
	admin.POST("", handleIssueSession)

	own := r.Group(PathSessions, append(middleWares, SimpleAuthFilter())...)
	own.DELETE("", handleRevokeSession)
}

func handleIssueSession(c *gin.Context) {
	payload := SessionIssuing{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if payload.Identity.ID == 0 {
		panic(&bizerror.ErrBadParam{Cause: errors.New("identity.id is required")})
	}
	s := IssueFunc(payload.Identity, payload.Role)
	c.JSON(http.StatusCreated, s)
}

func handleRevokeSession(c *gin.Context) {
	s := ExtractSessionFromGinContext(c)
	Revoke(s.Token)
	c.SetCookie(KeySecToken, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}
