package owner

import (
	"net/http"

	"marketplace/bizerror"
	"marketplace/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathAdminProjectOwners = "/admin/project_owners"

// RegisterOwnersRestAPI expects middleWares to authenticate admins.
func RegisterOwnersRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathAdminProjectOwners, middleWares...)
	g.GET("", handleQueryOwners)
	g.POST("", handleCreateOwner)
}

func handleQueryOwners(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)
	owners, err := QueryOwnersFunc(s.Context)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"projectOwners": owners})
}

func handleCreateOwner(c *gin.Context) {
	payload := OwnerCreation{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	s := session.ExtractSessionFromGinContext(c)
	o, err := CreateOwnerFunc(s.Context, &payload)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, gin.H{"projectOwner": o})
}
