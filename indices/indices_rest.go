package indices

import (
	"net/http"

	"marketplace/session"

	"github.com/gin-gonic/gin"
)

const PathAdminIndexRequests = "/admin/index-requests"

type IndexRequestResult struct {
	Scheduled bool `json:"scheduled"`
}

func RegisterIndicesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathAdminIndexRequests)
	g.Use(middleWares...)
	g.POST("", handleCreateIndexRequest)
}

func handleCreateIndexRequest(c *gin.Context) {
	scheduled, err := ScheduleNewSyncRunFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusAccepted, &IndexRequestResult{Scheduled: scheduled})
}
