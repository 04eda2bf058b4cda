package common

import (
	"marketplace/bizerror"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BindingPathID parses the ":id" path parameter.
func BindingPathID(c *gin.Context) (types.ID, error) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		return 0, &bizerror.ErrBadParam{Cause: err}
	}
	return id, nil
}

// QueryCriteria flattens the query string, keeping the first value of repeated keys.
func QueryCriteria(c *gin.Context) map[string]string {
	criteria := map[string]string{}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			criteria[key] = values[0]
		}
	}
	return criteria
}
