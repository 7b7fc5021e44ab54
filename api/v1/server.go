package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServerInterface is implemented by the HTTP handlers.
type ServerInterface interface {
	// (POST /runs)
	CreateRun(c *gin.Context)
	// (GET /runs)
	ListRuns(c *gin.Context, params ListRunsParams)
	// (GET /runs/:id)
	GetRun(c *gin.Context, id string)
	// (GET /runs/:id/terms)
	GetRunTerms(c *gin.Context, id string)
}

// RegisterHandlers mounts si on router.
func RegisterHandlers(router gin.IRouter, si ServerInterface) {
	router.POST("/runs", si.CreateRun)
	router.GET("/runs", func(c *gin.Context) {
		var params ListRunsParams
		if err := c.ShouldBindQuery(&params); err != nil {
			c.JSON(http.StatusBadRequest, Error{Error: "invalid query: " + err.Error()})
			return
		}
		si.ListRuns(c, params)
	})
	router.GET("/runs/:id", func(c *gin.Context) {
		si.GetRun(c, c.Param("id"))
	})
	router.GET("/runs/:id/terms", func(c *gin.Context) {
		si.GetRunTerms(c, c.Param("id"))
	})
}
