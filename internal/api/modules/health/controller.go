package health

import (
	"github.com/gin-gonic/gin"
	"github.com/zapdesk/zapdesk/pkg/sdk"
)

// getStatus handles GET requests for the service health check
func getStatus(c *gin.Context) {
	c.JSON(sdk.NewSuccess("Service is healthy").AsGinResponse())
}
