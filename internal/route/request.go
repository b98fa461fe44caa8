package route

import (
	"github.com/cosealhq/coseal/internal/controller"
	"github.com/cosealhq/coseal/internal/middleware"
	"github.com/gin-gonic/gin"
)

func V1_Requests(r *gin.RouterGroup, rc *controller.RequestController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/requests")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.POST("", rc.CreateRequest)
		v1.GET("/:requestId", rc.GetRequest)
		v1.POST("/:requestId/sign", rc.Sign)
		v1.POST("/:requestId/reject", rc.Reject)
		v1.POST("/:requestId/expire", rc.Expire)
		v1.POST("/:requestId/regenerate", rc.Regenerate)
	}
}
