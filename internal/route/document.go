package route

import (
	"github.com/cosealhq/coseal/internal/controller"
	"github.com/cosealhq/coseal/internal/middleware"
	"github.com/gin-gonic/gin"
)

func V1_Documents(r *gin.RouterGroup, dc *controller.DocumentController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/documents")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.POST("", dc.UploadDocument)
		v1.GET("/:documentId", dc.GetDocument)
		v1.GET("/:documentId/verifications", dc.GetVerificationHistory)
	}
}
