package route

import (
	"github.com/cosealhq/coseal/internal/controller"
	"github.com/gin-gonic/gin"
)

func V1_Index(r *gin.RouterGroup, ic *controller.IndexController) {
	v1 := r.Group("/v1")
	{
		v1.GET("", ic.Index)
	}
}
