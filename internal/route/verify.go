package route

import (
	"github.com/cosealhq/coseal/internal/controller"
	"github.com/gin-gonic/gin"
)

// Verification routes are public: anyone holding a document or a QR payload
// may check it.
func V1_Verify(r *gin.RouterGroup, vc *controller.VerificationController) {
	v1 := r.Group("/v1/verify")
	{
		v1.POST("", vc.VerifyUpload)
		v1.GET("/:payload", vc.Verify)
		v1.GET("/:payload/qr", vc.VerifyQR)
		v1.GET("/:payload/bundle", vc.DownloadBundle)
	}
}
