package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	appcontext "github.com/cosealhq/coseal/internal/app_context"
	"github.com/cosealhq/coseal/internal/auth"
	"github.com/cosealhq/coseal/internal/signing"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type baseController struct {
	app *appcontext.Application
}

type Controller struct {
	Index        *IndexController
	Document     *DocumentController
	Request      *RequestController
	Verification *VerificationController
}

func newBaseController(app *appcontext.Application) *baseController {
	return &baseController{app: app}
}

func NewController(app *appcontext.Application) *Controller {
	bc := newBaseController(app)

	return &Controller{
		Index:        &IndexController{baseController: bc},
		Document:     &DocumentController{baseController: bc},
		Request:      &RequestController{baseController: bc},
		Verification: &VerificationController{baseController: bc},
	}
}

func (b *baseController) getAuthSigner(ctx *gin.Context) (*auth.JWTPayload, error) {
	signer, exists := ctx.Get("signer")
	if !exists {
		return nil, errors.New("signer not found in context")
	}

	jsonSigner, err := json.Marshal(signer)
	if err != nil {
		return nil, err
	}

	var authSigner *auth.JWTPayload
	err = json.Unmarshal(jsonSigner, &authSigner)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal signer: %w", err)
	}

	return authSigner, nil
}

// statusFromError maps workflow errors onto HTTP statuses: bad input is 400,
// a signer without a seat is 403, an action the current state does not accept
// is 409.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, signing.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, signing.ErrUnauthorizedSigner):
		return http.StatusForbidden
	case errors.Is(err, signing.ErrStateConflict):
		return http.StatusConflict
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
