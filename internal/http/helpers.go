package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/crudgate/internal/apperr"
)

// SuccessResponse is returned by endpoints that have nothing else to say.
type SuccessResponse struct {
	Message string `json:"message"`
}

func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

func respondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func parseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid " + name)
	}
	return uint(id), nil
}

// bindError keeps validator failures as they are so the envelope can list
// the offending fields; everything else is a malformed body.
func bindError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return err
	}
	return apperr.Wrap(apperr.KindValidation, "Malformed request", err)
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return bindError(err)
	}
	return nil
}

func bindQuery(c *gin.Context, dst any) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return bindError(err)
	}
	return nil
}

func bindForm(c *gin.Context, dst any) error {
	if err := c.ShouldBind(dst); err != nil {
		return bindError(err)
	}
	return nil
}
