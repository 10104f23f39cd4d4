package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/remui-admin-api/pkg/errors"
	"github.com/noah-isme/remui-admin-api/pkg/pagination"
)

// Envelope represents the common response contract of the REST-style routes.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *pagination.Meta       `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, data interface{}, page *pagination.Meta, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Data: data, Pagination: page}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// AJAX writes a listing endpoint payload. These endpoints always answer 200
// with a JSON body; failures travel in the payload's "error" field.
func AJAX(c *gin.Context, payload interface{}) {
	noStore(c)
	c.JSON(http.StatusOK, payload)
}

// ErrorMessage is the user-facing text of err for AJAX payloads.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return appErrors.FromError(err).Message
}
