package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"github.com/yungbote/placeshare-backend/internal/platform/apierr"
)

// MaxUploadBytes caps a single uploaded image.
const MaxUploadBytes = 10 << 20

// readUpload returns the bytes and base name of a multipart file field.
// A missing field yields nil bytes and no error.
func readUpload(c *gin.Context, field string) ([]byte, string, error) {
	const op = "handlers.readUpload"
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, "", errImageTooLarge(err)
	}
	if err != nil {
		return nil, "", domainagg.NewError(domainagg.CodeValidation, op, "Invalid upload.", err)
	}
	if fh.Size > MaxUploadBytes {
		return nil, "", errImageTooLarge(nil)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", domainagg.NewError(domainagg.CodeValidation, op, "Invalid upload.", err)
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
	if err != nil {
		return nil, "", domainagg.NewError(domainagg.CodeValidation, op, "Invalid upload.", err)
	}
	if len(raw) > MaxUploadBytes {
		return nil, "", errImageTooLarge(nil)
	}
	return raw, filepath.Base(fh.Filename), nil
}

func errImageTooLarge(cause error) error {
	return apierr.New(http.StatusRequestEntityTooLarge, apierr.CodePayloadTooLarge, "Image is too large.", cause)
}

// limitBody bounds the whole request body, leaving room for form fields.
func limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+(1<<20))
}
