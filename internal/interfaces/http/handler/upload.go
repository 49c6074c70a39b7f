package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ugmart/storefront/internal/domain/shared"
)

// multipartMemory is kept in memory before spilling uploads to disk
const multipartMemory = 8 << 20

// parseMultipart parses the form and answers 400, or 413 for an oversized
// body, on failure
func (h *BaseHandler) parseMultipart(c *gin.Context) bool {
	err := c.Request.ParseMultipartForm(multipartMemory)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.HandleError(c, err)
		return false
	}
	h.BadRequest(c, "Invalid form data")
	return false
}

// formUploads reads every file sent under field
func formUploads(c *gin.Context, field string) ([]shared.Upload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	files := form.File[field]
	uploads := make([]shared.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
		}
		uploads = append(uploads, shared.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return uploads, nil
}

// formList reads a list field sent either as repeated values or as one
// JSON-encoded array
func formList(c *gin.Context, field string) []string {
	values := c.PostFormArray(field)
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var decoded []string
		if err := json.Unmarshal([]byte(values[0]), &decoded); err == nil {
			return decoded
		}
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
