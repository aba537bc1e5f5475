// Package handlers serves the Admin, Doctor and Patient portals.
package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"hospital-portal/internal/apiclient"
	"hospital-portal/internal/middleware"
	"hospital-portal/internal/session"
	"hospital-portal/internal/store"
	"hospital-portal/internal/utils"
)

// currentStore returns the session's state container, answering 500 when the
// session middleware did not run.
func currentStore(c *gin.Context) (*store.Store, bool) {
	st, ok := middleware.GetStore(c)
	if !ok {
		utils.InternalServerError(c, "Session state not found in context. SessionMiddleware might be missing.")
		return nil, false
	}
	return st, true
}

// formFile reads an optional uploaded file. A missing field yields nil.
func formFile(c *gin.Context, field string) (*apiclient.File, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if fh.Size > session.MaxImageSize {
		return nil, &utils.ValidationError{Message: fmt.Sprintf("%s must be less than 5MB", field)}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, session.MaxImageSize+1))
	if err != nil {
		return nil, err
	}
	return &apiclient.File{Field: field, Filename: fh.Filename, Data: data}, nil
}

// formFiles reads every file uploaded under field.
func formFiles(c *gin.Context, field string) ([]apiclient.File, error) {
	form, err := c.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []apiclient.File
	for _, fh := range form.File[field] {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		out = append(out, apiclient.File{Field: field, Filename: fh.Filename, Data: data})
	}
	return out, nil
}
