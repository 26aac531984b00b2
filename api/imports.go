package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/jrsteele09/go-subscription-client/apimodel"
	apperrors "github.com/jrsteele09/go-subscription-client/internal/errors"
)

// ImportCSV uploads a bank export as multipart field "file". Parsing and
// recurring-charge detection happen server side.
func (c *Client) ImportCSV(ctx context.Context, filename string, csv io.Reader) (*apimodel.ImportResult, error) {
	if filename == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "file must have a filename")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("api import form: %w", err)
	}
	if _, err := io.Copy(part, csv); err != nil {
		return nil, fmt.Errorf("api import read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("api import form: %w", err)
	}

	var result apimodel.ImportResult
	err = c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/imports",
		form:   &formBody{contentType: mw.FormDataContentType(), data: &buf},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
