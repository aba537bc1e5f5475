package apiclient

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"sort"
)

// File is one file part of a multipart form.
type File struct {
	Field    string
	Filename string
	Data     []byte
}

// Form is a multipart payload: plain text fields plus files.
type Form struct {
	Fields map[string]string
	Files  []File
}

// Set adds a field, skipping empty values.
func (f *Form) Set(key, value string) {
	if value == "" {
		return
	}
	if f.Fields == nil {
		f.Fields = map[string]string{}
	}
	f.Fields[key] = value
}

// Upload posts form as multipart/form-data.
func (c *Client) Upload(ctx context.Context, endpoint string, form Form, out any) error {
	return c.upload(ctx, http.MethodPost, endpoint, form, out)
}

// UploadPut sends form as multipart/form-data with PUT.
func (c *Client) UploadPut(ctx context.Context, endpoint string, form Form, out any) error {
	return c.upload(ctx, http.MethodPut, endpoint, form, out)
}

func (c *Client) upload(ctx context.Context, method, endpoint string, form Form, out any) error {
	body, contentType, err := encodeForm(form)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("encode multipart form")
		return &APIError{Message: MsgRequestSetup}
	}
	return c.do(ctx, method, endpoint, body, contentType, out)
}

func encodeForm(form Form) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	keys := make([]string, 0, len(form.Fields))
	for k := range form.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, form.Fields[k]); err != nil {
			return nil, "", err
		}
	}

	for _, f := range form.Files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
