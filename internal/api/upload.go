package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
)

// maxUploadBytes caps avatars, logos and resumes.
const maxUploadBytes = 5 << 20

// File is an upload payload.
type File struct {
	Name   string
	Reader io.Reader
}

// upload posts a multipart form with the file under field plus extra text
// fields and decodes data into T. The body is buffered so it can be replayed
// after a token refresh.
func upload[T any](ctx context.Context, c *Client, path, field string, f File, extra map[string]string) (T, error) {
	var out T

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range extra {
		if err := w.WriteField(k, v); err != nil {
			return out, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	part, err := w.CreateFormFile(field, filepath.Base(f.Name))
	if err != nil {
		return out, fmt.Errorf("create form file: %w", err)
	}
	n, err := io.Copy(part, io.LimitReader(f.Reader, maxUploadBytes+1))
	if err != nil {
		return out, fmt.Errorf("read %s: %w", f.Name, err)
	}
	if n > maxUploadBytes {
		return out, fmt.Errorf("%s exceeds the %d MB upload limit", filepath.Base(f.Name), maxUploadBytes>>20)
	}
	if err := w.Close(); err != nil {
		return out, fmt.Errorf("close multipart writer: %w", err)
	}

	r := request{
		method:      http.MethodPost,
		path:        path,
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
	}
	err = c.do(ctx, r, &out)
	return out, err
}
