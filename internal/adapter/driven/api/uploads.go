package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/ericfisherdev/washdesk/internal/domain/model"
)

// UploadFile is one file to send in a multipart upload.
type UploadFile struct {
	Name   string
	Reader io.Reader
}

// Uploads covers the /uploads endpoints.
type Uploads struct {
	client *Client
}

// Single uploads one file in the "file" field. folder is optional.
func (u *Uploads) Single(ctx context.Context, file UploadFile, folder string) (model.Upload, error) {
	var env dataEnvelope[model.Upload]
	err := u.send(ctx, "/uploads/single", folder, &env, func(w *multipart.Writer) error {
		return writeFilePart(w, "file", file)
	})
	return env.Data, err
}

// Multiple uploads files as files[0], files[1], ... folder is optional.
func (u *Uploads) Multiple(ctx context.Context, files []UploadFile, folder string) ([]model.Upload, error) {
	var env dataEnvelope[[]model.Upload]
	err := u.send(ctx, "/uploads/multiple", folder, &env, func(w *multipart.Writer) error {
		for i, f := range files {
			if err := writeFilePart(w, fmt.Sprintf("files[%d]", i), f); err != nil {
				return err
			}
		}
		return nil
	})
	return env.Data, err
}

// Delete removes a stored file by key.
func (u *Uploads) Delete(ctx context.Context, key string) error {
	return u.client.Do(ctx, http.MethodDelete, "/uploads/"+url.PathEscape(key), nil, nil, nil)
}

func (u *Uploads) send(ctx context.Context, path, folder string, out any, writeFiles func(*multipart.Writer) error) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := writeFiles(w); err != nil {
		return fmt.Errorf("build upload body: %w", err)
	}
	if folder != "" {
		if err := w.WriteField("folder", folder); err != nil {
			return fmt.Errorf("build upload body: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("build upload body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.client.url(path, nil), &buf)
	if err != nil {
		return fmt.Errorf("build POST %s: %w", path, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	return u.client.send(req, path, out)
}

func writeFilePart(w *multipart.Writer, field string, f UploadFile) error {
	part, err := w.CreateFormFile(field, f.Name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f.Reader); err != nil {
		return fmt.Errorf("copy %s: %w", f.Name, err)
	}
	return nil
}
