// Package uploads hosts menu item images on an external image service.
package uploads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"azzipizza/apperr"
)

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

type CloudinaryConfig struct {
	CloudName    string
	UploadPreset string
}

// Cloudinary uploads through the unsigned upload endpoint; the preset
// controls transformations and folder placement on the Cloudinary side.
type Cloudinary struct {
	cfg    CloudinaryConfig
	client *http.Client
}

func NewCloudinary(cfg CloudinaryConfig) *Cloudinary {
	return &Cloudinary{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Cloudinary) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		part, err := form.CreateFormFile("file", filename)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = form.WriteField("upload_preset", c.cfg.UploadPreset)
		}
		if err == nil {
			err = form.Close()
		}
		pw.CloseWithError(err)
	}()

	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", c.cfg.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		return "", apperr.External("cloudinary", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", apperr.External("cloudinary", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", apperr.External("cloudinary", fmt.Errorf("upload returned %s: %s", resp.Status, detail))
	}

	var body struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", apperr.External("cloudinary", err)
	}
	return body.SecureURL, nil
}
