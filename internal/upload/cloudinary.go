// Package upload pushes customer images (payment receipts attached to
// orders) to Cloudinary using its signed upload API. Uploads land in a
// dedicated folder and carry a 24-hour delete-by hint so the bucket does not
// accumulate stale receipts.
package upload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const uploadFolder = "pedidos"

// retention is how long an uploaded image is meant to live.
const retention = 24 * time.Hour

// Result is the subset of Cloudinary's response the storefront needs.
type Result struct {
	PublicID  string    `json:"public_id"`
	SecureURL string    `json:"secure_url"`
	DeleteAt  time.Time `json:"delete_at"`
}

// Cloudinary is a minimal signed-upload client.
type Cloudinary struct {
	cloudName string
	apiKey    string
	apiSecret string
	client    *http.Client

	now func() time.Time
}

// NewCloudinary builds a client for the given account.
func NewCloudinary(cloudName, apiKey, apiSecret string) *Cloudinary {
	return &Cloudinary{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		client:    &http.Client{Timeout: 30 * time.Second},
		now:       time.Now,
	}
}

// Configured reports whether credentials are present; handlers refuse
// uploads otherwise.
func (c *Cloudinary) Configured() bool {
	return c.cloudName != "" && c.apiKey != "" && c.apiSecret != ""
}

// UploadDataURL uploads a data: URL image and returns its public URL.
func (c *Cloudinary) UploadDataURL(ctx context.Context, dataURL string) (*Result, error) {
	if !strings.HasPrefix(dataURL, "data:image/") {
		return nil, fmt.Errorf("not an image data url")
	}

	timestamp := c.now().Unix()
	form := url.Values{}
	form.Set("file", dataURL)
	form.Set("folder", uploadFolder)
	form.Set("api_key", c.apiKey)
	form.Set("timestamp", fmt.Sprintf("%d", timestamp))
	form.Set("signature", signUpload(uploadFolder, timestamp, c.apiSecret))

	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upload image: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		PublicID  string `json:"public_id"`
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}

	return &Result{
		PublicID:  body.PublicID,
		SecureURL: body.SecureURL,
		DeleteAt:  c.now().Add(retention),
	}, nil
}

// signUpload builds Cloudinary's request signature: the sorted parameter
// string followed by the API secret, hashed.
func signUpload(folder string, timestamp int64, secret string) string {
	payload := fmt.Sprintf("folder=%s&timestamp=%d%s", folder, timestamp, secret)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
