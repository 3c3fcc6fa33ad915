// Package blob wraps the vendor object-storage HTTP API. Only the two
// operations the application needs are covered: direct server-side uploads
// and client upload-token generation for browser uploads.
package blob

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MaxUploadSize is the cap enforced on client uploads (200 MB)
const MaxUploadSize = 200 * 1024 * 1024

// AllowedContentTypes is the MIME allow-list for client uploads
var AllowedContentTypes = []string{
	"audio/webm",
	"audio/mp4",
	"audio/mpeg",
	"audio/wav",
	"audio/ogg",
	"video/webm",
	"video/mp4",
}

// ContentTypeAllowed reports whether a MIME type is on the upload allow-list
func ContentTypeAllowed(contentType string) bool {
	for _, allowed := range AllowedContentTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}

// Store defines the blob operations used by the application
type Store interface {
	// Upload stores an object under pathname and returns its durable URL.
	// Uploading to an existing pathname overwrites the object.
	Upload(ctx context.Context, pathname, contentType string, data io.Reader) (string, error)

	// GenerateClientToken creates a signed single-pathname upload token for
	// browser uploads, carrying the MIME allow-list and size cap.
	GenerateClientToken(pathname, contentType string) (string, error)

	// UploadURL returns the endpoint clients should PUT to with the token
	UploadURL(pathname string) string
}

// Client calls the vendor blob-storage HTTP API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a blob storage client
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// uploadResult is the vendor response to a successful PUT
type uploadResult struct {
	URL      string `json:"url"`
	Pathname string `json:"pathname"`
}

// Upload stores an object and returns its durable URL
func (c *Client) Upload(ctx context.Context, pathname, contentType string, data io.Reader) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.UploadURL(pathname), data)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", contentType)
	// Repeated uploads to the same pathname must overwrite, not suffix
	req.Header.Set("X-Add-Random-Suffix", "0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("[BLOB]: upload of '%s' failed: %d: %s", pathname, resp.StatusCode, string(b))
	}

	var result uploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if result.URL == "" {
		return "", fmt.Errorf("no url returned for '%s'", pathname)
	}

	return result.URL, nil
}

// clientTokenPayload is the signed body of a client upload token
type clientTokenPayload struct {
	Pathname            string   `json:"pathname"`
	ContentType         string   `json:"contentType"`
	AllowedContentTypes []string `json:"allowedContentTypes"`
	MaximumSizeInBytes  int64    `json:"maximumSizeInBytes"`
	ValidUntil          int64    `json:"validUntil"` // Unix millis
}

// GenerateClientToken creates a signed upload token scoped to one pathname.
// The vendor validates the HMAC against the same shared secret on upload.
func (c *Client) GenerateClientToken(pathname, contentType string) (string, error) {
	if !ContentTypeAllowed(contentType) {
		return "", fmt.Errorf("content type %q is not allowed", contentType)
	}

	payload := clientTokenPayload{
		Pathname:            pathname,
		ContentType:         contentType,
		AllowedContentTypes: AllowedContentTypes,
		MaximumSizeInBytes:  MaxUploadSize,
		ValidUntil:          time.Now().Add(30 * time.Minute).UnixMilli(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, []byte(c.token))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	return base64.RawURLEncoding.EncodeToString(body) + "." + signature, nil
}

// UploadURL returns the endpoint clients should PUT to
func (c *Client) UploadURL(pathname string) string {
	return c.baseURL + "/" + pathname
}
