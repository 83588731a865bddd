// Package transport delivers exported images to the vision backend.
package transport

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/inkbridge/inkbridge/log"
	"github.com/inkbridge/inkbridge/metrics"
)

// Mode selects the request encoding.
type Mode string

const (
	// ModeMultipart sends the image as raw bytes in a multipart form with
	// the parts "image" and "data".
	ModeMultipart Mode = "multipart"
	// ModeJSON embeds the image as base64 in a JSON document.
	ModeJSON Mode = "json"
)

const (
	imagePart = "image"
	dataPart  = "data"

	maxResponseBytes = 4 << 20
)

// Submission is one exported drawing on its way to the backend.
type Submission struct {
	ID       string
	Prompt   string
	Image    []byte
	MimeType string
	Width    int
	Height   int
	Metrics  metrics.Export
}

// Reply is the backend's answer to a submission.
type Reply struct {
	ID   string
	Mode Mode
	Text string
	Body []byte
}

// Client posts submissions to a single endpoint.
type Client struct {
	Endpoint   string
	Token      string
	HMACKey    string
	HMACSecret string
	Mode       Mode
	HTTPClient *http.Client

	now func() time.Time
}

// NewClient returns a client using multipart uploads and a 60s timeout.
func NewClient(endpoint, token string) *Client {
	return &Client{
		Endpoint:   endpoint,
		Token:      token,
		Mode:       ModeMultipart,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Send posts sub. A multipart request answered with 415 is retried once as
// JSON; nothing else is retried.
func (c *Client) Send(ctx context.Context, sub *Submission) (*Reply, error) {
	if c.Endpoint == "" {
		return nil, errors.New("backend endpoint is not configured")
	}
	if len(sub.Image) == 0 {
		return nil, errors.New("submission has no image")
	}
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	if err := checkToken(c.Token, now()); err != nil {
		return nil, err
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.MimeType == "" {
		sub.MimeType = "image/png"
	}

	mode := c.Mode
	if mode == "" {
		mode = ModeMultipart
	}

	status, body, err := c.post(ctx, sub, mode)
	if err == nil && status == http.StatusUnsupportedMediaType && mode == ModeMultipart {
		log.Warning.Printf("backend refused multipart upload for %s, falling back to json", sub.ID)
		mode = ModeJSON
		status, body, err = c.post(ctx, sub, mode)
	}
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("backend error: status %d, response: %s", status, strings.TrimSpace(string(body)))
	}

	log.Trace.Printf("submission %s: %d bytes reply", sub.ID, len(body))
	return &Reply{ID: sub.ID, Mode: mode, Text: extractText(body), Body: body}, nil
}

func (c *Client) post(ctx context.Context, sub *Submission, mode Mode) (int, []byte, error) {
	var body []byte
	var contentType string
	var err error

	switch mode {
	case ModeJSON:
		body, err = encodeJSON(sub)
		contentType = "application/json"
	case ModeMultipart:
		body, contentType, err = encodeMultipart(sub)
	default:
		return 0, nil, errors.Errorf("unknown transport mode %q", mode)
	}
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to encode submission")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json, text/plain")
	req.Header.Set("X-Submission-Id", sub.ID)
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.HMACKey != "" {
		req.Header.Set("applicationKey", c.HMACKey)
		req.Header.Set("hmac", sign(c.HMACKey, c.HMACSecret, body))
	}

	log.Trace.Printf("submission %s: posting %d bytes as %s", sub.ID, len(body), mode)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	res, err := httpClient.Do(req)
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to send request")
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to read response")
	}
	return res.StatusCode, resBody, nil
}

// sign returns the hex HMAC-SHA512 of data keyed with key+secret.
func sign(key, secret string, data []byte) string {
	mac := hmac.New(sha512.New, []byte(key+secret))
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

func metadata(sub *Submission) Metadata {
	return Metadata{
		ID:       sub.ID,
		Prompt:   sub.Prompt,
		MimeType: sub.MimeType,
		Width:    sub.Width,
		Height:   sub.Height,
		Metrics:  sub.Metrics,
	}
}

func encodeJSON(sub *Submission) ([]byte, error) {
	return json.Marshal(JSONPayload{
		Metadata: metadata(sub),
		Image:    base64.StdEncoding.EncodeToString(sub.Image),
	})
}

func encodeMultipart(sub *Submission) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="image.png"`, imagePart))
	h.Set("Content-Type", sub.MimeType)
	iw, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := iw.Write(sub.Image); err != nil {
		return nil, "", err
	}

	h = make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"`, dataPart))
	h.Set("Content-Type", "application/json")
	dw, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if err := json.NewEncoder(dw).Encode(metadata(sub)); err != nil {
		return nil, "", err
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

// extractText pulls the recognised text out of a JSON reply. Anything else
// is returned as is.
func extractText(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return string(data)
	}
	var r Response
	if err := json.Unmarshal(data, &r); err != nil {
		log.Trace.Printf("extractText: %v", err)
		return string(data)
	}
	switch {
	case r.Text != "":
		return r.Text
	case r.Label != "":
		return r.Label
	case len(r.Words) > 0:
		words := make([]string, 0, len(r.Words))
		for _, w := range r.Words {
			if w.Label != "" {
				words = append(words, w.Label)
			}
		}
		return strings.Join(words, " ")
	}
	return string(data)
}
