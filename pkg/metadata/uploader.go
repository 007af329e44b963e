// Package metadata uploads token metadata and images to the pump.fun IPFS
// endpoint and returns the resulting metadata URI.
package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/constants"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/types"
)

const maxErrorBody = 512

// Info is the token metadata submitted on launch.
type Info struct {
	Name        string
	Symbol      string
	Description string
	Image       []byte // PNG
	Twitter     string
	Telegram    string
	Website     string
	// HideName maps to showName=false on the form.
	HideName bool
}

// Uploader posts metadata forms. Uploads are never retried.
type Uploader struct {
	url     string
	http    *http.Client
	limiter *rate.Limiter
	now     func() time.Time
	log     zerolog.Logger
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithURL overrides the upload endpoint.
func WithURL(url string) Option {
	return func(u *Uploader) {
		if url != "" {
			u.url = url
		}
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(u *Uploader) { u.http = c }
}

// WithRateLimit caps uploads per second. Zero disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(u *Uploader) {
		if rps <= 0 {
			u.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		u.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(u *Uploader) { u.log = l }
}

// NewUploader returns an uploader for the mainnet endpoint unless overridden.
func NewUploader(opts ...Option) *Uploader {
	u := &Uploader{
		url:     constants.MetadataUploadURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(1), 2),
		now:     time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type uploadResponse struct {
	MetadataURI string `json:"metadataUri"`
}

// Upload submits info and returns its metadata URI. Every failure is an
// *types.UploadError matching types.ErrMetadataUploadFailed.
func (u *Uploader) Upload(ctx context.Context, info Info) (string, error) {
	if info.Name == "" || info.Symbol == "" {
		return "", &types.UploadError{Err: types.NewValidationError("name/symbol", "must not be empty")}
	}
	if u.limiter != nil {
		if err := u.limiter.Wait(ctx); err != nil {
			return "", &types.UploadError{Err: err}
		}
	}

	body, contentType, err := u.form(info)
	if err != nil {
		return "", &types.UploadError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, body)
	if err != nil {
		return "", &types.UploadError{Err: err}
	}
	req.Header.Set("Content-Type", contentType)

	start := u.now()
	resp, err := u.http.Do(req)
	if err != nil {
		return "", &types.UploadError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &types.UploadError{StatusCode: resp.StatusCode, Err: err}
	}
	u.log.Debug().
		Str("url", u.url).
		Int("status", resp.StatusCode).
		Dur("took", u.now().Sub(start)).
		Msg("metadata upload")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &types.UploadError{StatusCode: resp.StatusCode, Body: excerpt(raw)}
	}

	var out uploadResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &types.UploadError{StatusCode: resp.StatusCode, Body: excerpt(raw), Err: fmt.Errorf("decode response: %w", err)}
	}
	if out.MetadataURI == "" {
		return "", &types.UploadError{StatusCode: resp.StatusCode, Body: excerpt(raw), Err: fmt.Errorf("response has no metadataUri")}
	}
	return out.MetadataURI, nil
}

func (u *Uploader) form(info Info) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	name := fmt.Sprintf("image-%d.png", u.now().UnixMilli())
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
	h.Set("Content-Type", "image/png")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(info.Image); err != nil {
		return nil, "", err
	}

	fields := [][2]string{
		{"name", info.Name},
		{"symbol", info.Symbol},
		{"description", info.Description},
		{"twitter", info.Twitter},
		{"telegram", info.Telegram},
		{"website", info.Website},
		{"showName", strconv.FormatBool(!info.HideName)},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func excerpt(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}
