package barcode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	decodePath = "/api/v1/barcode"
	healthPath = "/healthz"

	// DefaultRemoteTimeout bounds one decode round trip.
	DefaultRemoteTimeout = 10 * time.Second
)

// Remote sends frames to an HTTP barcode decode service.
//
// The service receives the frame as image/png and answers with
//
//	{"symbols": [{"format": "PDF_417", "raw": "<base64>"}]}
//
// An empty symbols list means nothing was found.
type Remote struct {
	http     *http.Client
	endpoint *url.URL
}

type remoteResponse struct {
	Symbols []Symbol `json:"symbols"`
}

// NewRemote returns a client for the decode service at endpoint.
func NewRemote(endpoint string) (*Remote, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("scheme %q is not supported", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("endpoint %q has no host", endpoint)
	}
	return &Remote{
		endpoint: u,
		http:     &http.Client{Timeout: DefaultRemoteTimeout},
	}, nil
}

// SetTransport replaces the HTTP transport, for example to trust a private CA.
func (r *Remote) SetTransport(transport http.RoundTripper) {
	r.http.Transport = transport
}

// Decode implements Decoder. Transport failures and 5xx answers wrap
// ErrUnavailable.
func (r *Remote) Decode(ctx context.Context, img image.Image) ([]Symbol, error) {
	decodeURL, err := r.endpoint.Parse(decodePath)
	if err != nil {
		return nil, fmt.Errorf("unable to parse URL: %w", err)
	}

	var body bytes.Buffer
	if err := png.Encode(&body, img); err != nil {
		return nil, fmt.Errorf("unable to encode frame: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, decodeURL.String(), &body)
	if err != nil {
		return nil, fmt.Errorf("unable to create request: %w", err)
	}
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	res, err := r.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	log.WithField("status", res.StatusCode).
		WithField("elapsed", time.Since(start)).
		Debug("remote decode finished")

	switch {
	case res.StatusCode == http.StatusNotFound || res.StatusCode == http.StatusNoContent:
		return nil, ErrNotFound
	case res.StatusCode >= 500:
		return nil, fmt.Errorf("%w: unexpected status %s", ErrUnavailable, res.Status)
	case res.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("decode service rejected frame: %s: %s", res.Status, bytes.TrimSpace(msg))
	}

	var out remoteResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid decode response: %w", err)
	}

	symbols := out.Symbols[:0]
	for _, s := range out.Symbols {
		if len(s.Raw) > 0 {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		return nil, ErrNotFound
	}
	return symbols, nil
}

// Healthz reports whether the decode service answers its health endpoint.
func (r *Remote) Healthz(ctx context.Context) (bool, error) {
	healthURL, err := r.endpoint.Parse(healthPath)
	if err != nil {
		return false, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL.String(), nil)
	if err != nil {
		return false, err
	}
	res, err := r.http.Do(req)
	if err != nil {
		return false, errors.Join(ErrUnavailable, err)
	}
	defer res.Body.Close()
	return res.StatusCode == http.StatusOK, nil
}
