package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ironsheep/docverify/internal/document"
	"github.com/ironsheep/docverify/internal/imaging"
	"github.com/ironsheep/docverify/internal/scan"
)

// Rejection reasons, used as the metrics label and the error code.
const (
	reasonInvalidRequest = "invalid_request"
	reasonTooLarge       = "payload_too_large"
	reasonStale          = "stale_request"
	reasonFuture         = "future_request"
	reasonUnknownType    = "unknown_document_type"
	reasonUndecodable    = "undecodable_image"
	reasonResolution     = "resolution_too_small"
	reasonInternal       = "internal_error"
)

// Caller-facing messages. Wrapped errors stay in the log.
var (
	msgUnknownType = fmt.Sprintf("documentType must be one of: %s", typeList())
	msgUndecodable = "image could not be decoded; send a base64 encoded JPEG, PNG, GIF, WebP or BMP"
	msgResolution  = fmt.Sprintf("image is too small; capture the card at %dx%d or larger", imaging.MinWidth, imaging.MinHeight)
)

var internalServerError = gin.H{
	"error": "internal server error",
}

// ScanRequest is the body of POST /api/v1/scan.
type ScanRequest struct {
	// Image is the base64 encoded frame.
	Image string `json:"image" binding:"required"`
	// SecondImage is an optional second frame at a different tilt.
	SecondImage  string `json:"secondImage"`
	DocumentType string `json:"documentType" binding:"required"`
	// RequestTime is when the client captured the frames, RFC 3339.
	RequestTime time.Time `json:"requestTime"`
}

func (s *Server) handleScan(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxPayloadBytes)

	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.reject(c, http.StatusRequestEntityTooLarge, reasonTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", s.cfg.MaxPayloadBytes))
			return
		}
		log.WithError(err).Debug("invalid scan request")
		s.reject(c, http.StatusBadRequest, reasonInvalidRequest, "request body is not a valid scan request")
		return
	}
	if req.RequestTime.IsZero() {
		s.reject(c, http.StatusBadRequest, reasonInvalidRequest, "requestTime is required")
		return
	}

	if reason, msg := s.checkFreshness(req.RequestTime); reason != "" {
		s.reject(c, http.StatusBadRequest, reason, msg)
		return
	}

	t, err := document.ParseType(req.DocumentType)
	if err != nil {
		s.scanFailed(c, err)
		return
	}

	result, err := s.scanner.Scan(c.Request.Context(), scan.Request{
		Primary:      req.Image,
		Secondary:    req.SecondImage,
		DocumentType: t,
	})
	if err != nil {
		s.scanFailed(c, err)
		return
	}

	setTiming(c)
	c.JSON(http.StatusOK, result)
}

// checkFreshness returns a rejection reason and message when t lies outside
// [now-MaxAge, now+MaxSkew].
func (s *Server) checkFreshness(t time.Time) (string, string) {
	now := s.cfg.Now()
	switch {
	case t.Before(now.Add(-s.cfg.MaxAge)):
		return reasonStale, fmt.Sprintf("requestTime is older than %s", s.cfg.MaxAge)
	case t.After(now.Add(s.cfg.MaxSkew)):
		return reasonFuture, fmt.Sprintf("requestTime is more than %s in the future", s.cfg.MaxSkew)
	}
	return "", ""
}

func (s *Server) scanFailed(c *gin.Context, err error) {
	entry := log.WithField("requestId", c.GetString(requestIDKey)).WithError(err)
	switch {
	case errors.Is(err, document.ErrResolutionTooSmall):
		entry.Debug("image below minimum resolution")
		s.reject(c, http.StatusUnprocessableEntity, reasonResolution, msgResolution)
	case errors.Is(err, document.ErrDecode):
		entry.Debug("image not decodable")
		s.reject(c, http.StatusBadRequest, reasonUndecodable, msgUndecodable)
	case errors.Is(err, document.ErrUnknownDocumentType):
		entry.Debug("unknown document type")
		s.reject(c, http.StatusBadRequest, reasonUnknownType, msgUnknownType)
	default:
		entry.Error("scan failed")
		s.metrics.IncrementRejected(reasonInternal)
		setTiming(c)
		c.JSON(http.StatusInternalServerError, internalServerError)
	}
}

func typeList() string {
	types := document.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func (s *Server) reject(c *gin.Context, status int, reason, msg string) {
	s.metrics.IncrementRejected(reason)
	setTiming(c)
	c.JSON(status, gin.H{
		"error": msg,
		"code":  reason,
	})
}

// setTiming writes the Server-Timing header. It must run before the body.
func setTiming(c *gin.Context) {
	start, ok := c.Get(startKey)
	if !ok {
		return
	}
	t, ok := start.(time.Time)
	if !ok {
		return
	}
	ms := float64(time.Since(t).Microseconds()) / 1000
	c.Header("Server-Timing", fmt.Sprintf("total;dur=%.1f", ms))
}
