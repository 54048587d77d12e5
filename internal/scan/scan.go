package scan

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/docverify/internal/document"
	"github.com/ironsheep/docverify/internal/extraction"
	"github.com/ironsheep/docverify/internal/forensics"
	"github.com/ironsheep/docverify/internal/imaging"
	"github.com/ironsheep/docverify/internal/metrics"
)

var log = logrus.StandardLogger().WithField("package", "scan")

// Request is a scan request with base64 payloads.
type Request struct {
	// Primary is the base64 encoded frame to extract from.
	Primary string `json:"image"`
	// Secondary is an optional second frame of the same document at a
	// different tilt.
	Secondary    string        `json:"secondImage,omitempty"`
	DocumentType document.Type `json:"documentType"`
}

// Result is the outcome of a scan.
type Result struct {
	Success           bool                     `json:"success"`
	Data              *document.IdentityRecord `json:"data,omitempty"`
	AuthenticityScore int                      `json:"authenticityScore"`
	Checks            []document.Check         `json:"checks"`
	Error             string                   `json:"error,omitempty"`
	Method            extraction.Method        `json:"method"`
	ProcessingTimeMs  int64                    `json:"processingTimeMs"`
}

// Service runs scans. It is safe for concurrent use.
type Service struct {
	extractor *extraction.Extractor
	engine    *forensics.Engine
	metrics   *metrics.Metrics
}

// NewService returns a Service. m may be nil.
func NewService(extractor *extraction.Extractor, engine *forensics.Engine, m *metrics.Metrics) *Service {
	return &Service{extractor: extractor, engine: engine, metrics: m}
}

// Scan decodes the request payloads and scans them.
func (s *Service) Scan(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	if _, err := req.DocumentType.Family(); err != nil {
		return nil, err
	}
	primary, err := imaging.DecodePayload(req.Primary)
	if err != nil {
		return nil, fmt.Errorf("primary image: %w", err)
	}
	var secondary *imaging.Artifact
	if req.Secondary != "" {
		secondary = decodeSecondary(func() (*imaging.Artifact, error) {
			return imaging.DecodePayload(req.Secondary)
		})
	}
	return s.run(ctx, start, primary, secondary, req.DocumentType)
}

// ScanImages scans encoded image bytes. secondary may be nil.
func (s *Service) ScanImages(ctx context.Context, primary, secondary []byte, t document.Type) (*Result, error) {
	start := time.Now()
	if _, err := t.Family(); err != nil {
		return nil, err
	}
	art, err := imaging.Decode(primary)
	if err != nil {
		return nil, fmt.Errorf("primary image: %w", err)
	}
	var second *imaging.Artifact
	if len(secondary) > 0 {
		second = decodeSecondary(func() (*imaging.Artifact, error) {
			return imaging.Decode(secondary)
		})
	}
	return s.run(ctx, start, art, second, t)
}

func recoverStage(stage string, err *error) {
	if r := recover(); r != nil {
		log.WithField("stage", stage).
			WithField("panic", r).
			WithField("stack", string(debug.Stack())).
			Error("scan stage crashed")
		*err = fmt.Errorf("%w: %s: %v", document.ErrInternal, stage, r)
	}
}

// decodeSecondary logs and drops a second frame that does not decode.
func decodeSecondary(decode func() (*imaging.Artifact, error)) *imaging.Artifact {
	art, err := decode()
	if err != nil {
		log.WithError(err).Info("ignoring undecodable second frame")
		return nil
	}
	return art
}

func (s *Service) run(ctx context.Context, start time.Time, primary, secondary *imaging.Artifact, t document.Type) (*Result, error) {
	var (
		outcome extraction.Outcome
		report  forensics.Report
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer recoverStage("extraction", &err)
		stageStart := time.Now()
		outcome = s.extractor.Extract(gctx, primary, t)
		s.metrics.ObserveStage("extraction", time.Since(stageStart))
		return nil
	})
	g.Go(func() (err error) {
		defer recoverStage("forensics", &err)
		stageStart := time.Now()
		report = s.engine.Evaluate(gctx, forensics.Input{Primary: primary, Secondary: secondary})
		s.metrics.ObserveStage("forensics", time.Since(stageStart))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := assemble(outcome, report)
	result.ProcessingTimeMs = time.Since(start).Milliseconds()

	s.metrics.ObserveStage("total", time.Since(start))
	s.metrics.ObserveScan(string(outcome.Method), result.Success, result.AuthenticityScore)
	for _, c := range result.Checks {
		s.metrics.ObserveCheck(c.Name, c.Passed)
	}

	entry := log.WithFields(logrus.Fields{
		"method":    outcome.Method,
		"success":   result.Success,
		"score":     result.AuthenticityScore,
		"elapsedMs": result.ProcessingTimeMs,
	})
	if result.Data != nil {
		entry = entry.WithField("number", result.Data.MaskedNumber())
	}
	entry.Info("scan finished")
	return result, nil
}

// assemble builds a Result from the two stage outputs. It does not touch
// ProcessingTimeMs.
func assemble(outcome extraction.Outcome, report forensics.Report) *Result {
	checks := report.Checks
	if checks == nil {
		checks = []document.Check{}
	}
	res := &Result{
		Method: outcome.Method,
		Checks: checks,
	}
	if outcome.Record == nil {
		res.AuthenticityScore = report.Score
		res.Error = outcome.Hint
		if res.Error == "" {
			res.Error = "The document could not be read."
		}
		return res
	}
	if err := outcome.Record.Validate(); err != nil {
		log.WithError(err).Error("extracted record is invalid")
		res.AuthenticityScore = report.Score
		res.Error = "The document could not be read."
		return res
	}
	conf := outcome.Record.Confidence
	res.Success = true
	res.Data = outcome.Record
	res.AuthenticityScore = Combine(&conf, report.Score)
	return res
}
