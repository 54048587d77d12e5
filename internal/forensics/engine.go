package forensics

import (
	"context"
	"fmt"
	"math"
	"runtime/debug"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/docverify/internal/document"
	"github.com/ironsheep/docverify/internal/imaging"
)

var log = logrus.StandardLogger().WithField("package", "forensics")

// Check names, in output order.
const (
	CheckCaptureMetadata      = "capture_metadata"
	CheckDocumentBoundary     = "document_boundary"
	CheckMoirePattern         = "moire_pattern"
	CheckReflectionComparison = "reflection_comparison"
)

// Input is what the checks look at.
type Input struct {
	Primary *imaging.Artifact
	// Secondary is optional.
	Secondary *imaging.Artifact
}

// Report is the outcome of all checks that ran.
type Report struct {
	// Checks holds one entry per check that ran, in fixed order.
	Checks []document.Check
	// Score is the weighted aggregate, 0 to 100.
	Score int
}

type check struct {
	name           string
	weight         float64
	needsSecondary bool
	run            func(ctx context.Context, in Input) document.Check
}

// Engine runs the forensic checks. It is stateless and safe for concurrent
// use.
type Engine struct {
	checks []check
}

// NewEngine returns an engine with the standard checks.
func NewEngine() *Engine {
	return &Engine{checks: []check{
		{name: CheckCaptureMetadata, weight: 0.25, run: metadataCheck},
		{name: CheckDocumentBoundary, weight: 0.30, run: boundaryCheck},
		{name: CheckMoirePattern, weight: 0.25, run: moireCheck},
		{name: CheckReflectionComparison, weight: 0.20, needsSecondary: true, run: reflectionCheck},
	}}
}

// CheckInfo describes one check of an engine.
type CheckInfo struct {
	Name           string
	Weight         float64
	NeedsSecondary bool
}

// Checks lists the engine's checks in output order.
func (e *Engine) Checks() []CheckInfo {
	out := make([]CheckInfo, len(e.checks))
	for i, c := range e.checks {
		out[i] = CheckInfo{Name: c.name, Weight: c.weight, NeedsSecondary: c.needsSecondary}
	}
	return out
}

// Evaluate runs every applicable check against in.
func (e *Engine) Evaluate(ctx context.Context, in Input) Report {
	if in.Primary == nil {
		return Report{Checks: []document.Check{}}
	}

	var applicable []check
	for _, c := range e.checks {
		if c.needsSecondary && in.Secondary == nil {
			continue
		}
		applicable = append(applicable, c)
	}

	results := make([]document.Check, len(applicable))
	var g errgroup.Group
	for i, c := range applicable {
		i, c := i, c
		g.Go(func() error {
			results[i] = runIsolated(ctx, c, in)
			return nil
		})
	}
	_ = g.Wait()

	var sum, weights float64
	for i, c := range applicable {
		sum += c.weight * float64(results[i].Score)
		weights += c.weight
	}
	score := 0
	if weights > 0 {
		score = document.ClampScore(int(math.Round(sum / weights)))
	}

	log.WithField("score", score).WithField("checks", len(results)).Debug("forensic evaluation finished")
	return Report{Checks: results, Score: score}
}

func runIsolated(ctx context.Context, c check, in Input) (result document.Check) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("check", c.name).
				WithField("panic", r).
				WithField("stack", string(debug.Stack())).
				Error("forensic check crashed")
			result = document.Check{
				Name:   c.name,
				Passed: false,
				Score:  0,
				Detail: fmt.Sprintf("internal error: %v", r),
			}
		}
	}()
	result = c.run(ctx, in)
	result.Name = c.name
	result.Score = document.ClampScore(result.Score)
	return result
}
