// Package config holds the command-line and environment configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
)

// Barcode backends.
const (
	BarcodeZXing  = "zxing"
	BarcodeRemote = "remote"
	// BarcodeChain tries the local decoder first and the remote one second.
	BarcodeChain = "chain"
)

// Version information, set by main from its ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Args is the full command line.
type Args struct {
	LogLevel string `arg:"--log-level,env:LOG_LEVEL" default:"info"`
	LogJSON  bool   `arg:"--log-json,env:LOG_JSON" help:"Log JSON lines instead of text"`

	OCRLanguage    string `arg:"--ocr-language,env:OCR_LANGUAGE" default:"eng" help:"Tesseract traineddata name"`
	TessdataPrefix string `arg:"--tessdata-prefix,env:TESSDATA_PREFIX" help:"Directory holding traineddata files"`
	OCRConcurrency int    `arg:"--ocr-concurrency,env:OCR_CONCURRENCY" default:"2" help:"Simultaneous OCR recognitions"`

	BarcodeBackend  string `arg:"--barcode-backend,env:BARCODE_BACKEND" default:"zxing" help:"zxing, remote or chain"`
	BarcodeEndpoint string `arg:"--barcode-endpoint,env:BARCODE_ENDPOINT" help:"Base URL of the remote barcode decoder"`

	LocationsFile string `arg:"--locations-file,env:LOCATIONS_FILE" help:"YAML place-of-issue table replacing the built-in one"`

	Serve *ServeCmd `arg:"subcommand:serve" help:"Run the HTTP API"`
	MCP   *MCPCmd   `arg:"subcommand:mcp" help:"Run the MCP server on stdin/stdout"`
	Scan  *ScanCmd  `arg:"subcommand:scan" help:"Scan image files and print the result"`
}

// ServeCmd configures the HTTP API.
type ServeCmd struct {
	ListenAddr      string        `arg:"-L,--listen-addr,env:LISTEN_ADDR" default:"127.0.0.1:8085"`
	MaxPayloadBytes int64         `arg:"--max-payload-bytes,env:MAX_PAYLOAD_BYTES" default:"20971520" help:"Largest accepted request body"`
	MaxAge          time.Duration `arg:"--max-request-age,env:MAX_REQUEST_AGE" default:"5m" help:"Oldest accepted requestTime"`
	MaxSkew         time.Duration `arg:"--max-clock-skew,env:MAX_CLOCK_SKEW" default:"1m" help:"Furthest accepted requestTime in the future"`
	CORSOrigins     []string      `arg:"--cors-origin,env:CORS_ORIGINS" help:"Allowed CORS origins; all when empty"`
}

// MCPCmd configures the MCP server.
type MCPCmd struct{}

// ScanCmd configures a one-off scan.
type ScanCmd struct {
	Image        string `arg:"positional,required" help:"Image file"`
	SecondImage  string `arg:"--second" help:"Second frame of the same document"`
	DocumentType string `arg:"-t,--type,required" help:"cedula_legacy, cedula_digital or foreign_id"`
	Pretty       bool   `arg:"--pretty" help:"Indent the JSON output"`
}

// Version implements arg.Versioned.
func (Args) Version() string {
	return fmt.Sprintf("docverify %s (built %s, commit %s)", Version, BuildTime, GitCommit)
}

// Description implements arg.Described.
func (Args) Description() string {
	return "docverify - extracts identity data from ID document photos and scores their authenticity"
}

// Parse parses argv (without the program name). Environment variables are
// read as well.
func Parse(argv []string) (*Args, *arg.Parser, error) {
	var args Args
	p, err := arg.NewParser(arg.Config{Program: "docverify"}, &args)
	if err != nil {
		return nil, nil, err
	}
	if err := p.Parse(argv); err != nil {
		return nil, p, err
	}
	if err := args.Validate(); err != nil {
		return nil, p, err
	}
	return &args, p, nil
}

// Validate checks values that go-arg cannot.
func (a *Args) Validate() error {
	if a.Serve == nil && a.MCP == nil && a.Scan == nil {
		return errors.New("a command is required: serve, mcp or scan")
	}

	a.BarcodeBackend = strings.ToLower(strings.TrimSpace(a.BarcodeBackend))
	switch a.BarcodeBackend {
	case BarcodeZXing:
	case BarcodeRemote, BarcodeChain:
		if a.BarcodeEndpoint == "" {
			return fmt.Errorf("--barcode-endpoint is required for the %s backend", a.BarcodeBackend)
		}
		u, err := url.Parse(a.BarcodeEndpoint)
		if err != nil || u.Host == "" {
			return fmt.Errorf("invalid barcode endpoint %q", a.BarcodeEndpoint)
		}
	default:
		return fmt.Errorf("unknown barcode backend %q", a.BarcodeBackend)
	}

	if a.OCRConcurrency < 1 {
		return fmt.Errorf("--ocr-concurrency must be at least 1, got %d", a.OCRConcurrency)
	}

	if s := a.Serve; s != nil {
		if s.MaxPayloadBytes <= 0 {
			return fmt.Errorf("--max-payload-bytes must be positive, got %d", s.MaxPayloadBytes)
		}
		if s.MaxAge <= 0 || s.MaxSkew < 0 {
			return errors.New("request age window must be positive")
		}
	}
	return nil
}
