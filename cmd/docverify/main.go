package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docverify/internal/barcode"
	"github.com/ironsheep/docverify/internal/config"
	"github.com/ironsheep/docverify/internal/document"
	"github.com/ironsheep/docverify/internal/extraction"
	"github.com/ironsheep/docverify/internal/forensics"
	"github.com/ironsheep/docverify/internal/httpapi"
	"github.com/ironsheep/docverify/internal/location"
	"github.com/ironsheep/docverify/internal/logutils"
	"github.com/ironsheep/docverify/internal/metrics"
	"github.com/ironsheep/docverify/internal/ocr"
	"github.com/ironsheep/docverify/internal/scan"
	"github.com/ironsheep/docverify/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var log = logrus.StandardLogger()

func main() {
	config.Version, config.BuildTime, config.GitCommit = Version, BuildTime, GitCommit

	args, p, err := config.Parse(os.Args[1:])
	switch {
	case errors.Is(err, arg.ErrHelp):
		p.WriteHelp(os.Stdout)
		return
	case errors.Is(err, arg.ErrVersion):
		fmt.Println(config.Args{}.Version())
		return
	case err != nil && p != nil:
		p.Fail(err.Error())
	case err != nil:
		log.Fatalf("parse arguments: %v", err)
	}

	// stdout carries the MCP protocol and scan output
	logutils.SetOutput(os.Stderr)
	logutils.SetJSON(args.LogJSON)
	logutils.SetLoggerLevel(args.LogLevel)

	d, err := build(args)
	if err != nil {
		log.Fatalf("setup: %v", err)
	}

	switch {
	case args.Serve != nil:
		err = runServe(args.Serve, d)
	case args.MCP != nil:
		err = runMCP(d)
	case args.Scan != nil:
		err = runScan(args.Scan, d)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// deps is everything the commands share.
type deps struct {
	scanner *scan.Service
	engine  *forensics.Engine
	ocr     ocr.Info
	backend string
	remote  *barcode.Remote
	metrics *metrics.Metrics
}

func build(args *config.Args) (*deps, error) {
	table, err := locations(args.LocationsFile)
	if err != nil {
		return nil, err
	}

	d := &deps{backend: args.BarcodeBackend}
	var decoder barcode.Decoder
	switch args.BarcodeBackend {
	case config.BarcodeZXing:
		decoder = barcode.NewZXing()
	case config.BarcodeRemote, config.BarcodeChain:
		d.remote, err = barcode.NewRemote(args.BarcodeEndpoint)
		if err != nil {
			return nil, fmt.Errorf("barcode decoder: %w", err)
		}
		decoder = d.remote
		if args.BarcodeBackend == config.BarcodeChain {
			decoder = barcode.Chain{barcode.NewZXing(), d.remote}
		}
	}

	reader := ocr.NewTesseract(ocr.Config{
		Language:       args.OCRLanguage,
		TessdataPrefix: args.TessdataPrefix,
		MaxConcurrent:  args.OCRConcurrency,
	})
	d.ocr = reader.Info()
	if !d.ocr.Available {
		log.WithField("error", d.ocr.Error).Warn("OCR is unavailable, text-block documents cannot be read")
	}

	if args.Serve != nil {
		d.metrics = metrics.New(nil)
	}
	d.engine = forensics.NewEngine()
	d.scanner = scan.NewService(extraction.New(extraction.Config{
		Decoder:   decoder,
		Reader:    reader,
		Locations: table,
	}), d.engine, d.metrics)
	return d, nil
}

func locations(path string) (*location.Table, error) {
	if path == "" {
		return location.Default()
	}
	t, err := location.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("location table: %w", err)
	}
	log.WithField("path", path).WithField("entries", t.Len()).Info("loaded location table")
	return t, nil
}

func runServe(cmd *config.ServeCmd, d *deps) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := httpapi.Config{
		MaxPayloadBytes: cmd.MaxPayloadBytes,
		MaxAge:          cmd.MaxAge,
		MaxSkew:         cmd.MaxSkew,
		CORSOrigins:     cmd.CORSOrigins,
	}
	if d.remote != nil {
		cfg.Probes = map[string]httpapi.Probe{"barcode": d.remote.Healthz}
	}

	log.WithField("version", Version).Info("starting HTTP API")
	return httpapi.New(d.scanner, d.metrics, cfg).Run(ctx, cmd.ListenAddr)
}

func runMCP(d *deps) error {
	log.Debugf("docverify MCP server %s (built %s, commit %s)", Version, BuildTime, GitCommit)
	return server.New(server.Config{
		Scanner: d.scanner,
		Engine:  d.engine,
		OCR:     d.ocr,
		Barcode: d.backend,
		Version: Version,
	}).Run()
}

func runScan(cmd *config.ScanCmd, d *deps) error {
	t, err := document.ParseType(cmd.DocumentType)
	if err != nil {
		return err
	}
	primary, err := os.ReadFile(cmd.Image)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	var secondary []byte
	if cmd.SecondImage != "" {
		if secondary, err = os.ReadFile(cmd.SecondImage); err != nil {
			return fmt.Errorf("read second image: %w", err)
		}
	}

	res, err := d.scanner.ScanImages(context.Background(), primary, secondary, t)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	if cmd.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(res); err != nil {
		return err
	}
	if !res.Success {
		os.Exit(2)
	}
	return nil
}
