package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ironsheep/docverify/internal/document"
	"github.com/ironsheep/docverify/internal/extraction"
	"github.com/ironsheep/docverify/internal/forensics"
	"github.com/ironsheep/docverify/internal/imaging"
	"github.com/ironsheep/docverify/internal/mrz"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "document_scan").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(context.Background(), params.Name, params.Arguments)
	if err != nil {
		log.WithField("tool", params.Name).WithError(err).Debug("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "document_scan":
		return s.handleDocumentScan(ctx, args)
	case "document_parse_mrz":
		return s.handleParseMRZ(args)
	case "image_forensics":
		return s.handleImageForensics(ctx, args)
	case "capabilities":
		return s.handleCapabilities()
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = []byte("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// === Document Handlers ===

type documentScanArgs struct {
	Path         string `json:"path"`
	SecondPath   string `json:"second_path"`
	DocumentType string `json:"document_type"`
}

func (s *Server) handleDocumentScan(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a documentScanArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if s.cfg.Scanner == nil {
		return nil, errors.New("scanning is not configured")
	}
	t, err := document.ParseType(a.DocumentType)
	if err != nil {
		return nil, err
	}
	primary, err := readImage(a.Path)
	if err != nil {
		return nil, err
	}
	var secondary []byte
	if a.SecondPath != "" {
		// An unreadable second frame is dropped like an undecodable one.
		secondary, err = readImage(a.SecondPath)
		if err != nil {
			log.WithError(err).Info("ignoring unreadable second frame")
			secondary = nil
		}
	}
	return s.cfg.Scanner.ScanImages(ctx, primary, secondary, t)
}

type parseMRZArgs struct {
	Text string `json:"text"`
}

type parseMRZResult struct {
	Record *document.IdentityRecord `json:"record"`
	Checks map[string]bool          `json:"checkDigits"`
	Lines  []string                 `json:"lines"`
}

func (s *Server) handleParseMRZ(args json.RawMessage) (interface{}, error) {
	var a parseMRZArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if strings.TrimSpace(a.Text) == "" {
		return nil, errors.New("text is required")
	}

	lines := mrz.FindLines(a.Text)
	if len(lines) != 3 {
		lines = mrz.Normalize(a.Text)
	}
	zone := strings.Join(lines, "\n")

	rec, err := s.zone.Parse(zone)
	if err != nil {
		return nil, err
	}
	fields, err := mrz.Split(zone)
	if err != nil {
		return nil, err
	}
	c := fields.Verify()
	return &parseMRZResult{
		Record: rec,
		Lines:  lines,
		Checks: map[string]bool{
			"documentNumber": c.Number,
			"birthDate":      c.Birth,
			"expiryDate":     c.Expiry,
			"composite":      c.Composite,
		},
	}, nil
}

type imageForensicsArgs struct {
	Path       string `json:"path"`
	SecondPath string `json:"second_path"`
}

type imageForensicsResult struct {
	Image       imaging.Info     `json:"image"`
	SecondImage *imaging.Info    `json:"secondImage,omitempty"`
	Score       int              `json:"authenticityScore"`
	Checks      []document.Check `json:"checks"`
}

func (s *Server) handleImageForensics(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageForensicsArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if s.cfg.Engine == nil {
		return nil, errors.New("forensics is not configured")
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	primary, err := imaging.LoadFile(a.Path)
	if err != nil {
		return nil, err
	}
	in := forensics.Input{Primary: primary}
	res := &imageForensicsResult{Image: primary.Info()}
	if a.SecondPath != "" {
		if second, err := imaging.LoadFile(a.SecondPath); err == nil {
			in.Secondary = second
			info := second.Info()
			res.SecondImage = &info
		} else {
			log.WithError(err).Info("ignoring unusable second frame")
		}
	}
	report := s.cfg.Engine.Evaluate(ctx, in)
	res.Score = report.Score
	res.Checks = report.Checks
	return res, nil
}

// === Capability Handler ===

type documentTypeInfo struct {
	Type   document.Type     `json:"type"`
	Family document.Family   `json:"family"`
	Method extraction.Method `json:"method"`
}

type forensicCheckInfo struct {
	Name           string  `json:"name"`
	Weight         float64 `json:"weight"`
	NeedsSecondary bool    `json:"needsSecondFrame"`
}

func (s *Server) handleCapabilities() (interface{}, error) {
	var types []documentTypeInfo
	for _, t := range document.Types() {
		f, err := t.Family()
		if err != nil {
			return nil, err
		}
		types = append(types, documentTypeInfo{Type: t, Family: f, Method: extraction.MethodFor(f)})
	}
	var checks []forensicCheckInfo
	engine := s.cfg.Engine
	if engine == nil {
		engine = forensics.NewEngine()
	}
	for _, c := range engine.Checks() {
		checks = append(checks, forensicCheckInfo{Name: c.Name, Weight: c.Weight, NeedsSecondary: c.NeedsSecondary})
	}
	return map[string]interface{}{
		"version":        s.cfg.Version,
		"documentTypes":  types,
		"ocr":            s.cfg.OCR,
		"barcode":        s.cfg.Barcode,
		"forensicChecks": checks,
		"minResolution": map[string]int{
			"width":  imaging.MinWidth,
			"height": imaging.MinHeight,
		},
	}, nil
}

func readImage(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return data, nil
}
