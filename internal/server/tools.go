package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var documentTypeSchema = map[string]interface{}{
	"type":        "string",
	"enum":        []string{"cedula_legacy", "cedula_digital", "foreign_id"},
	"description": "cedula_legacy reads the barcode on the back; cedula_digital and foreign_id read the machine-readable zone",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "document_scan",
			Description: "Extract identity data from a photo of an ID document and score how likely the photo shows a genuine physical card. Supply a second photo of the same card tilted differently to enable the reflection check.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"second_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional absolute path to a second frame of the same document",
					},
					"document_type": documentTypeSchema,
				},
				"required": []string{"path", "document_type"},
			},
		},
		{
			Name:        "document_parse_mrz",
			Description: "Parse the three 30-character lines of a TD1 machine-readable zone and report the decoded fields and which check digits match.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Zone text, lines separated by newlines. OCR noise around the zone is tolerated.",
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "image_forensics",
			Description: "Run the authenticity checks (capture metadata, document boundary, moire pattern and, with a second frame, reflection movement) without extracting any data.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"second_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional absolute path to a second frame of the same document",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "capabilities",
			Description: "Report supported document types, the OCR and barcode backends of this build and the forensic checks with their weights.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
