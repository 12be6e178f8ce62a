package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Export formats understood by EncodeExport and DecodeExport.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ExportDocument is the portable form of a set of configurations.
type ExportDocument struct {
	Version string            `json:"version" yaml:"version"`
	Configs []DashboardConfig `json:"configs" yaml:"configs"`
}

// EncodeExport renders configs as a versioned JSON or YAML document.
func EncodeExport(configs []DashboardConfig, format string) ([]byte, error) {
	doc := ExportDocument{Version: ManifestVersion, Configs: configs}
	if doc.Configs == nil {
		doc.Configs = []DashboardConfig{}
	}
	switch strings.ToLower(format) {
	case "", FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML, "yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("dashboard: encode export: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("dashboard: encode export: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("dashboard: unsupported export format %q", format)
	}
}

// DecodeExport reads an export document. JSON input may also be a bare
// array in the persisted collection layout.
func DecodeExport(data []byte) ([]DashboardConfig, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, newValidationError("import", "document is empty")
	}
	var doc ExportDocument
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &doc.Configs); err != nil {
			return nil, newValidationError("import", fmt.Sprintf("invalid JSON: %v", err))
		}
		return doc.Configs, nil
	case '{':
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, newValidationError("import", fmt.Sprintf("invalid JSON: %v", err))
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(trimmed))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, newValidationError("import", fmt.Sprintf("invalid YAML: %v", err))
		}
	}
	if doc.Version != "" && doc.Version != ManifestVersion {
		return nil, newValidationError("version", fmt.Sprintf("unsupported export version %q", doc.Version))
	}
	return doc.Configs, nil
}
