package openapi

import (
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Routes of the documentation endpoints.
const (
	DocsPath = "/swagger"
	JSONPath = DocsPath + "/" + Version + "/openapi.json"
	YAMLPath = DocsPath + "/" + Version + "/openapi.yaml"
)

// MarshalJSON renders doc as indented JSON.
func MarshalJSON(doc *openapi3.T) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal OpenAPI document: %w", err)
	}
	return data, nil
}

// MarshalYAML renders doc as YAML.
func MarshalYAML(doc *openapi3.T) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal OpenAPI document: %w", err)
	}

	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to convert OpenAPI document to YAML: %w", err)
	}
	out, err := yaml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to convert OpenAPI document to YAML: %w", err)
	}
	return out, nil
}

const swaggerPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>%s</title>
    <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: "%s",
                dom_id: '#swagger-ui',
                presets: [SwaggerUIBundle.presets.apis]
            });
        }
    </script>
</body>
</html>
`

// Handlers serves the document and the Swagger UI page. The document is
// rendered once up front.
type Handlers struct {
	json []byte
	yaml []byte
	ui   []byte
}

// NewHandlers renders doc for serving.
func NewHandlers(doc *openapi3.T) (*Handlers, error) {
	j, err := MarshalJSON(doc)
	if err != nil {
		return nil, err
	}
	y, err := MarshalYAML(doc)
	if err != nil {
		return nil, err
	}
	ui := fmt.Sprintf(swaggerPage, html.EscapeString(doc.Info.Title), JSONPath)
	return &Handlers{json: j, yaml: y, ui: []byte(ui)}, nil
}

// JSON serves the document as application/json.
func (h *Handlers) JSON(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, "application/json", h.json)
}

// YAML serves the document as application/yaml.
func (h *Handlers) YAML(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, "application/yaml", h.yaml)
}

// UI serves the Swagger UI page pointed at the JSON document.
func (h *Handlers) UI(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, "text/html; charset=utf-8", h.ui)
}

func (h *Handlers) write(w http.ResponseWriter, r *http.Request, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write API documentation", "error", err)
	}
}
