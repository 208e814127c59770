package openapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewDocument_IsValid(t *testing.T) {
	doc := NewDocument()
	require.NoError(t, doc.Validate(context.Background()))

	assert.Equal(t, 5, doc.Paths.Len())
	for _, p := range []string{PathLists, PathList, PathListItems, PathItems, PathItem} {
		assert.NotNil(t, doc.Paths.Value(p), p)
	}
	assert.Nil(t, doc.Paths.Value(PathItems).Get, "items are only listed through their list")
}

func TestNewDocument_RoundTripsThroughLoader(t *testing.T) {
	data, err := MarshalJSON(NewDocument())
	require.NoError(t, err)

	loaded, err := openapi3.NewLoader().LoadFromData(data)
	require.NoError(t, err)
	require.NoError(t, loaded.Validate(context.Background()))

	item := loaded.Components.Schemas["Item"].Value
	require.NotNil(t, item)
	assert.ElementsMatch(t, []string{"title", "content", "dueDate", "listId"}, item.Required)
	assert.Equal(t, uint64(1000), *item.Properties["content"].Value.MaxLength)
}

func TestMarshalYAML(t *testing.T) {
	data, err := MarshalYAML(NewDocument())
	require.NoError(t, err)

	var tree map[string]any
	require.NoError(t, yaml.Unmarshal(data, &tree))
	assert.Equal(t, "3.0.3", tree["openapi"])
}

func TestHandlers(t *testing.T) {
	h, err := NewHandlers(NewDocument())
	require.NoError(t, err)

	t.Run("json", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.JSON(w, httptest.NewRequest(http.MethodGet, JSONPath, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		var doc map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.Contains(t, doc, "paths")
	})

	t.Run("yaml", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.YAML(w, httptest.NewRequest(http.MethodGet, YAMLPath, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "openapi: 3.0.3")
	})

	t.Run("ui points at the json document", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.UI(w, httptest.NewRequest(http.MethodGet, DocsPath, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), JSONPath)
		assert.Contains(t, w.Body.String(), "swagger-ui")
	})
}
