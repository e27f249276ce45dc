package widgets

import (
	"bytes"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// LoadWebViewSettings reads settings from a YAML file.
func LoadWebViewSettings(path string) (WebViewSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WebViewSettings{}, fmt.Errorf("read %s: %w", path, err)
	}
	settings, err := ParseWebViewSettings(data)
	if err != nil {
		return WebViewSettings{}, fmt.Errorf("%s: %w", path, err)
	}
	return settings, nil
}

// ParseWebViewSettings parses YAML settings. Unknown keys are rejected.
func ParseWebViewSettings(data []byte) (WebViewSettings, error) {
	var settings WebViewSettings
	if len(bytes.TrimSpace(data)) == 0 {
		return settings, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&settings); err != nil {
		return WebViewSettings{}, fmt.Errorf("parse web view settings: %w", err)
	}
	if err := settings.Source.Validate(); err != nil {
		return WebViewSettings{}, err
	}
	return settings, nil
}

// WebViewSettingsSchema returns the JSON schema of a settings file.
func WebViewSettingsSchema() *jsonschema.Schema {
	r := new(jsonschema.Reflector)
	r.FieldNameTag = "yaml"
	schema := r.Reflect(&WebViewSettings{})
	schema.Title = "BridgedWebView settings"
	schema.Description = "Settings for a bridged web view, as read by LoadWebViewSettings"
	return schema
}
