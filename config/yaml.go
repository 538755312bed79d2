package config

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a schedule document. KnownFields is enabled so a
// misspelled or unrecognized key fails decoding instead of being silently
// dropped.
func ParseYAML(data []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := applyDefaults(&doc); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &doc, nil
}
