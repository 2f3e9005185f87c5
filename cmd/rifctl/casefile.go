package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rif-protocol-server/internal/domain"
)

// caseBatch is the file layout read by the batch command.
type caseBatch struct {
	Cases []domain.InputSnapshot `json:"cases" yaml:"cases"`
}

// decodeFile reads a YAML or JSON file into v. JSON is chosen by the .json
// extension; everything else is read as YAML. Unknown fields are rejected.
func decodeFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func loadCase(path string) (domain.InputSnapshot, error) {
	var snapshot domain.InputSnapshot
	err := decodeFile(path, &snapshot)
	return snapshot, err
}

func loadBatch(path string) ([]domain.InputSnapshot, error) {
	var batch caseBatch
	if err := decodeFile(path, &batch); err != nil {
		return nil, err
	}
	if len(batch.Cases) == 0 {
		return nil, fmt.Errorf("%s holds no cases", path)
	}
	return batch.Cases, nil
}
