package repository

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/noah-isme/remui-admin-api/internal/models"
)

const seedSchema = `{
  "type": "object",
  "required": ["collections"],
  "properties": {
    "collections": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["id"],
          "properties": {"id": {"type": "integer", "minimum": 1}},
          "additionalProperties": {"type": ["string", "number", "boolean", "null"]}
        }
      }
    }
  }
}`

type seedFile struct {
	Collections map[string][]map[string]interface{} `json:"collections"`
}

// SeedError lists schema violations of a seed document.
type SeedError struct {
	Problems []string
}

func (e *SeedError) Error() string {
	return "invalid seed: " + strings.Join(e.Problems, "; ")
}

// LoadSeedFile reads and validates a memory store seed from disk.
func LoadSeedFile(path string) (map[string][]models.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	return ParseSeed(raw)
}

// ParseSeed validates a seed document and converts it into records. Whole
// JSON numbers become int64 so timestamps and flags compare as integers.
func ParseSeed(raw []byte) (map[string][]models.Record, error) {
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(seedSchema), gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validate seed: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return nil, &SeedError{Problems: problems}
	}

	var doc seedFile
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	out := make(map[string][]models.Record, len(doc.Collections))
	for name, rows := range doc.Collections {
		records := make([]models.Record, len(rows))
		for i, row := range rows {
			rec := make(models.Record, len(row))
			for k, v := range row {
				if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
					rec[k] = int64(f)
					continue
				}
				rec[k] = v
			}
			records[i] = rec
		}
		out[name] = records
	}
	return out, nil
}
