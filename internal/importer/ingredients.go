// Package importer reads catalogue fixtures shipped with the service.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pageza/foodgram/backend/internal/models"
)

// ReadIngredients parses headerless CSV rows of the form name,measurement_unit.
// Blank lines and repeated (name, unit) pairs are skipped.
func ReadIngredients(r io.Reader) ([]models.Ingredient, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	seen := make(map[[2]string]struct{})
	var out []models.Ingredient
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ingredients: %w", err)
		}
		line, _ := reader.FieldPos(0)

		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) != 2 {
			return nil, fmt.Errorf("line %d: expected 2 fields, got %d", line, len(record))
		}

		name := strings.TrimSpace(record[0])
		unit := strings.TrimSpace(record[1])
		if name == "" || unit == "" {
			return nil, fmt.Errorf("line %d: name and measurement unit are required", line)
		}

		key := [2]string{name, unit}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, models.Ingredient{Name: name, MeasurementUnit: unit})
	}
	return out, nil
}
