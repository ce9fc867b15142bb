package workflow

import (
	"context"
	"fmt"

	"github.com/aleksaelezovic/myna/internal/tabular"
	"github.com/aleksaelezovic/myna/pkg/mapping"
)

// MappingFile reads a CSV, TSV or XLSX mapping file when loaded
func MappingFile(path string) MappingSource {
	return MappingFunc(func(ctx context.Context) (*mapping.Table, mapping.Meta, error) {
		if err := ctx.Err(); err != nil {
			return nil, mapping.Meta{}, err
		}
		return LoadMappingFile(path)
	})
}

// LoadMappingFile decodes a mapping file into a table
func LoadMappingFile(path string) (*mapping.Table, mapping.Meta, error) {
	sheet, err := tabular.ReadFile(path)
	if err != nil {
		return nil, mapping.Meta{}, err
	}
	table, meta, err := sheet.Mapping()
	if err != nil {
		return nil, mapping.Meta{}, fmt.Errorf("%s: %w", path, err)
	}
	return table, meta, nil
}
