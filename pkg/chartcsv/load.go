package chartcsv

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/ukaji3/chartcsv-go/pkg/chartcsv/models"
	"github.com/ukaji3/chartcsv-go/pkg/chartcsv/parser"
)

// LoadOptions selects the chart to load from a definition file.
type LoadOptions struct {
	// Chart selects a chart of an xlsx workbook by name or by 0-based index
	// across all sheets. Empty selects the first chart.
	Chart string
}

// LoadChart loads a chart from a .json, .yaml/.yml or .xlsx file.
func LoadChart(path string, opts LoadOptions) (*models.Chart, error) {
	charts, err := LoadCharts(path)
	if err != nil {
		return nil, err
	}

	chart, err := selectChart(charts, opts.Chart)
	if err != nil {
		return nil, NewLoadError(path, err)
	}
	return chart, nil
}

// LoadCharts loads every chart from a definition file. JSON and YAML files
// hold exactly one chart.
func LoadCharts(path string) ([]models.Chart, error) {
	var charts []models.Chart

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		chart, err := decodeFile(path, json.Unmarshal)
		if err != nil {
			return nil, err
		}
		charts = append(charts, *chart)
	case ".yaml", ".yml":
		chart, err := decodeFile(path, yaml.Unmarshal)
		if err != nil {
			return nil, err
		}
		charts = append(charts, *chart)
	case ".xlsx", ".xlsm":
		bySheet, sheets, err := parser.ExtractCharts(path)
		if err != nil {
			return nil, NewLoadError(path, err)
		}
		for _, sheet := range sheets {
			charts = append(charts, bySheet[sheet]...)
		}
	default:
		return nil, NewLoadError(path, ErrUnsupportedFormat)
	}

	for i := range charts {
		charts[i].FillPieTotals()
	}
	return charts, nil
}

func decodeFile(path string, unmarshal func([]byte, interface{}) error) (*models.Chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewLoadError(path, err)
	}

	var chart models.Chart
	if err := unmarshal(data, &chart); err != nil {
		return nil, NewLoadError(path, fmt.Errorf("failed to decode: %w", err))
	}
	return &chart, nil
}

// selectChart picks a chart by name, then by index.
func selectChart(charts []models.Chart, sel string) (*models.Chart, error) {
	if len(charts) == 0 {
		return nil, ErrNoChart
	}
	if sel == "" {
		return &charts[0], nil
	}
	for i := range charts {
		if charts[i].Name == sel {
			return &charts[i], nil
		}
	}
	if idx, err := strconv.Atoi(sel); err == nil && idx >= 0 && idx < len(charts) {
		return &charts[idx], nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNoChart, sel)
}
