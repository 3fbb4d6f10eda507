// Package datafile reads per-category yearly content from JSON or YAML files keyed by day-of-year.
package datafile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"oftheday_display/internal/domain/ofday"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a data file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from the file extension; anything unknown is read as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

type entry struct {
	Title       string `json:"title" yaml:"title"`
	Subtitle    string `json:"subtitle" yaml:"subtitle"`
	Description string `json:"description" yaml:"description"`
}

// FileSource implements ofday.ContentSource over one data file.
type FileSource struct {
	category string
	path     string
	logger   *logrus.Entry
}

var _ ofday.ContentSource = (*FileSource)(nil)

func NewFileSource(category, path string, logger *logrus.Entry) *FileSource {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &FileSource{
		category: category,
		path:     path,
		logger:   logger.WithFields(logrus.Fields{"component": "datafile", "category": category}),
	}
}

// Path is the file this source reads.
func (f *FileSource) Path() string {
	return f.path
}

// Load reads and parses the whole file.
func (f *FileSource) Load(ctx context.Context) (ofday.Yearly, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ofday.DataSourceError{Category: f.category, Err: err}
	}

	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, &ofday.DataSourceError{Category: f.category, Err: fmt.Errorf("read %s: %w", f.path, err)}
	}

	yearly, warnings, err := Parse(raw, FormatFor(f.path))
	if err != nil {
		return nil, &ofday.DataSourceError{Category: f.category, Err: fmt.Errorf("parse %s: %w", f.path, err)}
	}
	for _, w := range warnings {
		f.logger.Warn(w)
	}
	return yearly, nil
}

// Parse decodes a day-of-year mapping. The top level must be a mapping whose keys are integers;
// keys outside 1..366 and entries without a title are dropped and reported as warnings.
func Parse(raw []byte, format Format) (ofday.Yearly, []string, error) {
	var byKey map[string]entry
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(raw, &byKey)
	default:
		err = json.Unmarshal(raw, &byKey)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("not a mapping of day to record: %w", err)
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	yearly := make(ofday.Yearly, len(byKey))
	var warnings []string
	for _, k := range keys {
		day, convErr := strconv.Atoi(strings.TrimSpace(k))
		if convErr != nil {
			return nil, nil, fmt.Errorf("key %q is not a day-of-year number", k)
		}
		if !ofday.ValidDay(day) {
			warnings = append(warnings, fmt.Sprintf("ignoring day %d: outside %d..%d", day, ofday.MinDayOfYear, ofday.MaxDayOfYear))
			continue
		}
		e := byKey[k]
		if strings.TrimSpace(e.Title) == "" {
			warnings = append(warnings, fmt.Sprintf("ignoring day %d: record has no title", day))
			continue
		}
		yearly[day] = ofday.Record{
			Title:       e.Title,
			Subtitle:    e.Subtitle,
			Description: e.Description,
		}
	}
	return yearly, warnings, nil
}

// ResolvePath makes a relative data_file path relative to the directory of the config file.
func ResolvePath(configPath, dataFile string) string {
	if dataFile == "" || filepath.IsAbs(dataFile) {
		return dataFile
	}
	return filepath.Join(filepath.Dir(configPath), dataFile)
}
