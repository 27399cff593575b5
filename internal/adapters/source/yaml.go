package source

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/plnevents/internal/domain/model"
)

// catalogFile is the CMS export layout.
type catalogFile struct {
	Events []model.Event `yaml:"events"`
}

// YAMLFile loads the CMS export from disk.
type YAMLFile struct {
	path string
}

// NewYAMLFile returns a loader for path.
func NewYAMLFile(path string) *YAMLFile {
	return &YAMLFile{path: path}
}

// Name implements Loader.
func (y *YAMLFile) Name() string { return "yaml" }

// Load implements Loader.
func (y *YAMLFile) Load(_ context.Context) ([]model.Event, error) {
	data, err := os.ReadFile(y.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", y.path, err)
	}
	return ParseYAML(data)
}

// ParseYAML decodes a catalog. Both `events: [...]` and a bare list are
// accepted. Events without a name or start date are rejected.
func ParseYAML(data []byte) ([]model.Event, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var (
		events []model.Event
		raws   []rawDates
	)
	if strings.HasPrefix(strings.TrimSpace(string(data)), "-") {
		if err := yaml.Unmarshal(data, &events); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
		if err := yaml.Unmarshal(data, &raws); err != nil {
			return nil, fmt.Errorf("decode catalog dates: %w", err)
		}
	} else {
		var f catalogFile
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
		events = f.Events

		var rf struct {
			Events []rawDates `yaml:"events"`
		}
		if err := yaml.Unmarshal(data, &rf); err != nil {
			return nil, fmt.Errorf("decode catalog dates: %w", err)
		}
		raws = rf.Events
	}
	for i := range events {
		if i < len(raws) {
			events[i].Floating = !hasOffset(raws[i].Start)
		}
	}

	for i, ev := range events {
		if strings.TrimSpace(ev.Name) == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrInvalidEvent, i)
		}
		if ev.Start.IsZero() {
			return nil, fmt.Errorf("%w: %q has no start date", ErrInvalidEvent, ev.Name)
		}
	}
	return events, nil
}

// Key identifies this file among loaders.
func (y *YAMLFile) Key() string { return "yaml:" + y.path }

// rawDates keeps the literal start date of an entry; yaml.v3 decodes
// offset-less timestamps as UTC, which would lose that they are local.
type rawDates struct {
	Start string `yaml:"startDate"`
}

// hasOffset reports whether a YAML timestamp names its own offset.
// "2026-03-01" and "2026-03-01T09:00:00" do not.
func hasOffset(v string) bool {
	v = strings.TrimSpace(v)
	if len(v) <= len(time.DateOnly) {
		return false
	}
	return strings.ContainsAny(v[len(time.DateOnly):], "Zz+-")
}
