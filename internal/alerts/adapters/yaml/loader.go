// Package yaml loads alert definitions from YAML files:
//
//	alerts:
//	  - name: blog-traffic-drop
//	    domain: example.com
//	    interval: 5m
//	    window: 1h
//	    property: page
//	    metric: views
//	    match: {glob: "/blog/*"}
//	    condition: {op: below, threshold: 10}
//	    webhook: https://hooks.example.com/analytics
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	yamlv3 "gopkg.in/yaml.v3"

	"site-analytics-service/internal/alerts/core/domain"
)

type File struct {
	Alerts []Definition `yaml:"alerts"`
}

type Definition struct {
	Name      string    `yaml:"name"`
	Domain    string    `yaml:"domain"`
	Interval  string    `yaml:"interval"`
	Window    string    `yaml:"window"`
	Property  string    `yaml:"property,omitempty"`
	Metric    string    `yaml:"metric"`
	Match     Match     `yaml:"match,omitempty"`
	Condition Condition `yaml:"condition"`
	Webhook   string    `yaml:"webhook,omitempty"`
}

type Match struct {
	Exact string `yaml:"exact,omitempty"`
	Re    string `yaml:"re,omitempty"`
	Glob  string `yaml:"glob,omitempty"`
}

type Condition struct {
	Op        string  `yaml:"op"`
	Threshold float64 `yaml:"threshold"`
}

// LoadFile reads the definitions in path.
func LoadFile(path string) ([]domain.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alerts file: %w", err)
	}
	defs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// Parse decodes a definitions document. Unknown keys are rejected so that
// typos do not silently disable part of an alert.
func Parse(data []byte) ([]domain.Definition, error) {
	dec := yamlv3.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidDefinition, err)
	}

	out := make([]domain.Definition, 0, len(f.Alerts))
	for _, d := range f.Alerts {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Marshal renders defs in the file format.
func Marshal(defs []domain.Definition) ([]byte, error) {
	f := File{Alerts: make([]Definition, 0, len(defs))}
	for _, d := range defs {
		f.Alerts = append(f.Alerts, fromDomain(d))
	}
	return yamlv3.Marshal(f)
}

func (d Definition) toDomain() domain.Definition {
	return domain.Definition{
		Name:      d.Name,
		Domain:    d.Domain,
		Interval:  d.Interval,
		Window:    d.Window,
		Property:  d.Property,
		Metric:    d.Metric,
		Match:     domain.Match{Exact: d.Match.Exact, Re: d.Match.Re, Glob: d.Match.Glob},
		Condition: domain.Condition{Op: domain.Op(d.Condition.Op), Threshold: d.Condition.Threshold},
		Webhook:   d.Webhook,
	}
}

func fromDomain(d domain.Definition) Definition {
	return Definition{
		Name:      d.Name,
		Domain:    d.Domain,
		Interval:  d.Interval,
		Window:    d.Window,
		Property:  d.Property,
		Metric:    d.Metric,
		Match:     Match{Exact: d.Match.Exact, Re: d.Match.Re, Glob: d.Match.Glob},
		Condition: Condition{Op: string(d.Condition.Op), Threshold: d.Condition.Threshold},
		Webhook:   d.Webhook,
	}
}
