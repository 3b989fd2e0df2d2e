package memory

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"site-analytics-service/internal/query/core/domain"
)

// SeedFile is the on-disk layout of demo events. JSON is accepted as well.
type SeedFile struct {
	Events []SeedEvent `yaml:"events"`
}

type SeedEvent struct {
	// Timestamp is RFC 3339.
	Timestamp string `yaml:"timestamp"`
	Domain    string `yaml:"domain"`
	Visitor   string `yaml:"visitor"`
	Session   string `yaml:"session"`
	Name      string `yaml:"name"`
	View      bool   `yaml:"view"`

	Page        string `yaml:"page"`
	EntryPage   string `yaml:"entry_page"`
	ExitPage    string `yaml:"exit_page"`
	Referrer    string `yaml:"referrer"`
	Source      string `yaml:"source"`
	UtmSource   string `yaml:"utm_source"`
	UtmMedium   string `yaml:"utm_medium"`
	UtmCampaign string `yaml:"utm_campaign"`
	UtmContent  string `yaml:"utm_content"`
	UtmTerm     string `yaml:"utm_term"`
	Browser     string `yaml:"browser"`
	OS          string `yaml:"os"`
	Device      string `yaml:"device"`
	Country     string `yaml:"country"`
	Region      string `yaml:"region"`
	City        string `yaml:"city"`
}

// LoadFile reads a seed file into a new Store.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	events, err := ParseSeed(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewStore(events...), nil
}

func ParseSeed(data []byte) ([]domain.Event, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f SeedFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}

	events := make([]domain.Event, 0, len(f.Events))
	for i, se := range f.Events {
		ts, err := time.Parse(time.RFC3339Nano, se.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("event %d: invalid timestamp %q: %w", i, se.Timestamp, err)
		}
		events = append(events, domain.Event{
			Timestamp:   ts,
			Domain:      se.Domain,
			VisitorID:   se.Visitor,
			SessionID:   se.Session,
			Name:        se.Name,
			View:        se.View,
			Page:        se.Page,
			EntryPage:   se.EntryPage,
			ExitPage:    se.ExitPage,
			Referrer:    se.Referrer,
			Source:      se.Source,
			UtmSource:   se.UtmSource,
			UtmMedium:   se.UtmMedium,
			UtmCampaign: se.UtmCampaign,
			UtmContent:  se.UtmContent,
			UtmTerm:     se.UtmTerm,
			Browser:     se.Browser,
			OS:          se.OS,
			Device:      se.Device,
			Country:     se.Country,
			Region:      se.Region,
			City:        se.City,
		})
	}
	return events, nil
}
