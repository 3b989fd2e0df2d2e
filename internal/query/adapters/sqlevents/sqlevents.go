// Package sqlevents holds the row layout shared by the SQL event sources.
package sqlevents

import (
	"context"
	"fmt"
	"strings"

	"site-analytics-service/internal/query/core/domain"
)

// RowScanner is the subset of *sql.Rows (and clickhouse driver.Rows) the
// sources read through.
type RowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// stringColumns lists the text columns in scan order. NULLs are coalesced to
// '' so missing values group under the empty key.
var stringColumns = []string{
	"domain",
	"visitor_id",
	"session_id",
	"name",
	"page",
	"entry_page",
	"exit_page",
	"referrer",
	"source",
	"utm_source",
	"utm_medium",
	"utm_campaign",
	"utm_content",
	"utm_term",
	"browser",
	"browser_version",
	"os",
	"os_version",
	"device",
	"country",
	"region",
	"city",
	"host",
}

// SelectList returns "<tsColumn>, is_view, COALESCE(domain, ''), ...".
func SelectList(tsColumn string) string {
	cols := make([]string, 0, len(stringColumns)+2)
	cols = append(cols, tsColumn, "is_view")
	for _, c := range stringColumns {
		cols = append(cols, "COALESCE("+c+", '')")
	}
	return strings.Join(cols, ", ")
}

// Columns returns the plain column list, for DDL and inserts.
func Columns() []string {
	out := make([]string, len(stringColumns))
	copy(out, stringColumns)
	return out
}

// Drain scans every row into an Event and hands it to fn. ts is the scan
// destination of the timestamp column; decode turns it into the event time
// after each Scan.
func Drain(ctx context.Context, rows RowScanner, ts any, decode func(e *domain.Event), fn func(domain.Event) error) error {
	defer rows.Close()

	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var e domain.Event
		if err := rows.Scan(
			ts,
			&e.View,
			&e.Domain,
			&e.VisitorID,
			&e.SessionID,
			&e.Name,
			&e.Page,
			&e.EntryPage,
			&e.ExitPage,
			&e.Referrer,
			&e.Source,
			&e.UtmSource,
			&e.UtmMedium,
			&e.UtmCampaign,
			&e.UtmContent,
			&e.UtmTerm,
			&e.Browser,
			&e.BrowserVersion,
			&e.OS,
			&e.OSVersion,
			&e.Device,
			&e.Country,
			&e.Region,
			&e.City,
			&e.Host,
		); err != nil {
			return fmt.Errorf("scan event row: %w", err)
		}
		decode(&e)
		if err := fn(e); err != nil {
			return err
		}
	}
	return rows.Err()
}
