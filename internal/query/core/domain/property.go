package domain

import "fmt"

// Property is the dimension a query groups events by.
type Property string

const (
	PropertyBase           Property = "base"
	PropertyEvent          Property = "event"
	PropertyPage           Property = "page"
	PropertyEntryPage      Property = "entry_page"
	PropertyExitPage       Property = "exit_page"
	PropertyReferrer       Property = "referrer"
	PropertySource         Property = "source"
	PropertyUtmSource      Property = "utm_source"
	PropertyUtmMedium      Property = "utm_medium"
	PropertyUtmCampaign    Property = "utm_campaign"
	PropertyUtmContent     Property = "utm_content"
	PropertyUtmTerm        Property = "utm_term"
	PropertyBrowser        Property = "browser"
	PropertyBrowserVersion Property = "browser_version"
	PropertyOS             Property = "os"
	PropertyOSVersion      Property = "os_version"
	PropertyDevice         Property = "device"
	PropertyCountry        Property = "country"
	PropertyRegion         Property = "region"
	PropertyCity           Property = "city"
	PropertyHost           Property = "host"
)

var propertyValue = map[Property]func(*Event) string{
	PropertyPage:           func(e *Event) string { return e.Page },
	PropertyEntryPage:      func(e *Event) string { return e.EntryPage },
	PropertyExitPage:       func(e *Event) string { return e.ExitPage },
	PropertyReferrer:       func(e *Event) string { return e.Referrer },
	PropertySource:         func(e *Event) string { return e.Source },
	PropertyUtmSource:      func(e *Event) string { return e.UtmSource },
	PropertyUtmMedium:      func(e *Event) string { return e.UtmMedium },
	PropertyUtmCampaign:    func(e *Event) string { return e.UtmCampaign },
	PropertyUtmContent:     func(e *Event) string { return e.UtmContent },
	PropertyUtmTerm:        func(e *Event) string { return e.UtmTerm },
	PropertyBrowser:        func(e *Event) string { return e.Browser },
	PropertyBrowserVersion: func(e *Event) string { return e.BrowserVersion },
	PropertyOS:             func(e *Event) string { return e.OS },
	PropertyOSVersion:      func(e *Event) string { return e.OSVersion },
	PropertyDevice:         func(e *Event) string { return e.Device },
	PropertyCountry:        func(e *Event) string { return e.Country },
	PropertyRegion:         func(e *Event) string { return e.Region },
	PropertyCity:           func(e *Event) string { return e.City },
	PropertyHost:           func(e *Event) string { return e.Host },
}

func ParseProperty(s string) (Property, error) {
	p := Property(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: unknown property %q", ErrInvalidQuery, s)
	}
	return p, nil
}

func (p Property) Valid() bool {
	if p.IsBase() {
		return true
	}
	_, ok := propertyValue[p]
	return ok
}

// IsBase reports whether p selects no grouping dimension.
func (p Property) IsBase() bool {
	return p == PropertyBase || p == PropertyEvent
}

// Value returns the group key of e under p. Base properties collapse every
// event into a single group keyed by the property name.
func (p Property) Value(e *Event) string {
	if p.IsBase() {
		return string(p)
	}
	if fn, ok := propertyValue[p]; ok {
		return fn(e)
	}
	return ""
}
