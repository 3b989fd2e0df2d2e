package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterval(t *testing.T) {
	d, err := ParseInterval("5m")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, d)

	for _, bad := range []string{"", "5", "soon", "0s", "-1m"} {
		_, err := ParseInterval(bad)
		assert.ErrorIs(t, err, ErrInvalidInterval, bad)
	}
}

func TestValidateDomain(t *testing.T) {
	for _, ok := range []string{"a.com", "localhost", "shop.example.co.uk", "x-1.io", "Example.COM"} {
		assert.NoError(t, ValidateDomain(ok), ok)
	}
	bad := []string{"", "a..com", ".a.com", "-a.com", "a-.com", "a.com/path", "a com", "http://a.com", strings.Repeat("a", 64) + ".com"}
	for _, d := range bad {
		assert.ErrorIs(t, ValidateDomain(d), ErrInvalidDomain, d)
	}
}

func TestCondition_Met(t *testing.T) {
	assert.True(t, Condition{Op: OpAbove, Threshold: 10}.Met(11))
	assert.False(t, Condition{Op: OpAbove, Threshold: 10}.Met(10))
	assert.True(t, Condition{Op: OpBelow, Threshold: 1}.Met(0))
	assert.True(t, Condition{Op: OpEqual, Threshold: 0.5}.Met(0.5))
	assert.False(t, Condition{Op: "sideways", Threshold: 0}.Met(0))
}

func validDefinition() Definition {
	return Definition{
		Name:      "blog-drop",
		Domain:    "a.com",
		Interval:  "5m",
		Window:    "1h",
		Property:  "page",
		Metric:    "views",
		Match:     Match{Glob: "/blog/*"},
		Condition: Condition{Op: OpBelow, Threshold: 10},
		Webhook:   "https://hooks.example.com/alerts",
	}
}

func TestDefinition_Validate(t *testing.T) {
	window, err := validDefinition().Validate()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, window)

	cases := []struct {
		name   string
		mutate func(*Definition)
		want   error
	}{
		{"no name", func(d *Definition) { d.Name = "" }, ErrInvalidDefinition},
		{"bad domain", func(d *Definition) { d.Domain = "not a domain" }, ErrInvalidDomain},
		{"bad interval", func(d *Definition) { d.Interval = "often" }, ErrInvalidInterval},
		{"bad window", func(d *Definition) { d.Window = "0s" }, ErrInvalidDefinition},
		{"no metric", func(d *Definition) { d.Metric = "" }, ErrInvalidDefinition},
		{"bad op", func(d *Definition) { d.Condition.Op = "over" }, ErrInvalidDefinition},
		{"two matches", func(d *Definition) { d.Match.Exact = "/blog" }, ErrInvalidDefinition},
		{"bad webhook", func(d *Definition) { d.Webhook = "ftp://x" }, ErrInvalidDefinition},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDefinition()
			tc.mutate(&d)
			_, err := d.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}
