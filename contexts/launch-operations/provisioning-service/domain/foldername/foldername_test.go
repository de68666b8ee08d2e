package foldername

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Acme Media", "Acme-Media"},
		{"strips punctuation", "Q2 Launch: Health & Wellness!", "Q2-Launch-Health-Wellness"},
		{"collapses whitespace runs", "Acme   Media \t Group", "Acme-Media-Group"},
		{"keeps hyphen and underscore", "north_east-team", "north_east-team"},
		{"trims edges", "  Acme  ", "Acme"},
		{"only junk", "!!!", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Sanitize(tc.in))
		})
	}
}

func TestDatedName(t *testing.T) {
	day := time.Date(2026, 3, 15, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "Riley-Watts-2026-03-15", DatedName("Riley Watts", day))

	long := strings.Repeat("b", MaxBuyerLen+25)
	got := DatedName(long, day)
	assert.Equal(t, strings.Repeat("b", MaxBuyerLen)+"-2026-03-15", got)
}

func TestLeafName(t *testing.T) {
	assert.Equal(t, "Dana-Cole-Spring-Launch", LeafName("Dana Cole", "Spring Launch"))

	provisioner := strings.Repeat("p", MaxProvisionerLen+10)
	title := strings.Repeat("t", MaxTitleLen+10)
	got := LeafName(provisioner, title)
	assert.Equal(t, strings.Repeat("p", MaxProvisionerLen)+"-"+strings.Repeat("t", MaxTitleLen), got)
}
