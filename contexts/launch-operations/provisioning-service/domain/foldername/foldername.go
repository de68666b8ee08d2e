// Package foldername holds the pure naming rules for provisioned buyer
// folders, kept apart from the I/O-heavy provisioning flow so they can
// be tested on their own.
package foldername

import (
	"regexp"
	"strings"
	"time"
)

// Per-component truncation limits applied before composing a name.
const (
	MaxBuyerLen       = 40
	MaxProvisionerLen = 30
	MaxTitleLen       = 50
)

// CategoryRootName is the fixed marker name of a buyer's one-per-ever
// category root folder.
const CategoryRootName = "media-deliverables"

var (
	disallowed     = regexp.MustCompile(`[^a-zA-Z0-9 \-_]+`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// Sanitize strips every character except letters, digits, space, hyphen
// and underscore, then collapses whitespace runs to a single hyphen.
func Sanitize(value string) string {
	value = disallowed.ReplaceAllString(value, "")
	value = strings.TrimSpace(value)
	return whitespaceRuns.ReplaceAllString(value, "-")
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}

// DatedName composes the per-day folder name for one buyer.
func DatedName(buyerLabel string, day time.Time) string {
	return truncate(Sanitize(buyerLabel), MaxBuyerLen) + "-" + day.UTC().Format("2006-01-02")
}

// LeafName composes the per-(request, buyer) subfolder name.
func LeafName(provisionerLabel string, requestTitle string) string {
	return truncate(Sanitize(provisionerLabel), MaxProvisionerLen) + "-" + truncate(Sanitize(requestTitle), MaxTitleLen)
}
