package scraper

import (
	"fmt"
	"strings"
)

// CacheMode controls whether the browser may serve the page from its HTTP cache.
type CacheMode string

// Cache modes. Bypass and Disabled both force a fresh network load.
const (
	CacheEnabled  CacheMode = "enabled"
	CacheDisabled CacheMode = "disabled"
	CacheBypass   CacheMode = "bypass"
)

// ParseCacheMode validates a textual cache mode.
func ParseCacheMode(s string) (CacheMode, error) {
	switch m := CacheMode(strings.ToLower(strings.TrimSpace(s))); m {
	case CacheEnabled, CacheDisabled, CacheBypass:
		return m, nil
	case "":
		return CacheBypass, nil
	default:
		return "", fmt.Errorf("unknown cache mode %q", s)
	}
}

// Fresh reports whether the render must skip the browser cache.
func (m CacheMode) Fresh() bool {
	return m == CacheBypass || m == CacheDisabled
}
