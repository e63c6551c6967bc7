package weasyreport

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Configuration parameter keys, shared with the host's key/value store.
const (
	ParamEnabled        = "report_weasyprint.enabled"
	ParamAllowedModules = "report_weasyprint.allowed_modules"
	ParamBlockedModules = "report_weasyprint.blocked_modules"
	ParamBaseURL        = "web.base.url"
)

// DefaultBaseURL resolves relative assets when no base URL is configured.
const DefaultBaseURL = "http://127.0.0.1:8069"

// listSeparator joins module names in stored parameters.
const listSeparator = ","

// ParamStore is the host's persisted key/value parameter store.
// GetParam returns ok=false when the key has never been set.
type ParamStore interface {
	GetParam(ctx context.Context, key string) (value string, ok bool, err error)
	SetParam(ctx context.Context, key, value string) error
}

// Settings is the rendering configuration for one render call.
type Settings struct {
	Enabled        bool     // use the paged-media engine for every module not blocked
	AllowedModules []string // consulted only when Enabled is false
	BlockedModules []string // consulted only when Enabled is true
	BaseURL        string   // base for relative asset URLs (empty = DefaultBaseURL)
}

// UseAlternate applies the selector to module.
func (s *Settings) UseAlternate(module string) bool {
	return ShouldUseAlternate(module, s.Enabled, s.AllowedModules, s.BlockedModules)
}

// ResolveBaseURL returns the configured base URL, or DefaultBaseURL so that
// assets resolve before an administrator configures one.
func (s *Settings) ResolveBaseURL() string {
	if u := strings.TrimSpace(s.BaseURL); u != "" {
		return u
	}
	return DefaultBaseURL
}

// Validate checks allow/block entries against the installed modules.
// An empty installed list disables the check.
func (s *Settings) Validate(installed []string) error {
	if len(installed) == 0 {
		return nil
	}
	for _, list := range [][]string{s.AllowedModules, s.BlockedModules} {
		for _, module := range list {
			if !slices.Contains(installed, module) {
				return fmt.Errorf("%w: %q", ErrModuleNotInstalled, module)
			}
		}
	}
	return nil
}

// LoadSettings reads the rendering configuration from store.
// Missing keys take their defaults.
func LoadSettings(ctx context.Context, store ParamStore) (*Settings, error) {
	get := func(key string) (string, error) {
		v, _, err := store.GetParam(ctx, key)
		if err != nil {
			return "", fmt.Errorf("%w: reading %s: %v", ErrSettingsLoad, key, err)
		}
		return v, nil
	}

	enabled, err := get(ParamEnabled)
	if err != nil {
		return nil, err
	}
	allowed, err := get(ParamAllowedModules)
	if err != nil {
		return nil, err
	}
	blocked, err := get(ParamBlockedModules)
	if err != nil {
		return nil, err
	}
	baseURL, err := get(ParamBaseURL)
	if err != nil {
		return nil, err
	}

	return &Settings{
		Enabled:        ParseBool(enabled),
		AllowedModules: ParseModuleList(allowed),
		BlockedModules: ParseModuleList(blocked),
		BaseURL:        strings.TrimSpace(baseURL),
	}, nil
}

// SaveSettings writes the rendering configuration to store.
func SaveSettings(ctx context.Context, store ParamStore, s *Settings) error {
	params := []struct{ key, value string }{
		{ParamEnabled, strconv.FormatBool(s.Enabled)},
		{ParamAllowedModules, JoinModuleList(s.AllowedModules)},
		{ParamBlockedModules, JoinModuleList(s.BlockedModules)},
		{ParamBaseURL, strings.TrimSpace(s.BaseURL)},
	}
	for _, p := range params {
		if err := store.SetParam(ctx, p.key, p.value); err != nil {
			return fmt.Errorf("%w: writing %s: %v", ErrSettingsSave, p.key, err)
		}
	}
	return nil
}

// ParseModuleList splits a comma-joined list, trimming whitespace and
// dropping empty and duplicate entries. Order is preserved.
func ParseModuleList(s string) []string {
	var modules []string
	for _, part := range strings.Split(s, listSeparator) {
		part = strings.TrimSpace(part)
		if part == "" || slices.Contains(modules, part) {
			continue
		}
		modules = append(modules, part)
	}
	return modules
}

// JoinModuleList is the inverse of ParseModuleList.
func JoinModuleList(modules []string) string {
	return strings.Join(ParseModuleList(strings.Join(modules, listSeparator)), listSeparator)
}

// ParseBool interprets a stored boolean. The store may hold Go or Python
// spellings ("true", "True", "1"); anything unrecognized is false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "yes", "on":
		return true
	}
	return false
}
