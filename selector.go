package weasyreport

import (
	"context"
	"slices"
	"strings"
)

// UnknownModule is used for allow/block-list matching when a report's
// module cannot be determined.
const UnknownModule = "unknown"

// moduleSeparator splits a report reference into module and report name,
// e.g. "sale.report_saleorder".
const moduleSeparator = "."

// ShouldUseAlternate decides whether the paged-media engine renders a report
// of the given module.
//
// When enabled, every module uses it unless blocked. When disabled, only
// allowed modules use it. The list not selected by enabled is ignored.
func ShouldUseAlternate(module string, enabled bool, allowed, blocked []string) bool {
	if enabled {
		return !containsModule(blocked, module)
	}
	return containsModule(allowed, module)
}

// containsModule reports whether module is a non-empty entry of list.
// Empty entries (from splitting an empty parameter) never match.
func containsModule(list []string, module string) bool {
	if module == "" {
		return false
	}
	return slices.ContainsFunc(list, func(entry string) bool {
		return entry != "" && entry == module
	})
}

// ModuleOf returns the module part of a report reference: the text before
// the first separator. Blank references resolve to UnknownModule.
func ModuleOf(reportRef string) string {
	ref := strings.TrimSpace(reportRef)
	module, _, _ := strings.Cut(ref, moduleSeparator)
	module = strings.TrimSpace(module)
	if module == "" {
		return UnknownModule
	}
	return module
}

// ModuleResolver maps a report reference to the module that defines it.
type ModuleResolver interface {
	ResolveModule(ctx context.Context, reportRef string) (string, error)
}

// Compile-time interface checks.
var (
	_ ModuleResolver = PrefixResolver{}
	_ ModuleResolver = (*MapResolver)(nil)
)

// PrefixResolver resolves modules from the report reference prefix.
type PrefixResolver struct{}

// ResolveModule implements ModuleResolver using ModuleOf.
func (PrefixResolver) ResolveModule(_ context.Context, reportRef string) (string, error) {
	return ModuleOf(reportRef), nil
}

// MapResolver looks reports up in an explicit registry and falls back to the
// reference prefix for reports it does not know.
type MapResolver struct {
	reports map[string]string
}

// NewMapResolver creates a MapResolver from a report-to-module registry.
// The map is copied; blank module names are skipped.
func NewMapResolver(reports map[string]string) *MapResolver {
	m := make(map[string]string, len(reports))
	for ref, module := range reports {
		module = strings.TrimSpace(module)
		if module == "" {
			continue
		}
		m[strings.TrimSpace(ref)] = module
	}
	return &MapResolver{reports: m}
}

// ResolveModule implements ModuleResolver.
func (r *MapResolver) ResolveModule(_ context.Context, reportRef string) (string, error) {
	if module, ok := r.reports[strings.TrimSpace(reportRef)]; ok {
		return module, nil
	}
	return ModuleOf(reportRef), nil
}

// resolveModule never fails: resolver errors and blank results become
// UnknownModule.
func resolveModule(ctx context.Context, r ModuleResolver, reportRef string) string {
	if r == nil {
		return ModuleOf(reportRef)
	}
	module, err := r.ResolveModule(ctx, reportRef)
	if err != nil {
		return UnknownModule
	}
	module = strings.TrimSpace(module)
	if module == "" {
		return UnknownModule
	}
	return module
}
