// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-weasyreport/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for Chrome engine connection errors.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 or engine.noSandbox for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN or engine.chromeBin to use a custom Chrome")
	}

	return formatHints(hints)
}

// ForEngineNotFound returns install hints for a missing engine binary.
func ForEngineNotFound(engine string) string {
	switch engine {
	case "weasyprint":
		return format("install it with 'pip install weasyprint' or set engine.weasyprintBin; reports fall back to wkhtmltopdf meanwhile")
	case "wkhtmltopdf":
		return format("install wkhtmltopdf 0.12.6 (patched qt) or set fallback.wkhtmltopdfBin")
	default:
		return ""
	}
}

// ForTimeout returns a hint about increasing the timeout for slow renders.
func ForTimeout() string {
	return format("for large reports, use --timeout or engine.timeout")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(filepathToSlash(p), "go-weasyreport/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForStore returns hints for parameter store open errors.
func ForStore(path string) string {
	return format("check " + path + " is writable, or set WEASYREPORT_STORE / store.path")
}

// ForUnknownModule lists the installed modules an allow/block entry may use.
func ForUnknownModule(installed []string) string {
	if len(installed) == 0 {
		return ""
	}
	return format("installed modules: " + strings.Join(installed, ", "))
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
