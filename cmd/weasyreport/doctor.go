package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	weasyreport "github.com/alnah/go-weasyreport"
	"github.com/alnah/go-weasyreport/internal/config"
	"github.com/alnah/go-weasyreport/internal/paramstore"
)

// doctorVersionTimeout bounds each "--version" probe.
const doctorVersionTimeout = 5 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string        `json:"status"` // "ready", "warnings", "errors"
	Engine   string        `json:"engine"`
	Binaries []binaryDoc   `json:"binaries"`
	Config   configInfo    `json:"config"`
	Store    storeInfo     `json:"store"`
	Settings *settingsView `json:"settings,omitempty"`
	System   systemInfo    `json:"system"`
	Warnings []string      `json:"warnings,omitempty"`
	Errors   []string      `json:"errors,omitempty"`
}

// binaryDoc holds detection results for one external binary.
type binaryDoc struct {
	Name    string `json:"name"`
	Role    string `json:"role"` // "engine", "fallback", "optional"
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// configInfo reports which config was loaded.
type configInfo struct {
	Source string `json:"source"`
	Valid  bool   `json:"valid"`
}

// storeInfo reports the parameter store state.
type storeInfo struct {
	Path string `json:"path"`
	OK   bool   `json:"ok"`
}

// systemInfo holds system check results.
type systemInfo struct {
	OS           string `json:"os"`
	Arch         string `json:"arch"`
	TempWritable bool   `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags.
func runDoctorCmd(args []string, env *Environment) int {
	fs, jsonOutput, configName := newDoctorFlagSet(env.Stderr)
	if err := fs.Parse(args); err != nil {
		if err := usageError(err); err == errHelpShown {
			return ExitSuccess
		}
		return ExitUsage
	}

	result := runDoctor(*configName, env)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// newDoctorFlagSet registers the doctor command flags.
func newDoctorFlagSet(stderr io.Writer) (fs *flag.FlagSet, jsonOutput *bool, configName *string) {
	fs = flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	jsonOutput = fs.Bool("json", false, "print results as JSON")
	configName = fs.StringP("config", "c", "", "config file name or path")
	fs.Usage = func() { printDoctorUsage(stderr) }
	return fs, jsonOutput, configName
}

// runDoctor performs all diagnostic checks.
func runDoctor(configName string, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		System: systemInfo{OS: runtime.GOOS, Arch: runtime.GOARCH},
	}

	cfg := checkConfig(result, configName, env)
	result.Engine = cfg.Engine.Name
	checkBinaries(result, cfg)
	checkStore(result, cfg)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// checkConfig loads the config, falling back to defaults on error.
func checkConfig(result *doctorResult, name string, env *Environment) *config.Config {
	source := name
	if source == "" {
		source = env.Getenv(config.EnvConfig)
	}
	if source == "" {
		source = "defaults"
	}
	result.Config.Source = source

	cfg, err := loadConfig(name, env)
	if err != nil {
		result.Errors = append(result.Errors, "Config: "+firstLine(err.Error()))
		return config.DefaultConfig()
	}
	result.Config.Valid = true
	return cfg
}

// checkBinaries detects the engine, fallback and Chrome binaries.
func checkBinaries(result *doctorResult, cfg *config.Config) {
	engineRole, chromeRole := "engine", "optional"
	if cfg.Engine.Name == config.EngineChrome {
		engineRole, chromeRole = "optional", "engine"
	}

	wp := probeBinary("weasyprint", engineRole, orDefault(cfg.Engine.WeasyPrintBin, "weasyprint"))
	wk := probeBinary("wkhtmltopdf", "fallback", orDefault(cfg.Fallback.WkhtmltopdfBin, "wkhtmltopdf"))
	if cfg.Fallback.Disabled {
		wk.Role = "disabled"
	}

	chrome := binaryDoc{Name: "chrome", Role: chromeRole}
	chromePath := orDefault(cfg.Engine.ChromeBin, os.Getenv("ROD_BROWSER_BIN"))
	if chromePath == "" {
		chromePath, _ = launcher.LookPath()
	}
	if chromePath != "" {
		if _, err := os.Stat(chromePath); err == nil {
			chrome.Found = true
			chrome.Path = chromePath
			chrome.Version = binaryVersion(chromePath)
		}
	}

	result.Binaries = []binaryDoc{wp, wk, chrome}

	engineFound := wp.Found
	if cfg.Engine.Name == config.EngineChrome {
		engineFound = chrome.Found
	}
	fallbackFound := wk.Found && !cfg.Fallback.Disabled

	switch {
	case !engineFound && !fallbackFound:
		result.Errors = append(result.Errors,
			"No renderer available: install weasyprint or wkhtmltopdf")
	case !engineFound:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s not found: every report will use wkhtmltopdf", cfg.Engine.Name))
	case !fallbackFound:
		result.Warnings = append(result.Warnings,
			"wkhtmltopdf not available: reports not routed to "+string(weasyreport.BackendAlternate)+" will fail")
	}
}

// probeBinary resolves bin on PATH (or as an absolute path) and reads its version.
func probeBinary(name, role, bin string) binaryDoc {
	doc := binaryDoc{Name: name, Role: role}
	path := bin
	if !filepath.IsAbs(bin) {
		p, err := exec.LookPath(bin)
		if err != nil {
			return doc
		}
		path = p
	} else if _, err := os.Stat(bin); err != nil {
		return doc
	}
	doc.Found = true
	doc.Path = path
	doc.Version = binaryVersion(path)
	return doc
}

// binaryVersion returns the first line of "<bin> --version", or "".
func binaryVersion(path string) string {
	ctx, cancel := context.WithTimeout(context.Background(), doctorVersionTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, "--version").Output() // #nosec G204 -- resolved binary path
	if err != nil {
		return ""
	}
	return firstLine(strings.TrimSpace(string(out)))
}

// checkStore opens the parameter store read-only and reads the settings.
func checkStore(result *doctorResult, cfg *config.Config) {
	result.Store.Path = cfg.Store.Path

	store, err := paramstore.OpenSQLite(cfg.Store.Path, paramstore.Options{})
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Parameter store: %v (defaults apply until settings are saved)", err))
		return
	}
	defer store.Close()

	settings, err := weasyreport.LoadSettings(context.Background(), store)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Parameter store: %v", err))
		return
	}
	result.Store.OK = true
	result.Settings = &settingsView{
		Enabled:        settings.Enabled,
		AllowedModules: nonNil(settings.AllowedModules),
		BlockedModules: nonNil(settings.BlockedModules),
		BaseURL:        settings.BaseURL,
		EffectiveURL:   settings.ResolveBaseURL(),
	}
	if err := settings.Validate(cfg.Modules.Installed); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Settings: %v", err))
	}
}

// checkSystem verifies the temp directory is writable.
func checkSystem(result *doctorResult) {
	f, err := os.CreateTemp("", "weasyreport-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
		return
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "weasyreport doctor")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Renderers (engine: %s)\n", r.Engine)
	for _, b := range r.Binaries {
		if !b.Found {
			fmt.Fprintf(w, "  [MISSING] %s (%s)\n", b.Name, b.Role)
			continue
		}
		line := fmt.Sprintf("  [OK] %s (%s) at %s", b.Name, b.Role, b.Path)
		if b.Version != "" {
			line += ": " + b.Version
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Configuration")
	if r.Config.Valid {
		fmt.Fprintf(w, "  [OK] Config: %s\n", r.Config.Source)
	} else {
		fmt.Fprintf(w, "  [ERROR] Config: %s\n", r.Config.Source)
	}
	if r.Store.OK {
		fmt.Fprintf(w, "  [OK] Store: %s\n", r.Store.Path)
	} else {
		fmt.Fprintf(w, "  [WARN] Store: %s\n", r.Store.Path)
	}
	if r.Settings != nil {
		fmt.Fprintf(w, "  [OK] Enabled: %t, allowed: %s, blocked: %s\n",
			r.Settings.Enabled,
			weasyreport.JoinModuleList(r.Settings.AllowedModules),
			weasyreport.JoinModuleList(r.Settings.BlockedModules))
		fmt.Fprintf(w, "  [OK] Base URL: %s\n", r.Settings.EffectiveURL)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.System.OS, r.System.Arch)
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to render")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
