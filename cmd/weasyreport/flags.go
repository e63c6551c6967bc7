package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	weasyreport "github.com/alnah/go-weasyreport"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only log errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log backend decisions and engine commands")
}

// paperArgNames are the legacy keyed arguments exposed as render flags.
var paperArgNames = []string{
	weasyreport.ArgMarginTop,
	weasyreport.ArgMarginBottom,
	weasyreport.ArgMarginLeft,
	weasyreport.ArgMarginRight,
	weasyreport.ArgPageWidth,
	weasyreport.ArgPageHeight,
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common      commonFlags
	report      string
	header      string
	footer      string
	output      string
	timeout     string
	baseURL     string
	landscape   bool
	localAssets bool
	paper       map[string]*string
}

// addPaperFlags registers one string flag per legacy paper argument.
// Values are kept as strings so malformed input is dropped the same way the
// legacy argument dictionary is.
func addPaperFlags(fs *flag.FlagSet, f *renderFlags) {
	f.paper = make(map[string]*string, len(paperArgNames))
	for _, arg := range paperArgNames {
		name := strings.TrimPrefix(arg, "--")
		f.paper[arg] = fs.String(name, "", strings.ReplaceAll(name, "-", " ")+" in mm")
	}
}

// paperArgs returns the legacy argument dictionary for the flags that were
// set on the command line.
func (f *renderFlags) paperArgs(fs *flag.FlagSet) map[string]any {
	args := make(map[string]any)
	for arg, v := range f.paper {
		if fs.Changed(strings.TrimPrefix(arg, "--")) {
			args[arg] = *v
		}
	}
	return args
}

// newRenderFlagSet registers every render flag. Shared by parsing and
// shell completion.
func newRenderFlagSet(stderr io.Writer) (*flag.FlagSet, *renderFlags) {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &renderFlags{}

	fs.StringVarP(&f.report, "report", "r", "", "report reference, e.g. sale.report_saleorder")
	fs.StringVar(&f.header, "header", "", "header fragment file (.html or .md)")
	fs.StringVar(&f.footer, "footer", "", "footer fragment file (.html or .md)")
	fs.StringVarP(&f.output, "output", "o", "", "output PDF file, - for stdout")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "render timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.baseURL, "base-url", "", "base URL for relative assets (default: web.base.url)")
	fs.BoolVar(&f.landscape, "landscape", false, "landscape orientation")
	fs.BoolVar(&f.localAssets, "local-assets", false, "resolve relative images and stylesheets next to body files")
	addPaperFlags(fs, f)
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printRenderUsage(stderr) }
	return fs, f
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, stderr io.Writer) (*renderFlags, map[string]any, []string, error) {
	fs, f := newRenderFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		return nil, nil, nil, usageError(err)
	}
	return f, f.paperArgs(fs), fs.Args(), nil
}

// settingsFlags holds flags for the settings command.
type settingsFlags struct {
	common  commonFlags
	enabled bool
	allow   string
	block   string
	baseURL string
	json    bool

	setEnabled, setAllow, setBlock, setBaseURL bool
}

// changed reports whether any setting is being written.
func (f *settingsFlags) changed() bool {
	return f.setEnabled || f.setAllow || f.setBlock || f.setBaseURL
}

// newSettingsFlagSet registers every settings flag.
func newSettingsFlagSet(stderr io.Writer) (*flag.FlagSet, *settingsFlags) {
	fs := flag.NewFlagSet("settings", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &settingsFlags{}

	fs.BoolVar(&f.enabled, "enabled", false, "use WeasyPrint for all modules not blocked")
	fs.StringVar(&f.allow, "allow", "", "comma-separated modules using WeasyPrint when disabled")
	fs.StringVar(&f.block, "block", "", "comma-separated modules kept on wkhtmltopdf when enabled")
	fs.StringVar(&f.baseURL, "base-url", "", "base URL for relative assets")
	fs.BoolVar(&f.json, "json", false, "print settings as JSON")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printSettingsUsage(stderr) }
	return fs, f
}

// parseSettingsFlags parses settings command flags.
func parseSettingsFlags(args []string, stderr io.Writer) (*settingsFlags, error) {
	fs, f := newSettingsFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		return nil, usageError(err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", ErrUsage, fs.Args())
	}

	f.setEnabled = fs.Changed("enabled")
	f.setAllow = fs.Changed("allow")
	f.setBlock = fs.Changed("block")
	f.setBaseURL = fs.Changed("base-url")
	return f, nil
}

// newBackendFlagSet registers the backend command flags.
func newBackendFlagSet(stderr io.Writer) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet("backend", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &commonFlags{}
	addCommonFlags(fs, f)

	fs.Usage = func() { printBackendUsage(stderr) }
	return fs, f
}

// parseBackendFlags parses backend command flags.
func parseBackendFlags(args []string, stderr io.Writer) (*commonFlags, []string, error) {
	fs, f := newBackendFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}

// usageError maps pflag errors. --help is reported as errHelpShown so
// callers can exit successfully after the usage text.
func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return errHelpShown
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// errHelpShown signals that usage was printed on request.
var errHelpShown = errors.New("help shown")
