package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: weasyreport <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render     Render a report from body files")
	fmt.Fprintln(w, "  settings   Show or change the report rendering settings")
	fmt.Fprintln(w, "  backend    Show which backend renders a report")
	fmt.Fprintln(w, "  doctor     Check engines, config and parameter store")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'weasyreport help <command>' for details on a specific command.")
}

// printCommonFlags prints the flags shared by store-backed commands.
func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path (env: WEASYREPORT_CONFIG)")
	fmt.Fprintln(w, "  -q, --quiet               Only log errors")
	fmt.Fprintln(w, "  -v, --verbose             Log backend decisions and engine commands")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: weasyreport render [flags] <body>...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a report. Each body file (.html or .md) becomes its own document;")
	fmt.Fprintln(w, "documents are merged in argument order.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Report:")
	fmt.Fprintln(w, "  -r, --report <ref>        Report reference (module.report_name)")
	fmt.Fprintln(w, "      --header <file>       Header fragment")
	fmt.Fprintln(w, "      --footer <file>       Footer fragment")
	fmt.Fprintln(w, "      --base-url <url>      Base URL for relative assets (default: web.base.url)")
	fmt.Fprintln(w, "      --local-assets        Resolve relative images/stylesheets next to body files")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Paper (millimeters):")
	fmt.Fprintln(w, "      --margin-top <mm>     Top margin")
	fmt.Fprintln(w, "      --margin-bottom <mm>  Bottom margin")
	fmt.Fprintln(w, "      --margin-left <mm>    Left margin")
	fmt.Fprintln(w, "      --margin-right <mm>   Right margin")
	fmt.Fprintln(w, "      --page-width <mm>     Page width (needs --page-height)")
	fmt.Fprintln(w, "      --page-height <mm>    Page height (needs --page-width)")
	fmt.Fprintln(w, "      --landscape           Landscape orientation")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output PDF, - for stdout (default: <first body>.pdf)")
	fmt.Fprintln(w, "  -t, --timeout <dur>       Render timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printSettingsUsage prints usage for the settings command.
func printSettingsUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: weasyreport settings [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Without flags, print the current settings. With flags, validate and save them.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Settings:")
	fmt.Fprintln(w, "      --enabled[=false]     Use WeasyPrint for every module not blocked")
	fmt.Fprintln(w, "      --allow <list>        Modules using WeasyPrint while disabled")
	fmt.Fprintln(w, "      --block <list>        Modules kept on wkhtmltopdf while enabled")
	fmt.Fprintln(w, "      --base-url <url>      Base URL for relative assets")
	fmt.Fprintln(w, "      --json                Print as JSON")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printBackendUsage prints usage for the backend command.
func printBackendUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: weasyreport backend [flags] <report>...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Show the module and backend that would render each report.")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: weasyreport doctor [--json] [-c config]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check engine binaries, config and the parameter store.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "settings":
		printSettingsUsage(env.Stdout)
	case "backend":
		printBackendUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: weasyreport version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: weasyreport help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
