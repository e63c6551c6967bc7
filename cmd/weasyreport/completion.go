package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string
	Short    string
	Desc     string
	Bool     bool   // takes no value
	FileGlob string // comma-separated globs, e.g. "*.yaml,*.yml"
}

// commandDef describes a command for completion.
type commandDef struct {
	Name     string
	Desc     string
	Flags    []flagDef
	FileGlob string // glob for positional file arguments, empty = none
}

// flagFileGlobs holds completion hints for flags naming files.
// Flag names, types and descriptions come from the FlagSets.
var flagFileGlobs = map[string]string{
	"config": "*.yaml,*.yml",
	"header": "*.html,*.htm,*.md",
	"footer": "*.html,*.htm,*.md",
	"output": "*.pdf",
}

// bodyGlob matches the body files render accepts.
const bodyGlob = "*.html,*.htm,*.xhtml,*.md,*.markdown"

// extractFlags lists the flags of fs with their completion hints.
func extractFlags(fs *flag.FlagSet) []flagDef {
	var flags []flagDef
	fs.VisitAll(func(f *flag.Flag) {
		flags = append(flags, flagDef{
			Long:     f.Name,
			Short:    f.Shorthand,
			Desc:     f.Usage,
			Bool:     f.Value.Type() == "bool",
			FileGlob: flagFileGlobs[f.Name],
		})
	})
	return flags
}

// getCommands returns the command registry for completion.
func getCommands() []commandDef {
	renderFS, _ := newRenderFlagSet(io.Discard)
	settingsFS, _ := newSettingsFlagSet(io.Discard)
	backendFS, _ := newBackendFlagSet(io.Discard)
	doctorFS, _, _ := newDoctorFlagSet(io.Discard)

	return []commandDef{
		{Name: "render", Desc: "Render a report from body files", Flags: extractFlags(renderFS), FileGlob: bodyGlob},
		{Name: "settings", Desc: "Show or change the report rendering settings", Flags: extractFlags(settingsFS)},
		{Name: "backend", Desc: "Show which backend renders a report", Flags: extractFlags(backendFS)},
		{Name: "doctor", Desc: "Check engines, config and parameter store", Flags: extractFlags(doctorFS)},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
		{Name: "completion", Desc: "Generate shell completion script"},
	}
}

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	cmds := getCommands()
	switch shell {
	case ShellBash:
		return generateBash(w, cmds)
	case ShellZsh:
		return generateZsh(w, cmds)
	case ShellFish:
		return generateFish(w, cmds)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	if err := GenerateCompletion(env.Stdout, Shell(args[0])); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return nil
}

// globExtensions turns "*.yaml,*.yml" into ["yaml", "yml"].
func globExtensions(glob string) []string {
	var exts []string
	for _, g := range strings.Split(glob, ",") {
		if ext := strings.TrimPrefix(strings.TrimSpace(g), "*."); ext != "" {
			exts = append(exts, ext)
		}
	}
	return exts
}

func commandNames(cmds []commandDef) string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return strings.Join(names, " ")
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func generateBash(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	b.WriteString("# bash completion for weasyreport\n\n")
	b.WriteString("_weasyreport() {\n")
	b.WriteString("    local cur prev\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n\n")
	b.WriteString("    if [[ $COMP_CWORD -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", commandNames(cmds))
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"${COMP_WORDS[1]}\" in\n")

	for _, c := range cmds {
		if len(c.Flags) == 0 && c.FileGlob == "" {
			continue
		}
		fmt.Fprintf(&b, "        %s)\n", c.Name)

		var words []string
		b.WriteString("            case \"$prev\" in\n")
		for _, f := range c.Flags {
			words = append(words, "--"+f.Long)
			if f.Short != "" {
				words = append(words, "-"+f.Short)
			}
			if f.FileGlob == "" {
				continue
			}
			pattern := "--" + f.Long
			if f.Short != "" {
				pattern += "|-" + f.Short
			}
			fmt.Fprintf(&b, "                %s) COMPREPLY=($(compgen -f -X '!*.@(%s)' -- \"$cur\")); return ;;\n",
				pattern, strings.Join(globExtensions(f.FileGlob), "|"))
		}
		b.WriteString("            esac\n")

		b.WriteString("            if [[ \"$cur\" == -* ]]; then\n")
		fmt.Fprintf(&b, "                COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(words, " "))
		if c.FileGlob != "" {
			b.WriteString("            else\n")
			fmt.Fprintf(&b, "                COMPREPLY=($(compgen -f -X '!*.@(%s)' -- \"$cur\"))\n",
				strings.Join(globExtensions(c.FileGlob), "|"))
		}
		b.WriteString("            fi\n")
		b.WriteString("            ;;\n")
	}

	b.WriteString("        help)\n")
	fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", commandNames(cmds))
	b.WriteString("            ;;\n")
	b.WriteString("        completion)\n")
	b.WriteString("            COMPREPLY=($(compgen -W \"bash zsh fish\" -- \"$cur\"))\n")
	b.WriteString("            ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("shopt -s extglob\n")
	b.WriteString("complete -o filenames -F _weasyreport weasyreport\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

var zshEscaper = strings.NewReplacer("'", `'\''`, "[", `\[`, "]", `\]`, ":", `\:`)

func generateZsh(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	b.WriteString("#compdef weasyreport\n\n")
	b.WriteString("_weasyreport() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscaper.Replace(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"${words[2]}\" in\n")

	for _, c := range cmds {
		if len(c.Flags) == 0 && c.FileGlob == "" {
			continue
		}
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		b.WriteString("            _arguments")
		for _, f := range c.Flags {
			b.WriteString(" \\\n                ")
			b.WriteString(zshFlagSpec(f))
		}
		if c.FileGlob != "" {
			fmt.Fprintf(&b, " \\\n                '*:file:_files -g \"*.(%s)\"'", strings.Join(globExtensions(c.FileGlob), "|"))
		}
		b.WriteString("\n            ;;\n")
	}

	b.WriteString("        completion)\n")
	b.WriteString("            _values 'shell' bash zsh fish\n")
	b.WriteString("            ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("_weasyreport \"$@\"\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// zshFlagSpec builds one _arguments spec, e.g.
// '(-o --output)'{-o,--output}'[output PDF]:file:_files -g "*.(pdf)"'.
func zshFlagSpec(f flagDef) string {
	var action string
	switch {
	case f.Bool:
	case f.FileGlob != "":
		action = fmt.Sprintf(`:file:_files -g "*.(%s)"`, strings.Join(globExtensions(f.FileGlob), "|"))
	default:
		action = ":value:"
	}
	desc := "[" + zshEscaper.Replace(f.Desc) + "]" + action

	if f.Short == "" {
		return "'--" + f.Long + desc + "'"
	}
	return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'%s'", f.Short, f.Long, f.Short, f.Long, desc)
}

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

var fishEscaper = strings.NewReplacer(`\`, `\\`, "'", `\'`)

func generateFish(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	b.WriteString("# fish completion for weasyreport\n\n")
	b.WriteString("complete -c weasyreport -f\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c weasyreport -n __fish_use_subcommand -a %s -d '%s'\n", c.Name, fishEscaper.Replace(c.Desc))
	}

	for _, c := range cmds {
		cond := "'__fish_seen_subcommand_from " + c.Name + "'"
		for _, f := range c.Flags {
			line := "complete -c weasyreport -n " + cond + " -l " + f.Long
			if f.Short != "" {
				line += " -s " + f.Short
			}
			switch {
			case f.Bool:
			case f.FileGlob != "":
				line += " -r -F"
			default:
				line += " -r"
			}
			line += " -d '" + fishEscaper.Replace(f.Desc) + "'"
			b.WriteString(line + "\n")
		}
		if c.FileGlob != "" {
			fmt.Fprintf(&b, "complete -c weasyreport -n %s -F\n", cond)
		}
	}
	b.WriteString("complete -c weasyreport -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish'\n")
	b.WriteString("complete -c weasyreport -n '__fish_seen_subcommand_from help' -a '" + commandNames(cmds) + "'\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: weasyreport completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(weasyreport completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(weasyreport completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    weasyreport completion fish > ~/.config/fish/completions/weasyreport.fish")
}
