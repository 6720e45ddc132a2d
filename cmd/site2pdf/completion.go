package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagNumber // ints and durations, nothing to complete
	flagEnum   // has predefined values
	flagFile   // file with glob pattern
	flagDir    // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a subcommand for completion.
type commandDef struct {
	Name  string
	Desc  string
	Flags []flagDef
	Args  []string // fixed positional values
}

// completionMeta holds completion hints that a FlagSet cannot express.
type completionMeta struct {
	Values   []string
	FileGlob string
	IsDir    bool
}

var flagCompletionMeta = map[string]completionMeta{
	"batch-failure":  {Values: []string{policyReport, policyExit}},
	"single-failure": {Values: []string{policyExit, policyReport}},

	"config":   {FileGlob: "*.yaml,*.yml,*.json,*.toml"},
	"file":     {FileGlob: "*.html,*.htm"},
	"report":   {FileGlob: "*.json"},
	"env-file": {FileGlob: "*.env,.env*"},

	"input":       {IsDir: true},
	"output":      {IsDir: true},
	"publish-dir": {IsDir: true},
}

var shells = []string{string(ShellBash), string(ShellZsh), string(ShellFish), string(ShellPowerShell)}

// extractFlagsFromFlagSet converts a FlagSet into flag definitions,
// enriched with flagCompletionMeta. Output is sorted by long name.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "duration":
			fd.Type = flagNumber
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	sort.Slice(flags, func(i, j int) bool { return flags[i].Long < flags[j].Long })
	return flags
}

// rootFlags returns the conversion flags from the FlagSet parseRunFlags uses.
func rootFlags() []flagDef {
	return extractFlagsFromFlagSet(newRunFlagSet(&runFlags{}))
}

// getCommands returns the subcommand registry for completion.
func getCommands() []commandDef {
	return []commandDef{
		{
			Name:  "doctor",
			Desc:  "Check browser and environment setup",
			Flags: []flagDef{{Long: "json", Type: flagBool, Desc: "print results as JSON"}},
		},
		{
			Name: "version",
			Desc: "Show version information",
		},
		{
			Name: "help",
			Desc: "Show help for a command",
			Args: []string{"doctor", "version", "help", "completion"},
		},
		{
			Name: "completion",
			Desc: "Generate shell completion script",
			Args: shells,
		},
	}
}

func commandNames() []string {
	var names []string
	for _, c := range getCommands() {
		names = append(names, c.Name)
	}
	return names
}

// GenerateCompletion writes shell completion script to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	case ShellPowerShell:
		return generatePowerShell(w)
	default:
		return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedShell, shell, strings.Join(shells, ", "))
	}
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func generateBash(w io.Writer) error {
	flags := rootFlags()
	var b strings.Builder

	b.WriteString("# bash completion for site2pdf\n")
	b.WriteString("_site2pdf_completions() {\n")
	b.WriteString("    local cur prev\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n\n")

	b.WriteString("    if [[ $COMP_CWORD -gt 1 ]]; then\n")
	b.WriteString("        case \"${COMP_WORDS[1]}\" in\n")
	for _, c := range getCommands() {
		words := append([]string{}, c.Args...)
		for _, f := range c.Flags {
			words = append(words, "--"+f.Long)
		}
		fmt.Fprintf(&b, "            %s)\n", c.Name)
		fmt.Fprintf(&b, "                COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))\n", strings.Join(words, " "))
		b.WriteString("                return\n                ;;\n")
	}
	b.WriteString("        esac\n    fi\n\n")

	b.WriteString("    case \"$prev\" in\n")
	for _, f := range flags {
		if f.Type == flagBool {
			continue
		}
		fmt.Fprintf(&b, "        %s)\n", bashFlagPattern(f))
		switch f.Type {
		case flagEnum:
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))\n", strings.Join(f.Values, " "))
		case flagDir:
			b.WriteString("            COMPREPLY=($(compgen -d -- \"$cur\"))\n")
		case flagFile, flagString:
			b.WriteString("            COMPREPLY=($(compgen -f -- \"$cur\"))\n")
		default:
			b.WriteString("            COMPREPLY=()\n")
		}
		b.WriteString("            return\n            ;;\n")
	}
	b.WriteString("    esac\n\n")

	var all []string
	for _, f := range flags {
		all = append(all, "--"+f.Long)
		if f.Short != "" {
			all = append(all, "-"+f.Short)
		}
	}
	b.WriteString("    if [[ \"$cur\" == -* ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))\n", strings.Join(all, " "))
	b.WriteString("    elif [[ $COMP_CWORD -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W \"%s\" -- \"$cur\") $(compgen -d -- \"$cur\"))\n", strings.Join(commandNames(), " "))
	b.WriteString("    else\n")
	b.WriteString("        COMPREPLY=($(compgen -d -- \"$cur\"))\n")
	b.WriteString("    fi\n}\n\n")
	b.WriteString("complete -F _site2pdf_completions site2pdf\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func bashFlagPattern(f flagDef) string {
	if f.Short != "" {
		return "-" + f.Short + "|--" + f.Long
	}
	return "--" + f.Long
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

func generateZsh(w io.Writer) error {
	var b strings.Builder

	b.WriteString("#compdef site2pdf\n\n")
	b.WriteString("_site2pdf() {\n")
	b.WriteString("    local -a commands\n    commands=(\n")
	for _, c := range getCommands() {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")

	b.WriteString("    if (( CURRENT > 2 )); then\n")
	b.WriteString("        case $words[2] in\n")
	for _, c := range getCommands() {
		fmt.Fprintf(&b, "            %s)\n", c.Name)
		switch {
		case len(c.Flags) > 0:
			b.WriteString("                _arguments")
			for _, f := range c.Flags {
				fmt.Fprintf(&b, " '--%s[%s]'", f.Long, zshEscape(f.Desc))
			}
			b.WriteString("\n")
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "                _values '%s' %s\n", c.Name, strings.Join(c.Args, " "))
		}
		b.WriteString("                return\n                ;;\n")
	}
	b.WriteString("        esac\n    fi\n\n")

	b.WriteString("    _arguments -s \\\n")
	for _, f := range rootFlags() {
		fmt.Fprintf(&b, "        %s \\\n", zshFlagSpec(f))
	}
	b.WriteString("        '1: :->first' \\\n")
	b.WriteString("        && case $state in\n")
	b.WriteString("            first)\n")
	b.WriteString("                _describe 'command' commands\n")
	b.WriteString("                _files -/\n")
	b.WriteString("                ;;\n")
	b.WriteString("        esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _site2pdf site2pdf\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func zshFlagSpec(f flagDef) string {
	names := "'--" + f.Long
	if f.Short != "" {
		names = "'(-" + f.Short + " --" + f.Long + ")'{-" + f.Short + ",--" + f.Long + "}'"
	}
	arg := names + "[" + zshEscape(f.Desc) + "]"

	switch f.Type {
	case flagBool:
	case flagEnum:
		arg += ":value:(" + strings.Join(f.Values, " ") + ")"
	case flagDir:
		arg += ":directory:_files -/"
	case flagFile:
		arg += `:file:_files -g "` + strings.ReplaceAll(f.FileGlob, ",", " ") + `"`
	case flagString:
		arg += ":value:_files"
	default:
		arg += ":value: "
	}
	return arg + "'"
}

func zshEscape(s string) string {
	r := strings.NewReplacer("'", `'\''`, "[", `\[`, "]", `\]`, ":", `\:`)
	return r.Replace(s)
}

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

func generateFish(w io.Writer) error {
	var b strings.Builder

	b.WriteString("# fish completion for site2pdf\n\n")
	b.WriteString("function __fish_site2pdf_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_site2pdf_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test $cmd[2] = $argv[1]\n")
	b.WriteString("end\n\n")

	for _, c := range getCommands() {
		fmt.Fprintf(&b, "complete -c site2pdf -n __fish_site2pdf_needs_command -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}
	b.WriteString("\n")
	for _, c := range getCommands() {
		cond := fmt.Sprintf("'__fish_site2pdf_using_command %s'", c.Name)
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "complete -c site2pdf -n %s -f -a '%s'\n", cond, strings.Join(c.Args, " "))
		}
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "complete -c site2pdf -n %s -l %s -d '%s'\n", cond, f.Long, fishEscape(f.Desc))
		}
	}
	b.WriteString("\n")

	for _, f := range rootFlags() {
		line := "complete -c site2pdf"
		if f.Short != "" {
			line += " -s " + f.Short
		}
		line += " -l " + f.Long
		switch f.Type {
		case flagBool:
		case flagEnum:
			line += " -x -a '" + strings.Join(f.Values, " ") + "'"
		case flagDir:
			line += " -x -a '(__fish_complete_directories)'"
		case flagFile, flagString:
			line += " -r -F"
		default:
			line += " -x"
		}
		line += " -d '" + fishEscape(f.Desc) + "'"
		b.WriteString(line + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func fishEscape(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

// ---------------------------------------------------------------------------
// PowerShell
// ---------------------------------------------------------------------------

func generatePowerShell(w io.Writer) error {
	var b strings.Builder

	b.WriteString("# PowerShell completion for site2pdf\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName site2pdf -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")
	b.WriteString("    $elements = $commandAst.CommandElements | ForEach-Object { $_.ToString() }\n")
	b.WriteString("    $candidates = @()\n\n")

	b.WriteString("    if ($elements.Count -gt 1) {\n")
	b.WriteString("        switch ($elements[1]) {\n")
	for _, c := range getCommands() {
		words := append([]string{}, c.Args...)
		for _, f := range c.Flags {
			words = append(words, "--"+f.Long)
		}
		if len(words) == 0 {
			continue
		}
		fmt.Fprintf(&b, "            '%s' { $candidates = @(%s) }\n", c.Name, psList(words))
	}
	b.WriteString("        }\n    }\n\n")

	var root []string
	root = append(root, commandNames()...)
	for _, f := range rootFlags() {
		root = append(root, "--"+f.Long)
	}
	b.WriteString("    if ($candidates.Count -eq 0) {\n")
	fmt.Fprintf(&b, "        $candidates = @(%s)\n", psList(root))
	b.WriteString("    }\n\n")

	b.WriteString("    $candidates | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func psList(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = "'" + w + "'"
	}
	return strings.Join(quoted, ", ")
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: site2pdf completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(site2pdf completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(site2pdf completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    site2pdf completion fish > ~/.config/fish/completions/site2pdf.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    site2pdf completion powershell | Out-String | Invoke-Expression")
}
