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

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagNumber
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags, without "*."
}

// commandDef describes a command for completion.
type commandDef struct {
	Name       string
	Desc       string
	Flags      []flagDef
	Args       []string // fixed argument values, e.g. shells
	TakesFiles bool     // accepts input files
}

// completionMeta holds completion hints for flags. Names, types and
// descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file extension pattern
	IsDir    bool     // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	// Enum flags
	"mode":        {Values: []string{"native", "raster"}},
	"page-size":   {Values: []string{"a4", "letter", "legal"}},
	"orientation": {Values: []string{"portrait", "landscape"}},
	"date-range":  {Values: []string{"auto", "auto:short", "auto:br", "auto:iso", "auto:us"}},

	// File flags
	"config": {FileGlob: "yaml"},

	// Directory flags
	"output":     {IsDir: true},
	"asset-path": {IsDir: true},
}

// inputExtensions are offered for export arguments.
var inputExtensions = []string{"json", "txt"}

// extractFlagsFromFlagSet lists the flags of fs, enriched with
// flagCompletionMeta.
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
		case "int", "float64":
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

	return flags
}

// getCommands returns the command registry for completion.
func getCommands() []commandDef {
	exportSet, _ := newExportFlagSet(io.Discard)
	doctorSet := newDoctorFlagSet(io.Discard, new(doctorFlags))

	return []commandDef{
		{Name: cmdExport, Desc: "Export weekly menus to PDF", Flags: extractFlagsFromFlagSet(exportSet), TakesFiles: true},
		{Name: cmdDoctor, Desc: "Check browser, environment and output setup", Flags: extractFlagsFromFlagSet(doctorSet)},
		{Name: cmdVersion, Desc: "Show version information"},
		{Name: cmdHelp, Desc: "Show help for a command", Args: []string{cmdExport, cmdDoctor, cmdVersion, cmdCompletion}},
		{Name: cmdCompletion, Desc: "Generate shell completion script", Args: []string{string(ShellBash), string(ShellZsh), string(ShellFish)}},
	}
}

// GenerateCompletion writes a completion script for shell to w.
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
func runCompletion(args []string, env *Environment) int {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return ExitSuccess
	}
	if err := GenerateCompletion(env.Stdout, Shell(args[0])); err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}
	return ExitSuccess
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: menupdf completion <shell>")
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
	fmt.Fprintln(w, "    eval \"$(menupdf completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(menupdf completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    menupdf completion fish > ~/.config/fish/completions/menupdf.fish")
}

// ---------------------------------------------------------------------------
// Generators
// ---------------------------------------------------------------------------

// errWriter records the first write error so generators can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func commandNames(cmds []commandDef) string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return strings.Join(names, " ")
}

func generateBash(w io.Writer, cmds []commandDef) error {
	ew := &errWriter{w: w}

	ew.printf("# bash completion for menupdf\n")
	ew.printf("_menupdf_completions() {\n")
	ew.printf("    local cur prev cmd\n")
	ew.printf("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	ew.printf("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	ew.printf("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	ew.printf("    if [[ ${COMP_CWORD} -eq 1 && ${cur} != -* ]]; then\n")
	ew.printf("        COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\") $(compgen -f -X '!*.@(json|txt)' -- \"${cur}\"))\n", commandNames(cmds))
	ew.printf("        return\n")
	ew.printf("    fi\n\n")
	ew.printf("    case \"${cmd}\" in\n")

	// Export is the default command, so it takes the catch-all branch last.
	for _, c := range cmds {
		if c.Name != cmdExport {
			writeBashCommand(ew, c.Name, c)
		}
	}
	for _, c := range cmds {
		if c.Name == cmdExport {
			writeBashCommand(ew, "*", c)
		}
	}

	ew.printf("    esac\n")
	ew.printf("}\n")
	ew.printf("complete -F _menupdf_completions menupdf\n")
	return ew.err
}

func writeBashCommand(ew *errWriter, pattern string, c commandDef) {
	ew.printf("        %s)\n", pattern)

	var valued []flagDef
	var words []string
	for _, f := range c.Flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
		if f.Type != flagBool {
			valued = append(valued, f)
		}
	}

	if len(valued) > 0 {
		ew.printf("            case \"${prev}\" in\n")
		for _, f := range valued {
			names := "--" + f.Long
			if f.Short != "" {
				names += "|-" + f.Short
			}
			switch f.Type {
			case flagEnum:
				ew.printf("                %s) COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\")); return ;;\n", names, strings.Join(f.Values, " "))
			case flagFile:
				ew.printf("                %s) COMPREPLY=($(compgen -f -X '!*.%s' -- \"${cur}\")); return ;;\n", names, f.FileGlob)
			case flagDir:
				ew.printf("                %s) COMPREPLY=($(compgen -d -- \"${cur}\")); return ;;\n", names)
			default:
				ew.printf("                %s) return ;;\n", names)
			}
		}
		ew.printf("            esac\n")
	}

	switch {
	case len(c.Args) > 0:
		ew.printf("            COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\"))\n", strings.Join(c.Args, " "))
	case c.TakesFiles:
		ew.printf("            if [[ ${cur} == -* ]]; then\n")
		ew.printf("                COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\"))\n", strings.Join(words, " "))
		ew.printf("            else\n")
		ew.printf("                COMPREPLY=($(compgen -f -X '!*.@(%s)' -- \"${cur}\") $(compgen -d -- \"${cur}\"))\n", strings.Join(inputExtensions, "|"))
		ew.printf("            fi\n")
	default:
		ew.printf("            COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\"))\n", strings.Join(words, " "))
	}
	ew.printf("            ;;\n")
}

func generateZsh(w io.Writer, cmds []commandDef) error {
	ew := &errWriter{w: w}

	ew.printf("#compdef menupdf\n\n")
	ew.printf("_menupdf() {\n")
	ew.printf("    local -a commands\n")
	ew.printf("    commands=(\n")
	for _, c := range cmds {
		ew.printf("        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	ew.printf("    )\n\n")
	ew.printf("    if (( CURRENT == 2 )); then\n")
	ew.printf("        _describe 'command' commands\n")
	ew.printf("        _files -g '*.(%s)'\n", strings.Join(inputExtensions, "|"))
	ew.printf("        return\n")
	ew.printf("    fi\n\n")
	ew.printf("    case \"${words[2]}\" in\n")

	// Export is the default command, so it takes the catch-all branch last.
	for _, c := range cmds {
		if c.Name != cmdExport {
			writeZshCommand(ew, c.Name, c)
		}
	}
	for _, c := range cmds {
		if c.Name == cmdExport {
			writeZshCommand(ew, "*", c)
		}
	}

	ew.printf("    esac\n")
	ew.printf("}\n\n")
	ew.printf("compdef _menupdf menupdf\n")
	return ew.err
}

func writeZshCommand(ew *errWriter, pattern string, c commandDef) {
	ew.printf("        %s)\n", pattern)
	ew.printf("            _arguments \\\n")
	for _, f := range c.Flags {
		action := zshAction(f)
		desc := zshEscape(f.Desc)
		if f.Short != "" {
			ew.printf("                '(-%s --%s)'{-%s,--%s}'[%s]%s' \\\n", f.Short, f.Long, f.Short, f.Long, desc, action)
		} else {
			ew.printf("                '--%s[%s]%s' \\\n", f.Long, desc, action)
		}
	}
	switch {
	case len(c.Args) > 0:
		ew.printf("                '1:argument:(%s)'\n", strings.Join(c.Args, " "))
	case c.TakesFiles:
		ew.printf("                '*:input:_files -g \"*.(%s)\"'\n", strings.Join(inputExtensions, "|"))
	default:
		ew.printf("                '*::'\n")
	}
	ew.printf("            ;;\n")
}

func zshAction(f flagDef) string {
	switch f.Type {
	case flagBool:
		return ""
	case flagEnum:
		return ":" + f.Long + ":(" + strings.Join(f.Values, " ") + ")"
	case flagFile:
		return ":" + f.Long + ":_files -g \"*." + f.FileGlob + "\""
	case flagDir:
		return ":" + f.Long + ":_directories"
	default:
		return ":" + f.Long + ":"
	}
}

// zshEscape makes s safe inside a single-quoted _arguments spec.
func zshEscape(s string) string {
	r := strings.NewReplacer("'", `'\''`, "[", `\[`, "]", `\]`, ":", `\:`)
	return r.Replace(s)
}

func generateFish(w io.Writer, cmds []commandDef) error {
	ew := &errWriter{w: w}

	ew.printf("# fish completion for menupdf\n")
	ew.printf("function __fish_menupdf_needs_command\n")
	ew.printf("    set -l cmd (commandline -opc)\n")
	ew.printf("    test (count $cmd) -eq 1\n")
	ew.printf("end\n\n")
	ew.printf("function __fish_menupdf_using_command\n")
	ew.printf("    set -l cmd (commandline -opc)\n")
	ew.printf("    test (count $cmd) -gt 1; and test \"$cmd[2]\" = $argv[1]\n")
	ew.printf("end\n\n")
	ew.printf("function __fish_menupdf_exporting\n")
	ew.printf("    set -l cmd (commandline -opc)\n")
	ew.printf("    test (count $cmd) -gt 1; and not contains -- $cmd[2] %s; or __fish_menupdf_using_command export\n", strings.Join(nonExportNames(cmds), " "))
	ew.printf("end\n\n")
	ew.printf("complete -c menupdf -f\n")

	for _, c := range cmds {
		ew.printf("complete -c menupdf -n '__fish_menupdf_needs_command' -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}
	ew.printf("complete -c menupdf -n '__fish_menupdf_needs_command; or __fish_menupdf_exporting' -F -a '(__fish_complete_suffix .json .txt)'\n")

	for _, c := range cmds {
		cond := "__fish_menupdf_using_command " + c.Name
		if c.Name == cmdExport {
			cond = "__fish_menupdf_exporting"
		}
		for _, arg := range c.Args {
			ew.printf("complete -c menupdf -n '%s' -a %s\n", cond, arg)
		}
		for _, f := range c.Flags {
			line := fmt.Sprintf("complete -c menupdf -n '%s' -l %s", cond, f.Long)
			if f.Short != "" {
				line += " -s " + f.Short
			}
			switch f.Type {
			case flagBool:
			case flagEnum:
				line += " -x -a '" + strings.Join(f.Values, " ") + "'"
			case flagFile:
				line += " -r -F"
			case flagDir:
				line += " -x -a '(__fish_complete_directories)'"
			default:
				line += " -x"
			}
			ew.printf("%s -d '%s'\n", line, fishEscape(f.Desc))
		}
	}
	return ew.err
}

func nonExportNames(cmds []commandDef) []string {
	var names []string
	for _, c := range cmds {
		if c.Name != cmdExport {
			names = append(names, c.Name)
		}
	}
	return names
}

func fishEscape(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}
