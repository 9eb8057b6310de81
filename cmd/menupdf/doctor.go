package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-menupdf/internal/config"
	"github.com/alnah/go-menupdf/internal/fileutil"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"`
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable   bool   `json:"temp_writable"`
	OutputDir      string `json:"output_dir"`
	OutputWritable bool   `json:"output_writable"`
	Config         string `json:"config,omitempty"`
}

// doctorChecks holds the probes doctor runs, swappable in tests.
type doctorChecks struct {
	getenv   func(string) string
	lookPath func() (string, bool)
	version  func(bin string) (string, error)
	exists   func(path string) bool
}

func defaultDoctorChecks(env *Environment) doctorChecks {
	return doctorChecks{
		getenv:   env.Getenv,
		lookPath: launcher.LookPath,
		version:  chromeVersion,
		exists:   fileutil.FileExists,
	}
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	json   bool
	config string
	output string
}

// newDoctorFlagSet registers the doctor flags into f.
func newDoctorFlagSet(w io.Writer, f *doctorFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(w)
	fs.BoolVar(&f.json, "json", false, "print results as JSON")
	fs.StringVarP(&f.config, "config", "c", "", "config file to validate")
	fs.StringVarP(&f.output, "output", "o", "", "output directory to check")
	fs.Usage = func() { printDoctorUsage(w) }
	return fs
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags.
func runDoctorCmd(args []string, env *Environment) int {
	var f doctorFlags
	fs := newDoctorFlagSet(env.Stderr, &f)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	result := runDoctor(defaultDoctorChecks(env), f.config, f.output)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(c doctorChecks, configName, outputDir string) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  c.getenv("ROD_NO_SANDBOX"),
			BrowserBin: c.getenv("ROD_BROWSER_BIN"),
		},
	}

	checkChrome(result, c)
	checkEnvironment(result, c)
	checkSystem(result, configName, outputDir)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}

	return result
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult, c doctorChecks) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = c.lookPath()
		if !found {
			// The launcher downloads Chromium on first export.
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found; it will be downloaded on first export, or set ROD_BROWSER_BIN")
			return
		}
	}

	if !c.exists(chromePath) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	if v, err := c.version(chromePath); err == nil {
		result.Chrome.Version = v
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	// Same rule the browser launcher applies.
	result.Chrome.Sandbox = result.Env.NoSandbox != "1" &&
		result.Env.BrowserBin == "" &&
		c.getenv("CI") != "true"
}

// chromeVersion runs "<bin> --version".
func chromeVersion(bin string) (string, error) {
	out, err := exec.Command(bin, "--version").Output() // #nosec G204 -- browser path from env or launcher
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, c doctorChecks) {
	result.Env.Container, result.Env.ContainerHint = isContainer(c)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if c.getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && !sandboxDisabled(result, c) {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// sandboxDisabled mirrors the launcher's rule.
func sandboxDisabled(result *doctorResult, c doctorChecks) bool {
	return result.Env.NoSandbox == "1" || result.Env.BrowserBin != "" || c.getenv("CI") == "true"
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint names the signal detected.
func isContainer(c doctorChecks) (bool, string) {
	if c.getenv("MENUPDF_CONTAINER") == "1" {
		return true, "MENUPDF_CONTAINER=1"
	}
	if c.exists("/.dockerenv") {
		return true, "/.dockerenv"
	}
	if v := c.getenv("container"); v != "" {
		return true, "container=" + v
	}
	if c.getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies temp and output directories and the config file.
func checkSystem(result *doctorResult, configName, outputDir string) {
	if dirWritable(os.TempDir()) {
		result.System.TempWritable = true
	} else {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
	}

	if outputDir == "" {
		outputDir = "."
	}
	result.System.OutputDir = outputDir
	if dirWritable(nearestExisting(outputDir)) {
		result.System.OutputWritable = true
	} else {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Output directory not writable: %s", outputDir))
	}

	if configName != "" {
		if _, err := config.LoadConfig(configName); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Config: %v", err))
		} else {
			result.System.Config = configName
		}
	}
}

// nearestExisting returns dir or its closest existing ancestor, which is
// where an export would create the missing directories.
func nearestExisting(dir string) string {
	for {
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

// dirWritable creates and removes a probe file in dir.
func dirWritable(dir string) bool {
	f, err := os.CreateTemp(dir, "menupdf-doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "menupdf doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled")
		}
	} else {
		fmt.Fprintln(w, "  [--] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	if r.System.OutputWritable {
		fmt.Fprintf(w, "  [OK] Output directory: %s writable\n", r.System.OutputDir)
	} else {
		fmt.Fprintf(w, "  [ERROR] Output directory: %s not writable\n", r.System.OutputDir)
	}
	if r.System.Config != "" {
		fmt.Fprintf(w, "  [OK] Config: %s valid\n", r.System.Config)
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
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to export")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
