///usr/bin/true; exec /usr/bin/env go run "$0" "$@"

package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"j5.nz/gonert/boot"
)

// ============================================================================
// Data Structures
// ============================================================================

// Build modes for the runtime package.
const (
	ModeStandalone = "standalone" // executable; bootstrap included (needmain)
	ModeLibrary    = "library"    // c-archive; the host owns the entry point
	ModeShared     = "shared"     // c-shared; the host owns the entry point
)

// needMainTag selects the bootstrap entry point in cmd/gonert.
const needMainTag = "needmain"

var errInvalidConfig = errors.New("invalid config")

// Config is the parsed gonert.toml
type Config struct {
	Runtime RuntimeConfig `toml:"runtime"`
	Targets []*Target     `toml:"target"`
	Path    string        `toml:"-"`
}

// RuntimeConfig locates the runtime package and the build directory.
// Package is a go build package path, taken from the working directory;
// OutputDir and every target's Objects are relative to the config file.
type RuntimeConfig struct {
	Package   string `toml:"package"`
	OutputDir string `toml:"output_dir"`
}

// Target is one artifact to produce
type Target struct {
	Name      string   `toml:"name"`
	Mode      string   `toml:"mode"`
	Output    string   `toml:"output"`
	Objects   []string `toml:"objects"` // generated objects, standalone only
	Depends   []string `toml:"depends"`
	Tags      []string `toml:"tags"`
	GOOS      string   `toml:"goos"`
	GOARCH    string   `toml:"goarch"`
	RunOutput bool     `toml:"run"`
}

// ============================================================================
// Parser
// ============================================================================

// parseConfig decodes and validates a gonert.toml
func parseConfig(path string, content []byte) (*Config, error) {
	cfg := &Config{Path: path}
	md, err := toml.Decode(string(content), cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: %w: unknown key %q", path, errInvalidConfig, undecoded[0].String())
	}

	if cfg.Runtime.Package == "" {
		cfg.Runtime.Package = "./cmd/gonert"
	}
	if cfg.Runtime.OutputDir == "" {
		cfg.Runtime.OutputDir = "build"
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	seen := make(map[string]bool)
	for _, target := range cfg.Targets {
		if !isValidIdentifier(target.Name) {
			return fmt.Errorf("%w: invalid target name %q", errInvalidConfig, target.Name)
		}
		if seen[target.Name] {
			return fmt.Errorf("%w: duplicate target %q", errInvalidConfig, target.Name)
		}
		seen[target.Name] = true

		switch target.Mode {
		case ModeStandalone:
			if len(target.Objects) == 0 {
				return fmt.Errorf("%w: target %q: standalone build needs at least one object", errInvalidConfig, target.Name)
			}
			for _, obj := range target.Objects {
				if strings.ContainsAny(obj, `'"`) {
					return fmt.Errorf("%w: target %q: object path %q contains a quote", errInvalidConfig, target.Name, obj)
				}
			}
		case ModeLibrary, ModeShared:
			if len(target.Objects) > 0 {
				return fmt.Errorf("%w: target %q: objects are only linked in standalone builds", errInvalidConfig, target.Name)
			}
			if target.RunOutput {
				return fmt.Errorf("%w: target %q: only standalone builds can run", errInvalidConfig, target.Name)
			}
		default:
			return fmt.Errorf("%w: target %q: unknown mode %q", errInvalidConfig, target.Name, target.Mode)
		}

		for _, tag := range target.Tags {
			if tag == needMainTag {
				return fmt.Errorf("%w: target %q: %s is set by the mode, not by tags", errInvalidConfig, target.Name, needMainTag)
			}
		}
	}
	for _, target := range cfg.Targets {
		for _, dep := range target.Depends {
			if !seen[dep] {
				return fmt.Errorf("%w: target %q depends on unknown target %q", errInvalidConfig, target.Name, dep)
			}
		}
	}
	return nil
}

// resolve interprets a relative path from the config file's directory.
func (cfg *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(cfg.Path), path)
}

func (cfg *Config) target(name string) *Target {
	for _, target := range cfg.Targets {
		if target.Name == name {
			return target
		}
	}
	return nil
}

func isValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	for i < len(s) {
		r := s[i]
		if i == 0 {
			if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_') {
				return false
			}
		} else {
			if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
				return false
			}
		}
		i++
	}
	return true
}

// ============================================================================
// Dependency Resolution & Execution
// ============================================================================

// resolveDependencies returns targets in execution order (topological sort)
func (cfg *Config) resolveDependencies(targetName string) ([]*Target, error) {
	visited := make(map[string]bool)
	inStack := make(map[string]bool)
	return cfg.depVisit(targetName, visited, inStack, nil)
}

func (cfg *Config) depVisit(name string, visited map[string]bool, inStack map[string]bool, result []*Target) ([]*Target, error) {
	if inStack[name] {
		return result, fmt.Errorf("circular dependency detected involving %q", name)
	}
	if visited[name] {
		return result, nil
	}

	target := cfg.target(name)
	if target == nil {
		return result, fmt.Errorf("target %q not found", name)
	}

	inStack[name] = true
	for _, dep := range target.Depends {
		var err error
		result, err = cfg.depVisit(dep, visited, inStack, result)
		if err != nil {
			return result, err
		}
	}
	inStack[name] = false
	visited[name] = true
	return append(result, target), nil
}

// Executor builds targets
type Executor struct {
	Config *Config
	DryRun bool
}

// Run builds a target and its dependencies
func (e *Executor) Run(targetName string) error {
	targets, err := e.Config.resolveDependencies(targetName)
	if err != nil {
		return err
	}

	for _, target := range targets {
		if err := e.executeTarget(target); err != nil {
			return fmt.Errorf("target %s: %w", target.Name, err)
		}
	}
	return nil
}

func (e *Executor) executeTarget(target *Target) error {
	fmt.Printf("=== %s (%s) ===\n", target.Name, target.Mode)

	cmd, err := buildCommand(e.Config, target)
	if err != nil {
		return err
	}

	if e.DryRun {
		fmt.Printf("  %s%s\n", envPrefix(cmd.Env), strings.Join(cmd.Args, " "))
		return nil
	}

	out, err := goBuild(cmd)
	if err != nil {
		return err
	}
	fmt.Printf("built %s\n", out.Path)

	if target.RunOutput {
		status, err := runBuildOutput(out)
		if err != nil {
			return err
		}
		fmt.Printf("%s exited with status %d\n", out.Path, status)
	}
	return nil
}

func envPrefix(env []string) string {
	if len(env) == 0 {
		return ""
	}
	return strings.Join(env, " ") + " "
}

// ============================================================================
// Build System Core
// ============================================================================

type crossBuild struct {
	GOOS   string
	GOARCH string
}

func (cb crossBuild) IsNative() bool {
	return cb.GOOS == runtime.GOOS && cb.GOARCH == runtime.GOARCH
}

// OutputName picks the platform file name for an artifact of the given mode.
func (cb crossBuild) OutputName(name string, mode string) string {
	switch mode {
	case ModeLibrary:
		return "lib" + name + ".a"
	case ModeShared:
		switch cb.GOOS {
		case "darwin":
			return "lib" + name + ".dylib"
		case "windows":
			return name + ".dll"
		default:
			return "lib" + name + ".so"
		}
	}
	if cb.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

type goCommand struct {
	Args   []string
	Env    []string // overrides on top of the current environment
	Output string
}

type buildOutput struct {
	Path string
}

// buildCommand turns a target into its go build invocation.
func buildCommand(cfg *Config, target *Target) (goCommand, error) {
	cb := crossBuild{GOOS: runtime.GOOS, GOARCH: runtime.GOARCH}
	if target.GOOS != "" {
		cb.GOOS = target.GOOS
	}
	if target.GOARCH != "" {
		cb.GOARCH = target.GOARCH
	}

	output := target.Output
	if output == "" {
		output = cb.OutputName(target.Name, target.Mode)
	}
	output = filepath.Join(cfg.resolve(cfg.Runtime.OutputDir), output)

	var cmd goCommand
	cmd.Output = output
	cmd.Env = append(cmd.Env, "CGO_ENABLED=1")
	if !cb.IsNative() {
		cmd.Env = append(cmd.Env, "GOOS="+cb.GOOS, "GOARCH="+cb.GOARCH)
	}

	tags := append([]string(nil), target.Tags...)

	args := []string{"go", "build"}
	switch target.Mode {
	case ModeStandalone:
		tags = append(tags, needMainTag)
		objects := make([]string, 0, len(target.Objects))
		for _, obj := range target.Objects {
			abs, err := filepath.Abs(cfg.resolve(obj))
			if err != nil {
				return goCommand{}, fmt.Errorf("object %s: %w", obj, err)
			}
			objects = append(objects, abs)
		}
		extld := append(objects, requireDefinedFlags(cb.GOOS)...)
		args = append(args, "-ldflags", "-linkmode=external -extldflags '"+strings.Join(extld, " ")+"'")
	case ModeLibrary:
		args = append(args, "-buildmode=c-archive")
	case ModeShared:
		args = append(args, "-buildmode=c-shared")
	default:
		return goCommand{}, fmt.Errorf("unknown mode %q", target.Mode)
	}

	if len(tags) > 0 {
		sort.Strings(tags)
		args = append(args, "-tags", strings.Join(tags, ","))
	}
	args = append(args, "-o", output, cfg.Runtime.Package)
	cmd.Args = args
	return cmd, nil
}

// requireDefinedFlags makes the final link fail when the generated objects
// do not define the bootstrap symbols. cmd/gonert only references them
// weakly, so without these flags a missing symbol would link and fail at
// run time instead. Mach-O symbols carry a leading underscore. PE
// toolchains have no common spelling and get no flags.
func requireDefinedFlags(goos string) []string {
	symbols := []string{boot.InitSymbol, boot.MainSymbol}
	var flags []string
	for _, sym := range symbols {
		switch goos {
		case "windows":
			return nil
		case "darwin", "ios":
			flags = append(flags, "-Wl,-u,_"+sym)
		default:
			flags = append(flags, "-Wl,--require-defined="+sym)
		}
	}
	return flags
}

func goBuild(gc goCommand) (buildOutput, error) {
	if err := os.MkdirAll(filepath.Dir(gc.Output), 0755); err != nil {
		return buildOutput{}, fmt.Errorf("failed to create build directory: %w", err)
	}

	cmd := exec.Command(gc.Args[0], gc.Args[1:]...)
	cmd.Env = append(os.Environ(), gc.Env...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return buildOutput{}, fmt.Errorf("go build failed: %w", err)
	}
	return buildOutput{Path: gc.Output}, nil
}

// runBuildOutput runs a standalone program and reports its exit status.
// A nonzero status is the program's result, not a build failure.
func runBuildOutput(output buildOutput) (int, error) {
	path := output.Path
	if !filepath.IsAbs(path) {
		path = "." + string(filepath.Separator) + path
	}
	cmd := exec.Command(path)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to run build output: %w", err)
	}
	return 0, nil
}

// ============================================================================
// CLI Interface
// ============================================================================

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [options] [target]\n\nOptions:\n  -f <file>      Use specified config (default: tools/gonert.toml)\n  --dry-run      Show the go build commands without running them\n  --list         List all available targets\n  -h, --help     Show this help message\n", os.Args[0])
}

func main() {
	var configPath string
	var dryRun bool
	var listTargets bool
	var targetName string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-f":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "-f requires an argument\n")
				os.Exit(1)
			}
			i++
			configPath = args[i]
		case "--dry-run":
			dryRun = true
		case "--list":
			listTargets = true
		case "-h", "--help":
			usage()
			os.Exit(0)
		default:
			if strings.HasPrefix(arg, "-") {
				fmt.Fprintf(os.Stderr, "unknown option: %s\n", arg)
				usage()
				os.Exit(1)
			}
			if targetName != "" {
				fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", arg)
				usage()
				os.Exit(1)
			}
			targetName = arg
		}
	}

	if configPath == "" {
		configPath = filepath.Join("tools", "gonert.toml")
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read config: %v\n", err)
		os.Exit(1)
	}

	cfg, err := parseConfig(configPath, content)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse config: %v\n", err)
		os.Exit(1)
	}

	if listTargets {
		fmt.Println("Available targets:")
		for _, target := range cfg.Targets {
			fmt.Printf("  %-12s %s\n", target.Name, target.Mode)
		}
		os.Exit(0)
	}

	if targetName == "" {
		targetName = "default"
		if cfg.target(targetName) == nil {
			fmt.Fprintf(os.Stderr, "no target specified and no 'default' target found\n")
			usage()
			os.Exit(1)
		}
	}

	executor := &Executor{Config: cfg, DryRun: dryRun}
	if err := executor.Run(targetName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
