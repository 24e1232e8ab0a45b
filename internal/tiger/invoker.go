package tiger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tigermcp/internal/logging"
)

// Timeouts per invocation mode. Syntax checks are expected to be quick;
// everything else gets the full budget.
const (
	ValidateTimeout = 120 * time.Second
	SyntaxTimeout   = 60 * time.Second
)

// Config carries the resolved external paths the invoker needs. It is
// injected, never read from the environment here.
type Config struct {
	// TigerPath is the tiger executable.
	TigerPath string
	// ModsBase is the directory holding <name>.mod descriptor files.
	ModsBase string
}

// ValidateOptions are the optional flags of a full validate run.
type ValidateOptions struct {
	ShowVanilla bool
	ShowMods    bool
}

// Invoker builds tiger command lines, runs them through a Runner, and turns
// the captured outcome into diagnostics or a typed failure. It holds no
// state across calls.
type Invoker struct {
	cfg    Config
	runner Runner
	log    *slog.Logger
}

// NewInvoker wires an invoker to a runner. A nil runner gets the real
// ExecRunner; tests pass a fake.
func NewInvoker(cfg Config, r Runner) *Invoker {
	if r == nil {
		r = ExecRunner{}
	}
	return &Invoker{cfg: cfg, runner: r, log: logging.New("tiger")}
}

// ModsBase returns the configured mods directory.
func (inv *Invoker) ModsBase() string { return inv.cfg.ModsBase }

// DescriptorPath resolves a mod name to its descriptor file path.
func (inv *Invoker) DescriptorPath(mod string) string {
	return filepath.Join(inv.cfg.ModsBase, mod+".mod")
}

// Validate runs a full validation of the named mod and returns the decoded
// diagnostics.
func (inv *Invoker) Validate(ctx context.Context, mod string, opts ValidateOptions) ([]Diagnostic, error) {
	desc, err := inv.descriptor(mod)
	if err != nil {
		return nil, err
	}
	args := []string{"--json", desc}
	if opts.ShowVanilla {
		args = append(args, "--show-vanilla")
	}
	if opts.ShowMods {
		args = append(args, "--show-mods")
	}
	return inv.runParsed(ctx, args, ValidateTimeout)
}

// ValidateWithConfig runs a full validation with a custom tiger config file.
// The config file must exist; that is checked before anything is spawned.
func (inv *Invoker) ValidateWithConfig(ctx context.Context, mod, configPath string) ([]Diagnostic, error) {
	if _, err := os.Stat(configPath); err != nil {
		return nil, &Error{
			Kind:    KindNotFound,
			Message: fmt.Sprintf("configuration file not found: %s", configPath),
		}
	}
	desc, err := inv.descriptor(mod)
	if err != nil {
		return nil, err
	}
	return inv.runParsed(ctx, []string{"--json", desc, "--config", configPath}, ValidateTimeout)
}

// Consolidate runs tiger in consolidate mode and returns its report as raw
// text. Consolidated output collapses repeats of the same finding and is not
// a diagnostic array.
func (inv *Invoker) Consolidate(ctx context.Context, mod string) (string, error) {
	desc, err := inv.descriptor(mod)
	if err != nil {
		return "", err
	}
	out, err := inv.run(ctx, []string{desc, "--consolidate"}, ValidateTimeout)
	if err != nil {
		return "", err
	}
	return ParseConsolidated(out)
}

// CheckSyntax runs a full validation under the shorter budget and keeps only
// the syntax-level diagnostics.
func (inv *Invoker) CheckSyntax(ctx context.Context, mod string) ([]Diagnostic, error) {
	desc, err := inv.descriptor(mod)
	if err != nil {
		return nil, err
	}
	diags, err := inv.runParsed(ctx, []string{"--json", desc}, SyntaxTimeout)
	if err != nil {
		return nil, err
	}
	return FilterSyntax(diags), nil
}

// ListMods enumerates the descriptor files under the mods base, returning
// extension-stripped names in sorted order.
func (inv *Invoker) ListMods() ([]string, error) {
	entries, err := os.ReadDir(inv.cfg.ModsBase)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{
				Kind:    KindNotFound,
				Message: fmt.Sprintf("mods directory not found: %s", inv.cfg.ModsBase),
			}
		}
		return nil, &Error{
			Kind:    KindUnexpected,
			Message: fmt.Sprintf("list mods: %v", err),
		}
	}
	mods := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(e.Name(), ".mod"); ok {
			mods = append(mods, name)
		}
	}
	sort.Strings(mods)
	return mods, nil
}

// descriptor resolves and existence-checks a mod's descriptor file. Absence
// is terminal for the call; no process is spawned.
func (inv *Invoker) descriptor(mod string) (string, error) {
	desc := inv.DescriptorPath(mod)
	if _, err := os.Stat(desc); err != nil {
		return "", &Error{
			Kind:    KindNotFound,
			Message: fmt.Sprintf("mod file not found: %s", desc),
		}
	}
	return desc, nil
}

func (inv *Invoker) runParsed(ctx context.Context, args []string, timeout time.Duration) ([]Diagnostic, error) {
	out, err := inv.run(ctx, args, timeout)
	if err != nil {
		return nil, err
	}
	return ParseDiagnostics(out)
}

// run launches tiger and maps every spawn-level outcome to a typed result.
// No error from the runner propagates raw.
func (inv *Invoker) run(ctx context.Context, args []string, timeout time.Duration) (Outcome, error) {
	inv.log.Debug("running tiger", "path", inv.cfg.TigerPath, "args", args, "timeout", timeout)

	out, err := inv.runner.Run(ctx, inv.cfg.TigerPath, args, timeout)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			inv.log.Warn("tiger executable not found", "path", inv.cfg.TigerPath)
			return Outcome{}, &Error{
				Kind:    KindToolNotFound,
				Message: fmt.Sprintf("tiger executable not found at: %s", inv.cfg.TigerPath),
			}
		}
		return Outcome{}, &Error{
			Kind:    KindUnexpected,
			Message: fmt.Sprintf("unexpected error: %v", err),
		}
	}
	if out.TimedOut {
		inv.log.Warn("tiger run timed out", "timeout", timeout)
		return Outcome{}, &Error{
			Kind:    KindTimeout,
			Message: fmt.Sprintf("validation took too long (%d second timeout)", int(timeout.Seconds())),
		}
	}
	if out.ExitCode != 0 {
		// Exit status is logged but never decides success; the stream
		// contents do.
		inv.log.Debug("tiger exited non-zero", "exit_code", out.ExitCode)
	}
	return out, nil
}
