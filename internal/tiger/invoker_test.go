package tiger

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type runnerCall struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

// fakeRunner records invocations and replays a canned outcome. No process is
// ever spawned.
type fakeRunner struct {
	calls []runnerCall
	out   Outcome
	err   error
}

func (f *fakeRunner) Run(_ context.Context, name string, args []string, timeout time.Duration) (Outcome, error) {
	f.calls = append(f.calls, runnerCall{Name: name, Args: args, Timeout: timeout})
	return f.out, f.err
}

// newTestInvoker builds an invoker over a temp mods dir holding mymod.mod.
func newTestInvoker(t *testing.T, fake *fakeRunner) (*Invoker, string) {
	t.Helper()
	modsBase := t.TempDir()
	desc := filepath.Join(modsBase, "mymod.mod")
	if err := os.WriteFile(desc, []byte(`name = "My Mod"`), 0644); err != nil {
		t.Fatalf("write descriptor: %v", err)
	}
	inv := NewInvoker(Config{TigerPath: "/opt/tiger/ck3-tiger", ModsBase: modsBase}, fake)
	return inv, desc
}

func TestValidate_ArgShaping(t *testing.T) {
	cases := []struct {
		name string
		opts ValidateOptions
		want func(desc string) []string
	}{
		{"plain", ValidateOptions{}, func(d string) []string {
			return []string{"--json", d}
		}},
		{"vanilla", ValidateOptions{ShowVanilla: true}, func(d string) []string {
			return []string{"--json", d, "--show-vanilla"}
		}},
		{"both", ValidateOptions{ShowVanilla: true, ShowMods: true}, func(d string) []string {
			return []string{"--json", d, "--show-vanilla", "--show-mods"}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeRunner{}
			inv, desc := newTestInvoker(t, fake)

			if _, err := inv.Validate(context.Background(), "mymod", tc.opts); err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if len(fake.calls) != 1 {
				t.Fatalf("runner called %d times, want 1", len(fake.calls))
			}
			call := fake.calls[0]
			if call.Name != "/opt/tiger/ck3-tiger" {
				t.Errorf("executable = %q", call.Name)
			}
			if diff := cmp.Diff(tc.want(desc), call.Args); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
			if call.Timeout != ValidateTimeout {
				t.Errorf("timeout = %v, want %v", call.Timeout, ValidateTimeout)
			}
		})
	}
}

func TestValidate_MissingDescriptorDoesNotSpawn(t *testing.T) {
	fake := &fakeRunner{}
	inv, _ := newTestInvoker(t, fake)

	_, err := inv.Validate(context.Background(), "absent", ValidateOptions{})
	te, ok := AsError(err)
	if !ok || te.Kind != KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
	if !strings.Contains(te.Message, "absent.mod") {
		t.Errorf("Message = %q, want the missing descriptor path", te.Message)
	}
	if len(fake.calls) != 0 {
		t.Errorf("runner was called %d times for a missing descriptor", len(fake.calls))
	}
}

func TestValidateWithConfig_Args(t *testing.T) {
	fake := &fakeRunner{}
	inv, desc := newTestInvoker(t, fake)

	confPath := filepath.Join(t.TempDir(), "tiger.conf")
	if err := os.WriteFile(confPath, []byte("{}"), 0644); err != nil {
		t.Fatalf("write conf: %v", err)
	}

	if _, err := inv.ValidateWithConfig(context.Background(), "mymod", confPath); err != nil {
		t.Fatalf("ValidateWithConfig: %v", err)
	}
	want := []string{"--json", desc, "--config", confPath}
	if diff := cmp.Diff(want, fake.calls[0].Args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateWithConfig_MissingConfigDoesNotSpawn(t *testing.T) {
	fake := &fakeRunner{}
	inv, _ := newTestInvoker(t, fake)

	_, err := inv.ValidateWithConfig(context.Background(), "mymod", "/nonexistent/tiger.conf")
	te, ok := AsError(err)
	if !ok || te.Kind != KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
	if !strings.Contains(te.Message, "configuration file") {
		t.Errorf("Message = %q, want config-file wording", te.Message)
	}
	if len(fake.calls) != 0 {
		t.Errorf("runner was called despite missing config")
	}
}

func TestConsolidate_ArgsAndRawOutput(t *testing.T) {
	report := "error(syntax): 3 occurrences\n"
	fake := &fakeRunner{out: Outcome{Stdout: report}}
	inv, desc := newTestInvoker(t, fake)

	got, err := inv.Consolidate(context.Background(), "mymod")
	if err != nil {
		t.Fatalf("Consolidate: %v", err)
	}
	if got != report {
		t.Errorf("output = %q, want report verbatim", got)
	}
	// Consolidate mode has no --json; the descriptor is positional.
	want := []string{desc, "--consolidate"}
	if diff := cmp.Diff(want, fake.calls[0].Args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckSyntax_ShortTimeoutAndFiltering(t *testing.T) {
	fake := &fakeRunner{out: Outcome{
		Stdout: `[{"severity":"error","key":"syntax","locations":[{"path":"a.txt"}]},{"severity":"warning","key":"logic","locations":[{"path":"b.txt"}]}]`,
	}}
	inv, desc := newTestInvoker(t, fake)

	diags, err := inv.CheckSyntax(context.Background(), "mymod")
	if err != nil {
		t.Fatalf("CheckSyntax: %v", err)
	}
	if len(diags) != 1 || diags[0].Key != "syntax" {
		t.Errorf("diags = %v, want the syntax diagnostic only", diags)
	}
	call := fake.calls[0]
	if call.Timeout != SyntaxTimeout {
		t.Errorf("timeout = %v, want %v", call.Timeout, SyntaxTimeout)
	}
	if diff := cmp.Diff([]string{"--json", desc}, call.Args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_Timeout(t *testing.T) {
	fake := &fakeRunner{out: Outcome{Stdout: "[{partial", TimedOut: true}}
	inv, _ := newTestInvoker(t, fake)

	_, err := inv.Validate(context.Background(), "mymod", ValidateOptions{})
	te, ok := AsError(err)
	if !ok || te.Kind != KindTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}
	// Partial output from a timed-out run is never parsed, and the budget
	// is named in the message.
	if !strings.Contains(te.Message, "120 second") {
		t.Errorf("Message = %q, want the budget duration", te.Message)
	}
}

func TestValidate_ToolNotFound(t *testing.T) {
	fake := &fakeRunner{err: &exec.Error{Name: "ck3-tiger", Err: exec.ErrNotFound}}
	inv, _ := newTestInvoker(t, fake)

	_, err := inv.Validate(context.Background(), "mymod", ValidateOptions{})
	te, ok := AsError(err)
	if !ok || te.Kind != KindToolNotFound {
		t.Fatalf("expected tool_not_found, got %v", err)
	}
	if !strings.Contains(te.Message, "/opt/tiger/ck3-tiger") {
		t.Errorf("Message = %q, want the configured executable path", te.Message)
	}
}

func TestValidate_UnexpectedSpawnError(t *testing.T) {
	fake := &fakeRunner{err: errors.New("fork bomb averted")}
	inv, _ := newTestInvoker(t, fake)

	_, err := inv.Validate(context.Background(), "mymod", ValidateOptions{})
	te, ok := AsError(err)
	if !ok || te.Kind != KindUnexpected {
		t.Fatalf("expected unexpected, got %v", err)
	}
	if !strings.Contains(te.Message, "fork bomb averted") {
		t.Errorf("Message = %q, want the cause", te.Message)
	}
}

func TestValidate_ToolErrorCarriesStderr(t *testing.T) {
	fake := &fakeRunner{out: Outcome{Stderr: "config parse failure at line 3\n"}}
	inv, _ := newTestInvoker(t, fake)

	_, err := inv.Validate(context.Background(), "mymod", ValidateOptions{})
	te, ok := AsError(err)
	if !ok || te.Kind != KindToolError {
		t.Fatalf("expected tool_error, got %v", err)
	}
	if te.Stderr != "config parse failure at line 3\n" {
		t.Errorf("Stderr = %q, want it unchanged", te.Stderr)
	}
}

func TestValidate_CleanRun(t *testing.T) {
	fake := &fakeRunner{}
	inv, _ := newTestInvoker(t, fake)

	diags, err := inv.Validate(context.Background(), "mymod", ValidateOptions{})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("got %d diagnostics, want 0", len(diags))
	}
}

func TestListMods(t *testing.T) {
	modsBase := t.TempDir()
	for _, name := range []string{"zeta.mod", "alpha.mod", "readme.txt"} {
		if err := os.WriteFile(filepath.Join(modsBase, name), nil, 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(modsBase, "alpha"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	inv := NewInvoker(Config{TigerPath: "/opt/tiger/ck3-tiger", ModsBase: modsBase}, &fakeRunner{})
	mods, err := inv.ListMods()
	if err != nil {
		t.Fatalf("ListMods: %v", err)
	}
	if diff := cmp.Diff([]string{"alpha", "zeta"}, mods); diff != "" {
		t.Errorf("mods mismatch (-want +got):\n%s", diff)
	}
}

func TestListMods_MissingBase(t *testing.T) {
	inv := NewInvoker(Config{TigerPath: "/opt/tiger/ck3-tiger", ModsBase: "/nonexistent/mods"}, &fakeRunner{})
	_, err := inv.ListMods()
	te, ok := AsError(err)
	if !ok || te.Kind != KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
	if !strings.Contains(te.Message, "/nonexistent/mods") {
		t.Errorf("Message = %q, want the missing directory", te.Message)
	}
}
