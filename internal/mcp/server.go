package mcp

import (
	"context"
	"fmt"

	"tigermcp/internal/logging"
	"tigermcp/internal/tiger"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP SDK server around a tiger invoker. Each tool call is
// independent and stateless; the protocol layer owns multiplexing.
type Server struct {
	MCPServer *sdkmcp.Server
	invoker   *tiger.Invoker
}

// NewServer creates an MCP server exposing the tiger validation tools.
func NewServer(inv *tiger.Invoker) *Server {
	s := &Server{invoker: inv}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "ck3-tiger-validator", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "validate_mod",
		Description: "Validates a CK3 mod, with optional checks for vanilla and other mod conflicts.",
	}, s.handleValidateMod)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "consolidate_errors",
		Description: "Validates a mod, but only logs the first occurrence of each error type. Returns the raw consolidated output.",
	}, s.handleConsolidateErrors)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "validate_with_custom_config",
		Description: "Validates a mod using a custom tiger configuration file.",
	}, s.handleValidateWithCustomConfig)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "validate_file",
		Description: "Validates a specific file in the context of a mod. Runs a full validation and returns only the errors touching that file.",
	}, s.handleValidateFile)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "check_syntax_only",
		Description: "Performs a quick syntax-only check without deep analysis.",
	}, s.handleCheckSyntaxOnly)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_available_mods",
		Description: "Returns the list of mods found under the configured mods directory.",
	}, s.handleListAvailableMods)
}

// --- Tool input/output types ---

type validateModInput struct {
	ModName            string `json:"mod_name" jsonschema:"name of the mod (descriptor file stem under the mods base)"`
	ShowVanillaErrors  bool   `json:"show_vanilla_errors,omitempty" jsonschema:"if true, includes errors from base game files"`
	ShowOtherModErrors bool   `json:"show_other_mod_errors,omitempty" jsonschema:"if true, includes errors from other enabled mods"`
}

type validateModOutput struct {
	Success          bool                          `json:"success"`
	Valid            bool                          `json:"valid"`
	TotalErrors      int                           `json:"total_errors"`
	Errors           []tiger.Diagnostic            `json:"errors"`
	ErrorsBySeverity map[string][]tiger.Diagnostic `json:"errors_by_severity,omitempty"`
	Summary          string                        `json:"summary,omitempty"`
	Error            string                        `json:"error,omitempty"`
	Stderr           string                        `json:"stderr,omitempty"`
}

type consolidateErrorsInput struct {
	ModName string `json:"mod_name" jsonschema:"name of the mod"`
}

type consolidateErrorsOutput struct {
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
	Stderr  string `json:"stderr,omitempty"`
}

type validateWithCustomConfigInput struct {
	ModName    string `json:"mod_name" jsonschema:"name of the mod"`
	ConfigPath string `json:"config_path" jsonschema:"absolute path to the .conf tiger configuration file"`
}

type validateFileInput struct {
	FilePath string `json:"file_path" jsonschema:"path of the file within the mod, relative to the mod root"`
	ModName  string `json:"mod_name" jsonschema:"name of the mod"`
}

type validateFileOutput struct {
	Success     bool               `json:"success"`
	File        string             `json:"file,omitempty"`
	Valid       bool               `json:"valid"`
	ErrorsCount int                `json:"errors_count"`
	Errors      []tiger.Diagnostic `json:"errors"`
	Error       string             `json:"error,omitempty"`
	Stderr      string             `json:"stderr,omitempty"`
}

type checkSyntaxOnlyInput struct {
	ModName string `json:"mod_name" jsonschema:"name of the mod"`
}

type checkSyntaxOnlyOutput struct {
	Success           bool               `json:"success"`
	Valid             bool               `json:"valid"`
	SyntaxErrorsCount int                `json:"syntax_errors_count"`
	Errors            []tiger.Diagnostic `json:"errors"`
	Error             string             `json:"error,omitempty"`
	Stderr            string             `json:"stderr,omitempty"`
}

type listAvailableModsInput struct{}

type listAvailableModsOutput struct {
	Success  bool     `json:"success"`
	Mods     []string `json:"mods"`
	Count    int      `json:"count"`
	BasePath string   `json:"base_path,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// --- Tool handlers ---

// Failures never cross the tool boundary as protocol errors: every handler
// returns a structured result with success=false and a diagnosable message.

func (s *Server) handleValidateMod(ctx context.Context, _ *sdkmcp.CallToolRequest, input validateModInput) (*sdkmcp.CallToolResult, validateModOutput, error) {
	diags, err := s.invoker.Validate(ctx, input.ModName, tiger.ValidateOptions{
		ShowVanilla: input.ShowVanillaErrors,
		ShowMods:    input.ShowOtherModErrors,
	})
	if err != nil {
		logFailure("validate_mod", input.ModName, err)
		msg, stderr := failureParts(err)
		return nil, validateModOutput{Error: msg, Stderr: stderr}, nil
	}
	return nil, validationResult(diags), nil
}

func (s *Server) handleConsolidateErrors(ctx context.Context, _ *sdkmcp.CallToolRequest, input consolidateErrorsInput) (*sdkmcp.CallToolResult, consolidateErrorsOutput, error) {
	output, err := s.invoker.Consolidate(ctx, input.ModName)
	if err != nil {
		logFailure("consolidate_errors", input.ModName, err)
		msg, stderr := failureParts(err)
		return nil, consolidateErrorsOutput{Error: msg, Stderr: stderr}, nil
	}
	return nil, consolidateErrorsOutput{Success: true, Output: output}, nil
}

func (s *Server) handleValidateWithCustomConfig(ctx context.Context, _ *sdkmcp.CallToolRequest, input validateWithCustomConfigInput) (*sdkmcp.CallToolResult, validateModOutput, error) {
	diags, err := s.invoker.ValidateWithConfig(ctx, input.ModName, input.ConfigPath)
	if err != nil {
		logFailure("validate_with_custom_config", input.ModName, err)
		msg, stderr := failureParts(err)
		return nil, validateModOutput{Error: msg, Stderr: stderr}, nil
	}
	return nil, validationResult(diags), nil
}

func (s *Server) handleValidateFile(ctx context.Context, _ *sdkmcp.CallToolRequest, input validateFileInput) (*sdkmcp.CallToolResult, validateFileOutput, error) {
	// Defined as "full validate, then file-scope": its failure modes are
	// exactly those of validate_mod, propagated unchanged.
	diags, err := s.invoker.Validate(ctx, input.ModName, tiger.ValidateOptions{})
	if err != nil {
		logFailure("validate_file", input.ModName, err)
		msg, stderr := failureParts(err)
		return nil, validateFileOutput{Error: msg, Stderr: stderr}, nil
	}
	fileErrors := tiger.FilterByFile(diags, input.FilePath)
	return nil, validateFileOutput{
		Success:     true,
		File:        input.FilePath,
		Valid:       len(fileErrors) == 0,
		ErrorsCount: len(fileErrors),
		Errors:      nonNil(fileErrors),
	}, nil
}

func (s *Server) handleCheckSyntaxOnly(ctx context.Context, _ *sdkmcp.CallToolRequest, input checkSyntaxOnlyInput) (*sdkmcp.CallToolResult, checkSyntaxOnlyOutput, error) {
	diags, err := s.invoker.CheckSyntax(ctx, input.ModName)
	if err != nil {
		logFailure("check_syntax_only", input.ModName, err)
		msg, stderr := failureParts(err)
		return nil, checkSyntaxOnlyOutput{Error: msg, Stderr: stderr}, nil
	}
	return nil, checkSyntaxOnlyOutput{
		Success:           true,
		Valid:             len(diags) == 0,
		SyntaxErrorsCount: len(diags),
		Errors:            nonNil(diags),
	}, nil
}

func (s *Server) handleListAvailableMods(ctx context.Context, _ *sdkmcp.CallToolRequest, _ listAvailableModsInput) (*sdkmcp.CallToolResult, listAvailableModsOutput, error) {
	mods, err := s.invoker.ListMods()
	if err != nil {
		logFailure("list_available_mods", "", err)
		msg, _ := failureParts(err)
		return nil, listAvailableModsOutput{Error: msg}, nil
	}
	return nil, listAvailableModsOutput{
		Success:  true,
		Mods:     mods,
		Count:    len(mods),
		BasePath: s.invoker.ModsBase(),
	}, nil
}

// --- Helpers ---

func validationResult(diags []tiger.Diagnostic) validateModOutput {
	rep := tiger.BucketBySeverity(diags)
	summary := "No errors found"
	if rep.Total > 0 {
		summary = fmt.Sprintf("Found errors: %d", rep.Total)
	}
	return validateModOutput{
		Success:          true,
		Valid:            rep.Valid,
		TotalErrors:      rep.Total,
		Errors:           nonNil(rep.All),
		ErrorsBySeverity: rep.Buckets,
		Summary:          summary,
	}
}

// failureParts splits a typed failure into the message and, for tool errors,
// the validator's own stderr text.
func failureParts(err error) (msg, stderr string) {
	if te, ok := tiger.AsError(err); ok {
		return te.Message, te.Stderr
	}
	return err.Error(), ""
}

func logFailure(tool, mod string, err error) {
	logging.New("tiger-tools").Warn("tool call failed",
		"tool", tool, "mod", mod, "kind", tiger.KindOf(err).String(), "err", err)
}

// nonNil keeps empty diagnostic lists as [] rather than null in responses.
func nonNil(diags []tiger.Diagnostic) []tiger.Diagnostic {
	if diags == nil {
		return []tiger.Diagnostic{}
	}
	return diags
}
