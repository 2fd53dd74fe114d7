// Package messages extracts react-intl message descriptors from parsed
// compilation units.
//
// A unit moves through Unopened → Scanning → (Skipped | Extracting) → Closed.
// Units never share state, so independent units can be run concurrently by
// the caller.
package messages

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mvp-joe/intl-extract/internal/diag"
	"github.com/mvp-joe/intl-extract/internal/jsast"
)

// Options configures an Extractor. All fields are optional.
type Options struct {
	// ModuleSourceName is the catalog module whose imports are tracked.
	// Default: DefaultModuleSourceName.
	ModuleSourceName string

	// MessagesDir enables sidecar output when non-empty.
	MessagesDir string

	// WorkingDir is the root sidecar paths are derived relative to.
	// Default: the process working directory at New.
	WorkingDir string

	// Logger receives MissingDefaultMessage warnings. Default: discard.
	Logger *slog.Logger
}

// Fingerprint identifies the options that change what a unit extracts.
// MessagesDir and WorkingDir only move the sidecar and are left out.
func (o Options) Fingerprint() string {
	return "module_source_name=" + o.ModuleSourceName
}

// State is the lifecycle state of a SourceUnit.
type State uint8

const (
	StateUnopened State = iota
	StateScanning
	StateSkipped
	StateExtracting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateScanning:
		return "scanning"
	case StateSkipped:
		return "skipped"
	case StateExtracting:
		return "extracting"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Action is returned by the unit entry step.
type Action uint8

const (
	Continue Action = iota
	SkipUnit
)

// Result is the metadata attached to a closed unit.
type Result struct {
	File     string
	Messages []Descriptor
	// Warnings holds the non-fatal diagnostics recorded for the unit.
	Warnings []*diag.Diagnostic
	// Skipped is set when the unit imports nothing tracked from the module.
	Skipped bool
	// OutputPath is the sidecar written for the unit, if any.
	OutputPath string
}

// Extractor runs the extraction lifecycle over parsed units.
type Extractor struct {
	opts Options
}

// New creates an Extractor, filling in option defaults.
func New(opts Options) (*Extractor, error) {
	if opts.ModuleSourceName == "" {
		opts.ModuleSourceName = DefaultModuleSourceName
	}
	if opts.WorkingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		opts.WorkingDir = wd
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{opts: opts}, nil
}

// Options returns the effective options.
func (e *Extractor) Options() Options {
	return e.opts
}

// Run extracts the messages of one unit. The first fatal diagnostic aborts
// the unit and is returned as a *diag.Diagnostic error. ctx is only checked
// before the unit starts.
func (e *Extractor) Run(ctx context.Context, file *jsast.File) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	u := e.open(file)
	if u.enter() == SkipUnit {
		return u.result(), nil
	}

	if err := jsast.WalkErr(file.Root, u.visit); err != nil {
		return nil, err
	}

	return u.exit()
}

// SourceUnit is the extraction context threaded through every handler of one unit.
type SourceUnit struct {
	File             *jsast.File
	ModuleSourceName string
	MessagesDir      string
	WorkingDir       string

	State       State
	Imports     ImportSpec
	Store       *Store
	Diagnostics []*diag.Diagnostic

	logger     *slog.Logger
	outputPath string
}

func (e *Extractor) open(file *jsast.File) *SourceUnit {
	return &SourceUnit{
		File:             file,
		ModuleSourceName: e.opts.ModuleSourceName,
		MessagesDir:      e.opts.MessagesDir,
		WorkingDir:       e.opts.WorkingDir,
		State:            StateUnopened,
		logger:           e.opts.Logger.With("file", file.Path),
	}
}

// enter resolves the tracked imports and decides whether the unit is worth
// traversing.
func (u *SourceUnit) enter() Action {
	u.State = StateScanning
	u.Imports = NewImportSpec(u.File, u.ModuleSourceName)

	if !u.Imports.Relevant() {
		u.State = StateSkipped
		u.logger.Debug("skipping unit without tracked imports", "module", u.ModuleSourceName)
		return SkipUnit
	}

	u.Store = NewStore(u.File.Path)
	u.State = StateExtracting
	return Continue
}

func (u *SourceUnit) visit(n *jsast.Node) error {
	switch n.Kind {
	case jsast.KindJSXOpeningElement:
		return u.visitElement(n)
	case jsast.KindCallExpression:
		return u.visitCall(n)
	}
	return nil
}

// visitElement handles <FormattedMessage id="..." defaultMessage="..." />.
// Spread attributes are skipped: descriptors passed that way are extracted
// where they are defined. An element without a static id is not an error.
func (u *SourceUnit) visitElement(n *jsast.Node) error {
	if !u.Imports.References(n.Tag, ComponentNames) {
		return nil
	}

	pairs := make([]Pair, 0, len(n.Attributes))
	for _, attr := range n.Attributes {
		if !attr.Is(jsast.KindJSXAttribute) {
			continue
		}
		pairs = append(pairs, Pair{Key: attr.Key, Value: attr.Value, Pos: attr.Pos})
	}

	d, err := ExtractDescriptor(u.File.Path, pairs)
	if err != nil {
		return err
	}
	if d.ID == "" {
		return nil
	}
	return u.insert(d, n.Pos)
}

// visitCall handles defineMessage({...}). A direct call always means the
// caller wants a message extracted, so a missing id is fatal.
func (u *SourceUnit) visitCall(n *jsast.Node) error {
	if !u.Imports.References(n.Callee, FunctionNames) {
		return nil
	}

	if len(n.Arguments) != 1 || !n.Arguments[0].Is(jsast.KindObjectExpression) {
		return diag.Newf(diag.ArgumentShapeError, u.File.Path, n.Pos.Line, n.Pos.Column,
			"`%s()` must be called with message descriptor defined via an object expression.", n.Callee.Name)
	}

	obj := n.Arguments[0]
	pairs := make([]Pair, 0, len(obj.Properties))
	for _, prop := range obj.Properties {
		if !prop.Is(jsast.KindProperty) {
			continue
		}
		pairs = append(pairs, Pair{Key: prop.Key, Value: prop.Value, Computed: prop.Computed, Pos: prop.Pos})
	}

	d, err := ExtractDescriptor(u.File.Path, pairs)
	if err != nil {
		return err
	}
	return u.insert(d, n.Pos)
}

func (u *SourceUnit) insert(d Descriptor, pos jsast.Pos) error {
	warning, err := u.Store.Insert(d, pos)
	if err != nil {
		return err
	}
	if warning != nil {
		u.Diagnostics = append(u.Diagnostics, warning)
		u.logger.Warn(warning.Message, "id", d.ID, "line", warning.Line)
	}
	return nil
}

// exit attaches the collected messages and writes the sidecar when configured.
func (u *SourceUnit) exit() (*Result, error) {
	u.State = StateClosed

	if u.MessagesDir != "" {
		path, err := SidecarPath(u.MessagesDir, u.WorkingDir, u.File.Path)
		if err != nil {
			return nil, err
		}
		if err := WriteSidecar(path, u.Store.Values()); err != nil {
			return nil, err
		}
		u.outputPath = path
		u.logger.Debug("wrote messages", "path", path, "count", u.Store.Len())
	}

	return u.result(), nil
}

func (u *SourceUnit) result() *Result {
	res := &Result{
		File:       u.File.Path,
		Warnings:   u.Diagnostics,
		Skipped:    u.State == StateSkipped,
		OutputPath: u.outputPath,
	}
	if u.Store != nil {
		res.Messages = u.Store.Values()
	}
	return res
}
