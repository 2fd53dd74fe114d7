package parsers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/mvp-joe/intl-extract/internal/diag"
	"github.com/mvp-joe/intl-extract/internal/jsast"
)

// grammarByExt maps file extensions to the grammar used to parse them.
// JavaScript goes through the TSX grammar so JSX is recognised.
var grammarByExt = map[string]string{
	".js":  "tsx",
	".jsx": "tsx",
	".mjs": "tsx",
	".cjs": "tsx",
	".tsx": "tsx",
	".ts":  "typescript",
	".mts": "typescript",
	".cts": "typescript",
}

// Extensions returns the file extensions the parser accepts.
func Extensions() []string {
	return []string{".cjs", ".cts", ".js", ".jsx", ".mjs", ".mts", ".ts", ".tsx"}
}

// Supports reports whether path has an extension the parser accepts.
func Supports(path string) bool {
	_, ok := grammarByExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Parser parses JavaScript and TypeScript sources into jsast files.
// It is safe for concurrent use; every call creates its own tree-sitter parser.
type Parser struct {
	tsx        *sitter.Language
	typescript *sitter.Language
}

// New creates a new Parser.
func New() *Parser {
	return &Parser{
		tsx:        sitter.NewLanguage(typescript.LanguageTSX()),
		typescript: sitter.NewLanguage(typescript.LanguageTypescript()),
	}
}

// ParseFile reads and parses a source file.
func (p *Parser) ParseFile(ctx context.Context, filePath string) (*jsast.File, error) {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	return p.Parse(ctx, filePath, source)
}

// Parse parses source as the file at filePath. A tree with syntax errors is
// reported as a fatal SyntaxError diagnostic.
func (p *Parser) Parse(ctx context.Context, filePath string, source []byte) (*jsast.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lang := p.tsx
	if grammarByExt[strings.ToLower(filepath.Ext(filePath))] == "typescript" {
		lang = p.typescript
	}

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse file: %s", filePath)
	}
	defer tree.Close()

	rootNode := tree.RootNode()
	if rootNode.HasError() {
		pos := nodePos(rootNode)
		if bad := firstSyntaxError(rootNode); bad != nil {
			pos = nodePos(bad)
		}
		return nil, diag.New(diag.SyntaxError, filePath, pos.Line, pos.Column, "unable to parse source")
	}

	l := &lowerer{source: source}
	root := l.lower(rootNode)

	return &jsast.File{
		Path:    filePath,
		Root:    root,
		Imports: l.imports,
	}, nil
}
