// Package scaffold creates the TypeScript practice workspace that accompanies
// the curriculum: a fixed directory tree for weekly exercises plus the
// package.json and tsconfig.json the examples compile against.
package scaffold

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WorkspaceName is the directory the practice tree is created under.
const WorkspaceName = "typescript-examples"

// Directories is the fixed practice tree, one directory per study topic.
// Parent directories are implied.
var Directories = []string{
	"week1-foundations/basic-types",
	"week1-foundations/functions",
	"week1-foundations/arrays-objects",
	"week2-intermediate/interfaces",
	"week2-intermediate/classes",
	"week2-intermediate/generics",
	"week3-advanced/utility-types",
	"week3-advanced/async-await",
	"week4-react/components",
	"week4-react/hooks",
	"exercises",
	"verification",
}

// PackageJSON mirrors the package.json written into the workspace.
type PackageJSON struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Description     string            `json:"description"`
	Scripts         map[string]string `json:"scripts"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// TSConfig mirrors the tsconfig.json written into the workspace.
type TSConfig struct {
	CompilerOptions CompilerOptions `json:"compilerOptions"`
	Include         []string        `json:"include"`
	Exclude         []string        `json:"exclude"`
}

// CompilerOptions is the strict ES2020/CommonJS compiler configuration the
// curriculum examples are written against.
type CompilerOptions struct {
	Target                           string   `json:"target"`
	Module                           string   `json:"module"`
	Lib                              []string `json:"lib"`
	OutDir                           string   `json:"outDir"`
	RootDir                          string   `json:"rootDir"`
	Strict                           bool     `json:"strict"`
	EsModuleInterop                  bool     `json:"esModuleInterop"`
	SkipLibCheck                     bool     `json:"skipLibCheck"`
	ForceConsistentCasingInFileNames bool     `json:"forceConsistentCasingInFileNames"`
	Declaration                      bool     `json:"declaration"`
	SourceMap                        bool     `json:"sourceMap"`
	ResolveJSONModule                bool     `json:"resolveJsonModule"`
}

// DefaultPackageJSON returns the package.json payload for a fresh workspace.
func DefaultPackageJSON() PackageJSON {
	return PackageJSON{
		Name:        WorkspaceName,
		Version:     "1.0.0",
		Description: "Practice workspace for the TypeScript curriculum",
		Scripts: map[string]string{
			"build":    "tsc",
			"dev":      "tsc --watch",
			"start":    "node dist/index.js",
			"verify":   "tsc --noEmit",
			"clean":    "rm -rf dist",
			"examples": "node verification/run-examples.js",
		},
		DevDependencies: map[string]string{
			"typescript":  "^5.3.3",
			"@types/node": "^20.10.0",
		},
	}
}

// DefaultTSConfig returns the tsconfig.json payload for a fresh workspace.
func DefaultTSConfig() TSConfig {
	return TSConfig{
		CompilerOptions: CompilerOptions{
			Target:                           "ES2020",
			Module:                           "commonjs",
			Lib:                              []string{"ES2020", "DOM"},
			OutDir:                           "./dist",
			RootDir:                          "./",
			Strict:                           true,
			EsModuleInterop:                  true,
			SkipLibCheck:                     true,
			ForceConsistentCasingInFileNames: true,
			Declaration:                      false,
			SourceMap:                        true,
			ResolveJSONModule:                true,
		},
		Include: []string{"week*/**/*", "exercises/**/*", "verification/**/*"},
		Exclude: []string{"node_modules", "dist"},
	}
}

// Result summarizes what a scaffold run created versus left untouched.
type Result struct {
	Root         string
	DirsCreated  int
	DirsExisting int
	FilesWritten []string
	FilesSkipped []string
}

// Scaffolder creates the practice workspace under a root directory.
type Scaffolder struct {
	root string
	out  io.Writer
}

// New creates a scaffolder that builds the workspace under parent. Progress
// messages go to out (pass io.Discard to silence them).
func New(parent string, out io.Writer) *Scaffolder {
	if out == nil {
		out = io.Discard
	}
	return &Scaffolder{
		root: filepath.Join(parent, WorkspaceName),
		out:  out,
	}
}

// Root returns the workspace directory the scaffolder targets.
func (s *Scaffolder) Root() string {
	return s.root
}

// Run creates the directory tree and writes the two config files. The
// operation is idempotent: existing directories are counted and skipped, and
// existing config files are never overwritten.
func (s *Scaffolder) Run() (*Result, error) {
	result := &Result{Root: s.root}

	fmt.Fprintf(s.out, "Creating TypeScript practice workspace in %s\n", s.root)

	for _, dir := range Directories {
		path := filepath.Join(s.root, dir)
		if _, err := os.Stat(path); err == nil {
			result.DirsExisting++
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		result.DirsCreated++
		fmt.Fprintf(s.out, "  ✓ %s\n", dir)
	}

	if err := s.writeConfig(result, "package.json", DefaultPackageJSON()); err != nil {
		return nil, err
	}
	if err := s.writeConfig(result, "tsconfig.json", DefaultTSConfig()); err != nil {
		return nil, err
	}

	fmt.Fprintf(s.out, "✓ Workspace ready: %d directories created, %d already existed\n",
		result.DirsCreated, result.DirsExisting)

	return result, nil
}

// writeConfig marshals payload as indented JSON into the workspace root,
// skipping files that already exist.
func (s *Scaffolder) writeConfig(result *Result, name string, payload any) error {
	path := filepath.Join(s.root, name)

	if _, err := os.Stat(path); err == nil {
		result.FilesSkipped = append(result.FilesSkipped, name)
		fmt.Fprintf(s.out, "  ⚠ %s already exists, skipping\n", name)
		return nil
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	result.FilesWritten = append(result.FilesWritten, name)
	fmt.Fprintf(s.out, "  ✓ %s\n", name)
	return nil
}

// Verify checks that every workspace directory and both config files exist
// and that the config files parse as JSON. It returns the list of problems
// found, empty when the workspace is intact.
func (s *Scaffolder) Verify() []string {
	var problems []string

	for _, dir := range Directories {
		path := filepath.Join(s.root, dir)
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			problems = append(problems, fmt.Sprintf("missing directory: %s", dir))
		}
	}

	for _, name := range []string{"package.json", "tsconfig.json"} {
		data, err := os.ReadFile(filepath.Join(s.root, name))
		if err != nil {
			problems = append(problems, fmt.Sprintf("missing file: %s", name))
			continue
		}
		var parsed map[string]any
		if err := json.Unmarshal(data, &parsed); err != nil {
			problems = append(problems, fmt.Sprintf("invalid JSON in %s: %v", name, err))
		}
	}

	return problems
}
