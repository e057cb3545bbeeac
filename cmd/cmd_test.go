package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/far120/mystudy/internal/scaffold"
)

// chdir is a stand-in for testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestRootCommandHasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"init", "scaffold", "serve", "list", "validate", "extract", "progress", "doctor", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestRunInitCreatesCurriculum(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	initWithWorkspace = false
	require.NoError(t, runInit(initCmd, nil))

	assert.FileExists(t, filepath.Join(dir, ".mystudy.yml"))
	assert.FileExists(t, filepath.Join(dir, "html-css", "01-html-basics.md"))
	assert.FileExists(t, filepath.Join(dir, "typescript", "01-basic-types.md"))
	assert.FileExists(t, filepath.Join(dir, "react", "01-components.md"))
}

func TestRunInitKeepsExistingConfig(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	custom := []byte("server:\n  port: 9999\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".mystudy.yml"), custom, 0644))

	initWithWorkspace = false
	require.NoError(t, runInit(initCmd, nil))

	data, err := os.ReadFile(filepath.Join(dir, ".mystudy.yml"))
	require.NoError(t, err)
	assert.Equal(t, custom, data)
}

func TestRunInitWithWorkspace(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	initWithWorkspace = true
	defer func() { initWithWorkspace = false }()
	require.NoError(t, runInit(initCmd, nil))

	assert.FileExists(t, filepath.Join(dir, scaffold.WorkspaceName, "package.json"))
	assert.FileExists(t, filepath.Join(dir, scaffold.WorkspaceName, "tsconfig.json"))
}

func TestRunScaffoldIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	scaffoldDir = "."
	require.NoError(t, runScaffold(scaffoldCmd, nil))

	pkgPath := filepath.Join(dir, scaffold.WorkspaceName, "package.json")
	original, err := os.ReadFile(pkgPath)
	require.NoError(t, err)

	// Second run must not touch existing files
	require.NoError(t, os.WriteFile(pkgPath, []byte(`{"name":"edited"}`), 0644))
	require.NoError(t, runScaffold(scaffoldCmd, nil))

	edited, err := os.ReadFile(pkgPath)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"name":"edited"}`), edited)
	assert.NotEqual(t, original, edited)
}

func TestRunExtractDefaultsToWorkspaceExercises(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "typescript"), 0755))
	lesson := `---
title: Basics
order: 1
---

# Basics

` + "```ts\nconst n: number = 1;\n```\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "typescript", "01-basics.md"), []byte(lesson), 0644))

	extractOutput = ""
	extractLanguages = nil
	require.NoError(t, runExtract(extractCmd, nil))

	assert.FileExists(t, filepath.Join(dir, "typescript-examples", "exercises", "typescript", "basics-1.ts"))
	assert.NoDirExists(t, filepath.Join(dir, "typescript-examples", "typescript-examples"))
}

func TestRunValidateFailsOnBrokenLink(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "html-css"), 0755))
	lesson := `---
title: Broken
order: 1
---

# Broken

See [missing](./does-not-exist.md).
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "html-css", "01-broken.md"), []byte(lesson), 0644))

	err := runValidate(validateCmd, nil)
	assert.Error(t, err)
}

func TestRunValidatePassesOnCleanCurriculum(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "html-css"), 0755))
	lesson := `---
title: Clean
order: 1
---

# Clean

No links, no problems.

` + "```html\n<p>ok</p>\n```\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "html-css", "01-clean.md"), []byte(lesson), 0644))

	assert.NoError(t, runValidate(validateCmd, nil))
}
