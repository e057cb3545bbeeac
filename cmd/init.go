package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/far120/mystudy/internal/scaffold"
)

var initCmd = &cobra.Command{
	Use:     "init [directory]",
	Aliases: []string{"i"},
	Short:   "Initialize a new curriculum",
	Long: `Initialize a new curriculum in the given directory (default: current
directory). Creates a .mystudy.yml config file, the standard track
directories, and a starter lesson in each track.

Examples:
  mystudy init                     # Initialize in current directory
  mystudy init my-study            # Initialize in ./my-study
  mystudy init --with-workspace    # Also scaffold the TypeScript workspace`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var initWithWorkspace bool

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initWithWorkspace, "with-workspace", false, "Also create the TypeScript practice workspace")
}

const defaultConfigYAML = `# mystudy configuration
server:
  port: 8080
  host: localhost
  open: false

lessons:
  scan_paths:
    - "."
  exclude_patterns:
    - "README.md"
    - "node_modules"
    - ".git"
    - "typescript-examples"
  include_drafts: false

workspace:
  root: "typescript-examples"
  # Snippet output directory, relative to the workspace root
  extract_dir: "exercises"

progress:
  database: ".mystudy/progress.db"

development:
  hot_reload: true
`

var starterLessons = map[string]struct {
	filename string
	content  string
}{
	"html-css": {
		filename: "01-html-basics.md",
		content: `---
title: HTML Basics
order: 1
duration: 30
tags: [html, fundamentals]
---

# HTML Basics

Every web page starts with structure. Open your editor and create a file
called ` + "`index.html`" + `:

` + "```html" + `
<!DOCTYPE html>
<html>
  <head>
    <title>My First Page</title>
  </head>
  <body>
    <h1>Hello, web!</h1>
  </body>
</html>
` + "```" + `

Open it in your browser and you have a web page.
`,
	},
	"typescript": {
		filename: "01-basic-types.md",
		content: `---
title: Basic Types
order: 1
duration: 45
tags: [typescript, types]
---

# Basic Types

TypeScript adds static types on top of JavaScript:

` + "```typescript" + `
let name: string = "Ada";
let year: number = 1843;
let isEngine: boolean = true;
` + "```" + `

Run ` + "`mystudy scaffold`" + ` to create a workspace for trying these out.
`,
	},
	"react": {
		filename: "01-components.md",
		content: `---
title: Components
order: 1
duration: 60
tags: [react, components]
---

# Components

React builds interfaces from components. A component is a function that
returns markup:

` + "```tsx" + `
function Greeting({ name }: { name: string }) {
  return <h1>Hello, {name}!</h1>;
}
` + "```" + `
`,
	},
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, ".mystudy.yml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.WriteFile(configPath, []byte(defaultConfigYAML), 0644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		fmt.Printf("Created %s\n", configPath)
	} else {
		fmt.Printf("Keeping existing %s\n", configPath)
	}

	for track, lesson := range starterLessons {
		trackDir := filepath.Join(dir, track)
		if err := os.MkdirAll(trackDir, 0755); err != nil {
			return fmt.Errorf("creating track %s: %w", track, err)
		}

		lessonPath := filepath.Join(trackDir, lesson.filename)
		if _, err := os.Stat(lessonPath); os.IsNotExist(err) {
			if err := os.WriteFile(lessonPath, []byte(lesson.content), 0644); err != nil {
				return fmt.Errorf("writing starter lesson: %w", err)
			}
			fmt.Printf("Created %s\n", lessonPath)
		}
	}

	if initWithWorkspace {
		if _, err := scaffold.New(dir, io.Discard).Run(); err != nil {
			return fmt.Errorf("scaffolding workspace: %w", err)
		}
		fmt.Printf("Created %s\n", filepath.Join(dir, scaffold.WorkspaceName))
	}

	fmt.Println("\nCurriculum initialized. Try:")
	fmt.Println("  mystudy list")
	fmt.Println("  mystudy serve")

	return nil
}
