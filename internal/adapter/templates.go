package adapter

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/klauern/ctxsync/internal/analyzer"
)

// render executes a parsed template against the analysis.
func render(tmpl *template.Template, p *analyzer.Project) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func mustParse(name, text string) *template.Template {
	return template.Must(template.New(name).Parse(text))
}

// projectOverview is the shared body describing the analyzed codebase. Each
// adapter wraps it in the tool's expected framing.
const projectOverview = `## Project Overview

{{- if .Description}}

{{.Description}}
{{- end}}

{{- if .Languages}}

### Languages
{{range .Languages}}
- {{.Name}} ({{.Files}} files)
{{- end}}
{{- end}}

{{- if .Frameworks}}

### Build & Runtime
{{range .Frameworks}}
- {{.}}
{{- end}}
{{- end}}

{{- if .Directories}}

### Layout
{{range .Directories}}
- ` + "`{{.}}/`" + `
{{- end}}
{{- end}}

{{- if .Entrypoints}}

### Entrypoints
{{range .Entrypoints}}
- ` + "`{{.}}`" + `
{{- end}}
{{- end}}
`

var claudeTemplate = mustParse("claude", `# {{.Name}}

This file gives Claude Code project context. It is generated; edits here are
propagated to the other assistants' context files by ctxsync.

`+projectOverview)

var cursorTemplate = mustParse("cursor", `---
description: Project context for {{.Name}}
alwaysApply: true
---

# {{.Name}}

`+projectOverview)

var codexTemplate = mustParse("codex", `# {{.Name}} - Agent Instructions

`+projectOverview)

var copilotTemplate = mustParse("copilot", `# {{.Name}} - Copilot Instructions

`+projectOverview)
