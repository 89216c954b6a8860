// Package export renders agents as Markdown, YAML or JSON, or through a
// user supplied text/template.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/chazuruo/agentdeck/internal/agents"
	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
)

// Format represents the export format.
type Format string

const (
	// FormatMarkdown exports as Markdown.
	FormatMarkdown Format = "md"
	// FormatYAML exports as YAML.
	FormatYAML Format = "yaml"
	// FormatJSON exports as JSON.
	FormatJSON Format = "json"
)

// Options contains export options.
type Options struct {
	Format Format
	// Out is the output file. Empty or "-" means the caller prints the result.
	Out string
	// CustomTemplate is a template file path. Relative names are also looked
	// up in TemplateDir.
	CustomTemplate string
	// TemplateDir defaults to ~/.config/agentdeck/templates.
	TemplateDir string
}

// Exporter exports agents in various formats.
type Exporter struct {
	format   Format
	outPath  string
	template *template.Template
}

// Data is what templates are executed against.
type Data struct {
	agents.Agent
	Versions     []agents.PromptVersion
	Capabilities []string
	TagsString   string
}

// NewExporter creates a new exporter.
func NewExporter(opts Options) (*Exporter, error) {
	e := &Exporter{format: opts.Format, outPath: opts.Out}

	switch {
	case opts.CustomTemplate != "":
		tmpl, err := parseTemplateFile(opts.CustomTemplate, opts.TemplateDir)
		if err != nil {
			return nil, err
		}
		e.template = tmpl
	case opts.Format == FormatMarkdown:
		e.template = template.Must(template.New("export").Funcs(funcs).Parse(builtinMarkdownTemplate))
	case opts.Format == FormatYAML, opts.Format == FormatJSON:
	default:
		return nil, deckerrors.Invalidf("unsupported format: %s", opts.Format)
	}
	return e, nil
}

var funcs = template.FuncMap{
	"join":  strings.Join,
	"lower": strings.ToLower,
	"yesno": func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	},
}

// parseTemplateFile parses a template file, resolving bare names against dir.
func parseTemplateFile(path, dir string) (*template.Template, error) {
	if !filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			if dir == "" {
				if home, err := os.UserHomeDir(); err == nil {
					dir = filepath.Join(home, ".config", "agentdeck", "templates")
				}
			}
			if dir != "" {
				candidate := filepath.Join(dir, filepath.Base(path))
				if _, err := os.Stat(candidate); err == nil {
					path = candidate
				}
			}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template file: %w", err)
	}
	tmpl, err := template.New(filepath.Base(path)).Funcs(funcs).Parse(string(data))
	if err != nil {
		return nil, deckerrors.Invalidf("parsing template %s: %v", path, err)
	}
	return tmpl, nil
}

// Export renders one agent with its prompt history, writing it to the
// output file when one is configured.
func (e *Exporter) Export(a *agents.Agent, versions []agents.PromptVersion) (string, error) {
	output, err := e.render(a, versions)
	if err != nil {
		return "", err
	}
	if err := e.write(output); err != nil {
		return "", err
	}
	return output, nil
}

// ExportAll renders several agents. Markdown and templates are joined by a
// rule; YAML and JSON produce a single list document.
func (e *Exporter) ExportAll(as []agents.Agent) (string, error) {
	var output string
	switch {
	case e.template != nil:
		parts := make([]string, 0, len(as))
		for i := range as {
			part, err := e.render(&as[i], nil)
			if err != nil {
				return "", err
			}
			parts = append(parts, strings.TrimRight(part, "\n"))
		}
		output = strings.Join(parts, "\n\n---\n\n") + "\n"
	case e.format == FormatYAML:
		data, err := yaml.Marshal(as)
		if err != nil {
			return "", fmt.Errorf("encoding yaml: %w", err)
		}
		output = string(data)
	default:
		data, err := json.MarshalIndent(as, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding json: %w", err)
		}
		output = string(data) + "\n"
	}
	if err := e.write(output); err != nil {
		return "", err
	}
	return output, nil
}

func (e *Exporter) render(a *agents.Agent, versions []agents.PromptVersion) (string, error) {
	if e.template != nil {
		var buf bytes.Buffer
		if err := e.template.Execute(&buf, templateData(a, versions)); err != nil {
			return "", fmt.Errorf("executing template: %w", err)
		}
		return buf.String(), nil
	}

	doc := struct {
		agents.Agent `yaml:",inline"`
		Versions     []agents.PromptVersion `yaml:"versions,omitempty" json:"versions,omitempty"`
	}{*a, versions}

	if e.format == FormatYAML {
		data, err := yaml.Marshal(doc)
		if err != nil {
			return "", fmt.Errorf("encoding yaml: %w", err)
		}
		return string(data), nil
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding json: %w", err)
	}
	return string(data) + "\n", nil
}

func (e *Exporter) write(output string) error {
	if e.outPath == "" || e.outPath == "-" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(e.outPath), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(e.outPath, []byte(output), 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	return nil
}

func templateData(a *agents.Agent, versions []agents.PromptVersion) Data {
	d := Data{
		Agent:      *a,
		Versions:   versions,
		TagsString: strings.Join(a.Tags, ", "),
	}
	if a.Config != nil {
		d.Capabilities = a.Config.Capabilities.Enabled()
	}
	return d
}

// builtinMarkdownTemplate is the default Markdown template.
const builtinMarkdownTemplate = `# {{.Name}}

**ID:** {{.ID}}
{{if .Description}}
{{.Description}}
{{end}}
| Field | Value |
|-------|-------|
| Creator | {{.Creator}} |
| Type | {{.Type}} |
| Model | {{.Model}} |
| Status | {{.Status}} |
{{- if .Organization}}
| Organization | {{.Organization}} |
{{- end}}
{{- if .Category}}
| Category | {{.Category}} |
{{- end}}
| Chats | {{.TotalChats}} |
{{- if .Rating}}
| Rating | {{printf "%.1f" .Rating}} |
{{- end}}
{{if .Tags}}
**Tags:** {{.TagsString}}
{{end}}
{{- with .Config}}
## Configuration

- Language: {{.Language}}
- Pricing: {{.Pricing.Tier}} / {{.Pricing.Model}}
- Knowledge: chunk size {{.Knowledge.ChunkSize}}, top-k {{.Knowledge.TopK}}
- Response time limit: {{.Settings.ResponseTimeLimit}}s
- Analytics: {{yesno .Analytics.Enabled}}
{{- if $.Capabilities}}
- Capabilities: {{join $.Capabilities ", "}}
{{- end}}
{{if .SystemPrompt}}
### System prompt

` + "```" + `
{{.SystemPrompt}}
` + "```" + `
{{end}}
{{- end}}
{{- with .Listing}}
## Marketplace listing

- Status: {{.Status}}
- Pricing: {{.Pricing.Model}}{{if ne .Pricing.Model "free"}} {{printf "%.2f" .Pricing.Price}} {{.Pricing.Currency}}{{end}}
{{end}}
{{- if .Versions}}
## Versions

{{range .Versions}}- **{{.ID}}** ({{.Status}}, {{.Branch}}) {{.Message}} by {{.Author}}
{{end}}
{{- end}}
---
*Generated by agentdeck*
`
