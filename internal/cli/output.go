package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rodaine/table"

	"github.com/chazuruo/agentdeck/internal/agents"
)

// OutputFormat defines the output format of listing commands.
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatPlain OutputFormat = "plain"
)

func parseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case FormatTable, FormatJSON, FormatPlain:
		return f, nil
	}
	return "", fmt.Errorf("invalid format: %s (must be table, json, or plain)", s)
}

func upperHeader(format string, vals ...interface{}) string {
	return strings.ToUpper(fmt.Sprintf(format, vals...))
}

func newTable(w io.Writer, headers ...interface{}) table.Table {
	return table.New(headers...).
		WithWriter(w).
		WithHeaderFormatter(upperHeader).
		WithPadding(2)
}

func printAgentsTable(w io.Writer, as []agents.Agent) {
	if len(as) == 0 {
		fmt.Fprintln(w, "No agents found.")
		return
	}
	tbl := newTable(w, "ID", "Name", "Type", "Status", "Organization", "Model", "Chats", "Rating")
	for _, a := range as {
		tbl.AddRow(a.ID, a.Name, a.Type, a.Status, dash(a.Organization), a.Model, a.TotalChats, rating(a.Rating))
	}
	tbl.Print()
}

func printAgentsPlain(w io.Writer, as []agents.Agent) {
	for _, a := range as {
		fmt.Fprintf(w, "%s\t%s\t%s\n", a.ID, a.Name, a.Status)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func rating(r float64) string {
	if r <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f", r)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
