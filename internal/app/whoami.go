package app

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/chazuruo/agentdeck/internal/config"
)

// WhoamiOutput contains the information displayed by the whoami command.
type WhoamiOutput struct {
	ConfigPath     string `json:"config_path"`
	Creator        string `json:"creator"`
	Organization   string `json:"organization"`
	StoreBackend   string `json:"store_backend"`
	StoreLocation  string `json:"store_location"`
	FinalizePolicy string `json:"finalize_policy"`
}

// Whoami summarizes the identity and store of a loaded config. configPath
// is empty when the built-in defaults are in use.
func Whoami(cfg *config.Config, configPath string) *WhoamiOutput {
	location := cfg.Store.Path
	if cfg.Store.Backend == "redis" {
		location = fmt.Sprintf("%s (prefix %s)", cfg.Store.RedisURL, cfg.Store.KeyPrefix)
	}
	if configPath == "" {
		configPath = "(defaults)"
	}
	return &WhoamiOutput{
		ConfigPath:     configPath,
		Creator:        cfg.Identity.Creator,
		Organization:   cfg.Identity.Organization,
		StoreBackend:   cfg.Store.Backend,
		StoreLocation:  location,
		FinalizePolicy: cfg.Wizard.FinalizePolicy,
	}
}

// PrintWhoami prints whoami information in plain text format.
func PrintWhoami(w io.Writer, output *WhoamiOutput) {
	org := output.Organization
	if org == "" {
		org = "(none)"
	}
	fmt.Fprintf(w, "Config: %s\n", output.ConfigPath)
	fmt.Fprintf(w, "Creator: %s\n", output.Creator)
	fmt.Fprintf(w, "Organization: %s\n", org)
	fmt.Fprintf(w, "Store: %s %s\n", output.StoreBackend, output.StoreLocation)
	fmt.Fprintf(w, "Finalize policy: %s\n", output.FinalizePolicy)
}

// PrintWhoamiJSON prints whoami information in JSON format.
func PrintWhoamiJSON(w io.Writer, output *WhoamiOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
