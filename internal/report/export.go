package report

import (
	"encoding/json"
	"io"

	"github.com/BurntSushi/toml"

	"github.com/accrava/secretsweep/internal/types"
)

// WriteJSON writes the result as indented JSON. Empty sections encode as [].
func WriteJSON(w io.Writer, r types.ScanResult) error {
	if r.Scripts == nil {
		r.Scripts = []types.Finding{}
	}
	if r.Storage == nil {
		r.Storage = []types.Finding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteTOML writes the result as a TOML document.
func WriteTOML(w io.Writer, r types.ScanResult) error {
	return toml.NewEncoder(w).Encode(r)
}
