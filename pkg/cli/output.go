package cli

import (
	"encoding/json"
	"io"

	"github.com/m-mizutani/goerr/v2"
)

// envelope mirrors the JSON boundary surface of the surrounding routing
// layer: {success, data|error}.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// respond writes data either as a success envelope (with --json) or through
// the command's human-readable printer.
func respond(w io.Writer, jsonOut bool, data any, human func(io.Writer)) error {
	if !jsonOut {
		human(w)
		return nil
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(envelope{Success: true, Data: data}); err != nil {
		return goerr.Wrap(err, "failed to encode response")
	}
	return nil
}
