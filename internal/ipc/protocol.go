// Package ipc carries control commands from later invocations to the process
// that owns the active run.
package ipc

// Control commands understood by a run owner besides the trigger mode names.
const (
	CommandStatus = "status"
	CommandStop   = "stop"
	CommandCancel = "cancel"
)

// Request is one newline-delimited JSON command.
type Request struct {
	Command string `json:"command"`
}

// Response is the owner's reply; Error is set when OK is false.
type Response struct {
	OK      bool   `json:"ok"`
	State   string `json:"state,omitempty"`
	RunID   string `json:"run_id,omitempty"`
	Mode    string `json:"mode,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
