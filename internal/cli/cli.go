// Package cli parses the lma command line.
package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Command string

const (
	CommandActivate  Command = "activate"
	CommandVoice     Command = "voice"
	CommandSelection Command = "selection"
	CommandAsk       Command = "ask"
	CommandStop      Command = "stop"
	CommandCancel    Command = "cancel"
	CommandStatus    Command = "status"
	CommandDevices   Command = "devices"
	CommandDoctor    Command = "doctor"
	CommandAudit     Command = "audit"
	CommandVersion   Command = "version"
	CommandHelp      Command = "help"
)

// DefaultAuditLimit is the number of audit rows printed without --limit.
const DefaultAuditLimit = 20

var validCommands = map[Command]struct{}{
	CommandActivate:  {},
	CommandVoice:     {},
	CommandSelection: {},
	CommandAsk:       {},
	CommandStop:      {},
	CommandCancel:    {},
	CommandStatus:    {},
	CommandDevices:   {},
	CommandDoctor:    {},
	CommandAudit:     {},
	CommandVersion:   {},
	CommandHelp:      {},
}

// Trigger reports whether the command starts an assistant run.
func (c Command) Trigger() bool {
	switch c {
	case CommandActivate, CommandVoice, CommandSelection, CommandAsk:
		return true
	default:
		return false
	}
}

type Parsed struct {
	Command    Command
	ConfigPath string
	Limit      int
	ShowHelp   bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true, Limit: DefaultAuditLimit}
	limitSet := false

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		case "--limit":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--limit requires a number")
			}
			limit, err := strconv.Atoi(args[i])
			if err != nil || limit <= 0 {
				return Parsed{}, fmt.Errorf("--limit must be a positive integer, got %q", args[i])
			}
			parsed.Limit = limit
			limitSet = true
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
			if i != len(args)-1 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
		}
	}

	if limitSet && parsed.Command != CommandAudit {
		return Parsed{}, errors.New("--limit only applies to the audit command")
	}
	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Linux Multimodal Assistant

Usage:
  %[1]s [--config PATH] <command>

Triggers (bind these to hotkeys):
  activate   Full multimodal: screenshot + voice
  voice      Voice-only input
  selection  Process selected text
  ask        Type a question in a dialog

Run control:
  stop       Stop listening and send the request
  cancel     Cancel listening and discard audio
  status     Print current state

Tools:
  devices    List available input devices
  doctor     Run configuration and environment checks
  audit      Print recent command and action decisions
  version    Print version information
  help       Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/lma/config.jsonc)
  --limit N       Rows printed by audit (default: %[2]d)
  -h, --help      Show help
  --version       Show version

Hyprland example:
  bind = SUPER, A, exec, %[1]s activate
  bind = SUPER, V, exec, %[1]s voice
  bind = SUPER, S, exec, %[1]s selection
  bind = SUPER, Q, exec, %[1]s ask

Pressing a trigger again while listening stops and sends the request.
`, binaryName, DefaultAuditLimit)
}
