package security

import (
	"strings"

	"github.com/rbright/lma/internal/config"
)

// Verdict is the policy outcome for one command candidate.
type Verdict int

const (
	// Denied candidates are never executed.
	Denied Verdict = iota
	// RequiresConfirmation candidates run only after an explicit yes.
	RequiresConfirmation
	// Allowed candidates run without asking.
	Allowed
)

func (v Verdict) String() string {
	switch v {
	case Denied:
		return "denied"
	case RequiresConfirmation:
		return "confirm"
	case Allowed:
		return "allowed"
	default:
		return "unknown"
	}
}

// Policy classifies command candidates by their base token.
type Policy struct {
	allow   map[string]struct{}
	confirm map[string]struct{}
}

// NewPolicy builds a policy from allow and confirm lists.
func NewPolicy(allow []string, confirm []string) Policy {
	return Policy{allow: toSet(allow), confirm: toSet(confirm)}
}

// PolicyFromConfig builds a policy from the security config section.
func PolicyFromConfig(cfg config.SecurityConfig) Policy {
	return NewPolicy(cfg.AllowCommands, cfg.ConfirmRequired)
}

// Classify returns the verdict for candidate. Empty input is Denied.
func (p Policy) Classify(candidate string) Verdict {
	base := BaseCommand(candidate)
	if base == "" {
		return Denied
	}
	if _, ok := p.allow[base]; !ok {
		return Denied
	}
	if _, ok := p.confirm[base]; ok {
		return RequiresConfirmation
	}
	return Allowed
}

// BaseCommand returns the first whitespace-delimited token of command.
func BaseCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		set[value] = struct{}{}
	}
	return set
}

// Bounds is the inclusive screen rectangle automation coordinates must fall in.
type Bounds struct {
	Width  int
	Height int
}

// DefaultBounds matches a 1920x1080 display.
var DefaultBounds = Bounds{Width: 1920, Height: 1080}

// BoundsFromConfig reads screen dimensions, falling back to DefaultBounds.
func BoundsFromConfig(cfg config.ScreenConfig) Bounds {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return DefaultBounds
	}
	return Bounds{Width: cfg.Width, Height: cfg.Height}
}

// Contains reports 0 <= x <= Width and 0 <= y <= Height.
func (b Bounds) Contains(x, y int) bool {
	return x >= 0 && x <= b.Width && y >= 0 && y <= b.Height
}
