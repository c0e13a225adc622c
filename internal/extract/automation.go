// Package extract pulls automation directives and shell-command candidates out of model text.
package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/rbright/lma/internal/security"
)

// ActionKind identifies an automation directive family.
type ActionKind string

const (
	ActionClick  ActionKind = "click"
	ActionMove   ActionKind = "move"
	ActionType   ActionKind = "type"
	ActionHotkey ActionKind = "hotkey"
)

// Action is one validated automation directive.
type Action struct {
	Kind ActionKind
	X    int
	Y    int
	Text string
	Keys []string
}

func (a Action) String() string {
	switch a.Kind {
	case ActionClick, ActionMove:
		return fmt.Sprintf("%s(%d, %d)", a.Kind, a.X, a.Y)
	case ActionType:
		return fmt.Sprintf("type(%q)", a.Text)
	case ActionHotkey:
		return fmt.Sprintf("hotkey(%s)", strings.Join(a.Keys, "+"))
	default:
		return string(a.Kind)
	}
}

// errSkip marks a match whose captures could not be turned into an action.
var errSkip = errors.New("unusable match")

type automationRule struct {
	kind    ActionKind
	pattern *regexp.Regexp
	build   func(groups []string) (Action, error)
}

const coordPair = `\(?\s*(-?\d+)\s*,\s*(-?\d+)\s*\)?`

const keyChain = `([a-z0-9_]+(?:\s*\+\s*[a-z0-9_]+)`

// automationRules is evaluated family by family in this order: click, move, type, hotkey.
var automationRules = []automationRule{
	{kind: ActionClick, pattern: regexp.MustCompile(`(?i)\bclick\s+(?:at\s+)?` + coordPair), build: pointAction(ActionClick)},
	{kind: ActionClick, pattern: regexp.MustCompile(`(?i)\bclick\s+coordinates\s+` + coordPair), build: pointAction(ActionClick)},
	{kind: ActionClick, pattern: regexp.MustCompile(`(?i)\bmove\s+to\s+` + coordPair + `\s+and\s+click\b`), build: pointAction(ActionClick)},

	{kind: ActionMove, pattern: regexp.MustCompile(`(?i)\bmove\s+(?:mouse\s+)?to\s+` + coordPair), build: pointAction(ActionMove)},
	{kind: ActionMove, pattern: regexp.MustCompile(`(?i)\bmove\s+cursor\s+to\s+` + coordPair), build: pointAction(ActionMove)},

	{kind: ActionType, pattern: regexp.MustCompile(`(?i)\btype\s+"([^"\n]+)"`), build: textAction},
	{kind: ActionType, pattern: regexp.MustCompile(`(?i)\benter\s+text:\s*([^\n]+)`), build: textAction},
	{kind: ActionType, pattern: regexp.MustCompile(`(?i)\binput\s+text\s+"([^"\n]+)"`), build: textAction},

	{kind: ActionHotkey, pattern: regexp.MustCompile(`(?i)\bpress\s+` + keyChain + `+)`), build: hotkeyAction},
	{kind: ActionHotkey, pattern: regexp.MustCompile(`(?i)\bsend\s+hotkey\s+` + keyChain + `*)`), build: hotkeyAction},
	{kind: ActionHotkey, pattern: regexp.MustCompile(`(?i)\buse\s+keyboard\s+shortcut\s+` + keyChain + `*)`), build: hotkeyAction},
}

func pointAction(kind ActionKind) func([]string) (Action, error) {
	return func(groups []string) (Action, error) {
		x, errX := strconv.Atoi(groups[1])
		y, errY := strconv.Atoi(groups[2])
		if errX != nil || errY != nil {
			return Action{}, errSkip
		}
		return Action{Kind: kind, X: x, Y: y}, nil
	}
}

func textAction(groups []string) (Action, error) {
	text := strings.TrimSpace(groups[1])
	if text == "" {
		return Action{}, errSkip
	}
	return Action{Kind: ActionType, Text: text}, nil
}

func hotkeyAction(groups []string) (Action, error) {
	parts := strings.Split(groups[1], "+")
	keys := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			return Action{}, errSkip
		}
		keys = append(keys, part)
	}
	return Action{Kind: ActionHotkey, Keys: keys}, nil
}

// Automation extracts automation actions and drops out-of-bounds coordinates.
type Automation struct {
	bounds security.Bounds
	logger *slog.Logger
}

// NewAutomation returns an extractor validating against bounds.
func NewAutomation(bounds security.Bounds, logger *slog.Logger) *Automation {
	return &Automation{bounds: bounds, logger: logger}
}

// Extract returns every action found in text.
//
// Results are grouped by family (click, move, type, hotkey); within a family
// rules apply in table order and matches in text order.
func (a *Automation) Extract(text string) []Action {
	var actions []Action
	for _, rule := range automationRules {
		for _, groups := range rule.pattern.FindAllStringSubmatch(text, -1) {
			action, err := rule.build(groups)
			if err != nil {
				continue
			}
			if (action.Kind == ActionClick || action.Kind == ActionMove) && !a.bounds.Contains(action.X, action.Y) {
				a.log().Warn("automation coordinates out of bounds",
					"kind", string(action.Kind),
					"x", action.X,
					"y", action.Y,
					"width", a.bounds.Width,
					"height", a.bounds.Height,
				)
				continue
			}
			actions = append(actions, action)
		}
	}
	return actions
}

func (a *Automation) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}
