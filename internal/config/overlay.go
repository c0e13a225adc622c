package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape shared by the JSONC and YAML formats.
// Pointer fields distinguish "unset" from zero values so defaults survive.
type fileConfig struct {
	LLM      *fileLLM      `json:"llm" yaml:"llm"`
	Security *fileSecurity `json:"security" yaml:"security"`
	Logging  *fileLogging  `json:"logging" yaml:"logging"`
	Screen   *fileScreen   `json:"screen" yaml:"screen"`
	Riva     *fileRiva     `json:"riva" yaml:"riva"`
	Audio    *fileAudio    `json:"audio" yaml:"audio"`
	Vocab    *fileVocab    `json:"vocab" yaml:"vocab"`
	Notify   *fileNotify   `json:"notify" yaml:"notify"`
	TTS      *fileTTS      `json:"tts" yaml:"tts"`
	Output   *fileOutput   `json:"output" yaml:"output"`
	Audit    *fileAudit    `json:"audit" yaml:"audit"`
	Metrics  *fileMetrics  `json:"metrics" yaml:"metrics"`
	Debug    *fileDebug    `json:"debug" yaml:"debug"`

	ClipboardCmd    *string `json:"clipboard_cmd" yaml:"clipboard_cmd"`
	ClipboardGetCmd *string `json:"clipboard_get_cmd" yaml:"clipboard_get_cmd"`
	SelectionCmd    *string `json:"selection_cmd" yaml:"selection_cmd"`
	ScreenshotCmd   *string `json:"screenshot_cmd" yaml:"screenshot_cmd"`
	TypeCmd         *string `json:"type_cmd" yaml:"type_cmd"`
	ClickCmd        *string `json:"click_cmd" yaml:"click_cmd"`
	SecretsFile     *string `json:"secrets_file" yaml:"secrets_file"`
}

type fileLLM struct {
	Mode              *string `json:"mode" yaml:"mode"`
	OpenAIAPIKey      *string `json:"openai_api_key" yaml:"openai_api_key"`
	OpenAIURL         *string `json:"openai_url" yaml:"openai_url"`
	OpenAIModel       *string `json:"openai_model" yaml:"openai_model"`
	LocalEndpoint     *string `json:"local_endpoint" yaml:"local_endpoint"`
	PrimaryLocalModel *string `json:"primary_local_model" yaml:"primary_local_model"`
	SystemPrompt      *string `json:"system_prompt" yaml:"system_prompt"`
	TimeoutSeconds    *int    `json:"timeout_seconds" yaml:"timeout_seconds"`
	MaxAttempts       *int    `json:"max_attempts" yaml:"max_attempts"`
	BackoffMS         *int    `json:"backoff_ms" yaml:"backoff_ms"`
}

type fileSecurity struct {
	AllowCommands         *stringList `json:"allow_commands" yaml:"allow_commands"`
	ConfirmRequired       *stringList `json:"confirm_required" yaml:"confirm_required"`
	SanitizeInputs        *bool       `json:"sanitize_inputs" yaml:"sanitize_inputs"`
	ConfirmTimeoutSeconds *int        `json:"confirm_timeout_seconds" yaml:"confirm_timeout_seconds"`
}

type fileLogging struct {
	Level           *string `json:"level" yaml:"level"`
	RedactSensitive *bool   `json:"redact_sensitive" yaml:"redact_sensitive"`
	MaxSizeMB       *int    `json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups      *int    `json:"max_backups" yaml:"max_backups"`
}

type fileScreen struct {
	Width  *int `json:"width" yaml:"width"`
	Height *int `json:"height" yaml:"height"`
}

type fileRiva struct {
	GRPC                 *string `json:"grpc" yaml:"grpc"`
	HTTP                 *string `json:"http" yaml:"http"`
	HealthPath           *string `json:"health_path" yaml:"health_path"`
	LanguageCode         *string `json:"language_code" yaml:"language_code"`
	Model                *string `json:"model" yaml:"model"`
	AutomaticPunctuation *bool   `json:"automatic_punctuation" yaml:"automatic_punctuation"`
}

type fileAudio struct {
	Input      *string `json:"input" yaml:"input"`
	Fallback   *string `json:"fallback" yaml:"fallback"`
	MaxSeconds *int    `json:"max_seconds" yaml:"max_seconds"`
}

type fileVocab struct {
	Global     *stringList             `json:"global" yaml:"global"`
	MaxPhrases *int                    `json:"max_phrases" yaml:"max_phrases"`
	Sets       map[string]fileVocabSet `json:"sets" yaml:"sets"`
}

type fileVocabSet struct {
	Boost   *float64 `json:"boost" yaml:"boost"`
	Phrases []string `json:"phrases" yaml:"phrases"`
}

type fileNotify struct {
	Enable         *bool   `json:"enable" yaml:"enable"`
	Backend        *string `json:"backend" yaml:"backend"`
	DesktopAppName *string `json:"desktop_app_name" yaml:"desktop_app_name"`
	SoundEnable    *bool   `json:"sound_enable" yaml:"sound_enable"`
	ErrorTimeoutMS *int    `json:"error_timeout_ms" yaml:"error_timeout_ms"`
	TimeoutMS      *int    `json:"timeout_ms" yaml:"timeout_ms"`
}

type fileTTS struct {
	Enable   *bool   `json:"enable" yaml:"enable"`
	Engine   *string `json:"engine" yaml:"engine"`
	Voice    *string `json:"voice" yaml:"voice"`
	Fallback *string `json:"fallback" yaml:"fallback"`
}

type fileOutput struct {
	RenderMarkdown *bool `json:"render_markdown" yaml:"render_markdown"`
	CopyReply      *bool `json:"copy_reply" yaml:"copy_reply"`
}

type fileAudit struct {
	Enable *bool   `json:"enable" yaml:"enable"`
	Path   *string `json:"path" yaml:"path"`
}

type fileMetrics struct {
	Textfile *string `json:"textfile" yaml:"textfile"`
}

type fileDebug struct {
	AudioDump *bool `json:"audio_dump" yaml:"audio_dump"`
}

// stringList accepts either a list of strings or one comma-delimited string.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = splitCommaList(single)
		return nil
	}

	return fmt.Errorf("expected string array or comma-delimited string")
}

func (l *stringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*l = list
		return nil
	case yaml.ScalarNode:
		*l = splitCommaList(node.Value)
		return nil
	default:
		return fmt.Errorf("line %d: expected string list or comma-delimited string", node.Line)
	}
}

func splitCommaList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func (payload fileConfig) resolve(base Config) (Config, []Warning, error) {
	cfg := base
	warnings, err := payload.applyTo(&cfg)
	if err != nil {
		return Config{}, nil, err
	}

	validatedWarnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	warnings = append(warnings, validatedWarnings...)
	return cfg, warnings, nil
}

func (payload fileConfig) applyTo(cfg *Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if l := payload.LLM; l != nil {
		setString(&cfg.LLM.Mode, l.Mode)
		setString(&cfg.LLM.OpenAIAPIKey, l.OpenAIAPIKey)
		setString(&cfg.LLM.OpenAIURL, l.OpenAIURL)
		setString(&cfg.LLM.OpenAIModel, l.OpenAIModel)
		setString(&cfg.LLM.LocalEndpoint, l.LocalEndpoint)
		setString(&cfg.LLM.PrimaryLocalModel, l.PrimaryLocalModel)
		if l.SystemPrompt != nil {
			cfg.LLM.SystemPrompt = *l.SystemPrompt
		}
		setInt(&cfg.LLM.TimeoutSeconds, l.TimeoutSeconds)
		setInt(&cfg.LLM.MaxAttempts, l.MaxAttempts)
		setInt(&cfg.LLM.BackoffMS, l.BackoffMS)
	}

	if s := payload.Security; s != nil {
		if s.AllowCommands != nil {
			cfg.Security.AllowCommands = trimList(*s.AllowCommands)
			if s.ConfirmRequired == nil {
				cfg.Security.ConfirmRequired = append([]string(nil), cfg.Security.AllowCommands...)
			}
		}
		if s.ConfirmRequired != nil {
			cfg.Security.ConfirmRequired = trimList(*s.ConfirmRequired)
		}
		setBool(&cfg.Security.SanitizeInputs, s.SanitizeInputs)
		setInt(&cfg.Security.ConfirmTimeoutSeconds, s.ConfirmTimeoutSeconds)
		if s.SanitizeInputs != nil && !*s.SanitizeInputs {
			warnings = append(warnings, Warning{Message: "security.sanitize_inputs=false: model output reaches extractors unfiltered"})
		}
	}

	if l := payload.Logging; l != nil {
		setString(&cfg.Logging.Level, l.Level)
		setBool(&cfg.Logging.RedactSensitive, l.RedactSensitive)
		setInt(&cfg.Logging.MaxSizeMB, l.MaxSizeMB)
		setInt(&cfg.Logging.MaxBackups, l.MaxBackups)
	}

	if s := payload.Screen; s != nil {
		setInt(&cfg.Screen.Width, s.Width)
		setInt(&cfg.Screen.Height, s.Height)
	}

	if r := payload.Riva; r != nil {
		setString(&cfg.Riva.GRPC, r.GRPC)
		setString(&cfg.Riva.HTTP, r.HTTP)
		setString(&cfg.Riva.HealthPath, r.HealthPath)
		setString(&cfg.Riva.LanguageCode, r.LanguageCode)
		setString(&cfg.Riva.Model, r.Model)
		setBool(&cfg.Riva.AutomaticPunctuation, r.AutomaticPunctuation)
	}

	if a := payload.Audio; a != nil {
		setString(&cfg.Audio.Input, a.Input)
		setString(&cfg.Audio.Fallback, a.Fallback)
		setInt(&cfg.Audio.MaxSeconds, a.MaxSeconds)
	}

	if v := payload.Vocab; v != nil {
		if v.Global != nil {
			cfg.Vocab.GlobalSets = trimList(*v.Global)
		}
		setInt(&cfg.Vocab.MaxPhrases, v.MaxPhrases)
		if v.Sets != nil {
			if cfg.Vocab.Sets == nil {
				cfg.Vocab.Sets = make(map[string]VocabSet)
			}
			for name, set := range v.Sets {
				trimmedName := strings.TrimSpace(name)
				if trimmedName == "" {
					return nil, fmt.Errorf("vocab.sets contains an empty set name")
				}

				entry := VocabSet{Name: trimmedName, Phrases: append([]string(nil), set.Phrases...)}
				if set.Boost != nil {
					entry.Boost = *set.Boost
				}
				cfg.Vocab.Sets[trimmedName] = entry
			}
		}
	}

	if n := payload.Notify; n != nil {
		setBool(&cfg.Notify.Enable, n.Enable)
		setString(&cfg.Notify.Backend, n.Backend)
		setString(&cfg.Notify.DesktopAppName, n.DesktopAppName)
		setBool(&cfg.Notify.SoundEnable, n.SoundEnable)
		setInt(&cfg.Notify.ErrorTimeoutMS, n.ErrorTimeoutMS)
		setInt(&cfg.Notify.TimeoutMS, n.TimeoutMS)
	}

	if t := payload.TTS; t != nil {
		setBool(&cfg.TTS.Enable, t.Enable)
		setString(&cfg.TTS.Engine, t.Engine)
		setString(&cfg.TTS.Voice, t.Voice)
		setString(&cfg.TTS.Fallback, t.Fallback)
	}

	if o := payload.Output; o != nil {
		setBool(&cfg.Output.RenderMarkdown, o.RenderMarkdown)
		setBool(&cfg.Output.CopyReply, o.CopyReply)
	}

	if a := payload.Audit; a != nil {
		setBool(&cfg.Audit.Enable, a.Enable)
		setString(&cfg.Audit.Path, a.Path)
	}

	if m := payload.Metrics; m != nil {
		setString(&cfg.Metrics.Textfile, m.Textfile)
	}

	if d := payload.Debug; d != nil {
		setBool(&cfg.Debug.EnableAudioDump, d.AudioDump)
	}

	commands := []struct {
		key    string
		raw    *string
		target *CommandConfig
	}{
		{key: "clipboard_cmd", raw: payload.ClipboardCmd, target: &cfg.Clipboard},
		{key: "clipboard_get_cmd", raw: payload.ClipboardGetCmd, target: &cfg.ClipboardGet},
		{key: "selection_cmd", raw: payload.SelectionCmd, target: &cfg.SelectionCmd},
		{key: "screenshot_cmd", raw: payload.ScreenshotCmd, target: &cfg.ScreenshotCmd},
		{key: "type_cmd", raw: payload.TypeCmd, target: &cfg.TypeCmd},
		{key: "click_cmd", raw: payload.ClickCmd, target: &cfg.ClickCmd},
	}
	for _, command := range commands {
		if command.raw == nil {
			continue
		}
		parsed, err := ParseCommand(*command.raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", command.key, err)
		}
		*command.target = parsed
	}

	setString(&cfg.SecretsFile, payload.SecretsFile)

	return warnings, nil
}

func setString(dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
	}
}

func setInt(dst *int, value *int) {
	if value != nil {
		*dst = *value
	}
}

func setBool(dst *bool, value *bool) {
	if value != nil {
		*dst = *value
	}
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	return out
}
