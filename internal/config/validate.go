package config

import (
	"fmt"
	"sort"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	mode := strings.ToLower(strings.TrimSpace(cfg.LLM.Mode))
	if mode == "" {
		return nil, fmt.Errorf("llm.mode must not be empty")
	}
	if strings.TrimSpace(cfg.LLM.OpenAIURL) == "" {
		return nil, fmt.Errorf("llm.openai_url must not be empty")
	}
	if strings.TrimSpace(cfg.LLM.LocalEndpoint) == "" {
		return nil, fmt.Errorf("llm.local_endpoint must not be empty")
	}
	if strings.TrimSpace(cfg.LLM.PrimaryLocalModel) == "" {
		return nil, fmt.Errorf("llm.primary_local_model must not be empty")
	}
	if cfg.LLM.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("llm.timeout_seconds must be > 0")
	}
	if cfg.LLM.MaxAttempts <= 0 {
		return nil, fmt.Errorf("llm.max_attempts must be > 0")
	}
	if cfg.LLM.BackoffMS < 0 {
		return nil, fmt.Errorf("llm.backoff_ms must be >= 0")
	}

	if cfg.Security.ConfirmTimeoutSeconds < 0 {
		return nil, fmt.Errorf("security.confirm_timeout_seconds must be >= 0")
	}
	if len(cfg.Security.AllowCommands) == 0 {
		warnings = append(warnings, Warning{Message: "security.allow_commands is empty; every command will be denied"})
	}
	allowed := make(map[string]struct{}, len(cfg.Security.AllowCommands))
	for _, name := range cfg.Security.AllowCommands {
		allowed[name] = struct{}{}
	}
	for _, name := range cfg.Security.ConfirmRequired {
		if _, ok := allowed[name]; !ok {
			warnings = append(warnings, Warning{Message: fmt.Sprintf("security.confirm_required entry %q is not in security.allow_commands and will always be denied", name)})
		}
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	if cfg.Logging.MaxSizeMB <= 0 {
		return nil, fmt.Errorf("logging.max_size_mb must be > 0")
	}
	if cfg.Logging.MaxBackups < 0 {
		return nil, fmt.Errorf("logging.max_backups must be >= 0")
	}

	if cfg.Screen.Width <= 0 || cfg.Screen.Height <= 0 {
		return nil, fmt.Errorf("screen.width and screen.height must be > 0")
	}

	if strings.TrimSpace(cfg.Riva.GRPC) == "" {
		return nil, fmt.Errorf("riva.grpc must not be empty")
	}
	if strings.TrimSpace(cfg.Riva.HTTP) == "" {
		return nil, fmt.Errorf("riva.http must not be empty")
	}
	if !strings.HasPrefix(strings.TrimSpace(cfg.Riva.HealthPath), "/") {
		return nil, fmt.Errorf("riva.health_path must start with '/'")
	}
	if strings.TrimSpace(cfg.Riva.LanguageCode) == "" {
		return nil, fmt.Errorf("riva.language_code must not be empty")
	}
	if cfg.Audio.MaxSeconds <= 0 {
		return nil, fmt.Errorf("audio.max_seconds must be > 0")
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Notify.Backend))
	if backend != "hypr" && backend != "desktop" {
		return nil, fmt.Errorf("notify.backend must be one of: hypr, desktop")
	}
	if backend == "desktop" && strings.TrimSpace(cfg.Notify.DesktopAppName) == "" {
		return nil, fmt.Errorf("notify.desktop_app_name must not be empty when notify.backend=desktop")
	}
	if cfg.Notify.ErrorTimeoutMS < 0 || cfg.Notify.TimeoutMS < 0 {
		return nil, fmt.Errorf("notify timeouts must be >= 0")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.TTS.Engine)) {
	case "piper", "espeak", "none":
	default:
		return nil, fmt.Errorf("tts.engine must be one of: piper, espeak, none")
	}

	if cfg.Vocab.MaxPhrases <= 0 {
		return nil, fmt.Errorf("vocab.max_phrases must be > 0")
	}

	required := []struct {
		key string
		cmd CommandConfig
	}{
		{key: "clipboard_cmd", cmd: cfg.Clipboard},
		{key: "clipboard_get_cmd", cmd: cfg.ClipboardGet},
		{key: "selection_cmd", cmd: cfg.SelectionCmd},
		{key: "screenshot_cmd", cmd: cfg.ScreenshotCmd},
		{key: "type_cmd", cmd: cfg.TypeCmd},
		{key: "click_cmd", cmd: cfg.ClickCmd},
	}
	for _, entry := range required {
		if len(entry.cmd.Argv) == 0 {
			return nil, fmt.Errorf("%s must not be empty", entry.key)
		}
	}

	_, vocabWarnings, err := BuildSpeechPhrases(cfg)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, vocabWarnings...)

	return warnings, nil
}

// BuildSpeechPhrases merges enabled vocab sets into deterministic ASR phrase payloads.
func BuildSpeechPhrases(cfg Config) ([]SpeechPhrase, []Warning, error) {
	enabledSets := cfg.Vocab.GlobalSets
	if len(enabledSets) == 0 {
		return nil, nil, nil
	}

	type candidate struct {
		boost float64
		from  string
	}

	warnings := make([]Warning, 0)
	selected := make(map[string]candidate)

	for _, name := range enabledSets {
		set, ok := cfg.Vocab.Sets[name]
		if !ok {
			return nil, nil, fmt.Errorf("vocab.global references unknown set %q", name)
		}
		for _, phrase := range set.Phrases {
			phrase = strings.TrimSpace(phrase)
			if phrase == "" {
				continue
			}
			if existing, exists := selected[phrase]; exists {
				if set.Boost > existing.boost {
					warnings = append(warnings, Warning{Message: fmt.Sprintf("phrase %q present in %q and %q; using higher boost %.2f", phrase, existing.from, name, set.Boost)})
					selected[phrase] = candidate{boost: set.Boost, from: name}
				}
				continue
			}
			selected[phrase] = candidate{boost: set.Boost, from: name}
		}
	}

	if len(selected) > cfg.Vocab.MaxPhrases {
		return nil, nil, fmt.Errorf("vocabulary phrase count %d exceeds vocab.max_phrases=%d", len(selected), cfg.Vocab.MaxPhrases)
	}

	phrases := make([]SpeechPhrase, 0, len(selected))
	for phrase, c := range selected {
		phrases = append(phrases, SpeechPhrase{Phrase: phrase, Boost: float32(c.boost)})
	}

	sort.Slice(phrases, func(i, j int) bool {
		if phrases[i].Phrase == phrases[j].Phrase {
			return phrases[i].Boost < phrases[j].Boost
		}
		return phrases[i].Phrase < phrases[j].Phrase
	})

	return phrases, warnings, nil
}
