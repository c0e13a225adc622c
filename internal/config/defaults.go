package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	clipboard := "wl-copy --trim-newline"
	clipboardGet := "wl-paste --no-newline"
	selection := "wl-paste --primary --no-newline"
	screenshot := "grim"
	typeCmd := "wtype -"
	click := "ydotool click 0xC0"

	allowed := []string{"ls", "cat", "echo", "pwd", "date", "whoami", "uptime", "df"}

	return Config{
		LLM: LLMConfig{
			Mode:              "remote",
			OpenAIURL:         "https://api.openai.com/v1/chat/completions",
			OpenAIModel:       "gpt-4o",
			LocalEndpoint:     "http://127.0.0.1:11434",
			PrimaryLocalModel: "llava",
			TimeoutSeconds:    30,
			MaxAttempts:       3,
			BackoffMS:         500,
		},
		// An allowed line runs whole through sh -c, chained commands included.
		Security: SecurityConfig{
			AllowCommands:   allowed,
			ConfirmRequired: append([]string(nil), allowed...),
			SanitizeInputs:  true,
		},
		Logging: LoggingConfig{
			Level:           "info",
			RedactSensitive: true,
			MaxSizeMB:       10,
			MaxBackups:      3,
		},
		Screen: ScreenConfig{Width: 1920, Height: 1080},
		Riva: RivaConfig{
			GRPC:                 "127.0.0.1:50051",
			HTTP:                 "127.0.0.1:9000",
			HealthPath:           "/v1/health/ready",
			LanguageCode:         "en-US",
			AutomaticPunctuation: true,
		},
		Audio: AudioConfig{
			Input:      "default",
			Fallback:   "default",
			MaxSeconds: 30,
		},
		Vocab: VocabConfig{
			Sets:       map[string]VocabSet{},
			MaxPhrases: 1024,
		},
		Notify: NotifyConfig{
			Enable:         true,
			Backend:        "hypr",
			DesktopAppName: "lma",
			SoundEnable:    true,
			ErrorTimeoutMS: 1600,
			TimeoutMS:      3000,
		},
		TTS: TTSConfig{
			Enable:   true,
			Engine:   "piper",
			Voice:    "en_US-lessac-medium",
			Fallback: "espeak",
		},
		Output: OutputConfig{RenderMarkdown: true},
		Audit:  AuditConfig{Enable: true},

		Clipboard:     mustCommand(clipboard),
		ClipboardGet:  mustCommand(clipboardGet),
		SelectionCmd:  mustCommand(selection),
		ScreenshotCmd: mustCommand(screenshot),
		TypeCmd:       mustCommand(typeCmd),
		ClickCmd:      mustCommand(click),
	}
}
