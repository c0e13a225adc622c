// Package config resolves, parses, validates, and defaults lma configuration.
package config

// Config is the fully materialized runtime configuration used by lma.
type Config struct {
	LLM      LLMConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Screen   ScreenConfig
	Riva     RivaConfig
	Audio    AudioConfig
	Vocab    VocabConfig
	Notify   NotifyConfig
	TTS      TTSConfig
	Output   OutputConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
	Debug    DebugConfig

	Clipboard     CommandConfig
	ClipboardGet  CommandConfig
	SelectionCmd  CommandConfig
	ScreenshotCmd CommandConfig
	TypeCmd       CommandConfig
	ClickCmd      CommandConfig

	// SecretsFile is an optional dotenv file consulted for API keys.
	SecretsFile string
}

// LLMConfig selects and tunes the language model backends.
type LLMConfig struct {
	// Mode picks the primary backend: "local", "remote"/"openai", or a remote model name.
	Mode              string
	OpenAIAPIKey      string
	OpenAIURL         string
	OpenAIModel       string
	LocalEndpoint     string
	PrimaryLocalModel string
	SystemPrompt      string
	TimeoutSeconds    int
	MaxAttempts       int
	BackoffMS         int
}

// SecurityConfig holds the command allow-list and confirmation policy.
type SecurityConfig struct {
	AllowCommands   []string
	ConfirmRequired []string
	SanitizeInputs  bool
	// ConfirmTimeoutSeconds bounds confirmation prompts; 0 waits forever.
	ConfirmTimeoutSeconds int
}

// LoggingConfig controls the JSONL log sink.
type LoggingConfig struct {
	Level           string
	RedactSensitive bool
	MaxSizeMB       int
	MaxBackups      int
}

// ScreenConfig bounds automation coordinates.
type ScreenConfig struct {
	Width  int
	Height int
}

// RivaConfig addresses the speech recognition service.
type RivaConfig struct {
	GRPC                 string
	HTTP                 string
	HealthPath           string
	LanguageCode         string
	Model                string
	AutomaticPunctuation bool
}

// AudioConfig controls preferred and fallback input-source selection.
type AudioConfig struct {
	Input      string
	Fallback   string
	MaxSeconds int
}

// NotifyConfig controls the status indicator, notifications, and audio cues.
type NotifyConfig struct {
	Enable         bool
	Backend        string
	DesktopAppName string
	SoundEnable    bool
	ErrorTimeoutMS int
	TimeoutMS      int
}

// TTSConfig controls spoken responses.
type TTSConfig struct {
	Enable   bool
	Engine   string
	Voice    string
	Fallback string
}

// OutputConfig controls terminal rendering of responses.
type OutputConfig struct {
	RenderMarkdown bool
	// CopyReply places each model reply on the clipboard.
	CopyReply bool
}

// AuditConfig controls the command/action audit database.
type AuditConfig struct {
	Enable bool
	Path   string
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// VocabConfig controls enabled speech phrase sets and dedupe limits.
type VocabConfig struct {
	GlobalSets []string
	Sets       map[string]VocabSet
	MaxPhrases int
}

// VocabSet is one named phrase group with a shared boost value.
type VocabSet struct {
	Name    string
	Boost   float64
	Phrases []string
}

// DebugConfig controls optional debug artifact output.
type DebugConfig struct {
	EnableAudioDump bool
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}

// SpeechPhrase is the normalized phrase payload sent to ASR adapters.
type SpeechPhrase struct {
	Phrase string
	Boost  float32
}
