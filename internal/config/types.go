// Package config resolves, parses, validates, and defaults livescribe configuration.
package config

import "time"

// Config is the fully materialized runtime configuration.
type Config struct {
	Audio       AudioConfig
	Pipeline    PipelineConfig
	Recognition RecognitionConfig
	Translation TranslationConfig
	OpenAI      OpenAIConfig
	Output      OutputConfig
	Indicator   IndicatorConfig
	HTTP        HTTPConfig
	Log         LogConfig
	Debug       DebugConfig
}

// AudioConfig controls input selection and speech segmentation.
type AudioConfig struct {
	Input           string
	Fallback        string
	EnergyThreshold int
	RecordTimeout   time.Duration
	Pause           time.Duration
	MinPhrase       time.Duration
	NonSpeaking     time.Duration
	// Calibrate, when positive, samples ambient noise once at capture start.
	Calibrate time.Duration
}

// PipelineConfig controls the drain/assemble loop.
type PipelineConfig struct {
	PhraseTimeout  time.Duration
	PollInterval   time.Duration
	QueueMaxChunks int
}

// RecognitionConfig selects and tunes the speech-to-text backend.
type RecognitionConfig struct {
	Backend      string
	Endpoint     string
	Model        string
	Multilingual bool
	Language     string
	ModelDir     string
	Timeout      time.Duration
	GRPCMethod   string
}

// TranslationConfig controls the optional post-recognition translation step.
type TranslationConfig struct {
	Enable         bool
	Source         string
	Target         string
	Model          string
	DegradedMarker string
}

// OpenAIConfig holds credentials shared by OpenAI-backed components.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
}

// OutputConfig controls where finalized utterances go.
type OutputConfig struct {
	TypeCmd             CommandConfig
	TrailingSpace       bool
	CapitalizeSentences bool
	Console             bool
}

// IndicatorConfig controls visual indicator and audio cue behavior.
type IndicatorConfig struct {
	Enable         bool
	Backend        string
	DesktopAppName string
	SoundEnable    bool
	ErrorTimeoutMS int
}

// HTTPConfig controls the optional metrics/live-transcript listener.
type HTTPConfig struct {
	Listen string
}

// LogConfig controls runtime log verbosity.
type LogConfig struct {
	Level string
}

// DebugConfig controls optional debug artifact output.
type DebugConfig struct {
	EnableAudioDump bool
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
