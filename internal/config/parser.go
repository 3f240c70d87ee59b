package config

import (
	"fmt"
	"strings"
	"time"
)

// Parse overlays configuration content onto base and validates the result.
//
// Content whose first non-whitespace character is `{` is read as JSONC;
// anything else is read as YAML.
func Parse(content string, base Config) (Config, []Warning, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		warnings, err := Validate(base)
		if err != nil {
			return Config{}, nil, err
		}
		return base, warnings, nil
	}

	var (
		payload fileConfig
		err     error
	)
	if strings.HasPrefix(trimmed, "{") {
		payload, err = decodeJSONC(content)
	} else {
		payload, err = decodeYAML(content)
	}
	if err != nil {
		return Config{}, nil, err
	}

	cfg := base
	if err := payload.applyTo(&cfg); err != nil {
		return Config{}, nil, err
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

// fileConfig is the on-disk shape shared by the JSONC and YAML syntaxes.
// Pointer fields distinguish "absent" from zero so defaults survive.
type fileConfig struct {
	Audio       *fileAudio       `json:"audio" yaml:"audio"`
	Pipeline    *filePipeline    `json:"pipeline" yaml:"pipeline"`
	Recognition *fileRecognition `json:"recognition" yaml:"recognition"`
	Translation *fileTranslation `json:"translation" yaml:"translation"`
	OpenAI      *fileOpenAI      `json:"openai" yaml:"openai"`
	Output      *fileOutput      `json:"output" yaml:"output"`
	Indicator   *fileIndicator   `json:"indicator" yaml:"indicator"`
	HTTP        *fileHTTP        `json:"http" yaml:"http"`
	Log         *fileLog         `json:"log" yaml:"log"`
	Debug       *fileDebug       `json:"debug" yaml:"debug"`
}

type fileAudio struct {
	Input           *string `json:"input" yaml:"input"`
	Fallback        *string `json:"fallback" yaml:"fallback"`
	EnergyThreshold *int    `json:"energy_threshold" yaml:"energy_threshold"`
	RecordTimeoutMS *int    `json:"record_timeout_ms" yaml:"record_timeout_ms"`
	PauseMS         *int    `json:"pause_ms" yaml:"pause_ms"`
	MinPhraseMS     *int    `json:"min_phrase_ms" yaml:"min_phrase_ms"`
	NonSpeakingMS   *int    `json:"non_speaking_ms" yaml:"non_speaking_ms"`
	CalibrateMS     *int    `json:"calibrate_ms" yaml:"calibrate_ms"`
}

type filePipeline struct {
	PhraseTimeoutMS *int `json:"phrase_timeout_ms" yaml:"phrase_timeout_ms"`
	PollIntervalMS  *int `json:"poll_interval_ms" yaml:"poll_interval_ms"`
	QueueMaxChunks  *int `json:"queue_max_chunks" yaml:"queue_max_chunks"`
}

type fileRecognition struct {
	Backend      *string `json:"backend" yaml:"backend"`
	Endpoint     *string `json:"endpoint" yaml:"endpoint"`
	Model        *string `json:"model" yaml:"model"`
	Multilingual *bool   `json:"multilingual" yaml:"multilingual"`
	Language     *string `json:"language" yaml:"language"`
	ModelDir     *string `json:"model_dir" yaml:"model_dir"`
	TimeoutMS    *int    `json:"timeout_ms" yaml:"timeout_ms"`
	GRPCMethod   *string `json:"grpc_method" yaml:"grpc_method"`
}

type fileTranslation struct {
	Enable         *bool   `json:"enable" yaml:"enable"`
	Source         *string `json:"source" yaml:"source"`
	Target         *string `json:"target" yaml:"target"`
	Model          *string `json:"model" yaml:"model"`
	DegradedMarker *string `json:"degraded_marker" yaml:"degraded_marker"`
}

type fileOpenAI struct {
	APIKey  *string `json:"api_key" yaml:"api_key"`
	BaseURL *string `json:"base_url" yaml:"base_url"`
}

type fileOutput struct {
	TypeCmd             *string `json:"type_cmd" yaml:"type_cmd"`
	TrailingSpace       *bool   `json:"trailing_space" yaml:"trailing_space"`
	CapitalizeSentences *bool   `json:"capitalize_sentences" yaml:"capitalize_sentences"`
	Console             *bool   `json:"console" yaml:"console"`
}

type fileIndicator struct {
	Enable         *bool   `json:"enable" yaml:"enable"`
	Backend        *string `json:"backend" yaml:"backend"`
	DesktopAppName *string `json:"desktop_app_name" yaml:"desktop_app_name"`
	SoundEnable    *bool   `json:"sound_enable" yaml:"sound_enable"`
	ErrorTimeoutMS *int    `json:"error_timeout_ms" yaml:"error_timeout_ms"`
}

type fileHTTP struct {
	Listen *string `json:"listen" yaml:"listen"`
}

type fileLog struct {
	Level *string `json:"level" yaml:"level"`
}

type fileDebug struct {
	AudioDump *bool `json:"audio_dump" yaml:"audio_dump"`
}

func (payload fileConfig) applyTo(cfg *Config) error {
	if a := payload.Audio; a != nil {
		setTrimmed(&cfg.Audio.Input, a.Input)
		setTrimmed(&cfg.Audio.Fallback, a.Fallback)
		set(&cfg.Audio.EnergyThreshold, a.EnergyThreshold)
		setMS(&cfg.Audio.RecordTimeout, a.RecordTimeoutMS)
		setMS(&cfg.Audio.Pause, a.PauseMS)
		setMS(&cfg.Audio.MinPhrase, a.MinPhraseMS)
		setMS(&cfg.Audio.NonSpeaking, a.NonSpeakingMS)
		setMS(&cfg.Audio.Calibrate, a.CalibrateMS)
	}

	if p := payload.Pipeline; p != nil {
		setMS(&cfg.Pipeline.PhraseTimeout, p.PhraseTimeoutMS)
		setMS(&cfg.Pipeline.PollInterval, p.PollIntervalMS)
		set(&cfg.Pipeline.QueueMaxChunks, p.QueueMaxChunks)
	}

	if r := payload.Recognition; r != nil {
		if r.Backend != nil {
			cfg.Recognition.Backend = strings.ToLower(strings.TrimSpace(*r.Backend))
		}
		setTrimmed(&cfg.Recognition.Endpoint, r.Endpoint)
		setTrimmed(&cfg.Recognition.Model, r.Model)
		set(&cfg.Recognition.Multilingual, r.Multilingual)
		setTrimmed(&cfg.Recognition.Language, r.Language)
		setTrimmed(&cfg.Recognition.ModelDir, r.ModelDir)
		setMS(&cfg.Recognition.Timeout, r.TimeoutMS)
		setTrimmed(&cfg.Recognition.GRPCMethod, r.GRPCMethod)
	}

	if tr := payload.Translation; tr != nil {
		set(&cfg.Translation.Enable, tr.Enable)
		setTrimmed(&cfg.Translation.Source, tr.Source)
		setTrimmed(&cfg.Translation.Target, tr.Target)
		setTrimmed(&cfg.Translation.Model, tr.Model)
		set(&cfg.Translation.DegradedMarker, tr.DegradedMarker)
	}

	if o := payload.OpenAI; o != nil {
		setTrimmed(&cfg.OpenAI.APIKey, o.APIKey)
		setTrimmed(&cfg.OpenAI.BaseURL, o.BaseURL)
	}

	if o := payload.Output; o != nil {
		if o.TypeCmd != nil {
			raw := *o.TypeCmd
			argv, err := splitCommand(raw)
			if err != nil {
				return fmt.Errorf("invalid output.type_cmd: %w", err)
			}
			cfg.Output.TypeCmd = CommandConfig{Raw: raw, Argv: argv}
		}
		set(&cfg.Output.TrailingSpace, o.TrailingSpace)
		set(&cfg.Output.CapitalizeSentences, o.CapitalizeSentences)
		set(&cfg.Output.Console, o.Console)
	}

	if ind := payload.Indicator; ind != nil {
		set(&cfg.Indicator.Enable, ind.Enable)
		if ind.Backend != nil {
			cfg.Indicator.Backend = strings.ToLower(strings.TrimSpace(*ind.Backend))
		}
		setTrimmed(&cfg.Indicator.DesktopAppName, ind.DesktopAppName)
		set(&cfg.Indicator.SoundEnable, ind.SoundEnable)
		set(&cfg.Indicator.ErrorTimeoutMS, ind.ErrorTimeoutMS)
	}

	if h := payload.HTTP; h != nil {
		setTrimmed(&cfg.HTTP.Listen, h.Listen)
	}
	if l := payload.Log; l != nil && l.Level != nil {
		cfg.Log.Level = strings.ToLower(strings.TrimSpace(*l.Level))
	}
	if d := payload.Debug; d != nil {
		set(&cfg.Debug.EnableAudioDump, d.AudioDump)
	}

	return nil
}

func set[T any](dst *T, value *T) {
	if value != nil {
		*dst = *value
	}
}

func setTrimmed(dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
	}
}

func setMS(dst *time.Duration, value *int) {
	if value != nil {
		*dst = time.Duration(*value) * time.Millisecond
	}
}
