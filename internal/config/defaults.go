package config

import "time"

const (
	BackendWhisperCPP = "whispercpp"
	BackendOpenAI     = "openai"
	BackendGRPC       = "grpc"
)

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Audio: AudioConfig{
			Input:           "default",
			Fallback:        "default",
			EnergyThreshold: 1000,
			RecordTimeout:   2 * time.Second,
			Pause:           800 * time.Millisecond,
			MinPhrase:       300 * time.Millisecond,
			NonSpeaking:     500 * time.Millisecond,
		},
		Pipeline: PipelineConfig{
			PhraseTimeout: 3 * time.Second,
			PollInterval:  250 * time.Millisecond,
		},
		Recognition: RecognitionConfig{
			Backend:    BackendWhisperCPP,
			Endpoint:   "http://127.0.0.1:8080",
			Model:      "medium",
			Timeout:    60 * time.Second,
			GRPCMethod: "/livescribe.recognition.v1.Recognizer/Transcribe",
		},
		Translation: TranslationConfig{
			Source:         "en",
			Target:         "es",
			Model:          "gpt-4o-mini",
			DegradedMarker: "[untranslated] ",
		},
		OpenAI: OpenAIConfig{
			BaseURL: "https://api.openai.com/v1",
		},
		Output: OutputConfig{
			TrailingSpace:       true,
			CapitalizeSentences: true,
			Console:             true,
		},
		Indicator: IndicatorConfig{
			Enable:         true,
			Backend:        "hypr",
			DesktopAppName: "livescribe",
			SoundEnable:    true,
			ErrorTimeoutMS: 1600,
		},
		Log: LogConfig{Level: "info"},
	}
}
