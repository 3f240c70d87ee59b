// Package doctor checks that the configured microphone, recognition backend,
// and output tools are reachable before a session is started.
package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rbright/livescribe/internal/audio"
	"github.com/rbright/livescribe/internal/config"
	"github.com/rbright/livescribe/internal/hypr"
	"github.com/rbright/livescribe/internal/recognize"
)

const probeTimeout = 3 * time.Second

// Check is one diagnostic result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the ordered list of checks.
type Report struct {
	Checks []Check
}

// OK reports whether every check passed.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

func (r Report) String() string {
	lines := make([]string, 0, len(r.Checks))
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", status, check.Name, check.Message))
	}
	return strings.Join(lines, "\n")
}

// Run executes every check that applies to loaded.
func Run(ctx context.Context, loaded config.Loaded) Report {
	cfg := loaded.Config
	checks := []Check{checkConfig(loaded), checkAudioSelection(ctx, cfg), checkRecognizer(ctx, cfg)}

	needsKey := cfg.Recognition.Backend == config.BackendOpenAI || cfg.Translation.Enable
	if needsKey {
		checks = append(checks, checkOpenAIKey(cfg))
	}
	if cfg.Translation.Enable {
		checks = append(checks, checkTranslation(cfg))
	}
	if len(cfg.Output.TypeCmd.Argv) > 0 {
		checks = append(checks, checkBinary("output.type_cmd", cfg.Output.TypeCmd.Argv[0]))
	}
	if cfg.Indicator.Enable {
		checks = append(checks, checkIndicator(ctx, cfg.Indicator))
	}
	return Report{Checks: checks}
}

func checkConfig(loaded config.Loaded) Check {
	message := fmt.Sprintf("loaded %q", loaded.Path)
	if !loaded.Exists {
		message = fmt.Sprintf("%q not found; using defaults", loaded.Path)
	}
	if n := len(loaded.Warnings); n > 0 {
		message += fmt.Sprintf(" (%d warnings)", n)
	}
	return Check{Name: "config", Pass: true, Message: message}
}

// checkAudioSelection runs live device selection so fallbacks show up.
func checkAudioSelection(ctx context.Context, cfg config.Config) Check {
	selection, err := audio.SelectDevice(ctx, cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.Label())
	if selection.Warning != "" {
		message += " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}

// checkRecognizer loads the engine the way a session would, except that
// whisper.cpp is only probed and never asked to swap models.
func checkRecognizer(ctx context.Context, cfg config.Config) Check {
	name := "recognition." + cfg.Recognition.Backend
	opts := recognize.OptionsFromConfig(cfg)
	opts.ModelDir = ""
	opts.Timeout = probeTimeout
	opts.DialTimeout = probeTimeout

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	engine, err := recognize.Load(ctx, opts)
	if err != nil {
		return Check{Name: name, Message: err.Error()}
	}
	_ = engine.Close()

	model := recognize.ModelName(cfg.Recognition.Model, cfg.Recognition.Multilingual)
	target := cfg.Recognition.Endpoint
	if cfg.Recognition.Backend == config.BackendOpenAI {
		target = cfg.OpenAI.BaseURL
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("ready at %s (model %s)", target, model)}
}

func checkOpenAIKey(cfg config.Config) Check {
	if strings.TrimSpace(cfg.OpenAI.APIKey) == "" {
		return Check{Name: "openai.api_key", Message: "not set (config, .env, LIVESCRIBE_OPENAI_API_KEY or OPENAI_API_KEY)"}
	}
	return Check{Name: "openai.api_key", Pass: true, Message: "configured"}
}

func checkTranslation(cfg config.Config) Check {
	pair := cfg.TranslationPair()
	if pair == nil {
		return Check{Name: "translation", Message: fmt.Sprintf("unsupported pair %q -> %q", cfg.Translation.Source, cfg.Translation.Target)}
	}
	return Check{Name: "translation", Pass: true, Message: fmt.Sprintf("%s via %s", pair, cfg.Translation.Model)}
}

func checkIndicator(ctx context.Context, cfg config.IndicatorConfig) Check {
	if strings.EqualFold(cfg.Backend, "desktop") {
		return checkBinary("indicator.desktop", "busctl")
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	monitor, err := hypr.FocusedMonitor(ctx)
	if err != nil {
		return Check{Name: "indicator.hypr", Message: err.Error()}
	}
	return Check{Name: "indicator.hypr", Pass: true, Message: fmt.Sprintf("focused monitor %s", monitor)}
}

func checkBinary(name, bin string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: name, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("found %s", path)}
}
