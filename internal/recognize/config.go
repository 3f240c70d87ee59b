package recognize

import "github.com/rbright/livescribe/internal/config"

// OptionsFromConfig maps the recognition and OpenAI sections onto Options.
func OptionsFromConfig(cfg config.Config) Options {
	r := cfg.Recognition
	return Options{
		Backend:      r.Backend,
		Endpoint:     r.Endpoint,
		Model:        r.Model,
		Multilingual: r.Multilingual,
		ModelDir:     r.ModelDir,
		Timeout:      r.Timeout,
		GRPCMethod:   r.GRPCMethod,
		APIKey:       cfg.OpenAI.APIKey,
		BaseURL:      cfg.OpenAI.BaseURL,
	}
}
