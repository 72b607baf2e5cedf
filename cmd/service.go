package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/ats-scorer/internal/logger"
	"github.com/spigell/ats-scorer/internal/nlp"
	"github.com/spigell/ats-scorer/internal/nlp/gemini"
	"github.com/spigell/ats-scorer/internal/pipeline"
	"github.com/spigell/ats-scorer/internal/refdata"
	"github.com/spigell/ats-scorer/internal/secrets"
)

const geminiAPIKeyEnv = "GEMINI_API_KEY"

// setup builds the logger, the config and the pipeline shared by every command.
func setup(ctx context.Context) (*pipeline.Service, *Config, *zap.Logger, error) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig()
	if err != nil {
		return nil, nil, log, fmt.Errorf("getting a config: %w", err)
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	log.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	data, err := refdata.Load(refdata.Options{Dir: config.ReferenceDir, Logger: log.Named("refdata")})
	if err != nil {
		return nil, config, log, fmt.Errorf("loading reference data: %w", err)
	}

	lemmatizer, err := newLemmatizer(ctx, config.Tagger, log)
	if err != nil {
		return nil, config, log, err
	}

	opts := pipelineOptions(config)
	opts.Data = data
	opts.Lemmatizer = lemmatizer
	opts.Logger = log

	return pipeline.New(opts), config, log, nil
}

// pipelineOptions maps the tuning sections of the config onto pipeline options.
func pipelineOptions(config *Config) pipeline.Options {
	var opts pipeline.Options
	if config.Verbs != nil {
		opts.StrictVerbs = config.Verbs.Strict
	}
	if config.Recency != nil {
		opts.RecencyWindow = config.Recency.Window
	}
	if config.Projects != nil {
		opts.BulletChars = config.Projects.BulletChars
	}
	if config.Suggestions != nil {
		opts.DisabledSuggestions = config.Suggestions.Disabled
	}
	return opts
}

// newLemmatizer picks the verb lemmatizer backend. A local tagger that cannot
// start is not fatal: action verb detection is disabled instead.
func newLemmatizer(ctx context.Context, cfg *TaggerConfig, log *zap.Logger) (nlp.VerbLemmatizer, error) {
	provider := ""
	if cfg != nil {
		provider = strings.TrimSpace(strings.ToLower(cfg.Provider))
	}

	switch provider {
	case "", "local":
		tagger, err := nlp.NewLocalTagger(log.Named("tagger"))
		if err != nil {
			log.Warn("local tagger unavailable", zap.Error(err))
			return nlp.Unavailable{}, nil
		}
		return tagger, nil
	case "none":
		return nlp.Unavailable{}, nil
	case "gemini":
		return newGeminiLemmatizer(ctx, cfg.Gemini, log)
	default:
		return nil, fmt.Errorf("unsupported tagger provider: %s", cfg.Provider)
	}
}

func newGeminiLemmatizer(ctx context.Context, cfg *GeminiConfig, log *zap.Logger) (nlp.VerbLemmatizer, error) {
	if cfg == nil {
		cfg = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.APIKeyFile,
		Env:  geminiAPIKeyEnv,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set tagger.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	genLogger := log.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Model),
		zap.Int("retry_attempts", cfg.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Model, cfg.MaxRetries, genLogger)
	if err != nil {
		return nil, fmt.Errorf("building gemini generator: %w", err)
	}

	return gemini.NewLemmatizer(generator, genLogger.Named("tagger"), cfg.MaxLogLength), nil
}

// writeJSON writes v indented to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = w.Write(data)
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing result to %q: %w", path, err)
	}
	return nil
}

// readText reads a whole file, or stdin when path is "-" or empty.
func readText(stdin io.Reader, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %q: %w", path, err)
	}
	return string(data), nil
}

func withTimeout(ctx context.Context, config *Config) (context.Context, context.CancelFunc) {
	if config == nil || config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, config.Timeout)
}
