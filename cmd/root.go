package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "ats-scorer"
)

type Config struct {
	ReferenceDir string             `mapstructure:"reference-dir"`
	Timeout      time.Duration      `mapstructure:"timeout"`
	Verbs        *VerbsConfig       `mapstructure:"verbs"`
	Recency      *RecencyConfig     `mapstructure:"recency"`
	Projects     *ProjectsConfig    `mapstructure:"projects"`
	Tagger       *TaggerConfig      `mapstructure:"tagger"`
	Suggestions  *SuggestionsConfig `mapstructure:"suggestions"`
}

type VerbsConfig struct {
	Strict bool `mapstructure:"strict"`
}

type RecencyConfig struct {
	Window int `mapstructure:"window"`
}

type ProjectsConfig struct {
	BulletChars string `mapstructure:"bullet-chars"`
}

type TaggerConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type SuggestionsConfig struct {
	Disabled []string `mapstructure:"disabled"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "ats-scorer parses resumes and scores them against job descriptions the way an ATS would",
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("reference-dir", "ATS_REFERENCE_DIR"); err != nil {
		log.Fatalf("binding ATS_REFERENCE_DIR environment variable: %v", err)
	}
	if err := viper.BindEnv("tagger.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	viper.SetDefault("recency.window", 2)
	viper.SetDefault("tagger.provider", "local")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is ats-scorer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("reference-dir", "", "directory with reference data files (default is the built-in data)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("reference-dir", rootCmd.PersistentFlags().Lookup("reference-dir"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// The config file is optional, but an explicit or malformed one must parse.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}

	return config, nil
}
