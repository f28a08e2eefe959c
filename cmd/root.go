package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/interview-coach/internal/avatar"
)

const (
	app       = "interview-coach"
	envPrefix = "INTERVIEW_COACH"
)

type Config struct {
	Avatar    *AvatarConfig    `mapstructure:"avatar"`
	LLM       *LLMConfig       `mapstructure:"llm"`
	Server    *ServerConfig    `mapstructure:"server"`
	Interview *InterviewConfig `mapstructure:"interview"`
}

type AvatarConfig struct {
	APIKey      string `mapstructure:"api-key"`
	APIKeyFile  string `mapstructure:"api-key-file"`
	APIURL      string `mapstructure:"api-url"`
	ReplicaID   string `mapstructure:"replica-id"`
	CallbackURL string `mapstructure:"callback-url"`
	UserAgent   string `mapstructure:"user-agent"`
}

type LLMConfig struct {
	Provider     string `mapstructure:"provider"`
	Model        string `mapstructure:"model"`
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	BaseURL      string `mapstructure:"base-url"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type ServerConfig struct {
	ListenAddress  string        `mapstructure:"listen-address"`
	SessionTTL     time.Duration `mapstructure:"session-ttl"`
	MaxSessions    int           `mapstructure:"max-sessions"`
	MaxUploadBytes int64         `mapstructure:"max-upload-bytes"`
	SecureCookies  bool          `mapstructure:"secure-cookies"`
	WebhookToken   string        `mapstructure:"webhook-token"`
}

type InterviewConfig struct {
	TeardownTimeout       time.Duration      `mapstructure:"teardown-timeout"`
	EndConversationOnExit bool               `mapstructure:"end-conversation-on-exit"`
	Properties            *avatar.Properties `mapstructure:"properties"`
}

var defaults = map[string]any{
	"avatar.api-key":                     "",
	"avatar.api-key-file":                "",
	"avatar.api-url":                     "",
	"avatar.replica-id":                  "",
	"avatar.callback-url":                "",
	"avatar.user-agent":                  "",
	"llm.provider":                       "openai",
	"llm.model":                          "",
	"llm.api-key":                        "",
	"llm.api-key-file":                   "",
	"llm.base-url":                       "",
	"llm.max-log-length":                 200,
	"server.listen-address":              ":8080",
	"server.session-ttl":                 "2h",
	"server.max-sessions":                512,
	"server.max-upload-bytes":            10 << 20,
	"server.secure-cookies":              false,
	"server.webhook-token":               "",
	"interview.teardown-timeout":         "5s",
	"interview.end-conversation-on-exit": false,
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "interview-coach runs AI mock interviews with an avatar interviewer and scores them",
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interview-coach.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// .env is optional
	_ = godotenv.Load()

	if err := loadConfig(viper.GetViper(), cfgFile); err != nil {
		cobra.CheckErr(err)
	}
}

// loadConfig applies defaults, environment overrides and the config file to v.
// A missing default config file is fine; an explicit one must exist.
func loadConfig(v *viper.Viper, file string) error {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(app)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}

	return nil
}

func getConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if config == nil {
		config = &Config{}
	}
	if config.Avatar == nil {
		config.Avatar = &AvatarConfig{}
	}
	if config.LLM == nil {
		config.LLM = &LLMConfig{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}
	if config.Interview == nil {
		config.Interview = &InterviewConfig{}
	}

	return config, nil
}
