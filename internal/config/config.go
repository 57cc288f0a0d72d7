// Package config loads mythos settings from defaults, a YAML file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/conorfennell/mythos/internal/domain"
	"github.com/conorfennell/mythos/internal/srs"
)

// EnvPrefix prefixes every environment variable read. Nested keys are
// separated by a double underscore, as in MYTHOS_QUIZ__COUNT.
const EnvPrefix = "MYTHOS_"

// ErrInvalidConfig is returned when the loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the fully resolved application configuration.
type Config struct {
	DB      string        `koanf:"db" validate:"required"`
	Content ContentConfig `koanf:"content"`
	Quiz    QuizConfig    `koanf:"quiz"`
	Review  srs.Params    `koanf:"review"`
	Seed    int64         `koanf:"seed"`
	Log     LogConfig     `koanf:"log"`
	Server  ServerConfig  `koanf:"server"`
}

// ContentConfig locates the mythology content and the optional git repository it syncs from.
type ContentConfig struct {
	Dir      string `koanf:"dir" validate:"required"`
	Repo     string `koanf:"repo"`
	ReposDir string `koanf:"repos_dir" validate:"required"`
}

// QuizConfig holds the defaults for new quizzes.
type QuizConfig struct {
	Count      int               `koanf:"count" validate:"min=1,max=100"`
	Difficulty domain.Difficulty `koanf:"difficulty" validate:"oneof=easy medium hard"`
	Timer      bool              `koanf:"timer"`
}

// LogConfig sets the minimum log level.
type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `koanf:"addr" validate:"required,hostname_port"`
}

func defaults() map[string]any {
	p := srs.DefaultParams()
	return map[string]any{
		"db":                      "mythos.db",
		"content.dir":             "content",
		"content.repo":            "",
		"content.repos_dir":       "repos",
		"quiz.count":              10,
		"quiz.difficulty":         string(domain.Medium),
		"quiz.timer":              false,
		"review.initial_ease":     p.InitialEase,
		"review.minimum_ease":     p.MinimumEase,
		"review.hard_factor":      p.HardFactor,
		"review.easy_bonus":       p.EasyBonus,
		"review.graduation_days":  p.GraduationDays,
		"review.maximum_interval": p.MaximumInterval,
		"seed":                    0,
		"log.level":               "info",
		"server.addr":             ":8080",
	}
}

// flagKeys maps each flag registered by RegisterFlags to its config key.
var flagKeys = map[string]string{
	"config":          "",
	"db":              "db",
	"content-dir":     "content.dir",
	"content-repo":    "content.repo",
	"quiz-count":      "quiz.count",
	"quiz-difficulty": "quiz.difficulty",
	"quiz-timer":      "quiz.timer",
	"seed":            "seed",
	"log-level":       "log.level",
	"addr":            "server.addr",
}

// RegisterFlags defines the flags Load reads on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := defaults()
	fs.StringP("config", "c", "", "Path to a YAML config file")
	fs.String("db", d["db"].(string), "Path to the SQLite database file")
	fs.String("content-dir", d["content.dir"].(string), "Directory holding the content YAML files")
	fs.String("content-repo", "", "Git URL of the content repository")
	fs.Int("quiz-count", d["quiz.count"].(int), "Number of questions per quiz")
	fs.String("quiz-difficulty", d["quiz.difficulty"].(string), "Quiz difficulty: easy, medium or hard")
	fs.Bool("quiz-timer", false, "Enable the per-question timer bonus")
	fs.Int64("seed", 0, "Random seed for quizzes; 0 seeds from the clock")
	fs.String("log-level", d["log.level"].(string), "Log level: debug, info, warn or error")
	fs.String("addr", d["server.addr"].(string), "Address the API server listens on")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load builds the Config. path names an optional YAML file; fs, when not
// nil, supplies flags registered with RegisterFlags. Only flags set on the
// command line override the file and environment.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	if fs != nil {
		if err := k.Load(posflag.ProviderWithFlag(fs, ".", k, flagValue(fs)), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks every field and the scheduler parameters.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Review.Validate(); err != nil {
		return fmt.Errorf("%w: review: %w", ErrInvalidConfig, err)
	}
	return nil
}

// envKey turns MYTHOS_REVIEW__INITIAL_EASE into review.initial_ease.
func envKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.ReplaceAll(key, "__", "."), value
}

// flagValue maps registered flags to their config keys. Any other flag on
// fs yields an empty key, which posflag skips.
func flagValue(fs *pflag.FlagSet) func(*pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		key := flagKeys[f.Name]
		if key == "" {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	}
}
