package engine

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-uischema/pkg/history"
	"github.com/goliatone/go-uischema/pkg/sanitize"
)

const (
	DefaultQueueDepth    = 16
	DefaultEngineVersion = "0.1.0"
)

// Config holds the declarative engine settings. It can be populated from
// YAML or JSON with LoadConfig.
type Config struct {
	// HistoryDepth bounds the number of committed documents kept for
	// rewind/advance.
	HistoryDepth int `json:"historyDepth" yaml:"historyDepth" validate:"gte=1,lte=10000"`
	// QueueDepth bounds submissions waiting behind the one in flight. Zero
	// rejects any submission that arrives while another is processing.
	QueueDepth int `json:"queueDepth" yaml:"queueDepth" validate:"gte=0,lte=100000"`
	// EngineVersion is stamped into committed metadata.
	EngineVersion string          `json:"engineVersion" yaml:"engineVersion" validate:"required,semver"`
	Sanitize      sanitize.Config `json:"sanitize" yaml:"sanitize"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		HistoryDepth:  history.DefaultDepth,
		QueueDepth:    DefaultQueueDepth,
		EngineVersion: DefaultEngineVersion,
		Sanitize:      sanitize.DefaultConfig(),
	}
}

// LoadConfig decodes YAML or JSON over DefaultConfig, normalises the engine
// version and validates the result.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(string(data)) != "" {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("engine: decode config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg.normalized(), nil
}

// LoadConfigFile reads and decodes a configuration file.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("engine: read config %q: %w", path, err)
	}
	return LoadConfig(data)
}

// Validate checks the configuration against its struct constraints.
func (c Config) Validate() error {
	err := configValidator().Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("engine: validate config: %w", err)
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("engine: invalid config: %s", strings.Join(problems, "; "))
}

func (c Config) normalized() Config {
	if v, err := semver.NewVersion(strings.TrimSpace(c.EngineVersion)); err == nil {
		c.EngineVersion = v.String()
	}
	return c
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func configValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("semver", validateSemver)
	})
	return validate
}

func validateSemver(fl validator.FieldLevel) bool {
	_, err := semver.NewVersion(strings.TrimSpace(fl.Field().String()))
	return err == nil
}
