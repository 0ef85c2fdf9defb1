// Package config loads the timedq application config from yml and TIMEDQ_* env.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const EnvPrefix = "timedq"

type Application struct {
	Log     Log           `mapstructure:"log"`
	Metrics Metrics       `mapstructure:"metrics"`
	Queue   Queue         `mapstructure:"queue"`
	RunFor  time.Duration `mapstructure:"run_for"`
	Events  []Event       `mapstructure:"events"`
}

type Log struct {
	Level        string `mapstructure:"level"`
	Encoder      string `mapstructure:"encoder"`
	LevelEncoder string `mapstructure:"level_encoder"`
	//short, full or empty to leave the caller out
	Caller string `mapstructure:"caller"`
	//attach a stack trace to warn and above
	Stacktrace bool   `mapstructure:"stacktrace"`
	TimeLayout string `mapstructure:"time_layout"`
}

type Metrics struct {
	//empty disables the /metrics endpoint
	Listen         string        `mapstructure:"listen"`
	Prefix         string        `mapstructure:"prefix"`
	ReportInterval time.Duration `mapstructure:"report_interval"`
}

type Queue struct {
	Name     string        `mapstructure:"name"`
	MaxSleep time.Duration `mapstructure:"max_sleep"`
	Dispatch string        `mapstructure:"dispatch"`
}

// Event expires After the moment the application starts.
type Event struct {
	Value string        `mapstructure:"value"`
	After time.Duration `mapstructure:"after"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoder", "console")
	v.SetDefault("log.level_encoder", "bracket")
	v.SetDefault("log.caller", "")
	v.SetDefault("log.stacktrace", false)
	v.SetDefault("log.time_layout", "02/Jan/2006:15:04:05 -0700")
	v.SetDefault("metrics.listen", "")
	v.SetDefault("metrics.prefix", "timedq")
	v.SetDefault("metrics.report_interval", time.Second)
	v.SetDefault("queue.name", "timed-event-queue")
	v.SetDefault("queue.max_sleep", time.Minute)
	v.SetDefault("queue.dispatch", "locked")
	v.SetDefault("run_for", 10*time.Second)
}

// Load reads path when given, otherwise looks for application.yml in . and ./config/.
// A missing default file is not an error, a missing explicit path is.
func Load(path string) (Application, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigType("yml")
		v.SetConfigName("application")
		v.AddConfigPath(".")
		v.AddConfigPath("./config/")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Application{}, errors.WithMessage(err, "failed to read config")
		}
	}

	var application Application
	if err := v.Unmarshal(&application); err != nil {
		return Application{}, errors.WithMessage(err, "failed to unmarshal config")
	}
	return application, application.Validate()
}

func (a Application) Validate() error {
	switch strings.ToLower(a.Queue.Dispatch) {
	case "locked", "detached":
	default:
		return errors.Errorf("unknown queue dispatch %q", a.Queue.Dispatch)
	}
	if a.Queue.MaxSleep < 0 {
		return errors.Errorf("queue max_sleep must not be negative, got %s", a.Queue.MaxSleep)
	}
	values := map[string]bool{}
	offsets := map[time.Duration]string{}
	for _, event := range a.Events {
		if values[event.Value] {
			return errors.Errorf("event value %q is configured twice", event.Value)
		}
		values[event.Value] = true
		if other, ok := offsets[event.After]; ok {
			return errors.Errorf("events %q and %q are both scheduled after %s, a timestamp is scheduled twice",
				other, event.Value, event.After)
		}
		offsets[event.After] = event.Value
	}
	return nil
}
