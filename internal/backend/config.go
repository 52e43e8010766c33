package backend

import (
	"errors"
	"fmt"
	"strings"

	"finbot/internal/config"
)

var backendTypes = []BackendType{SQLiteBackend, MemoryBackend}

// ParseBackendType accepts the DATA_BACKEND value case-insensitively.
func ParseBackendType(s string) (BackendType, error) {
	bt := BackendType(strings.ToLower(strings.TrimSpace(s)))
	if !bt.IsValid() {
		return "", fmt.Errorf("unknown backend %q (want one of %s)", s, strings.Join(GetBackendTypeStrings(), ", "))
	}
	return bt, nil
}

// FromAppConfig selects the storage and event settings of the bot process.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	bt, err := ParseBackendType(appConfig.DataBackend)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Type:         bt,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}, nil
}

func (c Config) Validate() error {
	var errs []error
	if !c.Type.IsValid() {
		errs = append(errs, fmt.Errorf("invalid backend type: %s", c.Type))
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		errs = append(errs, errors.New("SQLite database path is required for sqlite backend"))
	}
	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		errs = append(errs, errors.New("AMQP exchange and queue are required when AMQP is enabled"))
	}
	return errors.Join(errs...)
}

func GetBackendTypeStrings() []string {
	out := make([]string, len(backendTypes))
	for i, bt := range backendTypes {
		out[i] = bt.String()
	}
	return out
}
