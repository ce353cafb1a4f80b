// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"os"
	"strconv"

	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Configuration defines a global engine configuration setting
type Configuration struct {
	Time     TimeConfiguration
	Instance InstanceConfiguration
	Engine   EngineConfiguration

	// LogLevel is the level the application sets up logging with
	LogLevel logrus.Level
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int

	// EventPollDelay is the window event poll interval in milliseconds
	EventPollDelay int
}

// InstanceConfiguration is used to configure the API instance
type InstanceConfiguration struct {
	// DebugMode enables validation layers and debug reporting
	DebugMode bool

	// Extensions are instance extensions, usually the ones
	// the window needs to present
	Extensions []string
	Layers     []string
}

// EngineConfiguration is used to configure the engine
type EngineConfiguration struct {
	// DebugMode enables timing of compute operations
	DebugMode bool

	ScreenWidth  uint32
	ScreenHeight uint32

	// Logger receives engine logs, the standard logger if nil
	Logger logrus.FieldLogger
}

// Environment keys read by LoadConfiguration
const (
	EnvScreenWidth    = "KORU_SCREEN_WIDTH"
	EnvScreenHeight   = "KORU_SCREEN_HEIGHT"
	EnvDebug          = "KORU_DEBUG"
	EnvFramesPerSec   = "KORU_FPS"
	EnvEventPollDelay = "KORU_EVENT_POLL_DELAY"
	EnvLogLevel       = "KORU_LOG_LEVEL"
)

// DefaultConfiguration returns the configuration used when nothing is set.
func DefaultConfiguration() Configuration {
	return Configuration{
		Time: TimeConfiguration{
			FramesPerSecond: 60,
			EventPollDelay:  50,
		},
		Engine: EngineConfiguration{
			ScreenWidth:  800,
			ScreenHeight: 600,
		},
		LogLevel: logrus.InfoLevel,
	}
}

// LoadConfiguration starts from the defaults, overlays the environment and
// then the given env files, later files winning over earlier ones. Missing
// files are skipped.
//
// Files take precedence over the environment because envy already overloads
// the process environment with ./.env when it is initialised. An explicit
// file therefore also wins over a stray ./.env.
func LoadConfiguration(files ...string) (Configuration, error) {
	cfg := DefaultConfiguration()

	fileValues := map[string]string{}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		values, err := godotenv.Read(f)
		if err != nil {
			return cfg, errors.Wrap(err, "godotenv.Read()")
		}
		for k, v := range values {
			fileValues[k] = v
		}
	}

	lookup := func(key string) string {
		if v, ok := fileValues[key]; ok {
			return v
		}
		return envy.Get(key, "")
	}

	var err error
	if cfg.Engine.ScreenWidth, err = uintValue(lookup(EnvScreenWidth), cfg.Engine.ScreenWidth); err != nil {
		return cfg, errors.Wrap(err, EnvScreenWidth)
	}
	if cfg.Engine.ScreenHeight, err = uintValue(lookup(EnvScreenHeight), cfg.Engine.ScreenHeight); err != nil {
		return cfg, errors.Wrap(err, EnvScreenHeight)
	}
	if cfg.Time.FramesPerSecond, err = intValue(lookup(EnvFramesPerSec), cfg.Time.FramesPerSecond); err != nil {
		return cfg, errors.Wrap(err, EnvFramesPerSec)
	}
	if cfg.Time.EventPollDelay, err = intValue(lookup(EnvEventPollDelay), cfg.Time.EventPollDelay); err != nil {
		return cfg, errors.Wrap(err, EnvEventPollDelay)
	}

	if v := lookup(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, errors.Wrap(err, EnvDebug)
		}
		cfg.Engine.DebugMode = debug
		cfg.Instance.DebugMode = debug
	}

	if v := lookup(EnvLogLevel); v != "" {
		level, err := logrus.ParseLevel(v)
		if err != nil {
			return cfg, errors.Wrap(err, EnvLogLevel)
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}

func uintValue(s string, def uint32) (uint32, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return def, err
	}
	return uint32(v), nil
}

func intValue(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
