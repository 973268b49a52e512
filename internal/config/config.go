package config

import (
	"os"
	"strings"

	"github.com/regisgambiza/Smart-Air-Purifier/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	defaultInterval     = 1
	defaultListen       = ":8090"
	defaultProfile      = "balanced"
	defaultPWMFrequency = 25000
	defaultTachChip     = "/dev/gpiochip0"
	defaultTachPin      = 17
	defaultI2CBus       = "/dev/i2c-1"
	defaultI2CAddr      = 0x44
)

type Config struct {
	Interval int    `mapstructure:"interval"`
	Listen   string `mapstructure:"listen"`
	LogLevel string `mapstructure:"log_level"`
	Profile  string `mapstructure:"profile"`

	// Hardware enables the PWM output, tachometer line and sensor buses.
	// Off by default so the daemon can run anywhere for development.
	Hardware     bool   `mapstructure:"hardware"`
	PWMFrequency int    `mapstructure:"pwm_frequency"`
	TachChip     string `mapstructure:"tach_chip"`
	TachPin      int    `mapstructure:"tach_pin"`
	// FanGPIOPin switches the fan through a plain GPIO when no pwmchip is
	// available. -1 disables the fallback.
	FanGPIOPin int    `mapstructure:"fan_gpio_pin"`
	W1Device   string `mapstructure:"w1_device"`
	I2CBus     string `mapstructure:"i2c_bus"`
	I2CAddr    int    `mapstructure:"i2c_addr"`
}

func Load() (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	v.SetDefault("interval", defaultInterval)
	v.SetDefault("listen", defaultListen)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("profile", defaultProfile)
	v.SetDefault("hardware", false)
	v.SetDefault("pwm_frequency", defaultPWMFrequency)
	v.SetDefault("tach_chip", defaultTachChip)
	v.SetDefault("tach_pin", defaultTachPin)
	v.SetDefault("fan_gpio_pin", -1)
	v.SetDefault("w1_device", "")
	v.SetDefault("i2c_bus", defaultI2CBus)
	v.SetDefault("i2c_addr", defaultI2CAddr)

	flags := pflag.NewFlagSet("airpurifierd", pflag.ContinueOnError)
	flags.Int("interval", defaultInterval, "Control tick interval in seconds")
	flags.String("listen", defaultListen, "HTTP listen address")
	flags.String("log-level", DefaultLogLevel, "Log level (debug, info, warn, error)")
	flags.String("profile", defaultProfile, "Initial tuning profile")
	flags.Bool("hardware", false, "Drive the real PWM output and sensors")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	flags.Visit(func(f *pflag.Flag) {
		v.Set(strings.ReplaceAll(f.Name, "-", "_"), f.Value.String())
	})

	// Config file: explicit path via AIRPURIFIER_CONFIG, otherwise
	// airpurifier.toml in /etc or the working directory.
	if path := os.Getenv("AIRPURIFIER_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file").WithData(err.Error())
		}
	} else {
		v.SetConfigName("airpurifier")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file").WithData(err.Error())
			}
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if c.Hardware && c.TachPin < 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "tach_pin must not be negative")
	}

	return nil
}
