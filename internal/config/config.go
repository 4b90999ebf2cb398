// Package config holds runtime configuration: defaults, the optional TOML
// config file, CLI flag binding, and validation.
package config

import (
	"errors"
	"fmt"
	"strconv"
)

// --- Enum types for validated fields ---

// SampleRate is the decode and encode sample rate in Hz.
type SampleRate int

const (
	Rate8000  SampleRate = 8000
	Rate16000 SampleRate = 16000 // Default.
	Rate24000 SampleRate = 24000
	Rate32000 SampleRate = 32000
	Rate44100 SampleRate = 44100
	Rate48000 SampleRate = 48000
)

// SupportedSampleRates lists every accepted rate in ascending order.
var SupportedSampleRates = []SampleRate{Rate8000, Rate16000, Rate24000, Rate32000, Rate44100, Rate48000}

// Valid reports whether r is one of [SupportedSampleRates].
func (r SampleRate) Valid() bool {
	for _, s := range SupportedSampleRates {
		if r == s {
			return true
		}
	}
	return false
}

func (r SampleRate) String() string { return strconv.Itoa(int(r)) }

// OddLengthMode selects what happens when the decoder returns an odd number
// of PCM bytes.
type OddLengthMode string

const (
	OddLengthFail     OddLengthMode = "fail"     // Fail the file with a decode error (default).
	OddLengthTruncate OddLengthMode = "truncate" // Drop the trailing byte and warn.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig], then
// by the optional config file ([LoadFile]), then by explicitly set flags
// ([Merge]) before being passed by pointer to the packages that need it.
type Config struct {
	// Paths (set from the positional arg and -o).
	InputPath  string `toml:"-"`
	OutputPath string `toml:"-"` // Single-file override; empty means derived.

	// Conversion.
	SampleRate  SampleRate    `toml:"sample_rate"` // Default: 16000.
	BitrateKbps int           `toml:"-"`           // Fixed: 128.
	Quality     int           `toml:"-"`           // Fixed: 5 (LAME "good").
	OddLength   OddLengthMode `toml:"odd_length"`  // Default: "fail".
	KeepWAV     bool          `toml:"keep_wav"`

	// Behavior flags.
	DryRun bool `toml:"-"`
	NoLock bool `toml:"no_lock"`

	// Display and logging.
	Verbose   bool      `toml:"verbose"`
	ColorMode ColorMode `toml:"color"`    // Default: "auto".
	LogFile   string    `toml:"log_file"` // Optional log file path.
	CheckOnly bool      `toml:"-"`        // Run --check diagnostics and exit.

	// ConfigFile is the file that was loaded, if any.
	ConfigFile string `toml:"-"`
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	return Config{
		SampleRate:  Rate16000,
		BitrateKbps: 128,
		Quality:     5,
		OddLength:   OddLengthFail,
		ColorMode:   ColorAuto,
	}
}

// Validate checks that enum fields hold valid values. When not in CheckOnly
// mode, it also requires an input path.
func (c *Config) Validate() error {
	if !c.SampleRate.Valid() {
		return fmt.Errorf("invalid sample rate %d (use 8000, 16000, 24000, 32000, 44100 or 48000)", int(c.SampleRate))
	}

	switch c.OddLength {
	case OddLengthFail, OddLengthTruncate:
		// valid
	default:
		return errors.New("invalid odd_length (use 'fail' or 'truncate')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.BitrateKbps <= 0 {
		return fmt.Errorf("invalid bitrate %d kbps", c.BitrateKbps)
	}
	if c.Quality < 0 || c.Quality > 9 {
		return fmt.Errorf("invalid encoder quality %d (0-9)", c.Quality)
	}

	if c.CheckOnly {
		return nil
	}
	if c.InputPath == "" {
		return errors.New("need exactly one input path")
	}
	return nil
}
