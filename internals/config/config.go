// Copyright (c) 2023 Canonical Ltd
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License version 3 as
// published by the Free Software Foundation.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/termus/burnfw/internals/burner"
	"github.com/termus/burnfw/internals/logger"
)

const (
	// DefaultPath is used when neither --config nor $BURNFW_CONFIG is given.
	DefaultPath = "/etc/burnfw/config.yaml"

	DefaultLEDDevice = "/dev/leds"

	// fwVerVariable is the bootloader variable advertising support for the
	// partition validity handshake.
	fwVerVariable = "support_fw_ver"
)

// FwVerMode selects how support for the validity handshake is decided.
type FwVerMode string

const (
	FwVerAuto FwVerMode = "auto"
	FwVerYes  FwVerMode = "yes"
	FwVerNo   FwVerMode = "no"
)

// LEDConfig describes the LEDs blinked while an update is running.
type LEDConfig struct {
	Enabled bool   `yaml:"enabled"`
	Count   int    `yaml:"count,omitempty"`
	IDs     []int  `yaml:"ids,omitempty"`
	Device  string `yaml:"device,omitempty"`
}

// Active returns the LED identifiers taking part in the blink cycle.
func (l LEDConfig) Active() []int {
	if l.Count == 0 || l.Count > len(l.IDs) {
		return l.IDs
	}
	return l.IDs[:l.Count]
}

// File is the on-disk configuration.
type File struct {
	ProductID    *uint32   `yaml:"product-id"`
	SupportFwVer FwVerMode `yaml:"support-fw-ver,omitempty"`
	LEDs         LEDConfig `yaml:"leds,omitempty"`
}

// DeviceConfig is the resolved configuration of the device being updated.
// It is not modified once loaded.
type DeviceConfig struct {
	ProductID    uint32
	SupportFwVer bool
	LED          LEDConfig
}

// Engine returns the subset of the configuration the update engine needs.
func (d *DeviceConfig) Engine() burner.Config {
	return burner.Config{
		ProductID:    d.ProductID,
		SupportFwVer: d.SupportFwVer,
	}
}

// FormatError is the error returned when the configuration has a format
// error.
type FormatError struct {
	Message string
}

func (e *FormatError) Error() string {
	return e.Message
}

// Path returns the configuration path to use: the flag value if set, then
// $BURNFW_CONFIG, then DefaultPath.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("BURNFW_CONFIG"); env != "" {
		return env
	}
	return DefaultPath
}

// Parse decodes and validates a configuration file.
func Parse(data []byte) (*File, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, &FormatError{
			Message: fmt.Sprintf("cannot parse configuration: %v", err),
		}
	}
	if err := file.Validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

// Validate checks that the configuration is complete and consistent.
func (f *File) Validate() error {
	if f.ProductID == nil {
		return &FormatError{Message: "configuration must define product-id"}
	}
	switch f.SupportFwVer {
	case "", FwVerAuto, FwVerYes, FwVerNo:
	default:
		return &FormatError{
			Message: fmt.Sprintf("invalid support-fw-ver %q, must be auto, yes or no", f.SupportFwVer),
		}
	}
	leds := f.LEDs
	if leds.Count < 0 {
		return &FormatError{Message: fmt.Sprintf("invalid LED count %d", leds.Count)}
	}
	if leds.Count > len(leds.IDs) {
		return &FormatError{
			Message: fmt.Sprintf("LED count %d exceeds the %d LED ids defined", leds.Count, len(leds.IDs)),
		}
	}
	for _, id := range leds.IDs {
		if id < 0 || id > 255 {
			return &FormatError{Message: fmt.Sprintf("invalid LED id %d", id)}
		}
	}
	if leds.Enabled && len(leds.IDs) == 0 {
		return &FormatError{Message: "LEDs enabled but no LED ids defined"}
	}
	return nil
}

// EnvReader reads bootloader environment variables.
type EnvReader interface {
	GetEnv(name string) (string, error)
}

// Load reads the configuration at path and resolves it into a DeviceConfig.
// The bootloader environment is only consulted when support-fw-ver is auto.
func Load(path string, env EnvReader) (*DeviceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read configuration: %w", err)
	}
	file, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return file.Resolve(env), nil
}

// Resolve turns the file into a DeviceConfig.
func (f *File) Resolve(env EnvReader) *DeviceConfig {
	cfg := &DeviceConfig{
		ProductID: *f.ProductID,
		LED:       f.LEDs,
	}
	if cfg.LED.Device == "" {
		cfg.LED.Device = DefaultLEDDevice
	}
	switch f.SupportFwVer {
	case FwVerYes:
		cfg.SupportFwVer = true
	case FwVerNo:
		cfg.SupportFwVer = false
	default:
		cfg.SupportFwVer = probeFwVer(env)
	}
	return cfg
}

func probeFwVer(env EnvReader) bool {
	if env == nil {
		return false
	}
	value, err := env.GetEnv(fwVerVariable)
	if err != nil {
		logger.Debugf("Cannot read %s, assuming no validity handshake: %v", fwVerVariable, err)
		return false
	}
	return strings.Contains(value, "yes")
}
