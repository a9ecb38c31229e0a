// go-bleradio
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-bleradio.
//
// go-bleradio is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-bleradio is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-bleradio; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the tool configuration file
type Config struct {
	Transport TransportConfig `yaml:"transport"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	WiFi      WiFiConfig      `yaml:"wifi"`
	Detection DetectionConfig `yaml:"detection"`
	Radio     RadioConfig     `yaml:"radio"`
}

// TransportConfig selects how the radio is attached
type TransportConfig struct {
	Type     string `yaml:"type"` // "uart" or "spi"
	Port     string `yaml:"port"` // serial port or SPI bus path
	IRQPin   string `yaml:"irq_pin"`
	BaudRate int    `yaml:"baud_rate"`
	ClockHz  int64  `yaml:"clock_hz"`
}

// RadioConfig mirrors the engine options
type RadioConfig struct {
	CommandTimeout  time.Duration `yaml:"command_timeout"`
	AccessTimeout   time.Duration `yaml:"access_timeout"`
	EventQueueDepth int           `yaml:"event_queue_depth"`
}

// MonitorConfig configures the monitor subcommand
type MonitorConfig struct {
	Listen          string        `yaml:"listen"`
	LinkIdleTimeout time.Duration `yaml:"link_idle_timeout"`
}

// DetectionConfig filters the ports subcommand
type DetectionConfig struct {
	Blocklist   []string `yaml:"blocklist"`
	IgnorePaths []string `yaml:"ignore_paths"`
	USBOnly     bool     `yaml:"usb_only"`
}

// WiFiConfig configures the companion Wi-Fi module
type WiFiConfig struct {
	Port     string `yaml:"port"`
	SSID     string `yaml:"ssid"`
	Password string `yaml:"password"`
	BaudRate int    `yaml:"baud_rate"`
}

// DefaultConfig returns the settings used when no file overrides them
func DefaultConfig() *Config {
	return &Config{
		Transport: TransportConfig{
			Type:     "uart",
			Port:     "/dev/ttyUSB0",
			BaudRate: 115200,
			IRQPin:   "GPIO25",
			ClockHz:  1_000_000,
		},
		Radio: RadioConfig{
			CommandTimeout:  time.Second,
			AccessTimeout:   time.Second,
			EventQueueDepth: 16,
		},
		Monitor: MonitorConfig{
			Listen:          ":8080",
			LinkIdleTimeout: 30 * time.Second,
		},
		WiFi: WiFiConfig{
			Port:     "/dev/ttyUSB1",
			BaudRate: 115200,
		},
	}
}

// LoadConfig overlays the YAML file at path on the defaults. A missing file
// leaves the defaults in place.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// override applies the command line transport settings and validates the result
func (c *Config) override(transportType, port string) error {
	if port != "" {
		c.Transport.Port = port
	}
	if transportType != "" {
		c.Transport.Type = transportType
	}
	return c.validate()
}

func (c *Config) validate() error {
	switch c.Transport.Type {
	case "uart", "spi":
	default:
		return fmt.Errorf("unknown transport type %q", c.Transport.Type)
	}
	if c.Transport.Port == "" {
		return errors.New("transport port is empty")
	}
	if c.Transport.Type == "uart" && c.Transport.BaudRate <= 0 {
		return fmt.Errorf("bad baud rate %d", c.Transport.BaudRate)
	}
	return nil
}
