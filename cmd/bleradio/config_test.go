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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_Overlay(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bleradio.yaml")
	data := `
transport:
  type: spi
  port: /dev/spidev0.1
  irq_pin: GPIO24
radio:
  command_timeout: 250ms
monitor:
  listen: 127.0.0.1:9000
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "spi", cfg.Transport.Type)
	assert.Equal(t, "/dev/spidev0.1", cfg.Transport.Port)
	assert.Equal(t, "GPIO24", cfg.Transport.IRQPin)
	assert.Equal(t, 250*time.Millisecond, cfg.Radio.CommandTimeout)
	assert.Equal(t, time.Second, cfg.Radio.AccessTimeout, "unset keys keep defaults")
	assert.Equal(t, "127.0.0.1:9000", cfg.Monitor.Listen)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("transport: [\n"), 0o600))
	_, err := LoadConfig(bad)
	require.Error(t, err)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("transport:\n  type: i2c\n"), 0o600))
	_, err = LoadConfig(unknown)
	require.ErrorContains(t, err, "unknown transport type")
}

func TestConfig_Override(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		transport string
		port      string
		wantErr   string
		wantType  string
	}{
		{name: "None", wantType: "uart"},
		{name: "SPI", transport: "spi", port: "/dev/spidev0.0", wantType: "spi"},
		{name: "Unknown_Transport", transport: "foo", wantErr: "unknown transport type"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			err := cfg.override(tt.transport, tt.port)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, cfg.Transport.Type)
			if tt.port != "" {
				assert.Equal(t, tt.port, cfg.Transport.Port)
			}
		})
	}
}

func TestRun_RejectsUnknownTransportFlag(t *testing.T) {
	t.Parallel()

	err := run([]string{"-config", "", "-transport", "foo", "version"})
	require.ErrorContains(t, err, "unknown transport type")
}
