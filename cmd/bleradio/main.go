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

// Command bleradio talks to a companion BLE radio over UART or SPI
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	bleradio "github.com/ZaparooProject/go-bleradio"
	"github.com/ZaparooProject/go-bleradio/detection"
	"github.com/ZaparooProject/go-bleradio/internal/bridge"
	"github.com/ZaparooProject/go-bleradio/monitor"
	"github.com/ZaparooProject/go-bleradio/transport/spi"
	"github.com/ZaparooProject/go-bleradio/transport/uart"
	"github.com/ZaparooProject/go-bleradio/wifi"
	"go.bug.st/serial"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/physic"
)

const usageText = `usage: bleradio [flags] <command> [command flags]

commands:
  version             print the controller version
  address             print the local device address
  scan [-duration N]  run an inquiry for N seconds and list advertisers
  monitor [-listen A] stream radio events to websocket clients on A
  ports               list serial ports
  wifi                query the companion Wi-Fi module and join the configured network

flags:
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		_, _ = fmt.Fprintln(os.Stderr, "bleradio:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("bleradio", flag.ContinueOnError)
	configPath := global.String("config", "bleradio.yaml", "YAML configuration file")
	debug := global.Bool("debug", false, "Enable debug output")
	port := global.String("port", "", "Radio port, overrides the configuration")
	transportType := global.String("transport", "", "Radio transport (uart or spi), overrides the configuration")
	global.Usage = func() {
		_, _ = fmt.Fprint(global.Output(), usageText)
		global.PrintDefaults()
	}
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return flag.ErrHelp
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.override(*transportType, *port); err != nil {
		return err
	}

	log, err := newLogger(*debug)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)
	bleradio.SetLogger(log)
	bleradio.SetDebugEnabled(*debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, cmdArgs := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "ports":
		return listPorts(cfg.Detection)
	case "version":
		return withRadio(ctx, cfg, log, printVersion)
	case "address":
		return withRadio(ctx, cfg, log, printAddress)
	case "scan":
		fs := flag.NewFlagSet("scan", flag.ContinueOnError)
		duration := fs.Uint("duration", 5, "Inquiry duration in seconds (1-255)")
		if err := fs.Parse(cmdArgs); err != nil {
			return err
		}
		if *duration == 0 || *duration > 255 {
			return fmt.Errorf("duration %d out of range 1-255", *duration)
		}
		return withRadio(ctx, cfg, log, func(ctx context.Context, r *bleradio.Radio) error {
			return scan(ctx, r, uint8(*duration))
		})
	case "monitor":
		fs := flag.NewFlagSet("monitor", flag.ContinueOnError)
		listen := fs.String("listen", cfg.Monitor.Listen, "Websocket listen address")
		if err := fs.Parse(cmdArgs); err != nil {
			return err
		}
		cfg.Monitor.Listen = *listen
		return withRadio(ctx, cfg, log, func(ctx context.Context, r *bleradio.Radio) error {
			return serveMonitor(ctx, r, cfg.Monitor, log)
		})
	case "wifi":
		return runWiFi(ctx, cfg.WiFi, log)
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if debug {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

func newTransport(cfg TransportConfig) (bleradio.Transport, error) {
	switch cfg.Type {
	case "spi":
		t, err := spi.New(cfg.Port, cfg.IRQPin, spi.WithClock(physic.Frequency(cfg.ClockHz)*physic.Hertz))
		if err != nil {
			return nil, fmt.Errorf("failed to create SPI transport: %w", err)
		}
		return t, nil
	default:
		t, err := uart.New(cfg.Port, uart.WithBaudRate(cfg.BaudRate))
		if err != nil {
			return nil, fmt.Errorf("failed to create UART transport: %w", err)
		}
		return t, nil
	}
}

// withRadio opens and starts the radio, runs fn and closes the radio again
func withRadio(ctx context.Context, cfg *Config, log *zap.Logger,
	fn func(context.Context, *bleradio.Radio) error,
) error {
	transport, err := newTransport(cfg.Transport)
	if err != nil {
		return err
	}

	radio, err := bleradio.New(transport,
		bleradio.WithCommandTimeout(cfg.Radio.CommandTimeout),
		bleradio.WithAccessTimeout(cfg.Radio.AccessTimeout),
		bleradio.WithEventQueueDepth(cfg.Radio.EventQueueDepth),
		bleradio.WithLogger(log),
	)
	if err != nil {
		_ = transport.Close()
		return fmt.Errorf("failed to create radio: %w", err)
	}
	if err := radio.Init(ctx, nil); err != nil {
		_ = transport.Close()
		return fmt.Errorf("failed to start radio: %w", err)
	}
	defer func() {
		if err := radio.Close(); err != nil {
			log.Warn("closing radio failed", zap.Error(err))
		}
	}()

	return fn(ctx, radio)
}

func listPorts(cfg DetectionConfig) error {
	ports, err := detection.Ports(detection.Options{
		Blocklist:   cfg.Blocklist,
		IgnorePaths: cfg.IgnorePaths,
		USBOnly:     cfg.USBOnly,
	})
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		_, _ = fmt.Println("No serial ports found")
		return nil
	}
	for _, p := range ports {
		_, _ = fmt.Println(p)
	}
	return nil
}

func printVersion(ctx context.Context, r *bleradio.Radio) error {
	v, err := r.GetControllerVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read controller version: %w", err)
	}
	_, _ = fmt.Printf("Manufacturer: 0x%04X\nLMP subversion: 0x%04X\n", v.ManufacturerID, v.LMPSubVersion)
	return nil
}

func printAddress(ctx context.Context, r *bleradio.Radio) error {
	a, err := r.GetLocalAddress(ctx)
	if err != nil {
		return fmt.Errorf("failed to read local address: %w", err)
	}
	_, _ = fmt.Printf("%s (%s)\n", a.Address, a.Type)
	return nil
}

func scan(ctx context.Context, r *bleradio.Radio, duration uint8) error {
	if err := r.StartInquiry(ctx, bleradio.InquiryGeneral, duration); err != nil {
		return fmt.Errorf("failed to start inquiry: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, time.Duration(duration)*time.Second+5*time.Second)
	defer cancel()

	seen := 0
	for {
		n, err := r.NextEvent(waitCtx)
		if err != nil {
			if ctx.Err() != nil {
				_ = r.StopInquiry(context.Background())
			}
			return fmt.Errorf("inquiry did not complete: %w", err)
		}
		switch n.Event {
		case bleradio.EventGAPInquiryResult:
			res, ok := n.Data.(bleradio.InquiryResult)
			if !ok {
				continue
			}
			seen++
			_, _ = fmt.Printf("%s  %-8s rssi=%4d  adv=%s\n",
				res.Address, res.AddressType, res.RSSI, hex.EncodeToString(res.AdvData()))
		case bleradio.EventGAPInquiryComplete:
			_, _ = fmt.Printf("%d advertiser(s) reported\n", seen)
			return nil
		default:
		}
	}
}

func serveMonitor(ctx context.Context, r *bleradio.Radio, cfg MonitorConfig, log *zap.Logger) error {
	hub := bridge.NewHub(log)
	mon := monitor.New(r, &monitor.Config{LinkIdleTimeout: cfg.LinkIdleTimeout})
	mon.Subscribe(hub.Broadcast)
	mon.Subscribe(func(n bleradio.Notification) {
		log.Info("event", zap.Stringer("event", n.Event), zap.Any("data", n.Data))
	})
	mon.OnLinkIdle = func(ls monitor.LinkState) {
		log.Info("link idle", zap.Uint16("handle", ls.Handle), zap.Stringer("peer", ls.Peer))
	}

	mux := http.NewServeMux()
	mux.Handle("/events", hub)
	srv := &http.Server{Addr: cfg.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Info("serving events", zap.String("addr", cfg.Listen))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	runErr := mon.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown failed", zap.Error(err))
	}
	if err := <-errCh; err != nil {
		return fmt.Errorf("http server failed: %w", err)
	}

	m := mon.Metrics()
	log.Info("monitor stopped",
		zap.Uint64("events", m.Events), zap.Uint64("errors", m.Errors), zap.Uint64("dropped", m.Dropped))
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

func runWiFi(ctx context.Context, cfg WiFiConfig, log *zap.Logger) error {
	port, err := serial.Open(cfg.Port, &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return fmt.Errorf("failed to open Wi-Fi module port %s: %w", cfg.Port, err)
	}

	mod, err := wifi.New(port, wifi.WithLogger(log), wifi.WithDataHandler(func(link int, data []byte) {
		log.Info("wifi data", zap.Int("link", link), zap.Int("len", len(data)))
	}))
	if err != nil {
		_ = port.Close()
		return fmt.Errorf("failed to start Wi-Fi engine: %w", err)
	}
	defer func() { _ = mod.Close() }()

	if err := mod.Test(ctx); err != nil {
		return fmt.Errorf("module not responding: %w", err)
	}
	version, err := mod.Version(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Println(version)

	if cfg.SSID != "" {
		if err := mod.SetMode(ctx, wifi.ModeStation); err != nil {
			return err
		}
		if err := mod.JoinAP(ctx, cfg.SSID, cfg.Password); err != nil {
			return err
		}
	}

	ip, err := mod.LocalIP(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Printf("Station address: %s\n", ip)
	return nil
}
