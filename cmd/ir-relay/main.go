// Command ir-relay toggles relays from learned IR remote codes and reports
// state over MQTT and HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/ir-relay/internal/config"
	"github.com/sweeney/ir-relay/internal/control"
	"github.com/sweeney/ir-relay/internal/gpio"
	"github.com/sweeney/ir-relay/internal/ir"
	"github.com/sweeney/ir-relay/internal/logging"
	"github.com/sweeney/ir-relay/internal/metrics"
	"github.com/sweeney/ir-relay/internal/mqtt"
	"github.com/sweeney/ir-relay/internal/status"
	"github.com/sweeney/ir-relay/internal/store"
	"github.com/sweeney/ir-relay/internal/web"
)

func main() {
	cfg, err := config.Load(os.Args[1:], nil)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger := logging.New(os.Stderr, level)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	dev, err := store.OpenFile(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer dev.Close()
	st := store.New(dev, control.Channels)

	// Print state mode
	if cfg.PrintState {
		return printState(os.Stdout, st)
	}

	lines, err := gpio.NewRealLines(cfg.Chip, cfg.TriggerPin, cfg.IndicatorPin, cfg.RelayPins)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer lines.Close()

	decoder, err := ir.OpenLIRC(cfg.LIRCDevice, logger)
	if err != nil {
		return fmt.Errorf("init ir: %w", err)
	}
	defer decoder.Close()

	var publisher interface {
		mqtt.Publisher
		mqtt.ConnectionStatus
	} = mqtt.Nop{}
	if cfg.Broker != "" {
		publisher = mqtt.NewRealPublisher(cfg.Broker, logger)
	} else {
		logger.Info("mqtt disabled")
	}
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:       cfg.Poll.Milliseconds(),
		DebounceMs:   cfg.Debounce.Milliseconds(),
		HeartbeatMs:  cfg.Heartbeat.Milliseconds(),
		Broker:       cfg.Broker,
		HTTPAddr:     cfg.HTTPAddr,
		Chip:         cfg.Chip,
		RelayPins:    cfg.RelayPins,
		TriggerPin:   cfg.TriggerPin,
		IndicatorPin: cfg.IndicatorPin,
		StorePath:    cfg.StorePath,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	collector := metrics.New()

	ctrl, err := control.New(control.Config{
		Relays:    lines.Relays(),
		Trigger:   lines.Trigger(),
		Indicator: lines.Indicator(),
		Decoder:   decoder,
		Store:     st,
		Reporter:  control.Reporters{tracker, collector, mqtt.NewReporter(publisher, logger)},
		Timings:   cfg.Timings(),
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	if err := ctrl.Init(); err != nil {
		return err
	}

	// Publish startup event with full status snapshot
	tracker.SetMQTTConnected(publisher.IsConnected())
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		logger.Warn("failed to publish startup event", "error", err)
	}

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker, collector.Handler(), logger)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("http server error", "error", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Info("http status server listening", "addr", cfg.HTTPAddr)
	}

	logger.Info("started", "poll", cfg.Poll, "broker", cfg.Broker, "store", cfg.StorePath, "lirc", cfg.LIRCDevice)

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(context.Background(), ctrl, publisher, publisher, tracker, cfg.Heartbeat, time.Now, ticker.C, sigCh, logger)
}

// runLoop steps the controller on every tick until a signal arrives. A
// signal also cancels the context passed to Step, so config mode, which
// blocks inside Step, is abandoned promptly.
func runLoop(ctx context.Context, ctrl *control.Controller, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan os.Signal, 1)
	go func() {
		select {
		case s := <-sig:
			stop <- s
			cancel()
		case <-ctx.Done():
		}
	}()

	lastHeartbeat := now()

	for {
		select {
		case s := <-stop:
			logger.Info("shutting down", "signal", s.String())
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				logger.Warn("failed to publish shutdown event", "error", err)
			} else {
				logger.Info("published shutdown event")
			}
			return nil

		case <-tick:
			if err := ctrl.Step(ctx); err != nil {
				if ctx.Err() != nil {
					logger.Debug("step interrupted", "error", err)
				} else {
					logger.Warn("step error", "error", err)
				}
			}

			if tracker != nil && mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}

			t := now()
			if heartbeat <= 0 || t.Sub(lastHeartbeat) < heartbeat {
				continue
			}
			lastHeartbeat = t

			hbEvent := mqtt.SystemEvent{
				Timestamp: t,
				Event:     "HEARTBEAT",
			}
			if tracker != nil {
				// Refresh network info for heartbeat
				if net := readNetworkInfo(); net != nil {
					tracker.SetNetwork(net)
				}
				snap := tracker.Snapshot()
				logger.Info("heartbeat", "uptime", snap.Uptime().Truncate(time.Second), "mode", string(snap.Mode), "toggles", snap.Counts.Toggles)
				hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
			}
			if err := publisher.PublishSystem(hbEvent); err != nil {
				logger.Warn("heartbeat publish error", "error", err)
			}
		}
	}
}

// printState writes the persisted relay states and codes without touching
// any hardware.
func printState(w io.Writer, st *store.Store) error {
	states, err := st.LoadStates()
	if err != nil {
		return fmt.Errorf("load states: %w", err)
	}
	codes, err := st.LoadCodes()
	if err != nil {
		return fmt.Errorf("load codes: %w", err)
	}
	for i := range states {
		fmt.Fprintf(w, "relay %d: %-3s code %s\n", i, stateString(states[i]), control.FormatCode(codes[i]))
	}
	return nil
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func stateString(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
