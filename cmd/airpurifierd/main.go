package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/regisgambiza/Smart-Air-Purifier/internal/actuator"
	"github.com/regisgambiza/Smart-Air-Purifier/internal/config"
	"github.com/regisgambiza/Smart-Air-Purifier/internal/engine"
	"github.com/regisgambiza/Smart-Air-Purifier/internal/logger"
	"github.com/regisgambiza/Smart-Air-Purifier/internal/pid"
	"github.com/regisgambiza/Smart-Air-Purifier/internal/sensor"
	"github.com/regisgambiza/Smart-Air-Purifier/internal/web"
)

// fanTestDuty exercises the fan briefly at boot so a seized rotor or a
// miswired header shows up in the log instead of weeks later.
const (
	fanTestDuty     = 100
	fanTestDuration = 2 * time.Second
	shutdownTimeout = 5 * time.Second
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogLevel, logger.IsService()); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("another instance owns the fan")
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove PID file")
		}
	}()

	out, err := openOutput()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open fan output")
	}
	defer func() {
		if err := out.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close fan output")
		}
	}()

	primary, secondary := openSensors()

	eng := engine.New(engine.Config{
		Profile:   cfg.Profile,
		Output:    out,
		Primary:   primary,
		Secondary: secondary,
	})

	if cfg.Hardware {
		fanTest(out)
	}
	eng.Start()

	tachLine, err := openTach(eng)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open tachometer line")
	}
	if tachLine != nil {
		defer tachLine.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           web.Handler(eng),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go serve(server, cancel)

	if err := loop(ctx, eng); err != nil {
		logger.Error().Err(err).Msg("error in control loop")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP shutdown failed")
	}
	logger.Info().Msg("Exiting...")
}

func loop(ctx context.Context, eng *engine.Engine) error {
	interval := time.Duration(cfg.Interval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			eng.Tick(now)
			logState(eng.Snapshot(now))
		}
	}
}

func logState(snap engine.Snapshot) {
	ev := logger.Debug().
		Str("mode", snap.Mode).
		Str("profile", snap.Profile).
		Uint8("speed_pct", snap.SpeedPct).
		Int("rpm", snap.RPM).
		Bool("sht_ok", snap.SHTOnline)
	if snap.TempC != nil {
		ev = ev.Float64("temp_c", *snap.TempC)
	}
	if snap.HumidityPct != nil {
		ev = ev.Float64("humidity_pct", *snap.HumidityPct)
	}
	if snap.ProbeTempC != nil {
		ev = ev.Float64("probe_temp_c", *snap.ProbeTempC)
	}
	ev.Msg("")
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func serve(server *http.Server, cancel context.CancelFunc) {
	logger.Info().Str("listen", server.Addr).Msg("HTTP server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("HTTP server failed")
		cancel()
	}
}

// openOutput selects the fan driver: hardware PWM when enabled, the GPIO
// on/off fallback when a pwmchip is missing, and an in-memory recorder for
// development machines.
func openOutput() (actuator.Output, error) {
	if !cfg.Hardware {
		logger.Info().Msg("Hardware disabled; recording fan commands in memory")
		return actuator.NewRecorder(), nil
	}

	out, err := actuator.OpenPWM(cfg.PWMFrequency)
	if err == nil {
		return out, nil
	}

	if cfg.FanGPIOPin >= 0 {
		logger.Warn().Err(err).Int("pin", cfg.FanGPIOPin).Msg("PWM unavailable; falling back to GPIO switching")
		return actuator.OpenGPIO(cfg.TachChip, cfg.FanGPIOPin)
	}

	return nil, err
}

func openSensors() (sensor.TemperatureSource, sensor.ClimateSource) {
	if !cfg.Hardware {
		return nil, sensor.Offline{}
	}

	var primary sensor.TemperatureSource
	if probe, err := sensor.NewDS18B20(cfg.W1Device); err != nil {
		logger.Warn().Err(err).Msg("DS18B20 probe unavailable")
	} else {
		primary = probe
	}

	sht, err := sensor.NewSHT3x(cfg.I2CBus, cfg.I2CAddr)
	if err != nil {
		logger.Warn().Err(err).Msg("SHT3x unavailable; continuing with probe only")
		return primary, sensor.Offline{}
	}
	if !sht.Online() {
		logger.Warn().Str("bus", cfg.I2CBus).Msg("SHT3x did not answer the probe measurement")
	}

	return primary, sht
}

func openTach(eng *engine.Engine) (*sensor.TachLine, error) {
	if !cfg.Hardware {
		return nil, nil
	}

	return sensor.OpenTachLine(cfg.TachChip, cfg.TachPin, eng.OnEdge)
}

// fanTest spins the rotor at full duty for a moment before control starts.
func fanTest(out actuator.Output) {
	logger.Info().Msg("Running startup fan test")
	if err := out.WriteDutyPercent(0, fanTestDuty); err != nil {
		logger.Error().Err(err).Msg("fan test write failed")
		return
	}
	time.Sleep(fanTestDuration)
}
