package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const instrumentationName = "rally-server"

// SetupMetrics installs a global meter provider that exports to out every
// interval. The returned func flushes and shuts it down.
func SetupMetrics(out io.Writer, interval time.Duration) (func(context.Context) error, error) {
	exp, err := stdoutmetric.New(stdoutmetric.WithWriter(out))
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}
	var opts []sdkmetric.PeriodicReaderOption
	if interval > 0 {
		opts = append(opts, sdkmetric.WithInterval(interval))
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, opts...)))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// simMetrics are the match instruments. A nil *simMetrics records nothing.
type simMetrics struct {
	ticks       metric.Float64Histogram
	kills       metric.Int64Counter
	projectiles metric.Int64UpDownCounter
	matches     metric.Int64Counter
}

// newSimMetrics uses the global provider, a no-op unless SetupMetrics ran
func newSimMetrics() (*simMetrics, error) {
	return newSimMetricsWith(otel.GetMeterProvider())
}

func newSimMetricsWith(mp metric.MeterProvider) (*simMetrics, error) {
	m := mp.Meter(instrumentationName)
	s := &simMetrics{}
	var err error

	s.ticks, err = m.Float64Histogram(
		"sim.tick.duration",
		metric.WithDescription("Wall time of one simulation step"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick histogram: %w", err)
	}

	s.kills, err = m.Int64Counter(
		"sim.kills",
		metric.WithDescription("Vehicles destroyed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating kill counter: %w", err)
	}

	s.projectiles, err = m.Int64UpDownCounter(
		"sim.projectiles.live",
		metric.WithDescription("Projectiles currently in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating projectile counter: %w", err)
	}

	s.matches, err = m.Int64Counter(
		"sim.matches.ended",
		metric.WithDescription("Matches that reached their end condition"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating match counter: %w", err)
	}
	return s, nil
}

func (s *simMetrics) tick(d time.Duration) {
	if s == nil {
		return
	}
	s.ticks.Record(context.Background(), float64(d.Microseconds())/1000)
}

func (s *simMetrics) kill(weapon WeaponName) {
	if s == nil {
		return
	}
	s.kills.Add(context.Background(), 1, metric.WithAttributes(attribute.String("weapon", string(weapon))))
}

func (s *simMetrics) projectileSpawned() {
	if s == nil {
		return
	}
	s.projectiles.Add(context.Background(), 1)
}

func (s *simMetrics) projectileRemoved() {
	if s == nil {
		return
	}
	s.projectiles.Add(context.Background(), -1)
}

func (s *simMetrics) matchEnded(mode GameMode) {
	if s == nil {
		return
	}
	s.matches.Add(context.Background(), 1, metric.WithAttributes(attribute.String("mode", mode.String())))
}
