package sim

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exports simulator state to Prometheus
type Metrics struct {
	registry *prometheus.Registry

	levelML      prometheus.Gauge
	targetML     prometheus.Gauge
	tankML       prometheus.Gauge
	foodGrams    prometheus.Gauge
	valveOpen    prometheus.Gauge
	augerDuty    prometheus.Gauge
	alerting     prometheus.Gauge
	petPresent   prometheus.Gauge
	nextEvent    prometheus.Gauge
	alerts       prometheus.Counter
	timeouts     prometheus.Counter
	recomputes   prometheus.Counter
	commands     *prometheus.CounterVec
	publishState prometheus.Gauge

	last counts
}

type counts struct {
	alerts, timeouts, recomputes uint32
}

// NewMetrics creates the collectors on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		levelML: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feeder_water_level_ml",
			Help: "Water level estimated by the firmware.",
		}),
		targetML: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feeder_water_target_ml",
			Help: "Configured water level target.",
		}),
		tankML: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feeder_sim_tank_ml",
			Help: "True water volume in the simulated bowl.",
		}),
		foodGrams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feeder_sim_food_grams",
			Help: "Food dispensed since the simulation started.",
		}),
		valveOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feeder_valve_open",
			Help: "1 while the water valve is open.",
		}),
		augerDuty: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feeder_auger_duty_ratio",
			Help: "Food auger PWM duty, 0 to 1.",
		}),
		alerting: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feeder_alert_active",
			Help: "1 while an alert sequence is sounding.",
		}),
		petPresent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feeder_pet_present",
			Help: "1 while the motion sensor sees the pet.",
		}),
		nextEvent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feeder_next_event_slot",
			Help: "Slot index of the armed feeding event, -1 if none.",
		}),
		alerts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feeder_alerts_total",
			Help: "Alert sequences started.",
		}),
		timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feeder_level_timeouts_total",
			Help: "Level measurements abandoned without a comparator edge.",
		}),
		recomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feeder_schedule_recomputes_total",
			Help: "Times the next feeding event was recomputed.",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feeder_console_commands_total",
			Help: "Console commands received, by command name.",
		}, []string{"command"}),
		publishState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feeder_telemetry_breaker_state",
			Help: "Telemetry circuit breaker state (0 closed, 1 half, 2 open).",
		}),
	}

	m.registry.MustRegister(
		m.levelML,
		m.targetML,
		m.tankML,
		m.foodGrams,
		m.valveOpen,
		m.augerDuty,
		m.alerting,
		m.petPresent,
		m.nextEvent,
		m.alerts,
		m.timeouts,
		m.recomputes,
		m.commands,
		m.publishState,
	)
	return m
}

// Registry returns the registry holding the collectors
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Observe updates the collectors from a snapshot. Firmware counters are
// cumulative, so only the increase since the last call is added.
func (m *Metrics) Observe(s Snapshot) {
	f := s.Feeder
	if f.HaveReading {
		m.levelML.Set(float64(f.Reading.Volume))
	}
	m.targetML.Set(float64(f.Config.TargetLevel))
	m.tankML.Set(s.VolumeML)
	m.foodGrams.Set(s.FoodG)
	m.valveOpen.Set(boolGauge(s.ValveOpen))
	m.augerDuty.Set(s.AugerDuty)
	m.alerting.Set(boolGauge(f.Alerting))
	m.petPresent.Set(boolGauge(s.PetPresent))
	m.nextEvent.Set(float64(f.Schedule.NextIndex))

	cur := counts{alerts: f.Alerts, timeouts: f.Timeouts, recomputes: f.Recomputes}
	m.alerts.Add(float64(cur.alerts - m.last.alerts))
	m.timeouts.Add(float64(cur.timeouts - m.last.timeouts))
	m.recomputes.Add(float64(cur.recomputes - m.last.recomputes))
	m.last = cur
}

// CountCommand records one console command
func (m *Metrics) CountCommand(name string) {
	m.commands.WithLabelValues(name).Inc()
}

// SetBreakerState records the telemetry breaker state
func (m *Metrics) SetBreakerState(state float64) {
	m.publishState.Set(state)
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
