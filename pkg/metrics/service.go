package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/solarbits/solax2mqtt/pkg/types"
)

// BridgeMetrics exposes poll outcomes and the headline reading fields.
type BridgeMetrics struct {
	pollSuccess prometheus.Counter
	pollFailure *prometheus.CounterVec

	acPowerW         prometheus.Gauge
	dcPowerW         prometheus.Gauge
	feedInPowerW     prometheus.Gauge
	homeConsumptionW prometheus.Gauge
	energyTodayKWh   prometheus.Gauge
	energyTotalKWh   prometheus.Gauge
	inverterTempC    prometheus.Gauge
	operationMode    prometheus.Gauge
	lastSuccess      prometheus.Gauge
}

func NewBridgeMetrics(reg prometheus.Registerer) *BridgeMetrics {
	m := &BridgeMetrics{
		pollSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "solax2mqtt_poll_success_total",
			Help: "Poll cycles that fetched, decoded and published a reading",
		}),
		pollFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solax2mqtt_poll_failure_total",
			Help: "Failed poll cycles by reason",
		}, []string{"reason"}),
		acPowerW: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solax2mqtt_ac_power_w",
			Help: "AC output power in watts",
		}),
		dcPowerW: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solax2mqtt_dc_power_w",
			Help: "DC string 1 power in watts",
		}),
		feedInPowerW: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solax2mqtt_feed_in_power_w",
			Help: "Power exported to the grid in watts (negative when importing)",
		}),
		homeConsumptionW: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solax2mqtt_home_consumption_w",
			Help: "Computed home consumption in watts",
		}),
		energyTodayKWh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solax2mqtt_energy_today_kwh",
			Help: "Energy produced today (kWh)",
		}),
		energyTotalKWh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solax2mqtt_energy_total_kwh",
			Help: "Lifetime energy production (kWh)",
		}),
		inverterTempC: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solax2mqtt_inverter_temperature_c",
			Help: "Inverter temperature (degrees Celsius)",
		}),
		operationMode: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solax2mqtt_operation_mode",
			Help: "Inverter operation mode code",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solax2mqtt_last_success_timestamp_seconds",
			Help: "Last successful poll timestamp (epoch seconds)",
		}),
	}

	reg.MustRegister(
		m.pollSuccess,
		m.pollFailure,
		m.acPowerW,
		m.dcPowerW,
		m.feedInPowerW,
		m.homeConsumptionW,
		m.energyTodayKWh,
		m.energyTotalKWh,
		m.inverterTempC,
		m.operationMode,
		m.lastSuccess,
	)
	return m
}

func (m *BridgeMetrics) ObserveReading(reading *types.InverterReading) {
	m.pollSuccess.Inc()
	m.acPowerW.Set(reading.ACPowerW)
	m.dcPowerW.Set(reading.DCPower1W)
	m.feedInPowerW.Set(reading.FeedInPowerW)
	m.homeConsumptionW.Set(reading.HomeConsumptionW)
	m.energyTodayKWh.Set(reading.EnergyTodayKWH)
	m.energyTotalKWh.Set(reading.EnergyTotalKWH)
	m.inverterTempC.Set(reading.InverterTempC)
	m.operationMode.Set(float64(reading.StatusCode))
	m.lastSuccess.Set(float64(time.Now().Unix()))
}

func (m *BridgeMetrics) ObserveFailure(reason string) {
	m.pollFailure.WithLabelValues(reason).Inc()
}
