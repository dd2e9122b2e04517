package mqttpub

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/solarbits/solax2mqtt/pkg/types"
)

var ErrBrokerUnavailable = errors.New("mqtt broker unavailable")

const discoveryPrefix = "homeassistant/sensor"

func stateTopic(id string) string {
	return discoveryPrefix + "/" + id + "/state"
}

func configTopic(id string) string {
	return discoveryPrefix + "/" + id + "/config"
}

// StatusTopic is where availability ("Offline") and the operation mode land.
func StatusTopic(prefix string) string {
	return stateTopic(prefix + "_inverter_operation_mode")
}

// Connect establishes the broker session. The last will marks the inverter
// offline when the bridge itself drops off the broker.
func Connect(address, username, password, statusTopic string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().AddBroker(brokerURL(address)).SetClientID("solax2mqtt")
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(120 * time.Second)
	opts.SetWill(statusTopic, "Offline", 0, true)

	if username != "" && password != "" {
		opts.SetUsername(username)
		opts.SetPassword(password)
	}

	opts.OnConnect = func(client mqtt.Client) {
		log.Println("MQTT connected")
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Println("MQTT connection lost:", err)
	}

	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrokerUnavailable, token.Error())
	}

	return c, nil
}

func brokerURL(address string) string {
	if strings.Contains(address, "://") {
		return address
	}
	if !strings.Contains(address, ":") {
		address += ":1883"
	}
	return "tcp://" + address
}

func NewPublisher(client mqtt.Client, prefix string, device DiscoveryDevice) *Publisher {
	return &Publisher{
		client:  client,
		prefix:  prefix,
		device:  device,
		sensors: Sensors(prefix),
	}
}

// PublishDiscovery announces all sensors to Home Assistant. Configs are
// retained so HA picks them up after its own restarts.
func (p *Publisher) PublishDiscovery() error {
	for _, sensor := range p.sensors {
		payload, err := json.Marshal(p.discoveryConfig(sensor))
		if err != nil {
			return fmt.Errorf("encode discovery config for %s: %w", sensor.ID, err)
		}
		if err := p.publish(configTopic(sensor.ID), true, payload); err != nil {
			return err
		}
	}
	return nil
}

// PublishReading publishes every field of the reading to its state topic.
func (p *Publisher) PublishReading(reading *types.InverterReading) error {
	if !p.client.IsConnected() {
		return ErrBrokerUnavailable
	}
	for _, sensor := range p.sensors {
		if err := p.publish(stateTopic(sensor.ID), false, sensor.Value(reading)); err != nil {
			return err
		}
	}
	return nil
}

// PublishStatus overrides the operation mode topic, e.g. with "Offline"
// when the inverter stops answering.
func (p *Publisher) PublishStatus(status string) error {
	if !p.client.IsConnected() {
		return ErrBrokerUnavailable
	}
	return p.publish(StatusTopic(p.prefix), false, status)
}

func (p *Publisher) publish(topic string, retained bool, payload any) error {
	token := p.client.Publish(topic, 0, retained, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("%w: publish %s: %v", ErrBrokerUnavailable, topic, token.Error())
	}
	return nil
}

func (p *Publisher) discoveryConfig(sensor Sensor) DiscoveryConfig {
	return DiscoveryConfig{
		StateTopic:        stateTopic(sensor.ID),
		Name:              sensor.Name,
		UniqueID:          sensor.ID,
		Icon:              sensor.Icon,
		DeviceClass:       sensor.DeviceClass,
		StateClass:        sensor.StateClass,
		UnitOfMeasurement: sensor.Unit,
		ObjectID:          sensor.ObjectID,
		EntityCategory:    sensor.EntityCategory,
		Device:            p.device,
	}
}

// Sensors returns the published entity set for the X1 Mini G3 realtime payload.
// IDs follow the <prefix>_<slug> convention; Home Consumption Power keeps a
// bare id so its object_id stays stable in Home Assistant.
func Sensors(prefix string) []Sensor {
	id := func(slug string) string { return prefix + "_" + slug }

	return []Sensor{
		{
			ID: id("inverter_temperature"), Name: "Inverter Temperature",
			DeviceClass: "temperature", StateClass: "measurement",
			Icon: "mdi:thermometer", Unit: "°C",
			Value: func(r *types.InverterReading) string { return formatNumber(r.InverterTempC) },
		},
		{
			ID: id("energy_today"), Name: "Energy Today",
			DeviceClass: "energy", StateClass: "total_increasing",
			Icon: "mdi:solar-panel", Unit: "kWh",
			Value: func(r *types.InverterReading) string { return formatNumber(r.EnergyTodayKWH) },
		},
		{
			ID: id("energy_total"), Name: "Energy Total",
			DeviceClass: "energy", StateClass: "total_increasing",
			Icon: "mdi:chart-line", Unit: "kWh",
			Value: func(r *types.InverterReading) string { return formatNumber(r.EnergyTotalKWH) },
		},
		{
			ID: id("dc_voltage_1"), Name: "DC Voltage 1",
			DeviceClass: "voltage", StateClass: "measurement",
			Icon: "mdi:current-ac", Unit: "V",
			Value: func(r *types.InverterReading) string { return formatNumber(r.DCVoltage1V) },
		},
		{
			ID: id("dc_current_1"), Name: "DC Current 1",
			DeviceClass: "current", StateClass: "measurement",
			Icon: "mdi:current-ac", Unit: "A",
			Value: func(r *types.InverterReading) string { return formatNumber(r.DCCurrent1A) },
		},
		{
			ID: id("dc_power_1"), Name: "DC Power 1",
			DeviceClass: "power", StateClass: "measurement",
			Icon: "mdi:power-socket-de", Unit: "W",
			Value: func(r *types.InverterReading) string { return formatNumber(r.DCPower1W) },
		},
		{
			ID: id("ac_output_voltage"), Name: "AC Output Voltage",
			DeviceClass: "voltage", StateClass: "measurement",
			Icon: "mdi:current-ac", Unit: "V",
			Value: func(r *types.InverterReading) string { return formatNumber(r.GridVoltageV) },
		},
		{
			ID: id("ac_current"), Name: "AC Current",
			DeviceClass: "current", StateClass: "measurement",
			Icon: "mdi:current-ac", Unit: "A",
			Value: func(r *types.InverterReading) string { return formatNumber(r.GridCurrentA) },
		},
		{
			ID: id("ac_power"), Name: "AC Power",
			DeviceClass: "power", StateClass: "measurement",
			Icon: "mdi:solar-panel", Unit: "W",
			Value: func(r *types.InverterReading) string { return formatNumber(r.ACPowerW) },
		},
		{
			ID: id("ac_frequency"), Name: "AC Frequency",
			DeviceClass: "frequency", StateClass: "measurement",
			Icon: "mdi:music-clef-treble", Unit: "Hz",
			Value: func(r *types.InverterReading) string { return formatNumber(r.GridFrequencyHz) },
		},
		{
			ID: id("inverter_operation_mode"), Name: "Inverter Operation Mode",
			Icon:  "mdi:check",
			Value: func(r *types.InverterReading) string { return r.Status },
		},
		{
			ID: id("feedin_power"), Name: "Feed-in Power",
			DeviceClass: "power", StateClass: "measurement",
			Icon: "mdi:transmission-tower", Unit: "W",
			Value: func(r *types.InverterReading) string { return formatNumber(r.FeedInPowerW) },
		},
		{
			ID: id("feedin_energy"), Name: "Feed-in Energy",
			DeviceClass: "energy", StateClass: "total_increasing",
			Icon: "mdi:home-export-outline", Unit: "kWh",
			Value: func(r *types.InverterReading) string { return formatNumber(r.FeedInEnergyKWH) },
		},
		{
			ID: id("consume_energy"), Name: "Consume Energy",
			DeviceClass: "energy", StateClass: "total_increasing",
			Icon: "mdi:home-import-outline", Unit: "kWh",
			Value: func(r *types.InverterReading) string { return formatNumber(r.ConsumeEnergyKWH) },
		},
		{
			ID: id("inverter_version_dsp"), Name: "Inverter Version DSP",
			StateClass: "measurement", Icon: "mdi:sync", EntityCategory: "diagnostic",
			Value: func(r *types.InverterReading) string { return formatNumber(r.VersionDSP) },
		},
		{
			ID: id("inverter_version_arm"), Name: "Inverter Version ARM",
			StateClass: "measurement", Icon: "mdi:sync", EntityCategory: "diagnostic",
			Value: func(r *types.InverterReading) string { return formatNumber(r.VersionARM) },
		},
		{
			ID: "home_consumption_power", Name: "Home Consumption Power",
			DeviceClass: "power", StateClass: "measurement",
			Icon: "mdi:home", Unit: "W", ObjectID: "home_consumption_power",
			Value: func(r *types.InverterReading) string { return formatNumber(r.HomeConsumptionW) },
		},
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
