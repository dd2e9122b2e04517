package mqttpub

import (
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/solarbits/solax2mqtt/pkg/types"
)

// Sensor describes one published field: its MQTT identity, its Home Assistant
// discovery metadata and how to extract the state value from a reading.
type Sensor struct {
	ID             string
	Name           string
	DeviceClass    string
	StateClass     string
	Icon           string
	Unit           string
	EntityCategory string
	ObjectID       string
	Value          func(r *types.InverterReading) string
}

// DiscoveryConfig is the Home Assistant MQTT discovery payload.
type DiscoveryConfig struct {
	StateTopic        string          `json:"state_topic"`
	Name              string          `json:"name"`
	UniqueID          string          `json:"unique_id"`
	Icon              string          `json:"icon,omitempty"`
	DeviceClass       string          `json:"device_class,omitempty"`
	StateClass        string          `json:"state_class,omitempty"`
	UnitOfMeasurement string          `json:"unit_of_measurement,omitempty"`
	ObjectID          string          `json:"object_id,omitempty"`
	EntityCategory    string          `json:"entity_category,omitempty"`
	Device            DiscoveryDevice `json:"device"`
}

type DiscoveryDevice struct {
	Identifiers   []string `json:"identifiers"`
	Name          string   `json:"name"`
	Model         string   `json:"model"`
	Manufacturer  string   `json:"manufacturer"`
	SuggestedArea string   `json:"suggested_area,omitempty"`
}

type Publisher struct {
	client  mqtt.Client
	prefix  string
	device  DiscoveryDevice
	sensors []Sensor
}
