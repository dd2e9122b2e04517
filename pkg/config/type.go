package config

import "time"

// Connection parameters. Read once from the environment at startup,
// immutable for the process lifetime.
type BridgeConfig struct {
	SolaxIP       string
	SolaxPassword string
	MqttIP        string
	MqttUsername  string
	MqttPassword  string
	TimeDelay     time.Duration
	OfflineDelay  time.Duration
}

// Non-connection settings, loaded from bridge.toml.
type BridgeFileConfig struct {
	ListenAddress string `toml:"listen_address"`
	ListenPort    int    `toml:"listen_port"`
	TopicPrefix   string `toml:"topic_prefix"`
	DeviceName    string `toml:"device_name"`
	DeviceModel   string `toml:"device_model"`
	Manufacturer  string `toml:"manufacturer"`
	SuggestedArea string `toml:"suggested_area"`
	// Write readings to the local SQLite archive
	ArchiveEnabled bool `toml:"archive_enabled"`
}
