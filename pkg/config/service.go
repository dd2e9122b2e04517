package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/solarbits/solax2mqtt/pkg/pathing"
)

var (
	ActiveBridgeConfig     *BridgeConfig
	ActiveBridgeFileConfig *BridgeFileConfig
)

const (
	DefaultTimeDelaySeconds    = 5
	DefaultOfflineDelaySeconds = 60
)

// LoadBridgeConfig reads connection parameters from the environment.
// A .env file in the working directory is honored when present.
func LoadBridgeConfig() error {
	// .env is optional; system environment always applies
	_ = godotenv.Load()

	cfg := &BridgeConfig{
		SolaxIP:       os.Getenv("SOLAX_IP"),
		SolaxPassword: os.Getenv("SOLAX_PASSWORD"),
		MqttIP:        os.Getenv("MQTT_IP"),
		MqttUsername:  os.Getenv("MQTT_USERNAME"),
		MqttPassword:  os.Getenv("MQTT_PASSWORD"),
	}

	required := []struct {
		name  string
		value string
	}{
		{"SOLAX_IP", cfg.SolaxIP},
		{"SOLAX_PASSWORD", cfg.SolaxPassword},
		{"MQTT_IP", cfg.MqttIP},
	}
	for _, v := range required {
		if v.value == "" {
			return fmt.Errorf("%s environment variable not set", v.name)
		}
	}

	timeDelay, err := secondsFromEnv("TIME_DELAY", DefaultTimeDelaySeconds)
	if err != nil {
		return err
	}
	offlineDelay, err := secondsFromEnv("OFFLINE_DELAY", DefaultOfflineDelaySeconds)
	if err != nil {
		return err
	}
	cfg.TimeDelay = timeDelay
	cfg.OfflineDelay = offlineDelay

	ActiveBridgeConfig = cfg
	return nil
}

func secondsFromEnv(name string, fallback int) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return time.Duration(fallback) * time.Second, nil
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, raw, err)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", name, raw)
	}
	return time.Duration(seconds) * time.Second, nil
}

func LoadBridgeFileConfig() error {
	configPath := filepath.Join(pathing.GetConfigDir(), "bridge.toml")

	// Create default if not exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := &BridgeFileConfig{
			ListenAddress:  "0.0.0.0",
			ListenPort:     9041,
			TopicPrefix:    "solax",
			DeviceName:     "SolaX",
			DeviceModel:    "X1 Mini G3",
			Manufacturer:   "SolaX",
			SuggestedArea:  "Garage",
			ArchiveEnabled: true,
		}
		// Create file
		cfgFile, err := os.Create(configPath)
		if err != nil {
			return err
		}
		defer cfgFile.Close()
		toml.NewEncoder(cfgFile).Encode(cfg)
		ActiveBridgeFileConfig = cfg
		return nil
	}

	// Load existing config
	var config BridgeFileConfig
	_, err := toml.DecodeFile(configPath, &config)
	if err != nil {
		return err
	}
	ActiveBridgeFileConfig = &config
	return nil
}
