package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SOLAX_IP", "192.168.1.50")
	t.Setenv("SOLAX_PASSWORD", "SWXXXXXXXX")
	t.Setenv("MQTT_IP", "192.168.1.20")
	t.Setenv("MQTT_USERNAME", "mqtt")
	t.Setenv("MQTT_PASSWORD", "hunter2")
	t.Setenv("TIME_DELAY", "")
	t.Setenv("OFFLINE_DELAY", "")
}

func TestLoadBridgeConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	if err := LoadBridgeConfig(); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	cfg := ActiveBridgeConfig
	if cfg.SolaxIP != "192.168.1.50" {
		t.Errorf("SolaxIP: got %q", cfg.SolaxIP)
	}
	if cfg.MqttUsername != "mqtt" || cfg.MqttPassword != "hunter2" {
		t.Errorf("mqtt credentials: got %q/%q", cfg.MqttUsername, cfg.MqttPassword)
	}
	if cfg.TimeDelay != DefaultTimeDelaySeconds*time.Second {
		t.Errorf("TimeDelay: got %v, want %ds", cfg.TimeDelay, DefaultTimeDelaySeconds)
	}
	if cfg.OfflineDelay != DefaultOfflineDelaySeconds*time.Second {
		t.Errorf("OfflineDelay: got %v, want %ds", cfg.OfflineDelay, DefaultOfflineDelaySeconds)
	}
}

func TestLoadBridgeConfigCustomDelays(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TIME_DELAY", "30")
	t.Setenv("OFFLINE_DELAY", "300")

	if err := LoadBridgeConfig(); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if ActiveBridgeConfig.TimeDelay != 30*time.Second {
		t.Errorf("TimeDelay: got %v", ActiveBridgeConfig.TimeDelay)
	}
	if ActiveBridgeConfig.OfflineDelay != 300*time.Second {
		t.Errorf("OfflineDelay: got %v", ActiveBridgeConfig.OfflineDelay)
	}
}

func TestLoadBridgeConfigMissingRequired(t *testing.T) {
	for _, name := range []string{"SOLAX_IP", "SOLAX_PASSWORD", "MQTT_IP"} {
		t.Run(name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(name, "")

			err := LoadBridgeConfig()
			if err == nil {
				t.Fatalf("expected error with %s unset", name)
			}
			if !strings.Contains(err.Error(), name) {
				t.Errorf("error %q does not name the missing variable", err)
			}
		})
	}
}

func TestLoadBridgeConfigOptionalCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MQTT_USERNAME", "")
	t.Setenv("MQTT_PASSWORD", "")

	if err := LoadBridgeConfig(); err != nil {
		t.Fatalf("anonymous broker access should be allowed: %v", err)
	}
}

func TestLoadBridgeConfigInvalidDelay(t *testing.T) {
	cases := []string{"abc", "0", "-5", "2.5"}
	for _, raw := range cases {
		t.Run(raw, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("TIME_DELAY", raw)

			if err := LoadBridgeConfig(); err == nil {
				t.Fatalf("expected error for TIME_DELAY=%q", raw)
			}
		})
	}
}
