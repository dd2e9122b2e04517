package types

import "encoding/json"

type InverterReading struct {
	Timestamp string `json:"timestamp"`

	// Grid side
	GridVoltageV    float64 `json:"grid_voltage_v"`
	GridCurrentA    float64 `json:"grid_current_a"`
	ACPowerW        float64 `json:"ac_power_w"`
	GridFrequencyHz float64 `json:"grid_frequency_hz"`

	// PV side
	DCVoltage1V float64 `json:"dc_voltage_1_v"`
	DCCurrent1A float64 `json:"dc_current_1_a"`
	DCPower1W   float64 `json:"dc_power_1_w"`

	// Energy counters
	EnergyTodayKWH   float64 `json:"energy_today_kwh"`
	EnergyTotalKWH   float64 `json:"energy_total_kwh"`
	FeedInEnergyKWH  float64 `json:"feed_in_energy_kwh"`
	ConsumeEnergyKWH float64 `json:"consume_energy_kwh"`

	// Grid exchange
	FeedInPowerW     float64 `json:"feed_in_power_w"`
	HomeConsumptionW float64 `json:"home_consumption_w"`

	// Status
	StatusCode    int     `json:"status_code"`
	Status        string  `json:"status"`
	InverterTempC float64 `json:"inverter_temp_c"`

	// Device info
	SerialNumber string  `json:"serial_number"`
	VersionDSP   float64 `json:"version_dsp"`
	VersionARM   float64 `json:"version_arm"`
}

func (r *InverterReading) ToJsonBytes() []byte {
	data, err := json.Marshal(r)
	if err != nil {
		return nil
	}
	return data
}

// Returns nil when the payload does not parse.
func ReadingFromJsonBytes(data []byte) *InverterReading {
	var reading InverterReading
	if err := json.Unmarshal(data, &reading); err != nil {
		return nil
	}
	return &reading
}
