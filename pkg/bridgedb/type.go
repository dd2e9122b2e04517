package bridgedb

// Instant power sample, watts. Signed because the inverter can report
// negative feed-in while drawing from the grid.
type PowerReading struct {
	Timestamp        int64 `db:"timestamp"`
	ACPowerW         int32 `db:"ac_power_w"`
	DCPowerW         int32 `db:"dc_power_w"`
	FeedInPowerW     int32 `db:"feed_in_power_w"`
	HomeConsumptionW int32 `db:"home_consumption_w"`
}

// Meter standings, watt-hours.
type EnergyReading struct {
	Timestamp     int64  `db:"timestamp"`
	EnergyTodayWh uint32 `db:"energy_today_wh"`
	EnergyTotalWh uint32 `db:"energy_total_wh"`
	FeedInWh      uint32 `db:"feed_in_wh"`
	ConsumeWh     uint32 `db:"consume_wh"`
}

// Hourly averages computed from power_readings.
type AggregatePowerHourly struct {
	HourStart        int64  `db:"hour_start"`
	ACPowerW         int32  `db:"ac_power_w"`
	FeedInPowerW     int32  `db:"feed_in_power_w"`
	HomeConsumptionW int32  `db:"home_consumption_w"`
	SampleCount      uint32 `db:"sample_count"`
}

// Last meter standing seen within the hour.
type SnapshotEnergyHourly struct {
	Timestamp     int64  `db:"timestamp"`
	EnergyTotalWh uint32 `db:"energy_total_wh"`
	FeedInWh      uint32 `db:"feed_in_wh"`
	ConsumeWh     uint32 `db:"consume_wh"`
}
