package bridgedb

func InsertPowerReading(reading *PowerReading) error {
	db := GetDB()

	_, err := db.Exec(
		"INSERT INTO power_readings (timestamp, ac_power_w, dc_power_w, feed_in_power_w, home_consumption_w) "+
			"VALUES (?, ?, ?, ?, ?)",
		reading.Timestamp,
		reading.ACPowerW,
		reading.DCPowerW,
		reading.FeedInPowerW,
		reading.HomeConsumptionW,
	)
	if err != nil {
		return err
	}
	return nil
}

func InsertEnergyReading(reading *EnergyReading) error {
	db := GetDB()

	_, err := db.Exec(
		"INSERT INTO energy_readings "+
			"(timestamp, energy_today_wh, energy_total_wh, feed_in_wh, consume_wh) "+
			"VALUES (?, ?, ?, ?, ?)",
		reading.Timestamp,
		reading.EnergyTodayWh,
		reading.EnergyTotalWh,
		reading.FeedInWh,
		reading.ConsumeWh,
	)
	if err != nil {
		return err
	}
	return nil
}
