package aggregator

import (
	"database/sql"
	"log"
	"time"

	"github.com/solarbits/solax2mqtt/pkg/bridgedb"
)

// roundToHourStart returns the Unix timestamp of the start of the hour for the given time
func roundToHourStart(t time.Time) int64 {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.UTC).Unix()
}

// getHourEnd returns the Unix timestamp of the last second of the hour (next hour start - 1)
func getHourEnd(hourStart int64) int64 {
	return time.Unix(hourStart, 0).Add(time.Hour).Unix() - 1
}

// aggregatePowerHourly averages the raw power samples of a specific hour
func aggregatePowerHourly(hourStart int64) error {
	db := bridgedb.GetDB()
	hourEnd := getHourEnd(hourStart)

	query := `
		SELECT
			AVG(ac_power_w) as avg_ac,
			AVG(feed_in_power_w) as avg_feed_in,
			AVG(home_consumption_w) as avg_home,
			COUNT(*) as count
		FROM power_readings
		WHERE timestamp >= ? AND timestamp <= ?
	`

	var avgAC, avgFeedIn, avgHome sql.NullFloat64
	var sampleCount uint32
	err := db.QueryRow(query, hourStart, hourEnd).Scan(&avgAC, &avgFeedIn, &avgHome, &sampleCount)
	if err != nil {
		return err
	}

	// Only insert if we have data
	if sampleCount == 0 {
		return nil
	}

	insertQuery := `
		INSERT OR REPLACE INTO aggregate_power_hourly
		(hour_start, ac_power_w, feed_in_power_w, home_consumption_w, sample_count)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = db.Exec(insertQuery, hourStart,
		int32(avgAC.Float64), int32(avgFeedIn.Float64), int32(avgHome.Float64), sampleCount)
	return err
}

// snapshotEnergyHourly retains the last meter standing seen within the hour
func snapshotEnergyHourly(hourStart int64) error {
	db := bridgedb.GetDB()
	hourEnd := getHourEnd(hourStart)

	query := `
		SELECT energy_total_wh, feed_in_wh, consume_wh
		FROM energy_readings
		WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var energyTotalWh, feedInWh, consumeWh uint32
	err := db.QueryRow(query, hourStart, hourEnd).Scan(&energyTotalWh, &feedInWh, &consumeWh)
	if err != nil {
		if err == sql.ErrNoRows {
			// No entry within timeframe, that's okay
			return nil
		}
		return err
	}

	insertQuery := `
		INSERT OR REPLACE INTO snapshot_energy_hourly
		(timestamp, energy_total_wh, feed_in_wh, consume_wh)
		VALUES (?, ?, ?, ?)
	`

	_, err = db.Exec(insertQuery, hourStart, energyTotalWh, feedInWh, consumeWh)
	return err
}

// cleanupOldData removes raw samples older than 3 months once they are aggregated
func cleanupOldData() error {
	db := bridgedb.GetDB()

	threeMonthsAgo := time.Now().UTC().AddDate(0, -3, 0)
	cutoffTimestamp := threeMonthsAgo.Unix()

	// Only clean up raw data we have already aggregated past
	var lastAggregateHour sql.NullInt64
	err := db.QueryRow("SELECT MAX(hour_start) FROM aggregate_power_hourly").Scan(&lastAggregateHour)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return err
	}
	if !lastAggregateHour.Valid || lastAggregateHour.Int64 < cutoffTimestamp {
		return nil
	}

	_, err = db.Exec("DELETE FROM power_readings WHERE timestamp < ?", cutoffTimestamp)
	if err != nil {
		return err
	}

	_, err = db.Exec("DELETE FROM energy_readings WHERE timestamp < ?", cutoffTimestamp)
	if err != nil {
		return err
	}

	log.Printf("Cleaned up data older than %s", threeMonthsAgo.Format(time.RFC3339))
	return nil
}

// AggregateAndCleanup aggregates the previous hour and prunes old raw data.
// Meant to be called once per hour.
func AggregateAndCleanup() error {
	now := time.Now().UTC()

	// Aggregate the previous hour (current hour is still ongoing)
	previousHour := now.Add(-time.Hour)
	hourStart := roundToHourStart(previousHour)

	log.Printf("Aggregating data for hour starting at %s", time.Unix(hourStart, 0).Format(time.RFC3339))

	if err := aggregatePowerHourly(hourStart); err != nil {
		log.Printf("Error aggregating hourly power: %v", err)
		return err
	}

	if err := snapshotEnergyHourly(hourStart); err != nil {
		log.Printf("Error creating energy snapshot: %v", err)
		return err
	}

	if err := cleanupOldData(); err != nil {
		log.Printf("Error cleaning up old data: %v", err)
		return err
	}

	return nil
}
