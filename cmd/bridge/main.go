// Bridge polls the SolaX inverter's local realtime API and republishes
// readings over MQTT with Home Assistant discovery. It also serves a small
// status API with the latest reading, a live websocket stream and metrics.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/solarbits/solax2mqtt/pkg/aggregator"
	"github.com/solarbits/solax2mqtt/pkg/bridgedb"
	"github.com/solarbits/solax2mqtt/pkg/config"
	"github.com/solarbits/solax2mqtt/pkg/metrics"
	"github.com/solarbits/solax2mqtt/pkg/mqttpub"
	"github.com/solarbits/solax2mqtt/pkg/pathing"
	"github.com/solarbits/solax2mqtt/pkg/poller"
	"github.com/solarbits/solax2mqtt/pkg/solax"
	"github.com/solarbits/solax2mqtt/pkg/types"
	"github.com/solarbits/solax2mqtt/pkg/units"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

var (
	latestReading      *types.InverterReading
	latestReadingMutex sync.RWMutex
)

// ws clients for broadcasting live readings
var (
	wsClients                   = make(map[*websocket.Conn]bool)
	wsClientsMutex sync.RWMutex = sync.RWMutex{}
)

func main() {
	// Load config
	if err := config.LoadBridgeConfig(); err != nil {
		log.Fatalf("Failed to load bridge config: %v", err)
	}
	if err := config.LoadBridgeFileConfig(); err != nil {
		log.Fatalf("Failed to load bridge file config: %v", err)
	}
	cfg := config.ActiveBridgeConfig
	fileCfg := config.ActiveBridgeFileConfig

	if fileCfg.ArchiveEnabled {
		if err := pathing.EnsureDirs(); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
		bridgedb.InitializeDatabase()
	}

	// Connect to the broker; startup fails hard when it is down
	statusTopic := mqttpub.StatusTopic(fileCfg.TopicPrefix)
	client, err := mqttpub.Connect(cfg.MqttIP, cfg.MqttUsername, cfg.MqttPassword, statusTopic)
	if err != nil {
		log.Fatalf("Failed to connect to MQTT broker: %v", err)
	}

	device := mqttpub.DiscoveryDevice{
		Identifiers:   []string{"Solax_X1_Mini_G3"},
		Name:          fileCfg.DeviceName,
		Model:         fileCfg.DeviceModel,
		Manufacturer:  fileCfg.Manufacturer,
		SuggestedArea: fileCfg.SuggestedArea,
	}
	publisher := mqttpub.NewPublisher(client, fileCfg.TopicPrefix, device)

	// Configure MQTT discovery in Home Assistant
	if err := publisher.PublishDiscovery(); err != nil {
		log.Printf("Failed to publish discovery configs: %v", err)
	}

	registry := prometheus.NewRegistry()
	bridgeMetrics := metrics.NewBridgeMetrics(registry)

	solaxClient := solax.NewClient(cfg.SolaxIP, cfg.SolaxPassword)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := poller.NewPoller(solaxClient, publisher, cfg.TimeDelay, cfg.OfflineDelay)
	p.OnReading = func(reading *types.InverterReading) {
		setLatestReading(reading)
		bridgeMetrics.ObserveReading(reading)
		broadcastToWebSockets(reading)
		if fileCfg.ArchiveEnabled {
			archiveReading(reading)
		}
	}
	p.OnError = func(err error) {
		bridgeMetrics.ObserveFailure(failureReason(err))
		if errors.Is(err, solax.ErrUnreachable) && solaxClient.Reachable() {
			log.Println("Inverter answers ping but not the API; it may be rebooting")
		}
	}

	go p.Run(ctx)

	if fileCfg.ArchiveEnabled {
		go runAggregator(ctx)
	}

	// Setup HTTP handlers
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		response := map[string]string{
			"message": "SolaX MQTT Bridge",
			"status":  "running",
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	})

	mux.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
		reading := getLatestReading()
		w.Header().Set("Content-Type", "application/json")
		if reading == nil {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "No readings available yet",
			})
			return
		}

		json.NewEncoder(w).Encode(reading)
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade error: %v", err)
			return
		}

		addWebSocketClient(conn)

		// Send current reading immediately if available
		if reading := getLatestReading(); reading != nil {
			conn.WriteMessage(websocket.TextMessage, reading.ToJsonBytes())
		}

		// Keep connection alive
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				removeWebSocketClient(conn)
				break
			}
		}
	})

	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	listener := net.JoinHostPort(fileCfg.ListenAddress, strconv.Itoa(fileCfg.ListenPort))
	server := &http.Server{Addr: listener, Handler: mux}

	go func() {
		log.Printf("Starting SolaX MQTT bridge status API on %s", listener)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Status API failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received, stopping bridge")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)
	client.Disconnect(250)
}

func runAggregator(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := aggregator.AggregateAndCleanup(); err != nil {
				log.Printf("Aggregation failed: %v", err)
			}
		}
	}
}

func archiveReading(reading *types.InverterReading) {
	now := time.Now().UTC().Unix()

	err := bridgedb.InsertPowerReading(&bridgedb.PowerReading{
		Timestamp:        now,
		ACPowerW:         int32(reading.ACPowerW),
		DCPowerW:         int32(reading.DCPower1W),
		FeedInPowerW:     int32(reading.FeedInPowerW),
		HomeConsumptionW: int32(reading.HomeConsumptionW),
	})
	if err != nil {
		log.Printf("Failed to archive power reading: %v", err)
	}

	err = bridgedb.InsertEnergyReading(&bridgedb.EnergyReading{
		Timestamp:     now,
		EnergyTodayWh: units.KwhToWh(reading.EnergyTodayKWH),
		EnergyTotalWh: units.KwhToWh(reading.EnergyTotalKWH),
		FeedInWh:      units.KwhToWh(reading.FeedInEnergyKWH),
		ConsumeWh:     units.KwhToWh(reading.ConsumeEnergyKWH),
	})
	if err != nil {
		log.Printf("Failed to archive energy reading: %v", err)
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, solax.ErrUnreachable):
		return "unreachable"
	case errors.Is(err, solax.ErrAuthRejected):
		return "auth_rejected"
	case errors.Is(err, solax.ErrMalformedPayload):
		return "malformed_payload"
	case errors.Is(err, mqttpub.ErrBrokerUnavailable):
		return "broker_unavailable"
	default:
		return "other"
	}
}

func setLatestReading(reading *types.InverterReading) {
	latestReadingMutex.Lock()
	latestReading = reading
	latestReadingMutex.Unlock()
}

func getLatestReading() *types.InverterReading {
	latestReadingMutex.RLock()
	defer latestReadingMutex.RUnlock()
	return latestReading
}

func broadcastToWebSockets(reading *types.InverterReading) {
	wsClientsMutex.RLock()
	clients := make([]*websocket.Conn, 0, len(wsClients))
	for client := range wsClients {
		clients = append(clients, client)
	}
	wsClientsMutex.RUnlock()

	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, reading.ToJsonBytes()); err != nil {
			removeWebSocketClient(client)
		}
	}
}

func addWebSocketClient(conn *websocket.Conn) {
	wsClientsMutex.Lock()
	wsClients[conn] = true
	wsClientsMutex.Unlock()
}

func removeWebSocketClient(conn *websocket.Conn) {
	wsClientsMutex.Lock()
	delete(wsClients, conn)
	wsClientsMutex.Unlock()
	conn.Close()
}
