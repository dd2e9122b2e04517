package solax

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// sampleData returns a realtime Data array with known values at the
// indices the decoder reads.
func sampleData() []float64 {
	data := make([]float64, minDataLen)
	data[idxGridVoltage] = 2305   // 230.5 V
	data[idxGridCurrent] = 65     // 6.5 A
	data[idxACPower] = 1500       // 1500 W
	data[idxDCVoltage1] = 3210    // 321.0 V
	data[idxDCCurrent1] = 48      // 4.8 A
	data[idxDCPower1] = 1480      // 1480 W
	data[idxGridFrequency] = 4999 // 49.99 Hz
	data[idxOperationMode] = 2    // Normal
	data[idxEnergyTotal] = 123456 // 12345.6 kWh
	data[idxEnergyToday] = 85     // 8.5 kWh
	data[idxFeedInPower] = 64736  // -800 W after signed correction
	data[idxFeedInEnergy] = 150000
	data[idxConsumeEnergy] = 98765
	data[idxInverterTemp] = 41
	return data
}

func sampleInformation() []float64 {
	info := make([]float64, minInformationLen)
	info[idxVersionDSP] = 1.21
	info[idxVersionARM] = 1.13
	return info
}

func samplePayload(t *testing.T, data, information []float64) []byte {
	t.Helper()
	payload, err := json.Marshal(RealTimeResponse{
		Type:         "X1 Mini G3",
		SerialNumber: "SWXXXXXXXX",
		Version:      "2.034.06",
		Data:         data,
		Information:  information,
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return payload
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	host := strings.TrimPrefix(server.URL, "http://")
	return NewClient(host, "secret"), server
}

func TestFetchRealTimeDataDecodesFields(t *testing.T) {
	var requestBody string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		requestBody = string(body)
		w.Write(samplePayload(t, sampleData(), sampleInformation()))
	})

	reading, err := client.FetchRealTimeData(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if requestBody != "?optType=ReadRealTimeData&pwd=secret" {
		t.Fatalf("unexpected request body: %q", requestBody)
	}

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"grid voltage", reading.GridVoltageV, 230.5},
		{"grid current", reading.GridCurrentA, 6.5},
		{"ac power", reading.ACPowerW, 1500},
		{"dc voltage 1", reading.DCVoltage1V, 321.0},
		{"dc current 1", reading.DCCurrent1A, 4.8},
		{"dc power 1", reading.DCPower1W, 1480},
		{"grid frequency", reading.GridFrequencyHz, 4999.0 / 100},
		{"energy total", reading.EnergyTotalKWH, 12345.6},
		{"energy today", reading.EnergyTodayKWH, 8.5},
		{"feed-in power", reading.FeedInPowerW, -800},
		{"feed-in energy", reading.FeedInEnergyKWH, 1500},
		{"consume energy", reading.ConsumeEnergyKWH, 98765.0 / 100},
		{"inverter temp", reading.InverterTempC, 41},
		{"home consumption", reading.HomeConsumptionW, 2300},
		{"version dsp", reading.VersionDSP, 1.21},
		{"version arm", reading.VersionARM, 1.13},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}

	if reading.StatusCode != 2 || reading.Status != "Normal" {
		t.Errorf("status: got %d %q, want 2 Normal", reading.StatusCode, reading.Status)
	}
	if reading.SerialNumber != "SWXXXXXXXX" {
		t.Errorf("serial: got %q", reading.SerialNumber)
	}
	if reading.Timestamp == "" {
		t.Error("timestamp not set")
	}
}

func TestFetchRealTimeDataUnknownStatus(t *testing.T) {
	data := sampleData()
	data[idxOperationMode] = 99
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(samplePayload(t, data, sampleInformation()))
	})

	reading, err := client.FetchRealTimeData(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if reading.Status != "Unknown" {
		t.Errorf("status: got %q, want Unknown", reading.Status)
	}
}

func TestFetchRealTimeDataTruncatedData(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(samplePayload(t, sampleData()[:20], sampleInformation()))
	})

	_, err := client.FetchRealTimeData(context.Background())
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestFetchRealTimeDataTruncatedInformation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(samplePayload(t, sampleData(), sampleInformation()[:3]))
	})

	_, err := client.FetchRealTimeData(context.Background())
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestFetchRealTimeDataMalformedJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>not json</html>")
	})

	_, err := client.FetchRealTimeData(context.Background())
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestFetchRealTimeDataEmptyBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// The dongle answers an empty 200 when the password is wrong
	})

	_, err := client.FetchRealTimeData(context.Background())
	if !errors.Is(err, ErrAuthRejected) {
		t.Fatalf("expected ErrAuthRejected, got %v", err)
	}
}

func TestFetchRealTimeDataForbidden(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.FetchRealTimeData(context.Background())
	if !errors.Is(err, ErrAuthRejected) {
		t.Fatalf("expected ErrAuthRejected, got %v", err)
	}
}

func TestFetchRealTimeDataUnreachable(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	_, err := client.FetchRealTimeData(context.Background())
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
}
