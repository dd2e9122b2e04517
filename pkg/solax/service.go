package solax

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	probing "github.com/prometheus-community/pro-bing"
	"github.com/solarbits/solax2mqtt/pkg/types"
	"github.com/solarbits/solax2mqtt/pkg/units"
)

var (
	ErrUnreachable      = errors.New("inverter unreachable")
	ErrAuthRejected     = errors.New("inverter rejected password")
	ErrMalformedPayload = errors.New("malformed inverter payload")
)

const requestTimeout = 5 * time.Second

var statusMap = map[int]string{
	0:  "Waiting",
	1:  "Checking",
	2:  "Normal",
	3:  "Off",
	4:  "Permanent Fault",
	5:  "Updating",
	6:  "EPS Check",
	7:  "EPS Mode",
	8:  "Self Test",
	9:  "Idle",
	10: "Standby",
}

// Initialize a new inverter client. host is the bare IP or hostname
// of the inverter's local WiFi dongle.
func NewClient(host, password string) *Client {
	return &Client{
		host:     host,
		baseURL:  "http://" + host,
		password: password,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// FetchRealTimeData performs one request/response exchange with the inverter
// and decodes the result. Each call is a single independent attempt; no
// retries, no caching.
func (c *Client) FetchRealTimeData(ctx context.Context) (*types.InverterReading, error) {
	body := fmt.Sprintf("?optType=ReadRealTimeData&pwd=%s", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: status %d", ErrAuthRejected, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrMalformedPayload, resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	// The dongle answers an empty 200 when the password is wrong.
	if len(strings.TrimSpace(string(payload))) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrAuthRejected)
	}

	var raw RealTimeResponse
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	return decodeReading(&raw)
}

// Reachable pings the inverter host once. Used to tell a powered-down
// inverter apart from one that answers ping but not the API.
func (c *Client) Reachable() bool {
	pinger, err := probing.NewPinger(c.host)
	if err != nil {
		return false
	}

	pinger.Count = 1
	pinger.Timeout = 2 * time.Second
	pinger.SetPrivileged(false) // UDP-based, no root needed

	if err := pinger.Run(); err != nil {
		return false
	}
	return pinger.Statistics().PacketsRecv > 0
}

func decodeReading(raw *RealTimeResponse) (*types.InverterReading, error) {
	if len(raw.Data) < minDataLen {
		return nil, fmt.Errorf("%w: Data has %d entries, need %d", ErrMalformedPayload, len(raw.Data), minDataLen)
	}
	if len(raw.Information) < minInformationLen {
		return nil, fmt.Errorf("%w: Information has %d entries, need %d", ErrMalformedPayload, len(raw.Information), minInformationLen)
	}

	acPower := units.Signed16(raw.Data[idxACPower])
	feedInPower := units.Signed16(raw.Data[idxFeedInPower])
	statusCode := int(raw.Data[idxOperationMode])

	reading := &types.InverterReading{
		Timestamp: time.Now().UTC().Format(time.RFC3339),

		GridVoltageV:    raw.Data[idxGridVoltage] / 10,
		GridCurrentA:    raw.Data[idxGridCurrent] / 10,
		ACPowerW:        acPower,
		GridFrequencyHz: raw.Data[idxGridFrequency] / 100,

		DCVoltage1V: raw.Data[idxDCVoltage1] / 10,
		DCCurrent1A: raw.Data[idxDCCurrent1] / 10,
		DCPower1W:   units.Signed16(raw.Data[idxDCPower1]),

		EnergyTodayKWH:   raw.Data[idxEnergyToday] / 10,
		EnergyTotalKWH:   raw.Data[idxEnergyTotal] / 10,
		FeedInEnergyKWH:  raw.Data[idxFeedInEnergy] / 100,
		ConsumeEnergyKWH: raw.Data[idxConsumeEnergy] / 100,

		FeedInPowerW:     feedInPower,
		HomeConsumptionW: acPower - feedInPower,

		StatusCode:    statusCode,
		Status:        statusName(statusCode),
		InverterTempC: raw.Data[idxInverterTemp],

		SerialNumber: raw.SerialNumber,
		VersionDSP:   raw.Information[idxVersionDSP],
		VersionARM:   raw.Information[idxVersionARM],
	}

	return reading, nil
}

func statusName(code int) string {
	if name, ok := statusMap[code]; ok {
		return name
	}
	return "Unknown"
}
