package solax

import (
	"net/http"
)

// RealTimeResponse is the raw payload returned by the inverter's local API.
// Data and Information are fixed-index arrays; field meaning depends on the
// position and data-type revision of the firmware.
type RealTimeResponse struct {
	Type         string    `json:"type"`
	SerialNumber string    `json:"SN"`
	Version      string    `json:"ver"`
	Data         []float64 `json:"Data"`
	Information  []float64 `json:"Information"`
}

type Client struct {
	host       string
	baseURL    string
	password   string
	httpClient *http.Client
}

// Data array indices for the X1 Mini G3 realtime payload.
const (
	idxGridVoltage   = 0
	idxGridCurrent   = 1
	idxACPower       = 2
	idxDCVoltage1    = 3
	idxDCCurrent1    = 5
	idxDCPower1      = 7
	idxGridFrequency = 9
	idxOperationMode = 10
	idxEnergyTotal   = 11
	idxEnergyToday   = 13
	idxFeedInPower   = 48
	idxFeedInEnergy  = 50
	idxConsumeEnergy = 52
	idxInverterTemp  = 55

	// Information array indices
	idxVersionDSP = 4
	idxVersionARM = 6

	// Minimum array lengths for a decodable payload
	minDataLen        = 56
	minInformationLen = 7
)
