package domain

// QRCode is the rendered QR payload returned by the remote generator.
type QRCode struct {
	Text                 string `json:"text"`
	Type                 string `json:"type"`
	Format               string `json:"format"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel"`
	Result               string `json:"result"`
}
