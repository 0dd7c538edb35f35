package extraction

import "context"

// Fields contains the structured information pulled out of a receipt
// image. Everything here comes from an external model response, so every
// field is optional and money values stay free-form strings.
type Fields struct {
	VendorName  string   `json:"vendor_name"`
	TotalAmount string   `json:"total_amount"`
	Tax         string   `json:"tax"`
	Date        string   `json:"date"`
	Items       []string `json:"items"`
	Category    string   `json:"category"`
}

// Extractor defines the interface for receipt extraction backends
type Extractor interface {
	// Extract analyzes a receipt image and returns its structured fields
	Extract(ctx context.Context, imageData []byte, contentType string) (*Fields, error)
	// Close closes the extractor and releases resources
	Close() error
}
