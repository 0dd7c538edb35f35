package receipt

// Receipt is one extracted-and-persisted purchase entry. Every extraction
// field comes from an untrusted external response and may be absent or
// malformed, so they all stay free-form strings; only ID and Timestamp are
// assigned locally.
type Receipt struct {
	ID          string   `json:"id"`
	VendorName  string   `json:"vendor_name,omitempty"`
	Date        string   `json:"date,omitempty"`
	TotalAmount string   `json:"total_amount,omitempty"`
	Tax         string   `json:"tax,omitempty"`
	Category    string   `json:"category,omitempty"`
	Items       []string `json:"items,omitempty"`
	ImageURI    string   `json:"imageUri,omitempty"`
	Timestamp   int64    `json:"timestamp"` // milliseconds since epoch
}
