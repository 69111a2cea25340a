package domain

// FingerprintResult is what the engine reports for one bug report
type FingerprintResult struct {
	Fingerprint   Fingerprint `json:"fingerprint" example:"5f2b0c0e6a3f4f5c9b1a7d2e8c4f6a0b1d3e5f7a9c2b4d6e8f0a1c3e5b7d9f1a"`
	NormalizedURL string      `json:"normalized_url" example:"https://shop.com/orders/{id}"`
	Components    []string    `json:"components"`
}

// ReserveInput asks for a claim on a fingerprint
type ReserveInput struct {
	Fingerprint Fingerprint `json:"fingerprint" validate:"required,fingerprint"`
}

// ReserveOutput reports whether the claim was granted
// reserved=false is the duplicate signal, not an error
type ReserveOutput struct {
	Fingerprint Fingerprint `json:"fingerprint"`
	Reserved    bool        `json:"reserved"`
}

// ConfirmInput carries the ticket metadata stored on the confirmed entry
type ConfirmInput struct {
	TicketKey string         `json:"ticketKey" validate:"required,max=256" example:"BUG-1042"`
	Title     string         `json:"title,omitempty" validate:"max=1024" example:"Checkout failed"`
	Timestamp int64          `json:"timestamp,omitempty" example:"1735689600000"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// Meta flattens the input into entry metadata; named fields win over extra keys
func (in ConfirmInput) Meta() map[string]any {
	m := make(map[string]any, len(in.Extra)+3)
	for k, v := range in.Extra {
		m[k] = v
	}
	m["ticketKey"] = in.TicketKey
	if in.Title != "" {
		m["title"] = in.Title
	}
	if in.Timestamp != 0 {
		m["timestamp"] = in.Timestamp
	}
	return m
}

// EntryView is the http form of an entry
type EntryView struct {
	Fingerprint Fingerprint    `json:"fingerprint"`
	Status      Status         `json:"status" example:"confirmed"`
	SavedAt     int64          `json:"savedAt" example:"1735689600000"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// SweepOutput reports how many expired entries were removed
type SweepOutput struct {
	Removed int `json:"removed" example:"3"`
}

// View builds the http form of e
func View(fp Fingerprint, e Entry) EntryView {
	return EntryView{Fingerprint: fp, Status: e.Status, SavedAt: e.SavedAt, Meta: e.Meta}
}
