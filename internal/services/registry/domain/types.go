// Package domain holds registry entries, DTOs and ports
package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"bugprint/internal/core/fingerprint"
)

// Fingerprint is re-exported so callers do not need the core package for keys
type Fingerprint = fingerprint.Fingerprint

// BugReport is the fingerprint input
type BugReport = fingerprint.BugReport

// Status is the reservation state of a stored entry
type Status string

const (
	// StatusPending is a provisional claim that goes stale after the pending ttl
	StatusPending Status = "pending"
	// StatusConfirmed records a filed ticket until the registry ttl elapses
	StatusConfirmed Status = "confirmed"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool { return s == StatusPending || s == StatusConfirmed }

// NamespaceKey is the single kv key holding the whole registry map
const NamespaceKey = "bug_fingerprints"

// Entry is the value stored under a fingerprint
// on the wire Meta is merged flat next to status and savedAt
type Entry struct {
	Status  Status
	SavedAt int64 // epoch ms of the last write
	Meta    map[string]any
}

// SavedTime returns SavedAt as a time
func (e Entry) SavedTime() time.Time { return time.UnixMilli(e.SavedAt) }

// MarshalJSON writes {...meta, "status", "savedAt"}; status and savedAt win over meta keys
func (e Entry) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(e.Meta)+2)
	for k, v := range e.Meta {
		m[k] = v
	}
	m["status"] = e.Status
	m["savedAt"] = e.SavedAt
	return json.Marshal(m)
}

// UnmarshalJSON splits status and savedAt out of the flat object
func (e *Entry) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*e = Entry{}
	if v, ok := raw["status"]; ok {
		if err := json.Unmarshal(v, &e.Status); err != nil {
			return fmt.Errorf("entry status: %w", err)
		}
		delete(raw, "status")
	}
	if v, ok := raw["savedAt"]; ok {
		// older writers may have stored a float
		var f float64
		if err := json.Unmarshal(v, &f); err != nil {
			return fmt.Errorf("entry savedAt: %w", err)
		}
		e.SavedAt = int64(f)
		delete(raw, "savedAt")
	}
	if len(raw) == 0 {
		return nil
	}
	e.Meta = make(map[string]any, len(raw))
	for k, v := range raw {
		var x any
		if err := json.Unmarshal(v, &x); err != nil {
			return fmt.Errorf("entry meta %q: %w", k, err)
		}
		e.Meta[k] = x
	}
	return nil
}

// Expired reports whether e was saved before the registry cutoff
func (e Entry) Expired(expiredBefore int64) bool { return e.SavedAt < expiredBefore }

// Claimable reports whether a new reservation may overwrite e
// expired entries of any status and stale pending entries are claimable
func (e Entry) Claimable(staleBefore, expiredBefore int64) bool {
	if e.Expired(expiredBefore) {
		return true
	}
	return e.Status == StatusPending && e.SavedAt <= staleBefore
}
