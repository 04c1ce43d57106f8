// Package report encodes host snapshots into the collector's JSON wire
// format. Field names and nesting are the wire contract; indentation is
// cosmetic.
package report

import (
	"encoding/json"
	"fmt"

	"hostbeat/internal/sysinfo"
)

// EncodeKind identifies an encoding failure class.
type EncodeKind string

// KindDocumentCreationFailed covers any failure to build the JSON
// document. In practice this is unreachable short of memory exhaustion.
const KindDocumentCreationFailed EncodeKind = "document_creation_failed"

// EncodeError is the classified failure returned by Encode.
type EncodeError struct {
	Kind EncodeKind
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

type memoryDoc struct {
	Total     uint64 `json:"total"`
	Used      uint64 `json:"used"`
	Free      uint64 `json:"free"`
	Shared    uint64 `json:"shared"`
	Cached    uint64 `json:"cached"`
	Available uint64 `json:"available"`
}

type diskDoc struct {
	Total        uint64  `json:"total"`
	Free         uint64  `json:"free"`
	Used         uint64  `json:"used"`
	Available    uint64  `json:"available"`
	UsagePercent float64 `json:"usage_percentage"`
}

type document struct {
	Hostname string    `json:"hostname"`
	Uptime   int64     `json:"uptime"`
	Memory   memoryDoc `json:"memory"`
	Disk     diskDoc   `json:"disk"`
}

// Encoder converts snapshots to JSON payloads.
type Encoder struct{}

// NewEncoder returns a ready Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode serializes a snapshot into the wire document.
func (e *Encoder) Encode(snap *sysinfo.HostSnapshot) ([]byte, error) {
	doc := document{
		Hostname: snap.Hostname,
		Uptime:   snap.Uptime,
		Memory: memoryDoc{
			Total:     snap.Memory.Total,
			Used:      snap.Memory.Used,
			Free:      snap.Memory.Free,
			Shared:    snap.Memory.Shared,
			Cached:    snap.Memory.Cached,
			Available: snap.Memory.Available,
		},
		Disk: diskDoc{
			Total:        snap.Disk.Total,
			Free:         snap.Disk.Free,
			Used:         snap.Disk.Used,
			Available:    snap.Disk.Available,
			UsagePercent: snap.Disk.UsagePercent,
		},
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, &EncodeError{Kind: KindDocumentCreationFailed, Err: err}
	}
	return payload, nil
}
