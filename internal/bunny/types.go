package bunny

import (
	"fmt"
	"strings"
	"time"

	"github.com/beautyhome/studio-api/internal/storage"
)

// BunnyTime handles bunny.net timestamps which may omit timezone suffix.
// When no timezone is present, treats the time as UTC.
//
//nolint:revive // BunnyTime is descriptive and distinguishes from time.Time
type BunnyTime struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler for BunnyTime.
func (bt *BunnyTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		return nil
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		bt.Time = t
		return nil
	}

	// No timezone suffix - treat as UTC by appending "Z"
	if t, err := time.Parse(time.RFC3339Nano, s+"Z"); err == nil {
		bt.Time = t
		return nil
	}

	return fmt.Errorf("invalid timestamp format: %s", s)
}

// StorageObject is one entry of an Edge Storage directory listing.
type StorageObject struct {
	GUID            string    `json:"Guid"`
	StorageZoneName string    `json:"StorageZoneName"`
	Path            string    `json:"Path"`
	ObjectName      string    `json:"ObjectName"`
	Length          int64     `json:"Length"`
	LastChanged     BunnyTime `json:"LastChanged"`
	IsDirectory     bool      `json:"IsDirectory"`
	DateCreated     BunnyTime `json:"DateCreated"`
	Checksum        string    `json:"Checksum,omitempty"`
	ContentType     string    `json:"ContentType,omitempty"`
}

// objectInfo converts a listing entry into the storage layer's view.
// Path is relative to the zone root, e.g. "content/home.json".
func (o StorageObject) objectInfo() storage.ObjectInfo {
	dir := strings.TrimPrefix(o.Path, "/"+o.StorageZoneName)
	dir = strings.Trim(dir, "/")
	p := o.ObjectName
	if dir != "" {
		p = dir + "/" + o.ObjectName
	}
	return storage.ObjectInfo{
		Path:        p,
		Name:        o.ObjectName,
		Size:        o.Length,
		LastChanged: o.LastChanged.Time,
		IsDirectory: o.IsDirectory,
	}
}
