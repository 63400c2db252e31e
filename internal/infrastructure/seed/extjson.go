package seed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// objectIDNamespace derives stable UUIDs from Mongo ObjectIds so that
// references between the exported collections survive the import.
var objectIDNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("school.mongodb.objectid"))

// ObjectID is a Mongo extended JSON ObjectId: {"$oid": "..."}.
// A plain string is accepted as well.
type ObjectID string

// UnmarshalJSON implements json.Unmarshaler
func (o *ObjectID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*o = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*o = ObjectID(s)
		return nil
	}
	var wrapped struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("invalid ObjectId %s: %w", data, err)
	}
	*o = ObjectID(wrapped.OID)
	return nil
}

// IsZero reports an absent id
func (o ObjectID) IsZero() bool {
	return o == ""
}

// UUID maps the ObjectId to its UUIDv5
func (o ObjectID) UUID() uuid.UUID {
	return uuid.NewSHA1(objectIDNamespace, []byte(o))
}

// Date is a Mongo extended JSON date. Both the relaxed form
// {"$date": "2024-01-02T03:04:05Z"} and the canonical form
// {"$date": {"$numberLong": "1704164645000"}} are accepted.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var wrapped struct {
		Date json.RawMessage `json:"$date"`
	}
	raw := json.RawMessage(data)
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Date) > 0 {
		raw = wrapped.Date
	}

	t, err := parseDateValue(raw)
	if err != nil {
		return fmt.Errorf("invalid date %s: %w", data, err)
	}
	d.Time = t
	return nil
}

func parseDateValue(raw json.RawMessage) (time.Time, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t, nil
		}
		return time.Parse(time.DateOnly, s)
	}

	var ms int64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}

	var long struct {
		NumberLong string `json:"$numberLong"`
	}
	if err := json.Unmarshal(raw, &long); err != nil {
		return time.Time{}, err
	}
	ms, err := strconv.ParseInt(long.NumberLong, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

// Ptr returns nil for a missing date
func (d *Date) Ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// OrNow returns the date, or now when it is missing
func (d *Date) OrNow(now time.Time) time.Time {
	if p := d.Ptr(); p != nil {
		return *p
	}
	return now
}
