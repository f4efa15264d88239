package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
)

// MaxCount is the largest quantity staff may enter for a single field.
const MaxCount = 999

// Count is a raw counted quantity that may be unset. Unset and zero are
// different states: zero is an intentional count. Arithmetic goes through
// OrZero so the "unset counts as zero" rule lives in one place.
type Count struct {
	n   int
	set bool
}

func NewCount(n int) Count {
	return Count{n: n, set: true}
}

func (c Count) IsSet() bool { return c.set }

func (c Count) OrZero() int {
	if !c.set {
		return 0
	}
	return c.n
}

// Get returns the value and whether it is set.
func (c Count) Get() (int, bool) { return c.n, c.set }

func (c Count) String() string {
	if !c.set {
		return "unset"
	}
	return strconv.Itoa(c.n)
}

// ValidCount reports whether v may be stored in a count field.
func ValidCount(v int) bool {
	return v >= 0 && v <= MaxCount
}

func (c *Count) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = Count{}
	case int64:
		*c = NewCount(int(v))
	case int32:
		*c = NewCount(int(v))
	case int:
		*c = NewCount(v)
	case float64:
		*c = NewCount(int(v))
	case []byte:
		n, err := strconv.Atoi(string(v))
		if err != nil {
			return fmt.Errorf("scan count: %w", err)
		}
		*c = NewCount(n)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("scan count: %w", err)
		}
		*c = NewCount(n)
	default:
		return fmt.Errorf("scan count: unsupported type %T", src)
	}
	return nil
}

func (c Count) Value() (driver.Value, error) {
	if !c.set {
		return nil, nil
	}
	return int64(c.n), nil
}

func (c Count) MarshalJSON() ([]byte, error) {
	if !c.set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(c.n)), nil
}

func (c *Count) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*c = Count{}
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = NewCount(n)
	return nil
}
