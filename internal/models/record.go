package models

import (
	"fmt"
	"strconv"
	"time"
)

// Record is one read-only row projected from the record store, keyed by
// logical field name. Every record carries an integer "id".
type Record map[string]interface{}

// ID returns the record identifier or 0 when absent.
func (r Record) ID() int64 {
	id, _ := r.Int("id")
	return id
}

// String renders a field as text. Missing and nil fields render empty.
func (r Record) String(field string) string {
	switch v := r[field].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		if v {
			return "1"
		}
		return "0"
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

// Int reads an integer field. Booleans read as 0/1 and numeric strings are parsed.
func (r Record) Int(field string) (int64, bool) {
	return AsInt(r[field])
}

// AsInt converts the primitive values a store can return into int64.
func AsInt(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case float32:
		return int64(v), true
	case float64:
		return int64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case time.Time:
		return v.Unix(), true
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
