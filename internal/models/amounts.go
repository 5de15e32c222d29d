package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// AmountVec is a per-outcome vector of staked amounts (lamports), stored as a
// JSON array so the column shape matches the outcome list it mirrors.
type AmountVec []uint64

func (v AmountVec) Value() (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (v *AmountVec) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		return json.Unmarshal(s, v)
	case string:
		return json.Unmarshal([]byte(s), v)
	case nil:
		*v = nil
		return nil
	default:
		return fmt.Errorf("cannot scan %T into AmountVec", src)
	}
}

// Sum returns the total staked across all outcomes.
func (v AmountVec) Sum() uint64 {
	var total uint64
	for _, a := range v {
		total += a
	}
	return total
}

// StringVec is a JSON-backed list column used for outcome labels.
type StringVec []string

func (v StringVec) Value() (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (v *StringVec) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		return json.Unmarshal(s, v)
	case string:
		return json.Unmarshal([]byte(s), v)
	case nil:
		*v = nil
		return nil
	default:
		return fmt.Errorf("cannot scan %T into StringVec", src)
	}
}
