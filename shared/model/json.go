package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

var ErrUnsupportedScan = errors.New("unsupported scan source")

// JSONValue stores v in a JSONB column.
func JSONValue(v any) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return string(data), nil
}

// JSONScan decodes a JSONB column into dest. NULL leaves dest untouched.
func JSONScan(src, dest any) error {
	switch value := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(value, dest)
	case string:
		return json.Unmarshal([]byte(value), dest)
	default:
		return ErrUnsupportedScan
	}
}
