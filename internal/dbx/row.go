package dbx

import (
	"fmt"
	"strconv"
	"time"
)

// Row maps column names to the raw values returned by the driver.
// The typed accessors accept the shapes produced by both pgx and SQLite.
type Row map[string]any

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (r Row) value(col string) (any, error) {
	v, ok := r[col]
	if !ok {
		return nil, fmt.Errorf("column %q not in result", col)
	}
	return v, nil
}

func (r Row) Int64(col string) (int64, error) {
	v, err := r.value(col)
	if err != nil {
		return 0, err
	}

	switch x := v.(type) {
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case int:
		return int64(x), nil
	case []byte:
		return strconv.ParseInt(string(x), 10, 64)
	case string:
		return strconv.ParseInt(x, 10, 64)
	}
	return 0, fmt.Errorf("column %q: cannot convert %T to int64", col, v)
}

func (r Row) String(col string) (string, error) {
	v, err := r.value(col)
	if err != nil {
		return "", err
	}

	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case nil:
		return "", nil
	}
	return "", fmt.Errorf("column %q: cannot convert %T to string", col, v)
}

// NullString returns nil for SQL NULL.
func (r Row) NullString(col string) (*string, error) {
	v, err := r.value(col)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}

	s, err := r.String(col)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r Row) Bool(col string) (bool, error) {
	v, err := r.value(col)
	if err != nil {
		return false, err
	}

	switch x := v.(type) {
	case bool:
		return x, nil
	case int64:
		return x != 0, nil
	case []byte:
		return strconv.ParseBool(string(x))
	case string:
		return strconv.ParseBool(x)
	}
	return false, fmt.Errorf("column %q: cannot convert %T to bool", col, v)
}

func (r Row) Time(col string) (time.Time, error) {
	v, err := r.value(col)
	if err != nil {
		return time.Time{}, err
	}

	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		return parseTime(col, x)
	case []byte:
		return parseTime(col, string(x))
	}
	return time.Time{}, fmt.Errorf("column %q: cannot convert %T to time", col, v)
}

// NullTime returns nil for SQL NULL.
func (r Row) NullTime(col string) (*time.Time, error) {
	v, err := r.value(col)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}

	t, err := r.Time(col)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseTime(col, s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("column %q: unrecognised time %q", col, s)
}
