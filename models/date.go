package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without time of day, serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return err
	}
	*d = Date{t}
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case time.Time:
		*d = NewDate(v)
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case nil:
		*d = Date{}
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
	return nil
}

func (d *Date) parse(s string) error {
	if len(s) < len(dateLayout) {
		return fmt.Errorf("invalid date %q", s)
	}
	t, err := time.ParseInLocation(dateLayout, s[:len(dateLayout)], time.UTC)
	if err != nil {
		return err
	}
	*d = Date{t}
	return nil
}
