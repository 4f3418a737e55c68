package purchases

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

var errCheckoutDate = shared.Errorf(shared.ErrValidation, "date must be RFC3339, YYYY-MM-DD or epoch milliseconds")

var checkoutDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// checkoutDate accepts the date forms POS clients commonly send. Strings
// without a zone are read as UTC; numbers are Unix epoch milliseconds.
type checkoutDate struct {
	time.Time
}

func (d *checkoutDate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errCheckoutDate
	}
	if data[0] != '"' {
		var millis json.Number
		if err := json.Unmarshal(data, &millis); err != nil {
			return errCheckoutDate
		}
		ms, err := millis.Int64()
		if err != nil {
			return errCheckoutDate
		}
		d.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errCheckoutDate
	}
	raw = strings.TrimSpace(raw)
	for _, layout := range checkoutDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return errCheckoutDate
}

func (d *checkoutDate) timeOrNil() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}
