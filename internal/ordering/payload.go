package ordering

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformedPayload is returned when the submitted ordering cannot be decoded.
// Nothing is written in that case.
var ErrMalformedPayload = errors.New("malformed ordering payload")

// itemID accepts both 5 and "5"
type itemID struct {
	value int64
	set   bool
}

func (id *itemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var n json.Number
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n = json.Number(s)
	} else if err := json.Unmarshal(data, &n); err != nil {
		return err
	}

	v, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", n.String())
	}
	id.value, id.set = v, true
	return nil
}

// DecodeList decodes an ordered list such as [{"id":5},{"id":2},{"id":9}] into item ids.
// Fields other than id are ignored; every entry must carry an integer id.
func DecodeList(raw []byte) ([]int64, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: empty list", ErrMalformedPayload)
	}

	var items []*struct {
		ID itemID `json:"id"`
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if items == nil {
		return nil, fmt.Errorf("%w: list is null", ErrMalformedPayload)
	}

	ids := make([]int64, 0, len(items))
	for i, item := range items {
		if item == nil || !item.ID.set {
			return nil, fmt.Errorf("%w: entry %d has no id", ErrMalformedPayload, i)
		}
		ids = append(ids, item.ID.value)
	}
	return ids, nil
}
