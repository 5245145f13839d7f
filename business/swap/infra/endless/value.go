package endless

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// viewValue is one element of a view result. Move u64/u128 come back as
// JSON strings, smaller ints and bools as bare literals; both decode to text.
type viewValue string

func (v *viewValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty view value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = viewValue(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 't', 'f':
		*v = viewValue(data)
	default:
		return fmt.Errorf("unsupported view value %s", data)
	}
	return nil
}
