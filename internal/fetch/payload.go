package fetch

import (
	"bytes"
	"encoding/json"
	"fmt"

	"congress-trade-lab/internal/ingestion"
)

// errorMessageKey is the key some APIs use to report failures with status 200.
const errorMessageKey = "Error Message"

// DecodeRecords decodes a payload that is either a JSON array of objects,
// an object with a "data" array, or an error object.
// Numbers are kept as json.Number.
func DecodeRecords(body []byte) ([]ingestion.RawRecord, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrUnexpectedPayload)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	switch body[0] {
	case '[':
		var records []ingestion.RawRecord
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedPayload, err)
		}
		return compact(records), nil
	case '{':
		var obj map[string]json.RawMessage
		if err := dec.Decode(&obj); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedPayload, err)
		}
		if msg, ok := obj[errorMessageKey]; ok {
			var text string
			if json.Unmarshal(msg, &text) != nil {
				text = string(msg)
			}
			return nil, fmt.Errorf("%w: %s", ErrAPIMessage, text)
		}
		if data, ok := obj["data"]; ok {
			return DecodeRecords(data)
		}
		return nil, fmt.Errorf("%w: object without data array", ErrUnexpectedPayload)
	default:
		return nil, fmt.Errorf("%w: leading %q", ErrUnexpectedPayload, body[0])
	}
}

// compact drops null array elements.
func compact(records []ingestion.RawRecord) []ingestion.RawRecord {
	out := records[:0]
	for _, r := range records {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
