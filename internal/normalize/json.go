package normalize

import (
	"encoding/json"
)

// JSONOptions controls JSON normalization.
type JSONOptions struct {
	CleanContent bool
}

// JSON parses data into the canonical tree. JSON is already canonical apart
// from the optional cleaning pass over string leaves.
func JSON(data []byte, opts JSONOptions) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, malformed("json", err)
	}
	if opts.CleanContent {
		v = Clean(v)
	}
	return v, nil
}
