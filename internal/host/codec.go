package host

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeArgs converts call arguments into T. In-process callers pass T
// directly; transactions arriving over the API carry raw JSON.
func DecodeArgs[T any](args any) (T, error) {
	var out T
	switch v := args.(type) {
	case nil:
		return out, nil
	case T:
		return v, nil
	case *T:
		if v != nil {
			return *v, nil
		}
		return out, nil
	case json.RawMessage:
		return decodeJSON[T](v)
	case []byte:
		return decodeJSON[T](v)
	}
	return out, fmt.Errorf("%w: unexpected %T", ErrInvalidArgs, args)
}

func decodeJSON[T any](raw []byte) (T, error) {
	var out T
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return out, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return out, nil
}

// ResultAs extracts a successful value of type T. Failed calls, empty results
// and values of another type all report false.
func ResultAs[T any](r PromiseResult) (T, bool) {
	var zero T
	if r.Err != nil || r.Value == nil {
		return zero, false
	}
	switch v := r.Value.(type) {
	case T:
		return v, true
	case *T:
		if v != nil {
			return *v, true
		}
	}
	return zero, false
}
