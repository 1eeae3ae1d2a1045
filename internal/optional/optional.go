package optional

import "encoding/json"

// Field distinguishes the three states of a nullable field in a partial
// update payload: absent (leave unchanged), JSON null (clear), or a value.
// The zero Field is the absent state; UnmarshalJSON is only invoked for keys
// present in the payload.
type Field[T any] struct {
	Present bool
	Null    bool
	Value   T
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Present = true
	if string(data) == "null" {
		f.Null = true
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Present || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Set reports whether the field carries a non-null value.
func (f Field[T]) Set() bool {
	return f.Present && !f.Null
}
