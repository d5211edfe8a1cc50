package stream

import "encoding/json"

// Encoder turns a value into the bytes written to a client.
type Encoder[V any] func(V) ([]byte, error)

// Decoder turns a request body into a value.
type Decoder[V any] func([]byte) (V, error)

// JSONEncoder encodes values with encoding/json.
func JSONEncoder[V any]() Encoder[V] {
	return func(v V) ([]byte, error) {
		return json.Marshal(v)
	}
}

// JSONDecoder decodes values with encoding/json.
func JSONDecoder[V any]() Decoder[V] {
	return func(data []byte) (V, error) {
		var v V
		err := json.Unmarshal(data, &v)
		return v, err
	}
}
