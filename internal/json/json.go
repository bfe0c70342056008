// SPDX-License-Identifier: Apache-2.0

package json

import (
	"io"

	json "github.com/bytedance/sonic"
)

type Decoder interface {
	Decode(v any) error
}

func Unmarshal(b []byte, v any) error {
	return json.Unmarshal(b, v)
}

func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func MarshalIndent(v any) ([]byte, error) {
	return json.ConfigDefault.MarshalIndent(v, "", "  ")
}

// NewDecoder returns a streaming decoder, used for backend response bodies and
// record payload files.
func NewDecoder(r io.Reader) Decoder {
	return json.ConfigDefault.NewDecoder(r)
}

type Encoder interface {
	Encode(v any) error
}

// NewEncoder returns a streaming encoder that terminates every value with a
// newline.
func NewEncoder(w io.Writer) Encoder {
	return json.ConfigDefault.NewEncoder(w)
}
