// Package message decodes the JSON messages published by FicTrac.
//
// A reset message is {"type": "reset"}.  Every other message is a data
// message and must carry an integer "frame" and a finite numeric "heading";
// any other fields are ignored.
package message

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

var ErrMalformedMessage = errors.New("malformed message")

type Type int

const (
	TypeData Type = iota
	TypeReset
)

func (t Type) String() string {
	if t == TypeReset {
		return "reset"
	}
	return "data"
}

type Message struct {
	Type    Type
	Frame   int64
	Heading float64
}

func (m Message) String() string {
	if m.Type == TypeReset {
		return "reset"
	}
	return fmt.Sprintf("data frame=%d heading=%.3f", m.Frame, m.Heading)
}

func Decode(payload []byte) (Message, error) {
	if !gjson.ValidBytes(payload) {
		return Message{}, errors.Wrap(ErrMalformedMessage, "invalid JSON")
	}
	root := gjson.ParseBytes(payload)
	if !root.IsObject() {
		return Message{}, errors.Wrap(ErrMalformedMessage, "not a JSON object")
	}

	if root.Get("type").String() == "reset" {
		return Message{Type: TypeReset}, nil
	}

	frame := root.Get("frame")
	if frame.Type != gjson.Number {
		return Message{}, errors.Wrap(ErrMalformedMessage, "missing or non-numeric frame")
	}
	heading := root.Get("heading")
	if heading.Type != gjson.Number {
		return Message{}, errors.Wrap(ErrMalformedMessage, "missing or non-numeric heading")
	}
	// Numbers too large for a float64 decode as infinity.
	if h := heading.Float(); math.IsInf(h, 0) || math.IsNaN(h) {
		return Message{}, errors.Wrapf(ErrMalformedMessage, "heading %s out of range", heading.Raw)
	}
	return Message{
		Type:    TypeData,
		Frame:   frame.Int(),
		Heading: heading.Float(),
	}, nil
}

type wireMessage struct {
	Type    string   `json:"type"`
	Frame   *int64   `json:"frame,omitempty"`
	Heading *float64 `json:"heading,omitempty"`
}

// Encode produces the JSON form FicTrac publishes for m.
func Encode(m Message) ([]byte, error) {
	w := wireMessage{Type: m.Type.String()}
	if m.Type == TypeData {
		w.Frame = &m.Frame
		w.Heading = &m.Heading
	}
	return json.Marshal(w)
}
