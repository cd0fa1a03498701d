package tetrlang

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// operationWire is the serialized shape of an Operation; tokens are kept as DSL text.
type operationWire struct {
	Hold  bool   `json:"hold,omitempty" yaml:"hold,omitempty"`
	Piece Piece  `json:"piece,omitempty" yaml:"piece,omitempty"`
	Ops   string `json:"ops" yaml:"ops"`
}

func (o Operation) wire() operationWire {
	return operationWire{Hold: o.Hold, Piece: o.Piece, Ops: FormatOps(o.Ops)}
}

func (o *Operation) fromWire(w operationWire) error {
	ops, err := ParseOps(w.Ops)
	if err != nil {
		return err
	}
	*o = Operation{Hold: w.Hold, Piece: w.Piece, Ops: ops}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (o Operation) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.wire())
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Operation) UnmarshalJSON(data []byte) error {
	var w operationWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	return o.fromWire(w)
}

// MarshalYAML implements yaml.Marshaler.
func (o Operation) MarshalYAML() (any, error) {
	return o.wire(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *Operation) UnmarshalYAML(node *yaml.Node) error {
	var w operationWire
	if err := node.Decode(&w); err != nil {
		return err
	}
	return o.fromWire(w)
}
