package bril

import (
	"encoding/json"
	"fmt"
)

// UnmarshalJSON decodes one body element. Label markers are objects with
// a "label" property; everything else must carry an "op".
func (c *Code) UnmarshalJSON(b []byte) error {
	var probe struct {
		Label *string `json:"label"`
		Op    *string `json:"op"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return err
	}
	if probe.Label != nil {
		c.Label = *probe.Label
		c.Inst = nil
		return nil
	}
	if probe.Op == nil {
		return fmt.Errorf("%w: body element is neither label nor instruction: %s", ErrMalformedIR, string(b))
	}
	inst := &Instruction{}
	if err := json.Unmarshal(b, inst); err != nil {
		return err
	}
	// A "float" const written without a fractional part decodes as an
	// int literal; the declared type wins.
	if inst.IsConst() && inst.Type == TypeFloat && inst.Value != nil && inst.Value.Kind == LitInt {
		v := FloatLit(float64(inst.Value.Int))
		inst.Value = &v
	}
	c.Inst = inst
	return nil
}

// MarshalJSON encodes the element back to bril's JSON form.
func (c Code) MarshalJSON() ([]byte, error) {
	if c.IsLabel() {
		return json.Marshal(struct {
			Label string `json:"label"`
		}{c.Label})
	}
	return json.Marshal(c.Inst)
}
