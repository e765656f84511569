package sui

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// Transaction block builder
// =============================================================================

// CallArg is one typed argument to a move call: a pure value, an owned
// object reference, or the result of an earlier call in the same block.
type CallArg struct {
	Pure   *PureValue `json:"pure,omitempty"`
	Object string     `json:"object,omitempty"`
	Result *int       `json:"result,omitempty"`
}

// PureValue is a BCS-encodable primitive argument.
type PureValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// PureString builds a string argument.
func PureString(v string) CallArg {
	return CallArg{Pure: &PureValue{Type: "string", Value: v}}
}

// PureU64 builds a u64 argument.
func PureU64(v uint64) CallArg {
	return CallArg{Pure: &PureValue{Type: "u64", Value: strconv.FormatUint(v, 10)}}
}

// PureBool builds a bool argument.
func PureBool(v bool) CallArg {
	return CallArg{Pure: &PureValue{Type: "bool", Value: strconv.FormatBool(v)}}
}

// PureAddress builds an address argument.
func PureAddress(v string) CallArg {
	return CallArg{Pure: &PureValue{Type: "address", Value: v}}
}

// PureID builds an object-id argument passed by value.
func PureID(v string) CallArg {
	return CallArg{Pure: &PureValue{Type: "id", Value: v}}
}

// Object builds an owned-object argument resolved by the node at build time.
func Object(objectID string) CallArg {
	return CallArg{Object: objectID}
}

// MoveCall is one call within a transaction block.
type MoveCall struct {
	Target string    `json:"target"` // package::module::function
	Args   []CallArg `json:"arguments"`
}

// TxBuilder assembles an ordered list of move calls submitted as a single
// atomic transaction block. Builders are not safe for concurrent use; each
// submission constructs its own.
type TxBuilder struct {
	calls []MoveCall
}

// NewTxBuilder creates an empty transaction block builder.
func NewTxBuilder() *TxBuilder {
	return &TxBuilder{}
}

// MoveCall appends a call and returns a reference to its result, usable as
// an argument to a later call in the same block.
func (b *TxBuilder) MoveCall(target string, args ...CallArg) CallArg {
	idx := len(b.calls)
	b.calls = append(b.calls, MoveCall{Target: target, Args: args})
	return CallArg{Result: &idx}
}

// Calls returns the ordered move calls of the block.
func (b *TxBuilder) Calls() []MoveCall {
	return b.calls
}

// Empty reports whether no calls have been added.
func (b *TxBuilder) Empty() bool {
	return len(b.calls) == 0
}

// Validate checks that every target is well formed and every result
// reference points at an earlier call.
func (b *TxBuilder) Validate() error {
	if len(b.calls) == 0 {
		return InvalidParameterf("transaction block has no calls")
	}
	for i, call := range b.calls {
		if strings.Count(call.Target, "::") != 2 {
			return InvalidParameterf("call %d: malformed target %q", i, call.Target)
		}
		for _, arg := range call.Args {
			if arg.Result != nil && (*arg.Result < 0 || *arg.Result >= i) {
				return InvalidParameterf("call %d: result reference %d out of range", i, *arg.Result)
			}
		}
	}
	return nil
}

// payload renders the block in the shape the node-side builder expects.
func (b *TxBuilder) payload() []interface{} {
	out := make([]interface{}, 0, len(b.calls))
	for _, call := range b.calls {
		out = append(out, map[string]interface{}{
			"target":    call.Target,
			"arguments": call.Args,
		})
	}
	return out
}

// String renders a compact description for logs.
func (b *TxBuilder) String() string {
	targets := make([]string, 0, len(b.calls))
	for _, call := range b.calls {
		targets = append(targets, call.Target)
	}
	return fmt.Sprintf("txblock[%s]", strings.Join(targets, ", "))
}
