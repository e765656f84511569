package sui

import (
	"encoding/json"
	"fmt"
)

// =============================================================================
// JSON-RPC envelope
// =============================================================================

// RPCRequest is a JSON-RPC 2.0 request.
type RPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

// RPCResponse is a JSON-RPC 2.0 response.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
	ID      int             `json:"id"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// =============================================================================
// Object queries
// =============================================================================

// ObjectData is the typed content of a ledger object.
type ObjectData struct {
	ObjectID string          `json:"objectId"`
	Version  string          `json:"version"`
	Digest   string          `json:"digest"`
	Type     string          `json:"type"`
	Owner    json.RawMessage `json:"owner,omitempty"`
	Content  *ObjectContent  `json:"content,omitempty"`
}

// ObjectContent carries the move struct fields of an object.
type ObjectContent struct {
	DataType string          `json:"dataType"`
	Type     string          `json:"type"`
	Fields   json.RawMessage `json:"fields"`
}

// objectResponse is the sui_getObject result envelope.
type objectResponse struct {
	Data  *ObjectData  `json:"data"`
	Error *objectError `json:"error"`
}

type objectError struct {
	Code     string `json:"code"`
	ObjectID string `json:"object_id,omitempty"`
}

// ObjectsPage is one page of an owned-objects query.
type ObjectsPage struct {
	Data        []objectResponse `json:"data"`
	NextCursor  string           `json:"nextCursor"`
	HasNextPage bool             `json:"hasNextPage"`
}

// =============================================================================
// Events
// =============================================================================

// Event is an emitted move event.
type Event struct {
	ID          EventID         `json:"id"`
	PackageID   string          `json:"packageId"`
	Module      string          `json:"transactionModule"`
	Sender      string          `json:"sender"`
	Type        string          `json:"type"`
	ParsedJSON  json.RawMessage `json:"parsedJson"`
	TimestampMS string          `json:"timestampMs"`
}

// EventID identifies an event within a transaction.
type EventID struct {
	TxDigest string `json:"txDigest"`
	EventSeq string `json:"eventSeq"`
}

// EventsPage is one page of an event query.
type EventsPage struct {
	Data        []Event `json:"data"`
	NextCursor  EventID `json:"nextCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

// EventFilter selects events by move event type.
type EventFilter struct {
	MoveEventType string `json:"MoveEventType,omitempty"`
	Sender        string `json:"Sender,omitempty"`
}

// =============================================================================
// Transaction execution
// =============================================================================

// TxEffects summarizes the execution outcome of a transaction block.
type TxEffects struct {
	Status TxStatus `json:"status"`
}

// TxStatus is the success/failure status reported by the ledger.
type TxStatus struct {
	Status string `json:"status"` // "success" or "failure"
	Error  string `json:"error,omitempty"`
}

// ObjectChange describes one object touched by a transaction.
type ObjectChange struct {
	Type       string `json:"type"` // created, mutated, deleted, transferred
	ObjectType string `json:"objectType"`
	ObjectID   string `json:"objectId"`
	Sender     string `json:"sender,omitempty"`
	Version    string `json:"version,omitempty"`
}

// TxResult is the confirmed outcome of a submitted transaction block.
type TxResult struct {
	Digest        string         `json:"digest"`
	Effects       TxEffects      `json:"effects"`
	ObjectChanges []ObjectChange `json:"objectChanges,omitempty"`
	Events        []Event        `json:"events,omitempty"`
}

// Succeeded reports whether the ledger applied the transaction.
func (r *TxResult) Succeeded() bool {
	return r.Effects.Status.Status == "success"
}
