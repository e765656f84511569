// Package sui provides Sui fullnode interaction for the asset ledger.
package sui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fullnode RPC URLs per network.
const (
	DevnetURL  = "https://fullnode.devnet.sui.io:443"
	TestnetURL = "https://fullnode.testnet.sui.io:443"
	MainnetURL = "https://fullnode.mainnet.sui.io:443"
)

// FullnodeURL resolves a network name to its public fullnode RPC URL.
func FullnodeURL(network string) (string, error) {
	switch network {
	case "devnet", "dev":
		return DevnetURL, nil
	case "testnet", "test":
		return TestnetURL, nil
	case "mainnet", "main":
		return MainnetURL, nil
	default:
		return "", InvalidParameterf("unknown network %q", network)
	}
}

// Client provides Sui JSON-RPC client functionality.
type Client struct {
	rpcURL     string
	httpClient *http.Client
}

// ClientConfig holds client configuration.
type ClientConfig struct {
	RPCURL  string
	Timeout time.Duration
}

// NewClient creates a new Sui fullnode client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, InvalidParameterf("RPC URL required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		rpcURL: cfg.RPCURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Call makes an RPC call to the fullnode. Network-level failures are
// reported as ErrTransport; RPC-level errors are classified into the
// sentinel kinds with the *RPCError kept in the chain for errors.As.
func (c *Client) Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	req := RPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTransport, method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: HTTP %d", ErrTransport, method, resp.StatusCode)
	}

	var rpcResp RPCResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v", ErrTransport, err)
	}

	if rpcResp.Error != nil {
		return nil, classifyRPCError(rpcResp.Error)
	}

	return rpcResp.Result, nil
}

// classifyRPCError folds an RPC-level error into a sentinel kind. Codes
// meaning the node understood and refused the request map to
// ErrTransactionRejected; everything else counts as a node-side failure.
func classifyRPCError(rpcErr *RPCError) error {
	switch rpcErr.Code {
	case -32600, -32602: // invalid request, invalid params
		return fmt.Errorf("%w: %w", ErrTransactionRejected, rpcErr)
	default:
		return fmt.Errorf("%w: %w", ErrTransport, rpcErr)
	}
}

// GetObject fetches a single object with typed content and owner.
func (c *Client) GetObject(ctx context.Context, objectID string) (*ObjectData, error) {
	opts := map[string]bool{
		"showContent": true,
		"showType":    true,
		"showOwner":   true,
	}
	result, err := c.Call(ctx, "sui_getObject", []interface{}{objectID, opts})
	if err != nil {
		return nil, err
	}

	var resp objectResponse
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal object: %w", err)
	}
	if resp.Error != nil || resp.Data == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, objectID)
	}
	return resp.Data, nil
}

// GetOwnedObjects fetches all objects owned by an address, optionally
// filtered by struct type. Pagination is followed to exhaustion.
func (c *Client) GetOwnedObjects(ctx context.Context, owner, structType string) ([]ObjectData, error) {
	var (
		objects []ObjectData
		cursor  interface{}
	)

	query := map[string]interface{}{
		"options": map[string]bool{
			"showContent": true,
			"showType":    true,
		},
	}
	if structType != "" {
		query["filter"] = map[string]string{"StructType": structType}
	}

	for {
		result, err := c.Call(ctx, "suix_getOwnedObjects", []interface{}{owner, query, cursor, nil})
		if err != nil {
			return nil, err
		}

		var page ObjectsPage
		if err := json.Unmarshal(result, &page); err != nil {
			return nil, fmt.Errorf("unmarshal owned objects: %w", err)
		}
		for _, entry := range page.Data {
			if entry.Data != nil {
				objects = append(objects, *entry.Data)
			}
		}
		if !page.HasNextPage || page.NextCursor == "" {
			return objects, nil
		}
		cursor = page.NextCursor
	}
}

// QueryEvents returns events matching the filter, newest first, up to limit.
func (c *Client) QueryEvents(ctx context.Context, filter EventFilter, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}

	query := map[string]interface{}{}
	if filter.MoveEventType != "" {
		query["MoveEventType"] = filter.MoveEventType
	}
	if filter.Sender != "" {
		query["Sender"] = filter.Sender
	}

	// descending=true yields newest events first
	result, err := c.Call(ctx, "suix_queryEvents", []interface{}{query, nil, limit, true})
	if err != nil {
		return nil, err
	}

	var page EventsPage
	if err := json.Unmarshal(result, &page); err != nil {
		return nil, fmt.Errorf("unmarshal events: %w", err)
	}
	return page.Data, nil
}
