package sui

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testPackageID = "0xpkg"

// fakeNode is a scripted JSON-RPC fullnode.
type fakeNode struct {
	t        *testing.T
	handlers map[string]func(params []interface{}) (interface{}, *RPCError)
	calls    []string
}

func newFakeNode(t *testing.T) (*fakeNode, *httptest.Server) {
	t.Helper()
	node := &fakeNode{
		t:        t,
		handlers: make(map[string]func(params []interface{}) (interface{}, *RPCError)),
	}
	srv := httptest.NewServer(node)
	t.Cleanup(srv.Close)
	return node, srv
}

func (n *fakeNode) handle(method string, fn func(params []interface{}) (interface{}, *RPCError)) {
	n.handlers[method] = fn
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req RPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		n.t.Errorf("bad rpc request: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	n.calls = append(n.calls, req.Method)

	fn, ok := n.handlers[req.Method]
	if !ok {
		n.t.Errorf("unexpected rpc method %s", req.Method)
		http.Error(w, "unexpected method", http.StatusBadRequest)
		return
	}

	result, rpcErr := fn(req.Params)
	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func newTestGateway(t *testing.T, rpcURL string) *Gateway {
	t.Helper()
	client, err := NewClient(ClientConfig{RPCURL: rpcURL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	signer, err := NewSigner(base64.StdEncoding.EncodeToString(testSeed()))
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	gw, err := NewGateway(GatewayConfig{Client: client, Signer: signer, PackageID: testPackageID})
	if err != nil {
		t.Fatalf("NewGateway: %v", err)
	}
	return gw
}

func simpleBlock() *TxBuilder {
	b := NewTxBuilder()
	b.MoveCall(testPackageID+"::aircraft::create_aircraft", PureString("N12345"))
	return b
}

func TestNewGatewayValidation(t *testing.T) {
	client, _ := NewClient(ClientConfig{RPCURL: "http://localhost:1"})
	signer, _ := NewSigner(base64.StdEncoding.EncodeToString(testSeed()))

	cases := []GatewayConfig{
		{Signer: signer, PackageID: testPackageID},
		{Client: client, PackageID: testPackageID},
		{Client: client, Signer: signer},
	}
	for i, cfg := range cases {
		if _, err := NewGateway(cfg); !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("case %d: err = %v, want ErrInvalidParameter", i, err)
		}
	}
}

func TestGatewayTarget(t *testing.T) {
	gw := newTestGateway(t, "http://localhost:1")
	if got := gw.Target("part", "attach_to_parent"); got != "0xpkg::part::attach_to_parent" {
		t.Fatalf("Target = %s", got)
	}
}

func TestSubmitSuccess(t *testing.T) {
	node, srv := newFakeNode(t)
	gw := newTestGateway(t, srv.URL)

	node.handle("unsafe_batchTransaction", func(params []interface{}) (interface{}, *RPCError) {
		if sender := params[0].(string); sender != gw.Address() {
			t.Errorf("build sender = %s, want %s", sender, gw.Address())
		}
		return map[string]string{"txBytes": "dHhieXRlcw=="}, nil
	})
	node.handle("sui_executeTransactionBlock", func(params []interface{}) (interface{}, *RPCError) {
		sigs := params[1].([]interface{})
		if len(sigs) != 1 || sigs[0].(string) == "" {
			t.Errorf("missing signature in execute params")
		}
		if mode := params[3].(string); mode != "WaitForLocalExecution" {
			t.Errorf("request type = %s", mode)
		}
		return map[string]interface{}{
			"digest":  "0xdigest",
			"effects": map[string]interface{}{"status": map[string]string{"status": "success"}},
			"objectChanges": []map[string]string{
				{"type": "created", "objectType": "0xpkg::aircraft::Aircraft", "objectId": "0xplane"},
			},
		}, nil
	})

	result, err := gw.Submit(context.Background(), simpleBlock())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Digest != "0xdigest" {
		t.Fatalf("digest = %s", result.Digest)
	}

	id, ok := CreatedObjectID(result.ObjectChanges, "::aircraft::Aircraft")
	if !ok || id != "0xplane" {
		t.Fatalf("created object = %s, %v", id, ok)
	}
}

func TestSubmitRejectedOnFailureStatus(t *testing.T) {
	node, srv := newFakeNode(t)
	gw := newTestGateway(t, srv.URL)

	node.handle("unsafe_batchTransaction", func([]interface{}) (interface{}, *RPCError) {
		return map[string]string{"txBytes": "dHhieXRlcw=="}, nil
	})
	node.handle("sui_executeTransactionBlock", func([]interface{}) (interface{}, *RPCError) {
		return map[string]interface{}{
			"digest": "0xdigest",
			"effects": map[string]interface{}{
				"status": map[string]string{"status": "failure", "error": "MoveAbort(3)"},
			},
		}, nil
	})

	_, err := gw.Submit(context.Background(), simpleBlock())
	if !errors.Is(err, ErrTransactionRejected) {
		t.Fatalf("err = %v, want ErrTransactionRejected", err)
	}
}

func TestSubmitInvalidBlockNotSent(t *testing.T) {
	node, srv := newFakeNode(t)
	gw := newTestGateway(t, srv.URL)

	_, err := gw.Submit(context.Background(), NewTxBuilder())
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
	if len(node.calls) != 0 {
		t.Fatalf("invalid block reached the node: %v", node.calls)
	}
}

func TestSubmitTransportError(t *testing.T) {
	_, srv := newFakeNode(t)
	gw := newTestGateway(t, srv.URL)
	srv.Close()

	_, err := gw.Submit(context.Background(), simpleBlock())
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
}

func TestGetObjectNotFound(t *testing.T) {
	node, srv := newFakeNode(t)
	gw := newTestGateway(t, srv.URL)

	node.handle("sui_getObject", func([]interface{}) (interface{}, *RPCError) {
		return map[string]interface{}{
			"error": map[string]string{"code": "notExists", "object_id": "0xmissing"},
		}, nil
	})

	_, err := gw.GetObject(context.Background(), "0xmissing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetOwnedObjectsFollowsPagination(t *testing.T) {
	node, srv := newFakeNode(t)
	gw := newTestGateway(t, srv.URL)

	page := 0
	node.handle("suix_getOwnedObjects", func(params []interface{}) (interface{}, *RPCError) {
		query := params[1].(map[string]interface{})
		filter, _ := query["filter"].(map[string]interface{})
		if filter == nil || filter["StructType"] != "0xpkg::part::Part" {
			t.Errorf("struct type not qualified: %v", query["filter"])
		}

		page++
		if page == 1 {
			return map[string]interface{}{
				"data": []map[string]interface{}{
					{"data": map[string]string{"objectId": "0xpart1"}},
				},
				"nextCursor":  "cursor-1",
				"hasNextPage": true,
			}, nil
		}
		if cursor := params[2].(string); cursor != "cursor-1" {
			t.Errorf("cursor not forwarded: %v", params[2])
		}
		return map[string]interface{}{
			"data": []map[string]interface{}{
				{"data": map[string]string{"objectId": "0xpart2"}},
			},
			"hasNextPage": false,
		}, nil
	})

	objects, err := gw.GetOwnedObjects(context.Background(), "0xowner", "part::Part")
	if err != nil {
		t.Fatalf("GetOwnedObjects: %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("object count = %d", len(objects))
	}
	if objects[0].ObjectID != "0xpart1" || objects[1].ObjectID != "0xpart2" {
		t.Fatalf("unexpected objects: %+v", objects)
	}
}

func TestQueryEventsQualifiesType(t *testing.T) {
	node, srv := newFakeNode(t)
	gw := newTestGateway(t, srv.URL)

	node.handle("suix_queryEvents", func(params []interface{}) (interface{}, *RPCError) {
		query := params[0].(map[string]interface{})
		if query["MoveEventType"] != "0xpkg::part::SensorDataAdded" {
			t.Errorf("event type = %v", query["MoveEventType"])
		}
		if limit := params[2].(float64); limit != 100 {
			t.Errorf("default limit = %v", limit)
		}
		return map[string]interface{}{
			"data": []map[string]interface{}{
				{"type": "0xpkg::part::SensorDataAdded", "parsedJson": map[string]string{"part_id": "0xpart"}},
			},
			"hasNextPage": false,
		}, nil
	})

	events, err := gw.QueryEvents(context.Background(), "part::SensorDataAdded", 0)
	if err != nil {
		t.Fatalf("QueryEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("event count = %d", len(events))
	}
}

func TestCallReturnsRPCError(t *testing.T) {
	node, srv := newFakeNode(t)
	gw := newTestGateway(t, srv.URL)

	node.handle("sui_getObject", func([]interface{}) (interface{}, *RPCError) {
		return nil, &RPCError{Code: -32602, Message: "invalid params"}
	})

	_, err := gw.GetObject(context.Background(), "0xabc")
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) || rpcErr.Code != -32602 {
		t.Fatalf("err = %v, want *RPCError", err)
	}
}

func TestCallClassifiesRPCErrors(t *testing.T) {
	cases := []struct {
		name string
		code int
		want error
	}{
		{"invalid params", -32602, ErrTransactionRejected},
		{"invalid request", -32600, ErrTransactionRejected},
		{"internal error", -32603, ErrTransport},
	}
	for _, tc := range cases {
		node, srv := newFakeNode(t)
		gw := newTestGateway(t, srv.URL)
		node.handle("sui_getObject", func([]interface{}) (interface{}, *RPCError) {
			return nil, &RPCError{Code: tc.code, Message: tc.name}
		})

		_, err := gw.GetObject(context.Background(), "0xabc")
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
}
