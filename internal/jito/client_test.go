package jito

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(server *httptest.Server) *Client {
	return &Client{
		client:   server.Client(),
		endpoint: server.URL,
		logger:   zap.NewNop(),
	}
}

func TestSendBundle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0", req.Jsonrpc)
		assert.Equal(t, "sendBundle", req.Method)
		require.Len(t, req.Params, 1)

		txs, ok := req.Params[0].([]interface{})
		require.True(t, ok)
		assert.Len(t, txs, 2)

		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":"bundle-id-123"}`)
	}))
	defer server.Close()

	bundleID, err := newTestClient(server).SendBundle(context.Background(), []string{"tx1", "tx2"})
	require.NoError(t, err)
	assert.Equal(t, "bundle-id-123", bundleID)
}

func TestSendBundleRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"bundle simulation failed"}}`)
	}))
	defer server.Close()

	_, err := newTestClient(server).SendBundle(context.Background(), []string{"tx1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bundle simulation failed")
}

func TestSendBundleSizeLimits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid bundles must not be submitted")
	}))
	defer server.Close()

	client := newTestClient(server)

	_, err := client.SendBundle(context.Background(), nil)
	assert.Error(t, err)

	_, err = client.SendBundle(context.Background(), []string{"1", "2", "3", "4", "5", "6"})
	assert.Error(t, err)
}
