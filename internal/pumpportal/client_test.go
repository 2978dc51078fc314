package pumpportal

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

func newTestClient(server *httptest.Server, apiKey string) *Client {
	return &Client{
		client:        server.Client(),
		tradeURL:      server.URL + "/trade",
		tradeLocalURL: server.URL + "/trade-local",
		ipfsURL:       server.URL + "/ipfs",
		apiKey:        apiKey,
		logger:        zap.NewNop(),
	}
}

func TestTrade(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.URL.Query().Get("api-key"))

		var req TradeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, ActionBuy, req.Action)
		assert.Equal(t, "0.01", req.Amount)
		assert.Equal(t, "true", req.DenominatedInSol)

		fmt.Fprint(w, `{"success":true,"signature":"5abcSig"}`)
	}))
	defer server.Close()

	client := newTestClient(server, "secret")
	resp, err := client.Trade(context.Background(), &TradeRequest{
		Action:           ActionBuy,
		Mint:             "SomeMint",
		Amount:           "0.01",
		DenominatedInSol: "true",
		Pool:             PoolPump,
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "5abcSig", resp.Signature)
}

func TestTradeUpstreamRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":false,"error":"insufficient balance"}`)
	}))
	defer server.Close()

	client := newTestClient(server, "secret")
	resp, err := client.Trade(context.Background(), &TradeRequest{Action: ActionSell})
	require.NoError(t, err, "a declined trade is a response, not a transport error")
	assert.False(t, resp.Success)
	assert.Equal(t, "insufficient balance", resp.Error)
}

func TestTradeWithoutAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should be sent without an api key")
	}))
	defer server.Close()

	client := newTestClient(server, "")
	_, err := client.Trade(context.Background(), &TradeRequest{Action: ActionBuy})
	assert.ErrorIs(t, err, ErrAPIKeyMissing)
}

func TestBuildLocal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqs []*TradeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqs))
		require.Len(t, reqs, 2)

		fmt.Fprint(w, `["blob1","blob2"]`)
	}))
	defer server.Close()

	client := newTestClient(server, "")
	blobs, err := client.BuildLocal(context.Background(), []*TradeRequest{
		{Action: ActionCreate, Mint: "MintA"},
		{Action: ActionBuy, Mint: "MintA"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"blob1", "blob2"}, blobs)
}

func TestBuildLocalBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server, "")
	_, err := client.BuildLocal(context.Background(), []*TradeRequest{{Action: ActionBuy}})
	assert.Error(t, err)
}
