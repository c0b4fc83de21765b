package chain

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"qcc-stakevault/internal/config"
	"qcc-stakevault/internal/pkg/qcrypto"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "1111111111111111111111111111111111111111111111111111111111111111"

func newTestClient(baseURL string, enableReal bool) *HTTPClient {
	return NewHTTPClient(config.ChainConfig{
		APIBaseURL:             baseURL,
		PrivateKey:             testKey,
		PoolAddress:            "pooladdress000000000000000000000000000000abc",
		EnableRealTransactions: enableReal,
		TimeoutSeconds:         5,
	})
}

func TestBroadcastDryRun(t *testing.T) {
	// No server: a dry run must never touch the network.
	client := newTestClient("http://127.0.0.1:0", false)

	receipt, err := client.BroadcastPayout(context.Background(), "destaddress000000000000000000000000000000abc", decimal.NewFromInt(10))
	require.NoError(t, err)

	assert.True(t, receipt.DryRun)
	assert.True(t, receipt.Ref.Provisional)
	assert.True(t, strings.HasPrefix(receipt.Ref.Hash, "dry_run_"))
}

func TestBroadcastRequiresConfiguration(t *testing.T) {
	client := NewHTTPClient(config.ChainConfig{APIBaseURL: "http://127.0.0.1:0"})

	_, err := client.BroadcastPayout(context.Background(), "destaddress000000000000000000000000000000abc", decimal.NewFromInt(1))
	assert.Error(t, err)
}

func TestBroadcastSignsAndConvertsToBaseUnits(t *testing.T) {
	const nodeTime int64 = 1748800000000000
	var captured qcrypto.SignedSendRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/ts":
			fmt.Fprintf(w, "%d", nodeTime)
		case "/broadcast/":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(map[string]string{"txhash": "abc123"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, true)

	receipt, err := client.BroadcastPayout(context.Background(), "destaddress000000000000000000000000000000abc", decimal.RequireFromString("2.5"))
	require.NoError(t, err)

	assert.Equal(t, "abc123", receipt.Ref.Hash)
	assert.False(t, receipt.Ref.Provisional)

	// 2.5 QCC = 2.5e18 base units, signed against node time.
	require.NotNil(t, captured.Transaction)
	assert.Equal(t, "2500000000000000000", captured.Transaction.Amount)
	assert.Equal(t, nodeTime, captured.Transaction.Timestamp)
	assert.Equal(t, "Send", captured.Transaction.Type)

	pub, err := hex.DecodeString(captured.PublicKey)
	require.NoError(t, err)
	sig, err := hex.DecodeString(captured.Signature)
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(pub, []byte(captured.Transaction.Hash()), sig))
}

func TestBroadcastRejections(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"error field", `{"error":"insufficient balance"}`},
		{"error in output", `{"output":"error: invalid signature"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/api/ts" {
					fmt.Fprint(w, "1748800000000000")
					return
				}
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			client := newTestClient(srv.URL, true)
			_, err := client.BroadcastPayout(context.Background(), "destaddress000000000000000000000000000000abc", decimal.NewFromInt(1))
			assert.Error(t, err)
		})
	}
}

func TestBroadcastWithoutHashIsProvisional(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/ts" {
			fmt.Fprint(w, "1748800000000000")
			return
		}
		fmt.Fprint(w, `{"output":"accepted"}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, true)
	receipt, err := client.BroadcastPayout(context.Background(), "destaddress000000000000000000000000000000abc", decimal.NewFromInt(1))
	require.NoError(t, err)

	assert.True(t, receipt.Ref.Provisional)
	assert.True(t, strings.HasPrefix(receipt.Ref.Hash, "tx_"))
}

func TestQueryTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/txs/known":
			fmt.Fprint(w, `{"hash":"known"}`)
		case "/txs/unknown":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, true)

	lookup, err := client.QueryTransaction(context.Background(), "known")
	require.NoError(t, err)
	assert.True(t, lookup.Found)

	// 4xx is a definite answer, not an error.
	lookup, err = client.QueryTransaction(context.Background(), "unknown")
	require.NoError(t, err)
	assert.False(t, lookup.Found)

	// 5xx is a transport-level failure: no verdict.
	_, err = client.QueryTransaction(context.Background(), "flaky")
	assert.Error(t, err)
}

func TestBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"balance":"123.45"}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, true)
	bal, err := client.Balance(context.Background(), "someaddress")
	require.NoError(t, err)
	assert.True(t, bal.Equal(decimal.RequireFromString("123.45")))
}

func TestCheckConfiguration(t *testing.T) {
	status := newTestClient("http://node.example/", true).CheckConfiguration()
	assert.True(t, status.HasPrivateKey)
	assert.True(t, status.HasPoolAddress)
	assert.True(t, status.RealTransactionsEnabled)
	assert.Equal(t, "http://node.example", status.APIBaseURL, "trailing slash trimmed")
}
