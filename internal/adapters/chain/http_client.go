package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"qcc-stakevault/internal/config"
	"qcc-stakevault/internal/pkg/qcrypto"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// baseUnitExponent converts QCC to the chain's integer base unit.
const baseUnitExponent = 18

// HTTPClient implements Client against the QCC chain REST API.
type HTTPClient struct {
	baseURL     string
	privateKey  string
	poolAddress string
	enableReal  bool
	httpClient  *http.Client
}

// NewHTTPClient creates a chain client from configuration.
func NewHTTPClient(cfg config.ChainConfig) *HTTPClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL:     strings.TrimRight(cfg.APIBaseURL, "/"),
		privateKey:  cfg.PrivateKey,
		poolAddress: cfg.PoolAddress,
		enableReal:  cfg.EnableRealTransactions,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// CheckConfiguration reports the client's broadcast readiness.
func (c *HTTPClient) CheckConfiguration() ConfigStatus {
	return ConfigStatus{
		HasPrivateKey:           c.privateKey != "",
		HasPoolAddress:          c.poolAddress != "",
		RealTransactionsEnabled: c.enableReal,
		APIBaseURL:              c.baseURL,
		PoolAddress:             c.poolAddress,
	}
}

// broadcastResponse mirrors the fields the node may return for /broadcast/.
type broadcastResponse struct {
	Error  string `json:"error"`
	Output string `json:"output"`
	TxHash string `json:"txhash"`
	TxID   string `json:"txid"`
	Hash   string `json:"hash"`
}

// BroadcastPayout sends amount QCC from the staking pool to toAddress.
func (c *HTTPClient) BroadcastPayout(ctx context.Context, toAddress string, amount decimal.Decimal) (*PayoutReceipt, error) {
	if c.privateKey == "" {
		return nil, fmt.Errorf("chain private key not configured")
	}
	if c.poolAddress == "" {
		return nil, fmt.Errorf("staking pool address not configured")
	}

	if !c.enableReal {
		// Dry-run: no network traffic, provisional reference only.
		log.Printf("🔍 [DRY RUN] payout of %s QCC to %s not broadcast", amount.String(), toAddress)
		return &PayoutReceipt{
			Ref:    TxRef{Hash: "dry_run_" + uuid.NewString(), Provisional: true},
			DryRun: true,
			Output: "dry run - no transfer performed",
		}, nil
	}

	// The chain expects integer base units.
	baseAmount := amount.Shift(baseUnitExponent).Truncate(0).String()

	timestamp, err := c.fetchTimestamp(ctx)
	if err != nil {
		// Node clock unreachable: sign against local time in chain units.
		log.Printf("⚠️ chain timestamp unavailable (%v), using local time", err)
		timestamp = qcrypto.UTime()
	}

	signed, err := qcrypto.BuildSendRequest(c.privateKey, toAddress, baseAmount, timestamp)
	if err != nil {
		return nil, fmt.Errorf("sign transfer: %w", err)
	}

	body, err := json.Marshal(signed)
	if err != nil {
		return nil, err
	}

	raw, status, err := c.post(ctx, "/broadcast/", body)
	if err != nil {
		return nil, fmt.Errorf("broadcast: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("broadcast: node returned status %d: %s", status, truncate(raw, 256))
	}

	var resp broadcastResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("broadcast: malformed node response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("broadcast rejected: %s", resp.Error)
	}
	if strings.Contains(resp.Output, "error") {
		return nil, fmt.Errorf("broadcast rejected: %s", resp.Output)
	}

	ref := TxRef{}
	switch {
	case resp.TxHash != "":
		ref.Hash = resp.TxHash
	case resp.TxID != "":
		ref.Hash = resp.TxID
	case resp.Hash != "":
		ref.Hash = resp.Hash
	default:
		// Accepted without a hash: keep a provisional reference so the
		// payout is traceable and reconciliation can tell it apart.
		ref.Hash = "tx_" + uuid.NewString()
		ref.Provisional = true
		log.Printf("⚠️ node returned no tx hash, recording provisional ref %s", ref.Hash)
	}

	return &PayoutReceipt{
		Ref:    ref,
		Output: resp.Output,
		Raw:    raw,
	}, nil
}

// QueryTransaction checks whether the network knows txHash.
func (c *HTTPClient) QueryTransaction(ctx context.Context, txHash string) (*TxLookup, error) {
	raw, status, err := c.get(ctx, "/txs/"+txHash)
	if err != nil {
		return nil, fmt.Errorf("query tx %s: %w", txHash, err)
	}

	switch {
	case status == http.StatusOK:
		return &TxLookup{Found: true, Raw: raw}, nil
	case status >= 400 && status < 500:
		// The node answered: it does not know this hash.
		return &TxLookup{Found: false, Raw: raw}, nil
	default:
		return nil, fmt.Errorf("query tx %s: node returned status %d", txHash, status)
	}
}

// Balance returns the spendable balance of an address.
func (c *HTTPClient) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	raw, status, err := c.get(ctx, "/balance/"+address)
	if err != nil {
		return decimal.Zero, fmt.Errorf("balance %s: %w", address, err)
	}
	if status != http.StatusOK {
		return decimal.Zero, fmt.Errorf("balance %s: node returned status %d", address, status)
	}

	var resp struct {
		Balance string `json:"balance"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("balance %s: malformed response: %w", address, err)
	}
	if resp.Balance == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(resp.Balance)
}

// fetchTimestamp reads the node's microsecond clock; transfers must be signed
// against node time, not local time.
func (c *HTTPClient) fetchTimestamp(ctx context.Context) (int64, error) {
	raw, status, err := c.get(ctx, "/api/ts")
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("node returned status %d", status)
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed timestamp %q", truncate(raw, 64))
	}
	return ts, nil
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, err
	}
	return c.do(req)
}

func (c *HTTPClient) post(ctx context.Context, path string, body []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *HTTPClient) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return raw, resp.StatusCode, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
