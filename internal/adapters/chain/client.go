// Package chain talks to the QCC settlement network's REST API.
package chain

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// TxRef identifies a payout on the settlement network. Provisional means the
// network accepted the broadcast but the response carried no hash (or the
// transfer ran in dry-run mode); reconciliation must never treat a
// provisional reference as a network-issued hash.
type TxRef struct {
	Hash        string `json:"hash"`
	Provisional bool   `json:"provisional"`
}

// PayoutReceipt is the outcome of a confirmed broadcast.
type PayoutReceipt struct {
	Ref    TxRef           `json:"ref"`
	DryRun bool            `json:"dry_run"`
	Output string          `json:"output,omitempty"`
	Raw    json.RawMessage `json:"raw,omitempty"`
}

// TxLookup is the outcome of a transaction status query. Found=false with a
// nil error means the network answered and does not know the hash; transport
// failures come back as errors instead.
type TxLookup struct {
	Found bool            `json:"found"`
	Raw   json.RawMessage `json:"raw,omitempty"`
}

// ConfigStatus reports whether the client can actually broadcast.
type ConfigStatus struct {
	HasPrivateKey           bool   `json:"has_private_key"`
	HasPoolAddress          bool   `json:"has_pool_address"`
	RealTransactionsEnabled bool   `json:"real_transactions_enabled"`
	APIBaseURL              string `json:"api_base_url"`
	PoolAddress             string `json:"pool_address"`
}

// Client is the settlement network contract consumed by the staking services.
type Client interface {
	// BroadcastPayout sends amount QCC from the staking pool to toAddress.
	// A nil error means the network confirmed acceptance; any error means
	// the payout must be assumed not to have happened.
	BroadcastPayout(ctx context.Context, toAddress string, amount decimal.Decimal) (*PayoutReceipt, error)

	// QueryTransaction checks whether the network knows txHash.
	QueryTransaction(ctx context.Context, txHash string) (*TxLookup, error)

	// Balance returns the spendable balance of an address.
	Balance(ctx context.Context, address string) (decimal.Decimal, error)

	// CheckConfiguration reports the client's broadcast readiness.
	CheckConfiguration() ConfigStatus
}
