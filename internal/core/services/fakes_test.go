package services

import (
	"context"
	"sort"
	"time"

	"qcc-stakevault/internal/adapters/chain"
	"qcc-stakevault/internal/adapters/persistence/models"
	"qcc-stakevault/internal/adapters/persistence/repositories"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// fakeStakingRepo is an in-memory StakingRepository with the same conditional
// update semantics as the GORM implementation.
type fakeStakingRepo struct {
	records   map[uint]*models.Staking
	nextID    uint
	updateErr error
	deleted   []uint
	// readStatus overrides the status GetByID reports without touching the
	// stored record, to simulate a concurrent pass settling it between a
	// service's read and its conditional write.
	readStatus map[uint]string
}

func newFakeStakingRepo() *fakeStakingRepo {
	return &fakeStakingRepo{records: make(map[uint]*models.Staking)}
}

func (r *fakeStakingRepo) add(st *models.Staking) *models.Staking {
	if st.ID == 0 {
		r.nextID++
		st.ID = r.nextID
	} else if st.ID > r.nextID {
		r.nextID = st.ID
	}
	cp := *st
	r.records[st.ID] = &cp
	return st
}

func (r *fakeStakingRepo) sorted() []*models.Staking {
	out := make([]*models.Staking, 0, len(r.records))
	for _, st := range r.records {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeStakingRepo) Create(_ context.Context, staking *models.Staking) error {
	r.nextID++
	staking.ID = r.nextID
	if staking.CreatedAt.IsZero() {
		staking.CreatedAt = time.Now()
	}
	cp := *staking
	r.records[staking.ID] = &cp
	return nil
}

func (r *fakeStakingRepo) GetByID(_ context.Context, id uint) (*models.Staking, error) {
	st, ok := r.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *st
	if status, ok := r.readStatus[id]; ok {
		cp.Status = status
	}
	return &cp, nil
}

func (r *fakeStakingRepo) ListByWallet(_ context.Context, wallet string) ([]*models.Staking, error) {
	var out []*models.Staking
	for _, st := range r.sorted() {
		if st.WalletAddress == wallet {
			cp := *st
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeStakingRepo) List(_ context.Context, offset, limit int, status string) ([]*models.Staking, int64, error) {
	var all []*models.Staking
	for _, st := range r.sorted() {
		if status == "" || st.Status == status {
			cp := *st
			all = append(all, &cp)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeStakingRepo) FindExpired(_ context.Context, now time.Time) ([]*models.Staking, error) {
	var out []*models.Staking
	for _, st := range r.sorted() {
		if st.Status == models.StatusActive && !st.EndDate.After(now) {
			cp := *st
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeStakingRepo) FindExpiringWithin(_ context.Context, now time.Time, days int) ([]*models.Staking, error) {
	until := now.AddDate(0, 0, days)
	var out []*models.Staking
	for _, st := range r.sorted() {
		if st.Status == models.StatusActive && st.EndDate.After(now) && !st.EndDate.After(until) {
			cp := *st
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeStakingRepo) FindRecentWithDeposit(_ context.Context, from, to time.Time) ([]*models.Staking, error) {
	var out []*models.Staking
	for _, st := range r.sorted() {
		if st.Status != models.StatusActive || st.DepositTxHash == nil || *st.DepositTxHash == "" {
			continue
		}
		if st.CreatedAt.Before(from) || !st.CreatedAt.Before(to) {
			continue
		}
		cp := *st
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeStakingRepo) FindInvalidOlderThan(_ context.Context, cutoff time.Time) ([]*models.Staking, error) {
	var out []*models.Staking
	for _, st := range r.sorted() {
		if st.Status == models.StatusInvalid && !st.CreatedAt.After(cutoff) {
			cp := *st
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeStakingRepo) UpdateStatusIf(_ context.Context, id uint, expectedStatus string, fields map[string]interface{}) (bool, error) {
	if r.updateErr != nil {
		return false, r.updateErr
	}
	st, ok := r.records[id]
	if !ok || st.Status != expectedStatus {
		return false, nil
	}
	if v, ok := fields["status"]; ok {
		st.Status = v.(string)
	}
	if v, ok := fields["actual_reward"]; ok {
		d := v.(decimal.Decimal)
		st.ActualReward = &d
	}
	if v, ok := fields["return_transaction_hash"]; ok {
		h := v.(string)
		st.ReturnTxHash = &h
	}
	if v, ok := fields["return_tx_provisional"]; ok {
		st.ReturnTxProvisional = v.(bool)
	}
	st.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeStakingRepo) Delete(_ context.Context, id uint) error {
	delete(r.records, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeStakingRepo) Stats(_ context.Context, wallet string) (*repositories.StakingStats, error) {
	stats := &repositories.StakingStats{
		TotalActiveAmount:  decimal.Zero,
		TotalEarnedRewards: decimal.Zero,
	}
	for _, st := range r.records {
		if wallet != "" && st.WalletAddress != wallet {
			continue
		}
		stats.TotalCount++
		if st.Status == models.StatusActive {
			stats.ActiveCount++
			stats.TotalActiveAmount = stats.TotalActiveAmount.Add(st.StakedAmount)
		}
		if st.Status == models.StatusCompleted && st.ActualReward != nil {
			stats.TotalEarnedRewards = stats.TotalEarnedRewards.Add(*st.ActualReward)
		}
	}
	return stats, nil
}

// fakeRateRepo is an in-memory RateRepository.
type fakeRateRepo struct {
	rates      map[int]decimal.Decimal
	replaceErr error
}

func newFakeRateRepo(rates map[int]decimal.Decimal) *fakeRateRepo {
	cp := make(map[int]decimal.Decimal, len(rates))
	for k, v := range rates {
		cp[k] = v
	}
	return &fakeRateRepo{rates: cp}
}

func (r *fakeRateRepo) GetAll(_ context.Context) ([]*models.InterestRate, error) {
	periods := make([]int, 0, len(r.rates))
	for p := range r.rates {
		periods = append(periods, p)
	}
	sort.Ints(periods)
	out := make([]*models.InterestRate, 0, len(periods))
	for i, p := range periods {
		out = append(out, &models.InterestRate{ID: uint(i + 1), Period: p, Rate: r.rates[p]})
	}
	return out, nil
}

func (r *fakeRateRepo) GetByPeriod(_ context.Context, period int) (*models.InterestRate, error) {
	rate, ok := r.rates[period]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.InterestRate{Period: period, Rate: rate}, nil
}

func (r *fakeRateRepo) ReplaceAll(_ context.Context, rates map[int]decimal.Decimal) error {
	if r.replaceErr != nil {
		return r.replaceErr
	}
	for p, rate := range rates {
		r.rates[p] = rate
	}
	return nil
}

// fakeAdminRepo is an in-memory AdminRepository.
type fakeAdminRepo struct {
	cred *models.AdminCredential
}

func (r *fakeAdminRepo) Get(_ context.Context) (*models.AdminCredential, error) {
	if r.cred == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r.cred
	return &cp, nil
}

func (r *fakeAdminRepo) Save(_ context.Context, cred *models.AdminCredential) error {
	cp := *cred
	r.cred = &cp
	return nil
}

type payout struct {
	to     string
	amount decimal.Decimal
}

// fakeChain is a scriptable chain.Client.
type fakeChain struct {
	payouts    []payout
	payoutErr  error
	nextHash   string
	known      map[string]bool
	lookupErrs map[string]error
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		nextHash:   "aa00000000000000000000000000000000000000000000000000000000000000",
		known:      make(map[string]bool),
		lookupErrs: make(map[string]error),
	}
}

func (c *fakeChain) BroadcastPayout(_ context.Context, toAddress string, amount decimal.Decimal) (*chain.PayoutReceipt, error) {
	if c.payoutErr != nil {
		return nil, c.payoutErr
	}
	c.payouts = append(c.payouts, payout{to: toAddress, amount: amount})
	return &chain.PayoutReceipt{Ref: chain.TxRef{Hash: c.nextHash}}, nil
}

func (c *fakeChain) QueryTransaction(_ context.Context, txHash string) (*chain.TxLookup, error) {
	if err, ok := c.lookupErrs[txHash]; ok {
		return nil, err
	}
	return &chain.TxLookup{Found: c.known[txHash]}, nil
}

func (c *fakeChain) Balance(_ context.Context, _ string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (c *fakeChain) CheckConfiguration() chain.ConfigStatus {
	return chain.ConfigStatus{}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string {
	return &s
}
