package handlers

import (
	"errors"
	"strconv"
	"strings"

	"qcc-stakevault/internal/core/domain"
	"qcc-stakevault/internal/core/services"
	"qcc-stakevault/internal/pkg/pagination"
	"qcc-stakevault/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// StakingHandler handles staking endpoints
type StakingHandler struct {
	stakingService   *services.StakingService
	sweepService     *services.SweepService
	reconcileService *services.ReconcileService
}

// NewStakingHandler creates a new staking handler
func NewStakingHandler(
	stakingService *services.StakingService,
	sweepService *services.SweepService,
	reconcileService *services.ReconcileService,
) *StakingHandler {
	return &StakingHandler{
		stakingService:   stakingService,
		sweepService:     sweepService,
		reconcileService: reconcileService,
	}
}

// CreateStakingRequest represents a staking creation request body
type CreateStakingRequest struct {
	WalletAddress string          `json:"wallet_address"`
	StakedAmount  decimal.Decimal `json:"staked_amount"`
	StakingPeriod int             `json:"staking_period"`
	DepositTxHash string          `json:"transaction_hash"`
}

// CancelStakingRequest represents a cancellation request body
type CancelStakingRequest struct {
	WalletAddress string `json:"wallet_address"`
}

// Create handles staking creation
// @Summary Create staking
// @Description Record a new fixed-term staking deposit
// @Tags Staking
// @Accept json
// @Produce json
// @Param body body CreateStakingRequest true "Staking data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /staking [post]
func (h *StakingHandler) Create(c *fiber.Ctx) error {
	var req CreateStakingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.CreateStakingInput{
		WalletAddress: strings.TrimSpace(req.WalletAddress),
		StakedAmount:  req.StakedAmount,
		StakingPeriod: req.StakingPeriod,
		DepositTxHash: strings.TrimSpace(req.DepositTxHash),
	}

	staking, err := h.stakingService.Create(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBadWalletAddress):
			return response.BadRequest(c, "Invalid wallet address")
		case errors.Is(err, domain.ErrAmountNotPositive):
			return response.BadRequest(c, "Staked amount must be positive")
		case errors.Is(err, domain.ErrRateNotConfigured):
			return response.BadRequest(c, "Unsupported staking period")
		default:
			return response.InternalServerError(c, "Failed to create staking")
		}
	}

	return response.Created(c, "Staking created successfully", staking)
}

// GetByWallet handles listing stakings of one wallet
// @Summary List stakings by wallet
// @Description Returns all stakings of a wallet address, newest first
// @Tags Staking
// @Accept json
// @Produce json
// @Param address path string true "Wallet address"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /staking/wallet/{address} [get]
func (h *StakingHandler) GetByWallet(c *fiber.Ctx) error {
	address := strings.TrimSpace(c.Params("address"))

	stakings, err := h.stakingService.ListByWallet(c.Context(), address)
	if err != nil {
		if errors.Is(err, domain.ErrBadWalletAddress) {
			return response.BadRequest(c, "Invalid wallet address")
		}
		return response.InternalServerError(c, "Failed to fetch stakings")
	}

	return response.Success(c, "Stakings retrieved successfully", stakings)
}

// GetByID handles fetching one staking
// @Summary Get staking
// @Description Returns one staking record by ID
// @Tags Staking
// @Accept json
// @Produce json
// @Param id path int true "Staking ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /staking/{id} [get]
func (h *StakingHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid staking ID")
	}

	staking, err := h.stakingService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrStakingNotFound) {
			return response.NotFound(c, "Staking not found")
		}
		return response.InternalServerError(c, "Failed to fetch staking")
	}

	return response.Success(c, "Staking retrieved successfully", staking)
}

// Cancel handles early cancellation
// @Summary Cancel staking
// @Description Cancel an active staking early; the principal is returned and the reward is forfeited
// @Tags Staking
// @Accept json
// @Produce json
// @Param id path int true "Staking ID"
// @Param body body CancelStakingRequest true "Owner wallet address"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /staking/{id}/cancel [put]
func (h *StakingHandler) Cancel(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid staking ID")
	}

	var req CancelStakingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.WalletAddress == "" {
		return response.BadRequest(c, "Wallet address is required")
	}

	result, err := h.stakingService.Cancel(c.Context(), uint(id), strings.TrimSpace(req.WalletAddress))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStakingNotFound):
			return response.NotFound(c, "Staking not found")
		case errors.Is(err, domain.ErrNotOwner):
			return response.Forbidden(c, "Wallet address does not own this staking")
		case errors.Is(err, domain.ErrNotActive):
			return response.Conflict(c, "Staking is not active")
		case errors.Is(err, domain.ErrAlreadySettled):
			return response.Conflict(c, "Staking was settled concurrently")
		case errors.Is(err, domain.ErrSettlementFailed):
			return response.BadGateway(c, "Settlement network unavailable, please retry")
		default:
			return response.InternalServerError(c, "Failed to cancel staking")
		}
	}

	return response.Success(c, "Staking cancelled successfully", result)
}

// List handles the paginated admin listing
// @Summary List all stakings
// @Description Returns stakings page by page with an optional status filter (admin)
// @Tags Staking
// @Accept json
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Status filter (active, completed, cancelled, invalid)"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /staking [get]
func (h *StakingHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	status := c.Query("status")

	stakings, total, err := h.stakingService.ListAll(c.Context(), params.Offset, params.Limit, status)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch stakings")
	}

	return response.Success(c, "Stakings retrieved successfully", pagination.NewResponse(stakings, params, total))
}

// Stats handles aggregate counters
// @Summary Staking statistics
// @Description Returns aggregate staking counters, optionally scoped to one wallet
// @Tags Staking
// @Accept json
// @Produce json
// @Param wallet_address query string false "Wallet address"
// @Success 200 {object} response.Response
// @Router /staking/stats [get]
func (h *StakingHandler) Stats(c *fiber.Ctx) error {
	wallet := strings.TrimSpace(c.Query("wallet_address"))

	stats, err := h.stakingService.Stats(c.Context(), wallet)
	if err != nil {
		if errors.Is(err, domain.ErrBadWalletAddress) {
			return response.BadRequest(c, "Invalid wallet address")
		}
		return response.InternalServerError(c, "Failed to fetch statistics")
	}

	return response.Success(c, "Statistics retrieved successfully", stats)
}

// Periods handles the staking period offer listing
// @Summary Staking periods
// @Description Returns the offered lock periods with their current interest rates
// @Tags Staking
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /staking/periods [get]
func (h *StakingHandler) Periods(c *fiber.Ctx) error {
	periods, err := h.stakingService.Periods(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch staking periods")
	}

	return response.Success(c, "Staking periods retrieved successfully", periods)
}

// Expiring handles the upcoming expirations listing
// @Summary Upcoming expirations
// @Description Returns active stakings maturing within the next N days (admin)
// @Tags Staking
// @Accept json
// @Produce json
// @Param days query int false "Look-ahead window in days (default 7)"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /staking/expiring [get]
func (h *StakingHandler) Expiring(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil || days < 1 {
		return response.BadRequest(c, "Invalid look-ahead window")
	}

	stakings, err := h.sweepService.UpcomingExpirations(c.Context(), days)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch upcoming expirations")
	}

	return response.Success(c, "Upcoming expirations retrieved successfully", stakings)
}

// ProcessExpired handles a manual expiry sweep
// @Summary Process expired stakings
// @Description Settle every matured active staking immediately (admin)
// @Tags Staking
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /staking/process-expired [post]
func (h *StakingHandler) ProcessExpired(c *fiber.Ctx) error {
	summary, err := h.sweepService.SweepExpired(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Sweep failed")
	}

	return response.Success(c, "Sweep completed", summary)
}

// Reconcile handles a manual reconciliation pass
// @Summary Reconcile deposits
// @Description Re-verify deposit hashes against the settlement network (admin). Scope "recent" checks yesterday's deposits, "stale" re-checks quarantined records.
// @Tags Staking
// @Accept json
// @Produce json
// @Param scope query string false "Scan scope: recent or stale (default recent)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Security BearerAuth
// @Router /staking/reconcile [post]
func (h *StakingHandler) Reconcile(c *fiber.Ctx) error {
	scope := c.Query("scope", "recent")

	var (
		summary *services.ReconSummary
		err     error
	)
	switch scope {
	case "recent":
		summary, err = h.reconcileService.ScanRecent(c.Context())
	case "stale":
		summary, err = h.reconcileService.ScanStale(c.Context())
	default:
		return response.BadRequest(c, "Scope must be 'recent' or 'stale'")
	}
	if err != nil {
		return response.InternalServerError(c, "Reconciliation failed")
	}

	return response.Success(c, "Reconciliation completed", summary)
}
