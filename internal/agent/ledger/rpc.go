package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/google/uuid"
	"github.com/viktorlk/healthwallet/internal/agent/models"
	"github.com/viktorlk/healthwallet/internal/common"
	"github.com/viktorlk/healthwallet/internal/logging"
)

// RPC method names exposed by the ledger node. hlt_* forwards to the token
// contract (balanceOf, transfer), hdm_* to the marketplace contract
// (enableDataSharing, disableDataSharing, shareHealthData, getUserDataSharing).
const (
	methodBalanceOf      = "hlt_balanceOf"
	methodGetDataSharing = "hdm_getUserDataSharing"
	methodSubmitConsent  = "hdm_submitConsentChange"
	methodSubmitShare    = "hdm_submitShare"
	methodClaimStatus    = "hdm_claimStatus"
)

const defaultPollInterval = 2 * time.Second

// RPCClient implements Client over JSON-RPC against the ledger node.
type RPCClient struct {
	rpc          *rpc.Client
	signer       Signer
	log          logging.Logger
	pollInterval time.Duration
}

// Dial connects to the ledger node at rawurl. The signer provides transaction
// intent signatures; the node verifies them against the on-chain account.
func Dial(ctx context.Context, rawurl string, signer Signer, log logging.Logger) (*RPCClient, error) {
	c, err := rpc.DialContext(ctx, rawurl)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", common.ErrLedgerUnreachable, rawurl, err)
	}
	return &RPCClient{
		rpc:          c,
		signer:       signer,
		log:          log.With("component", "ledger"),
		pollInterval: defaultPollInterval,
	}, nil
}

func (c *RPCClient) Close() error {
	c.rpc.Close()
	return nil
}

// txIntent is the canonical signed payload for a state-changing submission.
// Field order is fixed by the struct; the node re-serializes identically
// before verifying the signature.
type txIntent struct {
	From       string   `json:"from"`
	Method     string   `json:"method"`
	Category   string   `json:"category,omitempty"`
	Enabled    bool     `json:"enabled,omitempty"`
	RewardRate string   `json:"rewardRate,omitempty"`
	Categories []string `json:"categories,omitempty"`
	DataHash   string   `json:"dataHash,omitempty"`
	Nonce      string   `json:"nonce"`
	IssuedAt   int64    `json:"issuedAt"`
}

type signedSubmission struct {
	Intent    json.RawMessage `json:"intent"`
	Signature []byte          `json:"signature"`
	PublicKey []byte          `json:"publicKey"`
}

type submitResult struct {
	ClaimID string `json:"claimId"`
	Status  string `json:"status"`
}

type dataSharingResult struct {
	Enabled        bool   `json:"enabled"`
	RewardRate     string `json:"rewardRate"`
	LastRewardTime int64  `json:"lastRewardTime"`
}

func (c *RPCClient) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	var raw string
	if err := c.rpc.CallContext(ctx, &raw, methodBalanceOf, address); err != nil {
		return nil, c.mapError(err)
	}
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("%w: malformed balance %q", common.ErrLedgerRejected, raw)
	}
	return amount, nil
}

func (c *RPCClient) GetConsentOnChain(ctx context.Context, address string, cat models.Category) (ConsentSnapshot, error) {
	var res dataSharingResult
	if err := c.rpc.CallContext(ctx, &res, methodGetDataSharing, address, string(cat)); err != nil {
		return ConsentSnapshot{}, c.mapError(err)
	}

	rate := new(big.Int)
	if res.RewardRate != "" {
		var ok bool
		rate, ok = new(big.Int).SetString(res.RewardRate, 10)
		if !ok {
			return ConsentSnapshot{}, fmt.Errorf("%w: malformed reward rate %q", common.ErrLedgerRejected, res.RewardRate)
		}
	}

	var last time.Time
	if res.LastRewardTime > 0 {
		last = time.Unix(res.LastRewardTime, 0).UTC()
	}

	return ConsentSnapshot{Enabled: res.Enabled, RewardRate: rate, LastSettlement: last}, nil
}

func (c *RPCClient) SubmitConsentChange(ctx context.Context, address string, cat models.Category, enabled bool, rewardRate *big.Int) (Claim, error) {
	intent := txIntent{
		From:     address,
		Method:   methodSubmitConsent,
		Category: string(cat),
		Enabled:  enabled,
		Nonce:    uuid.NewString(),
		IssuedAt: time.Now().Unix(),
	}
	if rewardRate != nil {
		intent.RewardRate = rewardRate.String()
	}
	return c.submit(ctx, methodSubmitConsent, intent, ClaimConsent, cat)
}

func (c *RPCClient) SubmitShareAndReward(ctx context.Context, address string, cats []models.Category, dataHash string) (Claim, error) {
	names := make([]string, 0, len(cats))
	for _, cat := range cats {
		names = append(names, string(cat))
	}
	intent := txIntent{
		From:       address,
		Method:     methodSubmitShare,
		Categories: names,
		DataHash:   dataHash,
		Nonce:      uuid.NewString(),
		IssuedAt:   time.Now().Unix(),
	}
	var cat models.Category
	if len(cats) == 1 {
		cat = cats[0]
	}
	return c.submit(ctx, methodSubmitShare, intent, ClaimShare, cat)
}

func (c *RPCClient) submit(ctx context.Context, method string, intent txIntent, kind ClaimKind, cat models.Category) (Claim, error) {
	payload, err := json.Marshal(intent)
	if err != nil {
		return Claim{}, fmt.Errorf("encode intent: %w", err)
	}

	sig, err := c.signer.Sign(payload)
	if err != nil {
		// vault errors must not masquerade as ledger errors
		return Claim{}, err
	}

	sub := signedSubmission{Intent: payload, Signature: sig, PublicKey: c.signer.PublicKey()}

	var res submitResult
	if err := c.rpc.CallContext(ctx, &res, method, sub); err != nil {
		return Claim{}, c.mapError(err)
	}

	claim := Claim{
		ID:          res.ClaimID,
		Kind:        kind,
		Category:    cat,
		Status:      ClaimStatus(res.Status),
		SubmittedAt: time.Now().UTC(),
	}
	if claim.Status == "" {
		claim.Status = ClaimPending
	}
	c.log.Debug(ctx, "submitted claim", "method", method, "claim", claim.ID)
	return claim, nil
}

func (c *RPCClient) AwaitConfirmation(ctx context.Context, claim Claim, timeout time.Duration) (Claim, error) {
	if claim.Terminal() {
		return claim, nil
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(c.pollInterval)
	defer tick.Stop()

	for {
		status, err := c.claimStatus(ctx, claim.ID)
		if err == nil {
			switch status {
			case ClaimConfirmed, ClaimFailed:
				claim.Status = status
				return claim, nil
			}
		} else if errors.Is(err, common.ErrLedgerRejected) {
			// the node does not know the claim; nothing will ever
			// confirm it
			return claim, err
		}
		// unreachable polls keep trying until the deadline

		select {
		case <-ctx.Done():
			// stops the local wait only; the submitted transaction
			// stays with the ledger
			return claim, ctx.Err()
		case <-deadline.C:
			return claim, fmt.Errorf("%w: claim %s still pending after %s", common.ErrLedgerTimeout, claim.ID, timeout)
		case <-tick.C:
		}
	}
}

func (c *RPCClient) claimStatus(ctx context.Context, id string) (ClaimStatus, error) {
	var status string
	if err := c.rpc.CallContext(ctx, &status, methodClaimStatus, id); err != nil {
		return "", c.mapError(err)
	}
	return ClaimStatus(status), nil
}

// mapError folds transport errors into the unreachable sentinel and node
// application errors into the rejected sentinel so callers can tell a flaky
// network from a refused operation.
func (c *RPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return fmt.Errorf("%w: %v", common.ErrLedgerRejected, err)
	}
	return fmt.Errorf("%w: %v", common.ErrLedgerUnreachable, err)
}
