package services

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/nutrisync/nutrisync-bot/internal/config"
	"github.com/nutrisync/nutrisync-bot/internal/domain"
	apperrors "github.com/nutrisync/nutrisync-bot/internal/errors"
	"github.com/nutrisync/nutrisync-bot/internal/logger"
)

// PaymentService routes checkout to the configured gateway and verifies
// transaction references. Verification is the original demo rule: any
// reference of the minimum length passes. A real gateway integration is an
// explicit non-goal; the gate's Upgrade call on verified success is not.
type PaymentService struct {
	cfg    config.PaymentConfig
	ledger domain.PaymentLedger
}

// NewPaymentService creates the payment router
func NewPaymentService(cfg config.PaymentConfig, ledger domain.PaymentLedger) *PaymentService {
	return &PaymentService{cfg: cfg, ledger: ledger}
}

// ProPriceUSD returns the PRO subscription price
func (s *PaymentService) ProPriceUSD() float64 {
	return s.cfg.ProPriceUSD
}

// Initiate returns the checkout reference for the chosen channel: the
// PayPal.me link for global checkout, or a UPI deep link with the amount
// converted to INR for the regional flow.
func (s *PaymentService) Initiate(ctx context.Context, ownerID string, channel domain.PaymentChannel, amountUSD float64) (string, error) {
	var reference string
	switch channel {
	case domain.ChannelPayPal:
		reference = s.cfg.PayPalLink
	case domain.ChannelUPI:
		amountINR := int(math.Round(amountUSD * s.cfg.USDToINR))
		reference = fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%d&cu=INR&tn=%s",
			s.cfg.UPIAddress,
			url.QueryEscape("NutriSync Pro"),
			amountINR,
			url.QueryEscape("NutriSync Pro Subscription"),
		)
	default:
		return "", apperrors.NewInputError(fmt.Sprintf("unknown payment channel %q", channel))
	}

	s.record(ctx, &domain.PaymentRecord{
		OwnerID:   ownerID,
		Channel:   channel,
		AmountUSD: amountUSD,
		Reference: reference,
	})

	logger.Info("Payment initiated", "owner_id", ownerID, "channel", channel, "amount_usd", amountUSD)
	return reference, nil
}

// Verify audits a transaction reference. Too-short references are rejected
// outright; everything else verifies under the demo rule.
func (s *PaymentService) Verify(ctx context.Context, ownerID string, channel domain.PaymentChannel, txID string) (bool, error) {
	txID = strings.TrimSpace(txID)
	verified := len(txID) >= s.cfg.MinReferenceLen

	s.record(ctx, &domain.PaymentRecord{
		OwnerID:   ownerID,
		Channel:   channel,
		AmountUSD: s.cfg.ProPriceUSD,
		TxID:      txID,
		Verified:  verified,
	})

	if !verified {
		logger.Warn("Transaction rejected", "owner_id", ownerID, "tx_id_len", len(txID))
		return false, nil
	}

	logger.Info("Transaction verified", "owner_id", ownerID, "channel", channel)
	return true, nil
}

func (s *PaymentService) record(ctx context.Context, rec *domain.PaymentRecord) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.Record(ctx, rec); err != nil {
		logger.Error("Payment audit write failed", "owner_id", rec.OwnerID, "error", err)
	}
}
