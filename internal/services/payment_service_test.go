package services

import (
	"context"
	"sync"
	"testing"

	"github.com/nutrisync/nutrisync-bot/internal/config"
	"github.com/nutrisync/nutrisync-bot/internal/domain"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	mu      sync.Mutex
	records []domain.PaymentRecord
}

func (f *fakeLedger) Record(ctx context.Context, rec *domain.PaymentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, *rec)
	return nil
}

func paymentConfig() config.PaymentConfig {
	return config.PaymentConfig{
		PayPalID:        "billing@nutrisync.example",
		PayPalLink:      "https://paypal.me/nutrisyncpro",
		UPIAddress:      "nutrisync@paytm",
		ProPriceUSD:     19.99,
		USDToINR:        83.5,
		MinReferenceLen: 6,
	}
}

func TestInitiate_PayPal(t *testing.T) {
	ledger := &fakeLedger{}
	svc := NewPaymentService(paymentConfig(), ledger)

	ref, err := svc.Initiate(context.Background(), "u1", domain.ChannelPayPal, svc.ProPriceUSD())
	require.NoError(t, err)
	require.Equal(t, "https://paypal.me/nutrisyncpro", ref)

	require.Len(t, ledger.records, 1)
	require.Equal(t, domain.ChannelPayPal, ledger.records[0].Channel)
	require.Equal(t, "u1", ledger.records[0].OwnerID)
}

func TestInitiate_UPIConvertsToINR(t *testing.T) {
	svc := NewPaymentService(paymentConfig(), &fakeLedger{})

	ref, err := svc.Initiate(context.Background(), "u1", domain.ChannelUPI, 19.99)
	require.NoError(t, err)
	// 19.99 USD * 83.5 = 1669.165, rounded to whole rupees.
	require.Contains(t, ref, "upi://pay?pa=nutrisync@paytm")
	require.Contains(t, ref, "am=1669")
	require.Contains(t, ref, "cu=INR")
}

func TestInitiate_UnknownChannel(t *testing.T) {
	svc := NewPaymentService(paymentConfig(), &fakeLedger{})
	_, err := svc.Initiate(context.Background(), "u1", domain.PaymentChannel("CRYPTO"), 19.99)
	require.Error(t, err)
}

func TestVerify(t *testing.T) {
	ledger := &fakeLedger{}
	svc := NewPaymentService(paymentConfig(), ledger)
	ctx := context.Background()

	tests := []struct {
		name     string
		txID     string
		verified bool
	}{
		{"long enough", "TX123456", true},
		{"exactly minimum", "ABC123", true},
		{"whitespace trimmed", "  TX123456  ", true},
		{"too short", "12345", false},
		{"empty", "", false},
		{"whitespace only", "     ", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := svc.Verify(ctx, "u1", domain.ChannelUPI, tc.txID)
			require.NoError(t, err)
			require.Equal(t, tc.verified, ok)
		})
	}

	require.Len(t, ledger.records, len(tests), "every attempt is audited")
}

func TestPaymentService_NilLedger(t *testing.T) {
	svc := NewPaymentService(paymentConfig(), nil)

	_, err := svc.Initiate(context.Background(), "u1", domain.ChannelPayPal, 19.99)
	require.NoError(t, err)

	ok, err := svc.Verify(context.Background(), "u1", domain.ChannelPayPal, "TX123456")
	require.NoError(t, err)
	require.True(t, ok)
}
