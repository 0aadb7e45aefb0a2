package log_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/paybutton/pkg/api"
	"github.com/kode4food/paybutton/pkg/log"
)

type errStub string

func TestPaymentID(t *testing.T) {
	attr := log.PaymentID(api.PaymentID("pay-123"))
	assertAttrEqual(t, attr, "payment_id", "pay-123")
}

func TestOrderID(t *testing.T) {
	attr := log.OrderID(api.OrderID("ORDER-1"))
	assertAttrEqual(t, attr, "order_id", "ORDER-1")
}

func TestFundingSource(t *testing.T) {
	attr := log.FundingSource(api.FundingCredit)
	assertAttrEqual(t, attr, "funding_source", "credit")
}

func TestBuyerIntent(t *testing.T) {
	attr := log.BuyerIntent(api.BuyerIntentPayDifferentAccount)
	assertAttrEqual(t, attr, "buyer_intent", "pay_with_different_account")
}

func TestFlowAndCode(t *testing.T) {
	assertAttrEqual(t, log.Flow("wallet_pwb"), "payment_flow", "wallet_pwb")
	assertAttrEqual(t, log.Code("web_checkout_fallback"),
		"code", "web_checkout_fallback")
}

func TestError(t *testing.T) {
	attr := log.Error(nil)
	assertAttrEqual(t, attr, "error", "")

	attr = log.Error(errStub("boom"))
	assertAttrEqual(t, attr, "error", "boom")
}

func TestErrorString(t *testing.T) {
	attr := log.ErrorString("badness")
	assertAttrEqual(t, attr, "error", "badness")
}

func (e errStub) Error() string { return string(e) }

func assertAttrEqual(t *testing.T, attr slog.Attr, key, value string) {
	t.Helper()
	assert.Equal(t, key, attr.Key)
	assert.Equal(t, value, attr.Value.String())
}
