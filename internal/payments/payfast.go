package payments

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// PayFast opaque round-trip fields. The gateway echoes these back
// verbatim on its ITN callback; reconciliation depends on them.
const (
	fieldOrderID        = "custom_str1"
	fieldEventTitle     = "custom_str2"
	fieldTicketTypeName = "custom_str3"
	fieldTicketTypeID   = "custom_str4"
	fieldQuantity       = "custom_int1"
)

// PayFastConfig identifies the merchant and the redirect endpoints
// embedded in every checkout link.
type PayFastConfig struct {
	MerchantID  string
	MerchantKey string
	BaseURL     string
	ReturnURL   string
	CancelURL   string
	NotifyURL   string
}

// LinkParams is everything a checkout link carries.
type LinkParams struct {
	Amount         decimal.Decimal
	ItemName       string
	OrderID        string
	EventTitle     string
	TicketTypeName string
	TicketTypeID   string
	Quantity       int
}

// BuildCheckoutLink constructs the hosted-checkout redirect URL. An
// empty OrderID produces a direct link with no durable order reference
// (the degraded mode; reconciliation cannot materialize tickets for it).
func (c PayFastConfig) BuildCheckoutLink(p LinkParams) string {
	values := url.Values{}
	values.Set("merchant_id", c.MerchantID)
	values.Set("merchant_key", c.MerchantKey)
	values.Set("amount", p.Amount.StringFixed(2))
	values.Set("item_name", p.ItemName)
	values.Set("return_url", c.ReturnURL)
	values.Set("cancel_url", c.CancelURL)
	values.Set("notify_url", c.NotifyURL)
	if p.OrderID != "" {
		values.Set(fieldOrderID, p.OrderID)
	}
	values.Set(fieldEventTitle, p.EventTitle)
	values.Set(fieldTicketTypeName, p.TicketTypeName)
	if p.TicketTypeID != "" {
		values.Set(fieldTicketTypeID, p.TicketTypeID)
	}
	values.Set(fieldQuantity, strconv.Itoa(p.Quantity))

	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = "https://sandbox.payfast.co.za"
	}
	return fmt.Sprintf("%s/eng/process?%s", base, values.Encode())
}
