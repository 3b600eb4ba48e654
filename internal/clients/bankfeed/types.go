package bankfeed

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Date is a calendar date without a time component, wire format "2006-01-02".
type Date struct {
	time.Time
}

// UnmarshalJSON parses the feed's date-only format.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("invalid feed date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// MarshalJSON renders the date-only format.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

// Location is the merchant location attached to a feed transaction.
type Location struct {
	Address string   `json:"address"`
	City    string   `json:"city"`
	Region  string   `json:"region"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

// String renders a compact human-readable place name.
func (l Location) String() string {
	parts := []string{}
	for _, p := range []string{l.Address, l.City, l.Region} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Category is the feed's classification of a transaction. Detailed is the
// specific code, e.g. FOOD_AND_DRINK_COFFEE.
type Category struct {
	Primary  string `json:"primary"`
	Detailed string `json:"detailed"`
}

// Transaction is one record from the feed. Amount follows the provider's sign
// convention: positive for money leaving the account, negative for money
// coming in.
type Transaction struct {
	TransactionID   string          `json:"transaction_id"`
	AccountID       string          `json:"account_id"`
	Amount          decimal.Decimal `json:"amount"`
	ISOCurrencyCode string          `json:"iso_currency_code"`
	Date            Date            `json:"date"`
	Name            string          `json:"name"`
	MerchantName    string          `json:"merchant_name"`
	Pending         bool            `json:"pending"`
	Location        Location        `json:"location"`
	Category        Category        `json:"personal_finance_category"`
}

// RemovedTransaction identifies a record withdrawn by the feed.
type RemovedTransaction struct {
	TransactionID string `json:"transaction_id"`
}

// SyncRequest is the body of a transactions/sync call.
type SyncRequest struct {
	ClientID    string  `json:"client_id"`
	Secret      string  `json:"secret"`
	AccessToken string  `json:"access_token"`
	Cursor      *string `json:"cursor,omitempty"`
	Count       int     `json:"count,omitempty"`
}

// SyncResponse is one page of the transactions/sync stream.
type SyncResponse struct {
	Added      []Transaction        `json:"added"`
	Modified   []Transaction        `json:"modified"`
	Removed    []RemovedTransaction `json:"removed"`
	HasMore    bool                 `json:"has_more"`
	NextCursor string               `json:"next_cursor"`
}

// ExchangeRequest swaps a one-time public token for item credentials.
type ExchangeRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	PublicToken string `json:"public_token"`
}

// ExchangeResponse carries the durable item credentials.
type ExchangeResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
}

// AccountBalances is the provider's view of an account's balances.
type AccountBalances struct {
	Available       *decimal.Decimal `json:"available"`
	Current         decimal.Decimal  `json:"current"`
	ISOCurrencyCode string           `json:"iso_currency_code"`
}

// FeedAccount is one account of a linked item.
type FeedAccount struct {
	AccountID    string          `json:"account_id"`
	Name         string          `json:"name"`
	OfficialName string          `json:"official_name"`
	Mask         string          `json:"mask"`
	Type         string          `json:"type"`
	Subtype      string          `json:"subtype"`
	Balances     AccountBalances `json:"balances"`
}

// AccountsRequest fetches the accounts of an item.
type AccountsRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	AccessToken string `json:"access_token"`
}

// AccountsResponse lists the item's accounts.
type AccountsResponse struct {
	Accounts []FeedAccount `json:"accounts"`
	Item     struct {
		ItemID string `json:"item_id"`
	} `json:"item"`
}

type apiError struct {
	ErrorType    string `json:"error_type"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}
