package payment

import "fmt"

// Merchant holds the fixed parts of every payment sheet.
type Merchant struct {
	Key            string
	Currency       string
	Name           string
	Image          string
	ThemeColor     string
	PrefillEmail   string
	PrefillContact string
}

// DefaultMerchant matches the mobile app's payment sheet.
func DefaultMerchant(key string) Merchant {
	return Merchant{
		Key:            key,
		Currency:       "INR",
		Name:           "Food app",
		ThemeColor:     "#ff6b6b",
		PrefillEmail:   "customer@email.com",
		PrefillContact: "9199999999",
	}
}

// OptionsFor builds the sheet for one backend order.
func (m Merchant) OptionsFor(orderID, gatewayOrderID string, total float64, customerName string) Options {
	return Options{
		Key:         m.Key,
		Amount:      AmountInSubunits(total),
		Currency:    m.Currency,
		OrderID:     gatewayOrderID,
		Description: fmt.Sprintf("Order #%s", orderID),
		Name:        m.Name,
		Image:       m.Image,
		Prefill: Prefill{
			Email:   m.PrefillEmail,
			Contact: m.PrefillContact,
			Name:    customerName,
		},
		ThemeColor: m.ThemeColor,
	}
}
