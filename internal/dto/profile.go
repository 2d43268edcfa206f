package dto

// Profile is returned unwrapped by GET /customer/profile.
type Profile struct {
	FullName              string    `json:"fullName"`
	Email                 string    `json:"email"`
	Mobile                string    `json:"mobile"`
	Addresses             []Address `json:"addresses"`
	ProcessingOrdersCount int       `json:"processingOrdersCount"`
	DeliveredOrdersCount  int       `json:"deliveredOrdersCount"`
}

// ProfileUpdate is the editable subset of a profile.
type ProfileUpdate struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}
