package dto

import "encoding/json"

// LoginRequest starts an OTP login for a mobile number.
type LoginRequest struct {
	MobileNumber string `json:"mobileNumber"`
}

// LoginResponse is returned once an OTP has been issued.
type LoginResponse struct {
	Success      bool   `json:"success,omitempty"`
	Message      string `json:"message"`
	MobileNumber string `json:"mobileNumber,omitempty"`
}

// VerifyRequest exchanges an OTP for a token.
type VerifyRequest struct {
	MobileNumber string `json:"mobileNumber"`
	OTP          string `json:"otp"`
}

// User is the customer record persisted alongside the token.
type User struct {
	CustomerID   ID     `json:"customerId"`
	MobileNumber string `json:"mobileNumber"`
	FullName     string `json:"fullName,omitempty"`
	Email        string `json:"email,omitempty"`

	// Extra holds every other field the backend sent, so it survives a
	// persist and restore.
	Extra map[string]json.RawMessage `json:"-"`
}

var userFields = map[string]bool{
	"customerId":   true,
	"mobileNumber": true,
	"fullName":     true,
	"email":        true,
}

func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	base, err := json.Marshal(plain(u))
	if err != nil || len(u.Extra) == 0 {
		return base, err
	}

	var known map[string]json.RawMessage
	if err := json.Unmarshal(base, &known); err != nil {
		return nil, err
	}
	merged := make(map[string]json.RawMessage, len(u.Extra)+len(known))
	for k, v := range u.Extra {
		merged[k] = v
	}
	for k, v := range known {
		merged[k] = v
	}
	return json.Marshal(merged)
}

func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for k := range all {
		if userFields[k] {
			delete(all, k)
		}
	}
	p.Extra = nil
	if len(all) > 0 {
		p.Extra = all
	}
	*u = User(p)
	return nil
}

// Clone returns a copy that shares nothing with u.
func (u User) Clone() User {
	if u.Extra != nil {
		extra := make(map[string]json.RawMessage, len(u.Extra))
		for k, v := range u.Extra {
			extra[k] = append(json.RawMessage(nil), v...)
		}
		u.Extra = extra
	}
	return u
}

// VerifyResponse is flat: the token sits next to the user fields.
type VerifyResponse struct {
	Token string `json:"token"`
	User
}

func (r VerifyResponse) MarshalJSON() ([]byte, error) {
	u := r.User.Clone()
	token, err := json.Marshal(r.Token)
	if err != nil {
		return nil, err
	}
	if u.Extra == nil {
		u.Extra = map[string]json.RawMessage{}
	}
	u.Extra["token"] = token
	return u.MarshalJSON()
}

func (r *VerifyResponse) UnmarshalJSON(b []byte) error {
	var t struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	if err := r.User.UnmarshalJSON(b); err != nil {
		return err
	}
	r.Token = t.Token
	delete(r.User.Extra, "token")
	if len(r.User.Extra) == 0 {
		r.User.Extra = nil
	}
	return nil
}
