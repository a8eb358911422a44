// Package models holds the wire representation of the recharge API:
// users and their meters, recharge rows, paginated envelopes and the
// request/response bodies the API client sends and receives.
package models

type Meter struct {
	ID         int64     `json:"id"`
	Type       MeterType `json:"type"`
	Number     int64     `json:"number"`
	Name       string    `json:"name"`
	AccountID  int64     `json:"account_id"`
	CustomerID int64     `json:"customer_id"`
}

type Company struct {
	ID        int64  `json:"id"`
	Name      string `json:"company_name"`
	Email     string `json:"company_email"`
	Phone     string `json:"company_phone"`
	Address   string `json:"company_address"`
	Status    int    `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	Reference string `json:"reference"`
}

// User is the authenticated identity held by the session.
type User struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Address         string     `json:"address"`
	Phone           string     `json:"phone"`
	Reference       *string    `json:"reference"`
	MeterType       *MeterType `json:"meter_type"`
	DistributorID   *int64     `json:"distributor_id"`
	Email           string     `json:"email"`
	EmailVerifiedAt *string    `json:"email_verified_at"`
	CreatedAt       string     `json:"created_at"`
	UpdatedAt       string     `json:"updated_at"`
	CompanyID       int64      `json:"company_id"`
	CanBeTrash      int        `json:"can_be_trash"`
	AccountID       string     `json:"accountId"`
	Role            UserRole   `json:"role,omitempty"`
	Meter           *Meter     `json:"meter,omitempty"`
	Meters          []Meter    `json:"meters,omitempty"`
	Company         *Company   `json:"company,omitempty"`
}

// AvailableMeters returns the meters a recharge can target. Older accounts
// only carry the single Meter field; it is used when Meters is empty.
func (u *User) AvailableMeters() []Meter {
	if u == nil {
		return nil
	}
	if len(u.Meters) > 0 {
		return u.Meters
	}
	if u.Meter != nil {
		return []Meter{*u.Meter}
	}
	return nil
}
