package models

type LoginCredentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterData struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	Code      string `json:"code" validate:"required"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	MeterType int    `json:"meter_type,omitempty"`
}

// ProfileUpdate carries only the fields being changed; nil means untouched.
type ProfileUpdate struct {
	ID        *int64  `json:"id,omitempty"`
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
	MeterType *int    `json:"meter_type,omitempty"`
}

func (p ProfileUpdate) Empty() bool {
	return p.ID == nil && p.Name == nil && p.Email == nil &&
		p.Phone == nil && p.Address == nil && p.MeterType == nil
}

type RechargeRequest struct {
	UserID           int64         `json:"user_id" validate:"required"`
	Meter            int64         `json:"meter" validate:"required"`
	Amount           float64       `json:"amount" validate:"required,gt=0"`
	PaymentMethod    PaymentMethod `json:"payment_method" validate:"required,oneof=cash om momo"`
	SubscriberMsisdn string        `json:"subscriberMsisdn,omitempty" validate:"required_unless=PaymentMethod cash"`
}

type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type RegisterResponse struct {
	User   User     `json:"user"`
	Token  string   `json:"token,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

type ProfileResponse struct {
	User User `json:"user"`
}

type RechargeResponse struct {
	Status TransactionStatus `json:"status"`
}

type MeResponse struct {
	User User `json:"user"`
}
