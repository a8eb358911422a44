package models

type Transaction struct {
	ID         int64             `json:"id"`
	CustTel    string            `json:"cust_tel"`
	Message    *string           `json:"message"`
	PayToken   string            `json:"pay_token"`
	RechargeID int64             `json:"recharge_id"`
	Status     TransactionStatus `json:"status"`
	TxnID      string            `json:"txnid"`
	TxnMode    *string           `json:"txnmode"`
	CreatedAt  string            `json:"created_at"`
	UpdatedAt  string            `json:"updated_at"`
}

// Recharge is a read-only row of the user's recharge history.
type Recharge struct {
	ID              int64              `json:"id"`
	UserID          int64              `json:"user_id"`
	MeterID         int64              `json:"meter_id"`
	CompanyID       int64              `json:"company_id"`
	TotalPaid       float64            `json:"total_paid"`
	PaymentMethod   PaymentMethod      `json:"payment_method"`
	Status          RechargeStatusCode `json:"status"`
	PriceUnit       string             `json:"price_unit"`
	Rate            float64            `json:"rate"`
	CreatedAt       string             `json:"created_at"`
	UpdatedAt       string             `json:"updated_at"`
	Token           *string            `json:"token"`
	TotalUnit       *float64           `json:"total_unit"`
	PriceCategories *string            `json:"price_categories"`
	Unit            *string            `json:"unit"`
	PaymentID       *int64             `json:"payment_id"`
	Transaction     *Transaction       `json:"transaction"`
}

type PaginationLink struct {
	URL    *string `json:"url"`
	Label  string  `json:"label"`
	Active bool    `json:"active"`
}

// Page is the paginated envelope returned by list endpoints.
type Page[T any] struct {
	CurrentPage  int              `json:"current_page"`
	Data         []T              `json:"data"`
	FirstPageURL string           `json:"first_page_url"`
	From         int              `json:"from"`
	LastPage     int              `json:"last_page"`
	LastPageURL  string           `json:"last_page_url"`
	Links        []PaginationLink `json:"links"`
	NextPageURL  *string          `json:"next_page_url"`
	Path         string           `json:"path"`
	PerPage      int              `json:"per_page"`
	PrevPageURL  *string          `json:"prev_page_url"`
	To           int              `json:"to"`
	Total        int              `json:"total"`
}

func (p *Page[T]) HasNext() bool { return p.CurrentPage < p.LastPage }

func (p *Page[T]) HasPrev() bool { return p.CurrentPage > 1 }
