package models

// PaymentMethod is the channel a recharge is paid through.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentOM   PaymentMethod = "om"
	PaymentMoMo PaymentMethod = "momo"
)

// PaymentMethods lists the accepted methods in display order.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentOM, PaymentMoMo}

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentOM, PaymentMoMo:
		return true
	}
	return false
}

// RequiresPayer reports whether a payer phone number must accompany the
// payment. Only the mobile-money channels need one.
func (p PaymentMethod) RequiresPayer() bool {
	return p == PaymentOM || p == PaymentMoMo
}

func (p PaymentMethod) Label() string {
	switch p {
	case PaymentCash:
		return "Cash"
	case PaymentOM:
		return "Orange Money"
	case PaymentMoMo:
		return "MTN Mobile Money"
	}
	return string(p)
}

type MeterType int

const (
	MeterPrepaid  MeterType = 1
	MeterPostpaid MeterType = 2
)

func (m MeterType) Valid() bool {
	return m == MeterPrepaid || m == MeterPostpaid
}

func (m MeterType) String() string {
	switch m {
	case MeterPrepaid:
		return "prepaid"
	case MeterPostpaid:
		return "postpaid"
	}
	return "unknown"
}

type UserRole string

type TransactionStatus string

const (
	StatusPending    TransactionStatus = "pending"
	StatusFailed     TransactionStatus = "failed"
	StatusSuccessful TransactionStatus = "successful"
	StatusExpired    TransactionStatus = "expired"
)

// RechargeStatusCode is the numeric status the API uses on recharge rows.
type RechargeStatusCode int

const (
	CodePending    RechargeStatusCode = 0
	CodeSuccessful RechargeStatusCode = 1
	CodeFailed     RechargeStatusCode = 2
	CodeExpired    RechargeStatusCode = 3
)

// StatusFromCode maps a numeric recharge status to its named form.
// Unknown codes are reported as pending.
func StatusFromCode(c RechargeStatusCode) TransactionStatus {
	switch c {
	case CodeSuccessful:
		return StatusSuccessful
	case CodeFailed:
		return StatusFailed
	case CodeExpired:
		return StatusExpired
	default:
		return StatusPending
	}
}
