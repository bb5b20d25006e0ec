package domain

import "time"

// Purpose scopes an OTP record and its rate-limit counter.
type Purpose string

const (
	PurposeAdminRegister    Purpose = "admin-register"
	PurposeAdminLogin       Purpose = "admin-login"
	PurposeCustomerRegister Purpose = "customer-register"
	PurposeCustomerLogin    Purpose = "customer-login"
)

// RegisterPurpose and LoginPurpose map an actor kind to its OTP purposes.
func RegisterPurpose(k ActorKind) Purpose {
	if k == KindAdmin {
		return PurposeAdminRegister
	}
	return PurposeCustomerRegister
}

func LoginPurpose(k ActorKind) Purpose {
	if k == KindAdmin {
		return PurposeAdminLogin
	}
	return PurposeCustomerLogin
}

func (p Purpose) Kind() ActorKind {
	switch p {
	case PurposeAdminRegister, PurposeAdminLogin:
		return KindAdmin
	default:
		return KindCustomer
	}
}

// Issuance confirms that a code was generated and dispatched. It never carries the code.
type Issuance struct {
	Purpose   Purpose   `json:"purpose"`
	ExpiresAt time.Time `json:"expires_at"`
}
