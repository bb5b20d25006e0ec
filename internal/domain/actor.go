package domain

import "time"

// Role is carried in the session credential and drives authorization.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// ActorKind selects the actor table and the OTP policy.
type ActorKind string

const (
	KindAdmin    ActorKind = "admin"
	KindCustomer ActorKind = "customer"
)

// Role returns the credential role for actors of this kind.
func (k ActorKind) Role() string {
	if k == KindAdmin {
		return RoleAdmin
	}
	return RoleCustomer
}

func (k ActorKind) Valid() bool { return k == KindAdmin || k == KindCustomer }

type Actor struct {
	ID          string    `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Identity is what a validated session credential asserts about its bearer.
type Identity struct {
	SubjectID string
	Role      string
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// CanAccess reports whether the bearer is an admin or the owner of the resource.
func (i Identity) CanAccess(ownerID string) bool {
	return i.IsAdmin() || i.SubjectID == ownerID
}

// Session is returned to the client after a successful OTP verification.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Actor     *Actor    `json:"actor"`
}

type RegisterRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,numeric,len=10"`
	Name        string `json:"name" validate:"required,max=100"`
	SecretPass  string `json:"secretPass,omitempty"`
}

type LoginRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,numeric,len=10"`
}

type VerifyOTPRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,numeric,len=10"`
	OTP         string `json:"otp" validate:"required,numeric,len=6"`
}

type UpdateActorRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=100"`
}
