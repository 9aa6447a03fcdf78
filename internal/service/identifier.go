package service

// IdentifierKind selects which unique column identifies an account.
type IdentifierKind int

const (
	IdentifierEmail IdentifierKind = iota + 1 // Identified by email
	IdentifierPhone                           // Identified by phone
)

// Column is the users column holding the identifier.
func (k IdentifierKind) Column() string {
	switch k {
	case IdentifierEmail:
		return "email"
	case IdentifierPhone:
		return "phone"
	default:
		return ""
	}
}

func (k IdentifierKind) String() string {
	if c := k.Column(); c != "" {
		return c
	}
	return "unknown"
}

func (k IdentifierKind) valid() bool {
	return k == IdentifierEmail || k == IdentifierPhone
}
