package service

import (
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Validation errors.
var (
	ErrMissingFields     = errors.New("missing required fields")
	ErrMissingIdentifier = errors.New("email or phone is required")
	ErrInvalidRole       = errors.New("invalid user role")
)

// ErrAlreadyExists replaces unique-key violations on email, phone or id.
var ErrAlreadyExists = errors.New("account already exists")

// Database errors raised when a statement touches an unexpected number of rows.
var (
	ErrCreateFailed     = errors.New("failed to create user")
	ErrRoleAssignFailed = errors.New("failed to assign role")
	ErrUpdateFailed     = errors.New("failed to update user")
	ErrRoleUpdateFailed = errors.New("failed to update user role")
	ErrFetchFailed      = errors.New("failed to fetch user data")
	ErrAccountNotFound  = errors.New("account not found")
)

// ErrInvalidCredentials covers unknown identifiers and wrong passwords alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrTokenIssue is returned when credentials matched but no token could be signed.
var ErrTokenIssue = errors.New("token issue")

// Kind groups errors by how callers should react to them.
type Kind int

const (
	KindDatabase   Kind = iota // Statement or connection failure
	KindValidation             // Bad or missing input
	KindDuplicate              // Unique key violation
	KindAuth                   // Credentials rejected
	KindToken                  // Token could not be signed
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicate:
		return "duplicate"
	case KindAuth:
		return "auth"
	case KindToken:
		return "token"
	default:
		return "database"
	}
}

// ErrorKind classifies err. Anything unrecognised is a database error.
func ErrorKind(err error) Kind {
	switch {
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrMissingIdentifier), errors.Is(err, ErrInvalidRole):
		return KindValidation
	case errors.Is(err, ErrAlreadyExists), isDuplicateKey(err):
		return KindDuplicate
	case errors.Is(err, ErrInvalidCredentials):
		return KindAuth
	case errors.Is(err, ErrTokenIssue):
		return KindToken
	default:
		return KindDatabase
	}
}

// classifyWriteError maps unique-key violations to ErrAlreadyExists and leaves other errors untouched.
func classifyWriteError(err error) error {
	if isDuplicateKey(err) {
		return ErrAlreadyExists
	}
	return err
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true // ER_DUP_ENTRY from an untranslated connection
	}
	msg := strings.ToLower(err.Error()) // Last resort for wrapped driver messages
	return strings.Contains(msg, "duplicate entry") || strings.Contains(msg, "unique constraint failed")
}
