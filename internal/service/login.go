package service

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"account_service/internal/utils"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID string, roleID int) (string, error)
}

// SessionUser is the user projection returned by login.
type SessionUser struct {
	ID        string `json:"id"`
	RoleID    int    `json:"role_id"`
	SubRoleID int    `json:"sub_role_id"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Message string      `json:"message"`
	User    SessionUser `json:"user"`
	Modules []string    `json:"modules"`
	Token   string      `json:"token"`
}

type loginRow struct {
	ID         string  // Account id
	Password   string  // Stored bcrypt hash
	RoleID     int     // Role of the account
	SubRoleID  int     // Sub-role keying module access
	ModuleName *string // One granted module, nil when the sub-role has none
}

// loginQuery joins the user to its role and to every module granted to its sub-role, one row
// per module. column is one of the IdentifierKind columns.
func loginQuery(column string) string {
	return `
SELECT u.id, u.password, ur.role_id, ur.sub_role_id, m.module_name
FROM users u
JOIN user_role ur ON u.id = ur.user_id
LEFT JOIN role_module rm ON rm.sub_role_id = ur.sub_role_id
LEFT JOIN modules m ON m.id = rm.module_id
WHERE u.` + column + ` = ?`
}

var loginQueries = map[IdentifierKind]string{
	IdentifierEmail: loginQuery(IdentifierEmail.Column()), // Lookup by email
	IdentifierPhone: loginQuery(IdentifierPhone.Column()), // Lookup by phone
}

// dummyHash is compared against when no account matches so that a miss costs as much as a
// wrong password.
var dummyHash = sync.OnceValue(func() string {
	hash, err := utils.HashPassword("account-service-timing-equalizer")
	if err != nil {
		return "" // Comparison against "" fails fast, logins still reject
	}
	return hash
})

// LoginService verifies credentials and issues session tokens.
type LoginService struct {
	db     *gorm.DB    // Database holding users, roles and modules
	issuer TokenIssuer // Session token signer
	opts   Options     // Timeouts
}

func NewLoginService(db *gorm.DB, issuer TokenIssuer, opts Options) *LoginService {
	return &LoginService{db: db, issuer: issuer, opts: opts}
}

func (s *LoginService) LoginByEmail(ctx context.Context, email, password string) (*LoginResult, error) {
	return s.Login(ctx, IdentifierEmail, email, password)
}

func (s *LoginService) LoginByPhone(ctx context.Context, phone, password string) (*LoginResult, error) {
	return s.Login(ctx, IdentifierPhone, phone, password)
}

// Login authenticates identifier and password. Unknown identifiers and wrong passwords both
// return ErrInvalidCredentials.
func (s *LoginService) Login(ctx context.Context, kind IdentifierKind, identifier, password string) (*LoginResult, error) {
	query, ok := loginQueries[kind]            // Query for the identifier column
	identifier = strings.TrimSpace(identifier) // Ignore surrounding whitespace
	if !ok || identifier == "" {
		return nil, ErrMissingIdentifier
	}

	ctx, cancel := s.opts.withTimeout(ctx) // Bound the lookup
	defer cancel()

	var rows []loginRow // One row per granted module
	if err := s.db.WithContext(ctx).Raw(query, identifier).Scan(&rows).Error; err != nil {
		logrus.WithFields(logrus.Fields{
			"channel": kind.String(),
			"error":   err.Error(),
		}).Error("Login lookup failed")
		return nil, errors.Wrap(err, "login lookup")
	}

	if len(rows) == 0 {
		utils.CheckPassword(password, dummyHash()) // Spend the same bcrypt time as a real miss
		return nil, ErrInvalidCredentials
	}
	row := rows[0] // Account columns repeat on every row
	if !utils.CheckPassword(password, row.Password) {
		return nil, ErrInvalidCredentials // Wrong password looks like an unknown account
	}

	token, err := s.issuer.Issue(row.ID, row.RoleID) // Sign the session token
	if err != nil || token == "" {
		logrus.WithFields(logrus.Fields{
			"user_id": row.ID,
			"error":   errorString(err),
		}).Error("Token issuance failed")
		return nil, ErrTokenIssue
	}

	logrus.WithFields(logrus.Fields{
		"user_id": row.ID,
		"channel": kind.String(),
	}).Info("User logged in")
	return &LoginResult{
		Message: MsgLoggedIn,
		User: SessionUser{
			ID:        row.ID,
			RoleID:    row.RoleID,
			SubRoleID: row.SubRoleID,
		},
		Modules: collectModules(rows),
		Token:   token,
	}, nil
}

// collectModules gathers the distinct module names of the login rows, sorted, empty when none
func collectModules(rows []loginRow) []string {
	modules := []string{} // Never nil so the response carries []
	for _, r := range rows {
		if r.ModuleName == nil || slices.Contains(modules, *r.ModuleName) {
			continue // No grant or already listed
		}
		modules = append(modules, *r.ModuleName)
	}
	sort.Strings(modules)
	return modules
}

func errorString(err error) string {
	if err == nil {
		return "empty token"
	}
	return err.Error()
}
