package service

import (
	"context"
	"strings"
	"time"

	"account_service/internal/domain"
	"account_service/internal/utils"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Result messages.
const (
	MsgAccountCreated  = "User created and role assigned successfully"
	MsgAccountUpdated  = "User updated successfully"
	MsgNothingToUpdate = "No valid fields to update"
	MsgLoggedIn        = "User logged in successfully"
)

var (
	userUpdateColumns = []string{"email", "password", "phone"} // Updatable users columns, in statement order
	roleUpdateColumns = []string{"role_id", "sub_role_id"}     // Updatable user_role columns
)

// Options tunes the services.
type Options struct {
	// QueryTimeout bounds one operation end to end. Zero disables the deadline.
	QueryTimeout time.Duration
	// RoleOnUpdate validates role ids supplied to Update. Nil accepts any role.
	RoleOnUpdate func(roleID int) bool
}

func (o Options) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.QueryTimeout)
}

// AccountView is the joined user and role projection returned to clients. It never carries
// the password hash.
type AccountView struct {
	ID        string  `json:"id"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	RoleID    int     `json:"role_id"`
	SubRoleID int     `json:"sub_role_id"`
}

// AccountPage is one page of AccountView rows.
type AccountPage struct {
	Accounts   []AccountView `json:"accounts"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"total_pages"`
}

// CreateAccountInput carries a new account. ID is generated by the caller.
type CreateAccountInput struct {
	ID        string // Account id, 36 characters
	Email     string // Email, required for email accounts
	Phone     string // Phone, required for phone accounts
	Password  string // Cleartext password
	RoleID    int    // Role, positive
	SubRoleID int    // Sub-role, positive
}

func (in CreateAccountInput) identifier(kind IdentifierKind) string {
	if kind == IdentifierPhone {
		return in.Phone
	}
	return in.Email
}

func (in CreateAccountInput) validate(kind IdentifierKind) error {
	if !kind.valid() {
		return ErrMissingIdentifier
	}
	if in.ID == "" || in.Password == "" || strings.TrimSpace(in.identifier(kind)) == "" ||
		in.RoleID <= 0 || in.SubRoleID <= 0 {
		return ErrMissingFields
	}
	return nil
}

// CreateResult is returned by a successful create.
type CreateResult struct {
	Message string       `json:"message"`
	Account *AccountView `json:"user"`
}

// UpdateAccountInput carries a partial update. Blank strings and nil role ids are left alone.
type UpdateAccountInput struct {
	ID        string // Account to update
	Email     string // New email
	Password  string // New cleartext password
	Phone     string // New phone
	RoleID    *int   // New role
	SubRoleID *int   // New sub-role
}

// AccountService owns the account write path.
type AccountService struct {
	db   *gorm.DB // Database holding users and user_role
	opts Options  // Timeouts and update role validation
}

func NewAccountService(db *gorm.DB, opts Options) *AccountService {
	return &AccountService{db: db, opts: opts}
}

// CreateByEmail creates an account identified by email. Phone is stored when supplied.
func (s *AccountService) CreateByEmail(ctx context.Context, in CreateAccountInput) (*CreateResult, error) {
	return s.Create(ctx, IdentifierEmail, in)
}

// CreateByPhone creates an account identified by phone. Email is stored when supplied.
func (s *AccountService) CreateByPhone(ctx context.Context, in CreateAccountInput) (*CreateResult, error) {
	return s.Create(ctx, IdentifierPhone, in)
}

// Create hashes the password and inserts the user and its role assignment in one
// transaction, then reads the account back.
func (s *AccountService) Create(ctx context.Context, kind IdentifierKind, in CreateAccountInput) (*CreateResult, error) {
	if err := in.validate(kind); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password) // Hash the password before storing
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user := domain.User{ID: in.ID, Password: hash} // New users row
	if email := strings.TrimSpace(in.Email); email != "" {
		user.Email = &email // Stored whenever supplied, NULL otherwise
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		user.Phone = &phone // Stored whenever supplied, NULL otherwise
	}
	role := domain.UserRole{UserID: in.ID, RoleID: in.RoleID, SubRoleID: in.SubRoleID} // Role assignment row

	ctx, cancel := s.opts.withTimeout(ctx) // Bound the whole create
	defer cancel()

	// Insert user and role atomically, any failure rolls back both
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Create(&user) // Insert the user
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrCreateFailed // Nothing inserted
		}
		res = tx.Create(&role) // Insert the role assignment
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrRoleAssignFailed // Nothing inserted
		}
		return nil // Commit
	})
	if err != nil {
		err = classifyWriteError(err) // Unique violations become ErrAlreadyExists
		logrus.WithFields(logrus.Fields{
			"user_id": in.ID,
			"channel": kind.String(),
			"kind":    ErrorKind(err).String(),
			"error":   err.Error(),
		}).Error("Account creation failed")
		return nil, err
	}

	view, err := s.fetch(ctx, in.ID) // Read the committed account back
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": in.ID,
			"error":   err.Error(),
		}).Error("Account created but read-back failed")
		return nil, ErrFetchFailed
	}

	logrus.WithFields(logrus.Fields{
		"user_id":     in.ID,
		"channel":     kind.String(),
		"role_id":     in.RoleID,
		"sub_role_id": in.SubRoleID,
	}).Info("Account created")
	return &CreateResult{Message: MsgAccountCreated, Account: view}, nil
}

// Update applies a partial update to the user row and, when role ids are supplied, to its
// role row. Both statements share one transaction and each must touch exactly one row.
func (s *AccountService) Update(ctx context.Context, in UpdateAccountInput) (string, error) {
	if strings.TrimSpace(in.ID) == "" {
		return "", ErrMissingFields
	}

	users := newUpdateBuilder("users", "id", userUpdateColumns...)          // users SET clause
	roles := newUpdateBuilder("user_role", "user_id", roleUpdateColumns...) // user_role SET clause

	if in.RoleID != nil {
		if s.opts.RoleOnUpdate != nil && !s.opts.RoleOnUpdate(*in.RoleID) {
			return "", ErrInvalidRole // Role validation on update is opt-in
		}
		if err := roles.Set("role_id", *in.RoleID); err != nil {
			return "", err
		}
	}
	if in.SubRoleID != nil {
		if err := roles.Set("sub_role_id", *in.SubRoleID); err != nil {
			return "", err
		}
	}
	if email := strings.TrimSpace(in.Email); email != "" {
		if err := users.Set("email", email); err != nil {
			return "", err
		}
	}
	if strings.TrimSpace(in.Password) != "" {
		hash, err := utils.HashPassword(in.Password) // Never store the cleartext
		if err != nil {
			return "", errors.Wrap(err, "hash password")
		}
		if err := users.Set("password", hash); err != nil {
			return "", err
		}
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		if err := users.Set("phone", phone); err != nil {
			return "", err
		}
	}

	if users.Empty() && roles.Empty() {
		return MsgNothingToUpdate, nil // Success without touching the database
	}

	ctx, cancel := s.opts.withTimeout(ctx) // Bound the whole update
	defer cancel()

	// Both statements commit together or not at all
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !users.Empty() {
			if err := execSingleRow(tx, users, in.ID, ErrUpdateFailed); err != nil {
				return err
			}
		}
		if !roles.Empty() {
			if err := execSingleRow(tx, roles, in.ID, ErrRoleUpdateFailed); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		err = classifyWriteError(err)
		logrus.WithFields(logrus.Fields{
			"user_id": in.ID,
			"kind":    ErrorKind(err).String(),
			"error":   err.Error(),
		}).Error("Account update failed")
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": in.ID,
		"columns": append(users.Columns(), roles.Columns()...),
	}).Info("Account updated")
	return MsgAccountUpdated, nil
}

func execSingleRow(tx *gorm.DB, b *updateBuilder, key any, mismatch error) error {
	sql, args := b.Build(key) // Parameterized statement
	res := tx.Exec(sql, args...)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return mismatch // Unknown key or an unexpected multi-row match
	}
	return nil
}

// Get returns the account view for id.
func (s *AccountService) Get(ctx context.Context, id string) (*AccountView, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	view, err := s.fetch(ctx, id)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrap(err, "fetch account")
	}
	return view, nil
}

// List returns one page of accounts ordered by id. Page is 1-based.
func (s *AccountService) List(ctx context.Context, page, pageSize int) (*AccountPage, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	var total int64 // Accounts across all pages
	if err := accountViews(s.db.WithContext(ctx)).Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "count accounts")
	}
	views := []AccountView{} // Never nil so an empty page encodes as []
	err := accountViews(s.db.WithContext(ctx)).
		Select(accountViewColumns).
		Order("u.id").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Scan(&views).Error
	if err != nil {
		return nil, errors.Wrap(err, "list accounts")
	}
	return &AccountPage{
		Accounts:   views,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (int(total) + pageSize - 1) / pageSize,
	}, nil
}

const accountViewColumns = "u.id, u.email, u.phone, ur.role_id, ur.sub_role_id"

func accountViews(db *gorm.DB) *gorm.DB {
	return db.Table("users AS u").Joins("JOIN user_role ur ON ur.user_id = u.id")
}

func (s *AccountService) fetch(ctx context.Context, id string) (*AccountView, error) {
	var views []AccountView
	err := accountViews(s.db.WithContext(ctx)).
		Select(accountViewColumns).
		Where("u.id = ?", id).
		Limit(1).
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, ErrAccountNotFound // No user or no role row
	}
	return &views[0], nil
}
