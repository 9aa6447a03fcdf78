package service

import (
	"context"
	"testing"
	"time"

	"account_service/internal/domain"
	"account_service/internal/testutil"
	"account_service/internal/utils"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func intPtr(v int) *int { return &v }

func newTestAccountService(t *testing.T, opts Options) (*AccountService, *gorm.DB) {
	gdb := testutil.NewDB(t)
	return NewAccountService(gdb, opts), gdb
}

func emailInput(id, email string) CreateAccountInput {
	return CreateAccountInput{ID: id, Email: email, Password: "pw", RoleID: 1, SubRoleID: 1}
}

func TestAccountService_CreateByEmail_Success(t *testing.T) {
	svc, gdb := newTestAccountService(t, Options{QueryTimeout: 5 * time.Second})

	res, err := svc.CreateByEmail(context.Background(), emailInput("u1", "a@x.com"))

	require.NoError(t, err)
	assert.Equal(t, MsgAccountCreated, res.Message)
	require.NotNil(t, res.Account)
	assert.Equal(t, "u1", res.Account.ID)
	require.NotNil(t, res.Account.Email)
	assert.Equal(t, "a@x.com", *res.Account.Email)
	assert.Nil(t, res.Account.Phone)
	assert.Equal(t, 1, res.Account.RoleID)
	assert.Equal(t, 1, res.Account.SubRoleID)

	var user domain.User
	require.NoError(t, gdb.First(&user, "id = ?", "u1").Error)
	assert.NotEqual(t, "pw", user.Password)
	assert.True(t, utils.CheckPassword("pw", user.Password))
	assert.Nil(t, user.Phone)

	var role domain.UserRole
	require.NoError(t, gdb.First(&role, "user_id = ?", "u1").Error)
	assert.Equal(t, domain.UserRole{UserID: "u1", RoleID: 1, SubRoleID: 1}, role)
}

func TestAccountService_CreateByEmail_Duplicate(t *testing.T) {
	svc, gdb := newTestAccountService(t, Options{})
	ctx := context.Background()

	_, err := svc.CreateByEmail(ctx, emailInput("u1", "a@x.com"))
	require.NoError(t, err)
	var before domain.User
	require.NoError(t, gdb.First(&before, "id = ?", "u1").Error)

	_, err = svc.CreateByEmail(ctx, emailInput("u2", "a@x.com"))

	require.ErrorIs(t, err, ErrAlreadyExists)
	assert.Equal(t, KindDuplicate, ErrorKind(err))
	assert.EqualValues(t, 1, testutil.CountRows(t, gdb, &domain.User{}, ""))
	assert.EqualValues(t, 1, testutil.CountRows(t, gdb, &domain.UserRole{}, ""))
	assert.EqualValues(t, 0, testutil.CountRows(t, gdb, &domain.UserRole{}, "user_id = ?", "u2"))

	var after domain.User
	require.NoError(t, gdb.First(&after, "id = ?", "u1").Error)
	assert.Equal(t, before.Password, after.Password)
}

func TestAccountService_CreateByEmail_SameIDTwice(t *testing.T) {
	svc, gdb := newTestAccountService(t, Options{})
	ctx := context.Background()

	_, err := svc.CreateByEmail(ctx, emailInput("u1", "a@x.com"))
	require.NoError(t, err)
	_, err = svc.CreateByEmail(ctx, emailInput("u1", "a@x.com"))

	require.ErrorIs(t, err, ErrAlreadyExists)
	assert.EqualValues(t, 1, testutil.CountRows(t, gdb, &domain.User{}, ""))
}

func TestAccountService_CreateByPhone_Success(t *testing.T) {
	svc, gdb := newTestAccountService(t, Options{})

	res, err := svc.CreateByPhone(context.Background(), CreateAccountInput{
		ID: "p1", Phone: "5550001", Password: "pw", RoleID: 3, SubRoleID: 7,
	})

	require.NoError(t, err)
	assert.Equal(t, MsgAccountCreated, res.Message)
	require.NotNil(t, res.Account.Phone)
	assert.Equal(t, "5550001", *res.Account.Phone)
	assert.Nil(t, res.Account.Email)
	assert.EqualValues(t, 1, testutil.CountRows(t, gdb, &domain.UserRole{}, "user_id = ? AND role_id = ? AND sub_role_id = ?", "p1", 3, 7))
}

func TestAccountService_CreateByPhone_DuplicatePhone(t *testing.T) {
	svc, _ := newTestAccountService(t, Options{})
	ctx := context.Background()
	in := CreateAccountInput{ID: "p1", Phone: "5550001", Password: "pw", RoleID: 3, SubRoleID: 1}

	_, err := svc.CreateByPhone(ctx, in)
	require.NoError(t, err)
	in.ID = "p2"
	_, err = svc.CreateByPhone(ctx, in)

	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestAccountService_Create_MissingFields(t *testing.T) {
	svc, gdb := newTestAccountService(t, Options{})
	ctx := context.Background()

	cases := map[string]struct {
		kind IdentifierKind
		in   CreateAccountInput
	}{
		"phone path without phone": {IdentifierPhone, CreateAccountInput{ID: "p1", Email: "a@x.com", Password: "pw", RoleID: 3, SubRoleID: 1}},
		"email path without email": {IdentifierEmail, CreateAccountInput{ID: "u1", Phone: "555", Password: "pw", RoleID: 1, SubRoleID: 1}},
		"blank email":              {IdentifierEmail, CreateAccountInput{ID: "u1", Email: "  ", Password: "pw", RoleID: 1, SubRoleID: 1}},
		"no id":                    {IdentifierEmail, CreateAccountInput{Email: "a@x.com", Password: "pw", RoleID: 1, SubRoleID: 1}},
		"no password":              {IdentifierPhone, CreateAccountInput{ID: "p1", Phone: "555", RoleID: 3, SubRoleID: 1}},
		"no role":                  {IdentifierEmail, CreateAccountInput{ID: "u1", Email: "a@x.com", Password: "pw", SubRoleID: 1}},
		"no sub role":              {IdentifierPhone, CreateAccountInput{ID: "p1", Phone: "555", Password: "pw", RoleID: 3}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.kind, tc.in)
			require.ErrorIs(t, err, ErrMissingFields)
			assert.Equal(t, KindValidation, ErrorKind(err))
		})
	}
	assert.EqualValues(t, 0, testutil.CountRows(t, gdb, &domain.User{}, ""))
}

func TestAccountService_Create_RoleInsertFailureRollsBackUser(t *testing.T) {
	svc, gdb := newTestAccountService(t, Options{})
	boom := errors.New("role table unavailable")
	require.NoError(t, gdb.Callback().Create().Before("gorm:create").Register("test:fail_user_role", func(tx *gorm.DB) {
		if tx.Statement.Table == "user_role" {
			_ = tx.AddError(boom)
		}
	}))

	_, err := svc.CreateByEmail(context.Background(), emailInput("u1", "a@x.com"))

	require.ErrorIs(t, err, boom)
	assert.Equal(t, KindDatabase, ErrorKind(err))
	assert.EqualValues(t, 0, testutil.CountRows(t, gdb, &domain.User{}, ""))
	assert.EqualValues(t, 0, testutil.CountRows(t, gdb, &domain.UserRole{}, ""))
}

func TestAccountService_Create_ContextCancelled(t *testing.T) {
	svc, gdb := newTestAccountService(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.CreateByEmail(ctx, emailInput("u1", "a@x.com"))

	require.Error(t, err)
	assert.EqualValues(t, 0, testutil.CountRows(t, gdb, &domain.User{}, ""))
}

func seedAccount(t *testing.T, svc *AccountService, id, email string, roleID, subRoleID int) {
	t.Helper()
	_, err := svc.CreateByEmail(context.Background(), CreateAccountInput{
		ID: id, Email: email, Password: "pw", RoleID: roleID, SubRoleID: subRoleID,
	})
	require.NoError(t, err)
}

func TestAccountService_Update_NoFieldsIsNoop(t *testing.T) {
	svc, gdb := newTestAccountService(t, Options{})
	seedAccount(t, svc, "u1", "a@x.com", 1, 1)
	var writes int
	require.NoError(t, gdb.Callback().Raw().Before("gorm:raw").Register("test:count_raw", func(*gorm.DB) { writes++ }))

	msg, err := svc.Update(context.Background(), UpdateAccountInput{ID: "u1", Email: "   ", Password: ""})

	require.NoError(t, err)
	assert.Equal(t, MsgNothingToUpdate, msg)
	assert.Zero(t, writes)
}

func TestAccountService_Update_UserAndRole(t *testing.T) {
	svc, gdb := newTestAccountService(t, Options{})
	seedAccount(t, svc, "u1", "a@x.com", 1, 1)

	msg, err := svc.Update(context.Background(), UpdateAccountInput{
		ID:        "u1",
		Email:     "b@x.com",
		Password:  "new-pw",
		Phone:     "5551234",
		RoleID:    intPtr(2),
		SubRoleID: intPtr(4),
	})

	require.NoError(t, err)
	assert.Equal(t, MsgAccountUpdated, msg)

	var user domain.User
	require.NoError(t, gdb.First(&user, "id = ?", "u1").Error)
	assert.Equal(t, "b@x.com", *user.Email)
	assert.Equal(t, "5551234", *user.Phone)
	assert.True(t, utils.CheckPassword("new-pw", user.Password))

	var role domain.UserRole
	require.NoError(t, gdb.First(&role, "user_id = ?", "u1").Error)
	assert.Equal(t, 2, role.RoleID)
	assert.Equal(t, 4, role.SubRoleID)
}

func TestAccountService_Update_RoleOnly(t *testing.T) {
	svc, gdb := newTestAccountService(t, Options{})
	seedAccount(t, svc, "u1", "a@x.com", 1, 1)

	msg, err := svc.Update(context.Background(), UpdateAccountInput{ID: "u1", SubRoleID: intPtr(9)})

	require.NoError(t, err)
	assert.Equal(t, MsgAccountUpdated, msg)
	assert.EqualValues(t, 1, testutil.CountRows(t, gdb, &domain.UserRole{}, "user_id = ? AND role_id = ? AND sub_role_id = ?", "u1", 1, 9))
}

func TestAccountService_Update_SameValuesStillSucceeds(t *testing.T) {
	svc, _ := newTestAccountService(t, Options{})
	seedAccount(t, svc, "u1", "a@x.com", 1, 1)

	_, err := svc.Update(context.Background(), UpdateAccountInput{ID: "u1", Email: "a@x.com", RoleID: intPtr(1)})

	require.NoError(t, err)
}

func TestAccountService_Update_UnknownAccount(t *testing.T) {
	svc, _ := newTestAccountService(t, Options{})

	_, err := svc.Update(context.Background(), UpdateAccountInput{ID: "ghost", Email: "g@x.com"})

	require.ErrorIs(t, err, ErrUpdateFailed)
}

func TestAccountService_Update_RoleFailureRollsBackUser(t *testing.T) {
	svc, gdb := newTestAccountService(t, Options{})
	hash, err := utils.HashPassword("pw")
	require.NoError(t, err)
	email := "a@x.com"
	require.NoError(t, gdb.Create(&domain.User{ID: "u1", Email: &email, Password: hash}).Error)

	_, err = svc.Update(context.Background(), UpdateAccountInput{ID: "u1", Email: "b@x.com", RoleID: intPtr(2)})

	require.ErrorIs(t, err, ErrRoleUpdateFailed)
	var user domain.User
	require.NoError(t, gdb.First(&user, "id = ?", "u1").Error)
	assert.Equal(t, "a@x.com", *user.Email)
	assert.Equal(t, hash, user.Password)
}

func TestAccountService_Update_DuplicateEmail(t *testing.T) {
	svc, _ := newTestAccountService(t, Options{})
	seedAccount(t, svc, "u1", "a@x.com", 1, 1)
	seedAccount(t, svc, "u2", "b@x.com", 1, 1)

	_, err := svc.Update(context.Background(), UpdateAccountInput{ID: "u2", Email: "a@x.com"})

	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestAccountService_Update_RoleValidationIsConfigurable(t *testing.T) {
	accepted := func(roleID int) bool { return roleID >= 1 && roleID <= 6 }

	strict, _ := newTestAccountService(t, Options{RoleOnUpdate: accepted})
	seedAccount(t, strict, "u1", "a@x.com", 1, 1)
	_, err := strict.Update(context.Background(), UpdateAccountInput{ID: "u1", RoleID: intPtr(42)})
	require.ErrorIs(t, err, ErrInvalidRole)

	lenient, gdb := newTestAccountService(t, Options{})
	seedAccount(t, lenient, "u1", "a@x.com", 1, 1)
	_, err = lenient.Update(context.Background(), UpdateAccountInput{ID: "u1", RoleID: intPtr(42)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, testutil.CountRows(t, gdb, &domain.UserRole{}, "role_id = ?", 42))
}

func TestAccountService_GetAndList(t *testing.T) {
	svc, _ := newTestAccountService(t, Options{})
	ctx := context.Background()
	seedAccount(t, svc, "u1", "a@x.com", 1, 1)
	seedAccount(t, svc, "u2", "b@x.com", 2, 1)
	seedAccount(t, svc, "u3", "c@x.com", 4, 2)

	view, err := svc.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 2, view.RoleID)

	_, err = svc.Get(ctx, "nope")
	require.ErrorIs(t, err, ErrAccountNotFound)

	page, err := svc.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Accounts, 1)
	assert.Equal(t, "u3", page.Accounts[0].ID)
}
