package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"inkpress/internal/jobs"
	"inkpress/internal/models"
	"inkpress/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testAdminToken = "super-secret-admin-token"

func newUserService(db *gorm.DB, queue JobSubmitter, adminToken string) *UserService {
	svc := NewUserService(repository.NewUserRepository(db), NewTokenManager("a-test-secret-that-is-long-enough!!"), queue, adminToken)
	svc.hashCost = bcrypt.MinCost
	return svc
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	setRoleFn       func(context.Context, uint, models.Role) error
	listFn          func(context.Context, int, int) ([]models.User, error)
	listByRoleFn    func(context.Context, models.Role) ([]models.User, error)
	deleteCascadeFn func(context.Context, uint) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, u *models.User) error {
	return s.createFn(ctx, u)
}
func (s *userRepoStub) Update(ctx context.Context, u *models.User) error {
	return s.updateFn(ctx, u)
}
func (s *userRepoStub) SetRole(ctx context.Context, id uint, role models.Role) error {
	return s.setRoleFn(ctx, id, role)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	return s.listByRoleFn(ctx, role)
}
func (s *userRepoStub) DeleteCascade(ctx context.Context, id uint) error {
	return s.deleteCascadeFn(ctx, id)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, u *models.User) error { u.ID = 1; return nil },
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
		setRoleFn:       func(_ context.Context, _ uint, _ models.Role) error { return nil },
		listFn:          func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
		listByRoleFn:    func(_ context.Context, _ models.Role) ([]models.User, error) { return nil, nil },
		deleteCascadeFn: func(_ context.Context, _ uint) error { return nil },
	}
}

func TestUserService_Register_AdminToken(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		supplied   string
		want       models.Role
	}{
		{"matching token", testAdminToken, testAdminToken, models.RoleAdmin},
		{"wrong token", testAdminToken, "guess", models.RoleMember},
		{"absent token", testAdminToken, "", models.RoleMember},
		{"unset secret never matches", "", "", models.RoleMember},
		{"unset secret with supplied token", "", "anything", models.RoleMember},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			queue := &jobRecorder{}
			svc := newUserService(db, queue, tt.configured)

			res, err := svc.Register(context.Background(), RegisterInput{
				Name:             "Ada",
				Email:            "  Ada@Example.COM ",
				Password:         "password1",
				AdminAccessToken: tt.supplied,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.User.Role)
			assert.Equal(t, "ada@example.com", res.User.Email)
			assert.NotEqual(t, "password1", res.User.Password)

			claims, err := svc.tokens.Parse(res.Token)
			require.NoError(t, err)
			assert.Equal(t, res.User.ID, claims.UserID)
			assert.Equal(t, tt.want, claims.Role)

			assert.Equal(t, []string{jobs.EmailWelcome}, queue.submitted())
		})
	}
}

func TestUserService_Register_Validation(t *testing.T) {
	svc := newUserService(setupTestDB(t), nil, "")
	ctx := context.Background()

	cases := []RegisterInput{
		{Name: "", Email: "a@example.com", Password: "password1"},
		{Name: "Ada", Email: "not-an-email", Password: "password1"},
		{Name: "Ada", Email: "a@example.com", Password: "short1"},
		{Name: "Ada", Email: "a@example.com", Password: "lettersonly"},
		{Name: strings.Repeat("x", 101), Email: "a@example.com", Password: "password1"},
	}
	for _, in := range cases {
		_, err := svc.Register(ctx, in)
		assertCode(t, err, models.CodeValidation)
	}
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	svc := newUserService(setupTestDB(t), nil, "")
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "Other", Email: "ADA@example.com", Password: "password2"})
	assertCode(t, err, models.CodeConflict)
}

func TestUserService_Register_JobFailureIsSwallowed(t *testing.T) {
	queue := &jobRecorder{err: errors.New("redis down")}
	svc := newUserService(setupTestDB(t), queue, "")

	res, err := svc.Register(context.Background(), RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestUserService_Register_StoreFailurePropagates(t *testing.T) {
	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) {
		return nil, models.NewStoreUnavailableError(errors.New("connection refused"))
	}
	created := false
	repo.createFn = func(_ context.Context, _ *models.User) error {
		created = true
		return nil
	}
	svc := NewUserService(repo, NewTokenManager("secret"), nil, "")

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "password1"})
	assertCode(t, err, models.CodeStoreUnavailable)
	assert.False(t, created)
}

func TestUserService_Authenticate(t *testing.T) {
	queue := &jobRecorder{}
	svc := newUserService(setupTestDB(t), queue, "")
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "password1"})
	require.NoError(t, err)

	_, wrongPw := svc.Authenticate(ctx, LoginInput{Email: "ada@example.com", Password: "password2"})
	_, unknown := svc.Authenticate(ctx, LoginInput{Email: "nobody@example.com", Password: "password1"})
	assertCode(t, wrongPw, models.CodeUnauthorized)
	assertCode(t, unknown, models.CodeUnauthorized)
	assert.Equal(t, wrongPw.Error(), unknown.Error())

	res, err := svc.Authenticate(ctx, LoginInput{Email: " ADA@example.com", Password: "password1", IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, []string{jobs.EmailWelcome, jobs.EmailLoginAlert}, queue.submitted())

	_, err = svc.Authenticate(ctx, LoginInput{})
	assertCode(t, err, models.CodeValidation)
}

func TestUserService_UpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db, nil, "")
	ctx := context.Background()

	ada, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "password1"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Name: "Grace", Email: "grace@example.com", Password: "password1"})
	require.NoError(t, err)

	t.Run("partial update keeps other fields", func(t *testing.T) {
		u, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: ada.User.ID, Bio: strPtr("Mathematician")})
		require.NoError(t, err)
		assert.Equal(t, "Mathematician", u.Bio)
		assert.Equal(t, "Ada", u.Name)
		assert.Equal(t, "ada@example.com", u.Email)
	})

	t.Run("email taken by someone else", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: ada.User.ID, Email: strPtr("Grace@example.com")})
		assertCode(t, err, models.CodeConflict)
	})

	t.Run("invalid fields", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: ada.User.ID, Email: strPtr("nope")})
		assertCode(t, err, models.CodeValidation)
		_, err = svc.UpdateProfile(ctx, UpdateProfileInput{UserID: ada.User.ID, Bio: strPtr(strings.Repeat("x", 501))})
		assertCode(t, err, models.CodeValidation)
		_, err = svc.UpdateProfile(ctx, UpdateProfileInput{UserID: ada.User.ID, ProfileImage: strPtr("javascript:alert(1)")})
		assertCode(t, err, models.CodeValidation)
	})

	t.Run("password is rehashed", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: ada.User.ID, Password: strPtr("newpassword2")})
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, LoginInput{Email: "ada@example.com", Password: "password1"})
		assertCode(t, err, models.CodeUnauthorized)
		_, err = svc.Authenticate(ctx, LoginInput{Email: "ada@example.com", Password: "newpassword2"})
		require.NoError(t, err)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 999, Name: strPtr("x")})
		assertCode(t, err, models.CodeNotFound)
	})
}

func TestUserService_ListUsers(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db, nil, "")
	admin := createUser(t, db, "admin", models.RoleAdmin)
	member := createUser(t, db, "member", models.RoleMember)

	_, err := svc.ListUsers(context.Background(), actorOf(member), 1, 10)
	assertCode(t, err, models.CodeForbidden)

	users, err := svc.ListUsers(context.Background(), actorOf(admin), 1, 10)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = svc.ListUsers(context.Background(), actorOf(admin), 2, 1)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, member.ID, users[0].ID)

	users, err = svc.ListUsers(context.Background(), actorOf(admin), 1<<60+1, 10)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserService_DeleteUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db, nil, "")
	admin := createUser(t, db, "admin", models.RoleAdmin)
	alice := createUser(t, db, "alice", models.RoleMember)
	bob := createUser(t, db, "bob", models.RoleMember)
	ctx := context.Background()

	assertCode(t, svc.DeleteUser(ctx, actorOf(alice), bob.ID), models.CodeForbidden)
	require.NoError(t, svc.DeleteUser(ctx, actorOf(alice), alice.ID))
	require.NoError(t, svc.DeleteUser(ctx, actorOf(admin), bob.ID))

	_, err := svc.GetProfile(ctx, bob.ID)
	assertCode(t, err, models.CodeNotFound)
	assertCode(t, svc.DeleteUser(ctx, actorOf(admin), bob.ID), models.CodeNotFound)
}

func TestUserService_SetRole(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db, nil, "")
	u := createUser(t, db, "ada", models.RoleMember)
	ctx := context.Background()

	_, err := svc.SetRole(ctx, u.ID, models.Role("owner"))
	assertCode(t, err, models.CodeValidation)

	updated, err := svc.SetRole(ctx, u.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	admins, err := svc.ListByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, u.ID, admins[0].ID)

	_, err = svc.SetRole(ctx, 999, models.RoleAdmin)
	assertCode(t, err, models.CodeNotFound)
}
