package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmetics-store/internal/auth"
	"cosmetics-store/internal/domain"
	"cosmetics-store/internal/repository"
)

type fakeUserRepo struct {
	users  map[int64]*domain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*domain.User{}, nextID: 1}
}

func (r *fakeUserRepo) Init(context.Context) error { return nil }

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (int64, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return 0, fmt.Errorf("user %w", repository.ErrDuplicate)
		}
	}
	user.ID = r.nextID
	r.nextID++
	clone := *user
	r.users[user.ID] = &clone
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("user %w", repository.ErrNotFound)
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %w", repository.ErrNotFound)
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	for _, user := range r.users {
		if user.Email == email || user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username:  "amy",
		Email:     "a@x.com",
		Password:  "secret123",
		FirstName: "Amy",
		LastName:  "Lee",
	}
}

func newTestUserService(repo repository.UserRepository) UserService {
	return NewUserService(repo, auth.NewPasswordHasher(4))
}

func TestRegister_Success(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo)

	user, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)
	assert.Equal(t, "amy", user.Username)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, domain.RoleCustomer, user.Role)
	assert.Empty(t, user.PasswordHash, "hash must not leave the service")

	stored := repo.users[user.ID]
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
}

func TestRegister_RoleIsAlwaysCustomer(t *testing.T) {
	svc := newTestUserService(newFakeUserRepo())

	user, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, user.Role)
}

func TestRegister_MissingFields(t *testing.T) {
	svc := newTestUserService(newFakeUserRepo())

	cases := map[string]func(*RegisterInput){
		"username":   func(in *RegisterInput) { in.Username = "" },
		"email":      func(in *RegisterInput) { in.Email = "" },
		"password":   func(in *RegisterInput) { in.Password = "" },
		"first name": func(in *RegisterInput) { in.FirstName = "" },
		"last name":  func(in *RegisterInput) { in.LastName = "" },
	}
	for name, clear := range cases {
		t.Run(name, func(t *testing.T) {
			input := validRegisterInput()
			clear(&input)
			_, err := svc.Register(context.Background(), input)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	svc := newTestUserService(newFakeUserRepo())

	input := validRegisterInput()
	input.Password = "short"
	_, err := svc.Register(context.Background(), input)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegister_DuplicateEmailOrUsername(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo)

	_, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	sameEmail := validRegisterInput()
	sameEmail.Username = "other"
	_, err = svc.Register(context.Background(), sameEmail)
	assert.ErrorIs(t, err, ErrUserExists)

	sameUsername := validRegisterInput()
	sameUsername.Email = "other@x.com"
	_, err = svc.Register(context.Background(), sameUsername)
	assert.ErrorIs(t, err, ErrUserExists)

	assert.Len(t, repo.users, 1, "no second row may be created")
}

func TestAuthenticate_Success(t *testing.T) {
	svc := newTestUserService(newFakeUserRepo())

	registered, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), "a@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Empty(t, user.PasswordHash)
}

func TestAuthenticate_FailureModesAreIndistinguishable(t *testing.T) {
	svc := newTestUserService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	_, wrongPassword := svc.Authenticate(context.Background(), "a@x.com", "wrong")
	_, unknownEmail := svc.Authenticate(context.Background(), "nobody@x.com", "secret123")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestGetByID_StripsHash(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo)

	registered, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	user, err := svc.GetByID(context.Background(), registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "amy", user.Username)
	assert.Empty(t, user.PasswordHash)
}
