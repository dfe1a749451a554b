package staff

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/preop/preop/internal/platform/auth"
)

// -- Mock Repository --

type mockRepo struct {
	users map[uuid.UUID]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[uuid.UUID]*User)}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()
	m.users[u.ID] = u
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return u, nil
}

func (m *mockRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockRepo) Update(_ context.Context, u *User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	u.PasswordHash = hash
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.users, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*User, int, error) {
	var result []*User
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, len(result), nil
}

func newTestService() *Service {
	return NewService(newMockRepo(), []byte("test-secret"), time.Hour)
}

// -- Tests --

func TestCreateUser(t *testing.T) {
	svc := newTestService()
	u := &User{Username: "nurse.a", FullName: "Nurse A"}
	if err := svc.Create(context.Background(), u, "s3cret-pass"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != "nurse" {
		t.Errorf("expected default role nurse, got %s", u.Role)
	}
	if !u.IsActive {
		t.Error("expected new account active")
	}
	if u.PasswordHash == "" || u.PasswordHash == "s3cret-pass" {
		t.Error("password should be stored hashed")
	}
}

func TestCreateUser_UsernameRequired(t *testing.T) {
	svc := newTestService()
	u := &User{FullName: "Nurse A"}
	if err := svc.Create(context.Background(), u, "s3cret-pass"); err == nil {
		t.Error("expected error for missing username")
	}
}

func TestCreateUser_ShortPassword(t *testing.T) {
	svc := newTestService()
	u := &User{Username: "nurse.a", FullName: "Nurse A"}
	if err := svc.Create(context.Background(), u, "short"); err == nil {
		t.Error("expected error for short password")
	}
}

func TestCreateUser_InvalidRole(t *testing.T) {
	svc := newTestService()
	u := &User{Username: "nurse.a", FullName: "Nurse A", Role: "janitor"}
	if err := svc.Create(context.Background(), u, "s3cret-pass"); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestLogin(t *testing.T) {
	svc := newTestService()
	u := &User{Username: "nurse.a", FullName: "Nurse A", Role: "or_nurse"}
	svc.Create(context.Background(), u, "s3cret-pass")

	res, err := svc.Login(context.Background(), "nurse.a", "s3cret-pass")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Token == "" {
		t.Error("expected a signed token")
	}
	if res.User.ID != u.ID {
		t.Error("expected the authenticated account in the result")
	}

	claims, err := auth.ParseToken([]byte("test-secret"), res.Token)
	if err != nil {
		t.Fatalf("token did not parse: %v", err)
	}
	if claims.Subject != u.ID.String() {
		t.Errorf("expected subject %s, got %s", u.ID, claims.Subject)
	}
	if claims.Name != "Nurse A" || claims.Role != "or_nurse" {
		t.Errorf("claims not carried: %+v", claims)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestService()
	u := &User{Username: "nurse.a", FullName: "Nurse A"}
	svc.Create(context.Background(), u, "s3cret-pass")

	if _, err := svc.Login(context.Background(), "nurse.a", "wrong-pass"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := newTestService()
	if _, err := svc.Login(context.Background(), "ghost", "s3cret-pass"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_InactiveUser(t *testing.T) {
	svc := newTestService()
	u := &User{Username: "nurse.a", FullName: "Nurse A"}
	svc.Create(context.Background(), u, "s3cret-pass")
	u.IsActive = false
	svc.Update(context.Background(), u)

	if _, err := svc.Login(context.Background(), "nurse.a", "s3cret-pass"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc := newTestService()
	u := &User{Username: "nurse.a", FullName: "Nurse A"}
	svc.Create(context.Background(), u, "s3cret-pass")

	if err := svc.ChangePassword(context.Background(), u.ID, "s3cret-pass", "new-s3cret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Login(context.Background(), "nurse.a", "s3cret-pass"); err == nil {
		t.Error("old password should no longer work")
	}
	if _, err := svc.Login(context.Background(), "nurse.a", "new-s3cret"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	svc := newTestService()
	u := &User{Username: "nurse.a", FullName: "Nurse A"}
	svc.Create(context.Background(), u, "s3cret-pass")

	if err := svc.ChangePassword(context.Background(), u.ID, "wrong-pass", "new-s3cret"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestChangePassword_ShortNew(t *testing.T) {
	svc := newTestService()
	u := &User{Username: "nurse.a", FullName: "Nurse A"}
	svc.Create(context.Background(), u, "s3cret-pass")

	if err := svc.ChangePassword(context.Background(), u.ID, "s3cret-pass", "short"); err == nil {
		t.Error("expected error for short replacement password")
	}
}

func TestDeleteUser(t *testing.T) {
	svc := newTestService()
	u := &User{Username: "nurse.a", FullName: "Nurse A"}
	svc.Create(context.Background(), u, "s3cret-pass")

	if err := svc.Delete(context.Background(), u.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(context.Background(), u.ID); err == nil {
		t.Error("expected error after deletion")
	}
}
