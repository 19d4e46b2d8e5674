package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mediateka/internal/data/entity"
	"mediateka/pkg/auth"
	"mediateka/pkg/permission"
	"mediateka/pkg/utils"
)

// stubUserRepo satisfies repository.UserRepository with an in-memory map.
// Only FindByID matters to the middleware.
type stubUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func newStubUserRepo(users ...*entity.User) *stubUserRepo {
	s := &stubUserRepo{users: make(map[uuid.UUID]*entity.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return s.users[id], nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, nil
}

func (s *stubUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return nil, nil
}

func (s *stubUserRepo) FindAll(ctx context.Context, search string, limit, offset int) ([]*entity.User, error) {
	return nil, nil
}

func (s *stubUserRepo) CountAll(ctx context.Context, search string) (int64, error) { return 0, nil }

func (s *stubUserRepo) Update(ctx context.Context, user *entity.User) error { return nil }

func (s *stubUserRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func middlewareTestUser(username string, role entity.UserRole) *entity.User {
	now := time.Now()
	return &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	}
}

// identitySpy is a terminal handler that records the identity Identify left
// in the context.
type identitySpy struct {
	called bool
	ident  permission.Identity
}

func (spy *identitySpy) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		spy.called = true
		spy.ident, _ = utils.GetIdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestIdentifyWithoutHeaderIsAnonymous(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 1)
	spy := &identitySpy{}
	handler := Identify(tokens, newStubUserRepo(), zap.NewNop())(spy.handler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !spy.called {
		t.Fatal("next handler should run")
	}
	if spy.ident.Authenticated {
		t.Error("identity should be anonymous")
	}
}

func TestIdentifyRejectsMalformedHeaders(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 1)

	tests := []struct {
		name   string
		header string
	}{
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"scheme without token", "Bearer"},
		{"no space", "Tokenabc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &identitySpy{}
			handler := Identify(tokens, newStubUserRepo(), zap.NewNop())(spy.handler())

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if spy.called {
				t.Error("next handler must not run")
			}
		})
	}
}

func TestIdentifyRejectsBadToken(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 1)
	spy := &identitySpy{}
	handler := Identify(tokens, newStubUserRepo(), zap.NewNop())(spy.handler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if spy.called {
		t.Error("next handler must not run")
	}
}

func TestIdentifyResolvesUser(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 1)
	user := middlewareTestUser("marta", entity.RoleModerator)
	token, err := tokens.Generate(user)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	spy := &identitySpy{}
	handler := Identify(tokens, newStubUserRepo(user), zap.NewNop())(spy.handler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !spy.ident.Authenticated {
		t.Fatal("identity should be authenticated")
	}
	if spy.ident.Username != "marta" {
		t.Errorf("username = %q, want marta", spy.ident.Username)
	}
	if spy.ident.UserID != user.ID {
		t.Errorf("user id = %s, want %s", spy.ident.UserID, user.ID)
	}
	if spy.ident.Role != entity.RoleModerator {
		t.Errorf("role = %q, want moderator", spy.ident.Role)
	}
}

func TestIdentifyRejectsDeletedUser(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 1)
	user := middlewareTestUser("marta", entity.RoleUser)
	token, err := tokens.Generate(user)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// The store never heard of this user, as after a delete.
	spy := &identitySpy{}
	handler := Identify(tokens, newStubUserRepo(), zap.NewNop())(spy.handler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if spy.called {
		t.Error("next handler must not run")
	}
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name       string
		ident      *permission.Identity
		wantStatus int
		wantNext   bool
	}{
		{
			name:       "authenticated request passes",
			ident:      identityPtr(permission.FromUser(middlewareTestUser("marta", entity.RoleUser))),
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:       "anonymous request is rejected",
			ident:      identityPtr(permission.Anonymous()),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "request without identity is rejected",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &identitySpy{}
			handler := Authenticate(zap.NewNop())(spy.handler())

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.ident != nil {
				req = req.WithContext(utils.SetIdentityContext(req.Context(), *tt.ident))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if spy.called != tt.wantNext {
				t.Errorf("next called = %v, want %v", spy.called, tt.wantNext)
			}
		})
	}
}

func identityPtr(i permission.Identity) *permission.Identity { return &i }
