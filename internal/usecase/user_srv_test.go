package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"mediateka/internal/data/entity"
	"mediateka/internal/dto/request"
	"mediateka/pkg/permission"
)

func newUserServiceForTest() (UserService, *fakeStore) {
	repo, store := newFakeRepository()
	svc := NewUserService(repo, testConfig(), zap.NewNop())
	return svc, store
}

func TestCreateUserDefaultRole(t *testing.T) {
	svc, store := newUserServiceForTest()

	resp, err := svc.CreateUser(context.Background(), &request.CreateUserRequest{
		Username: "marta",
		Email:    "marta@example.com",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if resp.Role != entity.RoleUser {
		t.Errorf("role = %s, want %s", resp.Role, entity.RoleUser)
	}
	if len(store.codes) != 1 {
		t.Errorf("stored codes = %d, want 1; admin-created accounts log in through the code flow too", len(store.codes))
	}
}

func TestCreateUserWithExplicitRole(t *testing.T) {
	svc, _ := newUserServiceForTest()

	resp, err := svc.CreateUser(context.Background(), &request.CreateUserRequest{
		Username: "marta",
		Email:    "marta@example.com",
		Role:     strPtr("moderator"),
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if resp.Role != entity.RoleModerator {
		t.Errorf("role = %s, want %s", resp.Role, entity.RoleModerator)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, store := newUserServiceForTest()
	seedUser(store, "marta", "marta@example.com", entity.RoleUser)

	_, err := svc.CreateUser(context.Background(), &request.CreateUserRequest{
		Username: "fresh",
		Email:    "marta@example.com",
	})

	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("CreateUser(duplicate email) = %v, want ErrEmailTaken", err)
	}
}

func TestCreateUserReservedUsername(t *testing.T) {
	svc, _ := newUserServiceForTest()

	_, err := svc.CreateUser(context.Background(), &request.CreateUserRequest{
		Username: "me",
		Email:    "me@example.com",
	})

	if !errors.Is(err, ErrReservedUsername) {
		t.Fatalf("CreateUser(me) = %v, want ErrReservedUsername", err)
	}
}

func TestGetUsersSearchFiltersByUsername(t *testing.T) {
	svc, store := newUserServiceForTest()
	seedUser(store, "marta", "marta@example.com", entity.RoleUser)
	seedUser(store, "martin", "martin@example.com", entity.RoleUser)
	seedUser(store, "boris", "boris@example.com", entity.RoleUser)

	resp, err := svc.GetUsers(context.Background(), pageReq(1, 10), "mart")
	if err != nil {
		t.Fatalf("GetUsers: %v", err)
	}

	if resp.Pagination.Total != 2 {
		t.Errorf("total = %d, want 2", resp.Pagination.Total)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("data length = %d, want 2", len(resp.Data))
	}
	if resp.Data[0].Username != "marta" || resp.Data[1].Username != "martin" {
		t.Errorf("usernames = %s, %s; want marta, martin", resp.Data[0].Username, resp.Data[1].Username)
	}
}

func TestGetUsersPaginates(t *testing.T) {
	svc, store := newUserServiceForTest()
	seedUser(store, "anna", "anna@example.com", entity.RoleUser)
	seedUser(store, "boris", "boris@example.com", entity.RoleUser)
	seedUser(store, "clara", "clara@example.com", entity.RoleUser)

	resp, err := svc.GetUsers(context.Background(), pageReq(2, 2), "")
	if err != nil {
		t.Fatalf("GetUsers: %v", err)
	}

	if resp.Pagination.Total != 3 || resp.Pagination.TotalPages != 2 {
		t.Errorf("pagination = %+v, want total 3 over 2 pages", resp.Pagination)
	}
	if len(resp.Data) != 1 || resp.Data[0].Username != "clara" {
		t.Errorf("page 2 = %+v, want just clara", resp.Data)
	}
}

func TestGetUserByUsernameNotFound(t *testing.T) {
	svc, _ := newUserServiceForTest()

	_, err := svc.GetUserByUsername(context.Background(), "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetUserByUsername = %v, want ErrNotFound", err)
	}
}

func TestUpdateUserChangesRole(t *testing.T) {
	svc, store := newUserServiceForTest()
	user := seedUser(store, "marta", "marta@example.com", entity.RoleUser)

	resp, err := svc.UpdateUser(context.Background(), "marta", &request.UpdateUserRequest{
		Role: strPtr("moderator"),
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	if resp.Role != entity.RoleModerator {
		t.Errorf("response role = %s, want %s", resp.Role, entity.RoleModerator)
	}
	if store.users[user.ID].Role != entity.RoleModerator {
		t.Error("role change should be persisted")
	}
}

func TestUpdateUserRenameToTakenUsername(t *testing.T) {
	svc, store := newUserServiceForTest()
	seedUser(store, "marta", "marta@example.com", entity.RoleUser)
	seedUser(store, "boris", "boris@example.com", entity.RoleUser)

	_, err := svc.UpdateUser(context.Background(), "marta", &request.UpdateUserRequest{
		Username: strPtr("boris"),
	})

	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("UpdateUser(taken username) = %v, want ErrUsernameTaken", err)
	}
}

func TestUpdateUserResubmitOwnUsername(t *testing.T) {
	svc, store := newUserServiceForTest()
	user := seedUser(store, "marta", "marta@example.com", entity.RoleUser)
	before := store.users[user.ID].UpdatedAt

	_, err := svc.UpdateUser(context.Background(), "marta", &request.UpdateUserRequest{
		Username: strPtr("marta"),
	})
	if err != nil {
		t.Fatalf("UpdateUser(own username) = %v, want success", err)
	}

	if !store.users[user.ID].UpdatedAt.Equal(before) {
		t.Error("resubmitting the current username should not touch the record")
	}
}

func TestUpdateUserReservedUsername(t *testing.T) {
	svc, store := newUserServiceForTest()
	seedUser(store, "marta", "marta@example.com", entity.RoleUser)

	_, err := svc.UpdateUser(context.Background(), "marta", &request.UpdateUserRequest{
		Username: strPtr("me"),
	})

	if !errors.Is(err, ErrReservedUsername) {
		t.Fatalf("UpdateUser(me) = %v, want ErrReservedUsername", err)
	}
}

func TestUpdateUserNotFound(t *testing.T) {
	svc, _ := newUserServiceForTest()

	_, err := svc.UpdateUser(context.Background(), "nobody", &request.UpdateUserRequest{
		Bio: strPtr("ghost"),
	})

	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateUser(unknown) = %v, want ErrNotFound", err)
	}
}

func TestDeleteUserRemovesAccount(t *testing.T) {
	svc, store := newUserServiceForTest()
	user := seedUser(store, "marta", "marta@example.com", entity.RoleUser)

	if err := svc.DeleteUser(context.Background(), "marta"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if _, ok := store.users[user.ID]; ok {
		t.Error("account should be gone")
	}

	if err := svc.DeleteUser(context.Background(), "marta"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second DeleteUser = %v, want ErrNotFound", err)
	}
}

func TestGetMeReturnsOwnProfile(t *testing.T) {
	svc, store := newUserServiceForTest()
	user := seedUser(store, "marta", "marta@example.com", entity.RoleUser)

	resp, err := svc.GetMe(context.Background(), permission.FromUser(user))
	if err != nil {
		t.Fatalf("GetMe: %v", err)
	}

	if resp.Username != "marta" || resp.Email != "marta@example.com" {
		t.Errorf("profile = %+v, want marta's", resp)
	}
}

func TestUpdateMeEditsProfile(t *testing.T) {
	svc, store := newUserServiceForTest()
	user := seedUser(store, "marta", "marta@example.com", entity.RoleUser)

	resp, err := svc.UpdateMe(context.Background(), permission.FromUser(user), &request.SelfUpdateRequest{
		FirstName: strPtr("Marta"),
		Bio:       strPtr("reads everything twice"),
	})
	if err != nil {
		t.Fatalf("UpdateMe: %v", err)
	}

	if resp.FirstName == nil || *resp.FirstName != "Marta" {
		t.Errorf("first name = %v, want Marta", resp.FirstName)
	}

	stored := store.users[user.ID]
	if stored.Bio == nil || *stored.Bio != "reads everything twice" {
		t.Error("bio change should be persisted")
	}
	if stored.Role != entity.RoleUser {
		t.Error("self update must not change the role")
	}
}

func TestUpdateMeRejectsTakenEmail(t *testing.T) {
	svc, store := newUserServiceForTest()
	user := seedUser(store, "marta", "marta@example.com", entity.RoleUser)
	seedUser(store, "boris", "boris@example.com", entity.RoleUser)

	_, err := svc.UpdateMe(context.Background(), permission.FromUser(user), &request.SelfUpdateRequest{
		Email: strPtr("boris@example.com"),
	})

	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("UpdateMe(taken email) = %v, want ErrEmailTaken", err)
	}
}
