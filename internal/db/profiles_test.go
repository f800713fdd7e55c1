package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestEnsureProfile_Idempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := createUser(t, db, "ensure")

	profile, err := db.EnsureProfile(ctx, user.ID, 10)
	if err != nil {
		t.Fatalf("EnsureProfile() error = %v", err)
	}
	if profile.KeywordQuota != 10 {
		t.Errorf("EnsureProfile() quota = %d, want 10", profile.KeywordQuota)
	}
	if profile.IsBlocked {
		t.Error("EnsureProfile() created blocked profile")
	}

	// A second call with a different default does not overwrite the row.
	again, err := db.EnsureProfile(ctx, user.ID, 99)
	if err != nil {
		t.Fatalf("EnsureProfile() second call error = %v", err)
	}
	if again.KeywordQuota != 10 {
		t.Errorf("EnsureProfile() second call quota = %d, want 10", again.KeywordQuota)
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := db.GetProfile(context.Background(), uuid.New())
	if !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("GetProfile() error = %v, want ErrProfileNotFound", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := createUser(t, db, "update-profile")
	if _, err := db.EnsureProfile(ctx, user.ID, 10); err != nil {
		t.Fatalf("EnsureProfile() error = %v", err)
	}

	quota := 5
	profile, err := db.UpdateProfile(ctx, user.ID, &quota, nil)
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if profile.KeywordQuota != 5 {
		t.Errorf("UpdateProfile() quota = %d, want 5", profile.KeywordQuota)
	}
	if profile.IsBlocked {
		t.Error("UpdateProfile() changed untouched is_blocked")
	}

	blocked := true
	profile, err = db.UpdateProfile(ctx, user.ID, nil, &blocked)
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if !profile.IsBlocked {
		t.Error("UpdateProfile() did not set is_blocked")
	}
	if profile.KeywordQuota != 5 {
		t.Errorf("UpdateProfile() quota = %d, want unchanged 5", profile.KeywordQuota)
	}

	// Missing profile
	_, err = db.UpdateProfile(ctx, uuid.New(), &quota, nil)
	if !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("UpdateProfile() error = %v, want ErrProfileNotFound", err)
	}
}

func TestListProfiles(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	alice := createUser(t, db, "alice-profiles")
	bob := createUser(t, db, "bob-profiles")
	db.EnsureProfile(ctx, alice.ID, 10)
	db.EnsureProfile(ctx, bob.ID, 20)

	profiles, err := db.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("ListProfiles() error = %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("ListProfiles() = %d profiles, want 2", len(profiles))
	}
	for _, p := range profiles {
		if p.Email == "" {
			t.Error("ListProfiles() missing user identity")
		}
	}
}
