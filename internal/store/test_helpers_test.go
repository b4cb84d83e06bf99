package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"
)

var testEpoch = time.Date(2025, time.January, 15, 9, 30, 0, 0, time.UTC)

// createTestStore creates a new store in a temporary directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestUser creates an active user with minimal required fields.
func createTestUser(t *testing.T, s *Store, id, email string) User {
	t.Helper()
	u := User{
		ID:           id,
		Email:        email,
		Username:     id,
		PasswordHash: "$2a$10$hash",
		IsActive:     true,
		CreatedAt:    testEpoch,
		UpdatedAt:    testEpoch,
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return u
}

// createTestProject builds a project record with minimal required fields.
func createTestProject(id, ownerID, name string, at time.Time) Project {
	return Project{
		ID:           id,
		UserID:       ownerID,
		ProjectName:  name,
		TeamConfig:   json.RawMessage(`{"projectName":"` + name + `","agents":[],"features":[]}`),
		ConfigDigest: "digest-" + id,
		Status:       "not_started",
		CreatedAt:    at,
		UpdatedAt:    at,
	}
}

func strPtr(s string) *string { return &s }
