// Copyright (c) 2026 Handraise. All rights reserved.

package organization_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handraise/handraise/internal/orgs/organization"
	"github.com/handraise/handraise/internal/platform/apperr"
	"github.com/handraise/handraise/pkg/pagination"
)

// fakeStore keeps organizations in memory.
type fakeStore struct {
	records map[string]*organization.Organization
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]*organization.Organization{}}
}

func (store *fakeStore) FindByID(_ context.Context, id string) (*organization.Organization, error) {
	record, ok := store.records[id]
	if !ok {
		return nil, apperr.NotFound("Organization")
	}
	return record, nil
}

func (store *fakeStore) FindBySlug(_ context.Context, slug string) (*organization.Organization, error) {
	for _, record := range store.records {
		if record.Slug == slug {
			return record, nil
		}
	}
	return nil, apperr.NotFound("Organization")
}

func (store *fakeStore) FindByOwner(_ context.Context, ownerUserID string) ([]*organization.Organization, error) {
	var records []*organization.Organization
	for _, record := range store.records {
		if record.OwnerUserID == ownerUserID {
			records = append(records, record)
		}
	}
	return records, nil
}

func (store *fakeStore) OwnerHasBlacklisted(_ context.Context, ownerUserID string) (bool, error) {
	for _, record := range store.records {
		if record.OwnerUserID == ownerUserID && record.Blacklisted {
			return true, nil
		}
	}
	return false, nil
}

func (store *fakeStore) Create(_ context.Context, record *organization.Organization) error {
	for _, existing := range store.records {
		if existing.Slug == record.Slug {
			return apperr.Conflict("An organization with this name already exists")
		}
	}
	store.records[record.ID] = record
	return nil
}

func (store *fakeStore) Update(_ context.Context, record *organization.Organization) error {
	store.records[record.ID] = record
	return nil
}

func (store *fakeStore) SetApprovalStatus(_ context.Context, id string, status organization.ApprovalStatus) error {
	if record, ok := store.records[id]; ok {
		record.ApprovalStatus = status
	}
	return nil
}

func (store *fakeStore) SetBlacklisted(_ context.Context, id string, blacklisted bool) error {
	if record, ok := store.records[id]; ok {
		record.Blacklisted = blacklisted
	}
	return nil
}

func (store *fakeStore) List(_ context.Context, status organization.ApprovalStatus, _ pagination.Params) ([]*organization.Organization, int, error) {
	var records []*organization.Organization
	for _, record := range store.records {
		if status == "" || record.ApprovalStatus == status {
			records = append(records, record)
		}
	}
	return records, len(records), nil
}

func newTestService() (*organization.Service, *fakeStore) {
	store := newFakeStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return organization.NewService(store, logger), store
}

/*
TestService_Register checks slug derivation and the pending default.
*/
func TestService_Register(t *testing.T) {
	service, _ := newTestService()

	org, err := service.Register(context.Background(), "owner-1", organization.RegisterInput{
		Name:         "Green City Cleanup!",
		Description:  "Neighborhood cleanups",
		ContactEmail: "hello@greencity.org",
	})
	require.NoError(t, err)

	assert.Equal(t, "green-city-cleanup", org.Slug)
	assert.Equal(t, organization.StatusPending, org.ApprovalStatus)
	assert.False(t, org.Blacklisted)
	assert.False(t, org.PubliclyVisible())
	assert.False(t, org.CanPublish())
}

/*
TestService_Update checks owner-only edits and the immutable slug.
*/
func TestService_Update(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	org, err := service.Register(ctx, "owner-1", organization.RegisterInput{Name: "Green City Cleanup"})
	require.NoError(t, err)

	newName := "Greener City Cleanup"
	updated, err := service.Update(ctx, "owner-1", org.ID, organization.UpdateInput{Name: &newName})
	require.NoError(t, err)

	assert.Equal(t, "Greener City Cleanup", updated.Name)
	assert.Equal(t, "green-city-cleanup", updated.Slug, "renaming must not break published links")

	_, err = service.Update(ctx, "intruder", org.ID, organization.UpdateInput{Name: &newName})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

/*
TestService_GetBySlug checks that only approved, non-blacklisted organizations
are publicly readable and every hidden state answers identically.
*/
func TestService_GetBySlug(t *testing.T) {
	tests := []struct {
		name    string
		status  organization.ApprovalStatus
		flagged bool
		visible bool
	}{
		{"approved", organization.StatusApproved, false, true},
		{"pending", organization.StatusPending, false, false},
		{"rejected", organization.StatusRejected, false, false},
		{"approved_but_blacklisted", organization.StatusApproved, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, store := newTestService()
			store.records["org-1"] = &organization.Organization{
				ID:             "org-1",
				OwnerUserID:    "owner-1",
				Slug:           "green-city",
				ApprovalStatus: tt.status,
				Blacklisted:    tt.flagged,
			}

			org, err := service.GetBySlug(context.Background(), "green-city")

			if tt.visible {
				require.NoError(t, err)
				assert.Equal(t, "org-1", org.ID)
			} else {
				require.Error(t, err)
				// Identical to a slug that truly does not exist.
				assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
			}
		})
	}
}

/*
TestService_ApprovalFunnel checks the moderator state changes and their effect
on publishing capability.
*/
func TestService_ApprovalFunnel(t *testing.T) {
	service, store := newTestService()
	ctx := context.Background()

	org, err := service.Register(ctx, "owner-1", organization.RegisterInput{Name: "Green City"})
	require.NoError(t, err)

	require.NoError(t, service.Approve(ctx, org.ID))
	assert.Equal(t, organization.StatusApproved, store.records[org.ID].ApprovalStatus)
	assert.True(t, store.records[org.ID].CanPublish())

	require.NoError(t, service.Reject(ctx, org.ID))
	assert.Equal(t, organization.StatusRejected, store.records[org.ID].ApprovalStatus)
	assert.False(t, store.records[org.ID].CanPublish())

	// Unknown organization surfaces the lookup failure.
	err = service.Approve(ctx, "ghost")
	assert.Error(t, err)
}

/*
TestService_Blacklist checks the blacklist flag and the owner login gate.
*/
func TestService_Blacklist(t *testing.T) {
	service, store := newTestService()
	ctx := context.Background()

	org, err := service.Register(ctx, "owner-1", organization.RegisterInput{Name: "Green City"})
	require.NoError(t, err)
	require.NoError(t, service.Approve(ctx, org.ID))

	blocked, err := service.OwnsBlacklistedOrganization(ctx, "owner-1")
	require.NoError(t, err)
	assert.False(t, blocked)

	require.NoError(t, service.Blacklist(ctx, org.ID))

	assert.True(t, store.records[org.ID].Blacklisted)
	assert.False(t, store.records[org.ID].PubliclyVisible(), "blacklisting hides an approved org")

	blocked, err = service.OwnsBlacklistedOrganization(ctx, "owner-1")
	require.NoError(t, err)
	assert.True(t, blocked)

	require.NoError(t, service.Unblacklist(ctx, org.ID))
	blocked, err = service.OwnsBlacklistedOrganization(ctx, "owner-1")
	require.NoError(t, err)
	assert.False(t, blocked)
}

/*
TestService_ListOwned checks that owners see their whole funnel, hidden states
included.
*/
func TestService_ListOwned(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	_, err := service.Register(ctx, "owner-1", organization.RegisterInput{Name: "First Org"})
	require.NoError(t, err)
	second, err := service.Register(ctx, "owner-1", organization.RegisterInput{Name: "Second Org"})
	require.NoError(t, err)
	require.NoError(t, service.Reject(ctx, second.ID))

	owned, err := service.ListOwned(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	other, err := service.ListOwned(ctx, "owner-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}
