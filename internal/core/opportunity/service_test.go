// Copyright (c) 2026 Handraise. All rights reserved.

package opportunity_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handraise/handraise/internal/core/opportunity"
	"github.com/handraise/handraise/internal/orgs/organization"
	"github.com/handraise/handraise/internal/platform/apperr"
	"github.com/handraise/handraise/pkg/pagination"
)

// # Test Doubles

type fakeOpportunities struct {
	records map[string]*opportunity.Opportunity
}

func (store *fakeOpportunities) FindByID(_ context.Context, id string) (*opportunity.Opportunity, error) {
	record, ok := store.records[id]
	if !ok {
		return nil, apperr.NotFound("Opportunity")
	}
	return record, nil
}

func (store *fakeOpportunities) FindBySlug(_ context.Context, slug string) (*opportunity.Opportunity, error) {
	for _, record := range store.records {
		if record.Slug == slug {
			return record, nil
		}
	}
	return nil, apperr.NotFound("Opportunity")
}

func (store *fakeOpportunities) Create(_ context.Context, record *opportunity.Opportunity) error {
	store.records[record.ID] = record
	return nil
}

func (store *fakeOpportunities) Update(_ context.Context, record *opportunity.Opportunity) error {
	store.records[record.ID] = record
	return nil
}

func (store *fakeOpportunities) SetStatus(_ context.Context, id string, status opportunity.Status) error {
	if record, ok := store.records[id]; ok {
		record.Status = status
	}
	return nil
}

func (store *fakeOpportunities) ListPublished(_ context.Context, filter opportunity.ListFilter, _ pagination.Params) ([]*opportunity.Opportunity, int, error) {
	var records []*opportunity.Opportunity
	for _, record := range store.records {
		if record.Status != opportunity.StatusPublished {
			continue
		}
		if filter.Remote != nil && record.Remote != *filter.Remote {
			continue
		}
		records = append(records, record)
	}
	return records, len(records), nil
}

func (store *fakeOpportunities) ListByOrganization(_ context.Context, organizationID string) ([]*opportunity.Opportunity, error) {
	var records []*opportunity.Opportunity
	for _, record := range store.records {
		if record.OrganizationID == organizationID {
			records = append(records, record)
		}
	}
	return records, nil
}

type fakeOrganizations struct {
	records map[string]*organization.Organization
}

func (store *fakeOrganizations) FindByID(_ context.Context, id string) (*organization.Organization, error) {
	record, ok := store.records[id]
	if !ok {
		return nil, apperr.NotFound("Organization")
	}
	return record, nil
}

func (store *fakeOrganizations) FindBySlug(_ context.Context, _ string) (*organization.Organization, error) {
	return nil, apperr.NotFound("Organization")
}

func (store *fakeOrganizations) FindByOwner(_ context.Context, _ string) ([]*organization.Organization, error) {
	return nil, nil
}

func (store *fakeOrganizations) OwnerHasBlacklisted(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (store *fakeOrganizations) Create(_ context.Context, record *organization.Organization) error {
	store.records[record.ID] = record
	return nil
}

func (store *fakeOrganizations) Update(_ context.Context, record *organization.Organization) error {
	store.records[record.ID] = record
	return nil
}

func (store *fakeOrganizations) SetApprovalStatus(_ context.Context, _ string, _ organization.ApprovalStatus) error {
	return nil
}

func (store *fakeOrganizations) SetBlacklisted(_ context.Context, _ string, _ bool) error {
	return nil
}

func (store *fakeOrganizations) List(_ context.Context, _ organization.ApprovalStatus, _ pagination.Params) ([]*organization.Organization, int, error) {
	return nil, 0, nil
}

type testEnv struct {
	service       *opportunity.Service
	opportunities *fakeOpportunities
	organizations *fakeOrganizations
}

func newTestEnv() *testEnv {
	env := &testEnv{
		opportunities: &fakeOpportunities{records: map[string]*opportunity.Opportunity{}},
		organizations: &fakeOrganizations{records: map[string]*organization.Organization{}},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.service = opportunity.NewService(env.opportunities, env.organizations, logger)
	return env
}

func (env *testEnv) seedOrg(id, owner string, status organization.ApprovalStatus, blacklisted bool) {
	env.organizations.records[id] = &organization.Organization{
		ID:             id,
		OwnerUserID:    owner,
		ApprovalStatus: status,
		Blacklisted:    blacklisted,
	}
}

// # Lifecycle

/*
TestService_Create checks drafting under an approved organization.
*/
func TestService_Create(t *testing.T) {
	env := newTestEnv()
	env.seedOrg("org-1", "owner-1", organization.StatusApproved, false)

	opp, err := env.service.Create(context.Background(), "owner-1", opportunity.CreateInput{
		OrganizationID: "org-1",
		Title:          "Beach Cleanup Day",
		Location:       "Santa Cruz",
		Capacity:       10,
	})
	require.NoError(t, err)

	assert.Equal(t, "beach-cleanup-day", opp.Slug)
	assert.Equal(t, opportunity.StatusDraft, opp.Status)
	assert.False(t, opp.AcceptsApplications())
}

/*
TestService_Create_PublisherGates checks the ownership and approval
preconditions for drafting.
*/
func TestService_Create_PublisherGates(t *testing.T) {
	tests := []struct {
		name  string
		seed  func(env *testEnv)
		owner string
	}{
		{
			"not_the_owner",
			func(env *testEnv) { env.seedOrg("org-1", "owner-1", organization.StatusApproved, false) },
			"intruder",
		},
		{
			"pending_organization",
			func(env *testEnv) { env.seedOrg("org-1", "owner-1", organization.StatusPending, false) },
			"owner-1",
		},
		{
			"rejected_organization",
			func(env *testEnv) { env.seedOrg("org-1", "owner-1", organization.StatusRejected, false) },
			"owner-1",
		},
		{
			"blacklisted_organization",
			func(env *testEnv) { env.seedOrg("org-1", "owner-1", organization.StatusApproved, true) },
			"owner-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			tt.seed(env)

			_, err := env.service.Create(context.Background(), tt.owner, opportunity.CreateInput{
				OrganizationID: "org-1",
				Title:          "Beach Cleanup Day",
			})
			require.Error(t, err)
			assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
		})
	}
}

/*
TestService_Update checks owner edits and the immutable slug.
*/
func TestService_Update(t *testing.T) {
	env := newTestEnv()
	env.seedOrg("org-1", "owner-1", organization.StatusApproved, false)
	ctx := context.Background()

	opp, err := env.service.Create(ctx, "owner-1", opportunity.CreateInput{
		OrganizationID: "org-1",
		Title:          "Beach Cleanup Day",
		Capacity:       10,
	})
	require.NoError(t, err)

	newTitle := "Beach Cleanup Weekend"
	smaller := 2
	updated, err := env.service.Update(ctx, "owner-1", opp.ID, opportunity.UpdateInput{
		Title:    &newTitle,
		Capacity: &smaller,
	})
	require.NoError(t, err)

	assert.Equal(t, "Beach Cleanup Weekend", updated.Title)
	assert.Equal(t, "beach-cleanup-day", updated.Slug)
	assert.Equal(t, 2, updated.Capacity)
}

/*
TestService_PublishAndClose checks the status transitions and their effect on
application acceptance.
*/
func TestService_PublishAndClose(t *testing.T) {
	env := newTestEnv()
	env.seedOrg("org-1", "owner-1", organization.StatusApproved, false)
	ctx := context.Background()

	opp, err := env.service.Create(ctx, "owner-1", opportunity.CreateInput{
		OrganizationID: "org-1",
		Title:          "Beach Cleanup Day",
	})
	require.NoError(t, err)

	require.NoError(t, env.service.Publish(ctx, "owner-1", opp.ID))
	assert.Equal(t, opportunity.StatusPublished, env.opportunities.records[opp.ID].Status)
	assert.True(t, env.opportunities.records[opp.ID].AcceptsApplications())

	require.NoError(t, env.service.Close(ctx, "owner-1", opp.ID))
	assert.Equal(t, opportunity.StatusClosed, env.opportunities.records[opp.ID].Status)
	assert.False(t, env.opportunities.records[opp.ID].AcceptsApplications())

	// A closed opportunity can re-open.
	require.NoError(t, env.service.Publish(ctx, "owner-1", opp.ID))
	assert.True(t, env.opportunities.records[opp.ID].AcceptsApplications())

	// Only the owner can transition.
	err = env.service.Close(ctx, "intruder", opp.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

// # Reads

/*
TestService_GetBySlug checks draft hiding and the public readability of
published and closed opportunities.
*/
func TestService_GetBySlug(t *testing.T) {
	tests := []struct {
		status  opportunity.Status
		visible bool
	}{
		{opportunity.StatusDraft, false},
		{opportunity.StatusPublished, true},
		{opportunity.StatusClosed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			env := newTestEnv()
			env.opportunities.records["opp-1"] = &opportunity.Opportunity{
				ID:     "opp-1",
				Slug:   "beach-cleanup-day",
				Status: tt.status,
			}

			opp, err := env.service.GetBySlug(context.Background(), "beach-cleanup-day")

			if tt.visible {
				require.NoError(t, err)
				assert.Equal(t, "opp-1", opp.ID)
			} else {
				require.Error(t, err)
				assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
			}
		})
	}
}

/*
TestService_ListForOrganization checks the owner-scoped listing, drafts
included.
*/
func TestService_ListForOrganization(t *testing.T) {
	env := newTestEnv()
	env.seedOrg("org-1", "owner-1", organization.StatusApproved, false)
	ctx := context.Background()

	_, err := env.service.Create(ctx, "owner-1", opportunity.CreateInput{
		OrganizationID: "org-1",
		Title:          "Draft Event",
	})
	require.NoError(t, err)
	published, err := env.service.Create(ctx, "owner-1", opportunity.CreateInput{
		OrganizationID: "org-1",
		Title:          "Live Event",
	})
	require.NoError(t, err)
	require.NoError(t, env.service.Publish(ctx, "owner-1", published.ID))

	records, err := env.service.ListForOrganization(ctx, "owner-1", "org-1")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = env.service.ListForOrganization(ctx, "intruder", "org-1")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

/*
TestService_ListPublic checks that only published opportunities surface.
*/
func TestService_ListPublic(t *testing.T) {
	env := newTestEnv()
	env.opportunities.records["opp-1"] = &opportunity.Opportunity{ID: "opp-1", Status: opportunity.StatusPublished}
	env.opportunities.records["opp-2"] = &opportunity.Opportunity{ID: "opp-2", Status: opportunity.StatusDraft}
	env.opportunities.records["opp-3"] = &opportunity.Opportunity{ID: "opp-3", Status: opportunity.StatusClosed}

	records, total, err := env.service.ListPublic(context.Background(), opportunity.ListFilter{}, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, records, 1)
	assert.Equal(t, "opp-1", records[0].ID)
}
