package requests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galvan-crm/galvan/internal/cache"
	"github.com/galvan-crm/galvan/internal/platform/httpx"
)

type mockRepo struct {
	approveCalls int
	rejectCalls  int
	lastID       string
	lastBy       string
	lastReason   string
	row          map[string]any
	err          error
	count        int64
}

func (m *mockRepo) Approve(ctx context.Context, id, processedBy string) (map[string]any, error) {
	m.approveCalls++
	m.lastID, m.lastBy = id, processedBy
	return m.row, m.err
}

func (m *mockRepo) Reject(ctx context.Context, id, processedBy, reason string) (map[string]any, error) {
	m.rejectCalls++
	m.lastID, m.lastBy, m.lastReason = id, processedBy, reason
	return m.row, m.err
}

func (m *mockRepo) Count(ctx context.Context, status, createdBy string) (int64, error) {
	return m.count, m.err
}

func newTestService(repo Repository) *Service {
	return NewService(repo, cache.New(nil, 0, nil), nil)
}

func TestApprove(t *testing.T) {
	repo := &mockRepo{row: map[string]any{"id": "r1", "status": "approved"}}
	svc := newTestService(repo)

	row, err := svc.Approve(context.Background(), "r1", ApproveInput{ProcessedBy: "admin"})
	require.NoError(t, err)
	require.Equal(t, "approved", row["status"])
	require.Equal(t, "r1", repo.lastID)
	require.Equal(t, "admin", repo.lastBy)
}

func TestApproveRequiresProcessedBy(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo)

	_, err := svc.Approve(context.Background(), "r1", ApproveInput{})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Zero(t, repo.approveCalls, "repo must not be reached on invalid input")
}

func TestReject(t *testing.T) {
	repo := &mockRepo{row: map[string]any{"id": "r1", "status": "rejected"}}
	svc := newTestService(repo)

	row, err := svc.Reject(context.Background(), "r1", RejectInput{
		ProcessedBy:     "admin",
		RejectionReason: "out of spec",
	})
	require.NoError(t, err)
	require.Equal(t, "rejected", row["status"])
	require.Equal(t, "out of spec", repo.lastReason)
}

func TestRejectRequiresReason(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo)

	_, err := svc.Reject(context.Background(), "r1", RejectInput{ProcessedBy: "admin"})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Zero(t, repo.rejectCalls)
}

func TestProcessedRequestIsNotFound(t *testing.T) {
	// The repository guards the transition with status = 'pending', so an
	// already-processed request surfaces as not found.
	repo := &mockRepo{err: httpx.ErrNotFound}
	svc := newTestService(repo)

	_, err := svc.Approve(context.Background(), "r1", ApproveInput{ProcessedBy: "admin"})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestCount(t *testing.T) {
	repo := &mockRepo{count: 7}
	svc := newTestService(repo)

	n, err := svc.Count(context.Background(), "pending", "")
	require.NoError(t, err)
	require.EqualValues(t, 7, n)
}
