package services

import (
	"context"
	"errors"
	"testing"

	"github.com/nutrisync/nutrisync-bot/internal/domain"
	apperrors "github.com/nutrisync/nutrisync-bot/internal/errors"
	"github.com/stretchr/testify/require"
)

// fakeReasoning returns canned text and lets a test hook run between the
// request going out and the response coming back, to simulate a user reset
// while the call is in flight.
type fakeReasoning struct {
	calls    int
	response string
	err      error
	inFlight func()
	lastReq  *domain.AnalysisRequest
}

func (f *fakeReasoning) Generate(ctx context.Context, req *domain.AnalysisRequest) (string, error) {
	f.calls++
	f.lastReq = req
	if f.inFlight != nil {
		f.inFlight()
	}
	return f.response, f.err
}

func newPipeline(reasoning *fakeReasoning) (*AnalysisService, *fakePersistence) {
	store := newFakePersistence()
	history := NewHistoryService(store, 50)
	entitlements := NewEntitlementService(store)
	return NewAnalysisService(reasoning, history, entitlements), store
}

func submission() ([]domain.Attachment, []domain.Attachment) {
	return []domain.Attachment{att("report")}, []domain.Attachment{att("food")}
}

func TestAnalyzeMeal_Success(t *testing.T) {
	reasoning := &fakeReasoning{response: validPayload}
	svc, _ := newPipeline(reasoning)
	session := NewSession()
	user := freeUser(3)
	reports, foods := submission()

	result, err := svc.AnalyzeMeal(context.Background(), session, user, reports, foods)
	require.NoError(t, err)

	require.Equal(t, 2, user.Credits, "one credit burned")
	require.Equal(t, user.OwnerID(), result.OwnerID)
	require.Equal(t, StateDisplaying, session.State())

	log := svc.history.List(context.Background(), user.OwnerID())
	require.Len(t, log, 1)
	require.Equal(t, result.ID, log[0].ID)
	require.True(t, log[0].Synced, "appended entry synced right after the analysis")
}

func TestAnalyzeMeal_InstructionAndOrdering(t *testing.T) {
	reasoning := &fakeReasoning{response: validPayload}
	svc, _ := newPipeline(reasoning)

	reports := []domain.Attachment{att("r1"), att("r2")}
	foods := []domain.Attachment{att("f1")}
	_, err := svc.AnalyzeMeal(context.Background(), NewSession(), freeUser(3), reports, foods)
	require.NoError(t, err)

	req := reasoning.lastReq
	require.NotEmpty(t, req.Instruction)
	all := req.Attachments()
	require.Equal(t, []string{"r1", "r2", "f1"}, []string{all[0].DisplayHandle, all[1].DisplayHandle, all[2].DisplayHandle})
}

func TestAnalyzeMeal_ExhaustedCreditsNeverCallOut(t *testing.T) {
	reasoning := &fakeReasoning{response: validPayload}
	svc, _ := newPipeline(reasoning)
	session := NewSession()
	reports, foods := submission()

	_, err := svc.AnalyzeMeal(context.Background(), session, freeUser(0), reports, foods)
	require.ErrorIs(t, err, apperrors.ErrCreditsExhausted)
	require.Equal(t, 0, reasoning.calls, "gate runs before the reasoning call")
	require.Equal(t, StateIdle, session.State())
}

func TestAnalyzeMeal_EmptySubmissionNeverCallsOut(t *testing.T) {
	reasoning := &fakeReasoning{response: validPayload}
	svc, _ := newPipeline(reasoning)

	_, err := svc.AnalyzeMeal(context.Background(), NewSession(), freeUser(3), nil, []domain.Attachment{att("f")})
	require.ErrorIs(t, err, apperrors.ErrNoReportAttachments)

	_, err = svc.AnalyzeMeal(context.Background(), NewSession(), freeUser(3), []domain.Attachment{att("r")}, nil)
	require.ErrorIs(t, err, apperrors.ErrNoFoodAttachments)

	require.Equal(t, 0, reasoning.calls)
}

func TestAnalyzeMeal_MalformedResponseLeavesStateUntouched(t *testing.T) {
	reasoning := &fakeReasoning{response: "I could not process the images, sorry!"}
	svc, _ := newPipeline(reasoning)
	session := NewSession()
	user := freeUser(3)
	reports, foods := submission()

	_, err := svc.AnalyzeMeal(context.Background(), session, user, reports, foods)
	require.ErrorIs(t, err, apperrors.ErrMalformedResponse)

	require.Equal(t, 3, user.Credits, "failed analysis costs nothing")
	require.Empty(t, svc.history.List(context.Background(), user.OwnerID()))
	require.Equal(t, StateErrored, session.State())
}

func TestAnalyzeMeal_EmptyResponse(t *testing.T) {
	reasoning := &fakeReasoning{response: "   "}
	svc, _ := newPipeline(reasoning)
	user := freeUser(3)
	reports, foods := submission()

	_, err := svc.AnalyzeMeal(context.Background(), NewSession(), user, reports, foods)
	require.ErrorIs(t, err, apperrors.ErrEmptyResponse)
	require.Equal(t, 3, user.Credits)
}

func TestAnalyzeMeal_ServiceFailure(t *testing.T) {
	reasoning := &fakeReasoning{err: errors.New("upstream 503")}
	svc, _ := newPipeline(reasoning)
	session := NewSession()
	user := freeUser(3)
	reports, foods := submission()

	_, err := svc.AnalyzeMeal(context.Background(), session, user, reports, foods)
	require.Error(t, err)
	require.Equal(t, 3, user.Credits)
	require.Equal(t, StateErrored, session.State())
}

func TestAnalyzeMeal_ResetMidFlightDiscardsResponse(t *testing.T) {
	session := NewSession()
	reasoning := &fakeReasoning{
		response: validPayload,
		inFlight: session.Reset,
	}
	svc, store := newPipeline(reasoning)
	user := freeUser(3)
	reports, foods := submission()

	_, err := svc.AnalyzeMeal(context.Background(), session, user, reports, foods)
	require.ErrorIs(t, err, apperrors.ErrStaleResponse)

	require.Equal(t, 3, user.Credits, "stale response must not burn a credit")
	require.Empty(t, svc.history.List(context.Background(), user.OwnerID()))
	require.Equal(t, 0, store.saveHistory)
	require.Equal(t, StateIdle, session.State())
}

func TestAnalyzeMeal_RefusedWhileInFlight(t *testing.T) {
	reasoning := &fakeReasoning{response: validPayload}
	svc, _ := newPipeline(reasoning)
	session := NewSession()
	_, err := session.Begin()
	require.NoError(t, err)

	reports, foods := submission()
	_, err = svc.AnalyzeMeal(context.Background(), session, freeUser(3), reports, foods)
	require.ErrorIs(t, err, apperrors.ErrAnalysisInFlight)
}

func TestAnalyzeMeal_OwnerIsolation(t *testing.T) {
	reasoning := &fakeReasoning{response: validPayload}
	svc, _ := newPipeline(reasoning)
	reports, foods := submission()

	alice := freeUser(3)
	bob := &domain.UserProfile{ID: 2, TelegramID: 200, Tier: domain.TierFree, Credits: 3}

	_, err := svc.AnalyzeMeal(context.Background(), NewSession(), alice, reports, foods)
	require.NoError(t, err)

	require.Len(t, svc.history.List(context.Background(), alice.OwnerID()), 1)
	require.Empty(t, svc.history.List(context.Background(), bob.OwnerID()))
}

func TestAnalyzeMeal_PersistenceFailureDoesNotFailAnalysis(t *testing.T) {
	reasoning := &fakeReasoning{response: validPayload}
	store := newFakePersistence()
	store.failSave = true
	history := NewHistoryService(store, 50)
	svc := NewAnalysisService(reasoning, history, NewEntitlementService(store))
	user := freeUser(3)
	reports, foods := submission()

	result, err := svc.AnalyzeMeal(context.Background(), NewSession(), user, reports, foods)
	require.NoError(t, err, "storage trouble must not cost the user their result")
	require.NotNil(t, result)
	require.Len(t, history.List(context.Background(), user.OwnerID()), 1)
}
