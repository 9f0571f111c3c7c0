// FILE: internal/service/search_service_test.go
package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"medivault-be/internal/dto"
	"medivault-be/internal/entity"
	"medivault-be/internal/repository/contract"
	"medivault-be/internal/repository/memory"
	"medivault-be/internal/repository/specification"
	"medivault-be/internal/repository/unitofwork"
	"medivault-be/pkg/llm"
	"medivault-be/pkg/search"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeDocumentRepo struct {
	docs []*entity.Document
	err  error
}

func (f *fakeDocumentRepo) Create(ctx context.Context, doc *entity.Document) error { return nil }
func (f *fakeDocumentRepo) Update(ctx context.Context, doc *entity.Document) error { return nil }
func (f *fakeDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error         { return nil }
func (f *fakeDocumentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	return nil, nil
}
func (f *fakeDocumentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	return f.docs, f.err
}
func (f *fakeDocumentRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(f.docs)), f.err
}

type fakeUnitOfWork struct {
	repo *fakeDocumentRepo
}

func (f *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (f *fakeUnitOfWork) Commit() error                   { return nil }
func (f *fakeUnitOfWork) Rollback() error                 { return nil }

func (f *fakeUnitOfWork) DocumentRepository() contract.DocumentRepository { return f.repo }

type fakeFactory struct {
	repo *fakeDocumentRepo
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{repo: f.repo}
}

type fakeProvider struct {
	response string
	err      error
	calls    int
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.calls++
	return f.response, f.err
}

type capturingPublisher struct {
	events []*dto.SearchEventMessage
}

func (c *capturingPublisher) PublishSearchEvent(ctx context.Context, event *dto.SearchEventMessage) error {
	c.events = append(c.events, event)
	return nil
}

// --- helpers ---

func serviceCorpus() []*entity.Document {
	return []*entity.Document{
		{Id: uuid.New(), DisplayName: "Annual Blood Panel", Filename: "blood_panel.pdf", SearchSummary: "Cholesterol slightly elevated"},
		{Id: uuid.New(), DisplayName: "Lisinopril Prescription", Filename: "rx_lisinopril.pdf", SearchSummary: "Blood pressure medication"},
	}
}

func newTestService(docs []*entity.Document, provider *fakeProvider) (ISearchService, *capturingPublisher, contract.SessionStore) {
	publisher := &capturingPublisher{}
	sessions := memory.NewSessionRepository(time.Hour)
	svc := NewSearchService(
		&fakeFactory{repo: &fakeDocumentRepo{docs: docs}},
		provider,
		sessions,
		publisher,
		5*time.Second,
	)
	return svc, publisher, sessions
}

// --- tests ---

func TestSearchDocumentsModeSkipsGeneration(t *testing.T) {
	provider := &fakeProvider{err: errors.New("must not be called")}
	svc, _, _ := newTestService(serviceCorpus(), provider)

	resp, err := svc.Search(context.Background(), uuid.New(), &dto.SearchRequest{Query: "show all prescriptions"})
	require.NoError(t, err)

	assert.Equal(t, "documents", resp.Type)
	require.Len(t, resp.Documents, 1)
	assert.Equal(t, "Lisinopril Prescription", resp.Documents[0].DisplayName)
	assert.False(t, resp.Fallback)
	assert.Zero(t, provider.calls, "documents mode must not call the model")
}

func TestSearchSummaryMode(t *testing.T) {
	provider := &fakeProvider{
		response: `{"answer": "Your records show mild cholesterol elevation.", "references": ["Annual Blood Panel"]}`,
	}
	svc, publisher, _ := newTestService(serviceCorpus(), provider)

	resp, err := svc.Search(context.Background(), uuid.New(), &dto.SearchRequest{Query: "cholesterol trends"})
	require.NoError(t, err)

	assert.Equal(t, "summary", resp.Type)
	assert.Equal(t, "Your records show mild cholesterol elevation.", resp.Summary)
	require.Len(t, resp.ReferencedDocuments, 1)
	assert.Equal(t, "Annual Blood Panel", resp.ReferencedDocuments[0].DisplayName)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, "summary", publisher.events[0].Mode)
	assert.False(t, publisher.events[0].Fallback)
}

func TestSearchAnswerMode(t *testing.T) {
	provider := &fakeProvider{
		response: `{"answer": "Your LDL is 131 mg/dL.", "references": []}`,
	}
	svc, _, _ := newTestService(serviceCorpus(), provider)

	resp, err := svc.Search(context.Background(), uuid.New(), &dto.SearchRequest{Query: "what is my LDL?"})
	require.NoError(t, err)

	assert.Equal(t, "answer", resp.Type)
	assert.Equal(t, "Your LDL is 131 mg/dL.", resp.Answer)
	assert.Empty(t, resp.ReferencedDocuments)
}

func TestSearchGenerationFailureFallsBack(t *testing.T) {
	provider := &fakeProvider{err: errors.New("model offline")}
	svc, publisher, _ := newTestService(serviceCorpus(), provider)

	resp, err := svc.Search(context.Background(), uuid.New(), &dto.SearchRequest{Query: "cholesterol trends"})
	require.NoError(t, err, "generation failure must not surface as an error")

	assert.Equal(t, "documents", resp.Type)
	assert.True(t, resp.Fallback)
	assert.Equal(t, "generation failed", resp.FallbackReason)
	assert.NotEmpty(t, resp.Documents)

	require.Len(t, publisher.events, 1)
	assert.True(t, publisher.events[0].Fallback)
}

func TestSearchMalformedOutputFallsBack(t *testing.T) {
	provider := &fakeProvider{response: "I do not feel like emitting JSON today."}
	svc, _, _ := newTestService(serviceCorpus(), provider)

	resp, err := svc.Search(context.Background(), uuid.New(), &dto.SearchRequest{Query: "cholesterol trends"})
	require.NoError(t, err)

	assert.Equal(t, "documents", resp.Type)
	assert.True(t, resp.Fallback)
	assert.Equal(t, "model returned malformed output", resp.FallbackReason)
}

func TestSearchCorpusFailureIsHardError(t *testing.T) {
	publisher := &capturingPublisher{}
	svc := NewSearchService(
		&fakeFactory{repo: &fakeDocumentRepo{err: errors.New("connection refused")}},
		&fakeProvider{},
		memory.NewSessionRepository(time.Hour),
		publisher,
		5*time.Second,
	)

	resp, err := svc.Search(context.Background(), uuid.New(), &dto.SearchRequest{Query: "cholesterol trends"})
	require.Error(t, err)
	assert.Nil(t, resp)

	var corpusErr *search.CorpusError
	assert.ErrorAs(t, err, &corpusErr)
}

func TestSearchUnmatchedReferencesReported(t *testing.T) {
	provider := &fakeProvider{
		response: `{"answer": "ok", "references": ["Annual Blood Panel", "Dental Records"]}`,
	}
	svc, publisher, _ := newTestService(serviceCorpus(), provider)

	resp, err := svc.Search(context.Background(), uuid.New(), &dto.SearchRequest{Query: "cholesterol trends"})
	require.NoError(t, err)

	require.Len(t, resp.ReferencedDocuments, 1)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, []string{"Dental Records"}, publisher.events[0].UnmatchedReferences)
}

func TestSearchDuplicateCitationsDeduped(t *testing.T) {
	provider := &fakeProvider{
		response: `{"answer": "ok", "references": ["Annual Blood Panel", "blood_panel.pdf"]}`,
	}
	svc, _, _ := newTestService(serviceCorpus(), provider)

	resp, err := svc.Search(context.Background(), uuid.New(), &dto.SearchRequest{Query: "cholesterol trends"})
	require.NoError(t, err)

	require.Len(t, resp.ReferencedDocuments, 1, "same document cited twice should appear once")
}

func TestSearchChatModeKeepsTranscript(t *testing.T) {
	provider := &fakeProvider{
		response: `{"answer": "Happy to talk it through.", "references": []}`,
	}
	svc, _, sessions := newTestService(serviceCorpus(), provider)
	userId := uuid.New()

	resp, err := svc.Search(context.Background(), userId, &dto.SearchRequest{Query: "let's talk about my cholesterol"})
	require.NoError(t, err)

	assert.Equal(t, "chat", resp.Type)
	assert.Equal(t, "Happy to talk it through.", resp.Chat)
	require.NotEmpty(t, resp.SessionId)

	sess, found, err := sessions.Get(context.Background(), resp.SessionId)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, sess.Turns, 2)
	assert.Equal(t, "user", sess.Turns[0].Role)
	assert.Equal(t, "let's talk about my cholesterol", sess.Turns[0].Text)
	assert.Equal(t, "assistant", sess.Turns[1].Role)

	// Follow-up with the session id stays in chat mode even without cues
	resp2, err := svc.Search(context.Background(), userId, &dto.SearchRequest{
		Query:     "anything I should change",
		SessionId: resp.SessionId,
	})
	require.NoError(t, err)
	assert.Equal(t, "chat", resp2.Type)
	assert.Equal(t, resp.SessionId, resp2.SessionId)

	sess, _, _ = sessions.Get(context.Background(), resp.SessionId)
	assert.Len(t, sess.Turns, 4)
}

func TestSearchForeignSessionIdDoesNotContinueSession(t *testing.T) {
	provider := &fakeProvider{
		response: `{"answer": "Sure, let's go over it.", "references": []}`,
	}
	svc, _, sessions := newTestService(serviceCorpus(), provider)
	alice := uuid.New()
	bob := uuid.New()

	opened, err := svc.Search(context.Background(), alice, &dto.SearchRequest{Query: "let's talk about my cholesterol"})
	require.NoError(t, err)
	require.NotEmpty(t, opened.SessionId)

	// Bob presents Alice's session id. It must not count as an active
	// session for him, so a plain topic query stays out of chat mode.
	resp, err := svc.Search(context.Background(), bob, &dto.SearchRequest{
		Query:     "blood pressure readings",
		SessionId: opened.SessionId,
	})
	require.NoError(t, err)
	assert.Equal(t, "summary", resp.Type)

	// Even with an explicit conversational query, Bob gets his own
	// fresh session rather than continuing Alice's transcript.
	resp2, err := svc.Search(context.Background(), bob, &dto.SearchRequest{
		Query:     "let's discuss my blood pressure",
		SessionId: opened.SessionId,
	})
	require.NoError(t, err)
	assert.Equal(t, "chat", resp2.Type)
	assert.NotEqual(t, opened.SessionId, resp2.SessionId)

	aliceSess, found, err := sessions.Get(context.Background(), opened.SessionId)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, aliceSess.Turns, 2, "foreign caller must not append to the owner's transcript")
	for _, turn := range aliceSess.Turns {
		assert.NotEqual(t, "let's discuss my blood pressure", turn.Text)
	}

	bobSess, found, _ := sessions.Get(context.Background(), resp2.SessionId)
	require.True(t, found)
	assert.Equal(t, bob.String(), bobSess.UserID)
	require.Len(t, bobSess.Turns, 2)
	assert.Equal(t, "let's discuss my blood pressure", bobSess.Turns[0].Text)
}

func TestSearchChatFallbackKeepsUserTurn(t *testing.T) {
	provider := &fakeProvider{err: errors.New("model offline")}
	svc, _, sessions := newTestService(serviceCorpus(), provider)

	resp, err := svc.Search(context.Background(), uuid.New(), &dto.SearchRequest{Query: "let's talk about my cholesterol"})
	require.NoError(t, err)

	assert.Equal(t, "documents", resp.Type)
	assert.True(t, resp.Fallback)
	require.NotEmpty(t, resp.SessionId)

	// The user turn was recorded before the model call failed
	sess, found, _ := sessions.Get(context.Background(), resp.SessionId)
	require.True(t, found)
	require.Len(t, sess.Turns, 1)
	assert.Equal(t, "user", sess.Turns[0].Role)
}

func TestSearchSameQuerySameMode(t *testing.T) {
	provider := &fakeProvider{
		response: `{"answer": "ok", "references": []}`,
	}
	svc, _, _ := newTestService(serviceCorpus(), provider)
	userId := uuid.New()

	first, err := svc.Search(context.Background(), userId, &dto.SearchRequest{Query: "blood pressure readings"})
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), userId, &dto.SearchRequest{Query: "blood pressure readings"})
	require.NoError(t, err)

	assert.Equal(t, first.Type, second.Type)
}
