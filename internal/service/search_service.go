// FILE: internal/service/search_service.go
package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"medivault-be/internal/constant"
	"medivault-be/internal/dto"
	"medivault-be/internal/entity"
	"medivault-be/internal/repository/contract"
	"medivault-be/internal/repository/specification"
	"medivault-be/internal/repository/unitofwork"
	"medivault-be/pkg/llm"
	"medivault-be/pkg/search"
	"medivault-be/pkg/search/grounding"
	"medivault-be/pkg/search/reference"
	"medivault-be/pkg/store"

	"github.com/google/uuid"
)

type ISearchService interface {
	Search(ctx context.Context, userId uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error)
}

// searchService is the dispatcher: one entry point that classifies the
// query, grounds the model in the caller's documents and shapes the result
// into exactly one of the four response variants. Every failure past corpus
// retrieval degrades to a document listing instead of an error.
type searchService struct {
	uowFactory       unitofwork.RepositoryFactory
	llmProvider      llm.Provider
	sessions         contract.SessionStore
	publisherService IPublisherService
	classifier       *search.Classifier
	matcher          *reference.Matcher
	generateTimeout  time.Duration
	searchLogger     *log.Logger
}

func NewSearchService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.Provider,
	sessions contract.SessionStore,
	publisherService IPublisherService,
	generateTimeout time.Duration,
) ISearchService {
	searchLogger := initSearchLogger()

	if generateTimeout <= 0 {
		generateTimeout = 30 * time.Second
	}

	return &searchService{
		uowFactory:       uowFactory,
		llmProvider:      llmProvider,
		sessions:         sessions,
		publisherService: publisherService,
		classifier:       search.NewClassifier(),
		matcher:          reference.NewMatcher(searchLogger),
		generateTimeout:  generateTimeout,
		searchLogger:     searchLogger,
	}
}

// initSearchLogger keeps the per-query dispatch trace out of the main
// application log. Falls back to stdout when the file cannot be opened.
func initSearchLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "search_dispatch.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[SEARCH] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

func (ss *searchService) Search(ctx context.Context, userId uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	uow := ss.uowFactory.NewUnitOfWork(ctx)

	// Corpus retrieval is the only step allowed to fail the request:
	// without the caller's documents nothing downstream can be grounded.
	corpus, err := uow.DocumentRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, &search.CorpusError{Err: err}
	}

	// A session id belonging to someone else is treated as absent:
	// it must not steer classification toward chat mode.
	hasActiveSession := false
	if req.SessionId != "" {
		if sess, found, serr := ss.sessions.Get(ctx, req.SessionId); serr == nil && found && sess.UserID == userId.String() {
			hasActiveSession = true
		}
	}

	mode := ss.classifier.Classify(req.Query, corpus, hasActiveSession)
	ss.searchLogger.Printf("[DISPATCH] mode=%s session=%q query=%q", mode, req.SessionId, truncate(req.Query, 80))

	if mode == search.ModeDocuments {
		docs := ss.classifier.FilterDocuments(req.Query, corpus)
		resp := &dto.SearchResponse{
			Type:      string(search.ModeDocuments),
			Documents: toDocumentRefs(docs),
		}
		ss.publish(ctx, userId, req, mode, resp, reference.Report{})
		return resp, nil
	}

	groundingContext := grounding.BuildContext(corpus)

	if mode == search.ModeChat {
		return ss.dispatchChat(ctx, userId, req, corpus, groundingContext)
	}
	return ss.dispatchGenerated(ctx, userId, req, mode, corpus, groundingContext)
}

// dispatchGenerated handles the summary and answer modes: one prompt, one
// completion, references reconciled against the corpus.
func (ss *searchService) dispatchGenerated(
	ctx context.Context,
	userId uuid.UUID,
	req *dto.SearchRequest,
	mode search.Mode,
	corpus []*entity.Document,
	groundingContext string,
) (*dto.SearchResponse, error) {
	var prompt string
	switch mode {
	case search.ModeAnswer:
		prompt = fmt.Sprintf(constant.AnswerPromptTemplate, req.Query, groundingContext, constant.GroundedEnvelopeInstruction)
	default:
		prompt = fmt.Sprintf(constant.SummaryPromptTemplate, req.Query, groundingContext, constant.GroundedEnvelopeInstruction)
	}

	gctx, cancel := context.WithTimeout(ctx, ss.generateTimeout)
	defer cancel()

	raw, err := ss.llmProvider.Generate(gctx, prompt, llm.WithTemperature(0.2))
	if err != nil {
		ss.searchLogger.Printf("[FALLBACK] mode=%s generation failed: %v", mode, err)
		return ss.fallback(ctx, userId, req, mode, corpus, "generation failed", ""), nil
	}

	env, err := search.ParseEnvelope(raw)
	if err != nil {
		ss.searchLogger.Printf("[FALLBACK] mode=%s malformed model output: %v", mode, err)
		return ss.fallback(ctx, userId, req, mode, corpus, "model returned malformed output", ""), nil
	}

	matched, report := ss.resolveReferences(env, corpus)

	resp := &dto.SearchResponse{
		Type:                string(mode),
		ReferencedDocuments: toDocumentRefs(matched),
	}
	if mode == search.ModeAnswer {
		resp.Answer = env.Answer
	} else {
		resp.Summary = env.Answer
	}

	ss.publish(ctx, userId, req, mode, resp, report)
	return resp, nil
}

// dispatchChat handles the session-backed mode. The user turn is recorded
// before generation so the transcript reflects arrival order even when the
// model call fails afterwards.
func (ss *searchService) dispatchChat(
	ctx context.Context,
	userId uuid.UUID,
	req *dto.SearchRequest,
	corpus []*entity.Document,
	groundingContext string,
) (*dto.SearchResponse, error) {
	sess, err := ss.sessions.GetOrCreate(ctx, userId, req.SessionId)
	if err != nil {
		ss.searchLogger.Printf("[FALLBACK] mode=chat session store failed: %v", err)
		return ss.fallback(ctx, userId, req, search.ModeChat, corpus, "session unavailable", ""), nil
	}
	if sess.UserID != userId.String() {
		// Foreign session id: never replay or extend another user's
		// transcript. Start a fresh session for this caller instead.
		ss.searchLogger.Printf("[WARN] mode=chat session %q not owned by caller, starting fresh", req.SessionId)
		sess, err = ss.sessions.GetOrCreate(ctx, userId, "")
		if err != nil {
			ss.searchLogger.Printf("[FALLBACK] mode=chat session store failed: %v", err)
			return ss.fallback(ctx, userId, req, search.ModeChat, corpus, "session unavailable", ""), nil
		}
	}
	priorTurns := sess.Turns

	if _, err := ss.sessions.Append(ctx, sess.ID, store.RoleUser, req.Query); err != nil {
		ss.searchLogger.Printf("[FALLBACK] mode=chat recording user turn failed: %v", err)
		return ss.fallback(ctx, userId, req, search.ModeChat, corpus, "session unavailable", sess.ID), nil
	}

	messages := make([]llm.Message, 0, len(priorTurns)+2)
	messages = append(messages, llm.Message{
		Role:    "system",
		Content: fmt.Sprintf(constant.ChatSystemPromptTemplate, groundingContext, constant.GroundedEnvelopeInstruction),
	})
	for _, turn := range priorTurns {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Text})
	}
	messages = append(messages, llm.Message{Role: store.RoleUser, Content: req.Query})

	gctx, cancel := context.WithTimeout(ctx, ss.generateTimeout)
	defer cancel()

	raw, err := ss.llmProvider.Chat(gctx, messages, llm.WithTemperature(0.4))
	if err != nil {
		ss.searchLogger.Printf("[FALLBACK] mode=chat generation failed: %v", err)
		return ss.fallback(ctx, userId, req, search.ModeChat, corpus, "generation failed", sess.ID), nil
	}

	env, err := search.ParseEnvelope(raw)
	if err != nil {
		ss.searchLogger.Printf("[FALLBACK] mode=chat malformed model output: %v", err)
		return ss.fallback(ctx, userId, req, search.ModeChat, corpus, "model returned malformed output", sess.ID), nil
	}

	if _, err := ss.sessions.Append(ctx, sess.ID, store.RoleAssistant, env.Answer); err != nil {
		// The reply was produced, return it; the transcript just misses it.
		ss.searchLogger.Printf("[WARN] mode=chat recording assistant turn failed: %v", err)
	}

	matched, report := ss.resolveReferences(env, corpus)

	resp := &dto.SearchResponse{
		Type:                string(search.ModeChat),
		Chat:                env.Answer,
		ReferencedDocuments: toDocumentRefs(matched),
		SessionId:           sess.ID,
	}
	ss.publish(ctx, userId, req, search.ModeChat, resp, report)
	return resp, nil
}

// resolveReferences reconciles the envelope citations and dedupes the
// matches so each cited document appears once, in citation order.
func (ss *searchService) resolveReferences(env *search.Envelope, corpus []*entity.Document) ([]*entity.Document, reference.Report) {
	tokens, ok := reference.ParseTokens(env.References)
	if !ok {
		ss.searchLogger.Printf("[MATCH] references field is not a sequence; citations dropped")
		return nil, reference.Report{BadSequence: true}
	}

	matched, report := ss.matcher.Match(tokens, corpus)

	seen := make(map[uuid.UUID]bool, len(matched))
	unique := matched[:0]
	for _, doc := range matched {
		if seen[doc.Id] {
			continue
		}
		seen[doc.Id] = true
		unique = append(unique, doc)
	}
	return unique, report
}

// fallback degrades a failed generated mode to the documents variant. The
// listing is filtered by the original query so the caller still gets the
// most relevant records.
func (ss *searchService) fallback(
	ctx context.Context,
	userId uuid.UUID,
	req *dto.SearchRequest,
	mode search.Mode,
	corpus []*entity.Document,
	reason string,
	sessionId string,
) *dto.SearchResponse {
	docs := ss.classifier.FilterDocuments(req.Query, corpus)
	resp := &dto.SearchResponse{
		Type:           string(search.ModeDocuments),
		Documents:      toDocumentRefs(docs),
		SessionId:      sessionId,
		Fallback:       true,
		FallbackReason: reason,
	}
	ss.publishEvent(ctx, &dto.SearchEventMessage{
		UserId:         userId.String(),
		Query:          req.Query,
		Mode:           string(mode),
		SessionId:      sessionId,
		Fallback:       true,
		FallbackReason: reason,
		OccurredAt:     time.Now(),
	})
	return resp
}

func (ss *searchService) publish(ctx context.Context, userId uuid.UUID, req *dto.SearchRequest, mode search.Mode, resp *dto.SearchResponse, report reference.Report) {
	ss.publishEvent(ctx, &dto.SearchEventMessage{
		UserId:              userId.String(),
		Query:               req.Query,
		Mode:                string(mode),
		SessionId:           resp.SessionId,
		UnmatchedReferences: report.Unmatched,
		InvalidReferences:   report.Invalid,
		AmbiguousReferences: report.Ambiguous,
		OccurredAt:          time.Now(),
	})
}

func (ss *searchService) publishEvent(ctx context.Context, event *dto.SearchEventMessage) {
	if ss.publisherService == nil {
		return
	}
	if err := ss.publisherService.PublishSearchEvent(ctx, event); err != nil {
		ss.searchLogger.Printf("[WARN] telemetry publish failed: %v", err)
	}
}

func toDocumentRefs(docs []*entity.Document) []*dto.DocumentRef {
	refs := make([]*dto.DocumentRef, 0, len(docs))
	for _, doc := range docs {
		refs = append(refs, &dto.DocumentRef{
			Id:          doc.Id,
			DisplayName: doc.DisplayName,
			Filename:    doc.Filename,
			Status:      doc.Status,
		})
	}
	return refs
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
