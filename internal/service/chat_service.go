// FILE: internal/service/chat_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"medivault-be/internal/constant"
	"medivault-be/internal/dto"
	"medivault-be/internal/pkg/logger"
	"medivault-be/internal/repository/contract"
	"medivault-be/internal/repository/specification"
	"medivault-be/internal/repository/unitofwork"
	"medivault-be/pkg/llm"
	"medivault-be/pkg/search"
	"medivault-be/pkg/search/grounding"
	"medivault-be/pkg/store"

	"github.com/google/uuid"
)

type IChatService interface {
	SendMessage(ctx context.Context, userId uuid.UUID, req *dto.ChatRequest) (*dto.ChatResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.SessionSummaryResponse, error)
	GetSessionHistory(ctx context.Context, userId uuid.UUID, sessionId string) (*dto.SessionHistoryResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId string) error
}

// chatService is the stateless chat surface plus session administration.
// Unlike search dispatch, the caller owns the history here and replays it
// on every call; the server keeps nothing between requests.
type chatService struct {
	uowFactory      unitofwork.RepositoryFactory
	llmProvider     llm.Provider
	sessions        contract.SessionStore
	sysLogger       logger.ILogger
	generateTimeout time.Duration
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.Provider,
	sessions contract.SessionStore,
	sysLogger logger.ILogger,
	generateTimeout time.Duration,
) IChatService {
	if generateTimeout <= 0 {
		generateTimeout = 30 * time.Second
	}
	return &chatService{
		uowFactory:      uowFactory,
		llmProvider:     llmProvider,
		sessions:        sessions,
		sysLogger:       sysLogger,
		generateTimeout: generateTimeout,
	}
}

func (cs *chatService) SendMessage(ctx context.Context, userId uuid.UUID, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	corpus, err := uow.DocumentRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, &search.CorpusError{Err: err}
	}

	messages := make([]llm.Message, 0, len(req.History)+2)
	messages = append(messages, llm.Message{
		Role:    "system",
		Content: fmt.Sprintf(constant.StatelessChatSystemPromptTemplate, grounding.BuildContext(corpus)),
	})
	for _, turn := range req.History {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Text})
	}
	messages = append(messages, llm.Message{Role: store.RoleUser, Content: req.Message})

	gctx, cancel := context.WithTimeout(ctx, cs.generateTimeout)
	defer cancel()

	text, err := cs.llmProvider.Chat(gctx, messages, llm.WithTemperature(0.4))
	if err != nil {
		cs.sysLogger.Warn("Chat", "Generation failed, returning canned reply", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		text = constant.ChatUnavailableMessage
	}

	history := append(append([]dto.ChatTurn{}, req.History...),
		dto.ChatTurn{Role: store.RoleUser, Text: req.Message},
		dto.ChatTurn{Role: store.RoleAssistant, Text: text},
	)

	return &dto.ChatResponse{
		Text:    text,
		History: history,
	}, nil
}

func (cs *chatService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.SessionSummaryResponse, error) {
	sessions, err := cs.sessions.ListByUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.SessionSummaryResponse, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, &dto.SessionSummaryResponse{
			Id:        sess.ID,
			TurnCount: len(sess.Turns),
			CreatedAt: sess.CreatedAt,
			UpdatedAt: sess.UpdatedAt,
		})
	}
	return result, nil
}

func (cs *chatService) GetSessionHistory(ctx context.Context, userId uuid.UUID, sessionId string) (*dto.SessionHistoryResponse, error) {
	sess, err := cs.ownedSession(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}

	turns := make([]dto.ChatTurn, 0, len(sess.Turns))
	for _, turn := range sess.Turns {
		turns = append(turns, dto.ChatTurn{Role: turn.Role, Text: turn.Text})
	}

	return &dto.SessionHistoryResponse{
		Id:        sess.ID,
		Turns:     turns,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}, nil
}

func (cs *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId string) error {
	if _, err := cs.ownedSession(ctx, userId, sessionId); err != nil {
		return err
	}
	return cs.sessions.Delete(ctx, sessionId)
}

func (cs *chatService) ownedSession(ctx context.Context, userId uuid.UUID, sessionId string) (*store.Session, error) {
	sess, found, err := cs.sessions.Get(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if !found || sess.UserID != userId.String() {
		return nil, fmt.Errorf("session not found or access denied")
	}
	return sess, nil
}
