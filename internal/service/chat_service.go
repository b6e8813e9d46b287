package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yuw136/paper-helper/internal/constant"
	"github.com/yuw136/paper-helper/internal/dto"
	"github.com/yuw136/paper-helper/internal/entity"
	"github.com/yuw136/paper-helper/internal/pkg/logger"
	"github.com/yuw136/paper-helper/internal/repository/memory"
	"github.com/yuw136/paper-helper/internal/repository/specification"
	"github.com/yuw136/paper-helper/internal/repository/unitofwork"
	"github.com/yuw136/paper-helper/pkg/agent"
	"github.com/yuw136/paper-helper/pkg/events"
	"github.com/yuw136/paper-helper/pkg/lock"
	"github.com/yuw136/paper-helper/pkg/nats"
)

const defaultSessionTitle = "New Chat"

// IChatService defines the chat service interface
type IChatService interface {
	CreateSession(ctx context.Context, request *dto.CreateChatSessionRequest) error
	GetSessionsByFile(ctx context.Context, fileId string) ([]*dto.ChatSessionDTO, error)
	GetMessages(ctx context.Context, threadId string) ([]*dto.ChatMessageResponse, error)
	DeleteSession(ctx context.Context, threadId string) error
	// SendChat runs one turn: persists the user message, executes the agent
	// graph with progress streamed through sink, and persists the answer,
	// compaction result and checkpoint.
	SendChat(ctx context.Context, request *dto.ChatRequest, sink agent.EventSink) error
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	stateRepo  *memory.StateRepository
	graph      *agent.Graph
	turnLock   lock.TurnLock
	natsPub    *nats.Publisher
	logger     logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	stateRepo *memory.StateRepository,
	graph *agent.Graph,
	turnLock lock.TurnLock,
	natsPub *nats.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		stateRepo:  stateRepo,
		graph:      graph,
		turnLock:   turnLock,
		natsPub:    natsPub,
		logger:     log,
	}
}

func (s *chatService) CreateSession(ctx context.Context, request *dto.CreateChatSessionRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	paper, err := uow.PaperRepository().FindOne(ctx, specification.ByID{ID: request.Session.FileId})
	if err != nil {
		return err
	}
	if paper == nil {
		return fmt.Errorf("chat target file not found: %s", request.Session.FileId)
	}

	title := request.Session.Title
	if title == "" {
		title = defaultSessionTitle
	}
	now := time.Now()
	session := &entity.ChatSession{
		Id:        request.Session.Id,
		FileId:    request.Session.FileId,
		Title:     title,
		CreatedAt: now,
	}
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return err
	}

	// Initialize the thread's checkpoint once, so the first turn already
	// knows its paper scope.
	checkpoint := &entity.Checkpoint{
		ThreadId: session.Id,
		State: entity.CheckpointState{
			PaperId:    paper.Id,
			PaperTopic: paper.Topic,
		},
		UpdatedAt: now,
	}
	if err := uow.CheckpointRepository().Save(ctx, checkpoint); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.stateRepo.Save(checkpoint)

	if err := s.natsPub.Publish(ctx, events.NewSessionCreated(session.Id, session.FileId)); err != nil {
		s.logger.Warn("ChatService", "Failed to publish session created event", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return nil
}

func (s *chatService) GetSessionsByFile(ctx context.Context, fileId string) ([]*dto.ChatSessionDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.ByFileID{FileID: fileId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ChatSessionDTO, 0, len(sessions))
	for _, session := range sessions {
		item := &dto.ChatSessionDTO{
			Id:        session.Id,
			FileId:    session.FileId,
			Title:     session.Title,
			CreatedAt: session.CreatedAt.UnixMilli(),
		}
		if session.UpdatedAt != nil {
			item.UpdatedAt = session.UpdatedAt.UnixMilli()
		} else {
			item.UpdatedAt = session.CreatedAt.UnixMilli()
		}
		result = append(result, item)
	}
	return result, nil
}

func (s *chatService) GetMessages(ctx context.Context, threadId string) ([]*dto.ChatMessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByThreadID{ThreadID: threadId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ChatMessageResponse, 0, len(messages))
	for _, msg := range messages {
		item := &dto.ChatMessageResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		}
		for i, excerpt := range msg.Excerpts {
			item.Excerpts = append(item.Excerpts, dto.ExcerptDTO{
				Id:      fmt.Sprintf("%s-excerpt-%d", msg.Id, i),
				Content: excerpt,
			})
		}
		result = append(result, item)
	}
	return result, nil
}

func (s *chatService) DeleteSession(ctx context.Context, threadId string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteByThreadId(ctx, threadId); err != nil {
		return err
	}
	if err := uow.CheckpointRepository().DeleteByThreadId(ctx, threadId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, threadId); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}
	s.stateRepo.Delete(threadId)
	return nil
}

func (s *chatService) SendChat(ctx context.Context, request *dto.ChatRequest, sink agent.EventSink) error {
	if err := s.turnLock.Acquire(ctx, request.ThreadId); err != nil {
		return err
	}
	defer s.turnLock.Release(ctx, request.ThreadId)

	checkpoint, err := s.loadCheckpoint(ctx, request.ThreadId)
	if err != nil {
		return err
	}

	history, err := s.beginTurn(ctx, request)
	if err != nil {
		return err
	}

	excerptTexts := make([]string, 0, len(request.Excerpts))
	for _, excerpt := range request.Excerpts {
		if excerpt.Content != "" {
			excerptTexts = append(excerptTexts, excerpt.Content)
		}
	}

	state, err := agent.NewTurnState(
		request.Content,
		checkpoint.State.PaperId,
		checkpoint.State.PaperTopic,
		checkpoint.State.Summary,
		history,
		excerptTexts,
	)
	if err != nil {
		return err
	}

	runErr := s.graph.Run(ctx, state, sink)

	// Persist the outcome even on failure: the compactor already ran best
	// effort inside the graph, and losing continuity is worse than storing
	// a failed turn's checkpoint.
	if err := s.finishTurn(ctx, request.ThreadId, checkpoint, state); err != nil {
		s.logger.Error("ChatService", "Failed to persist turn outcome", map[string]interface{}{
			"thread_id": request.ThreadId,
			"error":     err.Error(),
		})
		if runErr == nil {
			return err
		}
	}

	if runErr != nil {
		if err := s.natsPub.Publish(ctx, events.NewTurnFailed(request.ThreadId, runErr.Error())); err != nil {
			s.logger.Warn("ChatService", "Failed to publish turn failed event", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return runErr
	}

	if err := s.natsPub.Publish(ctx, events.NewTurnCompleted(request.ThreadId, state.SearchCount, state.Source)); err != nil {
		s.logger.Warn("ChatService", "Failed to publish turn completed event", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return nil
}

// loadCheckpoint reads the thread's latest state snapshot, memory cache
// first, database second.
func (s *chatService) loadCheckpoint(ctx context.Context, threadId string) (*entity.Checkpoint, error) {
	if checkpoint, found := s.stateRepo.Get(threadId); found {
		return checkpoint, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	checkpoint, err := uow.CheckpointRepository().FindByThreadId(ctx, threadId)
	if err != nil {
		return nil, err
	}
	if checkpoint == nil {
		return nil, fmt.Errorf("no agent state for thread %s, was the session created?", threadId)
	}
	s.stateRepo.Save(checkpoint)
	return checkpoint, nil
}

// beginTurn stores the user message, retitles a fresh session after its
// first question, and returns the full prior history including the new
// message.
func (s *chatService) beginTurn(ctx context.Context, request *dto.ChatRequest) ([]agent.Message, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: request.ThreadId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("chat session not found: %s", request.ThreadId)
	}

	if session.Title == defaultSessionTitle {
		title := request.Content
		if len(title) > 30 {
			title = title[:30] + "..."
		}
		session.Title = title
		if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
			return nil, err
		}
	}

	excerpts := make([]string, 0, len(request.Excerpts))
	for _, excerpt := range request.Excerpts {
		if excerpt.Content != "" {
			excerpts = append(excerpts, excerpt.Content)
		}
	}
	userMessage := &entity.ChatMessage{
		Id:        request.MessageId,
		ThreadId:  request.ThreadId,
		Role:      constant.ChatMessageRoleUser,
		Content:   request.Content,
		Timestamp: request.Timestamp,
		Excerpts:  excerpts,
	}
	if err := uow.ChatMessageRepository().Create(ctx, userMessage); err != nil {
		return nil, err
	}

	stored, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByThreadID{ThreadID: request.ThreadId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	history := make([]agent.Message, 0, len(stored))
	for _, msg := range stored {
		history = append(history, agent.Message{
			Id:        msg.Id,
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
			Excerpts:  msg.Excerpts,
		})
	}
	return history, nil
}

// finishTurn writes the turn's answer message, prunes compacted messages
// and upserts the thread checkpoint.
func (s *chatService) finishTurn(ctx context.Context, threadId string, prior *entity.Checkpoint, state *agent.State) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if state.Answer != "" {
		aiMessage := lastAiMessage(state)
		if aiMessage != nil {
			if err := uow.ChatMessageRepository().Create(ctx, &entity.ChatMessage{
				Id:        aiMessage.Id,
				ThreadId:  threadId,
				Role:      constant.ChatMessageRoleAi,
				Content:   aiMessage.Content,
				Timestamp: aiMessage.Timestamp,
			}); err != nil {
				return err
			}
		}
	}

	if len(state.RemovedMessageIds) > 0 {
		if err := uow.ChatMessageRepository().DeleteByIds(ctx, state.RemovedMessageIds); err != nil {
			return err
		}
	}

	checkpoint := &entity.Checkpoint{
		ThreadId: threadId,
		State: entity.CheckpointState{
			PaperId:    prior.State.PaperId,
			PaperTopic: prior.State.PaperTopic,
			Summary:    state.Summary,
			TurnCount:  prior.State.TurnCount + 1,
		},
		UpdatedAt: time.Now(),
	}
	if err := uow.CheckpointRepository().Save(ctx, checkpoint); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}
	s.stateRepo.Save(checkpoint)
	return nil
}

func lastAiMessage(state *agent.State) *agent.Message {
	for i := len(state.Messages) - 1; i >= 0; i-- {
		if state.Messages[i].Role == constant.ChatMessageRoleAi {
			return &state.Messages[i]
		}
	}
	return nil
}
