package service

import (
	"context"
	"log"
	"strings"
	"time"

	"ai-sales-assistant-be/internal/constant"
	"ai-sales-assistant-be/internal/dto"
	"ai-sales-assistant-be/internal/entity"
	"ai-sales-assistant-be/internal/pkg/logger"
	"ai-sales-assistant-be/internal/pkg/serverutils"
	"ai-sales-assistant-be/internal/repository/memory"
	"ai-sales-assistant-be/pkg/ai/pipeline"
	"ai-sales-assistant-be/pkg/ai/router"
	"ai-sales-assistant-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// IAssistantService is the core contract exposed to the transport
// layer.
type IAssistantService interface {
	Ask(ctx context.Context, request *dto.AskRequest) (*dto.AskResponse, error)
	GetSalesData(ctx context.Context) entity.SalesData
	Reload(ctx context.Context) (*dto.ReloadResponse, error)
	ClearSession(ctx context.Context, sessionID string) error
}

// assistantService sequences routing, answering and memory recording.
type assistantService struct {
	salesRepo      *memory.SalesRepository
	convRepo       *memory.ConversationRepository
	questionRouter *router.Router
	ragPipeline    *pipeline.RAGPipeline
	chatPipeline   *pipeline.ChatPipeline
	publisher      message.Publisher
	reloadTopic    string
	sysLogger      logger.ILogger
	llmLogger      *log.Logger
}

func NewAssistantService(
	salesRepo *memory.SalesRepository,
	convRepo *memory.ConversationRepository,
	questionRouter *router.Router,
	ragPipeline *pipeline.RAGPipeline,
	chatPipeline *pipeline.ChatPipeline,
	publisher message.Publisher,
	reloadTopic string,
	sysLogger logger.ILogger,
	llmLogger *log.Logger,
) IAssistantService {
	return &assistantService{
		salesRepo:      salesRepo,
		convRepo:       convRepo,
		questionRouter: questionRouter,
		ragPipeline:    ragPipeline,
		chatPipeline:   chatPipeline,
		publisher:      publisher,
		reloadTopic:    reloadTopic,
		sysLogger:      sysLogger,
		llmLogger:      llmLogger,
	}
}

// Ask routes a question, answers it on the chosen path and records the
// exchange. Failed generations record nothing and surface as a generic
// processing error; the internal cause stays in the logs.
func (s *assistantService) Ask(ctx context.Context, request *dto.AskRequest) (*dto.AskResponse, error) {
	question := strings.TrimSpace(request.Question)
	if question == "" {
		return nil, serverutils.NewInputError(constant.ErrMsgEmptyQuestion)
	}

	sessionID := request.SessionId
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	start := time.Now()
	history := s.convRepo.GetContext(sessionID)

	decision := s.questionRouter.Classify(ctx, question, history)
	s.sysLogger.Info(constant.ModuleRouter, "Question routed", map[string]interface{}{
		"session_id": sessionID,
		"route":      string(decision.RouteType),
		"confidence": decision.Confidence,
		"reasoning":  decision.Reasoning,
	})

	var answer string
	var err error
	switch decision.RouteType {
	case router.RouteSales:
		answer, err = s.ragPipeline.Execute(ctx, question, history)
	default:
		answer, err = s.chatPipeline.Execute(ctx, question, history)
	}
	if err != nil {
		s.sysLogger.Error(constant.ModuleAssistant, "Answer generation failed", map[string]interface{}{
			"session_id": sessionID,
			"route":      string(decision.RouteType),
			"error":      err.Error(),
		})
		return nil, serverutils.NewProcessingError(err)
	}

	s.convRepo.AddExchange(sessionID, question, answer)

	elapsed := time.Since(start).Seconds()
	s.llmLogger.Printf("[ASSISTANT] Answered in %.3fs via %s", elapsed, decision.RouteType)

	return &dto.AskResponse{
		Answer:         answer,
		RouteType:      string(decision.RouteType),
		ProcessingTime: elapsed,
		SessionId:      sessionID,
	}, nil
}

// GetSalesData returns the corpus snapshot. Pure read.
func (s *assistantService) GetSalesData(ctx context.Context) entity.SalesData {
	return s.salesRepo.GetSalesData()
}

// Reload replaces the corpus snapshot and publishes the rebuild event;
// the consumer rebuilds chunks and index asynchronously.
func (s *assistantService) Reload(ctx context.Context) (*dto.ReloadResponse, error) {
	data := s.salesRepo.Reload()

	if err := events.PublishCorpusReloaded(s.publisher, s.reloadTopic, len(data.SalesReps)); err != nil {
		s.sysLogger.Error(constant.ModuleData, "Failed to publish corpus reload event", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, serverutils.NewProcessingError(err)
	}

	return &dto.ReloadResponse{RepCount: len(data.SalesReps)}, nil
}

// ClearSession drops a conversation session explicitly. Unknown or
// already-expired sessions report not found.
func (s *assistantService) ClearSession(ctx context.Context, sessionID string) error {
	if !s.convRepo.HasSession(sessionID) {
		return serverutils.NewNotFoundError("Session not found")
	}
	s.convRepo.ClearSession(sessionID)
	return nil
}
