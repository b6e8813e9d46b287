package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yuw136/paper-helper/internal/dto"
	"github.com/yuw136/paper-helper/internal/pkg/logger"
	"github.com/yuw136/paper-helper/internal/pkg/serverutils"
	"github.com/yuw136/paper-helper/internal/service"
	"github.com/yuw136/paper-helper/pkg/agent"
	"github.com/yuw136/paper-helper/pkg/lock"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	CreateChatHistory(ctx *fiber.Ctx) error
	GetChatHistories(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
	DeleteChatHistory(ctx *fiber.Ctx) error
	Chat(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	pubSub      *gochannel.GoChannel
	logger      logger.ILogger
}

func NewChatController(chatService service.IChatService, pubSub *gochannel.GoChannel, log logger.ILogger) IChatController {
	return &chatController{
		chatService: chatService,
		pubSub:      pubSub,
		logger:      log,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Post("/create_chat_history", c.CreateChatHistory)
	r.Get("/chat_histories/:file_id", c.GetChatHistories)
	r.Delete("/chat_histories/:thread_id", c.DeleteChatHistory)
	r.Get("/messages/:thread_id", c.GetMessages)
	r.Post("/chat", c.Chat)
}

func (c *chatController) CreateChatHistory(ctx *fiber.Ctx) error {
	var req dto.CreateChatSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.chatService.CreateSession(ctx.Context(), &req); err != nil {
		return err
	}
	return ctx.JSON(dto.CreateChatSessionResponse{Message: "Chat session created successfully"})
}

func (c *chatController) GetChatHistories(ctx *fiber.Ctx) error {
	fileId := ctx.Params("file_id")
	sessions, err := c.chatService.GetSessionsByFile(ctx.Context(), fileId)
	if err != nil {
		return err
	}
	return ctx.JSON(sessions)
}

func (c *chatController) GetMessages(ctx *fiber.Ctx) error {
	threadId := ctx.Params("thread_id")
	messages, err := c.chatService.GetMessages(ctx.Context(), threadId)
	if err != nil {
		return err
	}
	return ctx.JSON(messages)
}

func (c *chatController) DeleteChatHistory(ctx *fiber.Ctx) error {
	threadId := ctx.Params("thread_id")
	if err := c.chatService.DeleteSession(ctx.Context(), threadId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat session deleted", nil))
}

// Chat runs one agent turn and streams its progress as server-sent events.
// Graph events ride an in-process pub/sub topic from the turn goroutine to
// the response writer, one topic per turn.
func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	topic := fmt.Sprintf("chat.turn.%s.%s", req.ThreadId, req.MessageId)

	// The subscription and the turn must outlive this handler; the stream
	// writer below runs after it returns.
	streamCtx, cancel := context.WithCancel(context.Background())
	messages, err := c.pubSub.Subscribe(streamCtx, topic)
	if err != nil {
		cancel()
		return err
	}

	sink := func(event agent.Event) {
		payload, err := json.Marshal(dto.StreamEventDTO{
			Type:  event.Type,
			Node:  event.Node,
			Chunk: event.Chunk,
			Error: event.Error,
		})
		if err != nil {
			return
		}
		if err := c.pubSub.Publish(topic, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
			c.logger.Warn("ChatController", "Failed to publish stream event", map[string]interface{}{
				"topic": topic,
				"error": err.Error(),
			})
		}
	}

	go func() {
		err := c.chatService.SendChat(streamCtx, &req, sink)
		if err != nil {
			if errors.Is(err, lock.ErrLocked) {
				sink(agent.Event{Type: agent.EventError, Error: "another turn is already running for this thread"})
			} else if !emittedByGraph(err) {
				sink(agent.Event{Type: agent.EventError, Error: err.Error()})
			}
		}
		sink(agent.Event{Type: agent.EventDone})
	}()

	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")

	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		for msg := range messages {
			fmt.Fprintf(w, "data: %s\n\n", msg.Payload)
			msg.Ack()
			if err := w.Flush(); err != nil {
				// client went away, the turn keeps running to completion
				return
			}

			var event dto.StreamEventDTO
			if err := json.Unmarshal(msg.Payload, &event); err == nil && event.Type == agent.EventDone {
				return
			}
		}
	})
	return nil
}

// emittedByGraph reports whether the failure already produced an error
// event on the stream. Graph failures do; pre-graph failures (lock,
// hydration, validation) do not.
func emittedByGraph(err error) bool {
	return errors.Is(err, agent.ErrTurnFailed)
}
