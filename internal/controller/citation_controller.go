package controller

import (
	"encoding/json"

	"adaptive-rag-core/internal/dto"
	"adaptive-rag-core/internal/pkg/logger"
	"adaptive-rag-core/internal/pkg/serverutils"
	"adaptive-rag-core/internal/service"
	"adaptive-rag-core/pkg/citation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type ICitationController interface {
	RegisterRoutes(r fiber.Router)
	Parse(ctx *fiber.Ctx) error
	Clean(ctx *fiber.Ctx) error
	Validate(ctx *fiber.Ctx) error
	ValidateXML(ctx *fiber.Ctx) error
	Metadata(ctx *fiber.Ctx) error
	Stream(ctx *fiber.Ctx) error
}

type citationController struct {
	citationService *service.CitationService
	logger          logger.ILogger
}

func NewCitationController(citationService *service.CitationService, log logger.ILogger) ICitationController {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &citationController{
		citationService: citationService,
		logger:          log,
	}
}

func (c *citationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/citation/v1")
	h.Post("parse", c.Parse)
	h.Post("clean", c.Clean)
	h.Post("validate", c.Validate)
	h.Post("validate-xml", c.ValidateXML)
	h.Post("metadata", c.Metadata)
	h.Get("stream", c.Stream)
}

func (c *citationController) Parse(ctx *fiber.Ctx) error {
	var req dto.ParseCitationsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.citationService.Parse(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success parse citations", res))
}

func (c *citationController) Clean(ctx *fiber.Ctx) error {
	var req dto.CleanTextRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.citationService.CleanText(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success clean text", res))
}

func (c *citationController) Validate(ctx *fiber.Ctx) error {
	var req dto.ValidateCitationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.citationService.Validate(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success validate citation", res))
}

func (c *citationController) ValidateXML(ctx *fiber.Ctx) error {
	var req dto.ValidateXMLCitationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.citationService.ValidateXML(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success validate xml citation", res))
}

func (c *citationController) Metadata(ctx *fiber.Ctx) error {
	var req dto.CitationMetadataRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.citationService.GenerateMetadata(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate citation metadata", res))
}

// streamInput is what the client sends over the websocket: token chunks as
// they arrive from the model, then a single "end" frame.
type streamInput struct {
	Type string `json:"type"` // "chunk" | "end"
	Text string `json:"text,omitempty"`
}

// Stream upgrades to a websocket and runs an incremental citation parse.
// Each connection owns its own parse state; chunks in, frames out.
func (c *citationController) Stream(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		c.logger.Info("CITATION_WS", "Starting streaming parse session", nil)
		state := citation.NewStreamState()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					c.logger.Warn("CITATION_WS", "Unexpected close", map[string]interface{}{"error": err.Error()})
				}
				return
			}

			var in streamInput
			if err := json.Unmarshal(msg, &in); err != nil {
				c.logger.Warn("CITATION_WS", "Dropping malformed input frame", map[string]interface{}{"error": err.Error()})
				continue
			}

			if in.Type == "end" {
				flushed := state.Flush()
				_ = conn.WriteJSON(dto.StreamFrame{Type: "flush", Text: flushed})
				c.logger.Info("CITATION_WS", "Streaming parse session flushed", nil)
				return
			}

			result := state.Feed(in.Text)
			if len(result.Citations) > 0 {
				if err := conn.WriteJSON(dto.StreamFrame{Type: "citations", Citations: result.Citations}); err != nil {
					return
				}
			}
			if result.TextToEmit != "" {
				if err := conn.WriteJSON(dto.StreamFrame{Type: "text", Text: result.TextToEmit}); err != nil {
					return
				}
			}
		}
	})(ctx)
}
