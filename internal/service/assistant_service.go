package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"maturity-assessment-backend/internal/llm"
)

const assistantSystemPrompt = `You are an expert in digital transformation and organizational maturity.
You help users answer the questions of a maturity assessment questionnaire.

When the user asks for help with a question:
1. Explain in simple terms what the question means
2. Give practical examples for each answer option
3. Help the user understand which option best describes their situation
4. If the user describes their situation, suggest the most appropriate option

Always answer clearly and concisely. Do not ask rhetorical questions, go straight to the point.
If there is not enough information to suggest a specific answer, ask for details about the organization.`

// AssistantRequest is the context sent by the questionnaire UI.
type AssistantRequest struct {
	QuestionText       string   `json:"question_text" binding:"required"`
	QuestionHint       string   `json:"question_hint"`
	Options            []string `json:"options"`
	UserMessage        string   `json:"user_message" binding:"required"`
	OrganizationType   string   `json:"organization_type"`
	OrganizationSector string   `json:"organization_sector"`
}

type AssistantService interface {
	Chat(ctx context.Context, req AssistantRequest) string
}

type assistantService struct {
	client llm.Client
}

// NewAssistantService returns an assistant backed by client. A nil client
// answers with the question hint only.
func NewAssistantService(client llm.Client) AssistantService {
	return &assistantService{client: client}
}

// Chat never fails: model errors degrade to the question hint.
func (s *assistantService) Chat(ctx context.Context, req AssistantRequest) string {
	if s.client == nil {
		if req.QuestionHint != "" {
			return "⚠️ The AI assistant is not configured. Contact the administrator to enable it.\n\n" +
				"**Hint from the guide:**\n" + req.QuestionHint
		}
		return "⚠️ The AI assistant is not configured. Use the '?' button to see the hint."
	}

	reply, err := s.client.Generate(ctx, assistantSystemPrompt, AssistantPrompt(req))
	if err != nil {
		slog.Warn("assistant generation failed", "error", err)
		return "The AI assistant is temporarily unavailable. Use the hint: " + req.QuestionHint
	}
	return strings.TrimSpace(reply)
}

// AssistantPrompt renders the user turn sent to the model.
func AssistantPrompt(req AssistantRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Questionnaire question: %s\n\nAvailable options:\n", req.QuestionText)
	for _, o := range req.Options {
		fmt.Fprintf(&b, "- %s\n", o)
	}
	sector := req.OrganizationSector
	if sector == "" {
		sector = "Not specified"
	}
	orgType := req.OrganizationType
	if orgType == "" {
		orgType = "company"
	}
	fmt.Fprintf(&b, "\nHint/Context: %s\n\nOrganization type: %s\nSector: %s\n\nUser message: %s\n",
		req.QuestionHint, orgType, sector, req.UserMessage)
	return b.String()
}
