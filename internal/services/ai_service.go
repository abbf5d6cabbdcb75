package services

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/nutrisync/nutrisync-bot/internal/domain"
	apperrors "github.com/nutrisync/nutrisync-bot/internal/errors"
	"github.com/nutrisync/nutrisync-bot/internal/logger"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-1.5-flash"

// AIService talks to the multimodal reasoning providers. Gemini is primary;
// when an OpenAI key is configured it is used as a fallback after a Gemini
// failure. The returned value is the raw response text, validation belongs
// to the caller.
type AIService struct {
	geminiClient *genai.Client
	openaiClient *openai.Client
}

var _ domain.ReasoningService = (*AIService)(nil)

// NewAIService creates the reasoning client. The OpenAI key may be empty,
// in which case no fallback is attempted.
func NewAIService(ctx context.Context, geminiAPIKey, openaiAPIKey string) (*AIService, error) {
	geminiClient, err := genai.NewClient(ctx, option.WithAPIKey(geminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	s := &AIService{geminiClient: geminiClient}
	if openaiAPIKey != "" {
		s.openaiClient = openai.NewClient(openaiAPIKey)
	}
	return s, nil
}

// Generate submits the request and returns the raw response text
func (s *AIService) Generate(ctx context.Context, req *domain.AnalysisRequest) (string, error) {
	text, err := s.generateWithGemini(ctx, req)
	if err == nil {
		return text, nil
	}
	if s.openaiClient == nil {
		return "", apperrors.NewServiceError(err, "gemini")
	}

	logger.Warn("Gemini call failed, falling back to OpenAI", "error", err)
	text, fallbackErr := s.generateWithOpenAI(ctx, req)
	if fallbackErr != nil {
		return "", apperrors.NewServiceError(fallbackErr, "openai").WithContext("gemini_error", err.Error())
	}
	return text, nil
}

func (s *AIService) generateWithGemini(ctx context.Context, req *domain.AnalysisRequest) (string, error) {
	model := s.geminiClient.GenerativeModel(geminiModel)
	model.SetTemperature(0.3)
	model.ResponseMIMEType = "application/json"

	parts := make([]genai.Part, 0, 1+len(req.Reports)+len(req.Foods))
	parts = append(parts, genai.Text(req.Instruction))
	for _, att := range req.Attachments() {
		parts = append(parts, genai.Blob{MIMEType: att.MediaType, Data: att.RawBytes})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}
	return out, nil
}

func (s *AIService) generateWithOpenAI(ctx context.Context, req *domain.AnalysisRequest) (string, error) {
	content := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: req.Instruction,
		},
	}
	for _, att := range req.Attachments() {
		content = append(content, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: fmt.Sprintf("data:%s;base64,%s", att.MediaType, att.EncodedPayload),
			},
		})
	}

	resp, err := s.openaiClient.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:         openai.ChatMessageRoleUser,
					MultiContent: content,
				},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
