package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"

	"healthix-be/internal/constant"
	"healthix-be/internal/dto"
	"healthix-be/pkg/events"
	"healthix-be/pkg/llm"
	pktNats "healthix-be/pkg/nats"
)

type IDocumentService interface {
	ValidateFile(fileName, mimeType string, size int64) error
	ProcessDocuments(ctx context.Context, files []llm.FileData) (*dto.ProcessDocumentResponse, error)
	ExtractText(ctx context.Context, file llm.FileData) (string, error)
	SupportedTypes() *dto.SupportedTypesResponse
}

type documentService struct {
	llmProvider    llm.LLMProvider
	eventPublisher *pktNats.Publisher
	maxFileSize    int64
	allowedTypes   map[string]bool
	typeList       []string
}

func NewDocumentService(llmProvider llm.LLMProvider, eventPublisher *pktNats.Publisher, maxFileSize int, allowedTypes []string) IDocumentService {
	allowed := make(map[string]bool, len(allowedTypes))
	typeList := make([]string, 0, len(allowedTypes))
	for _, t := range allowedTypes {
		normalized := strings.TrimSpace(strings.ToLower(t))
		if normalized == "" {
			continue
		}
		allowed[normalized] = true
		typeList = append(typeList, normalized)
	}
	return &documentService{
		llmProvider:    llmProvider,
		eventPublisher: eventPublisher,
		maxFileSize:    int64(maxFileSize),
		allowedTypes:   allowed,
		typeList:       typeList,
	}
}

func (c *documentService) SupportedTypes() *dto.SupportedTypesResponse {
	return &dto.SupportedTypesResponse{
		AllowedTypes: c.typeList,
		MaxFileSize:  c.maxFileSize,
	}
}

func (c *documentService) ValidateFile(fileName, mimeType string, size int64) error {
	if !c.allowedTypes[strings.ToLower(mimeType)] {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("file type %s is not supported for %s", mimeType, fileName))
	}
	if size > c.maxFileSize {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("file %s exceeds the %d byte limit", fileName, c.maxFileSize))
	}
	if size == 0 {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("file %s is empty", fileName))
	}
	return nil
}

// ProcessDocuments runs structured extraction over the uploaded files in a
// single model call so cross-document identity resolution works (e.g. name
// from an ID card plus diagnosis from a prescription).
func (c *documentService) ProcessDocuments(ctx context.Context, files []llm.FileData) (*dto.ProcessDocumentResponse, error) {
	if len(files) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "no files provided")
	}

	response, err := c.generate(ctx, constant.ExtractionPrompt, files)
	if err != nil {
		return nil, fmt.Errorf("document extraction failed: %w", err)
	}

	extracted := parseExtractionResponse(response)

	if c.eventPublisher != nil {
		if err := c.eventPublisher.Publish(ctx, events.NewDocumentProcessed(len(files), extracted.ConfidenceScore)); err != nil {
			log.Printf("[WARN] Failed to publish document processed event: %v", err)
		}
	}

	return &dto.ProcessDocumentResponse{
		Extracted:          extracted,
		DocumentsProcessed: len(files),
	}, nil
}

// ExtractText converts one file into plain text for staging-index chunking.
// Text files pass through without a model call.
func (c *documentService) ExtractText(ctx context.Context, file llm.FileData) (string, error) {
	if strings.EqualFold(file.MimeType, "text/plain") {
		return string(file.Content), nil
	}

	text, err := c.generate(ctx, constant.DocumentSummaryPrompt, []llm.FileData{file})
	if err != nil {
		return "", fmt.Errorf("text extraction failed for %s: %w", file.Name, err)
	}
	return text, nil
}

func (c *documentService) generate(ctx context.Context, prompt string, files []llm.FileData) (string, error) {
	// Plain text payloads can go through any provider; binary payloads need
	// a vision-capable one.
	textOnly := true
	for _, f := range files {
		if !strings.EqualFold(f.MimeType, "text/plain") {
			textOnly = false
			break
		}
	}

	if textOnly {
		var sb strings.Builder
		sb.WriteString(prompt)
		for _, f := range files {
			sb.WriteString("\n\n")
			sb.WriteString(string(f.Content))
		}
		return c.llmProvider.Generate(ctx, sb.String(), llm.WithTemperature(0.2))
	}

	vision, ok := c.llmProvider.(llm.VisionProvider)
	if !ok {
		return "", fiber.NewError(fiber.StatusBadRequest, "configured language model cannot read image or PDF documents")
	}
	return vision.GenerateWithFiles(ctx, prompt, files)
}

var (
	fenceRe    = regexp.MustCompile("(?i)```(?:json)?\\s*([\\s\\S]*?)\\s*```")
	braceRe    = regexp.MustCompile(`\{[\s\S]*\}`)
	trailingRe = regexp.MustCompile(`,\s*([}\]])`)
)

// parseExtractionResponse pulls the JSON object out of a model response that
// may be wrapped in code fences or prose. On parse failure it degrades to a
// low-confidence result carrying the raw response.
func parseExtractionResponse(response string) dto.ExtractedPatientData {
	text := response
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	if m := braceRe.FindString(text); m != "" {
		text = m
	}
	text = trailingRe.ReplaceAllString(text, "$1")
	text = strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, text)

	var extracted dto.ExtractedPatientData
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &extracted); err != nil {
		return dto.ExtractedPatientData{
			ConfidenceScore: 0.3,
			RawText:         response,
		}
	}
	return extracted
}
