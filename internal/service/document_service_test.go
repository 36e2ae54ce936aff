package service

import (
	"context"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthix-be/pkg/llm"
)

type stubLLM struct {
	response string
	err      error
	prompt   string
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if len(history) > 0 {
		s.prompt = history[len(history)-1].Content
	}
	return s.response, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	s.prompt = prompt
	return s.response, s.err
}

func TestParseExtractionResponse_FencedJSON(t *testing.T) {
	response := "Here is the extracted data:\n```json\n{\"name\": \"Jane Doe\", \"date_of_birth\": \"1990-04-12\", \"diagnosis\": \"Asthma\", \"prescription\": \"Salbutamol 100mcg\", \"confidence_score\": 0.92, \"raw_text\": \"...\"}\n```"

	extracted := parseExtractionResponse(response)
	require.NotNil(t, extracted.Name)
	assert.Equal(t, "Jane Doe", *extracted.Name)
	assert.Equal(t, "1990-04-12", *extracted.DateOfBirth)
	assert.Equal(t, 0.92, extracted.ConfidenceScore)
}

func TestParseExtractionResponse_BareJSON(t *testing.T) {
	extracted := parseExtractionResponse(`{"name": "Bob", "confidence_score": 0.8, "raw_text": "text"}`)
	require.NotNil(t, extracted.Name)
	assert.Equal(t, "Bob", *extracted.Name)
	assert.Nil(t, extracted.Diagnosis)
}

func TestParseExtractionResponse_TrailingComma(t *testing.T) {
	extracted := parseExtractionResponse(`{"name": "Bob", "confidence_score": 0.8,}`)
	require.NotNil(t, extracted.Name)
	assert.Equal(t, "Bob", *extracted.Name)
}

func TestParseExtractionResponse_Unparseable(t *testing.T) {
	extracted := parseExtractionResponse("I could not find any patient data in this document.")
	assert.Nil(t, extracted.Name)
	assert.Equal(t, 0.3, extracted.ConfidenceScore)
	assert.Contains(t, extracted.RawText, "could not find")
}

func TestValidateFile(t *testing.T) {
	svc := NewDocumentService(&stubLLM{}, nil, 1024, []string{"image/jpeg", "application/pdf", "text/plain"})

	assert.NoError(t, svc.ValidateFile("scan.jpg", "image/jpeg", 512))
	assert.NoError(t, svc.ValidateFile("SCAN.PDF", "Application/PDF", 1024))

	err := svc.ValidateFile("notes.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", 100)
	require.Error(t, err)
	fiberErr, ok := err.(*fiber.Error)
	require.True(t, ok)
	assert.Equal(t, fiber.StatusBadRequest, fiberErr.Code)

	assert.Error(t, svc.ValidateFile("big.pdf", "application/pdf", 2048))
	assert.Error(t, svc.ValidateFile("empty.pdf", "application/pdf", 0))
}

func TestSupportedTypes(t *testing.T) {
	svc := NewDocumentService(&stubLLM{}, nil, 10485760, []string{" Image/JPEG ", "application/pdf", ""})

	res := svc.SupportedTypes()
	assert.Equal(t, []string{"image/jpeg", "application/pdf"}, res.AllowedTypes)
	assert.Equal(t, int64(10485760), res.MaxFileSize)
}

func TestProcessDocuments_TextFile(t *testing.T) {
	stub := &stubLLM{response: `{"name": "Jane", "confidence_score": 0.9, "raw_text": "Jane's prescription"}`}
	svc := NewDocumentService(stub, nil, 10485760, []string{"text/plain"})

	result, err := svc.ProcessDocuments(context.Background(), []llm.FileData{
		{Name: "record.txt", MimeType: "text/plain", Content: []byte("Patient: Jane")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.DocumentsProcessed)
	require.NotNil(t, result.Extracted.Name)
	assert.Equal(t, "Jane", *result.Extracted.Name)
	assert.Contains(t, stub.prompt, "Patient: Jane")
}

func TestProcessDocuments_BinaryNeedsVision(t *testing.T) {
	svc := NewDocumentService(&stubLLM{}, nil, 10485760, []string{"image/jpeg"})

	_, err := svc.ProcessDocuments(context.Background(), []llm.FileData{
		{Name: "scan.jpg", MimeType: "image/jpeg", Content: []byte{0xff, 0xd8}},
	})
	require.Error(t, err)
}

func TestExtractText_PlainTextPassthrough(t *testing.T) {
	stub := &stubLLM{response: "should not be called"}
	svc := NewDocumentService(stub, nil, 10485760, []string{"text/plain"})

	text, err := svc.ExtractText(context.Background(), llm.FileData{
		Name: "notes.txt", MimeType: "text/plain", Content: []byte("raw note content"),
	})
	require.NoError(t, err)
	assert.Equal(t, "raw note content", text)
	assert.Empty(t, stub.prompt)
}
