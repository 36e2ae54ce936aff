package controller

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"healthix-be/internal/dto"
	"healthix-be/internal/pkg/serverutils"
	"healthix-be/internal/service"
	"healthix-be/pkg/llm"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Process(ctx *fiber.Ctx) error
	CreatePatient(ctx *fiber.Ctx) error
	SupportedTypes(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
	patientService  service.IPatientService
}

func NewDocumentController(documentService service.IDocumentService, patientService service.IPatientService) IDocumentController {
	return &documentController{
		documentService: documentService,
		patientService:  patientService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/documents/v1")
	h.Get("supported-types", c.SupportedTypes)
	h.Post("process", c.Process)
	h.Post("create-patient", c.CreatePatient)
}

// SupportedTypes tells clients what they can upload before they try.
func (c *documentController) SupportedTypes(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get supported types", c.documentService.SupportedTypes()))
}

// Process extracts structured patient data from uploaded files without
// creating a patient, so the frontend can show a review step.
func (c *documentController) Process(ctx *fiber.Ctx) error {
	files, err := c.collectFiles(ctx)
	if err != nil {
		return err
	}

	res, err := c.documentService.ProcessDocuments(ctx.Context(), files)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success process documents", res))
}

// CreatePatient extracts and persists in one step.
func (c *documentController) CreatePatient(ctx *fiber.Ctx) error {
	files, err := c.collectFiles(ctx)
	if err != nil {
		return err
	}

	processed, err := c.documentService.ProcessDocuments(ctx.Context(), files)
	if err != nil {
		return err
	}

	created, err := c.patientService.CreateFromExtraction(ctx.Context(), &processed.Extracted)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create patient from documents", dto.CreatePatientFromDocumentsResponse{
		PatientId:          created.Id,
		Extracted:          processed.Extracted,
		DocumentsProcessed: processed.DocumentsProcessed,
	}))
}

func (c *documentController) collectFiles(ctx *fiber.Ctx) ([]llm.FileData, error) {
	form, err := ctx.MultipartForm()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "multipart form with files is required")
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "no files provided")
	}

	files := make([]llm.FileData, 0, len(headers))
	for _, header := range headers {
		mimeType := header.Header.Get("Content-Type")
		if err := c.documentService.ValidateFile(header.Filename, mimeType, header.Size); err != nil {
			return nil, err
		}

		f, err := header.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}

		files = append(files, llm.FileData{
			Name:     header.Filename,
			MimeType: mimeType,
			Content:  content,
		})
	}
	return files, nil
}
