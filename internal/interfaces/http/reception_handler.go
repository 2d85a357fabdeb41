package http

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/Recepcion-api/internal/application/dto"
	"github.com/jhoicas/Recepcion-api/internal/domain"
	"github.com/jhoicas/Recepcion-api/internal/domain/entity"
	"github.com/jhoicas/Recepcion-api/internal/domain/invoicetext"
	"github.com/jhoicas/Recepcion-api/pkg/logger"
)

// ReceptionService operaciones del motor de recepción que expone la API.
// Lo implementa *reception.UseCase.
type ReceptionService interface {
	AnalyzeInvoice(ctx context.Context, path, sourceRef string) (*invoicetext.Draft, error)
	CheckDuplicate(ctx context.Context, supplier, invoiceNumber string) (bool, error)
	Create(ctx context.Context, req dto.CreateReceptionRequest, userID string) (*entity.Reception, error)
	Get(ctx context.Context, receptionID int64) (*dto.ReceptionDetailDTO, error)
	List(ctx context.Context, req dto.ReceptionListRequest) ([]dto.ReceptionDTO, error)
	ListPending(ctx context.Context, page dto.PageRequest) ([]dto.ReceptionDTO, error)
	ListForApproval(ctx context.Context, page dto.PageRequest) ([]dto.ReceptionDTO, error)
	ListSuppliers(ctx context.Context) ([]string, error)
	ApplyScan(ctx context.Context, receptionID int64, req dto.ScanRequest, userID string) (*dto.ScanResultDTO, error)
	UpdateExpectedItems(ctx context.Context, receptionID int64, req dto.UpdateExpectedItemsRequest, userID string) error
	Close(ctx context.Context, receptionID int64, req dto.CloseReceptionRequest, userID string) (*dto.CloseResultDTO, error)
	Approve(ctx context.Context, receptionID int64, userID string) (*dto.ApproveResultDTO, error)
	GenerateReport(ctx context.Context, receptionID int64) ([]byte, error)
}

// ReceptionHandler maneja las peticiones HTTP de recepción de mercancía (protegido).
type ReceptionHandler struct {
	svc       ReceptionService
	uploadDir string
	log       *logger.Logger
}

// NewReceptionHandler construye el handler. uploadDir es donde se guardan los PDF de factura.
func NewReceptionHandler(svc ReceptionService, uploadDir string, log *logger.Logger) *ReceptionHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ReceptionHandler{svc: svc, uploadDir: uploadDir, log: log.Component("http.receptions")}
}

// Analyze godoc
// @Summary      Analizar factura PDF
// @Description  Guarda el PDF y devuelve un borrador (proveedor, NIT, número, items) para revisar.
// @Tags         receptions
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        invoice  formData  file  true  "Factura del proveedor (PDF)"
// @Success      200  {object}  invoicetext.Draft
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/receptions/analyze [post]
func (h *ReceptionHandler) Analyze(c *fiber.Ctx) error {
	fh, err := c.FormFile("invoice")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "archivo 'invoice' requerido"})
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "solo se aceptan archivos PDF"})
	}
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return h.writeError(c, fmt.Errorf("crear carpeta de facturas: %w", err))
	}
	name := uuid.New().String() + ".pdf"
	path := filepath.Join(h.uploadDir, name)
	if err := c.SaveFile(fh, path); err != nil {
		return h.writeError(c, fmt.Errorf("guardar factura: %w", err))
	}

	draft, err := h.svc.AnalyzeInvoice(c.UserContext(), path, name)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(draft)
}

// CheckDuplicate godoc
// @Summary      Verificar factura duplicada
// @Tags         receptions
// @Security     Bearer
// @Produce      json
// @Param        supplier        query  string  true   "Proveedor"
// @Param        invoice_number  query  string  false  "Número de factura"
// @Success      200  {object}  dto.DuplicateCheckResponse
// @Router       /api/receptions/duplicate-check [get]
func (h *ReceptionHandler) CheckDuplicate(c *fiber.Ctx) error {
	dup, err := h.svc.CheckDuplicate(c.UserContext(), c.Query("supplier"), c.Query("invoice_number"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(dto.DuplicateCheckResponse{Duplicate: dup})
}

// Create godoc
// @Summary      Crear recepción
// @Tags         receptions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReceptionRequest  true  "Proveedor, factura e items esperados"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/receptions [post]
func (h *ReceptionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReceptionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	r, err := h.svc.Create(c.UserContext(), in, GetUserID(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      r.ID,
		"status":  r.Status,
		"message": "recepción creada",
	})
}

// List godoc
// @Summary      Listar recepciones
// @Tags         receptions
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "pendiente_recepcion | recepcionado | completado"
// @Param        limit   query  int     false  "Máximo de resultados (50 por defecto)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.ReceptionDTO
// @Router       /api/receptions [get]
func (h *ReceptionHandler) List(c *fiber.Ctx) error {
	req := dto.ReceptionListRequest{Status: c.Query("status"), PageRequest: pageFromQuery(c)}
	list, err := h.svc.List(c.UserContext(), req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(list)
}

// ListPending godoc
// @Summary      Recepciones pendientes de escaneo
// @Tags         receptions
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ReceptionDTO
// @Router       /api/receptions/pending [get]
func (h *ReceptionHandler) ListPending(c *fiber.Ctx) error {
	list, err := h.svc.ListPending(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(list)
}

// ListForApproval godoc
// @Summary      Recepciones esperando aprobación de cartera
// @Tags         receptions
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ReceptionDTO
// @Router       /api/receptions/for-approval [get]
func (h *ReceptionHandler) ListForApproval(c *fiber.Ctx) error {
	list, err := h.svc.ListForApproval(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(list)
}

// ListSuppliers godoc
// @Summary      Proveedores conocidos
// @Tags         receptions
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  string
// @Router       /api/receptions/suppliers [get]
func (h *ReceptionHandler) ListSuppliers(c *fiber.Ctx) error {
	list, err := h.svc.ListSuppliers(c.UserContext())
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(list)
}

// Get godoc
// @Summary      Detalle de recepción
// @Tags         receptions
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID de la recepción"
// @Success      200  {object}  dto.ReceptionDetailDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/receptions/{id} [get]
func (h *ReceptionHandler) Get(c *fiber.Ctx) error {
	id, err := receptionID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	out, err := h.svc.Get(c.UserContext(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(out)
}

// Scan godoc
// @Summary      Registrar escaneo
// @Description  Acepta código de barras, código de proveedor o etiqueta JSON {"id","qty","lot","exp"}.
// @Tags         receptions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int              true  "ID de la recepción"
// @Param        body  body  dto.ScanRequest  true  "Código escaneado y cantidad opcional"
// @Success      200  {object}  dto.ScanResultDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/receptions/{id}/items [post]
func (h *ReceptionHandler) Scan(c *fiber.Ctx) error {
	id, err := receptionID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	var in dto.ScanRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.svc.ApplyScan(c.UserContext(), id, in, GetUserID(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateExpectedItems godoc
// @Summary      Reemplazar items esperados
// @Tags         receptions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                             true  "ID de la recepción"
// @Param        body  body  dto.UpdateExpectedItemsRequest  true  "Nueva lista de items"
// @Success      200  {object}  map[string]string
// @Router       /api/receptions/{id}/expected-items [put]
func (h *ReceptionHandler) UpdateExpectedItems(c *fiber.Ctx) error {
	id, err := receptionID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	var in dto.UpdateExpectedItemsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.svc.UpdateExpectedItems(c.UserContext(), id, in, GetUserID(c)); err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "items esperados actualizados"})
}

// Complete godoc
// @Summary      Cerrar escaneo (recepcionar)
// @Tags         receptions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                        true  "ID de la recepción"
// @Param        body  body  dto.CloseReceptionRequest  false "Notas (obligatorias si hay faltante o sobrante)"
// @Success      200  {object}  dto.CloseResultDTO
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/receptions/{id}/complete-reception [post]
func (h *ReceptionHandler) Complete(c *fiber.Ctx) error {
	id, err := receptionID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	var in dto.CloseReceptionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	out, err := h.svc.Close(c.UserContext(), id, in, GetUserID(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar recepción y actualizar inventario
// @Tags         receptions
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID de la recepción"
// @Success      200  {object}  dto.ApproveResultDTO
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/receptions/{id}/approve [post]
func (h *ReceptionHandler) Approve(c *fiber.Ctx) error {
	id, err := receptionID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	out, err := h.svc.Approve(c.UserContext(), id, GetUserID(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(out)
}

// Report godoc
// @Summary      Acta de recepción (PDF)
// @Tags         receptions
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  int  true  "ID de la recepción"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/receptions/{id}/report [get]
func (h *ReceptionHandler) Report(c *fiber.Ctx) error {
	id, err := receptionID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	doc, err := h.svc.GenerateReport(c.UserContext(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="recepcion-%d.pdf"`, id))
	return c.Send(doc)
}

func receptionID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, &domain.ValidationError{Field: "id", Message: "id de recepción inválido"}
	}
	return int64(id), nil
}

func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	return dto.PageRequest{Limit: c.QueryInt("limit"), Offset: c.QueryInt("offset")}
}

// writeError traduce el tipo de error de dominio a status y código HTTP.
func (h *ReceptionHandler) writeError(c *fiber.Ctx, err error) error {
	var (
		status = fiber.StatusInternalServerError
		code   = "INTERNAL"
	)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrDuplicate):
		status, code = fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidState):
		status, code = fiber.StatusConflict, "INVALID_STATE"
	case errors.Is(err, domain.ErrIncompleteReconciliation):
		status, code = fiber.StatusUnprocessableEntity, "NOTES_REQUIRED"
	case errors.Is(err, domain.ErrRetryable):
		status, code = fiber.StatusServiceUnavailable, "RETRYABLE"
	}
	if status == fiber.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
		return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: "error interno"})
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}
