package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Recepcion-api/internal/application/dto"
	"github.com/jhoicas/Recepcion-api/internal/domain"
	"github.com/jhoicas/Recepcion-api/internal/domain/entity"
	"github.com/jhoicas/Recepcion-api/internal/domain/invoicetext"
	apphttp "github.com/jhoicas/Recepcion-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Recepcion-api/pkg/jwt"
)

// stubService responde con los valores configurados y registra la última llamada.
type stubService struct {
	err error

	analyzedPath string
	analyzedRef  string
	scanReq      dto.ScanRequest
	closeReq     dto.CloseReceptionRequest
	createReq    dto.CreateReceptionRequest
	userID       string
	listReq      dto.ReceptionListRequest
}

func (s *stubService) AnalyzeInvoice(_ context.Context, path, ref string) (*invoicetext.Draft, error) {
	s.analyzedPath, s.analyzedRef = path, ref
	if s.err != nil {
		return nil, s.err
	}
	return &invoicetext.Draft{Supplier: "ACME SAS", InvoiceNumber: "A-100", Items: []invoicetext.DraftItem{}, SourceReference: ref}, nil
}

func (s *stubService) CheckDuplicate(_ context.Context, supplier, invoice string) (bool, error) {
	return supplier == "ACME SAS" && invoice == "A-100", s.err
}

func (s *stubService) Create(_ context.Context, req dto.CreateReceptionRequest, userID string) (*entity.Reception, error) {
	s.createReq, s.userID = req, userID
	if s.err != nil {
		return nil, s.err
	}
	return &entity.Reception{ID: 9, Supplier: req.Supplier, Status: entity.ReceptionStatusPending}, nil
}

func (s *stubService) Get(_ context.Context, id int64) (*dto.ReceptionDetailDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ReceptionDetailDTO{ReceptionDTO: dto.ReceptionDTO{ID: id}}, nil
}

func (s *stubService) List(_ context.Context, req dto.ReceptionListRequest) ([]dto.ReceptionDTO, error) {
	s.listReq = req
	return []dto.ReceptionDTO{{ID: 1}, {ID: 2}}, s.err
}

func (s *stubService) ListPending(context.Context, dto.PageRequest) ([]dto.ReceptionDTO, error) {
	return []dto.ReceptionDTO{}, s.err
}

func (s *stubService) ListForApproval(context.Context, dto.PageRequest) ([]dto.ReceptionDTO, error) {
	return []dto.ReceptionDTO{}, s.err
}

func (s *stubService) ListSuppliers(context.Context) ([]string, error) {
	return []string{"ACME SAS"}, s.err
}

func (s *stubService) ApplyScan(_ context.Context, _ int64, req dto.ScanRequest, userID string) (*dto.ScanResultDTO, error) {
	s.scanReq, s.userID = req, userID
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ScanResultDTO{ProductID: 101, Tier: "catalogo", Quantity: decimal.NewFromInt(1)}, nil
}

func (s *stubService) UpdateExpectedItems(context.Context, int64, dto.UpdateExpectedItemsRequest, string) error {
	return s.err
}

func (s *stubService) Close(_ context.Context, id int64, req dto.CloseReceptionRequest, _ string) (*dto.CloseResultDTO, error) {
	s.closeReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.CloseResultDTO{ReceptionID: id, Verdict: "ok"}, nil
}

func (s *stubService) Approve(_ context.Context, id int64, _ string) (*dto.ApproveResultDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ApproveResultDTO{ReceptionID: id}, nil
}

func (s *stubService) GenerateReport(context.Context, int64) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-1.3 acta"), nil
}

func newReceptionApp(t *testing.T, svc *stubService) (*fiber.App, string) {
	t.Helper()
	dir := t.TempDir()
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{Receptions: svc, UploadDir: dir, JWTSecret: testJWTSecret})
	return app, dir
}

func call(t *testing.T, app *fiber.App, method, path, role string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	var out dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestReceptionHandler_Create_RolFacturacion(t *testing.T) {
	svc := &stubService{}
	app, _ := newReceptionApp(t, svc)

	resp := call(t, app, http.MethodPost, "/api/receptions", pkgjwt.RoleFacturacion,
		jsonBody(t, dto.CreateReceptionRequest{Supplier: "ACME SAS", InvoiceNumber: "A-100"}), fiber.MIMEApplicationJSON)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "ACME SAS", svc.createReq.Supplier)
	assert.Equal(t, testUserID, svc.userID)
}

func TestReceptionHandler_Create_LogisticaNoPuedeCrear(t *testing.T) {
	app, _ := newReceptionApp(t, &stubService{})

	resp := call(t, app, http.MethodPost, "/api/receptions", pkgjwt.RoleLogistica,
		jsonBody(t, dto.CreateReceptionRequest{Supplier: "ACME SAS"}), fiber.MIMEApplicationJSON)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestReceptionHandler_SinToken_401(t *testing.T) {
	app, _ := newReceptionApp(t, &stubService{})

	resp := call(t, app, http.MethodGet, "/api/receptions", "", nil, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestReceptionHandler_MapeoDeErrores(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validación", &domain.ValidationError{Field: "barcode", Message: "requerido"}, http.StatusBadRequest, "VALIDATION"},
		{"duplicado", &domain.DuplicateError{Supplier: "ACME SAS", InvoiceNumber: "A-100"}, http.StatusConflict, "DUPLICATE"},
		{"no encontrado", &domain.NotFoundError{Resource: "producto", Key: "999"}, http.StatusNotFound, "NOT_FOUND"},
		{"estado inválido", &domain.InvalidStateError{Operation: "escanear", Current: "recepcionado", Required: "pendiente_recepcion"}, http.StatusConflict, "INVALID_STATE"},
		{"notas requeridas", &domain.IncompleteReconciliationError{Verdict: "faltante"}, http.StatusUnprocessableEntity, "NOTES_REQUIRED"},
		{"reintentable", &domain.RetryableError{Op: "escanear", Err: context.DeadlineExceeded}, http.StatusServiceUnavailable, "RETRYABLE"},
		{"interno", fmt.Errorf("consulta: %w", errors.New("conexión cerrada")), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app, _ := newReceptionApp(t, &stubService{err: tc.err})

			resp := call(t, app, http.MethodPost, "/api/receptions/5/items", pkgjwt.RoleLogistica,
				jsonBody(t, dto.ScanRequest{Barcode: "7701234000014"}), fiber.MIMEApplicationJSON)
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, decodeError(t, resp).Code)
		})
	}
}

func TestReceptionHandler_Scan_PasaCodigoYCantidad(t *testing.T) {
	svc := &stubService{}
	app, _ := newReceptionApp(t, svc)

	resp := call(t, app, http.MethodPost, "/api/receptions/5/items", pkgjwt.RoleLogistica,
		bytes.NewBufferString(`{"barcode":"GENI14","quantity":"4"}`), fiber.MIMEApplicationJSON)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "GENI14", svc.scanReq.Barcode)
	require.NotNil(t, svc.scanReq.Quantity)
	assert.True(t, svc.scanReq.Quantity.Equal(decimal.NewFromInt(4)))
}

func TestReceptionHandler_IDInvalido_400(t *testing.T) {
	app, _ := newReceptionApp(t, &stubService{})

	resp := call(t, app, http.MethodGet, "/api/receptions/abc", pkgjwt.RoleCartera, nil, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReceptionHandler_Complete_SinCuerpo(t *testing.T) {
	svc := &stubService{}
	app, _ := newReceptionApp(t, svc)

	resp := call(t, app, http.MethodPost, "/api/receptions/5/complete-reception", pkgjwt.RoleLogistica, nil, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, svc.closeReq.Notes)
}

func TestReceptionHandler_Approve_SoloCartera(t *testing.T) {
	app, _ := newReceptionApp(t, &stubService{})

	denied := call(t, app, http.MethodPost, "/api/receptions/5/approve", pkgjwt.RoleLogistica, nil, "")
	defer denied.Body.Close()
	assert.Equal(t, http.StatusForbidden, denied.StatusCode)

	ok := call(t, app, http.MethodPost, "/api/receptions/5/approve", pkgjwt.RoleCartera, nil, "")
	defer ok.Body.Close()
	assert.Equal(t, http.StatusOK, ok.StatusCode)
}

func TestReceptionHandler_List_FiltroYPaginacion(t *testing.T) {
	svc := &stubService{}
	app, _ := newReceptionApp(t, svc)

	resp := call(t, app, http.MethodGet, "/api/receptions?status=recepcionado&limit=10&offset=20", pkgjwt.RoleCartera, nil, "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "recepcionado", svc.listReq.Status)
	assert.Equal(t, 10, svc.listReq.Limit)
	assert.Equal(t, 20, svc.listReq.Offset)
}

func TestReceptionHandler_DuplicateCheck(t *testing.T) {
	app, _ := newReceptionApp(t, &stubService{})

	resp := call(t, app, http.MethodGet, "/api/receptions/duplicate-check?supplier=ACME%20SAS&invoice_number=A-100", pkgjwt.RoleFacturacion, nil, "")
	defer resp.Body.Close()

	var out dto.DuplicateCheckResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Duplicate)
}

func TestReceptionHandler_Report_DevuelvePDF(t *testing.T) {
	app, _ := newReceptionApp(t, &stubService{})

	resp := call(t, app, http.MethodGet, "/api/receptions/5/report", pkgjwt.RoleAdmin, nil, "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "recepcion-5.pdf")
}

func multipartInvoice(t *testing.T, filename string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("invoice", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 factura"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestReceptionHandler_Analyze_GuardaArchivoYDevuelveBorrador(t *testing.T) {
	svc := &stubService{}
	app, dir := newReceptionApp(t, svc)

	body, ct := multipartInvoice(t, "factura.pdf")
	resp := call(t, app, http.MethodPost, "/api/receptions/analyze", pkgjwt.RoleFacturacion, body, ct)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, dir, filepath.Dir(svc.analyzedPath))
	assert.Equal(t, filepath.Base(svc.analyzedPath), svc.analyzedRef)
	_, err := os.Stat(svc.analyzedPath)
	assert.NoError(t, err, "el PDF debe quedar guardado en la carpeta de facturas")

	var draft invoicetext.Draft
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&draft))
	assert.Equal(t, svc.analyzedRef, draft.SourceReference)
}

func TestReceptionHandler_Analyze_RechazaNoPDF(t *testing.T) {
	svc := &stubService{}
	app, _ := newReceptionApp(t, svc)

	body, ct := multipartInvoice(t, "factura.docx")
	resp := call(t, app, http.MethodPost, "/api/receptions/analyze", pkgjwt.RoleFacturacion, body, ct)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, svc.analyzedPath)
}
