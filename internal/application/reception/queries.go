package reception

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/Recepcion-api/internal/application/dto"
	"github.com/jhoicas/Recepcion-api/internal/domain"
	"github.com/jhoicas/Recepcion-api/internal/domain/entity"
	"github.com/jhoicas/Recepcion-api/internal/domain/invoicetext"
	"github.com/jhoicas/Recepcion-api/internal/domain/repository"
)

const defaultListLimit = 50

// Get devuelve la recepción con sus items esperados y extra.
func (uc *UseCase) Get(ctx context.Context, receptionID int64) (*dto.ReceptionDetailDTO, error) {
	var out *dto.ReceptionDetailDTO
	err := uc.read(ctx, "obtener recepción", func(ctx context.Context) error {
		report, err := uc.loadReport(ctx, receptionID)
		if err != nil {
			return err
		}
		out = toDetailDTO(report)
		return nil
	})
	return out, err
}

func (uc *UseCase) loadReport(ctx context.Context, receptionID int64) (*Report, error) {
	r, err := uc.receptions.GetByID(ctx, receptionID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, &domain.NotFoundError{Resource: "recepción", Key: formatID(receptionID)}
	}
	expected, err := uc.receptions.ListExpectedItems(ctx, receptionID)
	if err != nil {
		return nil, err
	}
	extras, err := uc.receptions.ListExtraItems(ctx, receptionID)
	if err != nil {
		return nil, err
	}
	return &Report{Reception: r, ExpectedItems: expected, ExtraItems: extras}, nil
}

// List recepciones por estado opcional, las más recientes primero.
func (uc *UseCase) List(ctx context.Context, req dto.ReceptionListRequest) ([]dto.ReceptionDTO, error) {
	req.DefaultPage(defaultListLimit)
	if err := uc.validateStruct(req); err != nil {
		return nil, err
	}
	return uc.list(ctx, repository.ReceptionFilter{
		Status: entity.ReceptionStatus(req.Status),
		Limit:  req.Limit,
		Offset: req.Offset,
	})
}

// ListPending recepciones que logística puede escanear.
func (uc *UseCase) ListPending(ctx context.Context, page dto.PageRequest) ([]dto.ReceptionDTO, error) {
	return uc.List(ctx, dto.ReceptionListRequest{Status: string(entity.ReceptionStatusPending), PageRequest: page})
}

// ListForApproval recepciones recepcionadas que esperan a cartera, la última recibida primero.
func (uc *UseCase) ListForApproval(ctx context.Context, page dto.PageRequest) ([]dto.ReceptionDTO, error) {
	page.DefaultPage(defaultListLimit)
	if err := uc.validateStruct(page); err != nil {
		return nil, err
	}
	return uc.list(ctx, repository.ReceptionFilter{
		Status:  entity.ReceptionStatusReceived,
		OrderBy: "received_at",
		Limit:   page.Limit,
		Offset:  page.Offset,
	})
}

func (uc *UseCase) list(ctx context.Context, f repository.ReceptionFilter) ([]dto.ReceptionDTO, error) {
	out := []dto.ReceptionDTO{}
	err := uc.read(ctx, "listar recepciones", func(ctx context.Context) error {
		list, err := uc.receptions.List(ctx, f)
		if err != nil {
			return err
		}
		for _, r := range list {
			out = append(out, toReceptionDTO(r))
		}
		return nil
	})
	return out, err
}

// ListSuppliers proveedores configurados en el catálogo, para el selector de alta.
func (uc *UseCase) ListSuppliers(ctx context.Context) ([]string, error) {
	var out []string
	err := uc.read(ctx, "listar proveedores", func(ctx context.Context) error {
		var err error
		out, err = uc.catalog.ListSuppliers(ctx)
		return err
	})
	if out == nil {
		out = []string{}
	}
	return out, err
}

// AnalyzeInvoice extrae un borrador (proveedor, NIT, factura, items) del documento en path.
// El borrador es una sugerencia: nada se persiste. sourceRef se devuelve para que el
// cliente asocie el archivo al crear la recepción.
func (uc *UseCase) AnalyzeInvoice(ctx context.Context, path, sourceRef string) (*invoicetext.Draft, error) {
	if path == "" {
		return nil, &domain.ValidationError{Field: "invoice", Message: "archivo PDF requerido"}
	}
	var draft invoicetext.Draft
	err := uc.read(ctx, "analizar factura", func(ctx context.Context) error {
		lines, err := uc.texts.Lines(ctx, path)
		if err != nil {
			return fmt.Errorf("leer texto del documento: %w", err)
		}
		draft = invoicetext.Extract(lines)
		return nil
	})
	if err != nil {
		return nil, err
	}
	draft.SourceReference = sourceRef

	// Items sin línea de cantidad se descartan; se avisa para revisión manual.
	ev := uc.log.Info()
	if draft.DroppedItems > 0 {
		ev = uc.log.Warn().Int("dropped_items", draft.DroppedItems)
	}
	ev.Str("supplier", draft.Supplier).
		Str("invoice_number", draft.InvoiceNumber).
		Int("items", len(draft.Items)).
		Msg("factura analizada")
	return &draft, nil
}

// GenerateReport genera el PDF del acta de recepción.
func (uc *UseCase) GenerateReport(ctx context.Context, receptionID int64) ([]byte, error) {
	if uc.reports == nil {
		return nil, errors.New("generador de reportes no configurado")
	}
	var report *Report
	err := uc.read(ctx, "generar acta", func(ctx context.Context) error {
		var err error
		report, err = uc.loadReport(ctx, receptionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	pdf, err := uc.reports.GenerateReceptionReport(*report)
	if err != nil {
		return nil, fmt.Errorf("generar acta de recepción: %w", err)
	}
	return pdf, nil
}
