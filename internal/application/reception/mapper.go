package reception

import (
	"github.com/jhoicas/Recepcion-api/internal/application/dto"
	"github.com/jhoicas/Recepcion-api/internal/domain/entity"
)

func toReceptionDTO(r *entity.Reception) dto.ReceptionDTO {
	return dto.ReceptionDTO{
		ID:              r.ID,
		Supplier:        r.Supplier,
		SupplierNIT:     r.SupplierNIT,
		InvoiceNumber:   r.InvoiceNumber,
		InvoiceFilePath: r.InvoiceFilePath,
		Status:          string(r.Status),
		Verdict:         string(r.Verdict),
		Notes:           r.Notes,
		CreatedBy:       r.CreatedBy,
		ReceivedBy:      r.ReceivedBy,
		ApprovedBy:      r.ApprovedBy,
		CreatedAt:       r.CreatedAt,
		ReceivedAt:      r.ReceivedAt,
		ApprovedAt:      r.ApprovedAt,
		CompletedAt:     r.CompletedAt,
	}
}

func toDetailDTO(rep *Report) *dto.ReceptionDetailDTO {
	out := &dto.ReceptionDetailDTO{
		ReceptionDTO:  toReceptionDTO(rep.Reception),
		ExpectedItems: make([]dto.ExpectedItemDTO, 0, len(rep.ExpectedItems)),
		Items:         make([]dto.ExtraItemDTO, 0, len(rep.ExtraItems)),
	}
	for _, it := range rep.ExpectedItems {
		out.ExpectedItems = append(out.ExpectedItems, dto.ExpectedItemDTO{
			ID:               it.ID,
			ItemCode:         it.ItemCode,
			ItemDescription:  it.ItemDescription,
			ExpectedQuantity: it.ExpectedQuantity,
			ScannedQuantity:  it.ScannedQuantity,
		})
	}
	for _, it := range rep.ExtraItems {
		out.Items = append(out.Items, dto.ExtraItemDTO{
			ID:           it.ID,
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			InternalCode: it.InternalCode,
			Barcode:      it.Barcode,
			Quantity:     it.Quantity,
		})
	}
	return out
}
