package reception

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Recepcion-api/internal/application/dto"
	"github.com/jhoicas/Recepcion-api/internal/domain"
	"github.com/jhoicas/Recepcion-api/internal/domain/entity"
	rules "github.com/jhoicas/Recepcion-api/internal/domain/reception"
	"github.com/jhoicas/Recepcion-api/internal/domain/repository"
)

// lockReception bloquea la fila y verifica la precondición de estado de op.
func lockReception(ctx context.Context, repo repository.ReceptionRepository, id int64, op string) (*entity.Reception, error) {
	r, err := repo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, &domain.NotFoundError{Resource: "recepción", Key: formatID(id)}
	}
	if err := rules.EnsureStatus(r, op); err != nil {
		return nil, err
	}
	return r, nil
}

// ApplyScan resuelve el código escaneado y suma la cantidad al item esperado que
// coincida o, si ninguno coincide, al item extra del producto. Si el código no
// resuelve a ningún producto devuelve NotFoundError sin modificar nada.
// Escaneos repetidos siempre suman: no se deduplican lecturas físicas.
func (uc *UseCase) ApplyScan(ctx context.Context, receptionID int64, req dto.ScanRequest, userID string) (*dto.ScanResultDTO, error) {
	if err := uc.validateStruct(req); err != nil {
		return nil, err
	}
	payload := rules.ParsePayload(req.Barcode)
	code := payload.Code()
	if code == "" {
		return nil, &domain.ValidationError{Field: "barcode", Message: "el código escaneado es obligatorio"}
	}
	qty := decimal.NewFromInt(1)
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if override, ok := payload.QuantityOverride(); ok {
		qty = override
	}
	if !qty.IsPositive() {
		return nil, &domain.ValidationError{Field: "quantity", Message: "la cantidad debe ser mayor que cero"}
	}
	if err := checkQuantityPrecision("quantity", qty); err != nil {
		return nil, err
	}

	event := &entity.ScanEvent{
		ReceptionID: receptionID,
		ScannedCode: code,
		Quantity:    qty,
		ScannedBy:   userID,
	}
	if label, ok := payload.(rules.LabelPayload); ok {
		event.Lot = label.Lot
		event.Expiry = label.Expiry
	}
	var product *entity.Product

	err := uc.mutate(ctx, rules.OpApplyScan, receptionLockKey(receptionID), func(ctx context.Context) error {
		return uc.txRunner.Run(ctx, func(
			receptionRepo repository.ReceptionRepository,
			catalogRepo repository.CatalogRepository,
			_ repository.InventoryRepository,
		) error {
			if _, err := lockReception(ctx, receptionRepo, receptionID, rules.OpApplyScan); err != nil {
				return err
			}
			res, err := NewCodeResolver(catalogRepo).Resolve(ctx, code)
			if err != nil {
				return err
			}
			product = res.Product

			supplierCode := ""
			if strings.TrimSpace(product.Barcode) != "" {
				if supplierCode, err = catalogRepo.SupplierCode(ctx, product.Barcode); err != nil {
					return err
				}
			}
			expected, err := receptionRepo.ListExpectedItems(ctx, receptionID)
			if err != nil {
				return err
			}

			if match := rules.MatchExpectedItem(expected, product, supplierCode); match != nil {
				if err := receptionRepo.AddScannedQuantity(ctx, match.ID, qty); err != nil {
					return err
				}
				matchedID := match.ID
				event.ExpectedItemID = &matchedID
			} else if err := receptionRepo.AddExtraQuantity(ctx, receptionID, product.ID, qty); err != nil {
				return err
			}

			event.ProductID = product.ID
			event.Tier = res.Tier
			event.ScannedAt = time.Now()
			return receptionRepo.CreateScanEvent(ctx, event)
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int64("reception_id", receptionID).
		Int64("product_id", product.ID).
		Str("tier", string(event.Tier)).
		Str("quantity", qty.String()).
		Bool("expected", event.ExpectedItemID != nil).
		Msg("escaneo aplicado")

	return &dto.ScanResultDTO{
		ProductID:      product.ID,
		ProductName:    product.Name,
		Tier:           string(event.Tier),
		Quantity:       qty,
		ExpectedItemID: event.ExpectedItemID,
		Lot:            event.Lot,
		Expiry:         event.Expiry,
	}, nil
}

// UpdateExpectedItems reemplaza de forma atómica todos los items esperados.
// Solo se permite mientras la recepción está pendiente_recepcion.
func (uc *UseCase) UpdateExpectedItems(ctx context.Context, receptionID int64, req dto.UpdateExpectedItemsRequest, userID string) error {
	if err := uc.validateStruct(req); err != nil {
		return err
	}
	if err := validateExpectedItems(req.ExpectedItems); err != nil {
		return err
	}

	err := uc.mutate(ctx, rules.OpUpdateExpectedItems, receptionLockKey(receptionID), func(ctx context.Context) error {
		return uc.txRunner.Run(ctx, func(
			receptionRepo repository.ReceptionRepository,
			_ repository.CatalogRepository,
			_ repository.InventoryRepository,
		) error {
			if _, err := lockReception(ctx, receptionRepo, receptionID, rules.OpUpdateExpectedItems); err != nil {
				return err
			}
			return receptionRepo.ReplaceExpectedItems(ctx, receptionID, toExpectedItems(receptionID, req.ExpectedItems))
		})
	})
	if err != nil {
		return err
	}
	uc.log.Info().
		Int64("reception_id", receptionID).
		Str("user_id", userID).
		Int("expected_items", len(req.ExpectedItems)).
		Msg("items esperados actualizados")
	return nil
}
