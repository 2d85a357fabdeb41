package reception

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Recepcion-api/internal/application/dto"
	"github.com/jhoicas/Recepcion-api/internal/domain"
	"github.com/jhoicas/Recepcion-api/internal/domain/entity"
	rules "github.com/jhoicas/Recepcion-api/internal/domain/reception"
	"github.com/jhoicas/Recepcion-api/internal/domain/repository"
)

func formatID(id int64) string { return strconv.FormatInt(id, 10) }

// ApprovalTransactionID llave de idempotencia de la acreditación de una recepción.
func ApprovalTransactionID(receptionID int64) string {
	return fmt.Sprintf("RECEPCION-%d", receptionID)
}

// Close cierra el escaneo: calcula el resultado (ok, faltante, sobrante) sobre todo lo
// esperado y todo lo escaneado, exige notas si no es ok y pasa a recepcionado.
func (uc *UseCase) Close(ctx context.Context, receptionID int64, req dto.CloseReceptionRequest, userID string) (*dto.CloseResultDTO, error) {
	if err := uc.validateStruct(req); err != nil {
		return nil, err
	}
	notes := strings.TrimSpace(req.Notes)

	var (
		r   *entity.Reception
		rec rules.Reconciliation
		now time.Time
	)
	err := uc.mutate(ctx, rules.OpClose, receptionLockKey(receptionID), func(ctx context.Context) error {
		return uc.txRunner.Run(ctx, func(
			receptionRepo repository.ReceptionRepository,
			_ repository.CatalogRepository,
			_ repository.InventoryRepository,
		) error {
			var err error
			if r, err = lockReception(ctx, receptionRepo, receptionID, rules.OpClose); err != nil {
				return err
			}
			expected, err := receptionRepo.ListExpectedItems(ctx, receptionID)
			if err != nil {
				return err
			}
			extras, err := receptionRepo.ListExtraItems(ctx, receptionID)
			if err != nil {
				return err
			}
			if len(expected) == 0 && len(extras) == 0 {
				return &domain.ValidationError{Field: "items", Message: "no hay items en la recepción"}
			}

			rec = rules.Reconcile(expected, extras)
			if err := rules.RequireNotes(rec, notes); err != nil {
				return err
			}
			now = time.Now()
			if err := receptionRepo.MarkReceived(ctx, receptionID, rec.Verdict, notes, userID, now); err != nil {
				return err
			}
			r.Status = entity.ReceptionStatusReceived
			r.Verdict = rec.Verdict
			r.Notes = notes
			r.ReceivedBy = userID
			r.ReceivedAt = &now
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int64("reception_id", receptionID).
		Str("verdict", string(rec.Verdict)).
		Str("expected_total", rec.ExpectedTotal.String()).
		Str("scanned_total", rec.ScannedTotal.String()).
		Msg("recepción recepcionada")
	uc.publish(ctx, eventFor(EventReceptionReceived, r, userID, now))

	return &dto.CloseResultDTO{
		ReceptionID:   receptionID,
		Verdict:       string(rec.Verdict),
		ExpectedTotal: rec.ExpectedTotal,
		ScannedTotal:  rec.ScannedTotal,
	}, nil
}

// Approve acredita en inventario, por producto, el total escaneado y marca la
// recepción como completado. Los productos ya acreditados en un intento anterior
// se omiten, así que reintentar tras un fallo parcial no duplica inventario.
func (uc *UseCase) Approve(ctx context.Context, receptionID int64, userID string) (*dto.ApproveResultDTO, error) {
	result := &dto.ApproveResultDTO{ReceptionID: receptionID, Credited: []dto.ProductQtyDTO{}}
	var (
		r       *entity.Reception
		credits []entity.ProductQuantity
		now     time.Time
	)
	txID := ApprovalTransactionID(receptionID)

	err := uc.mutate(ctx, rules.OpApprove, receptionLockKey(receptionID), func(ctx context.Context) error {
		return uc.txRunner.Run(ctx, func(
			receptionRepo repository.ReceptionRepository,
			_ repository.CatalogRepository,
			inventoryRepo repository.InventoryRepository,
		) error {
			result.Credited = result.Credited[:0]
			result.Skipped = nil
			var err error
			if r, err = lockReception(ctx, receptionRepo, receptionID, rules.OpApprove); err != nil {
				return err
			}
			if credits, err = receptionRepo.SumScannedByProduct(ctx, receptionID); err != nil {
				return err
			}

			now = time.Now()
			for _, c := range credits {
				applied, err := inventoryRepo.CreditOnce(ctx, &entity.InventoryMovement{
					ID:            uuid.New().String(),
					TransactionID: txID,
					ProductID:     c.ProductID,
					Type:          entity.MovementTypeReception,
					Quantity:      c.Quantity,
					CreatedAt:     now,
					CreatedBy:     userID,
				})
				if err != nil {
					return fmt.Errorf("acreditar producto %d: %w", c.ProductID, err)
				}
				line := dto.ProductQtyDTO{ProductID: c.ProductID, Quantity: c.Quantity}
				if applied {
					result.Credited = append(result.Credited, line)
				} else {
					result.Skipped = append(result.Skipped, line)
				}
			}

			if err := receptionRepo.MarkCompleted(ctx, receptionID, userID, now); err != nil {
				return err
			}
			r.Status = entity.ReceptionStatusCompleted
			r.ApprovedBy = userID
			r.ApprovedAt = &now
			r.CompletedAt = &now
			return nil
		})
	})
	if err != nil {
		uc.log.Warn().Err(err).Int64("reception_id", receptionID).Msg("aprobación no completada")
		return nil, err
	}

	uc.log.Info().
		Int64("reception_id", receptionID).
		Int("credited", len(result.Credited)).
		Int("skipped", len(result.Skipped)).
		Msg("recepción aprobada")
	ev := eventFor(EventReceptionApproved, r, userID, now)
	ev.Credits = credits
	uc.publish(ctx, ev)
	return result, nil
}
