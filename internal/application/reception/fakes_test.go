package reception_test

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Recepcion-api/internal/application/reception"
	"github.com/jhoicas/Recepcion-api/internal/domain"
	"github.com/jhoicas/Recepcion-api/internal/domain/entity"
	"github.com/jhoicas/Recepcion-api/internal/domain/repository"
)

// memStore implementa los tres repositorios en memoria. No es transaccional:
// lo que se escribió antes de un error queda escrito, como un actualizador de
// inventario externo a la BD.
type memStore struct {
	mu sync.Mutex

	nextID     int64
	receptions map[int64]*entity.Reception
	expected   map[int64][]*entity.ExpectedItem
	extras     map[int64][]*entity.ExtraItem
	scans      []*entity.ScanEvent

	products       []*entity.Product
	altBarcodes    map[string]string // barcode alterno -> nombre del producto
	supplierToOurs map[string]string // código proveedor -> nuestro barcode
	suppliers      []string

	available  map[int64]decimal.Decimal
	movements  map[string]*entity.InventoryMovement
	failCredit map[int64]int // fallos pendientes por producto
}

func newMemStore() *memStore {
	return &memStore{
		receptions:     map[int64]*entity.Reception{},
		expected:       map[int64][]*entity.ExpectedItem{},
		extras:         map[int64][]*entity.ExtraItem{},
		altBarcodes:    map[string]string{},
		supplierToOurs: map[string]string{},
		available:      map[int64]decimal.Decimal{},
		movements:      map[string]*entity.InventoryMovement{},
		failCredit:     map[int64]int{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) addProduct(p *entity.Product) *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, p)
	return p
}

// --- ReceptionRepository ---

func (s *memStore) Create(_ context.Context, r *entity.Reception) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id()
	cp := *r
	s.receptions[r.ID] = &cp
	return nil
}

func (s *memStore) GetByID(_ context.Context, id int64) (*entity.Reception, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.receptions[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *memStore) GetForUpdate(ctx context.Context, id int64) (*entity.Reception, error) {
	return s.GetByID(ctx, id)
}

func (s *memStore) ExistsBySupplierAndInvoice(_ context.Context, supplier, invoiceNumber string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.receptions {
		if strings.EqualFold(r.Supplier, supplier) && strings.EqualFold(r.InvoiceNumber, invoiceNumber) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) List(_ context.Context, f repository.ReceptionFilter) ([]*entity.Reception, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Reception
	for _, r := range s.receptions {
		if f.Status == "" || r.Status == f.Status {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *memStore) MarkReceived(_ context.Context, id int64, verdict entity.Verdict, notes, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.receptions[id]
	r.Status = entity.ReceptionStatusReceived
	r.Verdict = verdict
	r.Notes = notes
	r.ReceivedBy = userID
	r.ReceivedAt = &at
	return nil
}

func (s *memStore) MarkCompleted(_ context.Context, id int64, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.receptions[id]
	r.Status = entity.ReceptionStatusCompleted
	r.ApprovedBy = userID
	r.ApprovedAt = &at
	r.CompletedAt = &at
	return nil
}

func (s *memStore) ReplaceExpectedItems(_ context.Context, receptionID int64, items []*entity.ExpectedItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, ev := range s.scans {
		if ev.ReceptionID == receptionID && ev.ExpectedItemID != nil && ev.VoidedAt == nil {
			ev.VoidedAt = &now
		}
	}
	out := make([]*entity.ExpectedItem, 0, len(items))
	for _, it := range items {
		cp := *it
		cp.ID = s.id()
		cp.ReceptionID = receptionID
		cp.ScannedQuantity = decimal.Zero
		out = append(out, &cp)
	}
	s.expected[receptionID] = out
	return nil
}

func (s *memStore) ListExpectedItems(_ context.Context, receptionID int64) ([]*entity.ExpectedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.ExpectedItem, 0, len(s.expected[receptionID]))
	for _, it := range s.expected[receptionID] {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memStore) AddScannedQuantity(_ context.Context, expectedItemID int64, quantity decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, items := range s.expected {
		for _, it := range items {
			if it.ID == expectedItemID {
				it.ScannedQuantity = it.ScannedQuantity.Add(quantity)
				return nil
			}
		}
	}
	return errors.New("item esperado inexistente")
}

func (s *memStore) AddExtraQuantity(_ context.Context, receptionID, productID int64, quantity decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.extras[receptionID] {
		if it.ProductID == productID {
			it.Quantity = it.Quantity.Add(quantity)
			return nil
		}
	}
	s.extras[receptionID] = append(s.extras[receptionID], &entity.ExtraItem{
		ID: s.id(), ReceptionID: receptionID, ProductID: productID, Quantity: quantity,
	})
	return nil
}

func (s *memStore) ListExtraItems(_ context.Context, receptionID int64) ([]*entity.ExtraItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.ExtraItem, 0, len(s.extras[receptionID]))
	for _, it := range s.extras[receptionID] {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memStore) CreateScanEvent(_ context.Context, ev *entity.ScanEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev.ID = s.id()
	cp := *ev
	s.scans = append(s.scans, &cp)
	return nil
}

func (s *memStore) SumScannedByProduct(_ context.Context, receptionID int64) ([]entity.ProductQuantity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := map[int64]decimal.Decimal{}
	for _, ev := range s.scans {
		if ev.ReceptionID == receptionID && ev.VoidedAt == nil {
			totals[ev.ProductID] = totals[ev.ProductID].Add(ev.Quantity)
		}
	}
	out := make([]entity.ProductQuantity, 0, len(totals))
	for id, q := range totals {
		out = append(out, entity.ProductQuantity{ProductID: id, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// --- CatalogRepository ---

func (s *memStore) FindByCode(_ context.Context, code string) (*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Barcode == code || p.InternalCode == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) FindByAlternateBarcode(_ context.Context, barcode string) (*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.altBarcodes[barcode]
	if !ok {
		return nil, nil
	}
	for _, p := range s.products {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) CanonicalBarcode(_ context.Context, supplierCode string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.supplierToOurs[supplierCode], nil
}

func (s *memStore) SupplierCode(_ context.Context, barcode string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sc, b := range s.supplierToOurs {
		if b == barcode {
			return sc, nil
		}
	}
	return "", nil
}

func (s *memStore) ListSuppliers(context.Context) ([]string, error) {
	return s.suppliers, nil
}

// --- InventoryRepository ---

func (s *memStore) CreditOnce(_ context.Context, m *entity.InventoryMovement) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCredit[m.ProductID] > 0 {
		s.failCredit[m.ProductID]--
		return false, errors.New("inventario no disponible")
	}
	key := m.TransactionID + "|" + strconv.FormatInt(m.ProductID, 10)
	if _, done := s.movements[key]; done {
		return false, nil
	}
	cp := *m
	s.movements[key] = &cp
	s.available[m.ProductID] = s.available[m.ProductID].Add(m.Quantity)
	return true, nil
}

func (s *memStore) scanCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scans)
}

// memTx ejecuta fn directamente sobre el store.
type memTx struct{ store *memStore }

func (t memTx) Run(ctx context.Context, fn func(repository.ReceptionRepository, repository.CatalogRepository, repository.InventoryRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(t.store, t.store, t.store)
}

// blockingTx espera a que venza el contexto, como una BD que no responde.
type blockingTx struct{}

func (blockingTx) Run(ctx context.Context, _ func(repository.ReceptionRepository, repository.CatalogRepository, repository.InventoryRepository) error) error {
	<-ctx.Done()
	return ctx.Err()
}

// memLocker mutex por llave en proceso.
type memLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
	keys  []string
}

func newMemLocker() *memLocker { return &memLocker{locks: map[string]*sync.Mutex{}} }

func (l *memLocker) Lock(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.keys = append(l.keys, key)
	l.mu.Unlock()
	m.Lock()
	return m.Unlock, nil
}

// busyLocker simula un bloqueo tomado por otra instancia.
type busyLocker struct{}

func (busyLocker) Lock(context.Context, string) (func(), error) {
	return nil, &domain.RetryableError{Op: "bloqueo", Err: errors.New("bloqueo ocupado")}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []reception.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev reception.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type staticText struct {
	lines []string
	err   error
}

func (s staticText) Lines(context.Context, string) ([]string, error) { return s.lines, s.err }

type stubReports struct{ got *reception.Report }

func (g *stubReports) GenerateReceptionReport(r reception.Report) ([]byte, error) {
	g.got = &r
	return []byte("%PDF-1.4"), nil
}
