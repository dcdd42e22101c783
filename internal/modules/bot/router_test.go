package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibericokitchen/inventory-bot/internal/modules/catalog"
	"github.com/ibericokitchen/inventory-bot/internal/modules/ingest"
	"github.com/ibericokitchen/inventory-bot/internal/modules/inventory"
	"github.com/ibericokitchen/inventory-bot/internal/modules/report"
	"github.com/ibericokitchen/inventory-bot/internal/modules/session"
)

// ── fakes ────────────────────────────────────────────────────────────────────

type fakeTransport struct {
	sent  []string
	files map[string][]byte
}

func (t *fakeTransport) SendMessage(_ int64, html string) error {
	t.sent = append(t.sent, html)
	return nil
}

func (t *fakeTransport) FetchFile(_ context.Context, fileID string) ([]byte, error) {
	return t.files[fileID], nil
}

func (t *fakeTransport) last() string {
	if len(t.sent) == 0 {
		return ""
	}
	return t.sent[len(t.sent)-1]
}

type fakeCatalog struct {
	known       map[string]catalog.Resolved
	baseTargets map[uuid.UUID]float64
}

func (c *fakeCatalog) Resolve(_ context.Context, names []string) (map[string]catalog.Resolved, error) {
	out := map[string]catalog.Resolved{}
	for _, n := range names {
		if r, ok := c.known[n]; ok {
			out[n] = r
		}
	}
	return out, nil
}

func (c *fakeCatalog) SetBaseTarget(_ context.Context, id uuid.UUID, qty float64) error {
	if c.baseTargets == nil {
		c.baseTargets = map[uuid.UUID]float64{}
	}
	c.baseTargets[id] = qty
	return nil
}

func (c *fakeCatalog) SetBaseTargets(ctx context.Context, targets map[uuid.UUID]float64) error {
	for id, qty := range targets {
		if err := c.SetBaseTarget(ctx, id, qty); err != nil {
			return err
		}
	}
	return nil
}

type fakeInventory struct {
	cycles    [][]inventory.Line
	purchases [][]inventory.Line
	stock     []inventory.StockRow
	stockErr  error
}

func (i *fakeInventory) GetStockActual(context.Context) ([]inventory.StockRow, error) {
	return i.stock, i.stockErr
}

func (i *fakeInventory) GetSuggestedPurchases(context.Context) ([]inventory.Suggestion, error) {
	if i.stockErr != nil {
		return nil, i.stockErr
	}
	return nil, nil
}

func (i *fakeInventory) GetSuggestedPurchasesByStore(context.Context) ([]inventory.StoreSuggestions, error) {
	if i.stockErr != nil {
		return nil, i.stockErr
	}
	return nil, nil
}

func (i *fakeInventory) StartNewCycle(_ context.Context, lines []inventory.Line) (uuid.UUID, error) {
	i.cycles = append(i.cycles, lines)
	return uuid.New(), nil
}

func (i *fakeInventory) RecordPurchase(_ context.Context, lines []inventory.Line) (uuid.UUID, error) {
	i.purchases = append(i.purchases, lines)
	return uuid.New(), nil
}

type fakeIngests struct {
	created  []*ingest.Record
	statuses map[uuid.UUID]ingest.Status
	reasons  map[uuid.UUID]string
}

func (f *fakeIngests) Create(_ context.Context, rec *ingest.Record) error {
	f.created = append(f.created, rec)
	return nil
}

func (f *fakeIngests) SetStatus(_ context.Context, id uuid.UUID, status ingest.Status, reason string) error {
	if f.statuses == nil {
		f.statuses = map[uuid.UUID]ingest.Status{}
		f.reasons = map[uuid.UUID]string{}
	}
	f.statuses[id] = status
	f.reasons[id] = reason
	return nil
}

type fakeReports struct {
	items []report.Item
	err   error
}

func (f *fakeReports) ExtractItems(context.Context, report.Mode, []byte, string) ([]report.Item, error) {
	return f.items, f.err
}

// ── harness ──────────────────────────────────────────────────────────────────

type harness struct {
	router    *Router
	transport *fakeTransport
	sessions  session.Store
	catalog   *fakeCatalog
	inventory *fakeInventory
	ingests   *fakeIngests
	reports   *fakeReports
}

func newHarness() *harness {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	h := &harness{
		transport: &fakeTransport{files: map[string][]byte{"file-1": []byte("img")}},
		sessions:  session.NewMemoryStore(),
		catalog:   &fakeCatalog{known: map[string]catalog.Resolved{}},
		inventory: &fakeInventory{},
		ingests:   &fakeIngests{},
		reports:   &fakeReports{},
	}
	h.router = NewRouter(
		h.transport, h.sessions, h.catalog, h.inventory, h.ingests, h.reports,
		5*time.Second, log,
	)
	return h
}

func (h *harness) text(chatID int64, text string) {
	h.router.Handle(context.Background(), &Incoming{ChatID: chatID, Text: text})
}

func (h *harness) photo(chatID int64, mime string) {
	h.router.Handle(context.Background(), &Incoming{ChatID: chatID, File: &FileMeta{
		FileID: "file-1", FileUniqueID: "u1", FileName: "photo.jpg", MimeType: mime,
	}})
}

func (h *harness) know(name string) uuid.UUID {
	id := uuid.New()
	h.catalog.known[name] = catalog.Resolved{ProductID: id, Name: name}
	return id
}

// ── tests ────────────────────────────────────────────────────────────────────

func TestUnknownCommand(t *testing.T) {
	t.Run("while idle replies help", func(t *testing.T) {
		h := newHarness()
		h.text(1, "/loquesea")
		assert.Contains(t, h.transport.last(), "/menu")
		assert.Nil(t, h.sessions.Get(1))
	})

	t.Run("while batching reminds the active mode without changing state", func(t *testing.T) {
		h := newHarness()
		h.text(1, "/semana")
		h.text(1, "/loquesea")
		assert.Contains(t, h.transport.last(), "inventario semanal")

		s := h.sessions.Get(1)
		require.NotNil(t, s)
		assert.Equal(t, session.ModeWeekly, s.Mode)
	})
}

func TestWeeklyTextFlow(t *testing.T) {
	h := newHarness()
	coca := h.know("Coca")

	h.text(1, "/semana")
	h.text(1, "Coca = 2")
	require.NotNil(t, h.sessions.Get(1))
	assert.Contains(t, h.transport.last(), "Anoté")

	h.text(1, "/fin")
	require.Len(t, h.inventory.cycles, 1)
	assert.Equal(t, []inventory.Line{{ProductID: coca, Qty: 2}}, h.inventory.cycles[0])
	assert.Nil(t, h.sessions.Get(1), "session destroyed on finalize")
	assert.Contains(t, h.transport.last(), "Inventario semanal guardado")
}

func TestWeeklyBatchAccumulatesAcrossMessages(t *testing.T) {
	h := newHarness()
	coca := h.know("Coca")

	h.text(1, "/semana")
	h.text(1, "Coca = 2")
	h.text(1, "Coca = 3")
	h.text(1, "/fin")

	require.Len(t, h.inventory.cycles, 1)
	require.Len(t, h.inventory.cycles[0], 1)
	assert.Equal(t, inventory.Line{ProductID: coca, Qty: 5}, h.inventory.cycles[0][0])
}

func TestPurchaseFlow(t *testing.T) {
	h := newHarness()
	coca := h.know("Coca")

	h.text(1, "/ingreso")
	h.text(1, "Coca = 6")
	h.text(1, "/fin")

	assert.Empty(t, h.inventory.cycles)
	require.Len(t, h.inventory.purchases, 1)
	assert.Equal(t, []inventory.Line{{ProductID: coca, Qty: 6}}, h.inventory.purchases[0])
}

func TestBaseEditReplacesInsteadOfSumming(t *testing.T) {
	h := newHarness()
	coca := h.know("Coca")

	h.text(1, "/base")
	h.text(1, "Coca = 10")
	h.text(1, "Coca = 24")
	h.text(1, "/fin")

	assert.Equal(t, 24.0, h.catalog.baseTargets[coca])
	assert.Empty(t, h.inventory.cycles)
}

func TestBaseInlineIsSingleShot(t *testing.T) {
	h := newHarness()
	coca := h.know("Coca")

	h.text(1, "/base Coca = 24")
	assert.Equal(t, 24.0, h.catalog.baseTargets[coca])
	assert.Nil(t, h.sessions.Get(1), "inline base edit creates no session")
	assert.Contains(t, h.transport.last(), "actualizada")
}

func TestFinalize(t *testing.T) {
	t.Run("while idle", func(t *testing.T) {
		h := newHarness()
		h.text(1, "/fin")
		assert.Empty(t, h.inventory.cycles)
		assert.Contains(t, h.transport.last(), "No hay nada activo")
	})

	t.Run("empty batch is an implicit cancel and never persists", func(t *testing.T) {
		h := newHarness()
		h.text(1, "/semana")
		h.text(1, "/fin")

		assert.Empty(t, h.inventory.cycles)
		assert.Empty(t, h.inventory.purchases)
		assert.Nil(t, h.sessions.Get(1))
	})
}

func TestCancelDiscards(t *testing.T) {
	h := newHarness()
	h.know("Coca")

	h.text(1, "/semana")
	h.text(1, "Coca = 2")
	h.text(1, "/cancelar")

	assert.Nil(t, h.sessions.Get(1))
	h.text(1, "/fin")
	assert.Empty(t, h.inventory.cycles, "canceled batch must not be committable")
}

func TestPartialResolutionKeepsResolvedLines(t *testing.T) {
	h := newHarness()
	coca := h.know("Coca")

	h.text(1, "/semana")
	h.text(1, "Coca = 2\nInventado = 1")

	reply := h.transport.last()
	assert.Contains(t, reply, "No reconocí")
	assert.Contains(t, reply, "Inventado")

	h.text(1, "/fin")
	require.Len(t, h.inventory.cycles, 1)
	assert.Equal(t, []inventory.Line{{ProductID: coca, Qty: 2}}, h.inventory.cycles[0])
}

func TestUnparseableTextRepliesFormatHelp(t *testing.T) {
	h := newHarness()
	h.text(1, "/semana")
	h.text(1, "hola buenas")
	assert.Contains(t, h.transport.last(), "Producto = cantidad")

	h.text(1, "/fin")
	assert.Empty(t, h.inventory.cycles)
}

func TestSkippedLinesAreSurfaced(t *testing.T) {
	h := newHarness()
	h.know("Coca")

	h.text(1, "/semana")
	h.text(1, "Coca = 2\nesto no es una linea")
	assert.Contains(t, h.transport.last(), "Ignoré 1")
}

func TestMediaWhileIdle(t *testing.T) {
	h := newHarness()
	h.photo(1, "image/jpeg")
	assert.Contains(t, h.transport.last(), "/semana")
	assert.Empty(t, h.ingests.created, "no ingest outside a mode")
}

func TestPhotoFlow(t *testing.T) {
	t.Run("clean extraction merges and marks processed", func(t *testing.T) {
		h := newHarness()
		coca := h.know("Coca")
		h.reports.items = []report.Item{{RawName: "Coca", Qty: 2}}

		h.text(1, "/semana")
		h.photo(1, "image/jpeg")

		require.Len(t, h.ingests.created, 1)
		rec := h.ingests.created[0]
		assert.Equal(t, ingest.StatusProcessed, h.ingests.statuses[rec.ID])

		h.text(1, "/fin")
		require.Len(t, h.inventory.cycles, 1)
		assert.Equal(t, []inventory.Line{{ProductID: coca, Qty: 2}}, h.inventory.cycles[0])
	})

	t.Run("unresolved names mark processed_with_missing but merge the rest", func(t *testing.T) {
		h := newHarness()
		h.know("Coca")
		h.reports.items = []report.Item{
			{RawName: "Coca", Qty: 2},
			{RawName: "Garabato", Qty: 1},
		}

		h.text(1, "/semana")
		h.photo(1, "image/jpeg")

		rec := h.ingests.created[0]
		assert.Equal(t, ingest.StatusProcessedWithMissing, h.ingests.statuses[rec.ID])
		assert.Contains(t, h.ingests.reasons[rec.ID], "Garabato")

		s := h.sessions.Get(1)
		require.NotNil(t, s)
		assert.Equal(t, 1, s.Batch.Len())
	})

	t.Run("empty extraction fails the ingest and leaves the batch untouched", func(t *testing.T) {
		h := newHarness()
		h.reports.items = nil

		h.text(1, "/semana")
		h.photo(1, "image/jpeg")

		rec := h.ingests.created[0]
		assert.Equal(t, ingest.StatusFailed, h.ingests.statuses[rec.ID])
		assert.Equal(t, "extractor_returned_empty", h.ingests.reasons[rec.ID])
		assert.True(t, h.sessions.Get(1).Batch.Empty())
	})

	t.Run("unsupported mime fails without calling the extractor", func(t *testing.T) {
		h := newHarness()
		h.text(1, "/semana")
		h.photo(1, "application/pdf")

		rec := h.ingests.created[0]
		assert.Equal(t, ingest.StatusFailed, h.ingests.statuses[rec.ID])
		assert.True(t, strings.HasPrefix(h.ingests.reasons[rec.ID], "unsupported_mime:"))
		assert.True(t, h.sessions.Get(1).Batch.Empty())
	})

	t.Run("photo in base edit mode is rejected", func(t *testing.T) {
		h := newHarness()
		h.text(1, "/base")
		h.photo(1, "image/jpeg")
		assert.Empty(t, h.ingests.created)
	})
}

func TestQueriesWithoutSnapshot(t *testing.T) {
	h := newHarness()
	h.inventory.stockErr = inventory.ErrNoSnapshot

	for _, cmd := range []string{"/stock", "/compras", "/compras_tienda"} {
		h.text(1, cmd)
		assert.Contains(t, h.transport.last(), "/semana", cmd)
	}
}

func TestStockMessageFormatsTwoDecimals(t *testing.T) {
	h := newHarness()
	h.inventory.stock = []inventory.StockRow{
		{Name: "Coca", Store: "Bar", StockActual: 7.5},
	}
	h.text(1, "/stock")
	assert.Contains(t, h.transport.last(), "7.50")
}

func TestChatsAreIsolated(t *testing.T) {
	h := newHarness()
	h.know("Coca")

	h.text(1, "/semana")
	h.text(2, "Coca = 2")
	assert.Contains(t, h.transport.last(), "/menu", "chat 2 is idle")

	h.text(1, "Coca = 2")
	require.NotNil(t, h.sessions.Get(1))
	assert.Equal(t, 1, h.sessions.Get(1).Batch.Len())
	assert.Nil(t, h.sessions.Get(2))
}
