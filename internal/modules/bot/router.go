package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ibericokitchen/inventory-bot/internal/modules/catalog"
	"github.com/ibericokitchen/inventory-bot/internal/modules/ingest"
	"github.com/ibericokitchen/inventory-bot/internal/modules/inventory"
	"github.com/ibericokitchen/inventory-bot/internal/modules/report"
	"github.com/ibericokitchen/inventory-bot/internal/modules/session"
)

// Router is the per-chat interaction state machine: it decides what each
// inbound message means given the chat's mode, merges quantity reports into
// the batch, and commits or discards on the lifecycle commands.
type Router struct {
	transport Transport
	sessions  session.Store
	catalog   catalog.Service
	inventory inventory.Service
	ingests   ingest.Repository
	reports   report.Service
	log       *logrus.Logger

	visionTimeout time.Duration
}

// NewRouter wires the state machine to its collaborators.
func NewRouter(
	transport Transport,
	sessions session.Store,
	catalogSvc catalog.Service,
	inventorySvc inventory.Service,
	ingests ingest.Repository,
	reports report.Service,
	visionTimeout time.Duration,
	log *logrus.Logger,
) *Router {
	return &Router{
		transport:     transport,
		sessions:      sessions,
		catalog:       catalogSvc,
		inventory:     inventorySvc,
		ingests:       ingests,
		reports:       reports,
		visionTimeout: visionTimeout,
		log:           log,
	}
}

// Handle processes one inbound event. Events of the same chat must be handed
// in arrival order; the dispatcher guarantees that.
func (r *Router) Handle(ctx context.Context, in *Incoming) {
	text := strings.TrimSpace(in.Text)
	if strings.HasPrefix(text, "/") {
		r.handleCommand(ctx, in.ChatID, text)
		return
	}
	r.handleReport(ctx, in)
}

func (r *Router) handleCommand(ctx context.Context, chatID int64, text string) {
	cmd, rest, _ := strings.Cut(text, " ")
	// Strip the @botname suffix Telegram appends in groups.
	cmd, _, _ = strings.Cut(cmd, "@")

	switch cmd {
	case "/menu", "/start":
		r.send(chatID, msgMenu)
	case "/semana":
		r.startBatch(chatID, session.ModeWeekly)
	case "/ingreso":
		r.startBatch(chatID, session.ModePurchase)
	case "/base":
		if strings.Contains(rest, "=") {
			r.setBaseInline(ctx, chatID, rest)
			return
		}
		r.startBatch(chatID, session.ModeBaseEdit)
	case "/fin":
		r.finalize(ctx, chatID)
	case "/cancelar":
		r.cancel(chatID)
	case "/stock":
		r.sendStock(ctx, chatID)
	case "/compras":
		r.sendSuggestions(ctx, chatID)
	case "/compras_tienda":
		r.sendSuggestionsByStore(ctx, chatID)
	default:
		if s := r.sessions.Get(chatID); s != nil {
			r.send(chatID, reminderMessage(s))
			return
		}
		r.send(chatID, `No entendí. Usa <code>/menu</code>.`)
	}
}

// startBatch enters BATCH(mode) with an empty accumulator. Starting over an
// existing session replaces it; the old batch is discarded.
func (r *Router) startBatch(chatID int64, mode session.Mode) {
	r.sessions.Put(session.New(chatID, mode))
	r.send(chatID, startMessage(mode))
}

func (r *Router) cancel(chatID int64) {
	if r.sessions.Get(chatID) == nil {
		r.send(chatID, `No hay nada activo que cancelar.`)
		return
	}
	r.sessions.Delete(chatID)
	r.send(chatID, `Lote descartado. No guardé nada.`)
}

// finalize commits the accumulated batch. An empty batch is an implicit
// cancel: state is discarded and persistence is never called.
func (r *Router) finalize(ctx context.Context, chatID int64) {
	s := r.sessions.Get(chatID)
	if s == nil {
		r.send(chatID, `No hay nada activo. Usa <code>/semana</code>, <code>/ingreso</code> o <code>/base</code>.`)
		return
	}
	if s.Batch.Empty() {
		r.sessions.Delete(chatID)
		r.send(chatID, `No había nada acumulado, lote cerrado ✅`)
		return
	}

	var err error
	switch s.Mode {
	case session.ModeWeekly:
		_, err = r.inventory.StartNewCycle(ctx, toInventoryLines(s.Batch.Lines()))
	case session.ModePurchase:
		_, err = r.inventory.RecordPurchase(ctx, toInventoryLines(s.Batch.Lines()))
	case session.ModeBaseEdit:
		targets := make(map[uuid.UUID]float64, s.Batch.Len())
		for _, l := range s.Batch.Lines() {
			targets[l.ProductID] = l.Qty
		}
		err = r.catalog.SetBaseTargets(ctx, targets)
	}
	if err != nil {
		// Keep the session so the user can retry /fin without re-sending.
		r.log.WithError(err).WithField("chat_id", chatID).Error("finalize failed")
		r.send(chatID, `No pude guardar 😵 Intenta <code>/fin</code> otra vez en un momento.`)
		return
	}

	r.log.WithFields(logrus.Fields{
		"chat_id": chatID, "mode": s.Mode, "products": s.Batch.Len(),
	}).Info("batch committed")
	r.sessions.Delete(chatID)
	r.send(chatID, finalizedMessage(s.Mode))
}

// setBaseInline is the single-shot variant: "/base Producto = 24" resolves
// and writes immediately, touching no session state.
func (r *Router) setBaseInline(ctx context.Context, chatID int64, rest string) {
	items, _ := report.ParseText(rest)
	if len(items) != 1 {
		r.send(chatID, `Usa <code>/base Producto = cantidad</code>.`)
		return
	}
	it := items[0]

	resolved, err := r.catalog.Resolve(ctx, []string{it.RawName})
	if err != nil {
		r.internalError(chatID, err)
		return
	}
	p, ok := resolved[it.RawName]
	if !ok {
		r.send(chatID, fmt.Sprintf(`No reconocí <b>%s</b>. Corrige el nombre o agrega un alias.`, esc(it.RawName)))
		return
	}
	if err := r.catalog.SetBaseTarget(ctx, p.ProductID, it.Qty); err != nil {
		r.internalError(chatID, err)
		return
	}
	r.send(chatID, fmt.Sprintf(`Base de <b>%s</b> actualizada a <b>%s</b> ✅`, esc(p.Name), fmtQty(it.Qty)))
}

// handleReport routes a non-command message according to the chat's mode.
func (r *Router) handleReport(ctx context.Context, in *Incoming) {
	s := r.sessions.Get(in.ChatID)
	if s == nil {
		if in.File != nil {
			r.send(in.ChatID, `Antes dime qué es: <code>/semana</code> o <code>/ingreso</code>.`)
			return
		}
		r.send(in.ChatID, `Usa <code>/menu</code> para ver comandos.`)
		return
	}

	if strings.TrimSpace(in.Text) != "" {
		r.handleTextReport(ctx, s, in.Text)
		return
	}
	if in.File != nil {
		r.handleMediaReport(ctx, s, in)
		return
	}
	r.send(in.ChatID, `Mándame una <b>foto</b> del formato o texto <code>Producto = cantidad</code>.`)
}

func (r *Router) handleTextReport(ctx context.Context, s *session.Session, text string) {
	items, skipped := report.ParseText(text)
	if len(items) == 0 {
		r.send(s.ChatID, msgFormatHelp)
		return
	}

	lines, missing, err := r.resolveItems(ctx, items)
	if err != nil {
		r.internalError(s.ChatID, err)
		return
	}

	// Resolved lines merge even when some names failed: never lose work the
	// user already provided.
	s.Batch.Merge(lines)
	r.send(s.ChatID, mergeMessage(s, len(lines), missing, skipped))
}

func (r *Router) handleMediaReport(ctx context.Context, s *session.Session, in *Incoming) {
	if s.Mode == session.ModeBaseEdit {
		r.send(s.ChatID, `Para la base solo acepto texto: <code>Producto = cantidad</code>.`)
		return
	}

	rec := &ingest.Record{
		ID:           uuid.New(),
		ChatID:       s.ChatID,
		Mode:         string(s.Mode),
		FileID:       in.File.FileID,
		FileUniqueID: in.File.FileUniqueID,
		FileName:     in.File.FileName,
		FileSize:     in.File.FileSize,
		MimeType:     in.File.MimeType,
	}
	if err := r.ingests.Create(ctx, rec); err != nil {
		r.internalError(s.ChatID, err)
		return
	}

	r.send(s.ChatID, fmt.Sprintf(
		"Procesando con IA… 🤖\nModo: <code>%s</code>\nArchivo: <code>%s</code>\nIngest: <code>%s</code>",
		esc(modeLabel(s.Mode)), esc(in.File.FileName), rec.ID))

	items, ok := r.extractFromFile(ctx, s, rec, in.File)
	if !ok {
		return
	}

	lines, missing, err := r.resolveItems(ctx, items)
	if err != nil {
		r.failIngest(ctx, s.ChatID, rec.ID, "resolve_failed: "+err.Error())
		r.internalError(s.ChatID, err)
		return
	}

	s.Batch.Merge(lines)

	status, reason := ingest.StatusProcessed, ""
	if len(missing) > 0 {
		status = ingest.StatusProcessedWithMissing
		reason = "missing_products:" + strings.Join(missing, ",")
	}
	if err := r.ingests.SetStatus(ctx, rec.ID, status, reason); err != nil {
		r.log.WithError(err).WithField("ingest_id", rec.ID).Error("update ingest status")
	}

	r.send(s.ChatID, mergeMessage(s, len(lines), missing, 0))
}

// extractFromFile downloads the media and runs the extraction pipeline,
// marking the ingest failed on any error. ok=false means the chat was
// already notified and the batch is untouched.
func (r *Router) extractFromFile(ctx context.Context, s *session.Session, rec *ingest.Record, file *FileMeta) ([]report.Item, bool) {
	if !strings.HasPrefix(strings.ToLower(file.MimeType), "image/") {
		r.failIngest(ctx, s.ChatID, rec.ID, "unsupported_mime:"+file.MimeType)
		r.send(s.ChatID, `Ese archivo no me sirve. Mándame una <b>foto</b> (jpg/png) del formato.`)
		return nil, false
	}

	data, err := r.transport.FetchFile(ctx, file.FileID)
	if err != nil {
		r.failIngest(ctx, s.ChatID, rec.ID, "fetch_failed: "+err.Error())
		r.send(s.ChatID, `No pude descargar el archivo. Intenta mandarlo otra vez.`)
		return nil, false
	}

	mode := report.ModeWeekly
	if s.Mode == session.ModePurchase {
		mode = report.ModePurchase
	}

	extractCtx, cancel := context.WithTimeout(ctx, r.visionTimeout)
	defer cancel()

	items, err := r.reports.ExtractItems(extractCtx, mode, data, file.MimeType)
	if err != nil {
		r.failIngest(ctx, s.ChatID, rec.ID, "extract_failed: "+err.Error())
		r.send(s.ChatID, fmt.Sprintf(
			"Falló el procesamiento 😵\nIngest: <code>%s</code>\nTip: intenta otra foto (más luz, sin sombras, centrada).", rec.ID))
		return nil, false
	}
	if len(items) == 0 {
		r.failIngest(ctx, s.ChatID, rec.ID, "extractor_returned_empty")
		r.send(s.ChatID, `No pude leer esa imagen 😵‍💫
Tip: mejor luz, foto derecha y que se vea completa la tabla.
También puedes pegar texto: <pre>Coca = 2</pre>`)
		return nil, false
	}
	return items, true
}

// resolveItems maps raw names to products. Unresolved names come back as a
// list, never as an error; duplicates in missing are collapsed.
func (r *Router) resolveItems(ctx context.Context, items []report.Item) ([]session.Line, []string, error) {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.RawName)
	}
	resolved, err := r.catalog.Resolve(ctx, names)
	if err != nil {
		return nil, nil, err
	}

	var lines []session.Line
	var missing []string
	seenMissing := make(map[string]struct{})
	for _, it := range items {
		p, ok := resolved[it.RawName]
		if !ok {
			if _, dup := seenMissing[it.RawName]; !dup {
				seenMissing[it.RawName] = struct{}{}
				missing = append(missing, it.RawName)
			}
			continue
		}
		lines = append(lines, session.Line{ProductID: p.ProductID, Qty: it.Qty})
	}
	return lines, missing, nil
}

func (r *Router) sendStock(ctx context.Context, chatID int64) {
	rows, err := r.inventory.GetStockActual(ctx)
	if err != nil {
		r.replyReconcileError(chatID, err)
		return
	}
	r.send(chatID, stockMessage(rows))
}

func (r *Router) sendSuggestions(ctx context.Context, chatID int64) {
	rows, err := r.inventory.GetSuggestedPurchases(ctx)
	if err != nil {
		r.replyReconcileError(chatID, err)
		return
	}
	r.send(chatID, suggestionsMessage(rows))
}

func (r *Router) sendSuggestionsByStore(ctx context.Context, chatID int64) {
	groups, err := r.inventory.GetSuggestedPurchasesByStore(ctx)
	if err != nil {
		r.replyReconcileError(chatID, err)
		return
	}
	r.send(chatID, suggestionsByStoreMessage(groups))
}

func (r *Router) replyReconcileError(chatID int64, err error) {
	if errors.Is(err, inventory.ErrNoSnapshot) {
		r.send(chatID, msgNoSnapshot)
		return
	}
	r.internalError(chatID, err)
}

func (r *Router) failIngest(ctx context.Context, chatID int64, id uuid.UUID, reason string) {
	if err := r.ingests.SetStatus(ctx, id, ingest.StatusFailed, reason); err != nil {
		r.log.WithError(err).WithField("ingest_id", id).Error("mark ingest failed")
	}
	r.log.WithFields(logrus.Fields{"chat_id": chatID, "ingest_id": id, "reason": reason}).
		Warn("ingest failed")
}

func (r *Router) internalError(chatID int64, err error) {
	r.log.WithError(err).WithField("chat_id", chatID).Error("request failed")
	r.send(chatID, `Algo salió mal de mi lado 😵 Intenta de nuevo en un momento.`)
}

func (r *Router) send(chatID int64, html string) {
	if err := r.transport.SendMessage(chatID, html); err != nil {
		r.log.WithError(err).WithField("chat_id", chatID).Error("send message")
	}
}

func toInventoryLines(lines []session.Line) []inventory.Line {
	out := make([]inventory.Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, inventory.Line{ProductID: l.ProductID, Qty: l.Qty})
	}
	return out
}
