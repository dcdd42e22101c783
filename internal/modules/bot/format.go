package bot

import (
	"fmt"
	"html"
	"strings"

	"github.com/ibericokitchen/inventory-bot/internal/modules/inventory"
	"github.com/ibericokitchen/inventory-bot/internal/modules/session"
)

func esc(s string) string { return html.EscapeString(s) }

func fmtQty(q float64) string { return fmt.Sprintf("%.2f", q) }

const msgMenu = `<b>Ibérico Inventario</b>

<code>/semana</code> — inventario semanal (fotos o texto, cierra con /fin)
<code>/ingreso</code> — compras/ingresos (fotos o texto, cierra con /fin)
<code>/base</code> — editar cantidades base
<code>/fin</code> — guardar lo acumulado
<code>/cancelar</code> — descartar lo acumulado
<code>/stock</code> — ver stock actual
<code>/compras</code> — lista de compras sugerida
<code>/compras_tienda</code> — compras sugeridas por tienda`

const msgNoSnapshot = `Aún no hay inventario semanal. Usa <code>/semana</code>.`

const msgFormatHelp = `No pude leer el formato. Usa:
<pre>Producto = cantidad</pre>`

func modeLabel(m session.Mode) string {
	switch m {
	case session.ModeWeekly:
		return "inventario semanal"
	case session.ModePurchase:
		return "compras"
	case session.ModeBaseEdit:
		return "edición de base"
	}
	return string(m)
}

func startMessage(m session.Mode) string {
	switch m {
	case session.ModeWeekly:
		return `Envíame el <b>inventario semanal</b>.

Puedes mandar <b>fotos</b> del formato (varias si hace falta) o pegar texto así:
<pre>Coca = 2
Absolut 750 ml = 1.5</pre>
Cuando termines, manda <code>/fin</code>.`
	case session.ModePurchase:
		return `Envíame las <b>compras/ingresos</b>.

Puedes mandar <b>fotos</b> del formato o texto:
<pre>Coca = 6
Tonica = 12</pre>
Cuando termines, manda <code>/fin</code>.`
	default:
		return `Envíame las <b>cantidades base</b> a corregir:
<pre>Coca = 24</pre>
Cuando termines, manda <code>/fin</code>.`
	}
}

func reminderMessage(s *session.Session) string {
	return fmt.Sprintf(
		`Estás en modo <b>%s</b> con <b>%d</b> producto(s) acumulados.
Manda más líneas o fotos, <code>/fin</code> para guardar o <code>/cancelar</code> para descartar.`,
		modeLabel(s.Mode), s.Batch.Len())
}

func mergeMessage(s *session.Session, merged int, missing []string, skipped int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Anoté <b>%d</b> producto(s). Llevas <b>%d</b> en el lote de %s.\n",
		merged, s.Batch.Len(), modeLabel(s.Mode))
	if len(missing) > 0 {
		b.WriteString("\n<b>No reconocí:</b>\n")
		b.WriteString(bulletList(missing))
		b.WriteString("\nCorrige el nombre o agrega un alias y vuelve a mandarlos.\n")
	}
	if skipped > 0 {
		fmt.Fprintf(&b, "\n⚠️ Ignoré %d línea(s) que no siguen <code>Producto = cantidad</code>.\n", skipped)
	}
	b.WriteString("\nManda <code>/fin</code> cuando termines.")
	return b.String()
}

func bulletList(names []string) string {
	var b strings.Builder
	for _, n := range names {
		fmt.Fprintf(&b, "• %s\n", esc(n))
	}
	return b.String()
}

func stockMessage(rows []inventory.StockRow) string {
	var b strings.Builder
	b.WriteString("<b>Stock actual</b>\n\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "• %s: <b>%s</b>\n", esc(r.Name), fmtQty(r.StockActual))
	}
	return strings.TrimRight(b.String(), "\n")
}

func suggestionsMessage(rows []inventory.Suggestion) string {
	if len(rows) == 0 {
		return "Nada que comprar, todo al día ✅"
	}
	var b strings.Builder
	b.WriteString("<b>Compras sugeridas</b>\n\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "• %s: <b>%s</b>\n", esc(r.Name), fmtQty(r.Shortfall))
	}
	return strings.TrimRight(b.String(), "\n")
}

func suggestionsByStoreMessage(groups []inventory.StoreSuggestions) string {
	if len(groups) == 0 {
		return "Nada que comprar, todo al día ✅"
	}
	var b strings.Builder
	b.WriteString("<b>Compras sugeridas por tienda</b>\n")
	for _, g := range groups {
		fmt.Fprintf(&b, "\n<b>%s</b>\n", esc(g.Store))
		for _, sg := range g.Suggestions {
			fmt.Fprintf(&b, "• %s: <b>%s</b>\n", esc(sg.Name), fmtQty(sg.Shortfall))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func finalizedMessage(m session.Mode) string {
	switch m {
	case session.ModeWeekly:
		return `Inventario semanal guardado ✅
Usa <code>/compras</code> o <code>/stock</code>.`
	case session.ModePurchase:
		return `Compras guardadas ✅
Usa <code>/stock</code>.`
	default:
		return `Cantidades base actualizadas ✅`
	}
}
