package report

// Mode selects the table schema the extractor expects in a photo.
type Mode string

const (
	// ModeWeekly is the weekly count sheet: front-of-house ("local") and
	// storage ("bodega") sub-columns plus a declared total.
	ModeWeekly Mode = "weekly"
	// ModePurchase is the purchase sheet: a single purchased-quantity column.
	ModePurchase Mode = "purchase"
)

// Item is one usable quantity report: a raw product name and its number.
// Both the text path and the vision path end up here.
type Item struct {
	RawName string
	Qty     float64
}

// WeeklyRow is one extracted row of a weekly count sheet. Nil means the cell
// was absent or illegible; a true zero only ever comes from an explicit "0"
// reading.
type WeeklyRow struct {
	Name    string
	Front   *float64
	Storage *float64
	Total   *float64
}

// PurchaseRow is one extracted row of a purchase sheet.
type PurchaseRow struct {
	Name string
	Qty  *float64
}

// Rows is the tagged result of one extraction pass: exactly one of the two
// slices is meaningful, selected by Mode.
type Rows struct {
	Mode     Mode
	Weekly   []WeeklyRow
	Purchase []PurchaseRow
}
