// Package session holds per-chat interaction state: which reporting mode a
// chat is in and the batch of quantities accumulated so far. State lives for
// the process lifetime only; an abandoned batch persists until canceled or
// the process restarts.
package session

// Mode is the kind of batch a chat is accumulating.
type Mode string

const (
	// ModeWeekly accumulates a full weekly count; finalizing starts a new cycle.
	ModeWeekly Mode = "weekly"
	// ModePurchase accumulates purchased quantities; finalizing appends a purchase.
	ModePurchase Mode = "purchase"
	// ModeBaseEdit accumulates base-target corrections; finalizing overwrites targets.
	ModeBaseEdit Mode = "base_edit"
)

// Session is one chat's active batch. A chat with no Session is idle.
type Session struct {
	ChatID int64
	Mode   Mode
	Batch  *Batch
}

// New creates a session with an empty batch using the merge policy of the
// given mode.
func New(chatID int64, mode Mode) *Session {
	return &Session{ChatID: chatID, Mode: mode, Batch: NewBatch(policyFor(mode))}
}

func policyFor(mode Mode) MergePolicy {
	if mode == ModeBaseEdit {
		return MergeReplace
	}
	return MergeAdditive
}
