package bot

import "context"

// Transport is the chat side of the system: delivering replies and fetching
// media binaries. Message formatting/escaping rules belong to the adapter
// behind this interface, not to the core.
type Transport interface {
	// SendMessage delivers an HTML-formatted text to a chat.
	SendMessage(chatID int64, html string) error
	// FetchFile downloads the binary content of a file reference.
	FetchFile(ctx context.Context, fileID string) ([]byte, error)
}

// Incoming is one inbound chat event, already reduced to what the core
// needs: who sent it, the text if any, and at most one file reference.
type Incoming struct {
	ChatID int64
	Text   string
	File   *FileMeta
}

// FileMeta describes a photo or document attached to a message.
type FileMeta struct {
	FileID       string
	FileUniqueID string
	FileName     string
	MimeType     string
	FileSize     int64
}
