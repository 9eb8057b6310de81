package menupdf

import "github.com/alnah/go-menupdf/internal/chip"

// ChatReply is a generator reply split into displayable text and a menu.
type ChatReply struct {
	Text     string
	Document MenuDocument
}

// ParseChatReply extracts the first <MENU>{...}</MENU> block of raw. ok is
// false when there is no block, its JSON is invalid, or its "type" is not
// "menu_chip"; Text then holds the whole reply.
func ParseChatReply(raw string) (reply ChatReply, ok bool) {
	text, c, ok := chip.Parse(raw)
	reply.Text = text
	if !ok {
		return reply, false
	}
	reply.Document = MenuDocument{
		Title:     c.Title,
		DateRange: c.DateRange,
		Data:      c.Payload,
	}
	return reply, true
}
