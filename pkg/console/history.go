package console

import (
	"strings"
	"sync"
)

// Style classifies a history item.
type Style string

const (
	StyleCommand Style = "command" // a line the user entered
	StyleError   Style = "error"   // a parse or evaluation error
	StyleInfo    Style = "info"    // any other feedback
)

// Item is one entry of the console history.
type Item struct {
	Style Style
	Text  string
}

// Welcome is the item every fresh history starts with.
var Welcome = Item{Style: StyleInfo, Text: "-> Type :help for usage."}

// History is the ordered list of console items.
type History struct {
	items []Item
	mu    sync.RWMutex
}

// NewHistory creates a history holding only the welcome item.
func NewHistory() *History {
	return &History{items: []Item{Welcome}}
}

// Add appends an item.
func (h *History) Add(style Style, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append(h.items, Item{Style: style, Text: text})
}

// Items returns a copy of all items in order.
func (h *History) Items() []Item {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Item, len(h.items))
	copy(out, h.items)
	return out
}

// Len returns the number of items.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.items)
}

// Clear drops every item, the welcome item included.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = nil
}

// String renders the history one item per line: commands with a "> "
// prompt, errors with "! ", info as is.
func (h *History) String() string {
	var b strings.Builder
	for _, item := range h.Items() {
		prefix := ""
		switch item.Style {
		case StyleCommand:
			prefix = "> "
		case StyleError:
			prefix = "! "
		}
		for i, line := range strings.Split(item.Text, "\n") {
			if i > 0 && prefix != "" {
				b.WriteString(strings.Repeat(" ", len(prefix)))
			} else {
				b.WriteString(prefix)
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
