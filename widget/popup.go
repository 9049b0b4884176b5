package widget

import (
	"fmt"
	"sync/atomic"

	"github.com/cli/browser"
)

// Popup is an open authorization browsing context. The widget only ever
// asks whether it has closed.
type Popup interface {
	Closed() bool
}

// PopupOpener opens an authorization URL in a new browsing context
type PopupOpener interface {
	Open(url string) (Popup, error)
}

// SignalPopup is a Popup whose closure is reported by whoever can actually
// observe it: a host with a real window-closed event calls Close from that
// event handler instead of leaving the widget to guess.
type SignalPopup struct {
	closed atomic.Bool
}

// Closed reports whether Close has been called
func (p *SignalPopup) Closed() bool {
	return p.closed.Load()
}

// Close marks the popup as closed
func (p *SignalPopup) Close() {
	p.closed.Store(true)
}

// BrowserOpener opens URLs in the system browser. The OS gives no
// window-closed event, so the handle is passed to OnOpen and the host
// supplies the closure signal (for a CLI, typically the user confirming
// they are done).
type BrowserOpener struct {
	// OnOpen receives the popup handle right after the browser launch.
	// Required: without it nothing would ever close the popup.
	OnOpen func(popup *SignalPopup, url string)
}

// Open launches the system browser at the given URL
func (o *BrowserOpener) Open(url string) (Popup, error) {
	if o.OnOpen == nil {
		return nil, fmt.Errorf("browser opener requires an OnOpen callback")
	}

	if err := browser.OpenURL(url); err != nil {
		return nil, fmt.Errorf("failed to open browser: %w", err)
	}

	popup := &SignalPopup{}
	o.OnOpen(popup, url)
	return popup, nil
}
