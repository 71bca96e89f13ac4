package sidebar

import (
	"fmt"
	"strconv"
)

// PanelID is the id of the sidebar container the toggle button controls.
const PanelID = "sidebar"

// Browser events the panel reacts to.
const (
	PanelToggle       = "toggle"
	PanelEscape       = "escape"
	PanelContentClick = "content"
	PanelNavigate     = "navigate"
)

// Panel is the mobile open/close state of the sidebar. It is a value each
// browser owns: the script sends its current state with every event and
// applies the attributes it gets back. Nothing here is shared between
// clients.
type Panel struct {
	Open bool `json:"open"`
}

func (p *Panel) Toggle() {
	p.Open = !p.Open
}

func (p *Panel) Close() {
	p.Open = false
}

// HandleKey closes the panel on Escape. It reports whether the key was
// consumed.
func (p *Panel) HandleKey(key string) bool {
	if key != "Escape" || !p.Open {
		return false
	}
	p.Close()
	return true
}

// ContentClicked closes the panel when the content area is clicked.
func (p *Panel) ContentClicked() {
	p.Close()
}

// Handle applies one browser event. Unknown events leave the panel as it is
// and return an error.
func (p *Panel) Handle(event string) error {
	switch event {
	case PanelToggle:
		p.Toggle()
	case PanelEscape:
		p.HandleKey("Escape")
	case PanelContentClick:
		p.ContentClicked()
	case PanelNavigate:
		p.Close()
	default:
		return fmt.Errorf("unknown panel event %q", event)
	}
	return nil
}

// Attrs returns the attributes the toggle button and panel carry for the
// current state.
func (p *Panel) Attrs() map[string]string {
	class := ""
	if p.Open {
		class = "open"
	}
	return map[string]string{
		"class":         class,
		"aria-expanded": strconv.FormatBool(p.Open),
		"aria-controls": PanelID,
	}
}
