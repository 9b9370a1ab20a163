// Package modal shows the "infrastructure info" dialog of the website.
package modal

import (
	"sync"

	"gitlab.com/dirk.krummacker/static-website/internal/ui"
)

// Classes of the nodes the modal creates.
const (
	OverlayClass = "overlay"
	ModalClass   = "infrastructure-info"
	CloseClass   = "close-button"
)

// EscapeKey closes an open modal.
const EscapeKey = "Escape"

// InfrastructureHTML is the body of the dialog.
const InfrastructureHTML = `
        <h3>🚀 AWS Infrastructure Components</h3>
        <p><strong>VPC:</strong> Virtual Private Cloud with public/private subnets, Internet Gateway, and NAT Gateway</p>
        <p><strong>S3:</strong> Static website hosting with simplified configuration for learning</p>
        <p><strong>CloudFront:</strong> Global CDN with Origin Access Identity (OAI) for secure S3 access</p>
        <p><strong>DynamoDB:</strong> NoSQL database for contact form data and user sessions</p>
        <p><strong>WAF:</strong> Web Application Firewall integrated with CloudFront for security</p>
        <p><strong>Terraform:</strong> Simplified Infrastructure as Code for learning AWS fundamentals</p>
        <button class="close-button">Close</button>
    `

// Modal is an overlay plus a dialog box. At most one pair is on the page at any time.
type Modal struct {
	doc  ui.Document
	html string

	mu   sync.Mutex
	open *instance
}

// instance is the pair of nodes created by one Show.
type instance struct {
	overlay ui.Element
	box     ui.Element
}

// New returns a modal rendering html; an empty html selects InfrastructureHTML.
func New(doc ui.Document, html string) *Modal {
	if html == "" {
		html = InfrastructureHTML
	}
	return &Modal{doc: doc, html: html}
}

// Show attaches a fresh overlay and dialog. If the modal is already shown, the previous pair
// is removed first. Clicking the overlay or the close button closes the modal.
func (m *Modal) Show() {
	overlay := m.doc.CreateElement(OverlayClass, "")
	overlay.SetStyle("display", "block")
	box := m.doc.CreateElement(ModalClass, m.html)
	box.SetStyle("display", "block")
	inst := &instance{overlay: overlay, box: box}

	m.mu.Lock()
	previous := m.open
	m.open = inst
	m.mu.Unlock()
	if previous != nil {
		previous.remove()
	}

	m.doc.Append(overlay)
	m.doc.Append(box)

	overlay.OnClick(func() { m.closeInstance(inst) })
	if button := box.Query("." + CloseClass); button != nil {
		button.OnClick(func() { m.closeInstance(inst) })
	}
}

// Close removes the modal. Closing a modal that is not shown does nothing.
func (m *Modal) Close() {
	m.mu.Lock()
	inst := m.open
	m.open = nil
	m.mu.Unlock()
	if inst != nil {
		inst.remove()
	}
}

// IsOpen reports whether the modal is shown.
func (m *Modal) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open != nil
}

// HandleKey closes the modal when key is Escape.
func (m *Modal) HandleKey(key string) {
	if key == EscapeKey {
		m.Close()
	}
}

// Attach makes Escape anywhere on the page close the modal.
func (m *Modal) Attach() {
	m.doc.OnKeyDown(m.HandleKey)
}

// closeInstance removes inst, which may be an older pair already replaced by a later Show.
func (m *Modal) closeInstance(inst *instance) {
	m.mu.Lock()
	if m.open == inst {
		m.open = nil
	}
	m.mu.Unlock()
	inst.remove()
}

func (i *instance) remove() {
	i.overlay.Remove()
	i.box.Remove()
}
