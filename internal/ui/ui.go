// Package ui describes the page capabilities the site's components work against. The browser
// build implements them on top of the DOM; tests use the fakes in package uitest.
package ui

// Element is a node of the page.
type Element interface {
	// Attribute returns the value of the named attribute, or "" if it is absent.
	Attribute(name string) string
	SetStyle(property string, value string)
	// Query returns the first descendant matching selector, or nil.
	Query(selector string) Element
	// ScrollIntoView scrolls the element to the top of the viewport, smoothly.
	ScrollIntoView()
	// Remove detaches the element from the page. Removing a detached element does nothing.
	Remove()

	OnClick(handler func())
	OnMouseEnter(handler func())
	OnMouseLeave(handler func())
}

// Button is a form's submit control.
type Button interface {
	Text() string
	SetText(text string)
	Disabled() bool
	SetDisabled(disabled bool)
}

// Form is an HTML form.
type Form interface {
	// Value returns the current value of the named field.
	Value(field string) string
	// Reset restores every field to its initial value.
	Reset()
	// SubmitButton returns the form's submit control, or nil if it has none.
	SubmitButton() Button
	// OnSubmit registers handler for the submit event. The page's default navigation is
	// always prevented.
	OnSubmit(handler func())
}

// Notifier shows a message to the visitor.
type Notifier interface {
	Alert(message string)
}

// Document is the page as a whole and the source of page-wide events.
type Document interface {
	Notifier

	// Query returns the first element matching selector, or nil.
	Query(selector string) Element
	// QueryAll returns every element matching selector in document order.
	QueryAll(selector string) []Element
	// Form returns the form with the given id, or nil.
	Form(id string) Form
	// CreateElement builds a detached div with the given class and inner HTML.
	CreateElement(class string, innerHTML string) Element
	// Append attaches el at the end of the body.
	Append(el Element)

	// OnKeyDown registers handler for every key pressed anywhere on the page. The key
	// is reported the way KeyboardEvent.key names it, e.g. "Escape".
	OnKeyDown(handler func(key string))
}
