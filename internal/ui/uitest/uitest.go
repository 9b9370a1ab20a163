// Package uitest provides in-memory implementations of the ui capabilities for tests.
package uitest

import (
	"regexp"
	"strings"
	"sync"

	"gitlab.com/dirk.krummacker/static-website/internal/ui"
)

var classAttribute = regexp.MustCompile(`class="([^"]+)"`)

// Element is a fake page node. Events are fired with Click, MouseEnter and MouseLeave.
type Element struct {
	mu         sync.Mutex
	class      string
	html       string
	attributes map[string]string
	styles     map[string]string
	children   []*Element
	doc        *Document
	removed    bool
	scrolled   int
	onClick    []func()
	onEnter    []func()
	onLeave    []func()
}

// NewElement returns a detached element with the given class and attributes, given as
// name/value pairs.
func NewElement(class string, attributes ...string) *Element {
	el := &Element{
		class:      class,
		attributes: make(map[string]string),
		styles:     make(map[string]string),
	}
	for i := 0; i+1 < len(attributes); i += 2 {
		el.attributes[attributes[i]] = attributes[i+1]
	}
	return el
}

// Class returns the element's class attribute.
func (e *Element) Class() string { return e.class }

// HTML returns the inner HTML the element was created with.
func (e *Element) HTML() string { return e.html }

func (e *Element) Attribute(name string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attributes[name]
}

func (e *Element) SetStyle(property string, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.styles[property] = value
}

// Style returns the inline style value of property.
func (e *Element) Style(property string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.styles[property]
}

// Query only understands class selectors of the form ".name".
func (e *Element) Query(selector string) ui.Element {
	for _, child := range e.children {
		if "."+child.class == selector {
			return child
		}
	}
	return nil
}

func (e *Element) ScrollIntoView() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scrolled++
}

// Scrolled returns how often the element was scrolled into view.
func (e *Element) Scrolled() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scrolled
}

func (e *Element) Remove() {
	e.mu.Lock()
	e.removed = true
	doc := e.doc
	e.doc = nil
	e.mu.Unlock()
	if doc != nil {
		doc.detach(e)
	}
}

// Removed reports whether Remove has been called.
func (e *Element) Removed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.removed
}

func (e *Element) OnClick(handler func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onClick = append(e.onClick, handler)
}

func (e *Element) OnMouseEnter(handler func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEnter = append(e.onEnter, handler)
}

func (e *Element) OnMouseLeave(handler func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onLeave = append(e.onLeave, handler)
}

// Click fires the click handlers.
func (e *Element) Click() { fire(&e.mu, &e.onClick) }

// MouseEnter fires the mouseenter handlers.
func (e *Element) MouseEnter() { fire(&e.mu, &e.onEnter) }

// MouseLeave fires the mouseleave handlers.
func (e *Element) MouseLeave() { fire(&e.mu, &e.onLeave) }

func fire(mu *sync.Mutex, handlers *[]func()) {
	mu.Lock()
	snapshot := append([]func(){}, *handlers...)
	mu.Unlock()
	for _, h := range snapshot {
		h()
	}
}

// Button is a fake submit control.
type Button struct {
	mu       sync.Mutex
	text     string
	disabled bool
	// History records every label the button showed, in order.
	history []string
}

// NewButton returns an enabled button labelled text.
func NewButton(text string) *Button {
	return &Button{text: text}
}

func (b *Button) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

func (b *Button) SetText(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = text
	b.history = append(b.history, text)
}

func (b *Button) Disabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disabled
}

func (b *Button) SetDisabled(disabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disabled = disabled
}

// History returns the labels set on the button so far.
func (b *Button) History() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.history...)
}

// Form is a fake form. Fields are set with Fill and the submit event is fired with Submit.
type Form struct {
	mu       sync.Mutex
	values   map[string]string
	button   *Button
	resets   int
	onSubmit []func()
}

// NewForm returns a form with the given submit button, which may be nil.
func NewForm(button *Button) *Form {
	return &Form{values: make(map[string]string), button: button}
}

// Fill sets the value of a field, as if the visitor had typed it.
func (f *Form) Fill(field string, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[field] = value
}

func (f *Form) Value(field string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[field]
}

func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = make(map[string]string)
	f.resets++
}

// Resets returns how often the form was reset.
func (f *Form) Resets() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resets
}

func (f *Form) SubmitButton() ui.Button {
	if f.button == nil {
		return nil
	}
	return f.button
}

func (f *Form) OnSubmit(handler func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onSubmit = append(f.onSubmit, handler)
}

// Submit fires the submit handlers.
func (f *Form) Submit() { fire(&f.mu, &f.onSubmit) }

// Document is a fake page. Elements placed with Add are found by Query and QueryAll under
// the selector they were added with.
type Document struct {
	mu        sync.Mutex
	selectors map[string][]*Element
	forms     map[string]*Form
	body      []*Element
	alerts    []string
	onKeyDown []func(string)
}

// NewDocument returns an empty page.
func NewDocument() *Document {
	return &Document{
		selectors: make(map[string][]*Element),
		forms:     make(map[string]*Form),
	}
}

// Add registers el as matching selector.
func (d *Document) Add(selector string, el *Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selectors[selector] = append(d.selectors[selector], el)
}

// AddForm registers a form under its id.
func (d *Document) AddForm(id string, form *Form) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.forms[id] = form
}

func (d *Document) Query(selector string) ui.Element {
	all := d.QueryAll(selector)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

func (d *Document) QueryAll(selector string) []ui.Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []ui.Element
	for _, el := range d.selectors[selector] {
		result = append(result, el)
	}
	for _, el := range d.body {
		if "."+el.class == selector {
			result = append(result, el)
		}
	}
	return result
}

func (d *Document) Form(id string) ui.Form {
	d.mu.Lock()
	defer d.mu.Unlock()
	form, ok := d.forms[id]
	if !ok {
		return nil
	}
	return form
}

// CreateElement gives the new element one child for every class="..." found in innerHTML so
// that components can look up controls they rendered.
func (d *Document) CreateElement(class string, innerHTML string) ui.Element {
	el := NewElement(class)
	el.html = innerHTML
	for _, match := range classAttribute.FindAllStringSubmatch(innerHTML, -1) {
		for _, name := range strings.Fields(match[1]) {
			el.children = append(el.children, NewElement(name))
		}
	}
	return el
}

func (d *Document) Append(el ui.Element) {
	fake := el.(*Element)
	fake.mu.Lock()
	fake.doc = d
	fake.removed = false
	fake.mu.Unlock()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.body = append(d.body, fake)
}

func (d *Document) detach(el *Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, attached := range d.body {
		if attached == el {
			d.body = append(d.body[:i], d.body[i+1:]...)
			return
		}
	}
}

// Attached returns the appended elements with the given class that are still on the page.
func (d *Document) Attached(class string) []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []*Element
	for _, el := range d.body {
		if el.class == class {
			result = append(result, el)
		}
	}
	return result
}

func (d *Document) Alert(message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alerts = append(d.alerts, message)
}

// Alerts returns the messages shown so far.
func (d *Document) Alerts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.alerts...)
}

func (d *Document) OnKeyDown(handler func(key string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onKeyDown = append(d.onKeyDown, handler)
}

// KeyDown fires the keydown handlers with key.
func (d *Document) KeyDown(key string) {
	d.mu.Lock()
	snapshot := append([]func(string){}, d.onKeyDown...)
	d.mu.Unlock()
	for _, h := range snapshot {
		h(key)
	}
}
