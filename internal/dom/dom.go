//go:build js && wasm

// Package dom implements the ui capabilities on top of the browser DOM.
package dom

import (
	"syscall/js"

	"gitlab.com/dirk.krummacker/static-website/internal/ui"
)

// SubmitButtonSelector finds a form's submit control.
const SubmitButtonSelector = ".submit-btn"

// listen registers handler for event on target. The callback lives as long as the page.
func listen(target js.Value, event string, handler func(event js.Value)) {
	fn := js.FuncOf(func(this js.Value, args []js.Value) any {
		var ev js.Value
		if len(args) > 0 {
			ev = args[0]
		}
		handler(ev)
		return nil
	})
	target.Call("addEventListener", event, fn)
}

func present(v js.Value) bool {
	return !v.IsNull() && !v.IsUndefined()
}

// Element wraps a DOM node.
type Element struct {
	v js.Value
}

func wrap(v js.Value) ui.Element {
	if !present(v) {
		return nil
	}
	return &Element{v: v}
}

func (e *Element) Attribute(name string) string {
	value := e.v.Call("getAttribute", name)
	if !present(value) {
		return ""
	}
	return value.String()
}

func (e *Element) SetStyle(property string, value string) {
	e.v.Get("style").Call("setProperty", property, value)
}

func (e *Element) Query(selector string) ui.Element {
	return wrap(e.v.Call("querySelector", selector))
}

func (e *Element) ScrollIntoView() {
	e.v.Call("scrollIntoView", map[string]any{"behavior": "smooth", "block": "start"})
}

func (e *Element) Remove() {
	e.v.Call("remove")
}

func (e *Element) OnClick(handler func()) {
	listen(e.v, "click", func(js.Value) { handler() })
}

func (e *Element) OnMouseEnter(handler func()) {
	listen(e.v, "mouseenter", func(js.Value) { handler() })
}

func (e *Element) OnMouseLeave(handler func()) {
	listen(e.v, "mouseleave", func(js.Value) { handler() })
}

// Button wraps a button element.
type Button struct {
	v js.Value
}

func (b *Button) Text() string              { return b.v.Get("textContent").String() }
func (b *Button) SetText(text string)       { b.v.Set("textContent", text) }
func (b *Button) Disabled() bool            { return b.v.Get("disabled").Bool() }
func (b *Button) SetDisabled(disabled bool) { b.v.Set("disabled", disabled) }

// Form wraps a form element.
type Form struct {
	v js.Value
}

func (f *Form) Value(field string) string {
	value := js.Global().Get("FormData").New(f.v).Call("get", field)
	if !present(value) {
		return ""
	}
	return value.String()
}

func (f *Form) Reset() {
	f.v.Call("reset")
}

func (f *Form) SubmitButton() ui.Button {
	button := f.v.Call("querySelector", SubmitButtonSelector)
	if !present(button) {
		return nil
	}
	return &Button{v: button}
}

func (f *Form) OnSubmit(handler func()) {
	listen(f.v, "submit", func(ev js.Value) {
		if present(ev) {
			ev.Call("preventDefault")
		}
		handler()
	})
}

// Document wraps window.document.
type Document struct {
	v js.Value
}

// NewDocument returns the page the program runs in.
func NewDocument() *Document {
	return &Document{v: js.Global().Get("document")}
}

func (d *Document) Alert(message string) {
	js.Global().Call("alert", message)
}

func (d *Document) Query(selector string) ui.Element {
	return wrap(d.v.Call("querySelector", selector))
}

func (d *Document) QueryAll(selector string) []ui.Element {
	nodes := d.v.Call("querySelectorAll", selector)
	result := make([]ui.Element, 0, nodes.Length())
	for i := 0; i < nodes.Length(); i++ {
		result = append(result, &Element{v: nodes.Index(i)})
	}
	return result
}

func (d *Document) Form(id string) ui.Form {
	form := d.v.Call("getElementById", id)
	if !present(form) {
		return nil
	}
	return &Form{v: form}
}

func (d *Document) CreateElement(class string, innerHTML string) ui.Element {
	el := d.v.Call("createElement", "div")
	el.Set("className", class)
	el.Set("innerHTML", innerHTML)
	return &Element{v: el}
}

func (d *Document) Append(el ui.Element) {
	d.v.Get("body").Call("appendChild", el.(*Element).v)
}

func (d *Document) OnKeyDown(handler func(key string)) {
	listen(d.v, "keydown", func(ev js.Value) {
		if present(ev) {
			handler(ev.Get("key").String())
		}
	})
}
