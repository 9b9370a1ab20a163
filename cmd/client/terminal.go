package main

import (
	"fmt"
	"io"

	"gitlab.com/dirk.krummacker/static-website/internal/ui"
)

// terminalForm presents command line flags as the contact form, and prints alerts.
type terminalForm struct {
	values map[string]string
	out    io.Writer
}

func newTerminalForm(out io.Writer, name, email, message string) *terminalForm {
	return &terminalForm{
		values: map[string]string{"name": name, "email": email, "message": message},
		out:    out,
	}
}

func (f *terminalForm) Value(field string) string { return f.values[field] }

func (f *terminalForm) Reset() {}

// SubmitButton returns nil; there is no button on a terminal.
func (f *terminalForm) SubmitButton() ui.Button { return nil }

func (f *terminalForm) OnSubmit(func()) {}

func (f *terminalForm) Alert(message string) {
	fmt.Fprintln(f.out, message)
}
