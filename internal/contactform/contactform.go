// Package contactform handles the submit event of the website's contact form: it posts the
// visitor's message to the backend and, depending on the policy, keeps it locally when the
// backend cannot be reached.
package contactform

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"gitlab.com/dirk.krummacker/static-website/internal/apiclient"
	"gitlab.com/dirk.krummacker/static-website/internal/ui"
	"gitlab.com/dirk.krummacker/static-website/pkg/model"
)

// Messages shown to the visitor.
const (
	SendingLabel  = "Sending..."
	MsgDelivered  = "Thank you for your message! It has been saved successfully."
	MsgStored     = "Thank you for your message! (Stored locally for demo purposes)"
	MsgSubmitFail = "Sorry, there was an error submitting your message. Please try again."
)

// Names of the form fields.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldMessage = "message"
)

// Policy decides what happens when the backend does not accept a submission.
type Policy int

const (
	// StoreLocally appends the submission to the fallback list and thanks the visitor.
	StoreLocally Policy = iota
	// ReportError tells the visitor that sending failed and keeps nothing.
	ReportError
)

// Outcome is how one submission attempt ended.
type Outcome int

const (
	Delivered Outcome = iota
	StoredLocally
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case StoredLocally:
		return "stored locally"
	default:
		return "failed"
	}
}

// Submitter sends a submission to the backend.
type Submitter interface {
	Submit(ctx context.Context, s model.Submission) (*apiclient.Response, error)
}

// Recorder keeps submissions that could not be delivered.
type Recorder interface {
	Append(ctx context.Context, record model.Record) error
}

// Handler runs the submission flow for one form.
type Handler struct {
	form      ui.Form
	notifier  ui.Notifier
	submitter Submitter
	policy    Policy
	fallback  Recorder
	logger    *zap.Logger
	now       func() time.Time

	// idleLabel is the button label before any submission started. Overlapping
	// submissions restore this instead of each other's "Sending..." label.
	idleLabel string
}

// Option configures a Handler.
type Option func(*Handler)

// WithFallback selects the StoreLocally policy with the given recorder.
func WithFallback(recorder Recorder) Option {
	return func(h *Handler) {
		h.policy = StoreLocally
		h.fallback = recorder
	}
}

// WithLogger sets the logger for delivery problems. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithClock replaces time.Now for the capture timestamp of stored records.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// New returns a handler for form. Without WithFallback the policy is ReportError.
func New(form ui.Form, notifier ui.Notifier, submitter Submitter, opts ...Option) *Handler {
	h := &Handler{
		form:      form,
		notifier:  notifier,
		submitter: submitter,
		policy:    ReportError,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.policy == StoreLocally && h.fallback == nil {
		h.policy = ReportError
	}
	if button := form.SubmitButton(); button != nil {
		h.idleLabel = button.Text()
	}
	return h
}

// Policy returns the policy in effect.
func (h *Handler) Policy() Policy {
	return h.policy
}

// Attach registers the handler for the form's submit event. Each submission runs on its own
// goroutine so the event loop stays free while the request is in flight; a second submit
// before the first one settles sends a second request.
func (h *Handler) Attach(ctx context.Context) {
	h.form.OnSubmit(func() {
		go h.Submit(ctx)
	})
}

// Submit runs one submission attempt and blocks until it has settled. The submit button is
// disabled for the duration and restored exactly once afterwards, whatever the outcome.
func (h *Handler) Submit(ctx context.Context) Outcome {
	s := model.Submission{
		Name:    h.form.Value(FieldName),
		Email:   h.form.Value(FieldEmail),
		Message: h.form.Value(FieldMessage),
	}
	release := h.acquireButton()
	defer release()

	_, err := h.submitter.Submit(ctx, s)
	if err == nil {
		h.notifier.Alert(MsgDelivered)
		h.form.Reset()
		return Delivered
	}
	h.logger.Warn("API Error", zap.Error(err))

	if h.policy == ReportError {
		h.notifier.Alert(errorMessage(err))
		return Failed
	}

	if err := h.fallback.Append(ctx, model.NewRecord(s, h.now())); err != nil {
		h.logger.Error("Fallback Error", zap.Error(err))
		h.notifier.Alert(MsgSubmitFail)
		return Failed
	}
	h.notifier.Alert(MsgStored)
	h.form.Reset()
	return StoredLocally
}

// acquireButton puts the submit button into its busy state and returns the function that
// restores it. Calling the returned function more than once has no further effect.
func (h *Handler) acquireButton() func() {
	button := h.form.SubmitButton()
	if button == nil {
		return func() {}
	}
	label := h.idleLabel
	if label == "" {
		label = button.Text()
	}
	button.SetText(SendingLabel)
	button.SetDisabled(true)

	var once sync.Once
	return func() {
		once.Do(func() {
			button.SetText(label)
			button.SetDisabled(false)
		})
	}
}

// errorMessage prefers the backend's own explanation over the generic message.
func errorMessage(err error) string {
	var statusErr *apiclient.StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return "Sorry, there was an error submitting your message: " + statusErr.Message
	}
	return MsgSubmitFail
}
