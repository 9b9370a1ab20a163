// Package site connects the page's components to a document: navigation, effects, the
// infrastructure modal and the contact form.
package site

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"gitlab.com/dirk.krummacker/static-website/internal/apiclient"
	"gitlab.com/dirk.krummacker/static-website/internal/config"
	"gitlab.com/dirk.krummacker/static-website/internal/contactform"
	"gitlab.com/dirk.krummacker/static-website/internal/effects"
	"gitlab.com/dirk.krummacker/static-website/internal/modal"
	"gitlab.com/dirk.krummacker/static-website/internal/storage"
	"gitlab.com/dirk.krummacker/static-website/internal/ui"
)

// ContactFormID is the id of the contact form in the page markup.
const ContactFormID = "contactForm"

// Options are the collaborators of the page.
type Options struct {
	Submitter contactform.Submitter
	// Fallback keeps undelivered submissions. Nil selects the ReportError policy.
	Fallback contactform.Recorder
	Logger   *zap.Logger
	// Timer schedules delayed effects; nil uses real timers.
	Timer effects.AfterFunc
}

// Site is a wired page.
type Site struct {
	Modal *modal.Modal
	// Contact is nil when the page has no contact form.
	Contact *contactform.Handler
}

// Wire registers every handler on doc.
func Wire(ctx context.Context, doc ui.Document, opts Options) *Site {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	links := effects.SmoothScroll(doc)
	cards := effects.HoverLift(doc)
	items := effects.ClickPulse(doc, opts.Timer)

	m := modal.New(doc, "")
	m.Attach()
	s := &Site{Modal: m}

	if form := doc.Form(ContactFormID); form != nil && opts.Submitter != nil {
		formOpts := []contactform.Option{contactform.WithLogger(logger)}
		if opts.Fallback != nil {
			formOpts = append(formOpts, contactform.WithFallback(opts.Fallback))
		}
		s.Contact = contactform.New(form, doc, opts.Submitter, formOpts...)
		s.Contact.Attach(ctx)
	}

	logger.Debug("page wired",
		zap.Int("navLinks", links),
		zap.Int("featureCards", cards),
		zap.Int("serviceItems", items),
		zap.Bool("contactForm", s.Contact != nil))
	return s
}

// OptionsFromConfig builds the submitter and, for the local policy, the fallback list kept in
// store.
func OptionsFromConfig(cfg *config.Config, store storage.Storage, logger *zap.Logger) Options {
	hc := &http.Client{Timeout: cfg.HTTPTimeout}
	opts := Options{
		Submitter: apiclient.New(cfg.APIBaseURL, apiclient.WithHTTPClient(hc)),
		Logger:    logger,
	}
	if cfg.FallbackPolicy == config.PolicyLocal && store != nil {
		opts.Fallback = storage.NewSubmissions(store)
	}
	return opts
}
