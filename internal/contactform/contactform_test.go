package contactform

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/dirk.krummacker/static-website/internal/apiclient"
	"gitlab.com/dirk.krummacker/static-website/internal/storage"
	"gitlab.com/dirk.krummacker/static-website/internal/ui/uitest"
	"gitlab.com/dirk.krummacker/static-website/pkg/model"
)

// backend is a mock /contact endpoint that records the bodies it receives.
type backend struct {
	mu     sync.Mutex
	bodies []string
	status int
	reply  string
	server *httptest.Server
}

func newBackend(t *testing.T, status int, reply string) *backend {
	b := &backend{status: status, reply: reply}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.bodies = append(b.bodies, string(body))
		b.mu.Unlock()
		w.WriteHeader(b.status)
		w.Write([]byte(b.reply))
	}))
	t.Cleanup(b.server.Close)
	return b
}

func (b *backend) received() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.bodies...)
}

// filledForm returns a form holding name A, email a@x.com and message hi.
func filledForm() (*uitest.Form, *uitest.Button) {
	button := uitest.NewButton("Send Message")
	form := uitest.NewForm(button)
	form.Fill(FieldName, "A")
	form.Fill(FieldEmail, "a@x.com")
	form.Fill(FieldMessage, "hi")
	return form, button
}

// failingRecorder fails like a full browser storage.
type failingRecorder struct{}

func (failingRecorder) Append(context.Context, model.Record) error {
	return errors.New("quota exceeded")
}

// TestSubmitDelivered expects one POST with the form's JSON, a cleared form and a restored
// button after a 2xx response.
func TestSubmitDelivered(t *testing.T) {
	b := newBackend(t, http.StatusOK, `{"message":"Contact form submitted successfully","id":"1"}`)
	form, button := filledForm()
	doc := uitest.NewDocument()
	submissions := storage.NewSubmissions(storage.NewMemory())
	handler := New(form, doc, apiclient.New(b.server.URL), WithFallback(submissions))

	outcome := handler.Submit(context.Background())

	assert.Equal(t, Delivered, outcome)
	require.Len(t, b.received(), 1)
	assert.JSONEq(t, `{"name":"A","email":"a@x.com","message":"hi"}`, b.received()[0])
	assert.Equal(t, []string{MsgDelivered}, doc.Alerts())
	assert.Equal(t, 1, form.Resets())
	assert.Equal(t, "", form.Value(FieldName))
	assert.Equal(t, "Send Message", button.Text())
	assert.False(t, button.Disabled())
	assert.Equal(t, []string{SendingLabel, "Send Message"}, button.History())

	records, err := submissions.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

// TestSubmitStoredLocally expects exactly one new record with a valid timestamp when the
// backend answers with an error status.
func TestSubmitStoredLocally(t *testing.T) {
	b := newBackend(t, http.StatusInternalServerError, `{"error":"Internal server error"}`)
	form, button := filledForm()
	doc := uitest.NewDocument()
	submissions := storage.NewSubmissions(storage.NewMemory())
	captured := time.Date(2025, time.March, 14, 9, 26, 53, 589000000, time.UTC)
	handler := New(form, doc, apiclient.New(b.server.URL),
		WithFallback(submissions), WithClock(func() time.Time { return captured }))

	outcome := handler.Submit(context.Background())

	assert.Equal(t, StoredLocally, outcome)
	assert.Len(t, b.received(), 1)
	records, err := submissions.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.Submission{Name: "A", Email: "a@x.com", Message: "hi"}, records[0].Submission())
	assert.Equal(t, "2025-03-14T09:26:53.589Z", records[0].Timestamp)
	at, err := records[0].CapturedAt()
	require.NoError(t, err)
	assert.True(t, captured.Equal(at))

	assert.Equal(t, []string{MsgStored}, doc.Alerts())
	assert.Equal(t, 1, form.Resets())
	assert.Equal(t, "Send Message", button.Text())
	assert.False(t, button.Disabled())
}

// TestSubmitStoredLocallyOnNetworkError expects the fallback when nothing listens.
func TestSubmitStoredLocallyOnNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	form, button := filledForm()
	doc := uitest.NewDocument()
	submissions := storage.NewSubmissions(storage.NewMemory())
	handler := New(form, doc, apiclient.New(url), WithFallback(submissions))

	assert.Equal(t, StoredLocally, handler.Submit(context.Background()))
	records, err := submissions.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	_, err = records[0].CapturedAt()
	assert.NoError(t, err)
	assert.False(t, button.Disabled())
}

// TestSubmitFallbackFails expects the generic error message when the fallback store fails.
func TestSubmitFallbackFails(t *testing.T) {
	b := newBackend(t, http.StatusServiceUnavailable, "")
	form, button := filledForm()
	doc := uitest.NewDocument()
	handler := New(form, doc, apiclient.New(b.server.URL), WithFallback(failingRecorder{}))

	assert.Equal(t, Failed, handler.Submit(context.Background()))
	assert.Equal(t, []string{MsgSubmitFail}, doc.Alerts())
	assert.Equal(t, 0, form.Resets())
	assert.Equal(t, "A", form.Value(FieldName))
	assert.Equal(t, "Send Message", button.Text())
	assert.False(t, button.Disabled())
}

// TestSubmitReportError expects an error alert and no persistence without a fallback.
func TestSubmitReportError(t *testing.T) {
	b := newBackend(t, http.StatusBadGateway, "")
	form, button := filledForm()
	doc := uitest.NewDocument()
	handler := New(form, doc, apiclient.New(b.server.URL))

	assert.Equal(t, ReportError, handler.Policy())
	assert.Equal(t, Failed, handler.Submit(context.Background()))
	assert.Equal(t, []string{MsgSubmitFail}, doc.Alerts())
	assert.Equal(t, 0, form.Resets())
	assert.Equal(t, "Send Message", button.Text())
	assert.False(t, button.Disabled())
}

// TestSubmitReportErrorWithServerMessage expects the backend's error text in the alert.
func TestSubmitReportErrorWithServerMessage(t *testing.T) {
	b := newBackend(t, http.StatusBadRequest, `{"error":"All fields are required"}`)
	form, _ := filledForm()
	doc := uitest.NewDocument()
	handler := New(form, doc, apiclient.New(b.server.URL))

	handler.Submit(context.Background())
	assert.Equal(t, []string{"Sorry, there was an error submitting your message: All fields are required"}, doc.Alerts())
}

// TestSubmitWithoutButton expects the flow to work on a form lacking a submit control.
func TestSubmitWithoutButton(t *testing.T) {
	b := newBackend(t, http.StatusOK, `{}`)
	form := uitest.NewForm(nil)
	doc := uitest.NewDocument()
	assert.Equal(t, Delivered, New(form, doc, apiclient.New(b.server.URL)).Submit(context.Background()))
}

// TestReleaseIsIdempotent expects repeated releases to leave the button enabled with its
// original label.
func TestReleaseIsIdempotent(t *testing.T) {
	form, button := filledForm()
	handler := New(form, uitest.NewDocument(), apiclient.New("http://unused"))

	release := handler.acquireButton()
	assert.True(t, button.Disabled())
	assert.Equal(t, SendingLabel, button.Text())

	release()
	release()
	release()
	assert.False(t, button.Disabled())
	assert.Equal(t, "Send Message", button.Text())
	assert.Equal(t, []string{SendingLabel, "Send Message"}, button.History())
}

// blockingSubmitter holds every request until released, so submissions overlap.
type blockingSubmitter struct {
	calls   int32
	started chan struct{}
	release chan struct{}
}

func (s *blockingSubmitter) Submit(ctx context.Context, _ model.Submission) (*apiclient.Response, error) {
	atomic.AddInt32(&s.calls, 1)
	s.started <- struct{}{}
	<-s.release
	return &apiclient.Response{}, nil
}

// TestAttachDoubleSubmit expects two submits to issue two requests and the button to end up
// with its original label.
func TestAttachDoubleSubmit(t *testing.T) {
	form, button := filledForm()
	doc := uitest.NewDocument()
	submitter := &blockingSubmitter{started: make(chan struct{}, 2), release: make(chan struct{})}
	handler := New(form, doc, submitter)
	handler.Attach(context.Background())

	form.Submit()
	form.Submit()
	<-submitter.started
	<-submitter.started
	assert.True(t, button.Disabled())
	close(submitter.release)

	assert.Eventually(t, func() bool {
		return len(doc.Alerts()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&submitter.calls))
	assert.Eventually(t, func() bool {
		return !button.Disabled() && button.Text() == "Send Message"
	}, time.Second, 5*time.Millisecond)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "delivered", Delivered.String())
	assert.Equal(t, "stored locally", StoredLocally.String())
	assert.Equal(t, "failed", Failed.String())
}
