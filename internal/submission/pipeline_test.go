// internal/submission/pipeline_test.go
//
// Unit-tests for the submission pipeline.
//
// Context
// -------
// The pipeline's collaborators are all interfaces, so these tests inject
// in-memory fakes and drive Process with raw JSON bodies.  The critical
// behaviors:
//
//   • fixed gate order with the correct Reject kind per gate
//   • honeypot hits → disguised success, nothing persisted or notified
//   • exactly one Put per accepted submission, Fanout after Put
//   • fan-out detached: Process returns without waiting on the notifier,
//     and the fan-out context survives the request's cancellation
//   • string values sanitized before persistence, non-strings untouched
//   • store failure → Internal, no fan-out
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gadgetcloud-io/forms-service/internal/config"
	"github.com/gadgetcloud-io/forms-service/internal/ratelimit"
	"github.com/gadgetcloud-io/forms-service/internal/validate"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakeStore struct {
	puts []*Submission
	err  error
}

func (f *fakeStore) Put(_ context.Context, sub *Submission) error {
	if f.err != nil {
		return f.err
	}
	f.puts = append(f.puts, sub)
	return nil
}

// fakeNotifier records fan-out calls.  Fanout runs on its own goroutine,
// so the record is mutex-guarded and read through calls().
type fakeNotifier struct {
	mu     sync.Mutex
	fanned []*Submission
}

func (f *fakeNotifier) Fanout(_ context.Context, _ *config.Config, sub *Submission) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fanned = append(f.fanned, sub)
}

func (f *fakeNotifier) calls() []*Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Submission(nil), f.fanned...)
}

// blockingNotifier holds Fanout until released, then reports the context
// error it observed.
type blockingNotifier struct {
	release chan struct{}
	ctxErr  chan error
}

func newBlockingNotifier() *blockingNotifier {
	return &blockingNotifier{
		release: make(chan struct{}),
		ctxErr:  make(chan error, 1),
	}
}

func (b *blockingNotifier) Fanout(ctx context.Context, _ *config.Config, _ *Submission) {
	<-b.release
	b.ctxErr <- ctx.Err()
}

type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string, string) error {
	return errors.New("Rate limit exceeded")
}

// -----------------------------------------------------------------------------
// Fixture
// -----------------------------------------------------------------------------

func testConfig() *config.Config {
	return &config.Config{
		Security: config.Security{
			MaxPayloadSize: 1000,
			HoneypotField:  "website",
		},
		AllowedClients:   []string{"noclient", "acme"},
		AllowedFormTypes: map[string][]string{"acme": {"contact"}, "noclient": {"contact"}},
		ValidationRules:  map[string][]string{"contact": {"name", "email"}},
		FieldConstraints: map[string]validate.FieldConstraint{
			"email": {Required: true, Type: "email"},
		},
		Clients: map[string]config.Client{
			"noclient": {Name: "Fallback", NotificationEmail: "ops@example.com"},
			"acme":     {Name: "Acme Corp", NotificationEmail: "forms@acme.example"},
		},
	}
}

func newTestPipeline(cfg *config.Config, st Store, nt Notifier, lim ratelimit.Limiter) *Pipeline {
	if lim == nil {
		lim = ratelimit.Allower{}
	}
	return NewPipeline(func() *config.Config { return cfg }, st, nt, lim, zap.NewNop().Sugar())
}

var testSource = Source{IP: "203.0.113.9", UserAgent: "go-test"}

// -----------------------------------------------------------------------------
// Accepted path
// -----------------------------------------------------------------------------

func TestProcess_AcceptedSubmission(t *testing.T) {
	st := &fakeStore{}
	nt := &fakeNotifier{}
	p := newTestPipeline(testConfig(), st, nt, nil)

	body := []byte(`{"client":"acme","type":"contact","data":{"name":"A","email":"a@b.com"}}`)
	out, rej := p.Process(context.Background(), body, len(body), testSource)

	require.Nil(t, rej)
	require.NotNil(t, out)
	assert.True(t, out.Persisted)

	require.Len(t, st.puts, 1)
	sub := st.puts[0]
	assert.Equal(t, "acme", sub.Client)
	assert.Equal(t, "contact", sub.FormType)
	assert.Equal(t, "a@b.com", sub.FormData["email"])
	assert.Equal(t, StatusReceived, sub.Status)
	assert.Equal(t, "203.0.113.9", sub.SourceIP)
	assert.NotEmpty(t, sub.SubmissionID)
	assert.NotEmpty(t, sub.TimestampISO)

	// The fan-out is asynchronous; wait for it rather than on it.
	require.Eventually(t, func() bool { return len(nt.calls()) == 1 },
		time.Second, 5*time.Millisecond, "fan-out never fired")
	assert.Same(t, sub, nt.calls()[0])
}

func TestProcess_FanoutDetachedFromRequest(t *testing.T) {
	// A stalled notifier must neither delay Process past the server's
	// write deadline nor lose the fan-out when the request context ends.
	nt := newBlockingNotifier()
	p := newTestPipeline(testConfig(), &fakeStore{}, nt, nil)

	ctx, cancel := context.WithCancel(context.Background())
	body := []byte(`{"client":"acme","type":"contact","data":{"name":"A","email":"a@b.com"}}`)

	done := make(chan struct{})
	go func() {
		defer close(done)
		out, rej := p.Process(ctx, body, len(body), testSource)
		assert.Nil(t, rej)
		assert.True(t, out.Persisted)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Process blocked on the notifier")
	}

	// The response is out; cancelling the request must not cancel the
	// still-running fan-out.
	cancel()
	close(nt.release)
	select {
	case err := <-nt.ctxErr:
		assert.NoError(t, err, "fan-out context died with the request")
	case <-time.After(time.Second):
		t.Fatal("fan-out never ran")
	}
}

func TestProcess_UniqueIDsPerSubmission(t *testing.T) {
	st := &fakeStore{}
	p := newTestPipeline(testConfig(), st, &fakeNotifier{}, nil)
	body := []byte(`{"client":"acme","type":"contact","data":{"name":"A","email":"a@b.com"}}`)

	for i := 0; i < 3; i++ {
		_, rej := p.Process(context.Background(), body, len(body), testSource)
		require.Nil(t, rej)
	}
	seen := map[string]bool{}
	for _, sub := range st.puts {
		assert.False(t, seen[sub.SubmissionID], "duplicate id %s", sub.SubmissionID)
		seen[sub.SubmissionID] = true
	}
}

func TestProcess_FormTypeAndDataKeyFallbacks(t *testing.T) {
	st := &fakeStore{}
	p := newTestPipeline(testConfig(), st, &fakeNotifier{}, nil)

	body := []byte(`{"client":"acme","formType":"contact","formData":{"name":"A","email":"a@b.com"}}`)
	out, rej := p.Process(context.Background(), body, len(body), testSource)

	require.Nil(t, rej)
	assert.Equal(t, "contact", out.Submission.FormType)
	assert.Equal(t, "A", out.Submission.FormData["name"])
}

func TestProcess_SanitizesOnlyStringValues(t *testing.T) {
	st := &fakeStore{}
	p := newTestPipeline(testConfig(), st, &fakeNotifier{}, nil)

	body := []byte(`{"client":"acme","type":"contact",
		"data":{"name":"<b>Ada</b>","email":"a@b.com","count":3,"opt":true}}`)
	_, rej := p.Process(context.Background(), body, len(body), testSource)
	require.Nil(t, rej)

	data := st.puts[0].FormData
	assert.Equal(t, "&lt;b&gt;Ada&lt;/b&gt;", data["name"])
	assert.Equal(t, float64(3), data["count"])
	assert.Equal(t, true, data["opt"])
}

// -----------------------------------------------------------------------------
// Honeypot
// -----------------------------------------------------------------------------

func TestProcess_HoneypotDisguisedSuccess(t *testing.T) {
	st := &fakeStore{}
	nt := &fakeNotifier{}
	p := newTestPipeline(testConfig(), st, nt, nil)

	body := []byte(`{"client":"acme","type":"contact",
		"data":{"name":"A","email":"a@b.com","website":"http://spam"}}`)
	out, rej := p.Process(context.Background(), body, len(body), testSource)

	require.Nil(t, rej)
	require.NotNil(t, out)
	assert.False(t, out.Persisted)
	assert.NotEmpty(t, out.Submission.SubmissionID)
	assert.Equal(t, StatusReceived, out.Submission.Status)

	assert.Empty(t, st.puts, "bot submission must not be persisted")
	assert.Empty(t, nt.calls(), "bot submission must not be notified")
}

func TestProcess_HoneypotRunsBeforeClientCheck(t *testing.T) {
	// A bot with an unknown client still gets the disguised success.
	st := &fakeStore{}
	p := newTestPipeline(testConfig(), st, &fakeNotifier{}, nil)

	body := []byte(`{"client":"evil","type":"contact","data":{"website":"x"}}`)
	out, rej := p.Process(context.Background(), body, len(body), testSource)

	require.Nil(t, rej)
	assert.False(t, out.Persisted)
	assert.Empty(t, st.puts)
}

// -----------------------------------------------------------------------------
// Rejection gates
// -----------------------------------------------------------------------------

func TestProcess_PayloadTooLarge(t *testing.T) {
	p := newTestPipeline(testConfig(), &fakeStore{}, &fakeNotifier{}, nil)

	body := []byte(fmt.Sprintf(`{"data":{"pad":"%s"}}`, strings.Repeat("x", 2000)))
	out, rej := p.Process(context.Background(), body, len(body), testSource)

	require.Nil(t, out)
	require.NotNil(t, rej)
	assert.Equal(t, PayloadTooLarge, rej.Kind)
	assert.Equal(t, 413, rej.HTTPStatus())
}

func TestProcess_PayloadSizeUsesDeclaredFigure(t *testing.T) {
	// Transports that cap their reads pass the declared Content-Length;
	// the rejection echoes that figure, not the truncated read.
	p := newTestPipeline(testConfig(), &fakeStore{}, &fakeNotifier{}, nil)

	body := []byte(`{"data":{}}`)
	_, rej := p.Process(context.Background(), body, 50000, testSource)

	require.NotNil(t, rej)
	assert.Equal(t, PayloadTooLarge, rej.Kind)
	assert.Contains(t, rej.Message, "50000 bytes")
}

func TestProcess_InvalidJSON(t *testing.T) {
	p := newTestPipeline(testConfig(), &fakeStore{}, &fakeNotifier{}, nil)

	body := []byte(`{not json`)
	_, rej := p.Process(context.Background(), body, len(body), testSource)
	require.NotNil(t, rej)
	assert.Equal(t, InvalidJSON, rej.Kind)
	assert.Equal(t, "Invalid JSON in request body", rej.Message)
}

func TestProcess_UnknownClient(t *testing.T) {
	p := newTestPipeline(testConfig(), &fakeStore{}, &fakeNotifier{}, nil)

	body := []byte(`{"client":"evil","type":"contact","data":{"name":"A","email":"a@b.com"}}`)
	_, rej := p.Process(context.Background(), body, len(body), testSource)

	require.NotNil(t, rej)
	assert.Equal(t, UnknownClient, rej.Kind)
	assert.Equal(t, 400, rej.HTTPStatus())
	assert.Equal(t, "Invalid client: evil", rej.Message)
}

func TestProcess_AbsentClientDefaultsToNoclient(t *testing.T) {
	st := &fakeStore{}
	p := newTestPipeline(testConfig(), st, &fakeNotifier{}, nil)

	body := []byte(`{"type":"contact","data":{"name":"A","email":"a@b.com"}}`)
	out, rej := p.Process(context.Background(), body, len(body), testSource)

	require.Nil(t, rej)
	assert.Equal(t, "noclient", out.Submission.Client)
}

func TestProcess_FormTypeNotAllowed(t *testing.T) {
	p := newTestPipeline(testConfig(), &fakeStore{}, &fakeNotifier{}, nil)

	body := []byte(`{"client":"acme","type":"survey","data":{"name":"A","email":"a@b.com"}}`)
	_, rej := p.Process(context.Background(), body, len(body), testSource)

	require.NotNil(t, rej)
	assert.Equal(t, FormTypeNotAllowed, rej.Kind)
}

func TestProcess_ThrottledWhenLimiterDenies(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimiting.Enabled = true
	p := newTestPipeline(cfg, &fakeStore{}, &fakeNotifier{}, denyLimiter{})

	body := []byte(`{"client":"acme","type":"contact","data":{"name":"A","email":"a@b.com"}}`)
	_, rej := p.Process(context.Background(), body, len(body), testSource)

	require.NotNil(t, rej)
	assert.Equal(t, Throttled, rej.Kind)
	assert.Equal(t, 429, rej.HTTPStatus())
}

func TestProcess_DefaultLimiterAllows(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimiting.Enabled = true
	st := &fakeStore{}
	p := newTestPipeline(cfg, st, &fakeNotifier{}, nil)

	body := []byte(`{"client":"acme","type":"contact","data":{"name":"A","email":"a@b.com"}}`)
	_, rej := p.Process(context.Background(), body, len(body), testSource)

	require.Nil(t, rej)
	assert.Len(t, st.puts, 1)
}

func TestProcess_ValidationFailureCarriesAllDetails(t *testing.T) {
	p := newTestPipeline(testConfig(), &fakeStore{}, &fakeNotifier{}, nil)

	// name missing, email malformed: both must be reported.
	body := []byte(`{"client":"acme","type":"contact","data":{"email":"user@@bad"}}`)
	_, rej := p.Process(context.Background(), body, len(body), testSource)

	require.NotNil(t, rej)
	assert.Equal(t, ValidationFailed, rej.Kind)
	require.Len(t, rej.Details, 2)
}

// -----------------------------------------------------------------------------
// Persistence failure
// -----------------------------------------------------------------------------

func TestProcess_StoreFailureIsInternal(t *testing.T) {
	nt := &fakeNotifier{}
	p := newTestPipeline(testConfig(), &fakeStore{err: errors.New("db down")}, nt, nil)

	body := []byte(`{"client":"acme","type":"contact","data":{"name":"A","email":"a@b.com"}}`)
	out, rej := p.Process(context.Background(), body, len(body), testSource)

	require.Nil(t, out)
	require.NotNil(t, rej)
	assert.Equal(t, Internal, rej.Kind)
	assert.Equal(t, 500, rej.HTTPStatus())
	assert.Empty(t, nt.calls(), "no fan-out after a failed put")
}
