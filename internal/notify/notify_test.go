package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/parisxmas/oxiforms/internal/models"
)

func sampleForm() *models.Form {
	return &models.Form{
		ID:    "f1",
		Title: "Feedback",
		Questions: []models.Question{
			{ID: "q1", Type: models.QuestionShortText, Title: "Name"},
			{ID: "q2", Type: models.QuestionMultiChoice, Title: "Likes", Options: []string{"a", "b"}},
			{ID: "q3", Type: models.QuestionLongText, Title: "Notes"},
		},
		WorkflowConfig: models.WorkflowConfig{
			EmailNotifications: true,
			SlackNotifications: true,
			RequireApproval:    true,
			ApproverEmail:      "boss@example.com",
			NotifyEmails:       []string{"team@example.com", "boss@example.com"},
		},
	}
}

func sampleResponse() *models.FormResponse {
	return &models.FormResponse{
		ID:              "r1",
		FormID:          "f1",
		RespondentEmail: "ann@example.com",
		RespondentName:  "Ann",
		Responses:       map[string]any{"q1": "Ann", "q2": []any{"a", "b"}},
		Status:          models.StatusSubmitted,
		SubmittedAt:     time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
	}
}

func TestNewSubmissionEvent(t *testing.T) {
	ev := NewSubmissionEvent(sampleForm(), sampleResponse())
	assert.Equal(t, []string{"boss@example.com", "team@example.com"}, ev.Recipients)
	assert.Equal(t, []Answer{{"Name", "Ann"}, {"Likes", "a, b"}}, ev.Answers)
	assert.True(t, ev.Wants())

	ev.EmailEnabled, ev.SlackEnabled = false, false
	assert.False(t, ev.Wants())
}

type recordingMailer struct {
	mu   sync.Mutex
	msgs []Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	return m.err
}

func TestEmailNotifier(t *testing.T) {
	m := &recordingMailer{}
	n := NewEmailNotifier(m, "forms@example.com")

	require.NoError(t, n.Notify(context.Background(), NewSubmissionEvent(sampleForm(), sampleResponse())))
	require.Len(t, m.msgs, 1)
	msg := m.msgs[0]
	assert.Equal(t, "forms@example.com", msg.From)
	assert.Equal(t, []string{"boss@example.com", "team@example.com"}, msg.To)
	assert.Equal(t, "Approval needed: Feedback", msg.Subject)
	assert.Contains(t, msg.HTML, "Ann &lt;ann@example.com&gt;")
	assert.Contains(t, msg.HTML, "<strong>Likes</strong></td><td>a, b</td>")
}

func TestEmailNotifierSkips(t *testing.T) {
	m := &recordingMailer{}
	n := NewEmailNotifier(m, "")

	ev := NewSubmissionEvent(sampleForm(), sampleResponse())
	ev.EmailEnabled = false
	require.NoError(t, n.Notify(context.Background(), ev))

	ev = NewSubmissionEvent(sampleForm(), sampleResponse())
	ev.Recipients = nil
	require.NoError(t, n.Notify(context.Background(), ev))
	assert.Empty(t, m.msgs)

	require.NoError(t, NewEmailNotifier(NopMailer{}, "").Notify(context.Background(), NewSubmissionEvent(sampleForm(), sampleResponse())))
}

func TestEmailNotifierError(t *testing.T) {
	m := &recordingMailer{err: errors.New("boom")}
	err := NewEmailNotifier(m, "").Notify(context.Background(), NewSubmissionEvent(sampleForm(), sampleResponse()))
	assert.ErrorContains(t, err, "boom")
}

func TestNewMailer(t *testing.T) {
	assert.IsType(t, NopMailer{}, NewMailer(MailConfig{}))
	assert.IsType(t, &SMTPMailer{}, NewMailer(MailConfig{SMTPHost: "localhost"}))
	assert.IsType(t, &SendGridMailer{}, NewMailer(MailConfig{SendGridAPIKey: "k", SMTPHost: "localhost"}))
}

func TestSendGridMailer(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer sg-key", r.Header.Get("Authorization"))
		data, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(data, &body))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	err := NewSendGridMailer("sg-key", srv.URL).Send(context.Background(), Message{
		From: "a@example.com", To: []string{"b@example.com"}, Subject: "hi", HTML: "<p>x</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "hi", body["subject"])
}

func TestSendGridMailerErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewSendGridMailer("bad", srv.URL).Send(context.Background(), Message{From: "a@example.com", To: []string{"b@example.com"}})
	assert.ErrorContains(t, err, "status 401")
}

func TestSlackNotifier(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL)
	require.NoError(t, n.Notify(context.Background(), NewSubmissionEvent(sampleForm(), sampleResponse())))
	assert.Contains(t, got["text"], "*New response to Feedback* from Ann <ann@example.com> (submitted)")
	assert.Contains(t, got["text"], "• Likes: a, b")
}

func TestSlackNotifierDisabled(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	ev := NewSubmissionEvent(sampleForm(), sampleResponse())
	ev.SlackEnabled = false
	require.NoError(t, NewSlackNotifier(srv.URL).Notify(context.Background(), ev))
	require.NoError(t, NewSlackNotifier("").Notify(context.Background(), NewSubmissionEvent(sampleForm(), sampleResponse())))
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestSlackNotifierErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewSlackNotifier(srv.URL).Notify(context.Background(), NewSubmissionEvent(sampleForm(), sampleResponse()))
	assert.ErrorContains(t, err, "invalid_payload")
}

type notifierFunc func(ctx context.Context, ev SubmissionEvent) error

func (f notifierFunc) Notify(ctx context.Context, ev SubmissionEvent) error { return f(ctx, ev) }

func TestMultiJoinsErrors(t *testing.T) {
	var calls int32
	ok := notifierFunc(func(context.Context, SubmissionEvent) error { atomic.AddInt32(&calls, 1); return nil })
	bad := notifierFunc(func(context.Context, SubmissionEvent) error { atomic.AddInt32(&calls, 1); return errors.New("bad") })

	err := Multi{ok, nil, bad, ok}.Notify(context.Background(), SubmissionEvent{})
	assert.ErrorContains(t, err, "bad")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDispatcherDeliversAndCloseWaits(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	var delivered int32
	n := notifierFunc(func(ctx context.Context, ev SubmissionEvent) error {
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&delivered, 1)
		return nil
	})
	d := NewDispatcher(n, 4, 8, time.Second)
	for i := 0; i < 3; i++ {
		assert.True(t, d.Dispatch(SubmissionEvent{ResponseID: "r"}))
	}
	d.Close()
	d.Close()
	assert.Equal(t, int32(3), atomic.LoadInt32(&delivered))
	assert.False(t, d.Dispatch(SubmissionEvent{}))
}

func TestDispatcherDeliversBurstBeyondWorkers(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	var delivered int32
	n := notifierFunc(func(ctx context.Context, ev SubmissionEvent) error {
		time.Sleep(50 * time.Millisecond)
		atomic.AddInt32(&delivered, 1)
		return nil
	})
	d := NewDispatcher(n, 4, 16, time.Second)
	for i := 0; i < 10; i++ {
		assert.True(t, d.Dispatch(SubmissionEvent{ResponseID: fmt.Sprintf("r%d", i)}))
	}
	d.Close()
	assert.Equal(t, int32(10), atomic.LoadInt32(&delivered))
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	var delivered int32
	n := notifierFunc(func(ctx context.Context, ev SubmissionEvent) error {
		started <- struct{}{}
		<-release
		atomic.AddInt32(&delivered, 1)
		return nil
	})
	d := NewDispatcher(n, 1, 1, time.Second)
	assert.True(t, d.Dispatch(SubmissionEvent{}))
	<-started
	assert.True(t, d.Dispatch(SubmissionEvent{}))
	assert.False(t, d.Dispatch(SubmissionEvent{}))
	close(release)
	d.Close()
	assert.Equal(t, int32(2), atomic.LoadInt32(&delivered))
}

func TestDispatcherSurvivesFailureAndPanic(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	d := NewDispatcher(Multi{
		notifierFunc(func(context.Context, SubmissionEvent) error { return errors.New("down") }),
	}, 2, 4, time.Second)
	assert.True(t, d.Dispatch(SubmissionEvent{}))
	assert.True(t, d.Dispatch(SubmissionEvent{}))
	d.Close()

	var calls int32
	p := NewDispatcher(notifierFunc(func(context.Context, SubmissionEvent) error {
		atomic.AddInt32(&calls, 1)
		panic("oops")
	}), 1, 4, time.Second)
	assert.True(t, p.Dispatch(SubmissionEvent{}))
	assert.True(t, p.Dispatch(SubmissionEvent{}))
	p.Close()
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDispatcherAppliesTimeout(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	var sawDeadline atomic.Bool
	d := NewDispatcher(notifierFunc(func(ctx context.Context, ev SubmissionEvent) error {
		_, ok := ctx.Deadline()
		sawDeadline.Store(ok)
		<-ctx.Done()
		return ctx.Err()
	}), 1, 1, 20*time.Millisecond)
	assert.True(t, d.Dispatch(SubmissionEvent{}))
	d.Close()
	assert.True(t, sawDeadline.Load())
}
