package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type fakeMailer struct {
	mu     sync.Mutex
	sent   []Email
	fail   bool
	signal chan struct{}
}

func (f *fakeMailer) SendEmail(email Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signal != nil {
		defer func() { f.signal <- struct{}{} }()
	}
	if f.fail {
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, email)
	return nil
}

func (f *fakeMailer) delivered() []Email {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Email(nil), f.sent...)
}

type fakeSMSSender struct {
	mu     sync.Mutex
	sent   []SMS
	signal chan struct{}
}

func (f *fakeSMSSender) SendSMS(_ context.Context, sms SMS) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signal != nil {
		defer func() { f.signal <- struct{}{} }()
	}
	f.sent = append(f.sent, sms)
	return nil
}

func (f *fakeSMSSender) delivered() []SMS {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SMS(nil), f.sent...)
}

type DispatcherSuite struct {
	suite.Suite
	logger *slog.Logger
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *DispatcherSuite) await(signal chan struct{}, n int) {
	for i := 0; i < n; i++ {
		select {
		case <-signal:
		case <-time.After(2 * time.Second):
			s.FailNow("timed out waiting for delivery")
		}
	}
}

func (s *DispatcherSuite) TestDelivery() {
	mailer := &fakeMailer{signal: make(chan struct{}, 8)}
	sms := &fakeSMSSender{signal: mailer.signal}
	d := NewDispatcher(s.logger, mailer, sms, nil, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = d.Run(ctx)
		close(done)
	}()

	d.EnqueueEmail(Email{To: "a@example.com", Subject: "Welcome", Body: "hi"})
	d.EnqueueSMS(SMS{To: "+15550100", Body: "your interview is tomorrow"})
	s.await(mailer.signal, 2)

	emails := mailer.delivered()
	s.Require().Len(emails, 1)
	s.Equal("Welcome", emails[0].Subject)

	texts := sms.delivered()
	s.Require().Len(texts, 1)
	s.Equal("+15550100", texts[0].To)

	cancel()
	<-done
}

func (s *DispatcherSuite) TestEnqueueNeverBlocks() {
	// No worker is running, so the buffer fills and overflow is dropped.
	d := NewDispatcher(s.logger, &fakeMailer{}, &fakeSMSSender{}, nil, 2)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.EnqueueEmail(Email{To: "a@example.com"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.FailNow("enqueue blocked on a full buffer")
	}
}

func (s *DispatcherSuite) TestProviderFailureIsSwallowed() {
	mailer := &fakeMailer{fail: true, signal: make(chan struct{}, 4)}
	d := NewDispatcher(s.logger, mailer, &fakeSMSSender{}, nil, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	d.EnqueueEmail(Email{To: "a@example.com"})
	d.EnqueueEmail(Email{To: "b@example.com"})
	s.await(mailer.signal, 2)

	// Both attempts were made; neither was recorded as sent.
	s.Empty(mailer.delivered())
}
