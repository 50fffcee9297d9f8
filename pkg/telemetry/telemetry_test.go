package telemetry

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// recordingSink collects deliveries and can be told to fail the first N
// attempts per event name.
type recordingSink struct {
	mu        sync.Mutex
	delivered []string
	failFirst int
	attempts  map[string]int
	notify    chan string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		attempts: make(map[string]int),
		notify:   make(chan string, 64),
	}
}

func (s *recordingSink) Deliver(name string, attrs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[name]++
	if s.attempts[name] <= s.failFirst {
		return errors.New("transport unavailable")
	}
	s.delivered = append(s.delivered, name)
	select {
	case s.notify <- name:
	default:
	}
	return nil
}

func (s *recordingSink) wait(t *testing.T, name string) {
	t.Helper()
	select {
	case got := <-s.notify:
		require.Equal(t, name, got)
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for delivery of %q", name)
	}
}

func (s *recordingSink) attemptsFor(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[name]
}

type CollectorTestSuite struct {
	suite.Suite

	sink *recordingSink
}

func (s *CollectorTestSuite) SetupTest() {
	s.sink = newRecordingSink()
}

func (s *CollectorTestSuite) newCollector(conf Config) *Collector {
	conf.Sink = s.sink
	c, err := NewCollector(conf)
	s.Require().NoError(err)
	return c
}

func (s *CollectorTestSuite) TestEventDelivered() {
	c := s.newCollector(Config{})
	defer c.Close()

	c.RecordEvent("entry-point-executed", map[string]string{"host": "2026"})
	s.sink.wait(s.T(), "entry-point-executed")
	s.Equal(1, s.sink.attemptsFor("entry-point-executed"))
}

func (s *CollectorTestSuite) TestCrashDelivered() {
	c := s.newCollector(Config{})
	defer c.Close()

	c.RecordCrash("null geometry")
	s.sink.wait(s.T(), "crash")
}

func (s *CollectorTestSuite) TestRetryThenSuccess() {
	s.sink.failFirst = 2
	c := s.newCollector(Config{MaxRetries: 3, RetryInterval: time.Millisecond})
	defer c.Close()

	c.RecordEvent("document-opened", nil)
	s.sink.wait(s.T(), "document-opened")
	s.Equal(3, s.sink.attemptsFor("document-opened"))
}

func (s *CollectorTestSuite) TestRetriesExhaustedDropsQuietly() {
	s.sink.failFirst = 100
	c := s.newCollector(Config{MaxRetries: 2, RetryInterval: time.Millisecond})

	s.NotPanics(func() { c.RecordEvent("document-opened", nil) })
	s.Require().NoError(c.Close())

	// initial attempt plus two retries, nothing delivered
	s.Equal(3, s.sink.attemptsFor("document-opened"))
	s.Empty(s.sink.delivered)
}

func (s *CollectorTestSuite) TestSaturatedPoolDropsWithoutBlocking() {
	block := make(chan struct{})
	slow := &blockingSink{release: block}
	c, err := NewCollector(Config{Sink: slow, Workers: 1})
	s.Require().NoError(err)

	c.RecordEvent("first", nil) // occupies the lone worker
	done := make(chan struct{})
	go func() {
		for i := 0; i < 32; i++ {
			c.RecordEvent("burst", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		s.Fail("RecordEvent blocked on a saturated pool")
	}
	close(block)
	s.NoError(c.Close())
}

func (s *CollectorTestSuite) TestCloseIsIdempotentAndStopsRecording() {
	c := s.newCollector(Config{})
	s.Require().NoError(c.Close())
	s.Require().NoError(c.Close())

	c.RecordEvent("after-close", nil)
	time.Sleep(20 * time.Millisecond)
	s.Zero(s.sink.attemptsFor("after-close"))
}

func (s *CollectorTestSuite) TestNoSinkIsValid() {
	c, err := NewCollector(Config{})
	s.Require().NoError(err)
	s.NotPanics(func() {
		c.RecordEvent("entry-point-executed", nil)
		c.RecordCrash("boom")
	})
	s.NoError(c.Close())
}

func TestCollectorTestSuite(t *testing.T) {
	suite.Run(t, new(CollectorTestSuite))
}

type blockingSink struct {
	release chan struct{}
}

func (b *blockingSink) Deliver(string, map[string]string) error {
	<-b.release
	return nil
}

func TestDefaultConfig(t *testing.T) {
	conf := DefaultConfig()
	assert.NotNil(t, conf.Meter)
	assert.NotNil(t, conf.Tracer)
	assert.Equal(t, 1, conf.Workers)
	assert.EqualValues(t, 3, conf.MaxRetries)
	assert.Positive(t, conf.RetryInterval)
}

func TestAttrsToKV(t *testing.T) {
	assert.Nil(t, attrsToKV(nil))
	kv := attrsToKV(map[string]string{"a": "1", "b": "2"})
	assert.Len(t, kv, 2)
}
