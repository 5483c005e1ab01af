package events

import (
	"context"
	"sync"
	"testing"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

var _ = Describe("buffer", Ordered, func() {
	Context("buffer", func() {
		It("appends keeping fifo order", func() {
			buffer := newBuffer()

			buffer.PushBack(&message{Kind: JobMessageKind, Data: []byte("msg1")})
			Expect(buffer.Size()).To(Equal(1))

			buffer.PushBack(&message{Kind: JobMessageKind, Data: []byte("msg2")})
			buffer.PushBack(&message{Kind: JobMessageKind, Data: []byte("msg3")})
			Expect(buffer.Size()).To(Equal(3))

			Expect(buffer.Pop().Data).To(Equal([]byte("msg1")))
			Expect(buffer.Pop().Data).To(Equal([]byte("msg2")))
			Expect(buffer.Pop().Data).To(Equal([]byte("msg3")))
			Expect(buffer.Size()).To(Equal(0))
			Expect(buffer.Pop()).To(BeNil())
		})
	})
})

var _ = Describe("producer", Ordered, func() {
	Context("emit", func() {
		It("delivers queued events to the writer", func() {
			w := newTestWriter()
			ep := NewEventProducer(w)

			err := ep.Emit(JobMessageKind, JobEvent{JobID: "job-1", Status: "running", Stage: "Calling model", Progress: 50})
			Expect(err).To(BeNil())

			err = ep.Emit(SimulationMessageKind, SimulationEvent{SimulationID: "sim-1", Status: "completed"})
			Expect(err).To(BeNil())

			Eventually(w.Count, "2s", "10ms").Should(Equal(2))
			Expect(w.Events()[0].Type()).To(Equal(JobMessageKind))
			Expect(w.Events()[1].Type()).To(Equal(SimulationMessageKind))

			_ = ep.Close()
		})
	})
})

type testwriter struct {
	mu       sync.Mutex
	messages []cloudevents.Event
}

func newTestWriter() *testwriter {
	return &testwriter{messages: []cloudevents.Event{}}
}

func (t *testwriter) Write(ctx context.Context, topic string, e cloudevents.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, e)
	return nil
}

func (t *testwriter) Close(_ context.Context) error {
	return nil
}

func (t *testwriter) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

func (t *testwriter) Events() []cloudevents.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]cloudevents.Event, len(t.messages))
	copy(out, t.messages)
	return out
}
