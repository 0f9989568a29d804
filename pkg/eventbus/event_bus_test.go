package eventbus

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/stafflink/backoffice/pkg/logging"
)

type taskAssigned struct {
	taskID uint
	userID uint
}

func TestPublisher_Subscribe(t *testing.T) {
	publisher := NewEventPublisher(logging.ConsoleLogger(logrus.WarnLevel))
	var got *taskAssigned
	publisher.Subscribe(func(name string, e *taskAssigned) {
		got = e
	})
	publisher.Publish("task.assigned", &taskAssigned{taskID: 1, userID: 2})

	if got == nil {
		t.Fatal("handler should have been called")
	}
	if got.taskID != 1 || got.userID != 2 {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestPublisher_NoMatchingSubscriber(t *testing.T) {
	logBuffer := bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(&logBuffer)
	log.SetLevel(logrus.WarnLevel)

	publisher := NewEventPublisher(log)
	publisher.Subscribe(func(e *taskAssigned) {
		t.Error("should not be called")
	})
	publisher.Publish("task.assigned", &taskAssigned{})

	if output := logBuffer.String(); !strings.Contains(output, "no matching subscribers") {
		t.Errorf("expected a no-subscribers warning, got: %q", output)
	}
}

func TestPublisher_RecoversHandlerPanic(t *testing.T) {
	logBuffer := bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(&logBuffer)

	publisher := NewEventPublisher(log)
	publisher.Subscribe(func(e *taskAssigned) {
		panic("boom")
	})
	publisher.Publish(&taskAssigned{})

	if output := logBuffer.String(); !strings.Contains(output, "panicked") {
		t.Errorf("expected a panic log, got: %q", output)
	}
}

func TestPublisher_Unsubscribe(t *testing.T) {
	publisher := NewEventPublisher(logging.ConsoleLogger(logrus.PanicLevel))
	handler := func(e *taskAssigned) {}
	publisher.Subscribe(handler)
	if publisher.SubscribersCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", publisher.SubscribersCount())
	}
	publisher.Unsubscribe(handler)
	if publisher.SubscribersCount() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", publisher.SubscribersCount())
	}
}
