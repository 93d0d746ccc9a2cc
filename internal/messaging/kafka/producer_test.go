package kafka

import (
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
)

func newMockedProducer(t *testing.T) (*Producer, *mocks.SyncProducer) {
	t.Helper()

	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}
	return producer, mockProducer
}

func TestProducer_PublishEvent(t *testing.T) {
	producer, mockProducer := newMockedProducer(t)

	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(raw []byte) error {
		var event OrderCreatedEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			return err
		}
		if event.EventType != EventTypeOrderCreated {
			t.Errorf("expected event type %s, got %s", EventTypeOrderCreated, event.EventType)
		}
		if event.OrderID != "order-1" || event.AmountMinor != 1500 {
			t.Errorf("unexpected event payload: %+v", event)
		}
		return nil
	})

	event := NewOrderCreatedEvent("order-1", "customer-1", 1500, []OrderEventLine{
		{ProductID: "product-1", Qty: 3, PriceMinor: 500},
	})

	if err := producer.PublishEvent(TopicOrderEvents, "order-1", event); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_Error(t *testing.T) {
	producer, mockProducer := newMockedProducer(t)

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	event := NewOrderCreatedEvent("order-1", "customer-1", 1500, nil)
	if err := producer.PublishEvent(TopicOrderEvents, "order-1", event); err == nil {
		t.Fatal("expected error when broker is unavailable")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_UnserializableEvent(t *testing.T) {
	producer, mockProducer := newMockedProducer(t)

	// Каналы не сериализуются в JSON.
	if err := producer.PublishEvent(TopicOrderEvents, "order-1", make(chan int)); err == nil {
		t.Fatal("expected marshal error")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}
