package event_test

import (
	"testing"
	"time"

	"marketplace/event"

	. "github.com/onsi/gomega"
)

func TestInvokeHandlers(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should invoke all registered event handlers", func(t *testing.T) {
		defer func(saved []event.EventHandler) { event.EventHandlers = saved }(event.EventHandlers)

		event.EventHandlers = append(event.EventHandlers, func(e *event.EventRecord) *event.EventHandleResult {
			return nil
		})
		event.EventHandlers = append(event.EventHandlers, func(e *event.EventRecord) *event.EventHandleResult {
			return &event.EventHandleResult{Success: true, Message: "success", HandlerIdentifier: "all-success-handler"}
		})
		event.EventHandlers = append(event.EventHandlers, func(e *event.EventRecord) *event.EventHandleResult {
			return &event.EventHandleResult{Success: false, Message: "failure", HandlerIdentifier: "all-failure-handler"}
		})

		ev := event.EventRecord{
			Event: event.Event{
				SourceType: "PROJECT",
				SourceId:   1234,
				SourceDesc: "river cleanup",

				EventCategory: event.EventCategoryStateChanged,
				UpdatedProperties: event.UpdatedProperties{{PropertyName: "state",
					OldValue: "REJECTED", NewValue: "PENDING_APPROVAL"}},

				CreatorId:   333,
				CreatorName: "user333",
			},
			Timestamp: time.Date(2021, 1, 1, 12, 12, 12, 0, time.UTC),
		}

		ret := event.InvokeHandlersFunc(&ev)
		Expect(ret).To(Equal([]event.EventHandleResult{
			{Success: true, Message: "success", HandlerIdentifier: "all-success-handler"},
			{Success: false, Message: "failure", HandlerIdentifier: "all-failure-handler"},
		}))
		Expect(event.AllSucceeded(ret)).To(BeFalse())
		Expect(event.AllSucceeded(ret[:1])).To(BeTrue())
		Expect(event.AllSucceeded(nil)).To(BeTrue())
	})
}
