package notification

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/example/gamestore-fulfillment/internal/domain/order"
	"github.com/example/gamestore-fulfillment/internal/email"
	"github.com/example/gamestore-fulfillment/internal/infrastructure/store"
	"github.com/example/gamestore-fulfillment/internal/readmodel"
)

// Handler emails buyers when payment settles their order
type Handler struct {
	emailService *email.Service
	readStore    store.ReadStoreInterface
}

func NewHandler(emailSvc *email.Service, readStore store.ReadStoreInterface) *Handler {
	return &Handler{
		emailService: emailSvc,
		readStore:    readStore,
	}
}

// HandleEvent processes an event from the bus
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	switch event.EventType {
	case order.EventOrderShipped:
		var e order.OrderShipped
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return h.notifyShipped(e.OrderID)
	case order.EventOrderCancelled:
		var e order.OrderCancelled
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return h.notifyCancelled(e.OrderID, e.Reason)
	}

	return nil
}

func (h *Handler) notifyShipped(orderID string) error {
	o, to, ok := h.lookupOrder(orderID)
	if !ok {
		return nil
	}

	lines := make([]email.OrderLine, 0, len(o.Lines))
	for _, line := range o.Lines {
		title := line.GameID
		if g, ok := h.readStore.Get("games", line.GameID); ok {
			title = g.(*readmodel.GameReadModel).Title
		}
		lines = append(lines, email.OrderLine{
			Title:          title,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
		})
	}

	if err := h.emailService.SendShipmentNotice(to, o.ID, o.TotalCents, lines); err != nil {
		log.Printf("[Notifier] Failed to send shipment notice for order %s: %v", o.ID, err)
		return err
	}
	log.Printf("[Notifier] Shipment notice sent for order %s", o.ID)
	return nil
}

func (h *Handler) notifyCancelled(orderID, reason string) error {
	o, to, ok := h.lookupOrder(orderID)
	if !ok {
		return nil
	}

	if err := h.emailService.SendCancellationNotice(to, o.ID, reason); err != nil {
		log.Printf("[Notifier] Failed to send cancellation notice for order %s: %v", o.ID, err)
		return err
	}
	log.Printf("[Notifier] Cancellation notice sent for order %s", o.ID)
	return nil
}

// lookupOrder fetches the order summary and resolves the recipient. Buyers
// are identified by email address upstream; anything else is skipped.
func (h *Handler) lookupOrder(orderID string) (*readmodel.OrderReadModel, string, bool) {
	data, ok := h.readStore.Get("orders", orderID)
	if !ok {
		log.Printf("[Notifier] Order %s not in read store yet, skipping", orderID)
		return nil, "", false
	}
	o := data.(*readmodel.OrderReadModel)

	if !strings.Contains(o.UserID, "@") {
		log.Printf("[Notifier] No email address for order %s, skipping", orderID)
		return nil, "", false
	}
	return o, o.UserID, true
}
