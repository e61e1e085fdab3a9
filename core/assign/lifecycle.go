package assign

import (
	"errors"
	"fmt"
	"time"

	"github.com/hantar/loadplan/core/events"
	"github.com/hantar/loadplan/core/fleet"
	"github.com/hantar/loadplan/core/model"
)

// Dispatch marks an assigned order as on the road.
func (s *Service) Dispatch(orderID string) error {
	return s.transition(orderID, model.StatusDispatched)
}

// Deliver marks a dispatched order as delivered.
func (s *Service) Deliver(orderID string) error {
	return s.transition(orderID, model.StatusDelivered)
}

// Cancel cancels an order from any non-terminal state.
func (s *Service) Cancel(orderID string) error {
	return s.transition(orderID, model.StatusCancelled)
}

func (s *Service) transition(orderID string, next model.OrderStatus) error {
	// Legality is checked by the store under its lock so a racing commit or
	// cancellation cannot slip between check and write.
	_, from, err := s.store.TransitionOrder(orderID, next)
	if err == fleet.ErrUnknownOrder {
		return reject(ReasonUnknownOrder, fmt.Sprintf("order %s not found", orderID))
	}
	if errors.Is(err, fleet.ErrStatusConflict) {
		return reject(ReasonInvalidStatus, fmt.Sprintf("order %s cannot move %s -> %s", orderID, from, next))
	}
	if err != nil {
		return fmt.Errorf("assign: transition: %w", err)
	}
	s.log.Infof("order %s %s -> %s", orderID, from, next)
	if s.bus != nil {
		s.bus.Publish(events.OrderTransition{
			Time:    time.Now().UTC(),
			OrderID: orderID,
			From:    string(from),
			To:      string(next),
		})
	}
	return nil
}
