package b2b

import (
	"errors"
	"fmt"

	"festival-tickets/internal/models"
)

// Action is one of the guarded fulfillment operations on a corporate order.
type Action string

const (
	ActionGenerateInvoice Action = "generate_invoice"
	ActionMarkPaid        Action = "mark_paid"
	ActionGenerateTickets Action = "generate_tickets"
	ActionSendTickets     Action = "send_tickets"
	ActionComplete        Action = "complete"
	ActionCancel          Action = "cancel"
)

// allowedFrom lists the statuses each action may be invoked from. MarkPaid
// accepts pending so online-payment orders can skip invoice_sent, which only
// exists for the invoice payment method.
var allowedFrom = map[Action][]models.OrderStatus{
	ActionGenerateInvoice: {models.StatusPending, models.StatusInvoiceSent},
	ActionMarkPaid:        {models.StatusPending, models.StatusInvoiceSent},
	ActionGenerateTickets: {models.StatusPaid},
	ActionSendTickets:     {models.StatusTicketsGenerated},
	ActionComplete:        {models.StatusTicketsSent},
	ActionCancel: {
		models.StatusPending, models.StatusInvoiceSent, models.StatusPaid,
		models.StatusTicketsGenerated, models.StatusTicketsSent,
	},
}

// targetStatus is where each action lands on success.
var targetStatus = map[Action]models.OrderStatus{
	ActionGenerateInvoice: models.StatusInvoiceSent,
	ActionMarkPaid:        models.StatusPaid,
	ActionGenerateTickets: models.StatusTicketsGenerated,
	ActionSendTickets:     models.StatusTicketsSent,
	ActionComplete:        models.StatusCompleted,
	ActionCancel:          models.StatusCancelled,
}

// InvalidTransitionError reports a guarded action attempted from a status
// that does not allow it. It carries enough context for an admin UI to
// render "action not available" instead of a generic failure.
type InvalidTransitionError struct {
	OrderID string
	Action  Action
	Status  models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %s: action %s not available in status %s", e.OrderID, e.Action, e.Status)
}

// ErrStatusConflict means another actor advanced the order between our read
// and our write. The caller should re-read the order and re-decide rather
// than blindly retry the same transition.
var ErrStatusConflict = errors.New("order status changed concurrently")

// ErrBelowMinimum rejects corporate orders under the eligibility minimum.
var ErrBelowMinimum = errors.New("order is below the corporate minimum quantity")

// guard validates that the action may run from the current status and
// returns the status it transitions to.
func guard(orderID string, action Action, current models.OrderStatus) (models.OrderStatus, error) {
	for _, status := range allowedFrom[action] {
		if status == current {
			return targetStatus[action], nil
		}
	}
	return "", &InvalidTransitionError{OrderID: orderID, Action: action, Status: current}
}
