package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/metropass/internal/core/domain"
	"github.com/samirrijal/metropass/internal/core/usecases"
)

var validate = validator.New()

type ticketTypeRequest struct {
	TicketTypeID string `json:"ticket_type_id" validate:"required"`
}

type stationsRequest struct {
	Origin      string `json:"origin" validate:"required_without=Destination"`
	Destination string `json:"destination" validate:"omitempty,nefield=Origin"`
}

type discountRequest struct {
	NationalID string `json:"national_id" validate:"max=32"`
}

type paymentMethodRequest struct {
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
}

// bindRequest parses the JSON body into v and validates it. When ok is false
// the error response has been written.
func bindRequest(c *fiber.Ctx, v any) (ok bool, err error) {
	if err := c.BodyParser(v); err != nil {
		return false, errBadRequest(c, "invalid request body")
	}
	if err := validate.Struct(v); err != nil {
		return false, errValidation(c, err)
	}
	return true, nil
}

func flowResponse(c *fiber.Ctx, id string, flow *usecases.PurchaseFlow) error {
	return c.JSON(usecases.DescribeFlow(id, flow.Session(), localeOf(c)))
}

// withFlow resolves the :id flow and runs fn against it.
func withFlow(deps *Dependencies, fn func(c *fiber.Ctx, id string, flow *usecases.PurchaseFlow) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		flow, err := deps.Flows.Get(id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return fn(c, id, flow)
	}
}

// CreatePurchaseHandler opens a new purchase flow.
func CreatePurchaseHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, flow, err := deps.Flows.Create()
		if err != nil {
			return errFromDomain(c, err)
		}
		LoggerFromCtx(c.UserContext()).Info("purchase flow created", "flow_id", id)
		c.Location("/v1/purchases/" + id)
		c.Status(fiber.StatusCreated)
		return flowResponse(c, id, flow)
	}
}

// GetPurchaseHandler renders the flow.
func GetPurchaseHandler(deps *Dependencies) fiber.Handler {
	return withFlow(deps, flowResponse)
}

// DeletePurchaseHandler discards the flow, cancelling any pending settlement.
func DeletePurchaseHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Flows.Discard(c.Params("id")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SelectTicketTypeHandler chooses the ticket type.
func SelectTicketTypeHandler(deps *Dependencies) fiber.Handler {
	return withFlow(deps, func(c *fiber.Ctx, id string, flow *usecases.PurchaseFlow) error {
		var req ticketTypeRequest
		if ok, err := bindRequest(c, &req); !ok {
			return err
		}
		if err := flow.SelectTicketType(req.TicketTypeID); err != nil {
			return errFromDomain(c, err)
		}
		return flowResponse(c, id, flow)
	})
}

// SelectStationsHandler sets the origin, the destination, or both.
func SelectStationsHandler(deps *Dependencies) fiber.Handler {
	return withFlow(deps, func(c *fiber.Ctx, id string, flow *usecases.PurchaseFlow) error {
		var req stationsRequest
		if ok, err := bindRequest(c, &req); !ok {
			return err
		}
		if req.Origin != "" {
			if err := flow.SelectStation(domain.Origin, req.Origin); err != nil {
				return errFromDomain(c, err)
			}
		}
		if req.Destination != "" {
			if err := flow.SelectStation(domain.Destination, req.Destination); err != nil {
				return errFromDomain(c, err)
			}
		}
		return flowResponse(c, id, flow)
	})
}

// SetDiscountHandler stores the national id and runs the eligibility check.
// An ineligible id is not an error; discount_applied stays false.
func SetDiscountHandler(deps *Dependencies) fiber.Handler {
	return withFlow(deps, func(c *fiber.Ctx, id string, flow *usecases.PurchaseFlow) error {
		var req discountRequest
		if ok, err := bindRequest(c, &req); !ok {
			return err
		}
		if err := flow.SetDiscountInput(req.NationalID); err != nil {
			return errFromDomain(c, err)
		}
		if _, err := flow.ApplyDiscount(); err != nil {
			return errFromDomain(c, err)
		}
		return flowResponse(c, id, flow)
	})
}

// SelectPaymentMethodHandler chooses the payment method.
func SelectPaymentMethodHandler(deps *Dependencies) fiber.Handler {
	return withFlow(deps, func(c *fiber.Ctx, id string, flow *usecases.PurchaseFlow) error {
		var req paymentMethodRequest
		if ok, err := bindRequest(c, &req); !ok {
			return err
		}
		if err := flow.SelectPaymentMethod(req.PaymentMethodID); err != nil {
			return errFromDomain(c, err)
		}
		return flowResponse(c, id, flow)
	})
}

// NextHandler advances the wizard. On the payment step this submits.
func NextHandler(deps *Dependencies) fiber.Handler {
	return withFlow(deps, func(c *fiber.Ctx, id string, flow *usecases.PurchaseFlow) error {
		if err := flow.Next(c.UserContext()); err != nil {
			return errFromDomain(c, err)
		}
		return flowResponse(c, id, flow)
	})
}

// BackHandler moves the wizard back one step.
func BackHandler(deps *Dependencies) fiber.Handler {
	return withFlow(deps, func(c *fiber.Ctx, id string, flow *usecases.PurchaseFlow) error {
		if err := flow.Back(); err != nil {
			return errFromDomain(c, err)
		}
		return flowResponse(c, id, flow)
	})
}

// SubmitHandler starts settlement. The response is 202; the confirmation
// arrives later on GET or the WebSocket relay.
func SubmitHandler(deps *Dependencies) fiber.Handler {
	return withFlow(deps, func(c *fiber.Ctx, id string, flow *usecases.PurchaseFlow) error {
		if err := flow.Submit(c.UserContext()); err != nil {
			return errFromDomain(c, err)
		}
		c.Status(fiber.StatusAccepted)
		return flowResponse(c, id, flow)
	})
}

// RestartHandler starts a new purchase on a completed flow.
func RestartHandler(deps *Dependencies) fiber.Handler {
	return withFlow(deps, func(c *fiber.Ctx, id string, flow *usecases.PurchaseFlow) error {
		if err := flow.Restart(); err != nil {
			return errFromDomain(c, err)
		}
		return flowResponse(c, id, flow)
	})
}
