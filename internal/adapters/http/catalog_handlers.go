package http

import (
	"github.com/gofiber/fiber/v2"
)

// ListTicketTypesHandler returns the ticket catalog for the request locale.
func ListTicketTypesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		types, err := deps.Catalog.TicketTypes(c.UserContext(), localeOf(c))
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(fiber.Map{"data": types})
	}
}

// FareHandler quotes one ticket type.
func FareHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fare, err := deps.Catalog.Fare(c.UserContext(), c.Params("id"), localeOf(c))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fare)
	}
}

// ListStationsHandler returns the stations in line order.
func ListStationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stations, err := deps.Catalog.Stations(c.UserContext(), localeOf(c))
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := ParsePagination(c, len(stations))
		stations = Page(stations, pg)

		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: stations, Pagination: pg})
	}
}

// DestinationsHandler lists the stations reachable from an origin.
func DestinationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stations, err := deps.Catalog.Destinations(c.UserContext(), c.Params("id"), localeOf(c))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{"data": stations})
	}
}

// ListPaymentMethodsHandler returns the payment methods.
func ListPaymentMethodsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": deps.Catalog.PaymentMethods(c.UserContext())})
	}
}
