package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/metropass/internal/core/domain"
	"github.com/samirrijal/metropass/internal/core/usecases"
)

const gqlLocaleKey ctxKey = "gql_locale"

// gqlLocale picks the lang argument when given, else the request locale.
func gqlLocale(p graphql.ResolveParams) domain.Locale {
	if lang, ok := p.Args["lang"].(string); ok && lang != "" {
		return domain.ParseLocale(lang)
	}
	if l, ok := p.Context.Value(gqlLocaleKey).(domain.Locale); ok {
		return l
	}
	return domain.LocaleVietnamese
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	langArg := &graphql.ArgumentConfig{Type: graphql.String, Description: "vi or en"}

	ticketTypeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TicketType",
		Fields: graphql.Fields{
			"id":                &graphql.Field{Type: graphql.String},
			"name":              &graphql.Field{Type: graphql.String},
			"description":       &graphql.Field{Type: graphql.String},
			"price":             &graphql.Field{Type: graphql.Int},
			"price_text":        &graphql.Field{Type: graphql.String},
			"requires_stations": &graphql.Field{Type: graphql.Boolean},
		},
	})

	stationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Station",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.String},
			"name": &graphql.Field{Type: graphql.String},
		},
	})

	paymentMethodType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PaymentMethod",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.String},
			"name": &graphql.Field{Type: graphql.String},
			"kind": &graphql.Field{Type: graphql.String},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Route",
		Fields: graphql.Fields{
			"origin":      &graphql.Field{Type: stationType},
			"destination": &graphql.Field{Type: stationType},
		},
	})

	purchaseType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Purchase",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.String},
			"locale": &graphql.Field{Type: graphql.String},
			"status": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(usecases.FlowView).Status.String(), nil
				},
			},
			"current_step": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(usecases.FlowView).CurrentStep.String(), nil
				},
			},
			"progress":         &graphql.Field{Type: graphql.Int},
			"can_advance":      &graphql.Field{Type: graphql.Boolean},
			"can_go_back":      &graphql.Field{Type: graphql.Boolean},
			"can_restart":      &graphql.Field{Type: graphql.Boolean},
			"ticket_type":      &graphql.Field{Type: ticketTypeType},
			"route":            &graphql.Field{Type: routeType},
			"coverage":         &graphql.Field{Type: graphql.String},
			"discount_applied": &graphql.Field{Type: graphql.Boolean},
			"payment_method":   &graphql.Field{Type: paymentMethodType},
			"total":            &graphql.Field{Type: graphql.Int},
			"total_text":       &graphql.Field{Type: graphql.String},
			"transaction_id":   &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"ticketTypes": &graphql.Field{
				Type:        graphql.NewList(ticketTypeType),
				Description: "List the ticket catalog",
				Args:        graphql.FieldConfigArgument{"lang": langArg},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Catalog.TicketTypes(p.Context, gqlLocale(p))
				},
			},
			"fare": &graphql.Field{
				Type:        ticketTypeType,
				Description: "Quote one ticket type",
				Args: graphql.FieldConfigArgument{
					"id":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"lang": langArg,
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Catalog.Fare(p.Context, p.Args["id"].(string), gqlLocale(p))
				},
			},
			"stations": &graphql.Field{
				Type:        graphql.NewList(stationType),
				Description: "List stations in line order",
				Args:        graphql.FieldConfigArgument{"lang": langArg},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Catalog.Stations(p.Context, gqlLocale(p))
				},
			},
			"destinations": &graphql.Field{
				Type:        graphql.NewList(stationType),
				Description: "Stations a trip from origin can end at",
				Args: graphql.FieldConfigArgument{
					"origin": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"lang":   langArg,
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Catalog.Destinations(p.Context, p.Args["origin"].(string), gqlLocale(p))
				},
			},
			"paymentMethods": &graphql.Field{
				Type:        graphql.NewList(paymentMethodType),
				Description: "List payment methods",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Catalog.PaymentMethods(p.Context), nil
				},
			},
			"purchase": &graphql.Field{
				Type:        purchaseType,
				Description: "Get an open purchase flow",
				Args: graphql.FieldConfigArgument{
					"id":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"lang": langArg,
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					flow, err := deps.Flows.Get(id)
					if err != nil {
						return nil, err
					}
					return usecases.DescribeFlow(id, flow.Session(), gqlLocale(p)), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        context.WithValue(c.UserContext(), gqlLocaleKey, localeOf(c)),
		})

		return c.JSON(result)
	}
}
