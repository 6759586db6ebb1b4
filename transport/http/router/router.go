package router

import (
	"otabridge/internal/handlers/conversion"
	"otabridge/internal/handlers/health"
	"otabridge/internal/handlers/inventory"
	"otabridge/internal/handlers/notification"
	"otabridge/internal/handlers/quote"
	"otabridge/internal/handlers/rate"
	"otabridge/internal/handlers/reservation"
	"otabridge/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Notification notification.Handler
	Quote        quote.Handler
	Conversion   conversion.Handler
	Reservation  reservation.Handler
	Inventory    inventory.Handler
	Rate         rate.Handler
	Health       health.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	Auth           middleware.Auth
}

// SetupRoutes mounts the versioned API. The OTA endpoint authenticates with
// its own POS credentials; the booking-flow and admin endpoints need an API key.
func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Notification.Router(routerGroup)
		r.DomainHandlers.Quote.Router(routerGroup)
		r.DomainHandlers.Conversion.Router(routerGroup)

		routerGroup.Group(func(protected chi.Router) {
			protected.Use(r.Auth.APIKey)

			r.DomainHandlers.Reservation.Router(protected)
			r.DomainHandlers.Inventory.Router(protected)
			r.DomainHandlers.Rate.Router(protected)
		})
	})
}

func New(domainHandlers DomainHandlers, auth middleware.Auth) Router {
	return Router{
		DomainHandlers: domainHandlers,
		Auth:           auth,
	}
}
