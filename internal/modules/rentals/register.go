package rentals

import (
	"net/http"

	"bikerental-server/internal/config"
	"bikerental-server/internal/modules/rentals/controller"
	"bikerental-server/internal/modules/rentals/repository"
	"bikerental-server/internal/modules/rentals/service"
)

func RegisterFeature(mux *http.ServeMux, rentalRepository repository.RentalRepository, cfg config.Config) {
	rentalService := service.NewService(rentalRepository)
	rentalController := controller.NewRentalController(rentalService, cfg.SidebarImageURL)
	rentalController.RegisterRoutes(mux)
}
