// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cabbook/internal/http/handlers"
	"cabbook/internal/http/middleware"
)

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(s.log), middleware.Logging(s.log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api", middleware.Auth(s.verifier))

	bookingHandler := handlers.NewBookingHandler(s.bookings, s.log)
	reportHandler := handlers.NewReportHandler(s.reports, s.log)
	api.POST("/bookings", bookingHandler.Create)
	api.GET("/bookings", bookingHandler.List)
	api.GET("/bookings/:id", bookingHandler.Get)
	api.PATCH("/bookings/:id", bookingHandler.Update)
	api.DELETE("/bookings/:id", bookingHandler.Delete)
	api.GET("/bookings/:id/:month", reportHandler.Monthly)

	cabHandler := handlers.NewCabHandler(s.directory, s.log)
	api.GET("/cabs", cabHandler.List)
	api.POST("/cabs/add", cabHandler.Add)
	api.GET("/cabs/:registrationNumber", cabHandler.Get)
	api.PATCH("/cabs/:registrationNumber", cabHandler.Update)
	api.DELETE("/cabs/:registrationNumber", cabHandler.Delete)

	return r
}
