// README: Booking handlers: create, list, get, patch, delete.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"cabbook/internal/http/middleware"
	"cabbook/internal/modules/booking"
)

type BookingHandler struct {
	bookings *booking.Service
	log      *slog.Logger
}

func NewBookingHandler(svc *booking.Service, log *slog.Logger) *BookingHandler {
	return &BookingHandler{bookings: svc, log: log}
}

// createBookingReq is the JSON body. The pick-up point normally arrives in the
// query string; body values win when both are present.
type createBookingReq struct {
	CabID       string     `json:"cabId"`
	DropOffLat  *flexFloat `json:"dropOffLat"`
	DropOffLong *flexFloat `json:"dropOffLong"`
	DropOffName string     `json:"dropOffName"`
	PickUpLat   *flexFloat `json:"pickUpLat"`
	PickUpLong  *flexFloat `json:"pickUpLong"`
	PickUpName  string     `json:"pickUpName"`
}

// flexFloat accepts a JSON number or a numeric string ("12.97").
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return &json.UnmarshalTypeError{Value: raw, Type: reflect.TypeOf(float64(0))}
	}
	*f = flexFloat(v)
	return nil
}

func (f *flexFloat) ptr() *float64 {
	if f == nil {
		return nil
	}
	v := float64(*f)
	return &v
}

// bindMessage names the offending field when the body has a wrongly typed value.
func bindMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return typeErr.Field + " must be a number"
	}
	return "invalid json"
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeFail(c, http.StatusBadRequest, bindMessage(err))
		return
	}

	pickLat, err := coordinate(req.PickUpLat.ptr(), c.Query("pickUpLat"), "pickUpLat")
	if err != nil {
		writeFail(c, http.StatusBadRequest, err.Error())
		return
	}
	pickLng, err := coordinate(req.PickUpLong.ptr(), c.Query("pickUpLong"), "pickUpLong")
	if err != nil {
		writeFail(c, http.StatusBadRequest, err.Error())
		return
	}
	dropLat, err := coordinate(req.DropOffLat.ptr(), "", "dropOffLat")
	if err != nil {
		writeFail(c, http.StatusBadRequest, err.Error())
		return
	}
	dropLng, err := coordinate(req.DropOffLong.ptr(), "", "dropOffLong")
	if err != nil {
		writeFail(c, http.StatusBadRequest, err.Error())
		return
	}
	pickName := req.PickUpName
	if strings.TrimSpace(pickName) == "" {
		pickName = c.Query("pickUpName")
	}

	b, err := h.bookings.Create(c.Request.Context(), booking.CreateCommand{
		UserID:  middleware.CallerUID(c).String(),
		CabID:   req.CabID,
		PickUp:  booking.Location{Name: pickName, Latitude: pickLat, Longitude: pickLng},
		DropOff: booking.Location{Name: req.DropOffName, Latitude: dropLat, Longitude: dropLng},
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, "Booking created successfully", b)
}

// coordinate prefers the body value and falls back to the query string.
func coordinate(body *float64, query, name string) (float64, error) {
	if body != nil {
		return *body, nil
	}
	if query == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(query, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}

func (h *BookingHandler) List(c *gin.Context) {
	list, err := h.bookings.ListByOwner(c.Request.Context(), middleware.CallerUID(c).String())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, "Bookings fetched successfully", list)
}

func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.bookings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, "Booking fetched successfully", b)
}

func (h *BookingHandler) Update(c *gin.Context) {
	patch, err := booking.DecodePatch(c.Request.Body)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	b, err := h.bookings.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, "Booking updated successfully", b)
}

func (h *BookingHandler) Delete(c *gin.Context) {
	b, err := h.bookings.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, "Booking deleted successfully", b)
}
