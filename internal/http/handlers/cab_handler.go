// README: Cab directory handlers keyed by registration number.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"cabbook/internal/modules/directory"
)

type CabHandler struct {
	dir *directory.Service
	log *slog.Logger
}

func NewCabHandler(svc *directory.Service, log *slog.Logger) *CabHandler {
	return &CabHandler{dir: svc, log: log}
}

func (h *CabHandler) Add(c *gin.Context) {
	var req directory.AddCabCommand
	if err := c.ShouldBindJSON(&req); err != nil {
		writeFail(c, http.StatusBadRequest, "invalid json")
		return
	}
	cab, err := h.dir.AddCab(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, "Cab added successfully", cab)
}

func (h *CabHandler) List(c *gin.Context) {
	cabs, err := h.dir.ListCabs(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, "Cabs fetched successfully", cabs)
}

func (h *CabHandler) Get(c *gin.Context) {
	cab, err := h.dir.GetCabByRegistration(c.Request.Context(), c.Param("registrationNumber"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, "Cab fetched successfully", cab)
}

func (h *CabHandler) Update(c *gin.Context) {
	var patch directory.CabPatch
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		writeFail(c, http.StatusBadRequest, "invalid update")
		return
	}
	cab, err := h.dir.UpdateCab(c.Request.Context(), c.Param("registrationNumber"), patch)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, "Cab updated successfully", cab)
}

func (h *CabHandler) Delete(c *gin.Context) {
	cab, err := h.dir.DeleteCab(c.Request.Context(), c.Param("registrationNumber"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, "Cab deleted successfully", cab)
}
