package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/dto"
)

// vendorHandler handles HTTP requests for counterparties.
type vendorHandler struct {
	vendorService portssvc.VendorSvcFacade
}

func newVendorHandler(vs portssvc.VendorSvcFacade) *vendorHandler {
	return &vendorHandler{vendorService: vs}
}

// registerVendorRoutes registers routes related to vendors.
func registerVendorRoutes(rg *gin.RouterGroup, vendorService portssvc.VendorSvcFacade) {
	h := newVendorHandler(vendorService)

	vendors := rg.Group("/vendors")
	{
		vendors.GET("", h.listVendors)
		vendors.POST("", h.createVendor)
		vendors.PUT("/:id", h.updateVendor)
	}
}

// listVendors godoc
// @Summary List vendors
// @Tags vendors
// @Produce  json
// @Success 200 {array} domain.Vendor
// @Security BearerAuth
// @Router /vendors [get]
func (h *vendorHandler) listVendors(c *gin.Context) {
	vendors, err := h.vendorService.ListVendors(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendors)
}

// createVendor godoc
// @Summary Create a vendor
// @Tags vendors
// @Accept  json
// @Produce  json
// @Param   vendor body dto.CreateVendorRequest true "Vendor details"
// @Success 201 {object} domain.Vendor
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Vendor name already exists"
// @Security BearerAuth
// @Router /vendors [post]
func (h *vendorHandler) createVendor(c *gin.Context) {
	var req dto.CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	vendor, err := h.vendorService.CreateVendor(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vendor)
}

// updateVendor godoc
// @Summary Update a vendor
// @Tags vendors
// @Accept  json
// @Produce  json
// @Param   id path int true "Vendor ID"
// @Param   vendor body dto.UpdateVendorRequest true "Fields to change"
// @Success 200 {object} domain.Vendor
// @Failure 404 {object} map[string]string "Vendor not found"
// @Security BearerAuth
// @Router /vendors/{id} [put]
func (h *vendorHandler) updateVendor(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vendor ID"})
		return
	}
	var req dto.UpdateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	vendor, uerr := h.vendorService.UpdateVendor(c.Request.Context(), id, req)
	if uerr != nil {
		respondServiceError(c, uerr)
		return
	}
	c.JSON(http.StatusOK, vendor)
}
