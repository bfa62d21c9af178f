package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/dto"
)

// departmentHandler handles HTTP requests for departments.
type departmentHandler struct {
	departmentService portssvc.DepartmentSvcFacade
}

func newDepartmentHandler(ds portssvc.DepartmentSvcFacade) *departmentHandler {
	return &departmentHandler{departmentService: ds}
}

// registerDepartmentRoutes registers routes related to departments.
func registerDepartmentRoutes(rg *gin.RouterGroup, departmentService portssvc.DepartmentSvcFacade) {
	h := newDepartmentHandler(departmentService)

	departments := rg.Group("/departments")
	{
		departments.GET("", h.listDepartments)
		departments.POST("", h.createDepartment)
		departments.PUT("/:id", h.updateDepartment)
	}
}

// listDepartments godoc
// @Summary List departments
// @Tags departments
// @Produce  json
// @Success 200 {array} domain.Department
// @Security BearerAuth
// @Router /departments [get]
func (h *departmentHandler) listDepartments(c *gin.Context) {
	departments, err := h.departmentService.ListDepartments(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, departments)
}

// createDepartment godoc
// @Summary Create a department
// @Tags departments
// @Accept  json
// @Produce  json
// @Param   department body dto.CreateDepartmentRequest true "Department details"
// @Success 201 {object} domain.Department
// @Failure 409 {object} map[string]string "Department code already exists"
// @Security BearerAuth
// @Router /departments [post]
func (h *departmentHandler) createDepartment(c *gin.Context) {
	var req dto.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	dept, err := h.departmentService.CreateDepartment(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dept)
}

// updateDepartment godoc
// @Summary Update a department
// @Tags departments
// @Accept  json
// @Produce  json
// @Param   id path int true "Department ID"
// @Param   department body dto.UpdateDepartmentRequest true "Fields to change"
// @Success 200 {object} domain.Department
// @Failure 404 {object} map[string]string "Department not found"
// @Security BearerAuth
// @Router /departments/{id} [put]
func (h *departmentHandler) updateDepartment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid department ID"})
		return
	}
	var req dto.UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	dept, uerr := h.departmentService.UpdateDepartment(c.Request.Context(), id, req)
	if uerr != nil {
		respondServiceError(c, uerr)
		return
	}
	c.JSON(http.StatusOK, dept)
}
