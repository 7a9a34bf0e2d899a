package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/strappedupmami/journeyatlas/internal/services"
)

// CompanyHandler serves the organizational awareness block
type CompanyHandler struct {
	companyService *services.CompanyStatusService
}

// NewCompanyHandler creates a new company status handler
func NewCompanyHandler(companyService *services.CompanyStatusService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// GetCompanyStatus returns the current company status
// GET /api/v1/company/status
func (h *CompanyHandler) GetCompanyStatus(c *fiber.Ctx) error {
	return c.JSON(h.companyService.Current())
}
