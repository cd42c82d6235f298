package handler

import (
	"fmt"

	m "fundmatch/internal/model"

	"github.com/gofiber/fiber/v2"
)

type CategoryHandler struct {
	cr ClassRetriever
}

func (h *CategoryHandler) InitRoute(app *fiber.App) {
	app.Get("/risk-profiles", h.RiskProfiles)
	app.Get("/fund-classes", h.FundClasses)
}

func NewCategoryHandler(cr ClassRetriever) *CategoryHandler {
	return &CategoryHandler{cr: cr}
}

func (h *CategoryHandler) RiskProfiles(c *fiber.Ctx) error {
	return c.JSON(m.RiskProfileList())
}

// 카탈로그가 비어 있으면 기본 분류 목록
func (h *CategoryHandler) FundClasses(c *fiber.Ctx) error {

	classes, err := h.cr.FundClasses()
	if err != nil {
		return fmt.Errorf("FundClasses 조회 시 오류 발생. %w", err)
	}
	if len(classes) == 0 {
		classes = m.FallbackClassList()
	}
	return c.JSON(classes)
}
