package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type FavoriteHandler struct {
	fr FavoriteRepository
	rc Recommender
}

func NewFavoriteHandler(fr FavoriteRepository, rc Recommender) *FavoriteHandler {
	return &FavoriteHandler{
		fr: fr,
		rc: rc,
	}
}

func (h *FavoriteHandler) InitRoute(app *fiber.App, auth fiber.Handler) {

	router := app.Group("/favorites", auth)
	router.Get("/", h.Favorites)
	router.Post("/:fund_id", h.AddFavorite)
	router.Delete("/:fund_id", h.RemoveFavorite)

	app.Get("/recommendations", auth, h.Recommendations)
}

func (h *FavoriteHandler) Favorites(c *fiber.Ctx) error {

	funds, err := h.fr.Favorites(currentUserID(c))
	if err != nil {
		return fmt.Errorf("Favorites 조회 시 오류 발생. %w", err)
	}

	return c.Status(fiber.StatusOK).JSON(funds)
}

// 이미 즐겨찾기된 펀드면 기존 항목 반환
func (h *FavoriteHandler) AddFavorite(c *fiber.Ctx) error {

	fundID, err := paramID(c, "fund_id")
	if err != nil {
		return err
	}

	fav, err := h.fr.AddFavorite(currentUserID(c), fundID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fav)
}

func (h *FavoriteHandler) RemoveFavorite(c *fiber.Ctx) error {

	fundID, err := paramID(c, "fund_id")
	if err != nil {
		return err
	}

	if err := h.fr.RemoveFavorite(currentUserID(c), fundID); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *FavoriteHandler) Recommendations(c *fiber.Ctx) error {

	funds, err := h.rc.Recommendations(currentUserID(c))
	if err != nil {
		return fmt.Errorf("Recommendations 조회 시 오류 발생. %w", err)
	}

	return c.Status(fiber.StatusOK).JSON(funds)
}
