package handler

import (
	"fmt"

	m "fundmatch/internal/model"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	ur UserRetriever
	uw UserWriter
	pr ProfileRepository
}

func NewUserHandler(ur UserRetriever, uw UserWriter, pr ProfileRepository) *UserHandler {
	return &UserHandler{
		ur: ur,
		uw: uw,
		pr: pr,
	}
}

func (h *UserHandler) InitRoute(app *fiber.App, auth fiber.Handler) {

	router := app.Group("/users", auth)

	router.Get("/", h.Users)
	router.Get("/me", h.Me)
	router.Put("/me", h.UpdateMe)
	router.Delete("/me", h.DeleteMe)
	router.Get("/me/profile", h.Profile)
	router.Post("/me/profile", h.SaveProfile)
	router.Get("/:id", h.User)
}

func (h *UserHandler) Users(c *fiber.Ctx) error {

	q := PageQuery{Skip: 0, Limit: 100}
	if err := parseQuery(c, &q); err != nil {
		return err
	}

	users, err := h.ur.Users(q.Skip, q.Limit)
	if err != nil {
		return fmt.Errorf("Users 조회 시 오류 발생. %w", err)
	}

	return c.Status(fiber.StatusOK).JSON(users)
}

func (h *UserHandler) User(c *fiber.Ctx) error {

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	user, err := h.ur.User(id)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

func (h *UserHandler) Me(c *fiber.Ctx) error {

	user, err := h.ur.User(currentUserID(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

// 빈 값이 아닌 필드만 반영
func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {

	var req UpdateUserReq
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.uw.UpdateUser(currentUserID(c), req.Name, req.Email)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

func (h *UserHandler) DeleteMe(c *fiber.Ctx) error {

	if err := h.uw.DeleteUser(currentUserID(c)); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UserHandler) Profile(c *fiber.Ctx) error {

	profile, err := h.pr.Profile(currentUserID(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(profile)
}

func (h *UserHandler) SaveProfile(c *fiber.Ctx) error {

	var req ProfileReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.AmountAvailable.IsNegative() {
		return badRequest("amount_available는 0 이상", nil)
	}

	risk := m.Moderado
	if req.RiskProfile != "" {
		risk = m.RiskProfile(req.RiskProfile)
	}

	profile, err := h.pr.SaveProfile(currentUserID(c), risk, req.AmountAvailable)
	if err != nil {
		return fmt.Errorf("SaveProfile 시 오류 발생. %w", err)
	}

	return c.Status(fiber.StatusOK).JSON(profile)
}
