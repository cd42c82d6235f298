package handler

import (
	"fmt"

	m "fundmatch/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("risk_profile", func(fl validator.FieldLevel) bool {
		return m.IsValidRiskProfile(fl.Field().String())
	})
	return v
}

func validCheck(param any) error {
	return validate.Struct(param)
}

// 잘못된 요청은 400으로 응답
func badRequest(msg string, err error) error {
	if err == nil {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}
	return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s. %s", msg, err.Error()))
}

func parseBody(c *fiber.Ctx, param any) error {
	if err := c.BodyParser(param); err != nil {
		return badRequest("파라미터 BodyParse 시 오류 발생", err)
	}
	if err := validCheck(param); err != nil {
		return badRequest("파라미터 유효성 검사 시 오류 발생", err)
	}
	return nil
}

func parseQuery(c *fiber.Ctx, param any) error {
	if err := c.QueryParser(param); err != nil {
		return badRequest("쿼리 파라미터 파싱 시 오류 발생", err)
	}
	if err := validCheck(param); err != nil {
		return badRequest("쿼리 파라미터 유효성 검사 시 오류 발생", err)
	}
	return nil
}

func paramID(c *fiber.Ctx, key string) (uint, error) {
	id, err := c.ParamsInt(key)
	if err != nil || id <= 0 {
		return 0, badRequest(fmt.Sprintf("파라미터 %s 조회 시 오류 발생", key), err)
	}
	return uint(id), nil
}
