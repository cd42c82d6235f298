package middleware

import (
	"errors"
	"strings"

	"fundmatch/internal/db"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
)

func SetupMiddleware(router fiber.Router, allowOrigins string) {

	if allowOrigins == "" {
		allowOrigins = "*"
	}

	router.Use(recover.New())
	router.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		// memo. 와일드카드 origin과 credentials 동시 설정 시 fiber cors가 panic
		AllowCredentials: allowOrigins != "*",
	}))
	router.Use(logRequest)
}

// fiber.Config.ErrorHandler 용. 핸들러가 반환한 에러를 상태 코드로 변환
func ErrorHandler(c *fiber.Ctx, err error) error {

	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, db.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, db.ErrDuplicate):
		code = fiber.StatusBadRequest
	}

	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("endpoint", c.Path()).Msg("Error in handler")
	} else {
		log.Warn().Err(err).Int("status", code).Str("endpoint", c.Path()).Msg("Request rejected")
	}

	return c.Status(code).SendString(err.Error())
}

func logRequest(c *fiber.Ctx) error {
	log.Info().Str("method", c.Method()).Str("endpoint", c.Path()).Msg("Request endpoint")
	// 비밀번호가 담긴 인증 요청 body는 기록하지 않음
	if !strings.HasPrefix(c.Path(), "/auth") && len(c.Body()) > 0 {
		log.Info().Str("body", string(c.Body())).Msg("Request body")
	}
	return c.Next()
}
