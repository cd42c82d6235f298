package app

import (
	"fmt"

	"fundmatch/app/handler"
	"fundmatch/app/middleware"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	Port     int
	Cors     string
	Auth     handler.AuthConfig
	RiskFree float64
}

type Storage interface {
	handler.UserRetriever
	handler.UserWriter
	handler.ProfileRepository
	handler.LoginGuard
	handler.FundRetriever
	handler.ClassRetriever
	handler.FavoriteRepository
}

type Service interface {
	handler.MetricsComputer
	handler.Recommender
	handler.EventRetriever
	handler.EventLauncher
	handler.EventStatusChanger
}

func New(conf Config, stg Storage, svc Service) *fiber.App {

	app := fiber.New(fiber.Config{
		AppName:      "FundMatch",
		ErrorHandler: middleware.ErrorHandler,
	})

	middleware.SetupMiddleware(app, conf.Cors)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	auth := handler.NewAuthHandler(stg, stg, stg, conf.Auth)
	auth.InitRoute(app)

	handler.NewUserHandler(stg, stg, stg).InitRoute(app, auth.AuthMiddleware)
	handler.NewFundHandler(stg, svc, conf.RiskFree).InitRoute(app)
	handler.NewFavoriteHandler(stg, svc).InitRoute(app, auth.AuthMiddleware)
	handler.NewReportHandler(stg, stg, svc, stg).InitRoute(app, auth.AuthMiddleware)
	handler.NewCategoryHandler(stg).InitRoute(app)
	handler.NewEventHandler(svc, svc, svc).InitRoute(app, auth.AuthMiddleware)

	return app
}

func Run(conf Config, stg Storage, svc Service) error {
	return New(conf, stg, svc).Listen(fmt.Sprintf(":%d", conf.Port))
}

/*
memo. 커스텀 인코더 지정 가능.
fiber.New(
	fiber.Config(JSONEncoder: customJSONEncoder)
)
*/
