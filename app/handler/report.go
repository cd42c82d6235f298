package handler

import (
	"fmt"

	m "fundmatch/internal/model"
	"fundmatch/report"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	ur UserRetriever
	fr FavoriteRepository
	rc Recommender
	hr FundRetriever
}

func NewReportHandler(ur UserRetriever, fr FavoriteRepository, rc Recommender, hr FundRetriever) *ReportHandler {
	return &ReportHandler{
		ur: ur,
		fr: fr,
		rc: rc,
		hr: hr,
	}
}

func (h *ReportHandler) InitRoute(app *fiber.App, auth fiber.Handler) {
	router := app.Group("/report", auth)
	router.Get("/generate", h.Generate)
}

func (h *ReportHandler) Generate(c *fiber.Ctx) error {

	user, err := h.ur.User(currentUserID(c))
	if err != nil {
		return err
	}

	favs, err := h.fr.Favorites(user.ID)
	if err != nil {
		return fmt.Errorf("Favorites 조회 시 오류 발생. %w", err)
	}

	recs, err := h.rc.Recommendations(user.ID)
	if err != nil {
		return fmt.Errorf("Recommendations 조회 시 오류 발생. %w", err)
	}

	data := report.Data{
		UserName:        user.Name,
		UserEmail:       user.Email,
		Favorites:       favs,
		Recommendations: recs,
	}

	// 이력이 있는 첫 번째 즐겨찾기 펀드로 NAV 차트 생성
	for i := range favs {
		hist, err := h.hr.ListHistory(favs[i].ID, maxHistoryLimit)
		if err != nil {
			return fmt.Errorf("ListHistory 시 오류 발생. %w", err)
		}
		if len(hist) >= 2 {
			data.ChartFund = &m.Fund{ID: favs[i].ID, Name: favs[i].Name}
			data.History = hist
			break
		}
	}

	pdf, err := report.Build(data)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, report.Filename(user.Name)))
	return c.Status(fiber.StatusOK).Send(pdf)
}
