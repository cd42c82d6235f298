package handler

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

const maxHistoryLimit = 1000

type FundHandler struct {
	r        FundRetriever
	mc       MetricsComputer
	riskFree float64
}

func NewFundHandler(r FundRetriever, mc MetricsComputer, riskFree float64) *FundHandler {
	return &FundHandler{
		r:        r,
		mc:       mc,
		riskFree: riskFree,
	}
}

func (h *FundHandler) InitRoute(app *fiber.App) {
	router := app.Group("/funds")

	router.Get("/", h.Funds)
	router.Get("/lookup", h.Lookup)
	router.Get("/:id", h.Fund)
	router.Get("/:id/history", h.History)
	router.Get("/:id/metrics", h.Metrics)
}

func (h *FundHandler) Funds(c *fiber.Ctx) error {

	q := PageQuery{Skip: 0, Limit: 100}
	if err := parseQuery(c, &q); err != nil {
		return err
	}

	funds, err := h.r.Funds(q.Skip, q.Limit)
	if err != nil {
		return fmt.Errorf("Funds 조회 시 오류 발생. %w", err)
	}

	return c.Status(fiber.StatusOK).JSON(funds)
}

func (h *FundHandler) Lookup(c *fiber.Ctx) error {

	cnpj := c.Query("cnpj")
	if cnpj == "" {
		return badRequest("cnpj 파라미터 누락", nil)
	}

	fund, err := h.r.FundByCnpj(cnpj)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fund)
}

func (h *FundHandler) Fund(c *fiber.Ctx) error {

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	fund, err := h.r.Fund(id)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fund)
}

// 날짜 오름차순 NAV 이력
func (h *FundHandler) History(c *fiber.Ctx) error {

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	q := HistoryQuery{Limit: maxHistoryLimit}
	if err := parseQuery(c, &q); err != nil {
		return err
	}

	if _, err := h.r.Fund(id); err != nil {
		return err
	}

	hist, err := h.r.ListHistory(id, q.Limit)
	if err != nil {
		return fmt.Errorf("ListHistory 시 오류 발생. %w", err)
	}

	resp := make([]HistoryResp, len(hist))
	for i, p := range hist {
		resp[i] = HistoryResp{
			Date: time.Time(p.Date).Format(time.DateOnly),
			Nav:  p.Nav,
		}
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// 이력으로 지표를 다시 계산해 저장. risk_free 미지정 시 설정 값 사용
func (h *FundHandler) Metrics(c *fiber.Ctx) error {

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	riskFree := h.riskFree
	if v := c.Query("risk_free"); v != "" {
		riskFree, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return badRequest("risk_free 파싱 시 오류 발생", err)
		}
		if math.IsNaN(riskFree) || math.IsInf(riskFree, 0) {
			return badRequest("risk_free는 유한한 값이어야 함", nil)
		}
	}

	res, err := h.mc.ComputeAndStoreMetrics(id, riskFree)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(MetricsResp{
		FundID:      id,
		Rentability: res.Rentability,
		Risk:        res.Volatility,
		Sharpe:      res.Sharpe,
		N:           res.N,
		Sufficient:  res.Sufficient,
	})
}
