package fundmatch

import (
	"errors"
	"fmt"
	"fundmatch/internal/metrics"
	"math"
)

var ErrInvalidRiskFree = errors.New("risk-free rate must be finite")

const (
	metricsHistoryLimit = 1000
	metricsPageSize     = 100
)

// 이력이 2개 미만이면 저장하지 않고 0 값 결과 반환 (Sufficient=false)
func (f *FundMatch) ComputeAndStoreMetrics(fundID uint, riskFree float64) (*metrics.Result, error) {

	if math.IsNaN(riskFree) || math.IsInf(riskFree, 0) {
		return nil, fmt.Errorf("%w. 입력 값 : %v", ErrInvalidRiskFree, riskFree)
	}

	if _, err := f.stg.Fund(fundID); err != nil {
		return nil, err
	}

	hist, err := f.stg.ListHistory(fundID, metricsHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("ListHistory 시 오류 발생. %w", err)
	}

	prices := make([]float64, len(hist))
	for i, h := range hist {
		prices[i] = h.Nav
	}

	res := metrics.Compute(prices, riskFree)
	if !res.Sufficient {
		f.lg.Info().Uint("fund", fundID).Int("n", res.N).Msg("Insufficient history for metrics")
		return &res, nil
	}

	if err := f.stg.UpdateFundMetrics(fundID, res.Rentability, res.Volatility, res.Sharpe); err != nil {
		return nil, fmt.Errorf("UpdateFundMetrics 시 오류 발생. %w", err)
	}

	f.lg.Info().
		Uint("fund", fundID).
		Float64("rentability", res.Rentability).
		Float64("volatility", res.Volatility).
		Float64("sharpe", res.Sharpe).
		Msg("Metrics stored")
	return &res, nil
}

// 전체 펀드 순회. 펀드 단위 실패는 건너뛰고 갱신된 펀드 수 반환
func (f *FundMatch) RefreshAllMetrics(riskFree float64) (int, error) {

	updated := 0
	for skip := 0; ; skip += metricsPageSize {
		funds, err := f.stg.Funds(skip, metricsPageSize)
		if err != nil {
			return updated, fmt.Errorf("Funds 조회 시 오류 발생. %w", err)
		}

		for _, fund := range funds {
			res, err := f.ComputeAndStoreMetrics(fund.ID, riskFree)
			if err != nil {
				f.lg.Error().Err(err).Uint("fund", fund.ID).Msg("ComputeAndStoreMetrics failed")
				continue
			}
			if res.Sufficient {
				updated++
			}
		}

		if len(funds) < metricsPageSize {
			break
		}
	}

	return updated, nil
}
