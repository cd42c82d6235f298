// Package metrics turns a NAV series into return and risk figures.
//
// Every function is total: inputs that are too short, or that would divide by
// zero, produce 0.0 (or an empty slice) instead of an error or a non-finite value.
package metrics

import "gonum.org/v1/gonum/stat"

// Result is what gets stored back on a fund. N is the number of prices the
// figures were computed from; Sufficient is false when N < 2 and every figure is zero.
type Result struct {
	Rentability float64 `json:"rentability"`
	Volatility  float64 `json:"volatility"`
	Sharpe      float64 `json:"sharpe"`
	N           int     `json:"n"`
	Sufficient  bool    `json:"sufficient"`
}

// Returns yields cur/prev - 1 for each consecutive pair. A zero prev yields 0.0.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	rtn := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev, cur := prices[i-1], prices[i]
		if prev == 0 {
			rtn = append(rtn, 0.0)
			continue
		}
		rtn = append(rtn, cur/prev-1.0)
	}
	return rtn
}

// Volatility is the population standard deviation of returns.
func Volatility(returns []float64) float64 {
	if len(returns) < 2 {
		return 0.0
	}
	return stat.PopStdDev(returns, nil)
}

func Sharpe(returns []float64, riskFree float64) float64 {
	if len(returns) == 0 {
		return 0.0
	}

	vol := Volatility(returns)
	if vol == 0 {
		return 0.0
	}
	return (stat.Mean(returns, nil) - riskFree) / vol
}

func TotalReturn(prices []float64) float64 {
	if len(prices) < 2 {
		return 0.0
	}

	first, last := prices[0], prices[len(prices)-1]
	if first == 0 {
		return 0.0
	}
	return last/first - 1.0
}

func Compute(prices []float64, riskFree float64) Result {
	rtn := Result{N: len(prices)}
	if len(prices) < 2 {
		return rtn
	}

	returns := Returns(prices)
	rtn.Rentability = TotalReturn(prices)
	rtn.Volatility = Volatility(returns)
	rtn.Sharpe = Sharpe(returns, riskFree)
	rtn.Sufficient = true
	return rtn
}
