package fundmatch

import (
	"fmt"
	m "fundmatch/internal/model"
)

const recommendLimit = 5

/*
memo. 추천 규칙
  - 즐겨찾기 펀드를 클래스별로 집계해 가장 많은 클래스 선택. 동률이면 클래스명 사전순 최소
  - 선택된 클래스에서 즐겨찾기 제외 후 최대 5개 (ID 오름차순)
  - 즐겨찾기가 없거나 결과가 비면 전체 카탈로그에서 최대 5개
*/
func (f *FundMatch) Recommendations(userID uint) ([]m.Fund, error) {

	favs, err := f.stg.Favorites(userID)
	if err != nil {
		return nil, fmt.Errorf("Favorites 조회 시 오류 발생. %w", err)
	}

	if len(favs) > 0 {
		excludes := make([]uint, len(favs))
		for i, fav := range favs {
			excludes[i] = fav.ID
		}

		top := selectTopClass(favs)
		funds, err := f.stg.FundsByClass(top, excludes, recommendLimit)
		if err != nil {
			return nil, fmt.Errorf("FundsByClass 조회 시 오류 발생. %w", err)
		}
		if len(funds) > 0 {
			f.lg.Info().Uint("user", userID).Str("class", top).Int("count", len(funds)).Msg("Recommended by top class")
			return funds, nil
		}
	}

	funds, err := f.stg.Funds(0, recommendLimit)
	if err != nil {
		return nil, fmt.Errorf("Funds 조회 시 오류 발생. %w", err)
	}

	f.lg.Info().Uint("user", userID).Int("count", len(funds)).Msg("Recommended from catalog")
	return funds, nil
}

func selectTopClass(funds []m.Fund) string {

	counts := make(map[string]int)
	for _, f := range funds {
		counts[f.ClassName]++
	}

	top, best := "", 0
	for class, n := range counts {
		if n > best || (n == best && class < top) {
			top, best = class, n
		}
	}
	return top
}
