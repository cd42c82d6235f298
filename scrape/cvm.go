package scrape

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	m "fundmatch/internal/model"
	"io"
	"net/http"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

/*
memo. CVM 펀드 등록 CSV (cad_fi.csv)
  - 인코딩 latin-1, 구분자 ';', 첫 행이 헤더
  - 파일이 커서 전체를 읽지 않고 limit 행까지만 디코딩
  - 행마다 컬럼 수가 다를 수 있어 FieldsPerRecord = -1
*/
func (s *Scraper) CvmFunds(ctx context.Context, limit int) ([]m.FeedRow, error) {
	s.lg.Info().Int("limit", limit).Msg("Starting CvmFunds")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cvmUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("error making request\n%w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request\n%w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CVM 응답 코드 비정상. status: %d", resp.StatusCode)
	}

	rows, err := readFeed(resp.Body, limit)
	if err != nil {
		return nil, err
	}

	s.lg.Info().Int("rows", len(rows)).Msg("CvmFunds completed")
	return rows, nil
}

func readFeed(r io.Reader, limit int) ([]m.FeedRow, error) {

	if limit <= 0 {
		return []m.FeedRow{}, nil
	}

	reader := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("CSV 헤더 읽기 실패. %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := make([]m.FeedRow, 0, limit)
	for len(rows) < limit {
		line, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV 파싱 실패. line %d. %w", len(rows)+2, err)
		}

		row := make(m.FeedRow, len(header))
		for i, h := range header {
			if i < len(line) {
				row[h] = line[i]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
