package fundmatch

import (
	"context"
	"fmt"
	m "fundmatch/internal/model"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"gorm.io/datatypes"
)

const (
	ingestLockKey = "ingest"

	historyDays  = 30
	historyStart = 100.0
	historyStep  = 0.02
	historyFloor = 0.01
)

type ClassPolicy string

const (
	ClassPlaceholder ClassPolicy = "placeholder"
	ClassRandom      ClassPolicy = "random"
)

type IngestConfig struct {
	Limit       int
	ClassPolicy ClassPolicy
	LockTTL     time.Duration
}

func (c IngestConfig) withDefaults() IngestConfig {
	if c.Limit <= 0 {
		c.Limit = 50
	}
	if c.ClassPolicy == "" {
		c.ClassPolicy = ClassPlaceholder
	}
	if c.LockTTL <= 0 {
		c.LockTTL = 10 * time.Minute
	}
	return c
}

type IngestReport struct {
	Fetched  int
	Upserted int
	Seeded   int
	Skipped  int
	Failed   int
}

func (r IngestReport) String() string {
	return fmt.Sprintf("fetched %d, upserted %d, seeded %d, skipped %d, failed %d",
		r.Fetched, r.Upserted, r.Seeded, r.Skipped, r.Failed)
}

/*
memo. 수집 1회 흐름
 1. 프로세스 내 mutex, redis 락 순서로 획득. 둘 중 하나라도 점유 중이면 ErrJobRunning
 2. CVM 피드 조회. 실패 시 빈 배치로 간주하고 종료 (재시도 없음)
 3. 행 단위로 upsert, 이력이 없으면 합성 이력 생성. 행 단위 오류는 로그 후 건너뜀
*/
func (f *FundMatch) RunIngestion(ctx context.Context) (IngestReport, error) {

	var report IngestReport

	if !f.ingestMu.TryLock() {
		return report, ErrJobRunning
	}
	defer f.ingestMu.Unlock()

	token, ok, err := f.stg.AcquireLock(ctx, ingestLockKey, f.ingestConf.LockTTL)
	switch {
	case err != nil:
		// redis 장애 시에도 (fund_id, date) 유니크 제약으로 중복 시드는 막힘
		f.lg.Warn().Err(err).Msg("Run lock unavailable. continuing without it")
	case !ok:
		return report, ErrJobRunning
	default:
		defer func() {
			if err := f.stg.ReleaseLock(context.WithoutCancel(ctx), ingestLockKey, token); err != nil {
				f.lg.Error().Err(err).Msg("Failed to release run lock")
			}
		}()
	}

	rows, err := f.fc.CvmFunds(ctx, f.ingestConf.Limit)
	if err != nil {
		f.lg.Error().Err(err).Msg("CVM feed fetch failed. nothing to ingest")
		return report, nil
	}
	report.Fetched = len(rows)

	for _, row := range rows {
		cnpj := strings.TrimSpace(row["CNPJ_FUNDO"])
		name := strings.TrimSpace(row["DENOM_SOCIAL"])
		if cnpj == "" || name == "" {
			report.Skipped++
			continue
		}

		fund, err := f.stg.UpsertFund(cnpj, name, f.classOf(row), 0, 0, 0)
		if err != nil {
			f.lg.Error().Err(err).Str("cnpj", cnpj).Msg("UpsertFund failed")
			report.Failed++
			continue
		}
		report.Upserted++

		seeded, err := f.seedHistory(fund.ID)
		if err != nil {
			f.lg.Error().Err(err).Str("cnpj", cnpj).Msg("History seeding failed")
			report.Failed++
			continue
		}
		if seeded {
			report.Seeded++
		}
	}

	f.lg.Info().
		Int("fetched", report.Fetched).
		Int("upserted", report.Upserted).
		Int("seeded", report.Seeded).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("Ingestion completed")
	return report, nil
}

func (f *FundMatch) classOf(row m.FeedRow) string {
	if c := strings.TrimSpace(row["CLASSE"]); c != "" {
		return c
	}
	if f.ingestConf.ClassPolicy == ClassRandom {
		list := m.FallbackClassList()
		return list[f.rnd.IntN(len(list))]
	}
	return m.PlaceholderClass
}

// 이력이 하나라도 있으면 생성하지 않음
func (f *FundMatch) seedHistory(fundID uint) (bool, error) {

	n, err := f.stg.CountHistory(fundID)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	points := syntheticHistory(f.rnd, f.now(), historyDays)
	inserted, err := f.stg.AppendHistory(fundID, points)
	if err != nil {
		return false, err
	}
	return inserted > 0, nil
}

// days개의 일별 NAV. 마지막 날짜가 now(UTC 기준 일자)
func syntheticHistory(rnd *rand.Rand, now time.Time, days int) []m.FundHistory {

	y, mo, d := now.UTC().Date()
	today := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -(days - 1))

	points := make([]m.FundHistory, days)
	nav := historyStart
	for i := range days {
		if i > 0 {
			u := rnd.Float64()*2*historyStep - historyStep
			nav = math.Max(nav*(1+u), historyFloor)
		}
		points[i] = m.FundHistory{
			Date: datatypes.Date(start.AddDate(0, 0, i)),
			Nav:  nav,
		}
	}
	return points
}
