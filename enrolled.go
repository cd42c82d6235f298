package fundmatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron"
)

const (
	IngestSpec  = "0 0 */6 * * *"
	MetricsSpec = "0 30 6 * * *"
)

func (f *FundMatch) Run() {
	f.lg.Info().Msg("Starting FundMatch Run")
	c := cron.New()

	n := f.scheduleEvents(c)

	c.Start()
	f.lg.Info().Int("scheduled", n).Msg("FundMatch Run completed")
}

// 스케줄 등록에 실패한 이벤트는 로그만 남기고 건너뜀. 등록된 이벤트 수 반환
func (f *FundMatch) scheduleEvents(c *cron.Cron) int {

	scheduled := 0
	for _, enrolled := range f.enrolledEvents {
		if enrolled.schedule == "" {
			continue
		}
		err := c.AddFunc(enrolled.schedule, func() {
			if enrolled.IsActive {
				enrolled.Event(Auto)
			}
		})
		if err != nil {
			f.lg.Error().Err(err).Uint("id", enrolled.Id).Str("schedule", enrolled.schedule).Msg("Failed to schedule event")
			continue
		}
		scheduled++
	}
	return scheduled
}

type EnrolledEvent struct {
	Id          uint
	Title       string
	Description string
	IsActive    bool
	schedule    string
	Event       func(WayOfLaunch)
}

type WayOfLaunch bool

const (
	Manual WayOfLaunch = true
	Auto   WayOfLaunch = false
)

func (f *FundMatch) registerEvents() {
	f.enrolledEvents = []*EnrolledEvent{
		{
			Id:          1,
			Title:       "CVM 펀드 수집",
			Description: "CVM 펀드 등록 CSV 수집 후 펀드 upsert.\n이력이 없는 펀드는 30일 합성 NAV 생성.\n6시간 주기로 실행",
			schedule:    IngestSpec,
			Event:       f.runIngestEvent,
		},
		{
			Id:          2,
			Title:       "펀드 지표 갱신",
			Description: "전체 펀드의 수익률, 변동성, 샤프 비율 재계산.\n매일 오전 6시 30분 실행",
			schedule:    MetricsSpec,
			Event:       f.runMetricsEvent,
		},
	}

	for _, event := range f.enrolledEvents {
		event.IsActive = f.stg.RetreiveEventIsActive(event.Id)
	}
}

/**********************************************************************************************************************
********************************************* Cron Job Events *******************************************************
**********************************************************************************************************************/

func (f *FundMatch) runIngestEvent(way WayOfLaunch) {
	f.lg.Info().Bool("manual", bool(way)).Msg("Starting IngestEvent")

	report, err := f.RunIngestion(context.Background())
	if errors.Is(err, ErrJobRunning) {
		f.lg.Info().Msg("IngestEvent skipped. another run in progress")
		if way == Manual {
			f.notify("[IngestEvent] 이미 수집 작업 진행 중")
		}
		return
	}
	if err != nil {
		f.lg.Error().Err(err).Msg("[IngestEvent] RunIngestion 시, 에러 발생")
		f.notify(fmt.Sprintf("[IngestEvent] RunIngestion 시, 에러 발생. %s", err))
		return
	}

	f.notify(fmt.Sprintf("[IngestEvent] 수집 완료. %s", report))
	f.lg.Info().Msg("IngestEvent completed")
}

func (f *FundMatch) runMetricsEvent(way WayOfLaunch) {
	f.lg.Info().Bool("manual", bool(way)).Msg("Starting MetricsEvent")

	updated, err := f.RefreshAllMetrics(f.riskFree)
	if err != nil {
		f.lg.Error().Err(err).Msg("[MetricsEvent] RefreshAllMetrics 시, 에러 발생")
		f.notify(fmt.Sprintf("[MetricsEvent] RefreshAllMetrics 시, 에러 발생. %s", err))
		return
	}

	f.notify(fmt.Sprintf("[MetricsEvent] 지표 갱신 완료. 갱신 펀드 수 : %d", updated))
	f.lg.Info().Int("updated", updated).Msg("MetricsEvent completed")
}
