package fundmatch

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var ErrJobRunning = errors.New("job already running")

type FundMatch struct {
	stg            Storage
	fc             Fetcher
	ch             chan<- string
	rnd            *rand.Rand
	now            func() time.Time
	ingestConf     IngestConfig
	riskFree       float64
	ingestMu       *sync.Mutex
	enrolledEvents []*EnrolledEvent
	lg             zerolog.Logger
}

type FundMatchConfig struct {
	Storage Storage
	Fetcher Fetcher
	Channel chan<- string // nil이면 알림 생략
	Rand    *rand.Rand
	Clock   func() time.Time
	Ingest  IngestConfig
	// 일괄 지표 갱신 시 적용하는 무위험 수익률
	RiskFree float64
}

func NewFundMatch(conf FundMatchConfig) *FundMatch {

	fm := &FundMatch{
		stg:        conf.Storage,
		fc:         conf.Fetcher,
		ch:         conf.Channel,
		rnd:        conf.Rand,
		now:        conf.Clock,
		ingestConf: conf.Ingest.withDefaults(),
		riskFree:   conf.RiskFree,
		ingestMu:   &sync.Mutex{},
		lg:         zerolog.New(os.Stdout).With().Str("Module", "FundMatch").Timestamp().Logger(),
	}
	if fm.rnd == nil {
		seed := uint64(time.Now().UnixNano())
		fm.rnd = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if fm.now == nil {
		fm.now = time.Now
	}

	fm.registerEvents()
	return fm
}

func (f *FundMatch) Events() []*EnrolledEvent {
	return f.enrolledEvents
}

func (f *FundMatch) SetEventStatus(id uint, active bool) error {
	f.lg.Info().Uint("id", id).Bool("active", active).Msg("Changing event status")

	done := false
	for _, ev := range f.enrolledEvents {
		if ev.Id == id {
			if err := f.stg.UpdateEventIsActive(ev.Id, active); err != nil {
				return fmt.Errorf("UpdateEventIsActive 시 오류 발생. %w", err)
			}
			ev.IsActive = active
			done = true
			break
		}
	}
	if !done {
		return fmt.Errorf("미존재 Id : %d", id)
	}

	f.lg.Info().Uint("id", id).Bool("active", active).Msg("Event status changed successfully")
	return nil
}

func (f *FundMatch) LaunchEvent(id uint) error {
	f.lg.Info().Uint("id", id).Msg("Launching event")

	for _, ev := range f.enrolledEvents {
		if ev.Id == id {
			if !ev.IsActive {
				return fmt.Errorf("비활성화 이벤트 Id: %d", id)
			}
			go ev.Event(Manual)
			f.lg.Info().Uint("id", id).Msg("Event launched successfully")
			return nil
		}
	}

	return fmt.Errorf("미존재 Id : %d", id)
}

func (f *FundMatch) notify(msg string) {
	if f.ch == nil {
		return
	}
	f.ch <- msg
}
