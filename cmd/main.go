package main

import (
	"math/rand/v2"

	"fundmatch"
	app "fundmatch/app"
	"fundmatch/bot"
	"fundmatch/config"
	"fundmatch/internal/db"
	"fundmatch/scrape"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {

	conf, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	level, err := conf.LogLevel()
	if err != nil {
		panic(err)
	}
	/*
		memo.
		zerolog.SetGlobalLevel()는 이후에 생성되는 모든 zerolog.Logger의 로그 레벨을 설정함.
		단, storage.go에서는 별도의 gorm logger을 사용하기 때문에 영향을 받지 않음.
	*/
	zerolog.SetGlobalLevel(level)

	dbConf, err := conf.DbConfig()
	if err != nil {
		panic(err)
	}

	stg, err := db.NewStorage(dbConf, conf.RedisConfig())
	if err != nil {
		panic(err)
	}
	defer stg.Close()

	scraper, err := scrape.NewScraper(conf.ScraperOptions()...)
	if err != nil {
		panic(err)
	}

	ingestConf, err := conf.IngestConfig()
	if err != nil {
		panic(err)
	}

	// memo. seed가 0이면 실행마다 다른 합성 이력
	var rnd *rand.Rand
	if conf.Ingest.Seed != 0 {
		rnd = rand.New(rand.NewPCG(conf.Ingest.Seed, conf.Ingest.Seed))
	}

	var ch chan string
	var teleBot *bot.TeleBot
	if conf.Telegram.Enabled {
		botConf, err := conf.BotConfig()
		if err != nil {
			panic(err)
		}
		teleBot, err = bot.NewTeleBot(botConf)
		if err != nil {
			panic(err)
		}
		ch = make(chan string)
	}

	fm := fundmatch.NewFundMatch(fundmatch.FundMatchConfig{
		Storage:  stg,
		Fetcher:  scraper,
		Channel:  ch,
		Rand:     rnd,
		Ingest:   ingestConf,
		RiskFree: conf.Ingest.RiskFree,
	})
	fm.Run()

	appConf := app.Config{
		Port:     conf.App.Port,
		Cors:     conf.App.Cors,
		Auth:     conf.AuthConfig(),
		RiskFree: conf.Ingest.RiskFree,
	}

	if teleBot == nil {
		if err := app.Run(appConf, stg, fm); err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
		return
	}

	go func() {
		if err := app.Run(appConf, stg, fm); err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
	}()

	teleBot.Run(ch, conf.App.Port)
}
