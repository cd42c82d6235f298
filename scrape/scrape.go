package scrape

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	cvmFundsUrl    = "https://dados.cvm.gov.br/dados/FI/CAD/DADOS/cad_fi.csv"
	defaultTimeout = 30 * time.Second
)

type Scraper struct {
	cvmUrl string
	client *http.Client
	lg     zerolog.Logger
}

type Option func(*Scraper) error

// Functional Option Pattern
func NewScraper(options ...Option) (*Scraper, error) {
	s := &Scraper{
		cvmUrl: cvmFundsUrl,
		client: &http.Client{Timeout: defaultTimeout},
		lg:     zerolog.New(os.Stdout).With().Str("Module", "Scraper").Timestamp().Logger(),
	}
	for _, opt := range options {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("failed to create Scraper %w", err)
		}
	}
	return s, nil
}

func WithCvmUrl(url string) Option {
	return func(s *Scraper) error {
		if url == "" {
			return errors.New("cvm url 미존재")
		}
		s.cvmUrl = url
		return nil
	}
}

// 응답 본문 수신까지 포함한 전체 타임아웃
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) error {
		if d <= 0 {
			return fmt.Errorf("잘못된 timeout 값: %s", d)
		}
		s.client.Timeout = d
		return nil
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) error {
		if c == nil {
			return errors.New("http client 미존재")
		}
		s.client = c
		return nil
	}
}
