package bot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

type TeleBot struct {
	bot     *tgbotapi.BotAPI
	chatId  int64
	updates tgbotapi.UpdatesChannel
	lg      zerolog.Logger
}

type TeleBotConfig struct {
	Token  string
	ChatId int64
}

func NewTeleBot(conf *TeleBotConfig) (*TeleBot, error) {

	bot, err := tgbotapi.NewBotAPI(conf.Token) // memo. Go automatically dereferences struct pointers when accessing fields
	if err != nil {
		return nil, err
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	return &TeleBot{
		bot:     bot,
		chatId:  conf.ChatId,
		updates: updates,
		lg:      zerolog.New(os.Stdout).With().Str("Module", "TeleBot").Timestamp().Logger(),
	}, nil
}

// 스케줄 작업 알림을 채널에서 받아 전송. 채널이 닫히면 종료
func (t TeleBot) Run(ch chan string, port int) {
	t.SendMessage("FUNDMATCH LAUNCHED SUCCESSFULLY")

	go func() {
		t.communicate(ch, port)
	}()

	for msg := range ch {
		t.SendMessage(msg)
		t.lg.Info().Str("msg", msg).Msg("Notified")
	}
}

func (t TeleBot) SendMessage(msg string) {
	if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatId, msg)); err != nil {
		t.lg.Error().Err(err).Msg("SendMessage failed")
	}
}

func (t TeleBot) communicate(ch chan string, port int) {

	for update := range t.updates {
		if update.Message == nil || update.Message.Chat.ID != t.chatId {
			continue
		}
		for _, reply := range replies(update.Message.Text, fmt.Sprintf("http://localhost:%d", port)) {
			ch <- reply
		}
	}
}

const helpMsg = `
조회 API 목록
/health
/funds
/funds/lookup?cnpj={cnpj}
/funds/{id}
/funds/{id}/history
/funds/{id}/metrics
/risk-profiles
`

// 명령어별 응답. 인증이 필요 없는 조회 API만 중계
func replies(txt string, baseUrl string) []string {

	if txt == "" || txt[0] != '/' {
		return nil
	}

	switch {
	case txt == "/help":
		return []string{helpMsg}
	case strings.HasPrefix(txt, "/users"), strings.HasPrefix(txt, "/favorites"),
		strings.HasPrefix(txt, "/recommendations"), strings.HasPrefix(txt, "/report"),
		strings.HasPrefix(txt, "/events"), strings.HasPrefix(txt, "/auth"):
		return []string{"인증이 필요한 API는 봇에서 조회 불가"}
	}

	rtn, err := httpsend(baseUrl + txt)
	if err != nil {
		return []string{err.Error()}
	}
	return []string{rtn}
}

func httpsend(url string) (string, error) {

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		return "", err
	}

	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	var jsonData interface{}

	err = json.Unmarshal(body, &jsonData)
	if err != nil {
		return "", err
	}

	// memo. 단순 MarshalIndent 사용하면, &을 \u0026로 바꿔버림.
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false) // Disable HTML escaping

	// Marshal with indentation
	encoder.SetIndent("", "\t")
	err = encoder.Encode(jsonData)
	if err != nil {
		return "", err
	}

	return buffer.String(), nil
}
