// Package report builds the per-user PDF summary of favorites and recommendations.
package report

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode"

	m "fundmatch/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"
)

const (
	title  = "Relatório FundMatch"
	footer = "Relatório gerado automaticamente pelo sistema FundMatch"

	marginMM    = 20.0
	navChartImg = "nav-chart"
)

var lg = zerolog.New(os.Stdout).With().Str("Module", "Report").Timestamp().Logger()

type Data struct {
	UserName        string
	UserEmail       string
	Favorites       []m.Fund
	Recommendations []m.Fund

	// 차트 대상 펀드와 이력. 이력이 2개 미만이면 차트 생략
	ChartFund *m.Fund
	History   []m.FundHistory
}

// Build renders the report. Page breaks are left to fpdf's auto page break.
func Build(d Data) ([]byte, error) {

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("") // cp1252

	pdf.SetTitle(title, true)
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(true, marginMM+5)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-marginMM)
		pdf.SetDrawColor(211, 211, 211)
		pdf.Line(marginMM, pdf.GetY(), 210-marginMM, pdf.GetY())
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0x77, 0x77, 0x77)
		pdf.CellFormat(0, 8, tr(footer), "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})
	pdf.AddPage()

	// 제목
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(0x2e, 0x3a, 0x59)
	pdf.CellFormat(0, 12, tr(title), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Usuário: %s  |  Email: %s", d.UserName, d.UserEmail)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	sectionHeader(pdf, tr("Fundos Favoritados"))
	if len(d.Favorites) == 0 {
		line(pdf, tr("Nenhum fundo favoritado."))
	}
	for _, f := range d.Favorites {
		item(pdf, tr(fmt.Sprintf("• %s (%s)", f.Name, f.Cnpj)), tr("Classe: "+f.ClassName))
	}

	sectionHeader(pdf, tr("Fundos Recomendados"))
	if len(d.Recommendations) == 0 {
		line(pdf, tr("Nenhuma recomendação disponível."))
	}
	for _, f := range d.Recommendations {
		rent := 0.0
		if f.Rentability != nil {
			rent = *f.Rentability * 100
		}
		item(pdf, tr(fmt.Sprintf("• %s (%s)", f.Name, f.Cnpj)), tr(fmt.Sprintf("Rentabilidade: %.2f%%", rent)))
	}

	if d.ChartFund != nil && len(d.History) >= 2 {
		navChart(pdf, tr, d.ChartFund, d.History)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("pdf 생성 실패. %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf 출력 실패. %w", err)
	}
	return buf.Bytes(), nil
}

// 파일명에 쓸 수 없는 문자는 '_'로 치환
func Filename(userName string) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, strings.TrimSpace(userName))
	if name == "" {
		name = "usuario"
	}
	return fmt.Sprintf("relatorio_%s.pdf", name)
}

func sectionHeader(pdf *fpdf.Fpdf, text string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 15)
	pdf.SetTextColor(0x4a, 0x6f, 0xa5)
	pdf.CellFormat(0, 9, text, "", 1, "L", false, 0, "")
	pdf.SetDrawColor(0x4a, 0x6f, 0xa5)
	pdf.SetLineWidth(0.3)
	pdf.Line(marginMM, pdf.GetY(), 210-marginMM, pdf.GetY())
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(3)
}

func line(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, text, "", 1, "L", false, 0, "")
}

func item(pdf *fpdf.Fpdf, head, detail string) {
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetX(marginMM + 3)
	pdf.CellFormat(0, 6, head, "", 1, "L", false, 0, "")
	pdf.SetX(marginMM + 8)
	pdf.SetTextColor(0x66, 0x66, 0x66)
	pdf.CellFormat(0, 6, detail, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(1)
}

// 차트 렌더링 실패는 보고서 실패로 보지 않음
func navChart(pdf *fpdf.Fpdf, tr func(string) string, fund *m.Fund, hist []m.FundHistory) {

	png, err := RenderNavChart(fund.Name, hist)
	if err != nil {
		lg.Warn().Err(err).Uint("fund", fund.ID).Msg("NAV chart skipped")
		return
	}

	sectionHeader(pdf, tr("Histórico de NAV"))

	opt := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(navChartImg, opt, bytes.NewReader(png))

	w := 210 - 2*marginMM
	h := w * 360 / 900
	if pdf.GetY()+h > 297-marginMM-5 {
		pdf.AddPage()
	}
	pdf.ImageOptions(navChartImg, marginMM, pdf.GetY(), w, h, true, opt, 0, "")
}
