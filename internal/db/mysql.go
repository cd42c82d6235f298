package db

import (
	"errors"
	"fmt"
	m "fundmatch/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s Storage) initTables() error {

	err := s.db.AutoMigrate(&m.User{}, &m.InvestorProfile{},
		&m.Fund{}, &m.FundHistory{}, &m.Favorite{},
		&m.Event{})
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// gorm 에러를 패키지 에러로 변환
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	}
	return err
}

/*
memo. 조회 후 생성/수정 대신 ON CONFLICT(cnpj) 한 문장으로 처리.
동시에 같은 CNPJ가 들어와도 유니크 제약 위반 없이 마지막 값으로 수렴.
created_at은 갱신 대상에서 제외
*/
func (s Storage) UpsertFund(cnpj, name, className string, rentability, risk, sharpe float64) (*m.Fund, error) {

	fund := m.Fund{
		Cnpj:        cnpj,
		Name:        name,
		ClassName:   className,
		Rentability: &rentability,
		Risk:        &risk,
		Sharpe:      &sharpe,
	}

	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cnpj"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "class_name", "rentability", "risk", "sharpe", "updated_at"}),
	}).Create(&fund)
	if result.Error != nil {
		return nil, translate(result.Error)
	}

	// memo. conflict로 update된 경우 fund.ID가 채워지지 않는 드라이버가 있어 재조회
	resident, err := s.FundByCnpj(cnpj)
	if err != nil {
		return nil, err
	}

	s.lg.Info().Msgf("Upserted fund %s (ID %d)", cnpj, resident.ID)
	return resident, nil
}

func (s Storage) Fund(id uint) (*m.Fund, error) {

	var fund m.Fund

	result := s.db.First(&fund, id) // memo. First, Last와 같은 메소드는 대상이 없을 때 error 반환
	if result.Error != nil {
		return nil, translate(result.Error)
	}

	return &fund, nil
}

func (s Storage) FundByCnpj(cnpj string) (*m.Fund, error) {

	var fund m.Fund

	result := s.db.Where("cnpj = ?", cnpj).First(&fund)
	if result.Error != nil {
		return nil, translate(result.Error)
	}

	return &fund, nil
}

func (s Storage) Funds(skip, limit int) ([]m.Fund, error) {

	var funds []m.Fund

	result := s.db.Model(&m.Fund{}).Order("id").Offset(skip).Limit(limit).Find(&funds)
	if result.Error != nil {
		return nil, result.Error
	}

	s.lg.Info().Msgf("Retrieved %d funds (skip %d, limit %d)", len(funds), skip, limit)
	return funds, nil
}

func (s Storage) FundsByClass(className string, excludeIDs []uint, limit int) ([]m.Fund, error) {

	var funds []m.Fund

	query := s.db.Model(&m.Fund{}).Where("class_name = ?", className)
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}

	result := query.Order("id").Limit(limit).Find(&funds)
	if result.Error != nil {
		return nil, result.Error
	}

	s.lg.Info().Msgf("Retrieved %d funds of class %s", len(funds), className)
	return funds, nil
}

// 카탈로그에 존재하는 클래스명. 사전순
func (s Storage) FundClasses() ([]string, error) {

	var classes []string

	result := s.db.Model(&m.Fund{}).Distinct("class_name").Order("class_name").Pluck("class_name", &classes)
	if result.Error != nil {
		return nil, result.Error
	}
	return classes, nil
}

func (s Storage) DeleteFund(id uint) error {

	result := s.db.Delete(&m.Fund{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("fund %d: %w", id, ErrNotFound)
	}

	s.lg.Info().Msgf("Deleted fund with ID %d", id)
	return nil
}

// Updates with struct skips zero fields, so the metric columns are selected explicitly.
func (s Storage) UpdateFundMetrics(fundID uint, rentability, risk, sharpe float64) error {

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var fund m.Fund
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&fund, fundID).Error; err != nil {
			return translate(err)
		}

		fund.Rentability = &rentability
		fund.Risk = &risk
		fund.Sharpe = &sharpe

		return tx.Model(&fund).Select("Rentability", "Risk", "Sharpe", "UpdatedAt").Updates(&fund).Error
	})
	if err != nil {
		return err
	}

	s.lg.Info().Msgf("Updated metrics for fund ID %d", fundID)
	return nil
}

// (fund_id, date) 충돌 시 무시. 실제로 삽입된 행 수 반환
func (s Storage) AppendHistory(fundID uint, points []m.FundHistory) (int64, error) {

	if len(points) == 0 {
		return 0, nil
	}

	rows := make([]m.FundHistory, len(points))
	for i, p := range points {
		rows[i] = m.FundHistory{FundID: fundID, Date: p.Date, Nav: p.Nav}
	}

	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&rows, 100)
	if result.Error != nil {
		return 0, translate(result.Error)
	}

	s.lg.Info().Msgf("Appended %d/%d history points for fund ID %d", result.RowsAffected, len(points), fundID)
	return result.RowsAffected, nil
}

func (s Storage) CountHistory(fundID uint) (int64, error) {

	var n int64

	result := s.db.Model(&m.FundHistory{}).Where("fund_id = ?", fundID).Count(&n)
	if result.Error != nil {
		return 0, result.Error
	}

	return n, nil
}

// 오래된 순
func (s Storage) ListHistory(fundID uint, limit int) ([]m.FundHistory, error) {

	var hist []m.FundHistory

	result := s.db.Model(&m.FundHistory{}).
		Where("fund_id = ?", fundID).
		Order("date").
		Limit(limit).
		Find(&hist)
	if result.Error != nil {
		return nil, result.Error
	}

	s.lg.Info().Msgf("Retrieved %d history points for fund ID %d", len(hist), fundID)
	return hist, nil
}
