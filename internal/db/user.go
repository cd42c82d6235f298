package db

import (
	"fmt"
	m "fundmatch/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s Storage) CreateUser(name, email, hashedPassword string) (*m.User, error) {

	user := m.User{
		Name:     name,
		Email:    email,
		Password: hashedPassword,
	}

	result := s.db.Create(&user)
	if result.Error != nil {
		return nil, translate(result.Error)
	}

	s.lg.Info().Msgf("Created user with ID %d", user.ID)
	return &user, nil
}

func (s Storage) User(id uint) (*m.User, error) {

	var user m.User
	result := s.db.First(&user, id)
	if result.Error != nil {
		return nil, translate(result.Error)
	}

	return &user, nil
}

func (s Storage) UserByEmail(email string) (*m.User, error) {

	var user m.User
	result := s.db.Where("email = ?", email).First(&user)
	if result.Error != nil {
		return nil, translate(result.Error)
	}

	s.lg.Info().Msgf("Retrieved user with email %s", email)
	return &user, nil
}

func (s Storage) Users(skip, limit int) ([]m.User, error) {

	var users []m.User
	result := s.db.Model(&m.User{}).Order("id").Offset(skip).Limit(limit).Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	s.lg.Info().Msgf("Retrieved %d users", len(users))
	return users, nil
}

// 빈 값은 유지. 전달된 필드만 갱신
func (s Storage) UpdateUser(id uint, name, email string) (*m.User, error) {

	// memo. mysql은 값이 같으면 RowsAffected가 0이라 존재 여부는 먼저 조회
	if _, err := s.User(id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if name != "" {
		updates["name"] = name
	}
	if email != "" {
		updates["email"] = email
	}

	if len(updates) > 0 {
		result := s.db.Model(&m.User{ID: id}).Updates(updates)
		if result.Error != nil {
			return nil, translate(result.Error)
		}
	}

	s.lg.Info().Msgf("Updated user with ID %d", id)
	return s.User(id)
}

func (s Storage) UpdatePassword(id uint, hashedPassword string) error {

	result := s.db.Model(&m.User{ID: id}).Update("password", hashedPassword)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}

	s.lg.Info().Msgf("Updated password of user ID %d", id)
	return nil
}

// 프로필, 즐겨찾기는 FK cascade로 함께 삭제
func (s Storage) DeleteUser(id uint) error {

	result := s.db.Delete(&m.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}

	s.lg.Info().Msgf("Deleted user with ID %d", id)
	return nil
}

func (s Storage) Profile(userID uint) (*m.InvestorProfile, error) {

	var prof m.InvestorProfile
	result := s.db.Where("user_id = ?", userID).First(&prof)
	if result.Error != nil {
		return nil, translate(result.Error)
	}

	return &prof, nil
}

// 제출마다 전체 덮어쓰기
func (s Storage) SaveProfile(userID uint, risk m.RiskProfile, amount decimal.Decimal) (*m.InvestorProfile, error) {

	prof := m.InvestorProfile{
		UserID:          userID,
		RiskProfile:     risk,
		AmountAvailable: amount,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"risk_profile", "amount_available", "updated_at"}),
		}).Create(&prof).Error
	})
	if err != nil {
		return nil, translate(err)
	}

	s.lg.Info().Msgf("Saved investor profile of user ID %d", userID)
	return s.Profile(userID)
}
