package db

import (
	"fmt"
	m "fundmatch/internal/model"
)

// 이미 존재하면 기존 행 반환
func (s Storage) AddFavorite(userID, fundID uint) (*m.Favorite, error) {

	if _, err := s.Fund(fundID); err != nil {
		return nil, err
	}

	fav := m.Favorite{UserID: userID, FundID: fundID}
	result := s.db.Where(m.Favorite{UserID: userID, FundID: fundID}).FirstOrCreate(&fav)
	if result.Error != nil {
		return nil, translate(result.Error)
	}

	s.lg.Info().Msgf("Favorite %d of user ID %d for fund ID %d", fav.ID, userID, fundID)
	return &fav, nil
}

func (s Storage) RemoveFavorite(userID, fundID uint) error {

	result := s.db.Where("user_id = ? AND fund_id = ?", userID, fundID).Delete(&m.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("favorite (user %d, fund %d): %w", userID, fundID, ErrNotFound)
	}

	s.lg.Info().Msgf("Removed favorite of user ID %d for fund ID %d", userID, fundID)
	return nil
}

func (s Storage) Favorites(userID uint) ([]m.Fund, error) {

	var funds []m.Fund

	result := s.db.Model(&m.Fund{}).
		Joins("JOIN favorites ON favorites.fund_id = funds.id").
		Where("favorites.user_id = ?", userID).
		Order("funds.id").
		Find(&funds)
	if result.Error != nil {
		return nil, result.Error
	}

	s.lg.Info().Msgf("Retrieved %d favorites of user ID %d", len(funds), userID)
	return funds, nil
}
