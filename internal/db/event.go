package db

import (
	"errors"
	m "fundmatch/internal/model"

	"gorm.io/gorm"
)

// 처음 조회되는 이벤트는 활성 상태로 생성
func (s Storage) RetreiveEventIsActive(eventId uint) bool {
	var event m.Event
	result := s.db.Where("id", eventId).First(&event)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			s.db.Create(&m.Event{ID: eventId, IsActive: true})
			s.lg.Info().Msgf("Created new event with ID %d and set as active", eventId)
			return true
		} else {
			s.lg.Info().Msgf("Failed to retrieve event with ID %d", eventId)
			return false
		}
	}

	s.lg.Info().Msgf("Retrieved event with ID %d, active status: %t", eventId, event.IsActive)
	return event.IsActive
}

func (s Storage) UpdateEventIsActive(eventId uint, isActive bool) error {

	result := s.db.Model(&m.Event{ID: eventId}).Select("is_active").Updates(m.Event{IsActive: isActive})
	if result.Error != nil {
		return result.Error
	}

	s.lg.Info().Msgf("Updated event with ID %d to active status: %t", eventId, isActive)
	return nil
}
