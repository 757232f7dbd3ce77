package service

import (
	"context"
	"time"

	"github.com/saadjs/tally/internal/model"
)

// AddWater appends a water log. Zero glasses means one glass.
func (s *Service) AddWater(ctx context.Context, userID string, glasses int, at time.Time) (model.WaterLog, error) {
	const op = "add water"
	if err := validateUser(op, userID); err != nil {
		return model.WaterLog{}, err
	}
	if glasses == 0 {
		glasses = 1
	}
	if err := validatePositiveInt(op, "glasses", glasses); err != nil {
		return model.WaterLog{}, err
	}
	w := model.WaterLog{
		ID:       s.newID(),
		UserID:   userID,
		Glasses:  glasses,
		LoggedAt: s.timeOrNow(at),
	}
	if err := s.store.InsertWaterLog(ctx, w); err != nil {
		return model.WaterLog{}, err
	}
	return w, nil
}
