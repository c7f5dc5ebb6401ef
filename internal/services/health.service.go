package services

import (
	"context"

	"github.com/deliverytrujillo/dispatch/pkg/pg"
)

// HealthService answers liveness checks. It pings the write connection;
// a service that cannot write is not healthy.
type HealthService struct {
	db *pg.DB
}

func NewHealthService(db *pg.DB) *HealthService {
	return &HealthService{db: db}
}

func (s *HealthService) Get() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.Write(context.Background()).DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
