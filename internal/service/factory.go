package service

import (
	"tradematch.app/linkup/core/config"
	"tradematch.app/linkup/internal/domain"
	"tradematch.app/linkup/internal/model"
	"tradematch.app/linkup/internal/queue"
	"tradematch.app/linkup/internal/store"
)

type Services struct {
	stores    *store.Stores
	txRunner  TxRunner
	producer  queue.Producer
	lifecycle *domain.Lifecycle
	rules     domain.Rules
	authCfg   config.AuthConfig
}

func NewServices(stores *store.Stores, txRunner TxRunner, producer queue.Producer, cfg config.Config) (*Services, error) {
	lifecycle, err := domain.NewLifecycle(model.ConnectionStage(cfg.Linkup.ClosedStage))
	if err != nil {
		return nil, err
	}
	return &Services{
		stores:    stores,
		txRunner:  txRunner,
		producer:  producer,
		lifecycle: lifecycle,
		rules:     domain.Rules{MinIntroLength: cfg.Linkup.MinIntroLength},
		authCfg:   cfg.Auth,
	}, nil
}

func (s *Services) Connections() ConnectionService {
	return NewConnectionService(
		s.txRunner,
		s.stores.Connections(),
		s.stores.References(),
		s.producer,
		s.lifecycle,
		s.rules,
	)
}

func (s *Services) Auth() AuthService {
	return NewAuthService(s.stores.Users(), s.stores.Sessions(), s.authCfg)
}
