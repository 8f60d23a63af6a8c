package main

import (
	"context"
	"time"

	"github.com/inkchamber/dashboard-api/infrastructure/repository"
	"github.com/inkchamber/dashboard-api/internal/config"
	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/inkchamber/dashboard-api/internal/state"
	"github.com/sirupsen/logrus"
)

// Grava o registro padrão do painel e um histórico de auditoria vazio em STATE_DIR.
// Arquivos existentes são sobrescritos.
func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	backend, err := state.NewFileBackend(cfg.State.Dir)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao preparar o diretório de estado")
	}

	initial := domain.DefaultState(time.Now())
	if cfg.State.DefaultValuePerBooking > 0 {
		initial.ValuePerBooking = cfg.State.DefaultValuePerBooking
	}

	if err := backend.Save(context.Background(), domain.Recompute(initial)); err != nil {
		logrus.WithError(err).Fatal("Erro ao gravar o estado inicial")
	}

	auditPath, err := repository.ResetFileAuditLog(cfg.State.Dir)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao criar o arquivo de auditoria")
	}

	logrus.WithFields(logrus.Fields{
		"state_file": backend.Path(),
		"audit_log":  auditPath,
	}).Info("Estado inicial gravado")
}
