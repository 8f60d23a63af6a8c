package postgres

import (
	"embed"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate aplica as migrações pendentes das tabelas de auditoria e leads
func Migrate(dsn string) error {
	if dsn == "" {
		return errors.New("DSN do PostgreSQL não configurado")
	}

	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return errors.Wrap(err, "erro ao carregar migrações")
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return errors.Wrap(err, "erro ao preparar migrações")
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logrus.Info("Banco de dados já está na versão mais recente")
			return nil
		}
		return errors.Wrap(err, "erro ao aplicar migrações")
	}

	version, _, _ := m.Version()
	logrus.WithField("version", version).Info("Migrações aplicadas com sucesso")
	return nil
}
