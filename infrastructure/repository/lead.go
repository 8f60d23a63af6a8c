package repository

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"github.com/Masterminds/squirrel"
	"github.com/inkchamber/dashboard-api/infrastructure/database/postgres"
	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/pkg/errors"
)

//go:generate mockgen -source=lead.go -destination=mocks/lead_repository_mock.go -package=mocks

const (
	leadsTable    = "leads"
	leadsFileName = "leads.jsonl"
)

type LeadRepository interface {
	Save(ctx context.Context, lead *domain.Lead) error
}

type fileLeadRepository struct {
	mu   sync.Mutex
	path string
}

func NewFileLeadRepository(dir string) (LeadRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "erro ao criar diretório de leads %s", dir)
	}

	return &fileLeadRepository{path: filepath.Join(dir, leadsFileName)}, nil
}

func (r *fileLeadRepository) Save(_ context.Context, lead *domain.Lead) error {
	line, err := json.Marshal(lead)
	if err != nil {
		return errors.Wrap(err, "erro ao serializar lead")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "erro ao abrir arquivo de leads")
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return errors.Wrap(err, "erro ao gravar lead")
	}

	return nil
}

type leadRepository struct {
	conn postgres.Conn
}

func NewLeadRepository(conn postgres.Conn) LeadRepository {
	return &leadRepository{
		conn: conn,
	}
}

func (r *leadRepository) Save(ctx context.Context, lead *domain.Lead) error {
	inputs, err := json.Marshal(lead.Inputs)
	if err != nil {
		return errors.Wrap(err, "erro ao serializar respostas do lead")
	}

	estimate, err := json.Marshal(lead.Estimate)
	if err != nil {
		return errors.Wrap(err, "erro ao serializar orçamento do lead")
	}

	queryBuilder := squirrel.
		Insert(leadsTable).
		Columns("id", "name", "email", "phone", "inputs", "estimate", "ip", "user_agent", "created_at").
		Values(lead.ID, lead.Inputs.Name, lead.Inputs.Email, lead.Inputs.Phone, string(inputs), string(estimate), lead.IP, lead.UserAgent, lead.Timestamp).
		PlaceholderFormat(squirrel.Dollar)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return err
	}

	return r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrap(err, "erro ao inserir lead")
		}
		return nil
	})
}
