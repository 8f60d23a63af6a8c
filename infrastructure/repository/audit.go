package repository

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/inkchamber/dashboard-api/infrastructure/database/postgres"
	"github.com/inkchamber/dashboard-api/internal/domain"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=audit.go -destination=mocks/audit_repository_mock.go -package=mocks

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	auditLogTable    = "audit_log"
	auditLogFileName = "audit.log"

	DefaultAuditMemoryLimit = 1000
)

// AuditRepository persiste o histórico de auditoria. Recent retorna os mais novos primeiro.
type AuditRepository interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
	Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

// fileAuditRepository grava uma entrada JSON por linha (JSONL)
type fileAuditRepository struct {
	mu   sync.Mutex
	path string
}

func NewFileAuditRepository(dir string) (AuditRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "erro ao criar diretório de auditoria %s", dir)
	}

	return &fileAuditRepository{path: filepath.Join(dir, auditLogFileName)}, nil
}

// ResetFileAuditLog cria (ou esvazia) o arquivo de auditoria e retorna seu caminho
func ResetFileAuditLog(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "erro ao criar diretório de auditoria %s", dir)
	}

	path := filepath.Join(dir, auditLogFileName)
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return "", errors.Wrap(err, "erro ao criar arquivo de auditoria")
	}

	return path, nil
}

func (r *fileAuditRepository) Append(_ context.Context, entry domain.AuditEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "erro ao serializar entrada de auditoria")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "erro ao abrir arquivo de auditoria")
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return errors.Wrap(err, "erro ao gravar arquivo de auditoria")
	}

	return nil
}

func (r *fileAuditRepository) Recent(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.AuditEntry{}, nil
		}
		return nil, errors.Wrap(err, "erro ao abrir arquivo de auditoria")
	}
	defer f.Close()

	entries := make([]domain.AuditEntry, 0)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry domain.AuditEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			logrus.WithError(err).Warn("Linha inválida ignorada no arquivo de auditoria")
			continue
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "erro ao ler arquivo de auditoria")
	}

	return newestFirst(entries, limit), nil
}

func newestFirst(entries []domain.AuditEntry, limit int) []domain.AuditEntry {
	if limit <= 0 || limit > len(entries) {
		limit = len(entries)
	}

	result := make([]domain.AuditEntry, 0, limit)
	for i := len(entries) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, entries[i])
	}
	return result
}

// memoryAuditRepository mantém as entradas mais recentes em memória
type memoryAuditRepository struct {
	mu      sync.RWMutex
	entries []domain.AuditEntry
	limit   int
}

func NewMemoryAuditRepository(limit int) AuditRepository {
	if limit <= 0 {
		limit = DefaultAuditMemoryLimit
	}

	return &memoryAuditRepository{
		entries: make([]domain.AuditEntry, 0, limit),
		limit:   limit,
	}
}

func (r *memoryAuditRepository) Append(_ context.Context, entry domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	if len(r.entries) > r.limit {
		r.entries = append(r.entries[:0:0], r.entries[len(r.entries)-r.limit:]...)
	}

	return nil
}

func (r *memoryAuditRepository) Recent(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return newestFirst(r.entries, limit), nil
}

type auditRepository struct {
	conn postgres.Conn
}

func NewAuditRepository(conn postgres.Conn) AuditRepository {
	return &auditRepository{
		conn: conn,
	}
}

func (r *auditRepository) Append(ctx context.Context, entry domain.AuditEntry) error {
	oldValue, err := json.Marshal(entry.OldValue)
	if err != nil {
		return errors.Wrap(err, "erro ao serializar valor anterior")
	}

	newValue, err := json.Marshal(entry.NewValue)
	if err != nil {
		return errors.Wrap(err, "erro ao serializar novo valor")
	}

	queryBuilder := squirrel.
		Insert(auditLogTable).
		Columns("id", "created_at", "actor", "action", "field", "old_value", "new_value", "details").
		Values(entry.ID, entry.Timestamp, string(entry.Actor), string(entry.Action), entry.Field, string(oldValue), string(newValue), entry.Details).
		PlaceholderFormat(squirrel.Dollar)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return err
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "erro ao inserir entrada de auditoria")
	}

	return nil
}

func (r *auditRepository) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	queryBuilder := squirrel.
		Select("id", "created_at", "actor", "action", "field", "old_value", "new_value", "details").
		From(auditLogTable).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	if limit > 0 {
		queryBuilder = queryBuilder.Limit(uint64(limit))
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao consultar auditoria")
	}
	defer rows.Close()

	entries := make([]domain.AuditEntry, 0)
	for rows.Next() {
		var (
			entry     domain.AuditEntry
			createdAt time.Time
			actor     string
			action    string
			oldValue  []byte
			newValue  []byte
		)

		if err := rows.Scan(&entry.ID, &createdAt, &actor, &action, &entry.Field, &oldValue, &newValue, &entry.Details); err != nil {
			return nil, errors.Wrap(err, "erro ao ler entrada de auditoria")
		}

		entry.Timestamp = createdAt.UTC()
		entry.Actor = domain.AuditActor(actor)
		entry.Action = domain.AuditAction(action)

		if err := json.Unmarshal(oldValue, &entry.OldValue); err != nil {
			logrus.WithError(err).Warn("Valor anterior inválido na auditoria")
		}
		if err := json.Unmarshal(newValue, &entry.NewValue); err != nil {
			logrus.WithError(err).Warn("Novo valor inválido na auditoria")
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "erro ao iterar auditoria")
	}

	return entries, nil
}
