package state

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/inkchamber/dashboard-api/internal/domain"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	stateFileName = "state.json"
	lockFileName  = "state.lock"
)

// Backend é o meio de persistência do registro único do painel.
// Load retorna found=false quando ainda não existe registro.
type Backend interface {
	Load(ctx context.Context) (domain.DashboardState, bool, error)
	Save(ctx context.Context, state domain.DashboardState) error
}

// FileBackend grava o registro em um arquivo JSON.
// A escrita usa arquivo temporário + rename para que leitores nunca vejam um registro parcial.
type FileBackend struct {
	dir  string
	path string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "erro ao criar diretório de estado %s", dir)
	}

	return &FileBackend{
		dir:  dir,
		path: filepath.Join(dir, stateFileName),
	}, nil
}

// LockPath retorna o caminho do marcador de exclusividade ao lado do arquivo de estado
func (b *FileBackend) LockPath() string {
	return filepath.Join(b.dir, lockFileName)
}

func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Load(_ context.Context) (domain.DashboardState, bool, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.DashboardState{}, false, nil
		}
		return domain.DashboardState{}, false, errors.Wrap(err, "erro ao ler arquivo de estado")
	}

	var state domain.DashboardState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.DashboardState{}, false, errors.Wrap(err, "arquivo de estado corrompido")
	}

	return state, true, nil
}

func (b *FileBackend) Save(_ context.Context, state domain.DashboardState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.Wrap(err, "erro ao serializar estado")
	}

	tmp, err := os.CreateTemp(b.dir, "state-*.json.tmp")
	if err != nil {
		return errors.Wrap(err, "erro ao criar arquivo temporário de estado")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "erro ao gravar arquivo temporário de estado")
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "erro ao sincronizar arquivo temporário de estado")
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "erro ao fechar arquivo temporário de estado")
	}

	if err := os.Rename(tmpName, b.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "erro ao substituir arquivo de estado")
	}

	return nil
}

// MemoryBackend mantém o registro apenas na memória do processo.
// Cada instância tem sua própria cópia: não há consistência entre instâncias.
type MemoryBackend struct {
	mu    sync.RWMutex
	state *domain.DashboardState
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Load(_ context.Context) (domain.DashboardState, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.state == nil {
		return domain.DashboardState{}, false, nil
	}
	return *b.state, true, nil
}

func (b *MemoryBackend) Save(_ context.Context, state domain.DashboardState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = &state
	return nil
}
