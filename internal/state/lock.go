package state

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
)

// Locker garante que apenas um mutador por vez execute leitura-modificação-escrita
type Locker interface {
	Acquire(ctx context.Context) error
	TryAcquire() (bool, error)
	Release() error
}

// MutexLocker é o bloqueio em memória para instâncias de processo único.
// Usa um semáforo de capacidade 1 para respeitar o cancelamento do contexto.
type MutexLocker struct {
	sem     chan struct{}
	maxWait time.Duration
}

func NewMutexLocker() *MutexLocker {
	return &MutexLocker{sem: make(chan struct{}, 1)}
}

// WithMaxWait limita a espera do Acquire. Zero aguarda até o cancelamento do contexto.
func (l *MutexLocker) WithMaxWait(maxWait time.Duration) *MutexLocker {
	l.maxWait = maxWait
	return l
}

func (l *MutexLocker) Acquire(ctx context.Context) error {
	waitCtx, cancel := withMaxWait(ctx, l.maxWait)
	defer cancel()

	select {
	case l.sem <- struct{}{}:
		return nil
	case <-waitCtx.Done():
		return waitError(ctx)
	}
}

func withMaxWait(ctx context.Context, maxWait time.Duration) (context.Context, context.CancelFunc) {
	if maxWait > 0 {
		return context.WithTimeout(ctx, maxWait)
	}
	return context.WithCancel(ctx)
}

// waitError separa o cancelamento do chamador do limite de espera configurado
func waitError(parent context.Context) error {
	if err := parent.Err(); err != nil {
		return errors.Wrap(err, "espera pelo bloqueio interrompida")
	}
	return ErrLockTimeout
}

func (l *MutexLocker) TryAcquire() (bool, error) {
	select {
	case l.sem <- struct{}{}:
		return true, nil
	default:
		return false, nil
	}
}

func (l *MutexLocker) Release() error {
	select {
	case <-l.sem:
		return nil
	default:
		return ErrNotLocked
	}
}

// FileLocker usa um arquivo marcador criado com O_EXCL como token de exclusividade.
// Serve para vários processos no mesmo host compartilhando o diretório de estado.
type FileLocker struct {
	path          string
	retryInterval time.Duration
	maxWait       time.Duration
}

// NewFileLocker cria o bloqueio baseado em arquivo. maxWait igual a zero espera indefinidamente.
func NewFileLocker(path string, retryInterval, maxWait time.Duration) *FileLocker {
	if retryInterval <= 0 {
		retryInterval = 50 * time.Millisecond
	}

	return &FileLocker{
		path:          path,
		retryInterval: retryInterval,
		maxWait:       maxWait,
	}
}

func (l *FileLocker) TryAcquire() (bool, error) {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "erro ao criar marcador de bloqueio")
	}

	if err := f.Close(); err != nil {
		return true, errors.Wrap(err, "erro ao fechar marcador de bloqueio")
	}

	return true, nil
}

func (l *FileLocker) Acquire(ctx context.Context) error {
	waitCtx, cancel := withMaxWait(ctx, l.maxWait)
	defer cancel()

	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		acquired, err := l.TryAcquire()
		if err != nil {
			return err
		}
		if acquired {
			return nil
		}

		select {
		case <-waitCtx.Done():
			return waitError(ctx)
		case <-ticker.C:
		}
	}
}

func (l *FileLocker) Release() error {
	err := os.Remove(l.path)
	if err == nil {
		return nil
	}
	if os.IsNotExist(err) {
		return ErrNotLocked
	}
	return errors.Wrap(err, "erro ao remover marcador de bloqueio")
}
