package state

import (
	"errors"
	"fmt"
)

var (
	// ErrLockTimeout indica que o bloqueio exclusivo não foi obtido dentro do prazo.
	// A operação pode ser repetida pelo chamador.
	ErrLockTimeout = errors.New("tempo esgotado aguardando o bloqueio do estado")

	ErrNotLocked = errors.New("bloqueio do estado não está ativo")
)

// PersistenceError indica falha ao ler ou gravar o registro no meio de persistência.
// O último registro confirmado permanece intacto.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("falha de persistência do estado (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceError verifica se o erro (ou algum erro encadeado) é de persistência
func IsPersistenceError(err error) bool {
	var persistenceErr *PersistenceError
	return errors.As(err, &persistenceErr)
}
