package utils

import (
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	idLength   = 10
)

func GenerateID() (string, error) {
	return gonanoid.Generate(characters, idLength)
}

// GeneratePrefixedID gera IDs legíveis como LEAD-8F3K2M9QXA
func GeneratePrefixedID(prefix string) (string, error) {
	id, err := GenerateID()
	if err != nil {
		return "", err
	}
	return strings.ToUpper(prefix) + "-" + id, nil
}
