// Package webhook verifica a autenticidade de webhooks recebidos
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignatureHeader é o cabeçalho usado pelo Calendly para a assinatura do corpo
const SignatureHeader = "X-Calendly-Signature"

// Sign calcula a assinatura HMAC-SHA256 em hexadecimal do corpo bruto
func Sign(rawBody []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compara a assinatura recebida com a esperada em tempo constante.
// Cabeçalho ou segredo ausentes nunca são aceitos.
func VerifySignature(rawBody []byte, signature, secret string) bool {
	signature = strings.TrimSpace(signature)
	if signature == "" || secret == "" {
		return false
	}

	expected := Sign(rawBody, secret)
	return hmac.Equal([]byte(strings.ToLower(signature)), []byte(expected))
}
