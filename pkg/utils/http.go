package utils

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
)

type clientIPKey struct{}

// ParseTrustedProxies aceita IPs e blocos CIDR. Entradas inválidas são ignoradas e
// a primeira delas é reportada no erro.
func ParseTrustedProxies(values []string) ([]*net.IPNet, error) {
	var (
		networks []*net.IPNet
		firstErr error
	)

	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		if !strings.Contains(value, "/") {
			ip := net.ParseIP(value)
			if ip == nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("proxy confiável inválido: %q", value)
				}
				continue
			}
			bits := 8 * net.IPv4len
			if ip.To4() == nil {
				bits = 8 * net.IPv6len
			}
			networks = append(networks, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}

		_, network, err := net.ParseCIDR(value)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("proxy confiável inválido: %q", value)
			}
			continue
		}
		networks = append(networks, network)
	}

	return networks, firstErr
}

func isTrusted(ip string, trusted []*net.IPNet) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, network := range trusted {
		if network.Contains(parsed) {
			return true
		}
	}
	return false
}

// ResolveClientIP só considera cabeçalhos de proxy quando a conexão vem de um proxy confiável.
// X-Forwarded-For é percorrido da direita para a esquerda até o primeiro IP não confiável;
// depois X-Real-IP e CF-Connecting-IP.
func ResolveClientIP(r *http.Request, trusted []*net.IPNet) string {
	peer := remoteHost(r)
	if !isTrusted(peer, trusted) {
		return peer
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		hops := strings.Split(forwarded, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if i == 0 || !isTrusted(hop, trusted) {
				return hop
			}
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	if cfIP := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); cfIP != "" {
		return cfIP
	}

	return peer
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP retorna o IP resolvido pelo middleware; sem ele, o endereço da conexão
func ClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(clientIPKey{}).(string); ok && ip != "" {
		return ip
	}
	return remoteHost(r)
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if r.RemoteAddr == "" {
			return "unknown"
		}
		return r.RemoteAddr
	}

	return host
}
