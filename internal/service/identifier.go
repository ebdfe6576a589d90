package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	shareTokenLength = 12
	maxIDAttempts    = 5
)

// UniquenessChecker — часть репозитория, нужная генератору идентификаторов.
type UniquenessChecker interface {
	ExistsByShareToken(ctx context.Context, token string) (bool, error)
	ExistsByProposalNumber(ctx context.Context, number string) (bool, error)
}

// IdentifierGenerator выдаёт публичные токены и номера предложений.
// Кандидат проверяется на уникальность до пяти раз; после исчерпания
// попыток возвращается запасной вариант на основе UUID, который повторно
// НЕ проверяется. Остаточный риск коллизии принят осознанно: гонку на
// вставке всё равно ловит уникальный constraint базы, и сервис
// перегенерирует столкнувшееся поле.
type IdentifierGenerator struct {
	store UniquenessChecker
	now   func() time.Time
}

// NewIdentifierGenerator создаёт генератор поверх репозитория.
func NewIdentifierGenerator(store UniquenessChecker) *IdentifierGenerator {
	return &IdentifierGenerator{store: store, now: time.Now}
}

// ShareToken возвращает 12-символьный URL-safe токен публичной ссылки.
func (g *IdentifierGenerator) ShareToken(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		token, err := randomShareToken()
		if err != nil {
			return "", err
		}

		exists, err := g.store.ExistsByShareToken(ctx, token)
		if err != nil {
			return "", fmt.Errorf("identifier: проверка токена: %w", err)
		}
		if !exists {
			return token, nil
		}
	}

	return strings.ReplaceAll(uuid.NewString(), "-", "")[:shareTokenLength], nil
}

// ProposalNumber возвращает номер вида KP-<год>-<6 HEX символов>.
func (g *IdentifierGenerator) ProposalNumber(ctx context.Context) (string, error) {
	year := g.now().Year()

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		suffix, err := randomNumberSuffix()
		if err != nil {
			return "", err
		}

		candidate := fmt.Sprintf("KP-%d-%s", year, suffix)
		exists, err := g.store.ExistsByProposalNumber(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("identifier: проверка номера: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}

	return fmt.Sprintf("KP-%d-%s", year, strings.ToUpper(uuid.NewString()[:8])), nil
}

// randomShareToken: 18 случайных байт, URL-safe base64, первые 12 символов.
func randomShareToken() (string, error) {
	raw := make([]byte, 18)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("identifier: случайные байты: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw)[:shareTokenLength], nil
}

// randomNumberSuffix: 3 случайных байта в верхнем HEX-регистре.
func randomNumberSuffix() (string, error) {
	raw := make([]byte, 3)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("identifier: случайные байты: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(raw)), nil
}
