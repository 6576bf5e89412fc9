// Package admin — service.go содержит проверку админ-токена и служебные операции
// над состояниями пользователей.
package admin

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"serotonyl.ru/wingman-challenges/internal/common"
	"serotonyl.ru/wingman-challenges/internal/features/challenges"
)

const (
	// maxFailedAttempts неудачных попыток за attemptWindow — блокировка источника
	maxFailedAttempts = 5
	attemptWindow     = time.Hour
)

// Service управляет админ-операциями.
type Service struct {
	challenges *challenges.Service
	tokenHash  string

	attemptsMu sync.Mutex
	attempts   map[string][]time.Time // неудачные попытки по источнику (in-memory)
	now        func() time.Time
}

// NewService создаёт админ-сервис. tokenHash — Argon2id-хеш админ-токена.
func NewService(challengesService *challenges.Service, tokenHash string) *Service {
	return &Service{
		challenges: challengesService,
		tokenHash:  tokenHash,
		attempts:   make(map[string][]time.Time),
		now:        time.Now,
	}
}

// VerifyToken проверяет админ-токен с использованием Argon2id.
// Включает защиту от brute-force: 5 неудачных попыток = блокировка источника на 1 час.
func (s *Service) VerifyToken(source, token string) error {
	s.attemptsMu.Lock()
	defer s.attemptsMu.Unlock()

	now := s.now()
	recent := s.recentAttempts(source, now)
	if len(recent) >= maxFailedAttempts {
		return common.ErrTooManyAttempts
	}

	if token == "" || !verifyArgon2id(token, s.tokenHash) {
		s.pruneAttempts(now)
		s.attempts[source] = append(recent, now)
		log.WithField("source", source).Warn("Неверный админ-токен")
		return common.ErrUnauthorized
	}

	delete(s.attempts, source)
	return nil
}

// pruneAttempts удаляет источники, у которых все попытки старше attemptWindow.
// Вызывается под attemptsMu.
func (s *Service) pruneAttempts(now time.Time) {
	cutoff := now.Add(-attemptWindow)
	for source, times := range s.attempts {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(s.attempts, source)
		}
	}
}

func (s *Service) recentAttempts(source string, now time.Time) []time.Time {
	cutoff := now.Add(-attemptWindow)
	var recent []time.Time
	for _, t := range s.attempts[source] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	return recent
}

// ProvisionUser создаёт пустое состояние челленджей для userID.
func (s *Service) ProvisionUser(ctx context.Context, userID string) (*challenges.UserState, error) {
	state, err := s.challenges.CreateState(ctx, userID)
	if err != nil {
		return nil, err
	}
	log.WithField("user_id", state.UserID).Info("Админ создал состояние пользователя")
	return state, nil
}

// verifyArgon2id проверяет секрет по хешу Argon2id.
// Формат хеша: $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
func verifyArgon2id(secret, encodedHash string) bool {
	// Парсим хеш
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		log.Error("Некорректный формат хеша Argon2id")
		return false
	}

	// Извлекаем параметры
	var memory uint32
	var iterations uint32
	var parallelism uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism)
	if err != nil {
		log.WithError(err).Error("Ошибка парсинга параметров Argon2id")
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования соли")
		return false
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования хеша")
		return false
	}

	computedHash := argon2.IDKey([]byte(secret), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// Сравниваем в постоянном времени
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1
}

// EncodeArgon2id считает Argon2id-хеш секрета в формате, который понимает verifyArgon2id.
func EncodeArgon2id(secret string, salt []byte, memory, iterations uint32, parallelism uint8) string {
	hash := argon2.IDKey([]byte(secret), salt, iterations, memory, parallelism, 32)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, memory, iterations, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))
}
