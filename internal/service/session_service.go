package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"nectix/internal/domain"
	"nectix/internal/repository"
	"nectix/internal/storage"
)

// SessionSlot ключ слота сохранённой сессии
const SessionSlot = "nectix_session"

// SessionService вход по email/паролю, JWT access-токен со сроком жизни,
// сохранение сессии в слот и автоматический выход по истечении
type SessionService struct {
	users  repository.UserRepository
	store  *storage.Store
	secret []byte
	ttl    time.Duration
	log    *zap.Logger

	mu      sync.RWMutex
	current *domain.Session
}

func NewSessionService(users repository.UserRepository, store *storage.Store, secret string, ttl time.Duration, log *zap.Logger) *SessionService {
	s := &SessionService{
		users:  users,
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		log:    log,
	}
	s.restore()
	return s
}

// restore поднимает сессию из слота; просроченная или неподписанная нами
// сессия молча отбрасывается
func (s *SessionService) restore() {
	var sess domain.Session
	if !s.store.Get(SessionSlot, &sess) {
		return
	}
	if sess.ExpiresAt <= time.Now().Unix() || !s.tokenValid(sess.AccessToken) {
		_ = s.store.Delete(SessionSlot)
		return
	}
	s.current = &sess
	s.log.Info("session restored", zap.String("user_id", sess.UserID))
}

func (s *SessionService) tokenValid(token string) bool {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	return err == nil && parsed.Valid
}

// SignIn проверяет пароль по bcrypt-хэшу и выпускает новую сессию
func (s *SessionService) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	exp := time.Now().Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   u.ID,
		"email": u.Email,
		"exp":   exp.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	sess := &domain.Session{
		UserID:       u.ID,
		Email:        u.Email,
		AccessToken:  signed,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    exp.Unix(),
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	if err := s.store.Put(SessionSlot, sess); err != nil {
		s.log.Warn("persist session", zap.Error(err))
	}
	s.log.Info("signed in", zap.String("user_id", u.ID))

	cp := *sess
	return &cp, nil
}

// SignOut сбрасывает текущую сессию и её слот
func (s *SessionService) SignOut() {
	s.mu.Lock()
	had := s.current != nil
	s.current = nil
	s.mu.Unlock()
	_ = s.store.Delete(SessionSlot)
	if had {
		s.log.Info("signed out")
	}
}

// Current активная сессия или nil; просроченная сессия гасится на чтении
func (s *SessionService) Current() *domain.Session {
	s.mu.RLock()
	sess := s.current
	s.mu.RUnlock()
	if sess == nil {
		return nil
	}
	if sess.ExpiresAt <= time.Now().Unix() {
		s.SignOut()
		return nil
	}
	cp := *sess
	return &cp
}

// StartWatcher периодически проверяет срок жизни сессии; истечение —
// автоматический выход. Останавливается по контексту.
func (s *SessionService) StartWatcher(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.RLock()
				expired := s.current != nil && s.current.ExpiresAt <= time.Now().Unix()
				s.mu.RUnlock()
				if expired {
					s.log.Info("session expired, signing out")
					s.SignOut()
				}
			}
		}
	}()
}
