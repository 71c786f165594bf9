package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"nectix/internal/repository"
)

// ToggleResult явный итог переключения избранного. Committed=false означает
// деградацию: состояние записано только в локальное зеркало, интерфейс
// может показать офлайн-индикатор вместо честного успеха.
type ToggleResult struct {
	Favorited bool `json:"favorited"`
	Committed bool `json:"committed"`
}

// FavoritesService множество избранных товаров на пользователя:
// оптимистичное обновление в памяти, затем удалённая запись с локальным
// fallback-ом при отсутствующей таблице
type FavoritesService struct {
	remote repository.FavoritesRepository // nil, если БД не сконфигурирована
	local  *repository.LocalFavorites
	log    *zap.Logger

	mu     sync.Mutex
	sets   map[string]map[int64]struct{}
	loaded map[string]bool
}

func NewFavoritesService(remote repository.FavoritesRepository, local *repository.LocalFavorites, log *zap.Logger) *FavoritesService {
	return &FavoritesService{
		remote: remote,
		local:  local,
		log:    log,
		sets:   make(map[string]map[int64]struct{}),
		loaded: make(map[string]bool),
	}
}

// ensureLoadedLocked подтягивает множество пользователя: из удалённого
// хранилища, при его недоступности — из локального зеркала
func (s *FavoritesService) ensureLoadedLocked(ctx context.Context, userID string) {
	if s.loaded[userID] {
		return
	}
	var ids []int64
	if s.remote != nil {
		remote, err := s.remote.List(ctx, userID)
		if err != nil {
			s.log.Warn("load favorites from remote failed, using local mirror",
				zap.String("user_id", userID), zap.Error(err))
			ids, _ = s.local.List(ctx, userID)
		} else {
			ids = remote
		}
	} else {
		ids, _ = s.local.List(ctx, userID)
	}
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	s.sets[userID] = set
	s.loaded[userID] = true
}

func (s *FavoritesService) idsLocked(userID string) []int64 {
	ids := make([]int64, 0, len(s.sets[userID]))
	for id := range s.sets[userID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Toggle переключает членство товара в избранном. Требует аутентификации.
// Коммит в удалённую таблицу → Committed=true; отсутствующая таблица →
// локальное зеркало и Committed=false; любая другая удалённая ошибка →
// откат оптимистичного состояния и ошибка вызывающему.
func (s *FavoritesService) Toggle(ctx context.Context, userID string, productID int64) (ToggleResult, error) {
	if userID == "" {
		return ToggleResult{}, ErrUnauthenticated
	}
	if productID <= 0 {
		return ToggleResult{}, ErrInvalidInput
	}

	s.mu.Lock()
	s.ensureLoadedLocked(ctx, userID)
	set := s.sets[userID]
	_, had := set[productID]
	// optimistic flip
	if had {
		delete(set, productID)
	} else {
		set[productID] = struct{}{}
	}
	snapshot := s.idsLocked(userID)
	s.mu.Unlock()

	favorited := !had

	if s.remote == nil {
		if err := s.local.Replace(userID, snapshot); err != nil {
			s.revert(userID, productID, had)
			return ToggleResult{}, fmt.Errorf("persist favorites: %w", err)
		}
		return ToggleResult{Favorited: favorited, Committed: false}, nil
	}

	var err error
	if favorited {
		err = s.remote.Add(ctx, userID, productID)
	} else {
		err = s.remote.Remove(ctx, userID, productID)
	}
	if err == nil {
		// best-effort mirror of the committed state
		if merr := s.local.Replace(userID, snapshot); merr != nil {
			s.log.Warn("mirror favorites to local slot failed", zap.Error(merr))
		}
		return ToggleResult{Favorited: favorited, Committed: true}, nil
	}

	if repository.IsUndefinedTable(err) {
		s.log.Warn("favorites table missing, degrading to local slot",
			zap.String("user_id", userID), zap.Error(err))
		if lerr := s.local.Replace(userID, snapshot); lerr != nil {
			s.revert(userID, productID, had)
			return ToggleResult{}, fmt.Errorf("persist favorites fallback: %w", lerr)
		}
		return ToggleResult{Favorited: favorited, Committed: false}, nil
	}

	s.revert(userID, productID, had)
	return ToggleResult{}, fmt.Errorf("toggle favorite: %w", err)
}

func (s *FavoritesService) revert(userID string, productID int64, had bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.sets[userID]
	if set == nil {
		return
	}
	if had {
		set[productID] = struct{}{}
	} else {
		delete(set, productID)
	}
}

// IsFavorite чистая проверка членства; для невалидных id — false, без
// паник и без обращений к хранилищу
func (s *FavoritesService) IsFavorite(userID string, productID int64) bool {
	if userID == "" || productID <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sets[userID][productID]
	return ok
}

// List отсортированные id избранного пользователя
func (s *FavoritesService) List(ctx context.Context, userID string) ([]int64, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked(ctx, userID)
	return s.idsLocked(userID), nil
}
