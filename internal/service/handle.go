package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/lumenblog/auth-service/internal/repository"
	"github.com/lumenblog/auth-service/internal/utils"
	"go.uber.org/zap"
)

// handleAllocator generates collision-free public handles for accounts
// created through OAuth sign-in by probing the user store.
type handleAllocator struct {
	length      int
	maxAttempts int
	logger      *zap.Logger
}

func newHandleAllocator(length, maxAttempts int, logger *zap.Logger) *handleAllocator {
	return &handleAllocator{
		length:      length,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Allocate returns the first random candidate that no user holds, probing at
// most maxAttempts times. Exhaustion is a hard error, never downgraded.
func (a *handleAllocator) Allocate(ctx context.Context, users repository.UserRepository) (string, error) {
	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		handle, err := utils.RandomHandle(a.length)
		if err != nil {
			return "", fmt.Errorf("failed to generate handle candidate: %w", err)
		}

		_, err = users.GetByHandle(ctx, handle)
		if errors.Is(err, repository.ErrNotFound) {
			return handle, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to probe handle: %w", err)
		}

		a.logger.Warn("handle collision",
			zap.Int("attempt", attempt+1),
			zap.String("handle", handle),
		)
	}

	return "", ErrHandleGenerationExhausted
}
