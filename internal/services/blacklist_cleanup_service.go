package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgconn"

	"github.com/nickbelling/FlexFlow/internal/repositories"
	"github.com/nickbelling/FlexFlow/internal/utils"
)

const (
	cleanupRetryDelay = 3 * time.Second

	// Attempt rows untouched for a day carry no lockout state worth keeping.
	staleAttemptAge = 24 * time.Hour
)

// BlacklistCleanupService purges expired blacklist rows and stale
// login-attempt rows each night. Expired rows are already invisible to
// lookups; this just keeps the tables from growing without bound.
type BlacklistCleanupService interface {
	CleanupDaily(ctx context.Context) error
}

type blacklistCleanupService struct {
	blacklistRepo repositories.BlacklistRepository
	loginRepo     repositories.LoginAttemptsRepository
}

func NewBlacklistCleanupService(
	blacklistRepo repositories.BlacklistRepository,
	loginRepo repositories.LoginAttemptsRepository,
) BlacklistCleanupService {
	return &blacklistCleanupService{
		blacklistRepo: blacklistRepo,
		loginRepo:     loginRepo,
	}
}

// runWithRetry executes op(ctx) and, if it returns a transient network
// error (EOF, pgconn safe-to-retry, or the common closed-connection
// message), waits a moment then retries once.
func (s *blacklistCleanupService) runWithRetry(
	ctx context.Context,
	op func(context.Context) error,
) error {
	if err := op(ctx); err != nil {
		if errors.Is(err, io.EOF) || pgconn.SafeToRetry(err) ||
			strings.Contains(err.Error(), "connection was closed") {
			utils.Logger.WithError(err).Warn("cleanup hit transient DB error; retrying once")
			time.Sleep(cleanupRetryDelay)
			return op(ctx)
		}
		return err
	}
	return nil
}

func (s *blacklistCleanupService) CleanupDaily(ctx context.Context) error {
	logger := utils.Logger

	if err := s.runWithRetry(ctx, s.blacklistRepo.CleanupExpired); err != nil {
		logger.WithError(err).Error("Failed to cleanup expired blacklisted_tokens")
		return err
	}

	if err := s.runWithRetry(ctx, func(ctx context.Context) error {
		return s.loginRepo.CleanupStale(ctx, staleAttemptAge)
	}); err != nil {
		logger.WithError(err).Error("Failed to cleanup stale login_attempts")
		return err
	}

	logger.Info("Daily blacklist cleanup completed successfully.")
	return nil
}
