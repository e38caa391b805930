package services

import (
	"context"
	"time"

	"github.com/yeremiapane/smartserve/utils"
)

// TokenMonitor periodically removes expired login tokens.
type TokenMonitor struct {
	Auth     *AuthService
	StopChan chan struct{}
	Interval time.Duration
}

func NewTokenMonitor(auth *AuthService) *TokenMonitor {
	return &TokenMonitor{
		Auth:     auth,
		StopChan: make(chan struct{}),
		Interval: 10 * time.Minute,
	}
}

func (tm *TokenMonitor) Start() {
	go func() {
		ticker := time.NewTicker(tm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				tm.purge()
			case <-tm.StopChan:
				return
			}
		}
	}()
}

func (tm *TokenMonitor) Stop() {
	close(tm.StopChan)
}

func (tm *TokenMonitor) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := tm.Auth.PurgeExpired(ctx)
	if err != nil {
		utils.ErrorLogger.Printf("Error purging expired tokens: %v", err)
		return
	}
	if n > 0 {
		utils.InfoLogger.Printf("Purged %d expired tokens", n)
	}
}
