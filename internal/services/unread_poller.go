package services

import (
	"context"
	"sync"
	"time"

	"github.com/novelplatform/novelshell/internal/models"
	"go.uber.org/zap"
)

const pollTimeout = 10 * time.Second

// UnreadRefresher is the interface that wraps the unread count action
type UnreadRefresher interface {
	// Method RefreshUnreadCount fetches and stores the unread message count.
	RefreshUnreadCount(ctx context.Context) models.Result
}

// LoginChecker reports whether a session token is held
type LoginChecker interface {
	IsLoggedIn() bool
}

// UnreadPoller refreshes the unread message count periodically while logged in
type UnreadPoller struct {
	refresher UnreadRefresher
	session   LoginChecker
	interval  time.Duration
	logger    *zap.Logger
	stopChan  chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
	started   bool
}

// NewUnreadPoller creates a new poller. An interval of 0 disables polling.
func NewUnreadPoller(refresher UnreadRefresher, session LoginChecker, interval time.Duration, logger *zap.Logger) *UnreadPoller {
	return &UnreadPoller{
		refresher: refresher,
		session:   session,
		interval:  interval,
		logger:    logger,
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start starts the polling loop
func (p *UnreadPoller) Start() {
	if p.interval <= 0 {
		p.logger.Debug("unread poller disabled")
		return
	}
	p.started = true
	p.logger.Info("unread poller started", zap.Duration("interval", p.interval))
	go p.run()
}

// Stop stops the polling loop and waits for a running refresh to finish
func (p *UnreadPoller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopChan)
		if p.started {
			<-p.done
			p.logger.Info("unread poller stopped")
		}
	})
}

func (p *UnreadPoller) run() {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Run immediately on start
	p.poll()

	for {
		select {
		case <-ticker.C:
			p.poll()
		case <-p.stopChan:
			return
		}
	}
}

func (p *UnreadPoller) poll() {
	if !p.session.IsLoggedIn() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	defer cancel()

	if result := p.refresher.RefreshUnreadCount(ctx); !result.Success {
		p.logger.Debug("unread count refresh failed", zap.String("error", result.Error))
	}
}
