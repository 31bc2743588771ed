package worker

import (
	"context"
	"log"
	"time"

	"florders/internal/service"
)

// RSSWorker периодически синхронизирует заказы с RSS-лентой. Ручной запуск
// через API остается основным путем, воркер дает автономный режим без
// внешнего планировщика.
type RSSWorker struct {
	service   service.IngestService
	interval  time.Duration
	stopChan  chan struct{}
	isRunning bool
}

func NewRSSWorker(service service.IngestService, interval time.Duration) *RSSWorker {
	return &RSSWorker{
		service:  service,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (w *RSSWorker) Start() {
	if w.isRunning {
		return
	}

	w.isRunning = true
	log.Printf("RSS Worker started with interval %v", w.interval)

	go w.run()
}

func (w *RSSWorker) Stop() {
	if !w.isRunning {
		return
	}

	close(w.stopChan)
	w.isRunning = false
	log.Println("RSS Worker stopped")
}

func (w *RSSWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Первая синхронизация сразу
	w.syncFeed()

	for {
		select {
		case <-ticker.C:
			w.syncFeed()
		case <-w.stopChan:
			return
		}
	}
}

func (w *RSSWorker) syncFeed() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	inserted, updated, err := w.service.IngestRSS(ctx, service.IngestOptions{})
	if err != nil {
		log.Printf("RSS Worker error: %v", err)
		return
	}
	log.Printf("RSS Worker: feed synced (%d inserted, %d updated)", inserted, updated)
}
