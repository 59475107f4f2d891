package pipeline

import (
	"context"
	"time"

	"minerva_rss/internal/logger"
)

// StartPolling запускает конвейер сразу и затем каждые interval, пока
// контекст не отменён. Ошибка запуска в периодическом режиме логируется,
// но не останавливает следующие циклы.
func StartPolling(ctx context.Context, p *Pipeline, interval time.Duration) {
	log := logger.Log.WithFields(map[string]interface{}{
		"component": "poller",
		"interval":  interval.String(),
	})

	if err := p.Run(ctx); err != nil {
		log.Errorf("Pipeline run failed: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			log.Info("Starting new pipeline cycle")
			if err := p.Run(ctx); err != nil {
				log.Errorf("Pipeline run failed: %v", err)
			}

		case <-ctx.Done():
			log.Info("Stopping poller by context")
			return
		}
	}
}
