// Package metrics: счётчики Prometheus. Значения меток берутся из
// небольших фиксированных наборов.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	// PairingsCompleted: собранные пары фото+видео по способу связи (batch|reply).
	PairingsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_pairings_completed_total",
			Help: "Completed photo/video pairings.",
		},
		[]string{"method"},
	)

	// Publishes: попытки публикации превью в целевой канал (ok|error).
	Publishes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_publish_total",
			Help: "Preview posts sent to target channels.",
		},
		[]string{"result"},
	)

	// Deliveries: исходы запросов на выдачу видео.
	Deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_deliveries_total",
			Help: "Delivery requests by outcome.",
		},
		[]string{"outcome"},
	)

	// TransportErrors: неудачные вызовы Telegram API по операциям.
	TransportErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_transport_errors_total",
			Help: "Failed outbound chat platform calls.",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(PairingsCompleted, Publishes, Deliveries, TransportErrors)
}

// Serve отдаёт /metrics на addr до отмены ctx.
func Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("metrics endpoint started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Str("addr", addr).Msg("metrics endpoint stopped")
	}
}
