package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Счётчики жизненного цикла сессий. reuse_detected — сигнал для
// security-мониторинга: любое ненулевое значение требует внимания.
var (
	sessionsIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "session_service",
		Name:      "sessions_issued_total",
		Help:      "Issued sessions.",
	})

	refreshRotationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "session_service",
		Name:      "refresh_rotations_total",
		Help:      "Successful refresh token rotations.",
	})

	reuseDetectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "session_service",
		Name:      "refresh_reuse_detected_total",
		Help:      "Refresh token replays that triggered session teardown.",
	})

	sessionsRevokedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "session_service",
		Name:      "sessions_revoked_total",
		Help:      "Revoked sessions, including reuse and idle-timeout teardowns.",
	})
)
