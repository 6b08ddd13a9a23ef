package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login outcomes.
const (
	LoginSuccess            = "success"
	LoginInvalidCredentials = "invalid_credentials"
	LoginAccountInactive    = "account_inactive"
	LoginError              = "error"
)

// Session rejection reasons. They never reach the client.
const (
	RejectNoToken         = "no_token"
	RejectInvalidToken    = "invalid_token"
	RejectAccountMissing  = "account_missing"
	RejectAccountInactive = "account_inactive"
	RejectUnknownRole     = "unknown_role"
)

var (
	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Login attempts by outcome",
		},
		[]string{"outcome"},
	)

	sessionRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_session_rejections_total",
			Help: "Rejected session tokens by reason",
		},
		[]string{"reason"},
	)
)

// RecordLogin counts one login attempt.
func RecordLogin(outcome string) {
	loginAttempts.WithLabelValues(outcome).Inc()
}

func recordRejection(reason string) {
	sessionRejections.WithLabelValues(reason).Inc()
}
