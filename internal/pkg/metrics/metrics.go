// Package metrics defines and registers all custom Prometheus metrics of the
// Sellos-G web gate. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package init
// (promauto), so importing the package is enough.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sellos"

// ── Gate metrics ──────────────────────────────────────────────────────────────

// GateDecisionsTotal counts route guard outcomes.
// Labels:
//   - access: "public_only" or "role_gated"
//   - decision: "render", "loading", "redirect_login", "redirect_unauthorized", "redirect_role_home"
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gate",
		Name:      "decisions_total",
		Help:      "Total number of route guard decisions.",
	},
	[]string{"access", "decision"},
)

// SessionRestoresTotal counts tab restores.
// Label:
//   - outcome: "restored", "empty", "malformed", "storage_error"
var SessionRestoresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gate",
		Name:      "session_restores_total",
		Help:      "Total number of session restores, by outcome.",
	},
	[]string{"outcome"},
)

// RedirectsTotal counts auth-state driven redirects.
// Label:
//   - result: "scheduled", "suppressed" (redirect already in flight), "dropped"
var RedirectsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gate",
		Name:      "redirects_total",
		Help:      "Total number of auth-state redirects, by result.",
	},
	[]string{"result"},
)

// StorageErrorsTotal counts failed reads/writes of persisted session storage.
// Label:
//   - op: "get", "set", "remove"
var StorageErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gate",
		Name:      "storage_errors_total",
		Help:      "Total number of persisted session storage failures.",
	},
	[]string{"op"},
)

// ActiveTabs tracks the number of browser tabs held by the registry.
var ActiveTabs = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "gate",
		Name:      "active_tabs",
		Help:      "Current number of in-memory browser tabs.",
	},
)

// ── Identity metrics ──────────────────────────────────────────────────────────

// LoginsTotal counts login attempts against the identity backend.
// Labels:
//   - result: "success", "invalid_credentials", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "identity",
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// MailsTotal counts notification e-mails handed to the mailer.
// Labels:
//   - kind: message kind (e.g. "password_reset", "email_verification")
//   - result: "sent" or "failed"
var MailsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "mail",
		Name:      "messages_total",
		Help:      "Total number of notification e-mails processed.",
	},
	[]string{"kind", "result"},
)

// MailQueueDepth tracks the current number of messages waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var MailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "mail",
		Name:      "queue_depth",
		Help:      "Current number of e-mails pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
