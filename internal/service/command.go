package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/psds-microservice/support-console/internal/audit"
	"github.com/psds-microservice/support-console/internal/errs"
	"github.com/psds-microservice/support-console/internal/kafka"
	"github.com/psds-microservice/support-console/internal/metrics"
	"github.com/psds-microservice/support-console/internal/model"
	"github.com/psds-microservice/support-console/internal/session"
)

// Deps are the side channels every admin command reports to. Nil fields are
// replaced with no-ops.
type Deps struct {
	Session *session.Session
	Audit   audit.Recorder
	Events  kafka.AdminEventProducer
	Logger  *slog.Logger
}

type commandLog struct {
	session *session.Session
	audit   audit.Recorder
	events  kafka.AdminEventProducer
	logger  *slog.Logger
}

func newCommandLog(d Deps, component string) commandLog {
	if d.Audit == nil {
		d.Audit = audit.NopRecorder{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return commandLog{
		session: d.Session,
		audit:   d.Audit,
		events:  d.Events,
		logger:  d.Logger.With("component", component),
	}
}

type command struct {
	Name       string
	Event      string
	TargetKind string
	TargetID   string
	Detail     string
	Payload    map[string]interface{}
}

// invalid counts a command rejected before any request was made.
func (l commandLog) invalid(name string, err error) error {
	metrics.Commands.WithLabelValues(name, metrics.OutcomeInvalid).Inc()
	l.logger.Debug("command rejected", "command", name, "error", err)
	return err
}

// done reports a finished remote command and returns err unchanged.
func (l commandLog) done(ctx context.Context, c command, err error) error {
	entry := model.AuditEntry{
		Action:     c.Name,
		TargetKind: c.TargetKind,
		TargetID:   c.TargetID,
		Detail:     c.Detail,
		Outcome:    model.AuditOutcomeOK,
	}
	if l.session != nil {
		if a, ok := l.session.Admin(); ok {
			entry.AdminID, entry.AdminName = a.ID, a.Name
		}
	}

	if err != nil {
		entry.Outcome = model.AuditOutcomeFailed
		entry.Error = err.Error()
		metrics.Commands.WithLabelValues(c.Name, metrics.OutcomeFailed).Inc()
		if errors.Is(err, errs.ErrUnauthorized) || errors.Is(err, errs.ErrNoSession) {
			l.logger.Info("command failed: session ended", "command", c.Name, "target_id", c.TargetID)
		} else {
			l.logger.Warn("command failed", "command", c.Name, "target_id", c.TargetID, "error", err)
		}
		l.audit.Record(context.WithoutCancel(ctx), entry)
		return err
	}

	metrics.Commands.WithLabelValues(c.Name, metrics.OutcomeOK).Inc()
	l.logger.Info("command ok", "command", c.Name, "target_id", c.TargetID)
	l.audit.Record(context.WithoutCancel(ctx), entry)
	l.publish(c, entry)
	return nil
}

// publish hands the event to the producer, which sends it in the background
// and drains it on Close.
func (l commandLog) publish(c command, entry model.AuditEntry) {
	if l.events == nil || c.Event == "" {
		return
	}
	payload := map[string]interface{}{
		"target_kind": c.TargetKind,
		"target_id":   c.TargetID,
	}
	if entry.AdminID != "" {
		payload["admin_id"] = entry.AdminID
	}
	for k, v := range c.Payload {
		payload[k] = v
	}
	l.events.PublishAdminEvent(c.Event, payload)
}
