// Package sync diffs freshly extracted records against the last
// observed state and pushes the changes to the remote roster api.
package sync

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"rostersync-backend/lib/sis"
	"rostersync-backend/lib/vault"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("rostersync.services.sync")

// configuration failures, surfaced before any network call is made
var (
	ErrMissingEndpoint = fmt.Errorf("no sync endpoint is configured")
	ErrMissingToken    = fmt.Errorf("no api token has been stored")
)

type SmtpConfig struct {
	Server       string
	Port         int
	EmailAddress string
	Password     string
}

type Options struct {
	// Smtp enables failure notification emails when set.
	Smtp *SmtpConfig
	// NotifyEmails receive a message when a sync run has failed batches.
	NotifyEmails []string
}

type Service struct {
	store  Store
	pusher *Pusher
	config Options
}

func NewService(database *sql.DB, options Options) Service {
	return Service{
		store:  NewStore(database),
		pusher: NewPusher(),
		config: options,
	}
}

func (s Service) Store() Store {
	return s.store
}

// SetCredential encrypts the api token under the passphrase and
// persists it next to the endpoint.
func (s Service) SetCredential(ctx context.Context, endpoint, token, passphrase string) error {
	blob, err := vault.Encrypt(token, passphrase)
	if err != nil {
		return err
	}
	err = s.store.SetEndpoint(ctx, endpoint)
	if err != nil {
		return err
	}
	return s.store.SetEncryptedToken(ctx, blob)
}

// credential resolves and decrypts the stored credential. Every error
// path here fires before the first network call: missing configuration
// and a bad passphrase must never start a partial sync.
func (s Service) credential(ctx context.Context, passphrase string) (Credential, error) {
	endpoint, err := s.store.GetEndpoint(ctx)
	if err != nil {
		return Credential{}, err
	}
	if endpoint == "" {
		return Credential{}, ErrMissingEndpoint
	}

	blob, err := s.store.GetEncryptedToken(ctx)
	if err != nil {
		return Credential{}, err
	}
	if blob == "" {
		return Credential{}, ErrMissingToken
	}

	token, err := vault.Decrypt(blob, passphrase)
	if err != nil {
		return Credential{}, err
	}
	return Credential{Endpoint: endpoint, Token: token}, nil
}

// CheckHealth resolves the credential and probes the sync api's health
// endpoint with it.
func (s Service) CheckHealth(ctx context.Context, passphrase string) error {
	ctx, span := tracer.Start(ctx, "CheckHealth")
	defer span.End()

	cred, err := s.credential(ctx, passphrase)
	if err != nil {
		span.RecordError(err)
		return err
	}
	return s.pusher.CheckHealth(ctx, cred)
}

// Sync diffs records against the stored hash index, pushes the changed
// ones and persists the replacement index plus a log entry. The
// returned error is only ever a pre-network failure (credential or
// storage); transport failures land in the outcome instead.
func (s Service) Sync(ctx context.Context, records []sis.Record, passphrase string, onProgress PushProgressFunc) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "Sync")
	defer span.End()
	span.SetAttributes(attribute.Int("records", len(records)))

	cred, err := s.credential(ctx, passphrase)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "credential resolution failed")
		return Outcome{}, err
	}

	prior, err := s.store.HashIndex(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load hash index")
		return Outcome{}, err
	}

	changed, next := Diff(records, prior)
	span.SetAttributes(attribute.Int("changed", len(changed)))

	var outcome Outcome
	if len(changed) > 0 {
		outcome = s.pusher.Push(ctx, changed, cred, onProgress)
	}

	err = s.store.ReplaceHashIndex(ctx, next)
	if err != nil {
		slog.ErrorContext(ctx, "failed to persist hash index", "err", err)
	}
	err = s.store.SetLastOutcome(ctx, outcome)
	if err != nil {
		slog.WarnContext(ctx, "failed to persist last outcome", "err", err)
	}
	err = s.store.AppendLog(ctx, fmt.Sprintf(
		"%d records, %d changed, %d sent, %d failed",
		len(records), len(changed), outcome.SuccessCount, outcome.FailedCount,
	))
	if err != nil {
		slog.WarnContext(ctx, "failed to append sync log", "err", err)
	}

	if outcome.FailedCount > 0 {
		s.notifyFailure(ctx, outcome)
	}
	return outcome, nil
}

func (s Service) notifyFailure(ctx context.Context, outcome Outcome) {
	if s.config.Smtp == nil || len(s.config.NotifyEmails) == 0 {
		return
	}
	ctx, span := tracer.Start(ctx, "notifyFailure")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Roster Sync <%s>", s.config.Smtp.EmailAddress)
	mail.To = s.config.NotifyEmails
	mail.Subject = "Roster sync reported failed batches"

	reason := "unknown"
	if len(outcome.Errors) > 0 {
		reason = outcome.Errors[0]
	}
	mail.Text = []byte(fmt.Sprintf(
		`A roster sync run finished with failures.

Sent: %d
Failed: %d
First error: %s

All batch errors:
%s`,
		outcome.SuccessCount,
		outcome.FailedCount,
		reason,
		strings.Join(outcome.Errors, "\n"),
	))

	addr := fmt.Sprintf("%s:%d", s.config.Smtp.Server, s.config.Smtp.Port)
	err := mail.Send(addr, smtp.PlainAuth(
		"", s.config.Smtp.EmailAddress, s.config.Smtp.Password, s.config.Smtp.Server,
	))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send notification email")
		slog.WarnContext(ctx, "failed to send failure notification", "err", err)
	}
}
