// Package email envía las notificaciones de membership (join request,
// aceptación). Todas las llamadas son fire-and-forget desde el punto de
// vista del write path: un fallo se loguea y jamás afecta al request.
package email

import "context"

// Sender es la interfaz para enviar emails.
// Implementada por SMTPSender.
type Sender interface {
	// Send envía un email con contenido HTML y texto plano.
	// El destinatario recibe ambas versiones como multipart/alternative.
	Send(to string, subject string, htmlBody string, textBody string) error
}

// Notifier expone las notificaciones de negocio de la plataforma.
type Notifier interface {
	// SendJoinRequestEmail avisa al owner que un actor pidió unirse.
	SendJoinRequestEmail(ctx context.Context, ownerEmail, actorName, channelName string) error

	// SendAcceptedEmail avisa al actor que su request fue aprobado.
	SendAcceptedEmail(ctx context.Context, actorEmail, channelName string) error
}

// NoopNotifier descarta todas las notificaciones (dev sin SMTP, tests).
type NoopNotifier struct{}

func (NoopNotifier) SendJoinRequestEmail(context.Context, string, string, string) error { return nil }
func (NoopNotifier) SendAcceptedEmail(context.Context, string, string) error            { return nil }
