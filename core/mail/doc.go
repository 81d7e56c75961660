// Package mail composes email messages and sends them through a pluggable
// transport.
//
// Applications usually register it as a component and let handlers receive
// *mail.Mail by type:
//
//	a, err := app.New(
//		app.WithComponents(
//			settings.Component(settings.New(map[string]any{
//				"MAIL_SERVER":         "smtp.example.com",
//				"MAIL_PORT":           587,
//				"MAIL_USE_TLS":        true,
//				"MAIL_DEFAULT_SENDER": "Molten <hello@example.com>",
//			})),
//			mail.Component(smtp.NewTransport),
//		),
//		app.WithRoutes(app.NewRoute("/", app.Inject(welcome), http.MethodPost)),
//	)
//
//	func welcome(ctx *app.Context, m *mail.Mail) handler.Response {
//		err := m.Send(ctx, mail.Message{
//			Subject:    "Welcome!",
//			Body:       "Glad to have you here.",
//			Recipients: ctx.QueryAll("email"),
//		})
//		if err != nil {
//			return response.Error(err)
//		}
//		return response.NoContent()
//	}
//
// # Configuration
//
// Options are read from settings under MAIL_* keys: MAIL_SERVER, MAIL_PORT,
// MAIL_USERNAME, MAIL_PASSWORD, MAIL_USE_TLS, MAIL_USE_SSL,
// MAIL_DEFAULT_SENDER, MAIL_MAX_EMAILS, MAIL_SUPPRESS_SEND, MAIL_DEV_DIR and
// MAIL_TIMEOUT. See Config for defaults.
//
// # Transports
//
// The SMTP and Postmark transports live in integration/email. This package
// provides Outbox, which records messages in memory, and DevTransport, which
// writes them to disk.
//
// # Background delivery
//
// Dispatcher sends messages from their own goroutines so that handlers can
// respond first. Failures are logged and passed to an optional ErrorHook.
// Register DispatcherComponent so the app waits for pending sends on shutdown.
package mail
