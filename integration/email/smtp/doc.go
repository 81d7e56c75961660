// Package smtp delivers mail.Message values through an SMTP relay using go-mail.
//
// The transport supports STARTTLS, implicit TLS and plain connections. Each
// Deliver call opens one connection and sends the whole batch over it, so
// MAIL_MAX_EMAILS controls how many messages share a connection.
//
// Wire it into an app through mail.Component:
//
//	app.New(
//		app.WithComponents(
//			settings.Component(s),
//			mail.Component(smtp.NewTransport),
//		),
//	)
//
// Or construct it directly:
//
//	tr, err := smtp.New(smtp.Config{
//		Host:     "smtp.example.com",
//		Port:     587,
//		Username: "postmaster@example.com",
//		Password: "secret",
//		TLSMode:  smtp.TLSModeStartTLS,
//	})
//	if err != nil {
//		return err
//	}
//	m, err := mail.New(mail.DefaultConfig(), tr)
//
// Errors from a failed dial match ErrConnect; errors from a rejected message
// match ErrSend and name the message index and Message-ID.
package smtp
