// Package postmark delivers mail.Message values through the Postmark HTTP API.
//
// Messages are sent with the batch endpoint, up to 500 per request. Plain
// text and HTML bodies, custom headers, reply-to and attachments are all
// forwarded. Postmark reports rejections per message; Deliver joins them into
// one error matching ErrRejected.
//
//	cfg := postmark.Config{
//		ServerToken:   os.Getenv("POSTMARK_SERVER_TOKEN"),
//		MessageStream: "outbound",
//	}
//	tr, err := postmark.New(cfg)
//	if err != nil {
//		return err
//	}
//
// NewTransport loads Config from POSTMARK_* environment variables and can be
// passed straight to mail.Component:
//
//	mail.Component(postmark.NewTransport)
package postmark
