// Package redisqueue implements a mail.Transport that spools messages to a
// Redis list instead of delivering them.
//
// Each message becomes a JSON Envelope holding the envelope sender, every
// recipient and the raw MIME message. A relay process drains the list with
// Pop and hands the raw bytes to a mail server. Pushing a batch is a single
// MULTI/EXEC round trip.
//
//	t, err := redisqueue.New(redisqueue.Config{
//		ConnectionURL: "redis://localhost:6379/0",
//		Key:           "mail:outbox",
//	})
//
// The transport is selected in the example apps with MAIL_TRANSPORT=redis
// and configured through REDIS_URL, MAIL_QUEUE_KEY and REDIS_CONNECT_TIMEOUT.
package redisqueue
