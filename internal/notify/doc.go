// Package notify delivers rip workflow events via Telegram.
//
// The default implementation posts to the Telegram Bot API using credentials
// from config and gracefully degrades to a no-op when they are absent. Every
// method returns a Delivery value rather than an error so notification
// failures can only ever be logged, never escalated into workflow failures.
// A photo message that cannot be delivered is retried once as plain text.
package notify
