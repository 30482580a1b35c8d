// Package mail sends plain text security alerts over SMTP.
package mail
