package service

import "context"

// Mailer sends transactional mail. Only the verification flow uses it.
type Mailer interface {
	SendVerificationMail(ctx context.Context, toEmail, verifyURL string) error
}
