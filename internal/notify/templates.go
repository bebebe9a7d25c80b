// Copyright (c) 2026 Handraise. All rights reserved.

package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/handraise/handraise/pkg/uuid"
)

// # Message Composition

// OtpSubject is the subject line for sign-in code mail.
const OtpSubject = "Your Handraise sign-in code"

// otpBodyTemplate keeps the code on its own line so mobile mail clients
// offer it for autofill.
const otpBodyTemplate = `Hi,

Your Handraise sign-in code is:

%s

It expires in %d minutes. If you did not request a code, you can ignore
this email.

The Handraise Team`

// ComposeOtpEmail builds the outbox row for a sign-in code.
func ComposeOtpEmail(recipient, code string, ttl time.Duration) *Email {
	return &Email{
		ID:        uuid.New(),
		Recipient: recipient,
		Subject:   OtpSubject,
		Body:      fmt.Sprintf(otpBodyTemplate, code, int(ttl.Minutes())),
		Status:    StatusPending,
	}
}

// # Enqueue Facade

// Service is the thin write-side facade other domains use to queue mail.
type Service struct {
	store OutboxStore
}

// NewService constructs a [Service].
func NewService(store OutboxStore) *Service {
	return &Service{store: store}
}

/*
EnqueueOtp queues a sign-in code email for delivery.

Parameters:
  - ctx: context.Context
  - recipient: string destination address
  - code: string plain OTP code
  - ttl: time.Duration code lifetime to quote in the body

Returns:
  - error: Persistence failures from the outbox
*/
func (service *Service) EnqueueOtp(ctx context.Context, recipient, code string, ttl time.Duration) error {
	return service.store.Enqueue(ctx, ComposeOtpEmail(recipient, code, ttl))
}
