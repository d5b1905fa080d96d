// Package otp abstracts the one-time consent-code capability. Production
// deployments plug in an SMS or email backed verifier; the default Static
// verifier accepts a single configured code, matching the simulated
// delivery the product currently ships with.
package otp

import "context"

// Challenge identifies an issued code so Verify can be matched to Issue.
type Challenge struct {
	Phone string
}

// Verifier issues a consent-code challenge for a phone number and checks
// codes submitted against it.
type Verifier interface {
	Issue(ctx context.Context, phone string) (Challenge, error)
	Verify(ctx context.Context, ch Challenge, code string) (bool, error)
}

// Static accepts one fixed code for every challenge. No code is ever sent
// anywhere; Issue only records the phone.
type Static struct {
	Code string
}

func NewStatic(code string) *Static {
	return &Static{Code: code}
}

func (s *Static) Issue(_ context.Context, phone string) (Challenge, error) {
	return Challenge{Phone: phone}, nil
}

func (s *Static) Verify(_ context.Context, _ Challenge, code string) (bool, error) {
	return code == s.Code, nil
}
