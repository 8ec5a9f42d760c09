package api

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/merchantkit/merchant-cli/internal/endpoint"
	"github.com/merchantkit/merchant-cli/internal/validation"
)

// CreateChallenge starts a two-factor challenge.
func (s TwoFactorService) CreateChallenge(ctx context.Context, req CreateChallengeRequest) (*TwoFactorChallenge, error) {
	return createChallenge(ctx, s, req)
}

func createChallenge(ctx context.Context, r Requester, req CreateChallengeRequest) (*TwoFactorChallenge, error) {
	if !slices.Contains(ValidTwoFactorMethods, req.Method) {
		return nil, NewValidationError("method", req.Method, ValidTwoFactorMethods)
	}
	if req.Destination != "" {
		var err error
		switch req.Method {
		case "email":
			err = validation.ValidateEmail(req.Destination)
		case "sms":
			err = validation.ValidatePhone(req.Destination)
		}
		if err != nil {
			return nil, err
		}
	}
	var result TwoFactorChallenge
	if err := r.do(ctx, http.MethodPost, "two_factor/challenges", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Verify submits the one-time code for a challenge.
func (s TwoFactorService) Verify(ctx context.Context, challengeID, code string) (*TwoFactorVerification, error) {
	return verifyChallenge(ctx, s, challengeID, code)
}

func verifyChallenge(ctx context.Context, r Requester, challengeID, code string) (*TwoFactorVerification, error) {
	if code == "" {
		return nil, errors.New("verification code is required")
	}
	path, err := endpoint.Path("two_factor", "challenges", challengeID, "verify")
	if err != nil {
		return nil, err
	}
	body := map[string]string{"otp": code}
	var result TwoFactorVerification
	if err := r.do(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
