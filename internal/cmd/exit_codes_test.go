package cmd

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"

	"github.com/merchantkit/merchant-cli/internal/api"
	"github.com/merchantkit/merchant-cli/internal/endpoint"
)

func TestExitCode(t *testing.T) {
	_, endpointErr := endpoint.Encode("//evil.example")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"help", pflag.ErrHelp, exitOK},
		{"401", &api.APIError{StatusCode: 401}, exitAuth},
		{"403", &api.APIError{StatusCode: 403}, exitForbidden},
		{"404", &api.APIError{StatusCode: 404}, exitNotFound},
		{"409", &api.APIError{StatusCode: 409}, exitUsage},
		{"422", &api.APIError{StatusCode: 422}, exitUsage},
		{"429", &api.APIError{StatusCode: 429}, exitRateLimited},
		{"500", &api.APIError{StatusCode: 500}, exitServer},
		{"transport", &api.TransportError{Message: "reset", Cause: errors.New("reset")}, exitNetwork},
		{"endpoint", endpointErr, exitUsage},
		{"async", api.ErrAsyncUnsupported, exitUsage},
		{"deadline", fmt.Errorf("waiting: %w", context.DeadlineExceeded), exitNetwork},
		{"usage text", errors.New("--url is required"), exitUsage},
		{"generic", errors.New("disk full"), exitGeneric},
		{"handled", &handledError{err: errors.New("x"), exitCode: exitServer}, exitServer},
		{"handled without code", &handledError{err: &api.APIError{StatusCode: 404}}, exitNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestHandledError_Unwrap(t *testing.T) {
	inner := &api.APIError{StatusCode: 404}
	err := &handledError{err: inner, exitCode: exitNotFound}

	assert.ErrorIs(t, err, errAlreadyHandled)
	var apiErr *api.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, inner.Error(), err.Error())
	assert.Equal(t, exitNotFound, err.ExitCode())
}
