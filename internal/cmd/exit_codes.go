package cmd

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	"github.com/merchantkit/merchant-cli/internal/api"
)

const (
	exitOK          = 0
	exitGeneric     = 1
	exitUsage       = 2
	exitAuth        = 3
	exitNotFound    = 4
	exitForbidden   = 5
	exitRateLimited = 6
	exitServer      = 7
	exitNetwork     = 8
)

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}
	var handled *handledError
	if errors.As(err, &handled) {
		if handled.exitCode != 0 {
			return handled.exitCode
		}
		err = handled.err
	}

	if code := exitCodeFromStructured(err); code != 0 {
		return code
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return exitNetwork
	}
	if isUsageError(err) {
		return exitUsage
	}
	return exitGeneric
}

var exitCodeByErrorCode = map[api.ErrorCode]int{
	api.CodeUnauthorized:     exitAuth,
	api.CodeForbidden:        exitForbidden,
	api.CodeNotFound:         exitNotFound,
	api.CodeRateLimited:      exitRateLimited,
	api.CodeServerError:      exitServer,
	api.CodeTimeout:          exitNetwork,
	api.CodeTransport:        exitNetwork,
	api.CodeBadRequest:       exitUsage,
	api.CodeValidation:       exitUsage,
	api.CodeConflict:         exitUsage,
	api.CodeInvalidEndpoint:  exitUsage,
	api.CodeAsyncUnsupported: exitUsage,
}

// exitCodeFromStructured returns 0 when err has no specific exit code.
func exitCodeFromStructured(err error) int {
	return exitCodeByErrorCode[api.StructuredErrorFromError(err).Code]
}

// usageErrorMarkers are lowercase fragments of cobra, pflag and local
// argument-validation messages.
var usageErrorMarkers = []string{
	"unknown command",
	"unknown flag",
	"unknown shorthand flag",
	"flag needs an argument",
	"requires at least",
	"accepts ",
	"invalid argument",
	"must be",
	"is required",
	"cannot be empty",
}

func isUsageError(err error) bool {
	msg := strings.ToLower(err.Error())
	return slices.ContainsFunc(usageErrorMarkers, func(m string) bool {
		return strings.Contains(msg, m)
	})
}
