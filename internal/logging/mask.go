// Copyright (c) 2026 Ledgershell
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides utilities for secure logging and error presentation.
// It includes functions for masking sensitive information in log messages and
// formatting errors for user-friendly display while protecting credentials and secrets.
//
// AWS SDK errors frequently embed request signatures, access key ids and session
// tokens; everything the shell prints passes through Mask first.
package logging

import (
	"regexp"
	"strings"
)

var (
	reAccessKey = regexp.MustCompile(`\b(AKIA|ASIA)[A-Z0-9]{16}\b`)
	reSecret    = regexp.MustCompile(`(?i)(aws_secret_access_key\s*=\s*)\S+`)
	reToken     = regexp.MustCompile(`(?i)(x-amz-security-token[:=]\s*|session_token\s*=\s*|token=)[A-Za-z0-9+/=._-]+`)
	reAuth      = regexp.MustCompile(`(?i)(authorization:\s*)\S.*`)
)

// Mask replaces sensitive values in the input string with "***".
// Access key ids keep their four-character prefix so users can still
// tell which credential was used.
func Mask(s string) string {
	out := s
	out = reAccessKey.ReplaceAllString(out, "$1***")
	out = reSecret.ReplaceAllString(out, "$1***")
	out = reToken.ReplaceAllString(out, "$1***")
	out = reAuth.ReplaceAllString(out, "$1***")
	// Basic env-like pairs key=VALUE; mask common secret keys
	for _, k := range []string{"AWS_SECRET_ACCESS_KEY", "AWS_SESSION_TOKEN"} {
		out = strings.ReplaceAll(out, k+"=", k+"=***")
	}
	return out
}
