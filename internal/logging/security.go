// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package logging

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// SecurityEvent is an identity event written to the audit stream.
type SecurityEvent struct {
	Event     string
	UserID    int64
	Email     string
	IPAddress string
	Success   bool
	Reason    string
}

// SecurityLogger writes registration and login events with the email
// address masked.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger creates a security logger tagged with component=auth.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{logger: WithComponent("auth")}
}

// NewSecurityLoggerWithLogger creates a security logger on a specific logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{logger: logger.With().Str("component", "auth").Logger()}
}

// LogEvent writes event.
func (l *SecurityLogger) LogEvent(event *SecurityEvent) {
	e := l.logger.Info()
	if !event.Success {
		e = l.logger.Warn()
	}
	e = e.Str("event", event.Event).Bool("success", event.Success)

	if event.UserID != 0 {
		e = e.Str("user_id", strconv.FormatInt(event.UserID, 10))
	}
	if event.Email != "" {
		e = e.Str("email", MaskEmail(event.Email))
	}
	if event.IPAddress != "" {
		e = e.Str("ip", event.IPAddress)
	}
	if event.Reason != "" {
		e = e.Str("reason", event.Reason)
	}
	e.Msg("security event")
}

// LogRegistered records a successful registration.
func (l *SecurityLogger) LogRegistered(userID int64, email, ip string) {
	l.LogEvent(&SecurityEvent{Event: "user_registered", UserID: userID, Email: email, IPAddress: ip, Success: true})
}

// LogLoginSuccess records a successful login.
func (l *SecurityLogger) LogLoginSuccess(userID int64, email, ip string) {
	l.LogEvent(&SecurityEvent{Event: "login_success", UserID: userID, Email: email, IPAddress: ip, Success: true})
}

// LogLoginFailure records a rejected login.
func (l *SecurityLogger) LogLoginFailure(email, ip, reason string) {
	l.LogEvent(&SecurityEvent{Event: "login_failed", Email: email, IPAddress: ip, Reason: reason})
}

// MaskEmail keeps the first character of the local part and the domain:
// "alice@example.com" becomes "a***@example.com".
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
