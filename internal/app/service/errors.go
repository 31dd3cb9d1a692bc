package service

import "errors"

var (
	ErrSessionNotFound       = errors.New("session not found")
	ErrSessionClosed         = errors.New("session closed")
	ErrPanelBusy             = errors.New("panel is processing another action")
	ErrMissingInput          = errors.New("missing required input")
	ErrNoQuote               = errors.New("no quote available")
	ErrNoWallet              = errors.New("no wallet connected")
	ErrUnknownToken          = errors.New("unknown token")
	ErrUnknownVault          = errors.New("unknown vault")
	ErrInvalidAddress        = errors.New("invalid wallet address")
	ErrNothingToShare        = errors.New("nothing to share")
	ErrAlreadyShared         = errors.New("already shared")
	ErrInvalidAvatar         = errors.New("invalid avatar")
	ErrInvalidURL            = errors.New("invalid url")
	ErrNotificationsDeclined = errors.New("notifications were not enabled by the host")
)
