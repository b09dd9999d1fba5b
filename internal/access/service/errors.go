package service

import "errors"

var (
	ErrAccountNotFound    = errors.New("account_not_found")
	ErrDisputeNotFound    = errors.New("dispute_not_found")
	ErrNoCapacity         = errors.New("insufficient_credits")
	ErrInvalidLinkToken   = errors.New("invalid_link_token")
	ErrInvalidLinkRequest = errors.New("invalid_link_request")
)
