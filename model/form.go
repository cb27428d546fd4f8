package model

import (
	"strconv"
	"strings"
	"time"
)

// RequestType identifies what a visitor asked for on the public form.
type RequestType int

const (
	RequestUnknown           RequestType = 0
	RequestSubscribe         RequestType = 1
	RequestMonthlyMembership RequestType = 2
	RequestAnnualMembership  RequestType = 3
	RequestPayDownload       RequestType = 4
)

// ParseRequestType reads the leading integer of s. Anything unparsable maps
// to RequestUnknown while keeping the raw number for display.
func ParseRequestType(s string) (RequestType, int) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && (s[end] == '-' || s[end] == '+')) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return RequestUnknown, 0
	}
	switch RequestType(n) {
	case RequestSubscribe, RequestMonthlyMembership, RequestAnnualMembership, RequestPayDownload:
		return RequestType(n), n
	}
	return RequestUnknown, n
}

func (t RequestType) String() string {
	switch t {
	case RequestSubscribe:
		return "subscribe"
	case RequestMonthlyMembership:
		return "monthly_membership"
	case RequestAnnualMembership:
		return "annual_membership"
	case RequestPayDownload:
		return "pay_download"
	default:
		return "unknown"
	}
}

// FormSubmission is a subscribe or membership request from the public site.
type FormSubmission struct {
	Type       RequestType
	RawType    int
	Email      string
	URL        string
	ReceivedAt time.Time
}

// UnsubscribeEntry is the archived record of a newsletter cancellation.
type UnsubscribeEntry struct {
	CancelSubscribe int    `json:"cancel_subscribe"`
	UserEmail       string `json:"user_email"`
	ReceivedAt      string `json:"received_at"`
}

func NewUnsubscribeEntry(email string, at time.Time) UnsubscribeEntry {
	return UnsubscribeEntry{
		CancelSubscribe: 1,
		UserEmail:       email,
		ReceivedAt:      at.UTC().Format(time.RFC3339),
	}
}
