package services

import (
	"errors"
	"regexp"
	"strings"
)

var ErrContentRejected = errors.New("content does not meet our guidelines")

var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
	"scam", "scammer", "phishing", "malware",
}

// Rejection reasons.
const (
	ReasonLanguage    = "inappropriate_language"
	ReasonURL         = "url_not_allowed"
	ReasonContactInfo = "contact_info_not_allowed"
	ReasonSpam        = "spam_detected"
	ReasonCaps        = "excessive_caps"
)

var rejectionMessages = map[string]string{
	ReasonLanguage:    "Your text contains inappropriate language.",
	ReasonURL:         "URLs and web links are not allowed.",
	ReasonContactInfo: "Contact information is not allowed here.",
	ReasonSpam:        "Your text appears to be spam.",
	ReasonCaps:        "Please avoid using excessive capital letters.",
}

// RejectedContentError carries the machine readable reason for a rejection.
type RejectedContentError struct {
	Reason string
}

func (e *RejectedContentError) Error() string { return RejectionMessage(e.Reason) }

func (e *RejectedContentError) Unwrap() error { return ErrContentRejected }

func RejectionMessage(reason string) string {
	if msg, ok := rejectionMessages[reason]; ok {
		return msg
	}
	return ErrContentRejected.Error()
}

// ModerationService screens free text written by travellers: reviews and
// inquiry messages. Patterns are compiled once and are safe for concurrent
// use.
type ModerationService struct {
	bannedWords    []*regexp.Regexp
	urlPattern     *regexp.Regexp
	emailPattern   *regexp.Regexp
	phonePattern   *regexp.Regexp
	allCapsPattern *regexp.Regexp
}

func NewModerationService() *ModerationService {
	ms := &ModerationService{
		bannedWords:    make([]*regexp.Regexp, 0, len(BannedWords)),
		urlPattern:     regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`),
		emailPattern:   regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		phonePattern:   regexp.MustCompile(`(\+?\d[\d\s-]{8,}\d)`),
		allCapsPattern: regexp.MustCompile(`\b[A-Z]{5,}\b`),
	}
	for _, word := range BannedWords {
		ms.bannedWords = append(ms.bannedWords, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
	}
	return ms
}

// FilterContent reports whether text is acceptable and, if not, why. When
// allowContact is set, email addresses and phone numbers pass.
func (ms *ModerationService) FilterContent(text string, allowContact bool) (bool, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return true, ""
	}
	for _, re := range ms.bannedWords {
		if re.MatchString(text) {
			return false, ReasonLanguage
		}
	}
	if ms.urlPattern.MatchString(text) {
		return false, ReasonURL
	}
	if !allowContact && (ms.emailPattern.MatchString(text) || ms.phonePattern.MatchString(text)) {
		return false, ReasonContactInfo
	}
	if hasRepeatedRun(text, 5) {
		return false, ReasonSpam
	}
	if len(ms.allCapsPattern.FindAllString(text, -1)) > 2 {
		return false, ReasonCaps
	}
	return true, ""
}

// Check is FilterContent as an error.
func (ms *ModerationService) Check(text string, allowContact bool) error {
	if ok, reason := ms.FilterContent(text, allowContact); !ok {
		return &RejectedContentError{Reason: reason}
	}
	return nil
}

// hasRepeatedRun reports a run of n or more identical letters or
// punctuation marks.
func hasRepeatedRun(text string, n int) bool {
	var prev rune
	run := 0
	for _, r := range strings.ToLower(text) {
		if r == prev && (r >= 'a' && r <= 'z' || r == '!' || r == '?' || r == '.') {
			run++
			if run >= n {
				return true
			}
			continue
		}
		prev, run = r, 1
	}
	return false
}
