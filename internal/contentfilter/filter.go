// Package contentfilter implements qubot's deterministic content
// classifier: advertisement, adult content, bot-self-admission, and
// spam detection, checked in a fixed order.
package contentfilter

import (
	"regexp"
	"strings"
)

// Category is the kind of disallowed content a message matched, or
// CategoryNone if the message passed every check.
type Category string

const (
	CategoryNone       Category = ""
	CategoryAd         Category = "ad"
	CategoryAdult      Category = "adult"
	CategoryBotAdmit   Category = "bot_admission"
	CategorySpam       Category = "spam"
)

var adKeywords = []string{
	"广告", "推广", "加微信", "加v", "加V", "私聊", "代理合作", "招代理",
	"限时优惠", "一对一指导", "扫码咨询", "联系客服",
}

var adultKeywords = []string{
	"裸聊", "色情", "约炮", "成人视频", "小姐姐视频", "黄色网站",
}

var botAdmitKeywords = []string{
	"我是机器人", "本消息由机器人自动发送", "i am a bot", "i'm a bot",
	"automated message", "this is an automated",
}

var spamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(click here|act now|limited time offer)`),
	regexp.MustCompile(`([!?？！]){4,}`),
}

// Classify returns the first disallowed category the text matches, in
// fixed order: ad, adult, bot admission, spam. Order matters because a
// message can plausibly match more than one category; the caller only
// ever needs the first reason to drop it.
func Classify(text string) Category {
	lower := strings.ToLower(text)

	if containsAny(lower, adKeywords) {
		return CategoryAd
	}
	if containsAny(lower, adultKeywords) {
		return CategoryAdult
	}
	if containsAny(lower, botAdmitKeywords) {
		return CategoryBotAdmit
	}
	for _, re := range spamPatterns {
		if re.MatchString(text) {
			return CategorySpam
		}
	}
	// Any character repeated 10+ times in a row.
	run, prev := 0, rune(-1)
	for _, r := range text {
		if r == prev {
			run++
		} else {
			run, prev = 1, r
		}
		if run >= 10 {
			return CategorySpam
		}
	}
	return CategoryNone
}

// IsAllowed reports whether text passes every content filter check.
func IsAllowed(text string) bool {
	return Classify(text) == CategoryNone
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
