package contentfilter

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Category
	}{
		{"clean message", "what time is the meeting tomorrow", CategoryNone},
		{"ad keyword", "加微信 for a private consultation", CategoryAd},
		{"adult keyword", "约炮 tonight", CategoryAdult},
		{"bot admission english", "this is an automated message", CategoryBotAdmit},
		{"bot admission chinese", "我是机器人", CategoryBotAdmit},
		{"spam click here", "click here to win a prize", CategorySpam},
		{"spam punctuation flood", "really?!?!?!", CategorySpam},
		{"spam repeated char", "soooooooooo good", CategorySpam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassify_OrderPrecedence(t *testing.T) {
	// A message matching both ad and adult keywords should report ad first.
	text := "加微信 约炮"
	if got := Classify(text); got != CategoryAd {
		t.Errorf("Classify(%q) = %q, want %q (ad checked before adult)", text, got, CategoryAd)
	}
}

func TestIsAllowed(t *testing.T) {
	if !IsAllowed("hello, how are you?") {
		t.Error("expected clean message to be allowed")
	}
	if IsAllowed("click here to win a prize") {
		t.Error("expected spam message to be disallowed")
	}
}
