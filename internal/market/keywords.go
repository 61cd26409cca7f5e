// Package market classifies financial-market chatter: which asset
// domain a message is about, whether it reads bullish or bearish, and
// whether a channel is dominated by one market category.
package market

import "strings"

// Category is one of the market domains qubot recognizes, or
// CategoryGeneral when no domain keyword matched.
type Category string

const (
	CategoryCrypto  Category = "crypto"
	CategoryAStock  Category = "a_stock"
	CategoryUSStock Category = "us_stock"
	CategoryHKStock Category = "hk_stock"
	CategoryFutures Category = "futures"
	CategoryForex   Category = "forex"
	CategoryGeneral Category = "general"
)

// Sentiment is the detected directional lean of a message.
type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = "neutral"
)

var domainKeywords = map[Category][]string{
	CategoryCrypto: {
		"比特币", "btc", "以太坊", "eth", "crypto", "加密货币", "币圈",
		"usdt", "defi", "nft", "链上", "交易所", "合约", "空投", "稳定币",
	},
	CategoryAStock: {
		"a股", "沪指", "深成指", "创业板", "涨停", "跌停", "龙虎榜",
		"上证", "深证", "北向资金", "科创板",
	},
	CategoryUSStock: {
		"美股", "纳斯达克", "道琼斯", "标普", "nasdaq", "s&p", "dow jones",
		"盘前", "盘后", "财报季",
	},
	CategoryHKStock: {
		"港股", "恒指", "恒生指数", "南向资金", "hkex",
	},
	CategoryFutures: {
		"期货", "原油期货", "黄金期货", "螺纹钢", "商品期货", "futures",
	},
	CategoryForex: {
		"外汇", "汇率", "美元指数", "forex", "usdjpy", "eurusd",
	},
}

var generalKeywords = []string{
	"市场", "行情", "分析", "投资", "交易", "经济", "market", "trading",
}

var bullishKeywords = []string{
	"涨", "看涨", "突破", "反弹", "牛市", "利好", "走强", "bullish", "rally", "breakout",
}

var bearishKeywords = []string{
	"跌", "看跌", "下跌", "熊市", "利空", "走弱", "bearish", "crash", "selloff",
}

var newsKeywords = []string{"快讯", "news", "突发", "公告"}
var techKeywords = []string{"均线", "macd", "kdj", "支撑位", "压力位", "技术分析"}
var resourceKeywords = []string{"研报", "白皮书", "资料", "报告下载"}

// domainOrder is the fixed evaluation order for Categorize.
var domainOrder = []Category{CategoryCrypto, CategoryAStock, CategoryUSStock, CategoryHKStock, CategoryFutures, CategoryForex}

// Categorize returns every market domain a message belongs to, by
// substring match against each domain's keyword list, evaluated in a
// fixed order (crypto, a_stock, us_stock, hk_stock, futures, forex). A
// message can match more than one domain (e.g. both crypto and
// us_stock keywords present); Categorize returns the full set rather
// than the first match. Falls back to []Category{CategoryGeneral} when
// nothing matches.
func Categorize(text string) []Category {
	lower := strings.ToLower(text)
	var cats []Category
	for _, cat := range domainOrder {
		if containsAny(lower, domainKeywords[cat]) {
			cats = append(cats, cat)
		}
	}
	if len(cats) == 0 {
		return []Category{CategoryGeneral}
	}
	return cats
}

// isGeneralOnly reports whether cats is exactly the CategoryGeneral fallback.
func isGeneralOnly(cats []Category) bool {
	return len(cats) == 1 && cats[0] == CategoryGeneral
}

// DetectSentiment compares bullish and bearish keyword counts. Ties
// (including zero-zero) are neutral: the comparison is a strict `>`,
// never `>=`.
func DetectSentiment(text string) Sentiment {
	lower := strings.ToLower(text)
	bull := countMatches(lower, bullishKeywords)
	bear := countMatches(lower, bearishKeywords)
	if bull > bear {
		return SentimentBullish
	}
	if bear > bull {
		return SentimentBearish
	}
	return SentimentNeutral
}

// ExtractMatchedKeywords returns every domain/general keyword found in text.
func ExtractMatchedKeywords(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, kws := range domainKeywords {
		for _, kw := range kws {
			if strings.Contains(lower, strings.ToLower(kw)) {
				found = append(found, kw)
			}
		}
	}
	for _, kw := range generalKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			found = append(found, kw)
		}
	}
	return found
}

// IsMarketRelevant reports whether text matches any domain, general,
// news, technical, or resource keyword.
func IsMarketRelevant(text string) bool {
	lower := strings.ToLower(text)
	if !isGeneralOnly(Categorize(text)) {
		return true
	}
	for _, kws := range [][]string{generalKeywords, newsKeywords, techKeywords, resourceKeywords} {
		if containsAny(lower, kws) {
			return true
		}
	}
	return false
}

// DetectChannelCategory classifies a channel's dominant category from
// a slice of recent message texts. A category must account for more
// than 1.5x the count of the next most frequent category to be
// declared dominant; otherwise the channel is CategoryGeneral. Exactly
// 1.5x is NOT sufficient — the comparison is a strict `>`.
func DetectChannelCategory(texts []string) Category {
	counts := make(map[Category]int)
	for _, t := range texts {
		for _, cat := range Categorize(t) {
			if cat == CategoryGeneral {
				continue
			}
			counts[cat]++
		}
	}

	var top, second Category
	topCount, secondCount := 0, 0
	for cat, n := range counts {
		if cat == CategoryGeneral {
			continue
		}
		if n > topCount {
			second, secondCount = top, topCount
			top, topCount = cat, n
		} else if n > secondCount {
			second, secondCount = cat, n
		}
	}
	_ = second

	if topCount == 0 {
		return CategoryGeneral
	}
	if float64(topCount) > 1.5*float64(secondCount) {
		return top
	}
	return CategoryGeneral
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func countMatches(lower string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			n++
		}
	}
	return n
}
