package apperror

import (
	"golang.org/x/text/language"
)

// Locales supported by the message and label tables. The first entry is the
// fallback for anything the matcher cannot place.
var supportedLocales = []language.Tag{
	language.English,
	language.MustParse("zh-TW"),
}

var localeMatcher = language.NewMatcher(supportedLocales)

type locale int

const (
	localeEN locale = iota
	localeZhTW
)

// resolveLocale maps a BCP 47 string onto a supported locale, falling back to en.
func resolveLocale(lang string) locale {
	tag, err := language.Parse(lang)
	if err != nil {
		return localeEN
	}
	_, idx, conf := localeMatcher.Match(tag)
	if conf < language.High {
		return localeEN
	}
	return locale(idx)
}

type localized struct {
	en   string
	zhTW string
}

func (l localized) in(loc locale) string {
	if loc == localeZhTW && l.zhTW != "" {
		return l.zhTW
	}
	return l.en
}

// UserMessage returns the localized, user-facing message for err.
// Unsupported languages fall back to English.
func UserMessage(err *Error, lang string) string {
	t := TypeUnknown
	if err != nil {
		t = err.Type()
	}
	return messageFor(t).in(resolveLocale(lang))
}

func messageFor(t Type) localized {
	switch t {
	case TypeAuthExpired:
		return localized{
			"Your session has expired. Refresh the meeting page and sign in again.",
			"您的登入狀態已過期，請重新整理會議頁面並再次登入。",
		}
	case TypeAuthInvalid:
		return localized{
			"Your credentials are not valid. Sign in again to continue.",
			"您的憑證無效，請重新登入後再試。",
		}
	case TypeAuthMissing:
		return localized{
			"You are not signed in. Sign in to the meeting service first.",
			"您尚未登入，請先登入會議服務。",
		}
	case TypeAuthPermissionDenied:
		return localized{
			"You do not have permission to access this meeting's transcript.",
			"您沒有權限存取此會議的逐字稿。",
		}
	case TypeAPIKeyInvalid:
		return localized{
			"The AI provider rejected the API key. Check the key in settings.",
			"AI 服務拒絕了 API 金鑰，請到設定中檢查金鑰。",
		}
	case TypeAPIRateLimited:
		return localized{
			"The AI provider is rate limiting requests. Retrying shortly.",
			"AI 服務請求次數過多，稍後將自動重試。",
		}
	case TypeAPIQuotaExceeded:
		return localized{
			"Your AI provider quota is used up. Check your plan or switch provider.",
			"AI 服務額度已用完，請檢查方案或更換服務提供者。",
		}
	case TypeAPIServiceDown:
		return localized{
			"The AI provider is temporarily unavailable. Please try again later.",
			"AI 服務暫時無法使用，請稍後再試。",
		}
	case TypeAPIContextTooLong:
		return localized{
			"The request exceeded the model's context limit. Process the transcript in sections.",
			"請求超過模型的內容長度上限，請分段處理逐字稿。",
		}
	case TypeNetworkConnection:
		return localized{
			"Could not reach the AI provider. Check your network connection.",
			"無法連線至 AI 服務，請檢查網路連線。",
		}
	case TypeNetworkTimeout:
		return localized{
			"The request timed out. Please try again.",
			"請求逾時，請再試一次。",
		}
	case TypeNetworkDNSFailure:
		return localized{
			"The AI provider's address could not be resolved. Check your DNS or proxy settings.",
			"無法解析 AI 服務位址，請檢查 DNS 或代理伺服器設定。",
		}
	case TypeNetworkOffline:
		return localized{
			"You appear to be offline. Reconnect and try again.",
			"您目前似乎處於離線狀態，請重新連線後再試。",
		}
	case TypeTranscriptNotFound:
		return localized{
			"No transcript was found for this meeting. Make sure captions are enabled.",
			"找不到此會議的逐字稿，請確認已開啟字幕。",
		}
	case TypeTranscriptTooLarge:
		return localized{
			"The transcript is too large to summarize in one request.",
			"逐字稿過長，無法一次完成摘要。",
		}
	case TypeTranscriptEmpty:
		return localized{
			"The transcript is empty. There is nothing to summarize yet.",
			"逐字稿為空，目前沒有可摘要的內容。",
		}
	case TypeTranscriptMalformedTimestamp:
		return localized{
			"The transcript has invalid timestamps and could not be processed.",
			"逐字稿的時間戳記格式錯誤，無法處理。",
		}
	case TypeTranscriptMissingSpeakers:
		return localized{
			"The transcript has no speaker information.",
			"逐字稿缺少發言者資訊。",
		}
	case TypeJSONParse:
		return localized{
			"The response could not be read. Please try again.",
			"無法解析回應內容，請再試一次。",
		}
	default:
		return localized{
			"Something went wrong. Please try again.",
			"發生未預期的錯誤，請再試一次。",
		}
	}
}
