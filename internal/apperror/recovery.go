package apperror

import "context"

// ActionType identifies a recovery action the UI can offer.
type ActionType string

const (
	ActionRefreshPage       ActionType = "refresh_page"
	ActionRetry             ActionType = "retry"
	ActionWaitAndRetry      ActionType = "wait_and_retry"
	ActionCheckAPIKey       ActionType = "check_api_key"
	ActionOpenSettings      ActionType = "open_settings"
	ActionSwitchProvider    ActionType = "switch_provider"
	ActionProcessInSections ActionType = "process_in_sections"
	ActionCheckConnection   ActionType = "check_connection"
	ActionReportIssue       ActionType = "report_issue"
)

// Action is one suggested recovery step. Run invokes the handler registered
// for Type in the RecoveryContext, or does nothing when none was registered.
type Action struct {
	Type    ActionType
	Label   string
	Primary bool
	Run     func(ctx context.Context) error
}

// RecoveryContext carries the caller's language and action handlers.
type RecoveryContext struct {
	Language string
	Handlers map[ActionType]func(ctx context.Context) error
}

// RecoveryActions returns the ordered actions for err; the first is primary.
func RecoveryActions(err *Error, rc RecoveryContext) []Action {
	t := TypeUnknown
	if err != nil {
		t = err.Type()
	}

	loc := resolveLocale(rc.Language)
	types := actionsFor(t)
	actions := make([]Action, 0, len(types))
	for i, at := range types {
		run := rc.Handlers[at]
		if run == nil {
			run = func(context.Context) error { return nil }
		}
		actions = append(actions, Action{
			Type:    at,
			Label:   labelFor(at).in(loc),
			Primary: i == 0,
			Run:     run,
		})
	}
	return actions
}

func actionsFor(t Type) []ActionType {
	switch t {
	case TypeAuthExpired, TypeAuthInvalid, TypeAuthMissing, TypeAuthPermissionDenied:
		return []ActionType{ActionRefreshPage, ActionRetry}
	case TypeAPIKeyInvalid:
		return []ActionType{ActionCheckAPIKey, ActionOpenSettings}
	case TypeAPIRateLimited:
		return []ActionType{ActionWaitAndRetry, ActionSwitchProvider}
	case TypeAPIQuotaExceeded:
		return []ActionType{ActionSwitchProvider, ActionCheckAPIKey}
	case TypeAPIServiceDown:
		return []ActionType{ActionRetry, ActionSwitchProvider}
	case TypeAPIContextTooLong, TypeTranscriptTooLarge:
		return []ActionType{ActionProcessInSections, ActionSwitchProvider}
	case TypeNetworkConnection, TypeNetworkTimeout, TypeNetworkDNSFailure, TypeNetworkOffline:
		return []ActionType{ActionRetry, ActionCheckConnection}
	case TypeTranscriptNotFound:
		return []ActionType{ActionRefreshPage, ActionRetry}
	case TypeTranscriptEmpty, TypeTranscriptMalformedTimestamp, TypeTranscriptMissingSpeakers, TypeJSONParse:
		return []ActionType{ActionRetry, ActionReportIssue}
	default:
		return []ActionType{ActionRetry, ActionReportIssue}
	}
}

func labelFor(a ActionType) localized {
	switch a {
	case ActionRefreshPage:
		return localized{"Refresh Page", "重新整理頁面"}
	case ActionRetry:
		return localized{"Try Again", "重試"}
	case ActionWaitAndRetry:
		return localized{"Wait and Retry", "稍後重試"}
	case ActionCheckAPIKey:
		return localized{"Check API Key", "檢查 API 金鑰"}
	case ActionOpenSettings:
		return localized{"Open Settings", "開啟設定"}
	case ActionSwitchProvider:
		return localized{"Switch Provider", "更換服務提供者"}
	case ActionProcessInSections:
		return localized{"Process in Sections", "分段處理"}
	case ActionCheckConnection:
		return localized{"Check Connection", "檢查網路連線"}
	case ActionReportIssue:
		return localized{"Report Issue", "回報問題"}
	default:
		return localized{string(a), ""}
	}
}
