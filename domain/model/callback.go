package model

import "strings"

// CallbackQuery is an inbound inline-button tap from the admin chat
type CallbackQuery struct {
	ID          string `json:"id"`
	Data        string `json:"data"`
	ChatID      int64  `json:"chatId"`
	MessageID   int    `json:"messageId"`
	MessageText string `json:"messageText"`
	From        string `json:"from"`
}

// CallbackKind tags the variant of a parsed callback
type CallbackKind int

const (
	CallbackUnrecognized CallbackKind = iota
	CallbackOfferAction
	CallbackRemovalAction
)

func (k CallbackKind) String() string {
	switch k {
	case CallbackOfferAction:
		return "offer"
	case CallbackRemovalAction:
		return "removal"
	default:
		return "unrecognized"
	}
}

// Decision is the admin verdict carried by a callback
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

const (
	removalPrefix = "removal_"
	approvePrefix = string(DecisionApprove) + "_"
	rejectPrefix  = string(DecisionReject) + "_"
)

// CallbackAction is the classified form of callback data. TargetID is the
// offer id for offer actions and the removal request id for removal actions.
type CallbackAction struct {
	Kind     CallbackKind
	Decision Decision
	TargetID string
}

// OfferCallbackData builds the button payload for an offer decision
func OfferCallbackData(d Decision, offerID string) string {
	return string(d) + "_" + offerID
}

// RemovalCallbackData builds the button payload for a removal decision
func RemovalCallbackData(d Decision, requestID string) string {
	return removalPrefix + string(d) + "_" + requestID
}

// ParseCallbackData classifies raw callback data. Ids may contain
// underscores, so only the first separator after the action is significant.
func ParseCallbackData(data string) CallbackAction {
	if rest, ok := strings.CutPrefix(data, removalPrefix); ok {
		action, id, found := strings.Cut(rest, "_")
		if !found || id == "" {
			return CallbackAction{Kind: CallbackUnrecognized}
		}
		decision, ok := parseDecision(action)
		if !ok {
			return CallbackAction{Kind: CallbackUnrecognized}
		}
		return CallbackAction{Kind: CallbackRemovalAction, Decision: decision, TargetID: id}
	}

	if strings.HasPrefix(data, approvePrefix) || strings.HasPrefix(data, rejectPrefix) {
		action, id, _ := strings.Cut(data, "_")
		if id == "" {
			return CallbackAction{Kind: CallbackUnrecognized}
		}
		decision, _ := parseDecision(action)
		return CallbackAction{Kind: CallbackOfferAction, Decision: decision, TargetID: id}
	}

	return CallbackAction{Kind: CallbackUnrecognized}
}

func parseDecision(s string) (Decision, bool) {
	switch Decision(s) {
	case DecisionApprove:
		return DecisionApprove, true
	case DecisionReject:
		return DecisionReject, true
	default:
		return "", false
	}
}
