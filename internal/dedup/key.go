package dedup

import (
	"fmt"
	"time"
)

// Ref carries the recipient-identifying fields of a send request that can
// participate in a dedup key.
type Ref struct {
	ClerkUserID    string
	RecipientEmail string
	ProductID      string
}

// BuildKey computes the base dedup key for a send, or "" when the event is
// not deduplicated. The key is stable for a given (policy, app, event,
// identifier, date) so that concurrent and repeated sends collide on it.
func BuildKey(p Policy, appID, eventType string, ref Ref, now time.Time) string {
	rule := p.Rule(eventType)

	switch rule.Strategy {
	case StrategyDaily:
		identifier := ref.ClerkUserID
		if identifier == "" {
			identifier = ref.RecipientEmail
		}
		if identifier == "" {
			identifier = "unknown"
		}
		day := now.UTC().Format("2006-01-02")
		return fmt.Sprintf("%s:%s:%s:%s", appID, eventType, identifier, day)

	case StrategyOnce:
		var identifier string
		switch rule.Identifier {
		case IdentifierEmail:
			identifier = ref.RecipientEmail
		default:
			identifier = ref.ClerkUserID
		}
		if identifier == "" {
			// Required identifier absent: fall through to no dedup rather
			// than guessing an anchor for a forever-unique key.
			return ""
		}
		return fmt.Sprintf("%s:%s:%s", appID, eventType, identifier)

	case StrategyProduct:
		if ref.ProductID == "" || ref.RecipientEmail == "" {
			// Observed upstream behavior: a product-scoped event without a
			// product falls back to no dedup instead of being rejected.
			return ""
		}
		return fmt.Sprintf("%s:%s:%s:%s", appID, eventType, ref.RecipientEmail, ref.ProductID)

	default:
		return ""
	}
}

// PerRecipientKey derives the key claimed for one recipient of a send. When
// a request fans out to multiple recipients, the email is appended so each
// member of an org broadcast gets an independent claim.
func PerRecipientKey(base, email string, fanout bool) string {
	if base == "" {
		return ""
	}
	if !fanout {
		return base
	}
	return base + ":" + email
}
