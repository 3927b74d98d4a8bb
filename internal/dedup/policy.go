// Package dedup computes deterministic deduplication keys for lifecycle
// email sends. The key, combined with a uniqueness constraint in storage,
// is what prevents the same logical notification from being delivered twice.
package dedup

// Strategy selects how a dedup key is derived for an event type.
type Strategy string

const (
	// StrategyOnce dedupes forever on (app, event, identifier).
	StrategyOnce Strategy = "once"
	// StrategyDaily dedupes on (app, event, identifier, UTC date).
	StrategyDaily Strategy = "daily"
	// StrategyProduct dedupes on (app, event, recipient email, product).
	StrategyProduct Strategy = "product"
	// StrategyRepeatable never dedupes; every send is recorded and allowed.
	StrategyRepeatable Strategy = "repeatable"
)

// Identifier selects which recipient field anchors a once-only key.
type Identifier string

const (
	// IdentifierUser keys on the Clerk user ID.
	IdentifierUser Identifier = "clerk_user_id"
	// IdentifierEmail keys on the recipient email address.
	IdentifierEmail Identifier = "recipient_email"
)

// Rule binds an event type to a strategy plus its parameters.
type Rule struct {
	Strategy   Strategy
	Identifier Identifier
}

// Policy maps event types to dedup rules. Event types with no rule are
// repeatable. Strategies are data here, not code, so a deployment can
// reshape the sets without touching the key builder.
type Policy map[string]Rule

// Rule returns the rule for an event type, defaulting to repeatable.
func (p Policy) Rule(eventType string) Rule {
	if r, ok := p[eventType]; ok {
		return r
	}
	return Rule{Strategy: StrategyRepeatable}
}

// DefaultPolicy returns the production event-type sets: once-only signup
// style events, one-per-day activity pings, and product-scoped webinar
// reminders. Everything else is repeatable.
func DefaultPolicy() Policy {
	return Policy{
		"waitlist":            {Strategy: StrategyOnce, Identifier: IdentifierEmail},
		"welcome":             {Strategy: StrategyOnce, Identifier: IdentifierUser},
		"signup_notification": {Strategy: StrategyOnce, Identifier: IdentifierUser},

		"user_active": {Strategy: StrategyDaily},

		"webinar_welcome": {Strategy: StrategyProduct},
		"j_minus_3":       {Strategy: StrategyProduct},
		"j_minus_2":       {Strategy: StrategyProduct},
		"j_minus_1":       {Strategy: StrategyProduct},
		"j_day":           {Strategy: StrategyProduct},
	}
}
