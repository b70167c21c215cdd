package model

// Tier is a closed subscription level. Unknown values resolve to the free tier.
type Tier string

const (
	TierFree     Tier = "free"
	TierPremium  Tier = "premium"
	TierBusiness Tier = "business"
)

// TierDefinition holds the static limits and pricing of one tier.
type TierDefinition struct {
	MonthlyLimit int      `json:"monthly_limit"`
	Price        float64  `json:"price"`
	Features     []string `json:"features"`
}

var tierDefinitions = map[Tier]TierDefinition{
	TierFree: {
		MonthlyLimit: 10,
		Price:        0,
		Features:     []string{"10 appointments per month", "Basic client management", "Simple calendar"},
	},
	TierPremium: {
		MonthlyLimit: 100,
		Price:        19.90,
		Features:     []string{"100 appointments per month", "Advanced client management", "Full calendar", "SMS reminders"},
	},
	TierBusiness: {
		MonthlyLimit: 1000,
		Price:        49.90,
		Features:     []string{"1000 appointments per month", "All features", "Advanced reports", "API access", "Priority support"},
	},
}

// LimitsFor returns the definition for a tier, falling back to free for unknown tiers.
func LimitsFor(tier Tier) TierDefinition {
	if def, ok := tierDefinitions[tier]; ok {
		return def
	}
	return tierDefinitions[TierFree]
}

// AllTiers returns the tier table in display order.
func AllTiers() []Tier {
	return []Tier{TierFree, TierPremium, TierBusiness}
}

func (t Tier) Valid() bool {
	_, ok := tierDefinitions[t]
	return ok
}

// IsPaid reports whether the tier requires a paid subscription.
func (t Tier) IsPaid() bool {
	return t == TierPremium || t == TierBusiness
}

func (t Tier) Label() string {
	switch t {
	case TierFree:
		return "Free"
	case TierPremium:
		return "Premium"
	case TierBusiness:
		return "Business"
	default:
		return string(t)
	}
}

// RewardType identifies what a credit redemption buys.
type RewardType string

const (
	RewardPremiumMonth  RewardType = "premium_month"
	RewardBusinessMonth RewardType = "business_month"
	// RewardReferralBonus is the free month granted to a referred user at signup.
	RewardReferralBonus RewardType = "referral_bonus"
)

// CreditCost returns how many credits the reward costs. Signup bonuses are free.
func (r RewardType) CreditCost() int {
	switch r {
	case RewardPremiumMonth:
		return 30
	case RewardBusinessMonth:
		return 50
	default:
		return 0
	}
}

// GrantedTier is the tier a reward entitles its holder to while active.
func (r RewardType) GrantedTier() Tier {
	switch r {
	case RewardBusinessMonth:
		return TierBusiness
	case RewardPremiumMonth, RewardReferralBonus:
		return TierPremium
	default:
		return TierFree
	}
}

// Redeemable reports whether the reward can be bought with credits.
func (r RewardType) Redeemable() bool {
	return r == RewardPremiumMonth || r == RewardBusinessMonth
}

func (r RewardType) Label() string {
	switch r {
	case RewardPremiumMonth:
		return "Premium Month"
	case RewardBusinessMonth:
		return "Business Month"
	case RewardReferralBonus:
		return "Referral Bonus"
	default:
		return string(r)
	}
}
