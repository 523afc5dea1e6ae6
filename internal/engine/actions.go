package engine

// Action buckets in display order.
const (
	BucketNutrition        = "nutrition"
	BucketSupplements      = "supplements"
	BucketMovementRecovery = "movement_recovery"
	BucketScreenings       = "screenings_checks"
	BucketEnvironment      = "environment"
	BucketRedFlags         = "red_flags"
)

// Buckets lists the action buckets in display order.
func Buckets() []string {
	return []string{
		BucketNutrition,
		BucketSupplements,
		BucketMovementRecovery,
		BucketScreenings,
		BucketEnvironment,
		BucketRedFlags,
	}
}

type WeeklyActions struct {
	Nutrition        []string `json:"nutrition"`
	Supplements      []string `json:"supplements"`
	MovementRecovery []string `json:"movement_recovery"`
	ScreeningsChecks []string `json:"screenings_checks"`
	Environment      []string `json:"environment"`
	RedFlags         []string `json:"red_flags"`
}

// Bucket returns the actions of a named bucket.
func (w WeeklyActions) Bucket(name string) []string {
	switch name {
	case BucketNutrition:
		return w.Nutrition
	case BucketSupplements:
		return w.Supplements
	case BucketMovementRecovery:
		return w.MovementRecovery
	case BucketScreenings:
		return w.ScreeningsChecks
	case BucketEnvironment:
		return w.Environment
	case BucketRedFlags:
		return w.RedFlags
	}
	return nil
}

// BuildWeeklyActions selects fixed advice strings by flag. Every bucket other
// than red_flags always carries a baseline action.
func BuildWeeklyActions(profile Profile) WeeklyActions {
	f := profile.Flags
	w := WeeklyActions{
		Nutrition:        []string{"Build each main meal around a palm of protein and two fists of vegetables."},
		Supplements:      []string{"Take supplements with food and keep a simple log of what you take and when."},
		MovementRecovery: []string{"Walk for at least 30 minutes on five days this week."},
		ScreeningsChecks: []string{"Book your month 1 screening bundle and fast for 10 to 12 hours beforehand."},
		Environment:      []string{"Get 10 minutes of outdoor daylight within an hour of waking."},
		RedFlags:         []string{},
	}

	if f.NutritionGap {
		w.Nutrition = append(w.Nutrition, "Add one extra portion of leafy greens or legumes each day.")
	}
	if f.MetabolicRisk {
		w.Nutrition = append(w.Nutrition, "Swap sugary drinks and refined snacks for whole-food options.")
		w.MovementRecovery = append(w.MovementRecovery, "Take a 10 minute walk after your largest meal.")
		w.ScreeningsChecks = append(w.ScreeningsChecks, "Measure your waist circumference and blood pressure this week.")
	}
	if f.Gut {
		w.Nutrition = append(w.Nutrition, "Increase fibre gradually and include a fermented food daily.")
	}
	if f.Inflammation {
		w.Nutrition = append(w.Nutrition, "Eat oily fish twice this week and cook with olive oil.")
	}
	if f.PoorSleep {
		w.Environment = append(w.Environment, "Keep a fixed wake time and dim screens 60 minutes before bed.")
		w.MovementRecovery = append(w.MovementRecovery, "Avoid intense exercise within three hours of bedtime.")
	}
	if f.HighStress {
		w.MovementRecovery = append(w.MovementRecovery, "Practise five minutes of slow breathing twice a day.")
		w.Environment = append(w.Environment, "Schedule two short breaks away from screens during the workday.")
	}
	if f.Burnout {
		w.Environment = append(w.Environment, "Block one evening this week with no work messages.")
	}
	if f.LowActivity {
		w.MovementRecovery = append(w.MovementRecovery, "Add two short strength sessions using body weight.")
	}
	if f.Cognitive {
		w.Environment = append(w.Environment, "Work in 45 minute focus blocks with notifications off.")
	}
	if f.Jetlag {
		w.Environment = append(w.Environment, "Shift meals and light exposure toward destination time two days before flying.")
		w.Nutrition = append(w.Nutrition, "Hydrate steadily on travel days and limit alcohol in the air.")
	}
	if f.Vasomotor {
		w.Environment = append(w.Environment, "Keep the bedroom cool and layer bedding for night sweats.")
		w.Nutrition = append(w.Nutrition, "Note whether caffeine, alcohol or spicy food trigger hot flushes.")
	}
	if f.Mood {
		w.MovementRecovery = append(w.MovementRecovery, "Spend time outdoors with someone you trust this week.")
	}
	if f.BoneHealth {
		w.MovementRecovery = append(w.MovementRecovery, "Include impact or resistance exercise on two days.")
		w.Nutrition = append(w.Nutrition, "Aim for three calcium-rich foods each day.")
	}
	if f.Iron {
		w.Nutrition = append(w.Nutrition, "Pair iron-rich foods with vitamin C and keep tea away from meals.")
	}
	if f.Thyroid {
		w.ScreeningsChecks = append(w.ScreeningsChecks, "Ask your GP about a full thyroid panel if not checked in 12 months.")
	}
	if f.HRTUser {
		w.ScreeningsChecks = append(w.ScreeningsChecks, "Review your HRT with your prescriber at your next appointment.")
	}
	if len(profile.Demographics.Medications) > 0 {
		w.Supplements = append(w.Supplements, "Check new supplements with your pharmacist against your current medication.")
	}
	if f.RedFlag {
		w.RedFlags = append(w.RedFlags, "Some of your answers need a prompt review. Book an appointment with your GP.")
	}
	if f.ImmediateConcern {
		w.RedFlags = append(w.RedFlags, "If you are thinking about harming yourself, contact emergency services or a crisis line now.")
	}
	return w
}
