package rubric

// defaultDimensions is the built-in LRRIT dimension set (D1-D8).
// Loaded when no rubric directory is configured.
var defaultDimensions = []Dimension{
	{
		ID:      "D1",
		Name:    "Compassionate engagement with people affected",
		Purpose: "Compassionate engagement means that affected people's needs, experiences, and perspectives were sensitively elicited, understood, and responded to, and that those conducting the engagement had appropriate skills to ensure safe, respectful involvement.",
		Tiers: []Tier{
			{Label: TierGood, Criteria: "affected people were sensitively involved throughout, with skilled engagement and their perspectives reflected in the analysis"},
			{Label: TierSome, Criteria: "engagement occurred but was partial, procedural, or its influence on the analysis is unclear"},
			{Label: TierLittle, Criteria: "affected people were absent, mentioned only in passing, or engaged without evident care or skill"},
		},
		PositiveCues: []string{"family", "patient", "carer", "listened", "shared with", "involved", "supported", "apolog", "duty of candour"},
		NegativeCues: []string{"not contacted", "no contact", "unable to engage", "declined", "informed by letter"},
		Capability:   "judging",
	},
	{
		ID:      "D2",
		Name:    "Systems approach to contributory factors",
		Purpose: "A systems approach means that the learning response process used a structured systems perspective or method to identify, analyse, and interpret multiple interacting system factors that contributed to the incident.",
		Tiers: []Tier{
			{Label: TierGood, Criteria: "clear systems framing with system-level analysis and actions"},
			{Label: TierSome, Criteria: "partial systems framing or mixed individual/system emphasis"},
			{Label: TierLittle, Criteria: "mostly individual-centric framing with minimal systems analysis"},
		},
		PositiveCues: []string{"system", "process", "pathway", "escalat", "handover", "workflow", "capacity", "staffing", "resource", "protocol", "governance", "communication", "interface", "coordination", "policy"},
		NegativeCues: []string{"should have", "should've", "failed", "did not", "didn't", "be more vigilant", "remind", "ensure clinicians", "education"},
		Capability:   "judging",
	},
	{
		ID:      "D3",
		Name:    "Human error treated as outcome, not cause",
		Purpose: "Human error is treated as an outcome to be explained, not a cause in itself. The report uses system analysis to explain why people acted as they did and avoids presenting human error, non-compliance, or loss of situational awareness as the causal explanation for the incident.",
		Tiers: []Tier{
			{Label: TierGood, Criteria: "individual actions are explained through the conditions and system context in which they occurred"},
			{Label: TierSome, Criteria: "error framing is mixed; some actions are explained in context while others stand as causes"},
			{Label: TierLittle, Criteria: "human error or non-compliance is presented as the causal explanation for the incident"},
		},
		PositiveCues: []string{"why it made sense", "conditions", "context", "contributed to", "under pressure", "workload", "competing demands"},
		NegativeCues: []string{"human error", "non-compliance", "loss of situational awareness", "failed to", "error by"},
		Capability:   "judging",
	},
	{
		ID:      "D4",
		Name:    "Blame language avoided",
		Purpose: "Blame language is avoided when the report uses neutral, descriptive language and does not attribute fault, culpability, or responsibility for the incident to individuals, teams, departments, organisations, or systems, either explicitly or by implication.",
		Tiers: []Tier{
			{Label: TierGood, Criteria: "consistently neutral, descriptive language with no attribution of fault"},
			{Label: TierSome, Criteria: "mostly neutral language with occasional implied fault or judgemental phrasing"},
			{Label: TierLittle, Criteria: "fault or culpability is attributed to people, teams, or departments, explicitly or by implication"},
		},
		PositiveCues: []string{"was observed", "described", "at the time", "the team encountered", "it was noted"},
		NegativeCues: []string{"failed", "neglected", "at fault", "responsible for the incident", "blame", "should have known", "inadequate performance"},
		Capability:   "judging",
	},
	{
		ID:      "D5",
		Name:    "Local rationality",
		Purpose: "Local rationality is considered when the report explores how the situation made sense to those involved at the time, given what they knew, prioritised, and could do. Actions are made intelligible in context.",
		Tiers: []Tier{
			{Label: TierGood, Criteria: "the report reconstructs what people knew and prioritised at the time, making their actions intelligible"},
			{Label: TierSome, Criteria: "some attention to the view from inside the situation, but parts of the narrative judge from outcome knowledge"},
			{Label: TierLittle, Criteria: "actions are assessed purely against outcome knowledge with no reconstruction of the situation as experienced"},
		},
		PositiveCues: []string{"at the time", "made sense", "known at the time", "perceived", "prioritised", "reasonable to", "given the information"},
		NegativeCues: []string{"in hindsight", "it is now clear", "should have recognised", "missed opportunity"},
		Capability:   "judging",
	},
	{
		ID:      "D6",
		Name:    "Avoidance of hindsight bias and counterfactual certainty",
		Purpose: "Counterfactual reasoning is avoided when the report focuses on what actually happened (work-as-done) and does not reason from imagined alternatives about what could or should have happened. This dimension rewards explicit acknowledgement of uncertainty and penalises definitive, unsupported counterfactual claims.",
		Tiers: []Tier{
			{Label: TierGood, Criteria: "cautious counterfactual reasoning with explicit acknowledgement of uncertainty"},
			{Label: TierSome, Criteria: "mixed cautious and overconfident counterfactual reasoning"},
			{Label: TierLittle, Criteria: "strong hindsight bias or definitive unsupported causal claims"},
		},
		PositiveCues: []string{"no certainty", "cannot determine", "can't determine", "unclear whether", "it is unclear", "unknown", "we cannot know", "may not have", "might not have"},
		NegativeCues: []string{"would have", "would've", "definitely", "clearly", "obviously", "inevitably", "certainly", "directly caused", "resulted in"},
		Capability:   "judging",
	},
	{
		ID:      "D7",
		Name:    "Improvement actions (systems-focused, evidence-informed, collaborative)",
		Purpose: "Safety actions are systems-focused, evidence-informed, and developed collaboratively with relevant staff and stakeholders, such that they are meaningful to work-as-done, owned by those involved, and capable of improving how the system functions in practice.",
		Tiers: []Tier{
			{Label: TierGood, Criteria: "system-focused actions, grounded in analysis, collaboratively developed, with ownership and monitoring"},
			{Label: TierSome, Criteria: "genuine attempt but underdeveloped: weak linkage, collaboration, or governance, or a mix of system and individual actions"},
			{Label: TierLittle, Criteria: "generic, compliance, or individual-focused actions dominate with weak links to analysis and no rationale, collaboration, or monitoring"},
		},
		PositiveCues: []string{"pathway", "workflow", "process", "handover", "escalat", "interface", "staffing", "capacity", "transfer", "referral", "criteria", "protocol", "co-developed", "developed collaboratively", "with staff", "stakeholders", "multidisciplinary", "agreed with", "co-designed", "owner", "responsible", "lead", "deadline", "monitor", "review", "audit", "track"},
		NegativeCues: []string{"remind", "retrain", "training", "education", "awareness", "reinforce", "re-circulate", "share learning", "update policy", "revise policy", "poster", "email", "reiterate", "compliance", "ensure staff"},
		Constraints: []string{
			"In AAR-style reports, improvement actions may legitimately be absent; absence alone must not imply weak learning.",
			"If actions are absent, do not force a LITTLE rating purely because no actions are listed.",
		},
		Conditional: true,
		Capability:  "judging",
	},
	{
		ID:      "D8",
		Name:    "Communication quality and usability",
		Purpose: "The report is clearly and accessibly written, with a logical structure, clear language, and effective use of visuals, such that it is usable by its intended audience.",
		Tiers: []Tier{
			{Label: TierGood, Criteria: "clear structure and readable narrative where learning and actions are easy to extract"},
			{Label: TierSome, Criteria: "understandable but with issues such as vagueness, jargon, weak signposting, or inconsistencies"},
			{Label: TierLittle, Criteria: "hard to follow, with confusing structure or terminology, and learning or actions hard to extract"},
		},
		PositiveCues: []string{"what happened", "summary", "immediate safety actions", "key learning points", "improvement action plan", "contributory", "recommendations"},
		NegativeCues: []string{"appropriate", "timely", "good care", "managed well", "raise awareness", "as soon as possible", "SDEC", "AMU", "Datix", "CRP", "NBM", "SHO"},
		Capability:   "judging",
	},
}

// DefaultRegistry returns the built-in D1-D8 dimension set.
func DefaultRegistry() *Registry {
	reg, err := NewRegistry(defaultDimensions)
	if err != nil {
		// The built-in set is validated by tests; a failure here is a bug.
		panic("rubric: invalid built-in dimension set: " + err.Error())
	}
	return reg
}
