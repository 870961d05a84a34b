package ir

// Run is one recorded induction run (store-layer).
//
// Runs are ordered by Seq, a logical counter assigned by the store, never by
// wall time. RuleBase is the first rule id the engine could mint, so a replay
// that resumes its counter at RuleBase reproduces the same rule ids and
// therefore the same GrammarHash.
type Run struct {
	ID       string `json:"id"`
	Seq      int64  `json:"seq"`
	Profile  string `json:"profile,omitempty"`
	K        int    `json:"k"`
	RuleBase RuleID `json:"rule_base"`

	EndOfEpisode      int    `json:"end_of_episode"`
	EndOfEpisodeToken string `json:"end_of_episode_token,omitempty"`

	// Alphabet lists the tokens in raw-value order. Empty for runs over
	// plain integers.
	Alphabet []string `json:"alphabet"`

	Input    []Symbol     `json:"input"`
	Sequence []Symbol     `json:"sequence"`
	Rules    []RuleRecord `json:"rules"`

	InputHash     string `json:"input_hash"`
	GrammarHash   string `json:"grammar_hash"`
	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
}

// Grammar returns the grammar document recorded by the run.
func (r *Run) Grammar() *Grammar {
	return &Grammar{
		K:            r.K,
		EndOfEpisode: r.EndOfEpisode,
		Input:        r.Input,
		Sequence:     r.Sequence,
		Rules:        r.Rules,
	}
}

// NewRun builds a run record for a grammar, computing both hashes.
// Seq is left zero; the store assigns it.
func NewRun(id string, g *Grammar, ruleBase RuleID) (Run, error) {
	inputHash, err := InputHash(g.Input)
	if err != nil {
		return Run{}, err
	}
	grammarHash, err := GrammarHash(g)
	if err != nil {
		return Run{}, err
	}
	return Run{
		ID:            id,
		K:             g.K,
		RuleBase:      ruleBase,
		EndOfEpisode:  g.EndOfEpisode,
		Alphabet:      []string{},
		Input:         g.Input,
		Sequence:      g.Sequence,
		Rules:         g.Rules,
		InputHash:     inputHash,
		GrammarHash:   grammarHash,
		EngineVersion: EngineVersion,
		IRVersion:     IRVersion,
	}, nil
}
