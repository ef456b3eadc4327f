// Package stoplist finds catalog terms that carry no category signal.
//
// A term that appears in many habits, spreads evenly over categories and is
// not associated with any particular other term only adds noise to TF-IDF
// similarity ("for", "minutes", "daily"). Suggest reports such terms so they
// can be added to engine.stopwords.
package stoplist

import "sort"

// Manager holds the current stopword set.
type Manager struct {
	stops map[string]Reason
}

// Reason explains why a term is a stopword.
type Reason struct {
	HighDF      bool    // in many habits
	LowPMI      bool    // no strong partner term
	HighEntropy bool    // spread evenly across categories
	DFPercent   float64 // share of habits containing the term
	IDF         float64 // smoothed inverse document frequency
	PMIMax      float64 // largest NPMI with any co-occurring term
	CatEntropy  float64 // normalized category entropy
}

// NewManager starts from a configured list.
func NewManager(initial []string) *Manager {
	stops := make(map[string]Reason, len(initial))
	for _, s := range initial {
		stops[s] = Reason{}
	}
	return &Manager{stops: stops}
}

// IsStop reports whether term is in the set.
func (m *Manager) IsStop(term string) bool {
	_, ok := m.stops[term]
	return ok
}

// Add puts term in the set.
func (m *Manager) Add(term string, reason Reason) {
	m.stops[term] = reason
}

// Remove takes term out of the set.
func (m *Manager) Remove(term string) {
	delete(m.stops, term)
}

// All returns the set sorted.
func (m *Manager) All() []string {
	out := make([]string, 0, len(m.stops))
	for s := range m.stops {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Stats describes one catalog term.
type Stats struct {
	Term       string
	DF         int64   // habits containing the term
	DFPercent  float64 // DF as a percentage of all habits
	IDF        float64
	PMIMax     float64
	CatEntropy float64
}

// Candidate is a suggested stopword.
type Candidate struct {
	Term   string
	Reason Reason
	Score  float64 // in [0,1], higher is more confidently noise
}

// Thresholds decide which Stats become candidates.
type Thresholds struct {
	DFPercent  float64 // DFPercent must exceed this
	PMIMax     float64 // PMIMax must stay below this
	CatEntropy float64 // CatEntropy must exceed this
}

// DefaultThresholds suit catalogs of a few dozen short habits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DFPercent:  20,
		PMIMax:     0.5,
		CatEntropy: 0.8,
	}
}

// SuggestCandidates returns terms that pass all three thresholds and are
// not already stopwords, best score first.
func (m *Manager) SuggestCandidates(stats []Stats, th Thresholds) []Candidate {
	candidates := make([]Candidate, 0)
	for _, s := range stats {
		if m.IsStop(s.Term) {
			continue
		}

		reason := Reason{
			HighDF:      s.DFPercent > th.DFPercent,
			LowPMI:      s.PMIMax < th.PMIMax,
			HighEntropy: s.CatEntropy > th.CatEntropy,
			DFPercent:   s.DFPercent,
			IDF:         s.IDF,
			PMIMax:      s.PMIMax,
			CatEntropy:  s.CatEntropy,
		}
		if !reason.HighDF || !reason.LowPMI || !reason.HighEntropy {
			continue
		}

		candidates = append(candidates, Candidate{
			Term:   s.Term,
			Reason: reason,
			Score:  score(s),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Term < candidates[j].Term
	})
	return candidates
}

func score(s Stats) float64 {
	pmi := s.PMIMax
	if pmi < 0 {
		pmi = 0
	}
	return (s.DFPercent/100 + (1 - pmi) + s.CatEntropy) / 3
}
