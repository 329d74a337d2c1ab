package questionbank

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/zhouzirui/mock-interview/backend/internal/model/interview"
)

//go:embed bank.yaml
var defaultBank []byte

// Tier maps an average score floor to canned summary content.
type Tier struct {
	MinScore            float64  `yaml:"min_score"`
	Strengths           []string `yaml:"strengths"`
	AreasForImprovement []string `yaml:"areas_for_improvement"`
	SuggestedResources  []string `yaml:"suggested_resources"`
}

// Feedback is the list-valued part of a summary.
type Feedback struct {
	Strengths           []string `yaml:"strengths"`
	AreasForImprovement []string `yaml:"areas_for_improvement"`
	SuggestedResources  []string `yaml:"suggested_resources"`
}

// Bank holds the static content used whenever generation is unavailable.
type Bank struct {
	Questions         map[interview.Mode][]string `yaml:"questions"`
	TechnicalKeywords []string                    `yaml:"technical_keywords"`
	SummaryTiers      []Tier                      `yaml:"summary_tiers"`
	Placeholder       Feedback                    `yaml:"placeholder"`
}

// Default returns the bank compiled into the binary.
func Default() (*Bank, error) {
	return Parse(defaultBank)
}

// MustDefault is Default for package-level wiring and tests.
func MustDefault() *Bank {
	bank, err := Default()
	if err != nil {
		panic(fmt.Sprintf("questionbank: embedded bank invalid: %v", err))
	}
	return bank
}

// Load reads a bank from a YAML file on disk.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML bank content.
func Parse(data []byte) (*Bank, error) {
	var bank Bank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	if err := bank.validate(); err != nil {
		return nil, err
	}
	sort.SliceStable(bank.SummaryTiers, func(i, j int) bool {
		return bank.SummaryTiers[i].MinScore > bank.SummaryTiers[j].MinScore
	})
	return &bank, nil
}

func (b *Bank) validate() error {
	if len(b.Questions[interview.Technical]) == 0 {
		return fmt.Errorf("question bank: technical pool must not be empty")
	}
	if len(b.SummaryTiers) == 0 {
		return fmt.Errorf("question bank: at least one summary tier is required")
	}
	for i, tier := range b.SummaryTiers {
		if len(tier.Strengths) == 0 || len(tier.AreasForImprovement) == 0 || len(tier.SuggestedResources) == 0 {
			return fmt.Errorf("question bank: summary tier %d must list strengths, improvements and resources", i)
		}
	}
	if len(b.Placeholder.Strengths) == 0 {
		return fmt.Errorf("question bank: placeholder summary is required")
	}
	return nil
}

// Pool returns the fallback questions for mode; unknown modes share the technical pool.
func (b *Bank) Pool(mode interview.Mode) []string {
	if pool, ok := b.Questions[mode]; ok && len(pool) > 0 {
		return append([]string(nil), pool...)
	}
	return append([]string(nil), b.Questions[interview.Technical]...)
}

// TierFor picks the highest tier whose floor does not exceed avg.
func (b *Bank) TierFor(avg float64) Tier {
	for _, tier := range b.SummaryTiers {
		if avg >= tier.MinScore {
			return tier
		}
	}
	return b.SummaryTiers[len(b.SummaryTiers)-1]
}
