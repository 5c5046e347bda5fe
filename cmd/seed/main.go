package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"protopia/internal/config"
	"protopia/internal/db"
	"protopia/internal/domain"
	"protopia/internal/repository"
)

var professions = []string{"Manager", "Developer", "Psychologist", "Consultant", "HR Officer", "Trainer"}

var ageGroups = []string{"16–20", "21–30", "31–40", "41–50"}

var genders = []string{"", "Male", "Female"}

var questionTemplates = map[string][]string{
	"integrity": {
		"I maintain honesty even when it may negatively impact me.",
		"I take responsibility for my mistakes without shifting blame.",
		"I avoid conflicts of interest in professional decisions.",
		"I follow through on ethical commitments even under pressure.",
		"I would report unethical behavior even if it risks relationships.",
	},
	"empathy": {
		"I understand how others feel even if they don't express it.",
		"I can sense tension or emotional states in a team.",
		"I consider others' perspectives during conflicts.",
		"I notice when someone is struggling even without being told.",
		"I respond compassionately when someone shares personal challenges.",
	},
	"self_control": {
		"I stay calm in heated arguments.",
		"I do not let stress cloud my judgment.",
		"I take a pause before reacting emotionally.",
		"I keep my tone professional even when provoked.",
		"I remain composed when facing unexpected obstacles.",
	},
	"vision": {
		"I create long-term goals aligned with team strengths.",
		"I articulate a clear vision during change.",
		"I motivate others by connecting their role to bigger goals.",
		"I challenge the team to pursue ambitious outcomes.",
	},
	"accountability": {
		"I own the outcomes of my decisions, good or bad.",
		"I follow up on commitments until they are delivered.",
		"I admit openly when a plan of mine has failed.",
		"I hold myself to the same standards I set for others.",
	},
	"adaptability": {
		"I adjust my plans quickly when circumstances change.",
		"I stay effective when priorities shift unexpectedly.",
		"I am comfortable working with ambiguous requirements.",
		"I treat setbacks as information rather than defeat.",
	},
	"communication": {
		"I explain complex topics in terms my audience understands.",
		"I check that my message was understood as intended.",
		"I give feedback that is specific and actionable.",
		"I listen fully before formulating my reply.",
	},
	"decision_making": {
		"I weigh evidence from multiple sources before deciding.",
		"I make timely decisions even with incomplete information.",
		"I revisit decisions when new facts emerge.",
		"I separate reversible choices from irreversible ones.",
	},
	"inclusiveness": {
		"I actively invite quieter voices into discussions.",
		"I adapt processes so everyone can participate fully.",
		"I challenge jokes or remarks that exclude others.",
		"I seek out perspectives different from my own.",
	},
	"influence": {
		"I build support for ideas through trust rather than pressure.",
		"I align stakeholders around shared goals.",
		"I persuade with evidence and empathy, not authority.",
		"I help others see what is possible beyond the status quo.",
	},
}

// A small set of reverse-scored statements keeps the bank balanced against
// straight-line agreement.
var reverseTemplates = map[string][]string{
	"integrity":    {"I bend rules when it benefits my team's results."},
	"self_control": {"I often say things in anger that I later regret."},
	"empathy":      {"I find other people's emotional reactions distracting."},
}

func main() {
	vrCount := flag.Int("vr", 150, "number of VR questions to generate")
	seed := flag.Int64("seed", 42, "shuffle seed for deterministic generation")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	rng := rand.New(rand.NewSource(*seed))
	questionRepo := repository.NewPgQuestionRepository(pool)
	vrQuestionRepo := repository.NewPgVRQuestionRepository(pool)

	created := 0
	for trait, statements := range questionTemplates {
		for _, text := range statements {
			if err := questionRepo.Create(ctx, makeQuestion(rng, trait, text, false)); err != nil {
				logger.Warn("question insert failed", zap.Error(err), zap.String("trait", trait))
				continue
			}
			created++
		}
	}
	for trait, statements := range reverseTemplates {
		for _, text := range statements {
			if err := questionRepo.Create(ctx, makeQuestion(rng, trait, text, true)); err != nil {
				logger.Warn("question insert failed", zap.Error(err), zap.String("trait", trait))
				continue
			}
			created++
		}
	}
	logger.Info("mcq bank seeded", zap.Int("created", created))

	vrItems := generateVRQuestions(rng, *vrCount)
	vrCreated := 0
	for _, q := range vrItems {
		if err := vrQuestionRepo.Create(ctx, q); err != nil {
			logger.Warn("vr question insert failed", zap.Error(err))
			continue
		}
		vrCreated++
	}
	logger.Info("vr pool seeded", zap.Int("created", vrCreated))
}

func makeQuestion(rng *rand.Rand, trait, text string, reverse bool) domain.Question {
	// Most questions apply everywhere; a slice carries demographic targeting
	// so the selector's fallback tiers get exercised with real data.
	ageGroup := domain.AgeGroupAll
	if rng.Intn(4) == 0 {
		ageGroup = ageGroups[rng.Intn(len(ageGroups))]
	}
	gender := ""
	if rng.Intn(10) == 0 {
		gender = genders[1+rng.Intn(len(genders)-1)]
	}

	tagCount := 2 + rng.Intn(len(professions)-1)
	perm := rng.Perm(len(professions))
	tags := make([]string, 0, tagCount)
	for _, idx := range perm[:tagCount] {
		tags = append(tags, professions[idx])
	}

	weight := 1.0
	if rng.Intn(5) == 0 {
		weight = 1.2
	}

	return domain.Question{
		ID:             uuid.NewString(),
		Text:           text,
		Trait:          trait,
		ProfessionTags: tags,
		AgeGroup:       ageGroup,
		GenderSpecific: gender,
		Weight:         weight,
		ReverseScore:   reverse,
	}
}

type pillar struct {
	key  string
	name string
}

var pillars = []pillar{
	{"integrity_ethics", "Integrity & Ethical Reasoning"},
	{"empathy_compassion", "Empathy & Compassion"},
	{"authentic_selfawareness", "Authenticity & Self-Awareness"},
	{"transformational_leadership", "Transformational Leadership"},
	{"emotional_regulation_social", "Emotional Regulation & Social Skills"},
}

var scenarios = []string{
	"data privacy breach",
	"whistleblowing dilemma",
	"conflict of interest with a vendor",
	"pressure from manager to bend rules",
	"team member underperforming",
	"deadline vs quality trade-off",
	"inclusion concern raised by a teammate",
	"budget overrun discovered late",
	"customer complaint about hidden fees",
	"misattribution of credit in a project",
	"security vulnerability disclosure timing",
	"harassment allegation in the team",
	"junior made a costly mistake",
	"hiring decision with implicit bias risk",
	"toxic behavior from a top performer",
	"unrealistic deadline promised to client",
}

var vrTemplates = []string{
	"In a %s, what is your first action and why?",
	"You notice a %s. How do you address it with your team?",
	"A peer suggests ignoring a %s. What do you say?",
	"How would you balance empathy and accountability in a %s?",
	"Describe your decision process for a %s.",
	"How do you communicate the resolution of a %s to stakeholders?",
	"What ethical principles guide you in a %s?",
	"How would you protect psychological safety during a %s?",
	"How do you prevent this %s from recurring?",
}

func generateVRQuestions(rng *rand.Rand, count int) []domain.VRQuestion {
	seen := make(map[string]struct{})
	var items []domain.VRQuestion
	attempts := 0
	for len(items) < count && attempts < count*20 {
		attempts++
		scenario := scenarios[rng.Intn(len(scenarios))]
		text := fmt.Sprintf(vrTemplates[rng.Intn(len(vrTemplates))], scenario)
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		p := pillars[rng.Intn(len(pillars))]
		items = append(items, domain.VRQuestion{
			ID:         uuid.NewString(),
			Text:       text,
			PillarKey:  p.key,
			PillarName: p.name,
			Tags:       []string{scenario},
		})
	}
	return items
}
