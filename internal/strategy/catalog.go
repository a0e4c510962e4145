package strategy

import (
	"math/rand"

	"agora/internal/game"
)

// Registry keys for the built-in catalog.
const (
	AlwaysCooperate     = "always_cooperate"
	AlwaysDefect        = "always_defect"
	TitForTat           = "tit_for_tat"
	GenerousTitForTat   = "generous_tit_for_tat"
	TitForTwoTats       = "tit_for_two_tats"
	Pavlov              = "pavlov"
	Grudger             = "grudger"
	SuspiciousTitForTat = "suspicious_tit_for_tat"
	Detective           = "detective"
	HardMajority        = "hard_majority"
	SoftMajority        = "soft_majority"
	Random              = "random"
)

// forgivenessProbability is Generous Tit for Tat's chance of cooperating
// anyway after an opponent defection.
const forgivenessProbability = 0.1

// The optimist. Cooperates no matter what.
type alwaysCooperate struct{}

func (*alwaysCooperate) Name() string { return AlwaysCooperate }

func (*alwaysCooperate) Choose(_, _ []game.Action) game.Action { return game.Cooperate }

func (*alwaysCooperate) Reset() {}

// The cynic. The one-shot Nash equilibrium, played unconditionally.
type alwaysDefect struct{}

func (*alwaysDefect) Name() string { return AlwaysDefect }

func (*alwaysDefect) Choose(_, _ []game.Action) game.Action { return game.Defect }

func (*alwaysDefect) Reset() {}

// Axelrod's tournament winner: start nice, then mirror the opponent's last
// move. Nice, retaliatory, forgiving, clear.
type titForTat struct{}

func (*titForTat) Name() string { return TitForTat }

func (*titForTat) Choose(_, opponent []game.Action) game.Action {
	if len(opponent) == 0 {
		return game.Cooperate
	}
	return opponent[len(opponent)-1]
}

func (*titForTat) Reset() {}

// Tit for Tat with a small chance of forgiving a defection, which breaks
// the defection spirals plain TFT can lock into.
type generousTitForTat struct {
	rng *rand.Rand
}

func (*generousTitForTat) Name() string { return GenerousTitForTat }

func (s *generousTitForTat) Choose(_, opponent []game.Action) game.Action {
	if len(opponent) == 0 {
		return game.Cooperate
	}
	if opponent[len(opponent)-1] == game.Cooperate {
		return game.Cooperate
	}
	if s.rng != nil && s.rng.Float64() < forgivenessProbability {
		return game.Cooperate
	}
	return game.Defect
}

func (*generousTitForTat) Reset() {}

// Tolerates a single defection; retaliates only after two in a row.
type titForTwoTats struct{}

func (*titForTwoTats) Name() string { return TitForTwoTats }

func (*titForTwoTats) Choose(_, opponent []game.Action) game.Action {
	n := len(opponent)
	if n < 2 {
		return game.Cooperate
	}
	if opponent[n-1] == game.Defect && opponent[n-2] == game.Defect {
		return game.Defect
	}
	return game.Cooperate
}

func (*titForTwoTats) Reset() {}

// Win-stay, lose-shift: cooperate iff both sides made the same choice last
// round. Exploits unconditional cooperators and recovers from mutual
// defection.
type pavlov struct{}

func (*pavlov) Name() string { return Pavlov }

func (*pavlov) Choose(own, opponent []game.Action) game.Action {
	if len(own) == 0 {
		return game.Cooperate
	}
	if own[len(own)-1] == opponent[len(opponent)-1] {
		return game.Cooperate
	}
	return game.Defect
}

func (*pavlov) Reset() {}

// Grim trigger: cooperates until betrayed once, then defects for the rest
// of the match. The betrayed flag is match-scoped memory cleared by Reset.
type grudger struct {
	betrayed bool
}

func (*grudger) Name() string { return Grudger }

func (s *grudger) Choose(_, opponent []game.Action) game.Action {
	if s.betrayed {
		return game.Defect
	}
	if n := len(opponent); n > 0 && opponent[n-1] == game.Defect {
		s.betrayed = true
		return game.Defect
	}
	return game.Cooperate
}

func (s *grudger) Reset() {
	s.betrayed = false
}

// TFT that opens with a defection. Trust must be earned.
type suspiciousTitForTat struct{}

func (*suspiciousTitForTat) Name() string { return SuspiciousTitForTat }

func (*suspiciousTitForTat) Choose(_, opponent []game.Action) game.Action {
	if len(opponent) == 0 {
		return game.Defect
	}
	return opponent[len(opponent)-1]
}

func (*suspiciousTitForTat) Reset() {}

// detectiveProbe is the fixed four-round opening: C, D, C, C.
var detectiveProbe = [4]game.Action{game.Cooperate, game.Defect, game.Cooperate, game.Cooperate}

// Probe, then adapt. If the opponent never retaliated during the opening,
// conclude they are exploitable and defect forever; otherwise play TFT.
// The cached verdict is match-scoped memory.
type detective struct {
	decided bool
	exploit bool
}

func (*detective) Name() string { return Detective }

func (s *detective) Choose(own, opponent []game.Action) game.Action {
	round := len(own)
	if round < len(detectiveProbe) {
		return detectiveProbe[round]
	}
	if !s.decided {
		s.exploit = true
		for _, action := range opponent[:len(detectiveProbe)] {
			if action == game.Defect {
				s.exploit = false
				break
			}
		}
		s.decided = true
	}
	if s.exploit {
		return game.Defect
	}
	return opponent[len(opponent)-1]
}

func (s *detective) Reset() {
	s.decided = false
	s.exploit = false
}

// Defects by default; cooperates only once the opponent's cooperations
// strictly outnumber their defections.
type hardMajority struct{}

func (*hardMajority) Name() string { return HardMajority }

func (*hardMajority) Choose(_, opponent []game.Action) game.Action {
	if len(opponent) == 0 {
		return game.Defect
	}
	cooperations := countCooperations(opponent)
	if cooperations > len(opponent)-cooperations {
		return game.Cooperate
	}
	return game.Defect
}

func (*hardMajority) Reset() {}

// Cooperates by default; defects only once the opponent's defections
// strictly outnumber their cooperations.
type softMajority struct{}

func (*softMajority) Name() string { return SoftMajority }

func (*softMajority) Choose(_, opponent []game.Action) game.Action {
	if len(opponent) == 0 {
		return game.Cooperate
	}
	cooperations := countCooperations(opponent)
	if cooperations >= len(opponent)-cooperations {
		return game.Cooperate
	}
	return game.Defect
}

func (*softMajority) Reset() {}

// Coin flip. The baseline.
type random struct {
	rng *rand.Rand
}

func (*random) Name() string { return Random }

func (s *random) Choose(_, _ []game.Action) game.Action {
	if s.rng == nil {
		return game.Cooperate
	}
	if s.rng.Intn(2) == 0 {
		return game.Defect
	}
	return game.Cooperate
}

func (*random) Reset() {}

func countCooperations(history []game.Action) int {
	cooperations := 0
	for _, action := range history {
		if action == game.Cooperate {
			cooperations++
		}
	}
	return cooperations
}
