package game

import "fmt"

// MatchResult summarizes one iterated match between two players.
type MatchResult struct {
	StrategyA    string  `json:"strategy_a"`
	StrategyB    string  `json:"strategy_b"`
	ScoreA       float64 `json:"score_a"`
	ScoreB       float64 `json:"score_b"`
	Rounds       int     `json:"rounds"`
	CooperationA float64 `json:"cooperation_a"`
	CooperationB float64 `json:"cooperation_b"`
}

// Play runs an iterated match between a and b. Both players are reset before
// the first round. Each round the two sides choose simultaneously: each sees
// copies of the histories so far, so neither can observe or mutate the
// other's state. rounds == 0 yields a zero result without consulting either
// player.
func Play(a, b Player, rounds int, payoffs PayoffMatrix) (MatchResult, error) {
	if a == nil || b == nil {
		return MatchResult{}, fmt.Errorf("both players are required")
	}
	if rounds < 0 {
		return MatchResult{}, fmt.Errorf("rounds must be >= 0, got %d", rounds)
	}

	a.Reset()
	b.Reset()

	historyA := make([]Action, 0, rounds)
	historyB := make([]Action, 0, rounds)
	scoreA := 0.0
	scoreB := 0.0

	for round := 0; round < rounds; round++ {
		moveA := a.Choose(copyHistory(historyA), copyHistory(historyB))
		moveB := b.Choose(copyHistory(historyB), copyHistory(historyA))

		scoreA += payoffs.Payoff(moveA, moveB)
		scoreB += payoffs.Payoff(moveB, moveA)

		historyA = append(historyA, moveA)
		historyB = append(historyB, moveB)
	}

	result := MatchResult{
		StrategyA: a.Name(),
		StrategyB: b.Name(),
		ScoreA:    scoreA,
		ScoreB:    scoreB,
		Rounds:    rounds,
	}
	if rounds > 0 {
		result.CooperationA = cooperationRate(historyA)
		result.CooperationB = cooperationRate(historyB)
	}
	return result, nil
}

func copyHistory(history []Action) []Action {
	if len(history) == 0 {
		return nil
	}
	copied := make([]Action, len(history))
	copy(copied, history)
	return copied
}

func cooperationRate(history []Action) float64 {
	cooperations := 0
	for _, action := range history {
		if action == Cooperate {
			cooperations++
		}
	}
	return float64(cooperations) / float64(len(history))
}
