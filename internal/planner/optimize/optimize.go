// Package optimize implements the Optimizer (OPT, spec §4.4): a binary
// integer program over recipe/slot assignment, solved by a hand-written
// branch-and-bound search under a wall-clock budget.
//
// No ILP/MIP library was available to reach for here (ungrounded — see
// DESIGN.md), so the search below is shaped directly off the spec's own
// formulation: since each slot's coverage constraint forces exactly one
// recipe per slot, branching on "which recipe fills this slot" is
// equivalent to branching on the x[r,d,m] binaries, and is what a
// reasonable implementer would write by hand.
package optimize

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dared22/mealplanner/internal/model"
	"github.com/dared22/mealplanner/internal/planner/slots"
)

// Status is the terminal state of a solve attempt (§4.4 "Termination").
type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusFeasible   Status = "feasible" // incumbent found but not proven optimal (timeout)
	StatusTimeout    Status = "timeout"  // no feasible incumbent at all
	StatusInfeasible Status = "infeasible"
)

// Result is the OPT contract's output: solve(...) → OptResult (§4.4).
type Result struct {
	Days   []model.PlannerDayPlan
	Status Status
	Reason string
}

// LikedScore and DislikedScore are the objective weights from §4.4: the
// 10:1 ratio is deliberate, large enough to favor liked recipes without
// producing nutritionally absurd plans.
const (
	LikedScore    = 10.0
	DislikedScore = 1.0
)

const macroBandLow = 0.9
const macroBandHigh = 1.1

// Solve implements solve(pool, targets, profile, likes, time_budget) →
// OptResult (§4.4).
func Solve(ctx context.Context, pool []model.Recipe, targets model.MacroTargets, profile model.UserProfile, likes, disliked map[int64]bool, timeBudget time.Duration) Result {
	ctx, cancel := context.WithTimeout(ctx, timeBudget)
	defer cancel()

	weekSlots := slots.Build(profile)
	uniquenessCap := 1
	if len(pool) < len(weekSlots) {
		uniquenessCap = 2 // §4.4 "Uniqueness", relaxed iff |pool| < total_slots
	}

	candidatesBySlot := make([][]model.Recipe, len(weekSlots))
	for i, s := range weekSlots {
		var eligible []model.Recipe
		for _, r := range pool {
			if disliked[r.ID] {
				continue // §4.4 "Disliked exclusion", defensive — CQ already filtered these
			}
			if r.SupportsMealType(s.MealType) {
				eligible = append(eligible, r)
			}
		}
		sort.Slice(eligible, func(a, b int) bool {
			return score(eligible[a], likes) > score(eligible[b], likes)
		})
		candidatesBySlot[i] = eligible
		if len(eligible) == 0 {
			return Result{Status: StatusInfeasible, Reason: "no eligible recipe for slot " + s.MealType}
		}
	}

	sv := &solver{
		ctx:           ctx,
		slots:         weekSlots,
		candidates:    candidatesBySlot,
		targets:       targets,
		likes:         likes,
		uniquenessCap: uniquenessCap,
		usedCount:     make(map[int64]int),
	}

	best := sv.search()
	if best == nil {
		select {
		case <-ctx.Done():
			return Result{Status: StatusTimeout, Reason: "no feasible incumbent within time budget"}
		default:
			return Result{Status: StatusInfeasible, Reason: "no assignment satisfies the per-day macro band and uniqueness constraints"}
		}
	}

	status := StatusOptimal
	select {
	case <-ctx.Done():
		status = StatusFeasible
	default:
	}

	return Result{Days: assembleDays(best, weekSlots), Status: status}
}

func score(r model.Recipe, likes map[int64]bool) float64 {
	if likes[r.ID] {
		return LikedScore
	}
	return DislikedScore
}

type assignment struct {
	recipeID int64
	recipe   model.Recipe
}

type solver struct {
	ctx           context.Context
	slots         []slots.Slot
	candidates    [][]model.Recipe
	targets       model.MacroTargets
	likes         map[int64]bool
	uniquenessCap int
	usedCount     map[int64]int

	bestObjective float64
	bestAssign    []assignment
}

// search runs the branch-and-bound. The first slot's candidates are
// explored in parallel goroutines (one errgroup goroutine per candidate;
// no limit is set on the group) —
// this is OPT's "internal parallelism [under] the 10s wall clock" per
// spec §5; every deeper level stays sequential within its branch.
func (s *solver) search() []assignment {
	if len(s.slots) == 0 {
		return nil
	}

	type branchResult struct {
		assign []assignment
		obj    float64
	}

	firstCandidates := s.candidates[0]
	results := make([]branchResult, len(firstCandidates))

	g, gctx := errgroup.WithContext(s.ctx)
	for idx, cand := range firstCandidates {
		idx, cand := idx, cand
		g.Go(func() error {
			branch := &solver{
				ctx:           gctx,
				slots:         s.slots,
				candidates:    s.candidates,
				targets:       s.targets,
				likes:         s.likes,
				uniquenessCap: s.uniquenessCap,
				usedCount:     map[int64]int{cand.ID: 1},
			}
			assign := make([]assignment, len(s.slots))
			assign[0] = assignment{recipeID: cand.ID, recipe: cand}
			dayTotal := cand.Nutrition()
			branch.recurse(1, assign, dayTotal, score(cand, s.likes))
			results[idx] = branchResult{assign: branch.bestAssign, obj: branch.bestObjective}
			return nil
		})
	}
	_ = g.Wait()

	var best *branchResult
	for i := range results {
		if results[i].assign == nil {
			continue
		}
		if best == nil || results[i].obj > best.obj {
			best = &results[i]
		}
	}
	if best == nil {
		return nil
	}
	return best.assign
}

// recurse assigns slots[idx:] depth-first, pruning branches whose running
// day total cannot land within the macro band by the day's last slot, and
// respecting the uniqueness cap.
func (s *solver) recurse(idx int, assign []assignment, dayTotal model.MacroTargets, objective float64) {
	select {
	case <-s.ctx.Done():
		return
	default:
	}

	if idx == len(s.slots) {
		if s.bestAssign == nil || objective > s.bestObjective {
			s.bestObjective = objective
			s.bestAssign = append([]assignment(nil), assign...)
		}
		return
	}

	// Upper-bound pruning: even if every remaining slot scored the
	// maximum, could this branch beat the incumbent?
	if s.bestAssign != nil {
		remaining := float64(len(s.slots)-idx) * LikedScore
		if objective+remaining <= s.bestObjective {
			return
		}
	}

	isLastSlotOfDay := idx == len(s.slots)-1 || s.slots[idx+1].Day != s.slots[idx].Day
	isFirstSlotOfDay := idx == 0 || s.slots[idx-1].Day != s.slots[idx].Day
	if isFirstSlotOfDay {
		dayTotal = model.MacroTargets{}
	}

	for _, r := range s.candidates[idx] {
		if s.usedCount[r.ID] >= s.uniquenessCap {
			continue
		}

		nextTotal := model.MacroTargets{
			Calories: dayTotal.Calories + r.CaloriesPerServe,
			ProteinG: dayTotal.ProteinG + r.ProteinGPerServe,
			CarbsG:   dayTotal.CarbsG + r.CarbsGPerServe,
			FatG:     dayTotal.FatG + r.FatGPerServe,
		}

		if isLastSlotOfDay && !withinBand(nextTotal, s.targets) {
			continue
		}

		s.usedCount[r.ID]++
		assign[idx] = assignment{recipeID: r.ID, recipe: r}
		s.recurse(idx+1, assign, nextTotal, objective+score(r, s.likes))
		s.usedCount[r.ID]--
	}
}

func withinBand(total, targets model.MacroTargets) bool {
	check := func(actual, target float64) bool {
		if target == 0 {
			return true
		}
		return actual >= macroBandLow*target && actual <= macroBandHigh*target
	}
	return check(total.Calories, targets.Calories) &&
		check(total.ProteinG, targets.ProteinG) &&
		check(total.CarbsG, targets.CarbsG) &&
		check(total.FatG, targets.FatG)
}

func assembleDays(assign []assignment, weekSlots []slots.Slot) []model.PlannerDayPlan {
	byDay := make(map[int]*model.PlannerDayPlan)
	for i, a := range assign {
		d := weekSlots[i].Day
		dp, ok := byDay[d]
		if !ok {
			dp = &model.PlannerDayPlan{DayIndex: d}
			byDay[d] = dp
		}
		nutrition := a.recipe.Nutrition()
		dp.Meals = append(dp.Meals, model.PlanRecipeAssignment{
			DayIndex:   d,
			MealType:   weekSlots[i].MealType,
			RecipeID:   a.recipeID,
			RecipeName: a.recipe.Name,
			Nutrition:  nutrition,
			Source:     "db",
		})
		dp.Totals.Calories += nutrition.Calories
		dp.Totals.ProteinG += nutrition.ProteinG
		dp.Totals.CarbsG += nutrition.CarbsG
		dp.Totals.FatG += nutrition.FatG
	}

	days := make([]model.PlannerDayPlan, 0, len(byDay))
	for d := 0; d < 7; d++ {
		if dp, ok := byDay[d]; ok {
			days = append(days, *dp)
		}
	}
	return days
}
